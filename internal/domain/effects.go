package domain

import "github.com/google/uuid"

// StaffBroadcast is a message on the staff channel: either a short refresh signal
// or a full order snapshot.
type StaffBroadcast struct {
	Signal string
	Order  *Order
}

// Effects lists what must happen after a transition has been persisted.
// None of them may undo the persisted state.
type Effects struct {
	Notifications  []Notification
	Staff          []StaffBroadcast
	CancelledItems []uuid.UUID
}

func (e *Effects) notifyOrder(order *Order, previous, next OrderStatus) {
	if n, ok := OrderNotification(order, previous, next); ok {
		e.Notifications = append(e.Notifications, n)
	}
}

// Signal queues a staff refresh signal.
func (e *Effects) Signal(signal string) {
	e.Staff = append(e.Staff, StaffBroadcast{Signal: signal})
}

// BroadcastOrder queues a snapshot of the order for the staff channel.
func (e *Effects) BroadcastOrder(order *Order) {
	snapshot := *order
	snapshot.Items = append([]OrderItem(nil), order.Items...)
	e.Staff = append(e.Staff, StaffBroadcast{Order: &snapshot})
}

// Empty reports whether there is nothing to dispatch.
func (e Effects) Empty() bool {
	return len(e.Notifications) == 0 && len(e.Staff) == 0 && len(e.CancelledItems) == 0
}
