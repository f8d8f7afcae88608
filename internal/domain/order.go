package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is one attendee's cart submitted at an order point within an event.
// OrderNo is unique per event and is assigned by the store at creation time.
type Order struct {
	ID             uuid.UUID
	OrderNo        int
	CreatedAt      time.Time
	RegistrationID uuid.UUID
	EventID        uuid.UUID
	OrderPointID   uuid.UUID
	Status         OrderStatus
	AssignedUser   *string
	Note           *string
	Items          []OrderItem
}

// OrderItem is a single line of an order. It only changes through its owning Order.
type OrderItem struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	Name     string
	Price    decimal.Decimal
	Quantity int
	Status   ItemStatus
	Note     *string
}

// NewOrderItem builds an item in ORDERED status.
func NewOrderItem(name string, price decimal.Decimal, quantity int, note *string) OrderItem {
	return OrderItem{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(name),
		Price:    price,
		Quantity: quantity,
		Status:   ItemStatusOrdered,
		Note:     note,
	}
}

// NewOrder creates a DRAFT order for the registration with the items attached.
// EventID and OrderNo stay unset until the order is persisted.
func NewOrder(registrationID, orderPointID uuid.UUID, note *string, items []OrderItem) (*Order, error) {
	order := &Order{
		ID:             uuid.New(),
		CreatedAt:      time.Now().UTC(),
		RegistrationID: registrationID,
		OrderPointID:   orderPointID,
		Status:         OrderStatusDraft,
		Note:           note,
	}

	for _, item := range items {
		order.attach(item)
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	return order, nil
}

func (o *Order) attach(item OrderItem) {
	item.OrderID = o.ID
	if item.Status == "" {
		item.Status = ItemStatusOrdered
	}
	o.Items = append(o.Items, item)
}

// Validate applies the creation rules.
func (o *Order) Validate() error {
	if o.RegistrationID == uuid.Nil {
		return fmt.Errorf("%w: registration id is required", ErrValidation)
	}
	if o.OrderPointID == uuid.Nil {
		return fmt.Errorf("%w: order point id is required", ErrValidation)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}

	for i, item := range o.Items {
		if item.Name == "" {
			return fmt.Errorf("%w: items[%d]: name is required", ErrValidation, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: items[%d]: quantity must be positive", ErrValidation, i)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: items[%d]: price must not be negative", ErrValidation, i)
		}
	}

	return nil
}

// LineTotal is price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums the line totals; zero for an order without items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Item returns a pointer into the order's items, or nil.
func (o *Order) Item(id uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

func (o *Order) itemStatuses() []ItemStatus {
	statuses := make([]ItemStatus, len(o.Items))
	for i, item := range o.Items {
		statuses[i] = item.Status
	}
	return statuses
}

// Confirm moves a DRAFT order to ACTIVE. It is the only transition that notifies no attendee.
func (o *Order) Confirm() (Effects, error) {
	if o.Status != OrderStatusDraft {
		return Effects{}, fmt.Errorf("%w: order %d is %s, expected %s", ErrInvalidState, o.OrderNo, o.Status, OrderStatusDraft)
	}

	o.Status = OrderStatusActive

	var effects Effects
	effects.BroadcastOrder(o)
	return effects, nil
}

// ApplyStatus sets the order status as requested by staff.
//
// Returning an order to ACTIVE sends it back to the queue: every item is reset to
// ORDERED and the assignee is cleared. A non-nil actingUser becomes the assignee.
// Same-status updates still notify when the notification table has an entry.
func (o *Order) ApplyStatus(status OrderStatus, actingUser *string) Effects {
	previous := o.Status

	if status == OrderStatusActive {
		for i := range o.Items {
			o.Items[i].Status = ItemStatusOrdered
		}
		o.AssignedUser = nil
	}

	o.Status = status
	if actingUser != nil {
		user := *actingUser
		o.AssignedUser = &user
	}

	var effects Effects
	effects.notifyOrder(o, previous, status)
	effects.Signal(StaffSignalOrderUpdated)
	return effects
}

// ApplyItemStatus sets one item's status and re-derives the order status from its items.
func (o *Order) ApplyItemStatus(itemID uuid.UUID, status ItemStatus) (OrderItem, Effects, error) {
	item := o.Item(itemID)
	if item == nil {
		return OrderItem{}, Effects{}, fmt.Errorf("%w: item %s in order %s", ErrNotFound, itemID, o.ID)
	}

	item.Status = status

	var effects Effects
	if status == ItemStatusCancelled {
		effects.CancelledItems = append(effects.CancelledItems, item.ID)
	}
	if n, ok := ItemNotification(o, *item, status); ok {
		effects.Notifications = append(effects.Notifications, n)
	}

	previous := o.Status
	if next, changed := ReduceStatus(previous, o.itemStatuses()); changed {
		o.Status = next
		effects.notifyOrder(o, previous, next)
		effects.Signal(StaffSignalOrderUpdated)
	}

	effects.Signal(StaffSignalItemUpdated)
	return *item, effects, nil
}
