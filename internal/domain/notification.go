package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationOrderTaken     NotificationType = "ORDER_TAKEN"
	NotificationOrderReady     NotificationType = "ORDER_READY"
	NotificationOrderDelivered NotificationType = "ORDER_DELIVERED"
	NotificationOrderCancelled NotificationType = "ORDER_CANCELLED"
	NotificationOrderReturned  NotificationType = "ORDER_RETURNED"
	NotificationItemStarted    NotificationType = "ITEM_STARTED"
	NotificationItemReady      NotificationType = "ITEM_READY"
	NotificationItemCancelled  NotificationType = "ITEM_CANCELLED"
)

// Notification is the attendee-facing payload published on registration/{RegistrationID}.
type Notification struct {
	RegistrationID uuid.UUID        `json:"-"`
	OrderID        uuid.UUID        `json:"orderId"`
	OrderNo        int              `json:"orderNo"`
	Type           NotificationType `json:"type"`
	Message        string           `json:"message"`
	ItemName       string           `json:"itemName,omitempty"`
	OrderClosed    bool             `json:"orderClosed"`
}

type orderTemplate struct {
	typ    NotificationType
	format string // receives the order number
	// when set, the template only applies if the previous status matches
	requiredPrevious OrderStatus
}

type itemTemplate struct {
	typ    NotificationType
	format string // receives the item name
}

// DRAFT and ACTIVE reached from anything but IN_PROGRESS have no entry.
var orderTemplates = map[OrderStatus]orderTemplate{
	OrderStatusInProgress: {typ: NotificationOrderTaken, format: "Order #%d has been taken"},
	OrderStatusReady:      {typ: NotificationOrderReady, format: "Order #%d is ready for pickup"},
	OrderStatusDelivered:  {typ: NotificationOrderDelivered, format: "Order #%d has been picked up"},
	OrderStatusCancelled:  {typ: NotificationOrderCancelled, format: "Order #%d has been cancelled"},
	OrderStatusActive: {
		typ:              NotificationOrderReturned,
		format:           "Order #%d has been returned to queue",
		requiredPrevious: OrderStatusInProgress,
	},
}

var itemTemplates = map[ItemStatus]itemTemplate{
	ItemStatusPreparing: {typ: NotificationItemStarted, format: "%s is being prepared"},
	ItemStatusDone:      {typ: NotificationItemReady, format: "%s is ready"},
	ItemStatusCancelled: {typ: NotificationItemCancelled, format: "%s has been cancelled"},
}

// OrderNotification maps an order status transition to its attendee notification.
// The boolean is false when the transition is not announced.
func OrderNotification(order *Order, previous, next OrderStatus) (Notification, bool) {
	tmpl, ok := orderTemplates[next]
	if !ok {
		return Notification{}, false
	}
	if tmpl.requiredPrevious != "" && tmpl.requiredPrevious != previous {
		return Notification{}, false
	}

	return Notification{
		RegistrationID: order.RegistrationID,
		OrderID:        order.ID,
		OrderNo:        order.OrderNo,
		Type:           tmpl.typ,
		Message:        fmt.Sprintf(tmpl.format, order.OrderNo),
		OrderClosed:    next.IsTerminal(),
	}, true
}

// ItemNotification maps an item status transition to its attendee notification.
func ItemNotification(order *Order, item OrderItem, next ItemStatus) (Notification, bool) {
	tmpl, ok := itemTemplates[next]
	if !ok {
		return Notification{}, false
	}

	return Notification{
		RegistrationID: order.RegistrationID,
		OrderID:        order.ID,
		OrderNo:        order.OrderNo,
		Type:           tmpl.typ,
		Message:        fmt.Sprintf(tmpl.format, item.Name),
		ItemName:       item.Name,
	}, true
}
