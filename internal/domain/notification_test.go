package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderNotification(t *testing.T) {
	order := &Order{ID: uuid.New(), OrderNo: 12, RegistrationID: uuid.New()}

	tests := []struct {
		previous, next OrderStatus
		ok             bool
		typ            NotificationType
		message        string
		closed         bool
	}{
		{OrderStatusActive, OrderStatusInProgress, true, NotificationOrderTaken, "Order #12 has been taken", false},
		{OrderStatusInProgress, OrderStatusReady, true, NotificationOrderReady, "Order #12 is ready for pickup", false},
		{OrderStatusReady, OrderStatusDelivered, true, NotificationOrderDelivered, "Order #12 has been picked up", true},
		{OrderStatusActive, OrderStatusCancelled, true, NotificationOrderCancelled, "Order #12 has been cancelled", true},
		{OrderStatusInProgress, OrderStatusActive, true, NotificationOrderReturned, "Order #12 has been returned to queue", false},
		{OrderStatusReady, OrderStatusActive, false, "", "", false},
		{OrderStatusDraft, OrderStatusActive, false, "", "", false},
		{OrderStatusActive, OrderStatusDraft, false, "", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.previous)+"->"+string(tt.next), func(t *testing.T) {
			n, ok := OrderNotification(order, tt.previous, tt.next)
			assert.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.typ, n.Type)
			assert.Equal(t, tt.message, n.Message)
			assert.Equal(t, tt.closed, n.OrderClosed)
			assert.Equal(t, order.RegistrationID, n.RegistrationID)
			assert.Equal(t, 12, n.OrderNo)
			assert.Empty(t, n.ItemName)
		})
	}
}

func TestItemNotification(t *testing.T) {
	order := &Order{ID: uuid.New(), OrderNo: 3, RegistrationID: uuid.New()}
	item := OrderItem{ID: uuid.New(), Name: "Pasta"}

	tests := []struct {
		next    ItemStatus
		ok      bool
		typ     NotificationType
		message string
	}{
		{ItemStatusPreparing, true, NotificationItemStarted, "Pasta is being prepared"},
		{ItemStatusDone, true, NotificationItemReady, "Pasta is ready"},
		{ItemStatusCancelled, true, NotificationItemCancelled, "Pasta has been cancelled"},
		{ItemStatusOrdered, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.next), func(t *testing.T) {
			n, ok := ItemNotification(order, item, tt.next)
			assert.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.typ, n.Type)
			assert.Equal(t, tt.message, n.Message)
			assert.Equal(t, "Pasta", n.ItemName)
			assert.False(t, n.OrderClosed)
		})
	}
}
