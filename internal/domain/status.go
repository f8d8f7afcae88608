package domain

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "DRAFT"
	OrderStatusActive     OrderStatus = "ACTIVE"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusReady      OrderStatus = "READY"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusActive,
	OrderStatusInProgress,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus converts a case-insensitive enum name into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	candidate := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, status := range orderStatuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: order status %q", ErrInvalidStatus, s)
}

// IsTerminal reports whether no further fulfillment happens for the order.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type ItemStatus string

const (
	ItemStatusOrdered   ItemStatus = "ORDERED"
	ItemStatusPreparing ItemStatus = "PREPARING"
	ItemStatusDone      ItemStatus = "DONE"
	ItemStatusCancelled ItemStatus = "CANCELLED"
)

var itemStatuses = []ItemStatus{
	ItemStatusOrdered,
	ItemStatusPreparing,
	ItemStatusDone,
	ItemStatusCancelled,
}

// ParseItemStatus converts a case-insensitive enum name into an ItemStatus.
func ParseItemStatus(s string) (ItemStatus, error) {
	candidate := ItemStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, status := range itemStatuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: item status %q", ErrInvalidStatus, s)
}

// Staff-facing signals broadcast after a status change so boards refresh their lists.
const (
	StaffSignalOrderUpdated = "order-updated"
	StaffSignalItemUpdated  = "item-updated"
)
