package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewOrder(t *testing.T) {
	registrationID, pointID := uuid.New(), uuid.New()
	items := []OrderItem{
		NewOrderItem(" Burger ", price("10.00"), 2, nil),
		NewOrderItem("Fries", price("5.50"), 1, nil),
	}

	order, err := NewOrder(registrationID, pointID, nil, items)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, OrderStatusDraft, order.Status)
	assert.Equal(t, "Burger", order.Items[0].Name)
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
		assert.Equal(t, ItemStatusOrdered, item.Status)
	}
	assert.True(t, order.Total().Equal(price("25.50")))
}

func TestNewOrderValidation(t *testing.T) {
	ok := NewOrderItem("Soup", price("4.00"), 1, nil)

	tests := []struct {
		name         string
		registration uuid.UUID
		point        uuid.UUID
		items        []OrderItem
	}{
		{"no items", uuid.New(), uuid.New(), nil},
		{"missing registration", uuid.Nil, uuid.New(), []OrderItem{ok}},
		{"missing order point", uuid.New(), uuid.Nil, []OrderItem{ok}},
		{"blank name", uuid.New(), uuid.New(), []OrderItem{NewOrderItem("  ", price("1"), 1, nil)}},
		{"zero quantity", uuid.New(), uuid.New(), []OrderItem{NewOrderItem("Tea", price("1"), 0, nil)}},
		{"negative price", uuid.New(), uuid.New(), []OrderItem{NewOrderItem("Tea", price("-0.01"), 1, nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.registration, tt.point, nil, tt.items)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestFreeItemIsValid(t *testing.T) {
	_, err := NewOrder(uuid.New(), uuid.New(), nil, []OrderItem{NewOrderItem("Water", decimal.Zero, 3, nil)})
	assert.NoError(t, err)
}

func TestTotalOfEmptyOrderIsZero(t *testing.T) {
	assert.True(t, (&Order{}).Total().IsZero())
}

func TestConfirm(t *testing.T) {
	order := &Order{ID: uuid.New(), RegistrationID: uuid.New(), Status: OrderStatusDraft}

	effects, err := order.Confirm()
	require.NoError(t, err)
	assert.Equal(t, OrderStatusActive, order.Status)
	assert.Empty(t, effects.Notifications)
	require.Len(t, effects.Staff, 1)
	require.NotNil(t, effects.Staff[0].Order)
	assert.Equal(t, OrderStatusActive, effects.Staff[0].Order.Status)

	_, err = order.Confirm()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, OrderStatusActive, order.Status)
}

func TestApplyStatusKeepsAssigneeWithoutUser(t *testing.T) {
	user := "ana"
	order := &Order{ID: uuid.New(), Status: OrderStatusInProgress, AssignedUser: &user}

	order.ApplyStatus(OrderStatusReady, nil)

	require.NotNil(t, order.AssignedUser)
	assert.Equal(t, "ana", *order.AssignedUser)
}

func TestApplyStatusActiveClearsAssigneeUnlessGiven(t *testing.T) {
	user := "ana"
	order := &Order{
		ID:           uuid.New(),
		Status:       OrderStatusReady,
		AssignedUser: &user,
		Items:        []OrderItem{{ID: uuid.New(), Status: ItemStatusDone}},
	}

	effects := order.ApplyStatus(OrderStatusActive, nil)

	assert.Nil(t, order.AssignedUser)
	assert.Equal(t, ItemStatusOrdered, order.Items[0].Status)
	// returned-to-queue is only announced from IN_PROGRESS
	assert.Empty(t, effects.Notifications)

	bob := "bob"
	order.ApplyStatus(OrderStatusActive, &bob)
	require.NotNil(t, order.AssignedUser)
	assert.Equal(t, "bob", *order.AssignedUser)
}

func TestApplyItemStatusUnknownItem(t *testing.T) {
	order := &Order{ID: uuid.New(), Status: OrderStatusInProgress}
	_, effects, err := order.ApplyItemStatus(uuid.New(), ItemStatusDone)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, effects.Empty())
}
