package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduceStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  OrderStatus
		items    []ItemStatus
		expected OrderStatus
		changed  bool
	}{
		{"done and cancelled in progress", OrderStatusInProgress, []ItemStatus{ItemStatusDone, ItemStatusDone, ItemStatusCancelled}, OrderStatusReady, true},
		{"all done in progress", OrderStatusInProgress, []ItemStatus{ItemStatusDone}, OrderStatusReady, true},
		{"all cancelled in progress", OrderStatusInProgress, []ItemStatus{ItemStatusCancelled, ItemStatusCancelled}, OrderStatusCancelled, true},
		{"all cancelled while active", OrderStatusActive, []ItemStatus{ItemStatusCancelled}, OrderStatusCancelled, true},
		{"all done while active", OrderStatusActive, []ItemStatus{ItemStatusDone, ItemStatusDone}, OrderStatusActive, false},
		{"one still preparing", OrderStatusInProgress, []ItemStatus{ItemStatusDone, ItemStatusPreparing}, OrderStatusInProgress, false},
		{"all done while ready", OrderStatusReady, []ItemStatus{ItemStatusDone}, OrderStatusReady, false},
		{"all done while draft", OrderStatusDraft, []ItemStatus{ItemStatusDone}, OrderStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := ReduceStatus(tt.current, tt.items)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestParseStatuses(t *testing.T) {
	s, err := ParseOrderStatus("in_progress")
	assert.NoError(t, err)
	assert.Equal(t, OrderStatusInProgress, s)

	_, err = ParseOrderStatus("COOKING")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	i, err := ParseItemStatus("Done")
	assert.NoError(t, err)
	assert.Equal(t, ItemStatusDone, i)

	_, err = ParseItemStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	for _, s := range []OrderStatus{OrderStatusDraft, OrderStatusActive, OrderStatusInProgress, OrderStatusReady} {
		assert.False(t, s.IsTerminal(), s)
	}
}
