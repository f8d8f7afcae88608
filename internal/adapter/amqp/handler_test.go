package amqp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemsStub struct {
	items map[uuid.UUID]*domain.OrderItem
	err   error
}

func (s *itemsStub) FindItem(ctx context.Context, itemID uuid.UUID) (*domain.OrderItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	item, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func TestHandleCancellationLogsItem(t *testing.T) {
	var buf bytes.Buffer
	item := &domain.OrderItem{ID: uuid.New(), OrderID: uuid.New(), Name: "Soup"}
	h := NewCancelHandler(&itemsStub{items: map[uuid.UUID]*domain.OrderItem{item.ID: item}}, logger.NewWithWriter("test", logger.LevelDebug, &buf))

	require.NoError(t, h.HandleCancellation(context.Background(), []byte(item.ID.String()+"\n")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order_item_cancelled", entry["action"])
	details := entry["details"].(map[string]interface{})
	assert.Equal(t, "Soup", details["name"])
	assert.Equal(t, item.OrderID.String(), details["order_id"])
}

func TestHandleCancellationUnknownItemIsAcked(t *testing.T) {
	var buf bytes.Buffer
	h := NewCancelHandler(&itemsStub{}, logger.NewWithWriter("test", logger.LevelDebug, &buf))

	assert.NoError(t, h.HandleCancellation(context.Background(), []byte(uuid.NewString())))
	assert.Contains(t, buf.String(), "order_item_unknown")
}

func TestHandleCancellationMalformedIsDropped(t *testing.T) {
	h := NewCancelHandler(&itemsStub{}, logger.NewWithWriter("test", logger.LevelDebug, io.Discard))

	err := h.HandleCancellation(context.Background(), []byte("not-a-uuid"))
	assert.ErrorIs(t, err, interfaces.ErrDropMessage)
}

func TestHandleCancellationStoreErrorIsRetried(t *testing.T) {
	h := NewCancelHandler(&itemsStub{err: errors.New("connection refused")}, logger.NewWithWriter("test", logger.LevelDebug, io.Discard))

	err := h.HandleCancellation(context.Background(), []byte(uuid.NewString()))
	require.Error(t, err)
	assert.NotErrorIs(t, err, interfaces.ErrDropMessage)
}

func TestHandleNotificationAttendee(t *testing.T) {
	var out bytes.Buffer
	h := NewNotificationHandler(logger.NewWithWriter("test", logger.LevelDebug, io.Discard), &out)
	registrationID := uuid.New()

	body, err := json.Marshal(domain.Notification{
		OrderID: uuid.New(),
		OrderNo: 2,
		Type:    domain.NotificationOrderReady,
		Message: "Order #2 is ready for pickup",
	})
	require.NoError(t, err)

	require.NoError(t, h.HandleNotification(context.Background(), interfaces.RegistrationTopic(registrationID), body))
	assert.Equal(t, "["+registrationID.String()+"] ORDER_READY: Order #2 is ready for pickup\n", out.String())
}

func TestHandleNotificationStaff(t *testing.T) {
	var out bytes.Buffer
	h := NewNotificationHandler(logger.NewWithWriter("test", logger.LevelDebug, io.Discard), &out)

	require.NoError(t, h.HandleNotification(context.Background(), interfaces.StaffTopic, []byte(`"item-updated"`)))

	order := &domain.Order{
		ID:      uuid.New(),
		OrderNo: 5,
		Status:  domain.OrderStatusActive,
		Items:   []domain.OrderItem{{ID: uuid.New(), Name: "Tea", Price: decimal.RequireFromString("2.25"), Quantity: 2}},
	}
	body, err := json.Marshal(interfaces.NewOrderMessage(order))
	require.NoError(t, err)
	require.NoError(t, h.HandleNotification(context.Background(), interfaces.StaffTopic, body))

	assert.Equal(t, "[staff] item-updated\n[staff] order #5 ACTIVE (4.50)\n", out.String())
}

func TestHandleNotificationBadPayload(t *testing.T) {
	h := NewNotificationHandler(logger.NewWithWriter("test", logger.LevelDebug, io.Discard), io.Discard)
	assert.Error(t, h.HandleNotification(context.Background(), interfaces.RegistrationTopic(uuid.New()), []byte("{")))
}
