package notify

import (
	"context"
	"fmt"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
)

// Dispatcher delivers the effects of a committed transition. Every publish is
// attempted once; failures are logged and never reach the caller.
type Dispatcher struct {
	notifications interfaces.NotificationPublisher
	cancellations interfaces.CancellationPublisher
	logger        logger.Logger
}

func NewDispatcher(notifications interfaces.NotificationPublisher, cancellations interfaces.CancellationPublisher, logger logger.Logger) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		cancellations: cancellations,
		logger:        logger,
	}
}

var _ interfaces.EffectDispatcher = (*Dispatcher)(nil)

func (d *Dispatcher) Dispatch(ctx context.Context, effects domain.Effects) {
	requestID := logger.RequestID(ctx)
	if effects.Empty() {
		d.logger.Debug("effects_empty", "Transition has nothing to dispatch", requestID, nil)
		return
	}

	for _, itemID := range effects.CancelledItems {
		if err := d.cancellations.PublishItemCancelled(ctx, itemID); err != nil {
			d.logger.Error("cancellation_publish_failed", "Failed to publish item cancellation", requestID, map[string]interface{}{
				"item_id": itemID.String(),
			}, err)
			continue
		}
		d.logger.Debug("cancellation_published", "Item cancellation published", requestID, map[string]interface{}{
			"item_id": itemID.String(),
		})
	}

	for _, n := range effects.Notifications {
		topic := interfaces.RegistrationTopic(n.RegistrationID)
		d.publish(ctx, requestID, topic, n, map[string]interface{}{
			"order_id": n.OrderID.String(),
			"order_no": n.OrderNo,
			"type":     n.Type,
		})
	}

	for _, b := range effects.Staff {
		if b.Order != nil {
			d.publish(ctx, requestID, interfaces.StaffTopic, interfaces.NewOrderMessage(b.Order), map[string]interface{}{
				"order_id": b.Order.ID.String(),
				"order_no": b.Order.OrderNo,
			})
			continue
		}
		d.publish(ctx, requestID, interfaces.StaffTopic, b.Signal, map[string]interface{}{
			"signal": b.Signal,
		})
	}
}

func (d *Dispatcher) publish(ctx context.Context, requestID, topic string, payload any, details map[string]interface{}) {
	details["topic"] = topic

	if err := d.notifications.Publish(ctx, topic, payload); err != nil {
		d.logger.Error("notification_publish_failed", fmt.Sprintf("Failed to publish to %s", topic), requestID, details, err)
		return
	}
	d.logger.Debug("notification_published", fmt.Sprintf("Published to %s", topic), requestID, details)
}
