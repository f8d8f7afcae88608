package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
)

// NotificationHandler prints what is published on the pub/sub channel, one line per message.
type NotificationHandler struct {
	logger logger.Logger
	out    io.Writer
}

func NewNotificationHandler(logger logger.Logger, out io.Writer) *NotificationHandler {
	return &NotificationHandler{
		logger: logger,
		out:    out,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, topic string, body []byte) error {
	switch {
	case strings.HasPrefix(topic, interfaces.RegistrationTopicPrefix):
		return h.handleAttendee(topic, body)
	case topic == interfaces.StaffTopic:
		return h.handleStaff(body)
	}

	h.logger.Warn("notification_unknown_topic", fmt.Sprintf("Ignoring message on %s", topic), "", nil)
	return nil
}

func (h *NotificationHandler) handleAttendee(topic string, body []byte) error {
	var msg domain.Notification
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", map[string]interface{}{
			"topic": topic,
		}, err)
		return err
	}

	registrationID := strings.TrimPrefix(topic, interfaces.RegistrationTopicPrefix)
	h.logger.Debug("notification_received", msg.Message, "", map[string]interface{}{
		"registration_id": registrationID,
		"order_id":        msg.OrderID.String(),
		"type":            msg.Type,
	})

	// Print to console
	fmt.Fprintf(h.out, "[%s] %s: %s\n", registrationID, msg.Type, msg.Message)
	return nil
}

// Staff messages are either a bare signal string or a full order.
func (h *NotificationHandler) handleStaff(body []byte) error {
	var signal string
	if err := json.Unmarshal(body, &signal); err == nil {
		fmt.Fprintf(h.out, "[staff] %s\n", signal)
		return nil
	}

	var order interfaces.OrderMessage
	if err := json.Unmarshal(body, &order); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse staff message", "", nil, err)
		return err
	}

	h.logger.Debug("order_broadcast_received", fmt.Sprintf("Order #%d is %s", order.OrderNo, order.Status), "", map[string]interface{}{
		"order_id": order.ID.String(),
	})
	fmt.Fprintf(h.out, "[staff] order #%d %s (%s)\n", order.OrderNo, order.Status, order.TotalAmount.StringFixed(2))
	return nil
}
