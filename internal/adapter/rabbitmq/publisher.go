package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Pezu/servio/internal/interfaces"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const NotificationsExchange = "notifications_topic"

// RoutingKey maps a channel topic such as "registration/<id>" onto an AMQP routing key.
func RoutingKey(topic string) string {
	return strings.ReplaceAll(topic, "/", ".")
}

// Topic is the inverse of RoutingKey.
func Topic(routingKey string) string {
	return strings.ReplaceAll(routingKey, ".", "/")
}

type notificationPublisher struct {
	conn Connection
}

func NewNotificationPublisher(conn Connection) interfaces.NotificationPublisher {
	return &notificationPublisher{conn: conn}
}

func (p *notificationPublisher) Publish(ctx context.Context, topic string, payload any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(NotificationsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, NotificationsExchange, RoutingKey(topic), false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now().UTC(),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}

type cancellationPublisher struct {
	conn     Connection
	exchange string
}

// NewCancellationPublisher publishes cancelled item ids to a durable fanout exchange.
func NewCancellationPublisher(conn Connection, exchange string) interfaces.CancellationPublisher {
	return &cancellationPublisher{conn: conn, exchange: exchange}
}

func (p *cancellationPublisher) PublishItemCancelled(ctx context.Context, itemID uuid.UUID) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	err = ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "text/plain",
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         []byte(itemID.String()),
	})
	if err != nil {
		return fmt.Errorf("failed to publish cancellation: %w", err)
	}

	return nil
}
