package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	reconnectDelay = 5 * time.Second
	requeueDelay   = time.Second
)

type Consumer struct {
	conn         Connection
	prefetch     int
	exchange     string
	logger       logger.Logger
	requeueDelay time.Duration
}

// NewConsumer consumes the notifications exchange and the cancellation fanout exchange.
func NewConsumer(conn Connection, prefetch int, cancelExchange string, lgr logger.Logger) *Consumer {
	return &Consumer{conn: conn, prefetch: prefetch, exchange: cancelExchange, logger: lgr, requeueDelay: requeueDelay}
}

var (
	_ interfaces.CancellationConsumer = (*Consumer)(nil)
	_ interfaces.NotificationConsumer = (*Consumer)(nil)
)

func (c *Consumer) ConsumeCancellations(ctx context.Context, handler interfaces.MessageHandler) error {
	return c.withReconnect(ctx, "cancellations", func() error {
		return c.consumeCancellations(ctx, handler)
	})
}

func (c *Consumer) ConsumeNotifications(ctx context.Context, handler interfaces.DeliveryHandler) error {
	return c.withReconnect(ctx, "notifications", func() error {
		return c.consumeNotifications(ctx, handler)
	})
}

func (c *Consumer) withReconnect(ctx context.Context, name string, run func() error) error {
	for {
		err := run()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Error("consumer_disconnected", fmt.Sprintf("%s consumer disconnected, reconnecting in %s", name, reconnectDelay), "", nil, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// CancellationQueue is the durable queue bound to the cancellation exchange.
func CancellationQueue(exchange string) string {
	return exchange + ".audit"
}

func (c *Consumer) consumeCancellations(ctx context.Context, handler interfaces.MessageHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	queue, err := c.setupCancellationInfrastructure(ch)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			if err := handler(ctx, msg.Body); err != nil {
				c.reject(ctx, msg, err)
				continue
			}
			msg.Ack(false)
		}
	}
}

// shouldRequeue allows one retry per message. Dropped and redelivered
// messages are dead-lettered.
func shouldRequeue(err error, redelivered bool) bool {
	return !redelivered && !errors.Is(err, interfaces.ErrDropMessage)
}

func (c *Consumer) reject(ctx context.Context, msg amqp.Delivery, err error) {
	requeue := shouldRequeue(err, msg.Redelivered)
	c.logger.Warn("cancellation_rejected", err.Error(), "", map[string]interface{}{
		"redelivered": msg.Redelivered,
		"requeue":     requeue,
	})

	if requeue && c.requeueDelay > 0 {
		timer := time.NewTimer(c.requeueDelay)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		timer.Stop()
	}
	msg.Nack(false, requeue)
}

func (c *Consumer) setupCancellationInfrastructure(ch Channel) (string, error) {
	if err := ch.ExchangeDeclare(c.exchange, "fanout", true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("failed to declare cancellation exchange: %w", err)
	}

	dlqExchange := c.exchange + "_dlq"
	if err := ch.ExchangeDeclare(dlqExchange, "fanout", true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}

	queue := CancellationQueue(c.exchange)
	dlq := queue + "_dlq"
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlq, "", dlqExchange, false, nil); err != nil {
		return "", fmt.Errorf("failed to bind DLQ: %w", err)
	}

	args := amqp.Table{"x-dead-letter-exchange": dlqExchange}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return "", fmt.Errorf("failed to declare cancellation queue: %w", err)
	}
	if err := ch.QueueBind(queue, "", c.exchange, false, nil); err != nil {
		return "", fmt.Errorf("failed to bind cancellation queue: %w", err)
	}

	return queue, nil
}

func (c *Consumer) consumeNotifications(ctx context.Context, handler interfaces.DeliveryHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.ExchangeDeclare(NotificationsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// temporary exclusive queue per subscriber
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range []string{RoutingKey(interfaces.RegistrationTopicPrefix) + "#", RoutingKey(interfaces.StaffTopic)} {
		if err := ch.QueueBind(q.Name, key, NotificationsExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			// notifications are best-effort, handler errors are ignored
			_ = handler(ctx, Topic(msg.RoutingKey), msg.Body)
		}
	}
}
