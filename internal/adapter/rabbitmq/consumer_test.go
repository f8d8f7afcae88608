package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackResult struct {
	tag     uint64
	acked   bool
	requeue bool
}

type recordingAcknowledger struct {
	mu      sync.Mutex
	results []ackResult
}

func (a *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, ackResult{tag: tag, acked: true})
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, ackResult{tag: tag, requeue: requeue})
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *recordingAcknowledger) snapshot() []ackResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ackResult(nil), a.results...)
}

type fakeChannel struct {
	deliveries chan amqp.Delivery
	queueArgs  map[string]amqp.Table
}

func (ch *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return nil
}

func (ch *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (Queue, error) {
	ch.queueArgs[name] = args
	return Queue{Name: name}, nil
}

func (ch *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return nil
}

func (ch *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return nil
}

func (ch *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return ch.deliveries, nil
}

func (ch *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error { return nil }

func (ch *fakeChannel) Close() error { return nil }

func (ch *fakeChannel) NotifyClose() <-chan *amqp.Error {
	return make(chan *amqp.Error)
}

type fakeConnection struct {
	ch *fakeChannel
}

func (c *fakeConnection) Channel() (Channel, error) { return c.ch, nil }

func (c *fakeConnection) Close() error { return nil }

func TestShouldRequeue(t *testing.T) {
	storeErr := errors.New("connection refused")
	dropErr := fmt.Errorf("bad body: %w", interfaces.ErrDropMessage)

	assert.True(t, shouldRequeue(storeErr, false))
	assert.False(t, shouldRequeue(storeErr, true))
	assert.False(t, shouldRequeue(dropErr, false))
	assert.False(t, shouldRequeue(dropErr, true))
}

func TestConsumeCancellationsRetriesOnceThenDeadLetters(t *testing.T) {
	ack := &recordingAcknowledger{}
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery, 4), queueArgs: map[string]amqp.Table{}}
	consumer := NewConsumer(&fakeConnection{ch: ch}, 10, "order_item_cancel", logger.NewWithWriter("test", logger.LevelDebug, io.Discard))
	consumer.requeueDelay = 0

	deliver := func(tag uint64, body string, redelivered bool) {
		ch.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: []byte(body), Redelivered: redelivered}
	}
	deliver(1, "ok", false)
	deliver(2, "store-down", false)
	deliver(3, "store-down", true)
	deliver(4, "garbage", false)

	handler := func(ctx context.Context, body []byte) error {
		switch string(body) {
		case "store-down":
			return errors.New("connection refused")
		case "garbage":
			return fmt.Errorf("invalid item id: %w", interfaces.ErrDropMessage)
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.ConsumeCancellations(ctx, handler) }()

	require.Eventually(t, func() bool { return len(ack.snapshot()) == 4 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, []ackResult{
		{tag: 1, acked: true},
		{tag: 2, requeue: true},
		{tag: 3, requeue: false},
		{tag: 4, requeue: false},
	}, ack.snapshot())

	assert.Equal(t, "order_item_cancel_dlq", ch.queueArgs["order_item_cancel.audit"]["x-dead-letter-exchange"])
}

func TestRejectWaitsBeforeRequeue(t *testing.T) {
	ack := &recordingAcknowledger{}
	consumer := NewConsumer(&fakeConnection{}, 1, "order_item_cancel", logger.NewWithWriter("test", logger.LevelDebug, io.Discard))
	consumer.requeueDelay = 50 * time.Millisecond

	start := time.Now()
	consumer.reject(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 7}, errors.New("timeout"))

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, []ackResult{{tag: 7, requeue: true}}, ack.snapshot())
}
