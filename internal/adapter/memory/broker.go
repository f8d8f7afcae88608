package memory

import (
	"context"
	"sync"

	"github.com/Pezu/servio/internal/interfaces"
	"github.com/google/uuid"
)

// Message is one recorded publish.
type Message struct {
	Topic   string
	Payload any
}

// Broker records notifications and cancellations. Setting Fail makes every
// publish return that error after recording nothing.
type Broker struct {
	mu        sync.Mutex
	messages  []Message
	cancelled []uuid.UUID
	Fail      error
}

func NewBroker() *Broker {
	return &Broker{}
}

var (
	_ interfaces.NotificationPublisher = (*Broker)(nil)
	_ interfaces.CancellationPublisher = (*Broker)(nil)
)

func (b *Broker) Publish(ctx context.Context, topic string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail != nil {
		return b.Fail
	}
	b.messages = append(b.messages, Message{Topic: topic, Payload: payload})
	return nil
}

func (b *Broker) PublishItemCancelled(ctx context.Context, itemID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail != nil {
		return b.Fail
	}
	b.cancelled = append(b.cancelled, itemID)
	return nil
}

// Messages returns the recorded publishes, optionally filtered by topic.
func (b *Broker) Messages(topic string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Message
	for _, m := range b.messages {
		if topic == "" || m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func (b *Broker) Cancelled() []uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uuid.UUID(nil), b.cancelled...)
}

func (b *Broker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = nil
	b.cancelled = nil
}
