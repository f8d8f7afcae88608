package sqs

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/interfaces"
	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSQS struct {
	mu       sync.Mutex
	sent     []*sqs.SendMessageInput
	inbox    []sqstypes.Message
	deleted  []string
	sendErr  error
	received chan struct{}
}

func (m *mockSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, in)
	return &sqs.SendMessageOutput{}, nil
}

// ReceiveMessage hands out the inbox once, then blocks until the context ends.
func (m *mockSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	m.mu.Lock()
	msgs := m.inbox
	m.inbox = nil
	m.mu.Unlock()

	if len(msgs) > 0 {
		return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
	}

	if m.received != nil {
		close(m.received)
		m.received = nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (m *mockSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, sdkaws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestPublisherSendsItemID(t *testing.T) {
	mock := &mockSQS{}
	pub := NewPublisher(mock, "https://sqs.local/cancel")
	itemID := uuid.New()

	require.NoError(t, pub.PublishItemCancelled(context.Background(), itemID))

	require.Len(t, mock.sent, 1)
	assert.Equal(t, "https://sqs.local/cancel", sdkaws.ToString(mock.sent[0].QueueUrl))
	assert.Equal(t, itemID.String(), sdkaws.ToString(mock.sent[0].MessageBody))
}

func TestPublisherWrapsError(t *testing.T) {
	mock := &mockSQS{sendErr: errors.New("throttled")}
	err := NewPublisher(mock, "q").PublishItemCancelled(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "throttled")
}

func TestConsumerDeletesHandledAndDroppedMessages(t *testing.T) {
	mock := &mockSQS{
		inbox: []sqstypes.Message{
			{Body: sdkaws.String("ok"), ReceiptHandle: sdkaws.String("r-ok")},
			{Body: sdkaws.String("bad"), ReceiptHandle: sdkaws.String("r-bad")},
			{Body: sdkaws.String("retry"), ReceiptHandle: sdkaws.String("r-retry")},
		},
		received: make(chan struct{}),
	}
	done := mock.received

	handler := func(ctx context.Context, body []byte) error {
		switch string(body) {
		case "bad":
			return interfaces.ErrDropMessage
		case "retry":
			return errors.New("database unavailable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	consumer := NewConsumer(mock, "q", logger.NewWithWriter("test", logger.LevelDebug, io.Discard))

	errCh := make(chan error, 1)
	go func() { errCh <- consumer.ConsumeCancellations(ctx, handler) }()

	<-done
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	mock.mu.Lock()
	defer mock.mu.Unlock()
	assert.ElementsMatch(t, []string{"r-ok", "r-bad"}, mock.deleted)
}
