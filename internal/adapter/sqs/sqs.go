// Package sqs carries the item-cancellation fan-out over Amazon SQS when
// fanout.driver is "sqs".
package sqs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/interfaces"
	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
)

// API is the subset of the SQS client used here.
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// NewClient loads the default AWS config for region (us-east-1 when empty).
func NewClient(ctx context.Context, region string) (*sqs.Client, error) {
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

// Publisher sends cancelled item ids to one queue.
type Publisher struct {
	client   API
	queueURL string
}

func NewPublisher(client API, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

var _ interfaces.CancellationPublisher = (*Publisher)(nil)

func (p *Publisher) PublishItemCancelled(ctx context.Context, itemID uuid.UUID) error {
	_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(p.queueURL),
		MessageBody: sdkaws.String(itemID.String()),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event": {DataType: sdkaws.String("String"), StringValue: sdkaws.String("order_item_cancelled")},
		},
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

const (
	waitTimeSeconds = 20
	maxMessages     = 10
	errorBackoff    = 5 * time.Second
)

// Consumer long-polls the queue. A message is deleted once the handler accepts it
// or rejects it with interfaces.ErrDropMessage; otherwise it becomes visible again.
type Consumer struct {
	client   API
	queueURL string
	logger   logger.Logger
}

func NewConsumer(client API, queueURL string, lgr logger.Logger) *Consumer {
	return &Consumer{client: client, queueURL: queueURL, logger: lgr}
}

var _ interfaces.CancellationConsumer = (*Consumer)(nil)

func (c *Consumer) ConsumeCancellations(ctx context.Context, handler interfaces.MessageHandler) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            sdkaws.String(c.queueURL),
			MaxNumberOfMessages: maxMessages,
			WaitTimeSeconds:     waitTimeSeconds,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("sqs_receive_failed", "Failed to receive cancellations", "", nil, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(errorBackoff):
			}
			continue
		}

		for _, msg := range out.Messages {
			c.process(ctx, handler, msg)
		}
	}
}

func (c *Consumer) process(ctx context.Context, handler interfaces.MessageHandler, msg sqstypes.Message) {
	body := sdkaws.ToString(msg.Body)

	if err := handler(ctx, []byte(body)); err != nil && !errors.Is(err, interfaces.ErrDropMessage) {
		// left on the queue, SQS redelivers after the visibility timeout
		return
	}

	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      sdkaws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		c.logger.Error("sqs_delete_failed", "Failed to delete message", "", map[string]interface{}{
			"message_id": sdkaws.ToString(msg.MessageId),
		}, err)
	}
}
