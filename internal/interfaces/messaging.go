package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/Pezu/servio/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Topics of the publish/subscribe channel.
const (
	StaffTopic              = "orders"
	RegistrationTopicPrefix = "registration/"
)

// RegistrationTopic is the attendee-facing topic for one registration.
func RegistrationTopic(registrationID uuid.UUID) string {
	return RegistrationTopicPrefix + registrationID.String()
}

// OrderMessage is the wire form of an order, shared by HTTP responses and staff broadcasts.
type OrderMessage struct {
	ID             uuid.UUID          `json:"id"`
	OrderNo        int                `json:"orderNo"`
	CreatedAt      time.Time          `json:"createdAt"`
	RegistrationID uuid.UUID          `json:"registrationId"`
	EventID        uuid.UUID          `json:"eventId"`
	OrderPointID   uuid.UUID          `json:"orderPointId"`
	Status         domain.OrderStatus `json:"status"`
	AssignedUser   *string            `json:"assignedUser"`
	Note           *string            `json:"note"`
	Items          []OrderItemMessage `json:"items"`
	TotalAmount    Amount             `json:"totalAmount"`
}

type OrderItemMessage struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Price    Amount            `json:"price"`
	Quantity int               `json:"quantity"`
	Status   domain.ItemStatus `json:"status"`
	Note     *string           `json:"note"`
}

// Amount is a money value written as a JSON number with two decimals.
// Decoding accepts numbers and quoted strings.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

func NewOrderMessage(order *domain.Order) OrderMessage {
	items := make([]OrderItemMessage, len(order.Items))
	for i, item := range order.Items {
		items[i] = NewOrderItemMessage(item)
	}

	return OrderMessage{
		ID:             order.ID,
		OrderNo:        order.OrderNo,
		CreatedAt:      order.CreatedAt,
		RegistrationID: order.RegistrationID,
		EventID:        order.EventID,
		OrderPointID:   order.OrderPointID,
		Status:         order.Status,
		AssignedUser:   order.AssignedUser,
		Note:           order.Note,
		Items:          items,
		TotalAmount:    NewAmount(order.Total()),
	}
}

func NewOrderItemMessage(item domain.OrderItem) OrderItemMessage {
	return OrderItemMessage{
		ID:       item.ID,
		Name:     item.Name,
		Price:    NewAmount(item.Price),
		Quantity: item.Quantity,
		Status:   item.Status,
		Note:     item.Note,
	}
}

// Команды для сервисов
type CreateOrderCommand struct {
	RegistrationID uuid.UUID
	OrderPointID   uuid.UUID
	Note           *string
	Items          []CreateOrderItemCommand
}

type CreateOrderItemCommand struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
	Note     *string
}

// Интерфейсы Messaging (Adapter/RabbitMQ, Adapter/SQS)

// NotificationPublisher delivers payloads to the publish/subscribe channel.
// payload is JSON-encoded by the adapter.
type NotificationPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// CancellationPublisher delivers cancelled item ids to the async fan-out channel.
type CancellationPublisher interface {
	PublishItemCancelled(ctx context.Context, itemID uuid.UUID) error
}

type CancellationConsumer interface {
	ConsumeCancellations(ctx context.Context, handler MessageHandler) error
}

type NotificationConsumer interface {
	ConsumeNotifications(ctx context.Context, handler DeliveryHandler) error
}

// ErrDropMessage tells a consumer not to redeliver the message.
var ErrDropMessage = errors.New("drop message")

type (
	MessageHandler  func(ctx context.Context, body []byte) error
	DeliveryHandler func(ctx context.Context, topic string, body []byte) error
)
