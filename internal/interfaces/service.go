package interfaces

import (
	"context"
	"time"

	"github.com/Pezu/servio/internal/domain"
	"github.com/google/uuid"
)

// Интерфейсы Сервисов (Business Logic)
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
}

type KitchenService interface {
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, actingUser *string) (*domain.Order, error)
	UpdateOrderItemStatus(ctx context.Context, itemID uuid.UUID, status domain.ItemStatus) (*domain.OrderItem, error)
}

type TrackingService interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Order, error)
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]*domain.Order, error)
	ListOrders(ctx context.Context, req PageRequest) (*OrderPage, error)
}

// EffectDispatcher performs the side effects of an already persisted transition.
type EffectDispatcher interface {
	Dispatch(ctx context.Context, effects domain.Effects)
}

// Ответы Tracking Service
type PageRequest struct {
	Page int
	Size int
	From *time.Time
	To   *time.Time
}

type OrderPage struct {
	Orders        []*domain.Order
	Page          int
	Size          int
	TotalElements int
	TotalPages    int
}
