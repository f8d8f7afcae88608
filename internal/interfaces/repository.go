package interfaces

import (
	"context"
	"time"

	"github.com/Pezu/servio/internal/domain"
	"github.com/google/uuid"
)

// OrderMutation changes a locked order in memory; the repository persists the result.
// Returning an error rolls the transaction back.
type OrderMutation func(order *domain.Order) error

// Интерфейсы Репозиториев (Adapter/Postgres)
type OrderRepository interface {
	// Create resolves the registration's event, takes the next order number of that
	// event and inserts the order with its items, all in one transaction.
	Create(ctx context.Context, registrationID uuid.UUID, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*domain.OrderItem, error)
	// Mutate locks the order row, applies fn and saves status, assignee and item
	// statuses before committing.
	Mutate(ctx context.Context, orderID uuid.UUID, fn OrderMutation) (*domain.Order, error)
	// MutateByItem is Mutate on the order owning itemID.
	MutateByItem(ctx context.Context, itemID uuid.UUID, fn OrderMutation) (*domain.Order, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID, excluded []domain.OrderStatus) ([]*domain.Order, error)
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
}

// OrderFilter selects a page of orders, newest order number first.
type OrderFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
