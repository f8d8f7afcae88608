// Package memory holds in-process implementations of the repository and
// messaging ports, used by service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
	"github.com/google/uuid"
)

// OrderRepository serializes every operation behind one mutex, which gives
// Create and Mutate the same atomicity the postgres transactions provide.
type OrderRepository struct {
	mu            sync.Mutex
	registrations map[uuid.UUID]uuid.UUID // registration -> event
	lastOrderNo   map[uuid.UUID]int       // event -> counter
	orders        map[uuid.UUID]*domain.Order
	itemOwner     map[uuid.UUID]uuid.UUID // item -> order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		registrations: make(map[uuid.UUID]uuid.UUID),
		lastOrderNo:   make(map[uuid.UUID]int),
		orders:        make(map[uuid.UUID]*domain.Order),
		itemOwner:     make(map[uuid.UUID]uuid.UUID),
	}
}

var _ interfaces.OrderRepository = (*OrderRepository)(nil)

// AddRegistration registers an attendee for an event.
func (r *OrderRepository) AddRegistration(registrationID, eventID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations[registrationID] = eventID
	if _, ok := r.lastOrderNo[eventID]; !ok {
		r.lastOrderNo[eventID] = 0
	}
}

// Put stores an order as is, bypassing numbering.
func (r *OrderRepository) Put(order *domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store(order)
}

func (r *OrderRepository) Create(ctx context.Context, registrationID uuid.UUID, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	eventID, ok := r.registrations[registrationID]
	if !ok {
		return fmt.Errorf("registration %s: %w", registrationID, domain.ErrNotFound)
	}

	r.lastOrderNo[eventID]++
	order.RegistrationID = registrationID
	order.EventID = eventID
	order.OrderNo = r.lastOrderNo[eventID]
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	r.store(order)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return clone(order), nil
}

func (r *OrderRepository) FindItem(ctx context.Context, itemID uuid.UUID) (*domain.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orderID, ok := r.itemOwner[itemID]
	if !ok {
		return nil, fmt.Errorf("order item %s: %w", itemID, domain.ErrNotFound)
	}
	item := *r.orders[orderID].Item(itemID)
	return &item, nil
}

func (r *OrderRepository) Mutate(ctx context.Context, orderID uuid.UUID, fn interfaces.OrderMutation) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutate(orderID, fn)
}

func (r *OrderRepository) MutateByItem(ctx context.Context, itemID uuid.UUID, fn interfaces.OrderMutation) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orderID, ok := r.itemOwner[itemID]
	if !ok {
		return nil, fmt.Errorf("order item %s: %w", itemID, domain.ErrNotFound)
	}
	return r.mutate(orderID, fn)
}

func (r *OrderRepository) mutate(orderID uuid.UUID, fn interfaces.OrderMutation) (*domain.Order, error) {
	stored, ok := r.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}

	working := clone(stored)
	if err := fn(working); err != nil {
		return nil, err
	}

	r.store(working)
	return clone(working), nil
}

func (r *OrderRepository) ListByEvent(ctx context.Context, eventID uuid.UUID, excluded []domain.OrderStatus) ([]*domain.Order, error) {
	skip := make(map[domain.OrderStatus]bool, len(excluded))
	for _, s := range excluded {
		skip[s] = true
	}

	orders := r.filter(func(o *domain.Order) bool {
		return o.EventID == eventID && !skip[o.Status]
	})
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderNo < orders[j].OrderNo })
	return orders, nil
}

func (r *OrderRepository) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]*domain.Order, error) {
	orders := r.filter(func(o *domain.Order) bool { return o.RegistrationID == registrationID })
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderNo > orders[j].OrderNo })
	return orders, nil
}

func (r *OrderRepository) List(ctx context.Context, f interfaces.OrderFilter) ([]*domain.Order, int, error) {
	orders := r.filter(func(o *domain.Order) bool {
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			return false
		}
		if f.To != nil && o.CreatedAt.After(*f.To) {
			return false
		}
		return true
	})
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderNo > orders[j].OrderNo })

	total := len(orders)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < total {
		end = f.Offset + f.Limit
	}
	return orders[f.Offset:end], total, nil
}

// LastOrderNo exposes the event counter.
func (r *OrderRepository) LastOrderNo(eventID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastOrderNo[eventID]
}

func (r *OrderRepository) filter(keep func(*domain.Order) bool) []*domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Order
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, clone(o))
		}
	}
	return out
}

func (r *OrderRepository) store(order *domain.Order) {
	r.orders[order.ID] = clone(order)
	for _, item := range order.Items {
		r.itemOwner[item.ID] = order.ID
	}
}

func clone(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	return &c
}
