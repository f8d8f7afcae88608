package tracking

import (
	"context"
	"fmt"
	"math"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Statuses hidden from the event board.
var boardExcluded = []domain.OrderStatus{
	domain.OrderStatusDraft,
	domain.OrderStatusDelivered,
	domain.OrderStatusCancelled,
}

type Service struct {
	orderRepo interfaces.OrderRepository
	logger    logger.Logger
}

func NewService(orderRepo interfaces.OrderRepository, logger logger.Logger) *Service {
	return &Service{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

var _ interfaces.TrackingService = (*Service)(nil)

func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

// ListByEvent returns the orders staff still have to work on, oldest first.
func (s *Service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByEvent(ctx, eventID, boardExcluded)
	if err != nil {
		s.logger.Error("db_query_failed", "Failed to list event orders", logger.RequestID(ctx), map[string]interface{}{
			"event_id": eventID.String(),
		}, err)
		return nil, err
	}
	return orders, nil
}

// ListByRegistration returns every order of one attendee, newest first.
func (s *Service) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByRegistration(ctx, registrationID)
	if err != nil {
		s.logger.Error("db_query_failed", "Failed to list registration orders", logger.RequestID(ctx), map[string]interface{}{
			"registration_id": registrationID.String(),
		}, err)
		return nil, err
	}
	return orders, nil
}

// ListOrders pages through all orders by descending order number. Page is
// zero-based; out of range sizes fall back to the defaults. A page whose
// offset does not fit in an int is rejected.
func (s *Service) ListOrders(ctx context.Context, req interfaces.PageRequest) (*interfaces.OrderPage, error) {
	page, size := req.Page, req.Size
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page > math.MaxInt/size {
		return nil, fmt.Errorf("%w: page %d is out of range", domain.ErrValidation, page)
	}

	orders, total, err := s.orderRepo.List(ctx, interfaces.OrderFilter{
		From:   req.From,
		To:     req.To,
		Limit:  size,
		Offset: page * size,
	})
	if err != nil {
		s.logger.Error("db_query_failed", "Failed to list orders", logger.RequestID(ctx), nil, err)
		return nil, err
	}

	return &interfaces.OrderPage{
		Orders:        orders,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
	}, nil
}
