package kitchen

import (
	"context"
	"fmt"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
	"github.com/google/uuid"
)

// Service applies staff status changes to orders and their items.
type Service struct {
	orderRepo  interfaces.OrderRepository
	dispatcher interfaces.EffectDispatcher
	logger     logger.Logger
}

func NewService(orderRepo interfaces.OrderRepository, dispatcher interfaces.EffectDispatcher, logger logger.Logger) *Service {
	return &Service{
		orderRepo:  orderRepo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

var _ interfaces.KitchenService = (*Service)(nil)

// UpdateOrderStatus sets the order status directly. Any status is accepted,
// including the current one.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, actingUser *string) (*domain.Order, error) {
	requestID := logger.RequestID(ctx)

	var (
		previous domain.OrderStatus
		effects  domain.Effects
	)
	order, err := s.orderRepo.Mutate(ctx, orderID, func(o *domain.Order) error {
		previous = o.Status
		effects = o.ApplyStatus(status, actingUser)
		return nil
	})
	if err != nil {
		s.logger.Error("order_status_update_failed", "Failed to update order status", requestID, map[string]interface{}{
			"order_id": orderID.String(),
			"status":   status,
		}, err)
		return nil, err
	}

	s.logger.Info("order_status_updated", fmt.Sprintf("Order #%d: %s -> %s", order.OrderNo, previous, order.Status), requestID, map[string]interface{}{
		"order_id":      order.ID.String(),
		"assigned_user": order.AssignedUser,
	})

	// Отправляем уведомления после коммита
	s.dispatcher.Dispatch(ctx, effects)
	return order, nil
}

// UpdateOrderItemStatus sets one item's status and lets the order status follow
// from the items.
func (s *Service) UpdateOrderItemStatus(ctx context.Context, itemID uuid.UUID, status domain.ItemStatus) (*domain.OrderItem, error) {
	requestID := logger.RequestID(ctx)

	var (
		item     domain.OrderItem
		previous domain.OrderStatus
		effects  domain.Effects
	)
	order, err := s.orderRepo.MutateByItem(ctx, itemID, func(o *domain.Order) error {
		previous = o.Status
		var err error
		item, effects, err = o.ApplyItemStatus(itemID, status)
		return err
	})
	if err != nil {
		s.logger.Error("item_status_update_failed", "Failed to update item status", requestID, map[string]interface{}{
			"item_id": itemID.String(),
			"status":  status,
		}, err)
		return nil, err
	}

	s.logger.Info("item_status_updated", fmt.Sprintf("%s in order #%d is %s", item.Name, order.OrderNo, item.Status), requestID, map[string]interface{}{
		"item_id":  item.ID.String(),
		"order_id": order.ID.String(),
	})
	if order.Status != previous {
		s.logger.Info("order_status_derived", fmt.Sprintf("Order #%d: %s -> %s", order.OrderNo, previous, order.Status), requestID, map[string]interface{}{
			"order_id": order.ID.String(),
		})
	}

	s.dispatcher.Dispatch(ctx, effects)
	return &item, nil
}
