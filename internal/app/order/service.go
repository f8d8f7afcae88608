package order

import (
	"context"
	"fmt"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
	"github.com/google/uuid"
)

type Service struct {
	repo       interfaces.OrderRepository
	dispatcher interfaces.EffectDispatcher
	logger     logger.Logger
}

func NewService(repo interfaces.OrderRepository, dispatcher interfaces.EffectDispatcher, logger logger.Logger) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

var _ interfaces.OrderService = (*Service)(nil)

func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	requestID := logger.RequestID(ctx)

	// 1. Преобразование команд в доменные модели
	items := make([]domain.OrderItem, len(cmd.Items))
	for i, item := range cmd.Items {
		items[i] = domain.NewOrderItem(item.Name, item.Price, item.Quantity, item.Note)
	}

	// 2. Создание доменной сущности (валидация)
	order, err := domain.NewOrder(cmd.RegistrationID, cmd.OrderPointID, cmd.Note, items)
	if err != nil {
		s.logger.Error("validation_failed", "Order validation failed", requestID, nil, err)
		return nil, err
	}

	// 3. Сохранение в БД вместе с номером заказа
	if err := s.repo.Create(ctx, cmd.RegistrationID, order); err != nil {
		s.logger.Error("db_transaction_failed", "Failed to create order", requestID, map[string]interface{}{
			"registration_id": cmd.RegistrationID.String(),
		}, err)
		return nil, err
	}

	s.logger.Info("order_created", fmt.Sprintf("Order #%d created", order.OrderNo), requestID, map[string]interface{}{
		"order_id": order.ID.String(),
		"event_id": order.EventID.String(),
		"order_no": order.OrderNo,
		"total":    order.Total().StringFixed(2),
	})

	// 4. Уведомление персонала
	var effects domain.Effects
	effects.BroadcastOrder(order)
	s.dispatcher.Dispatch(ctx, effects)

	return order, nil
}

func (s *Service) ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	requestID := logger.RequestID(ctx)

	var effects domain.Effects
	order, err := s.repo.Mutate(ctx, orderID, func(o *domain.Order) error {
		var err error
		effects, err = o.Confirm()
		return err
	})
	if err != nil {
		s.logger.Error("order_confirm_failed", "Failed to confirm order", requestID, map[string]interface{}{
			"order_id": orderID.String(),
		}, err)
		return nil, err
	}

	s.logger.Info("order_confirmed", fmt.Sprintf("Order #%d confirmed", order.OrderNo), requestID, map[string]interface{}{
		"order_id": order.ID.String(),
	})

	s.dispatcher.Dispatch(ctx, effects)
	return order, nil
}
