package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
	"github.com/google/uuid"
)

// ItemFinder looks up an order item by id.
type ItemFinder interface {
	FindItem(ctx context.Context, itemID uuid.UUID) (*domain.OrderItem, error)
}

// CancelHandler consumes the item-cancellation fan-out. The body is the bare item id.
type CancelHandler struct {
	items  ItemFinder
	logger logger.Logger
}

func NewCancelHandler(items ItemFinder, logger logger.Logger) *CancelHandler {
	return &CancelHandler{
		items:  items,
		logger: logger,
	}
}

// HandleCancellation logs the cancelled item. Malformed ids and unknown items
// are acknowledged and dropped; lookup failures are returned for redelivery.
func (h *CancelHandler) HandleCancellation(ctx context.Context, body []byte) error {
	raw := strings.TrimSpace(string(body))

	itemID, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse cancelled item id", "", map[string]interface{}{
			"body": raw,
		}, err)
		return fmt.Errorf("%w: %v", interfaces.ErrDropMessage, err)
	}

	item, err := h.items.FindItem(ctx, itemID)
	if errors.Is(err, domain.ErrNotFound) {
		h.logger.Warn("order_item_unknown", fmt.Sprintf("Cancelled item %s not found", itemID), "", nil)
		return nil
	}
	if err != nil {
		h.logger.Error("db_query_failed", "Failed to load cancelled item", "", map[string]interface{}{
			"item_id": itemID.String(),
		}, err)
		return err
	}

	h.logger.Info("order_item_cancelled", fmt.Sprintf("Order item %q was cancelled", item.Name), "", map[string]interface{}{
		"item_id":  item.ID.String(),
		"name":     item.Name,
		"order_id": item.OrderID.String(),
	})
	return nil
}
