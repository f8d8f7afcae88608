package http

import (
	"net/http"
	"strings"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// OrderHandler serves the order commands: create, confirm and staff status changes.
type OrderHandler struct {
	orders    interfaces.OrderService
	kitchen   interfaces.KitchenService
	validator *validatorv10.Validate
	logger    logger.Logger
}

func NewOrderHandler(orders interfaces.OrderService, kitchen interfaces.KitchenService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		kitchen:   kitchen,
		validator: NewValidator(),
		logger:    logger,
	}
}

func (h *OrderHandler) Register(r gin.IRouter) {
	r.POST("", h.CreateOrder)
	r.POST("/:orderId/confirm", h.ConfirmOrder)
	r.PATCH("/:orderId/status", h.UpdateOrderStatus)
	r.PATCH("/items/:itemId/status", h.UpdateOrderItemStatus)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := BindAndValidate(c, &req, h.validator); err != nil {
		h.logger.Debug("validation_failed", "Order request rejected", logger.RequestID(c.Request.Context()), map[string]interface{}{
			"reason": err.Error(),
		})
		return
	}

	cmd := interfaces.CreateOrderCommand{
		RegistrationID: req.RegistrationID,
		OrderPointID:   req.OrderPointID,
		Note:           req.Note,
		Items:          make([]interfaces.CreateOrderItemCommand, len(req.OrderItems)),
	}
	for i, item := range req.OrderItems {
		cmd.Items[i] = interfaces.CreateOrderItemCommand{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Note:     item.Note,
		}
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, interfaces.NewOrderMessage(order))
}

func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	orderID, ok := pathUUID(c, "orderId")
	if !ok {
		return
	}

	order, err := h.orders.ConfirmOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, interfaces.NewOrderMessage(order))
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathUUID(c, "orderId")
	if !ok {
		return
	}

	status, err := domain.ParseOrderStatus(c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// empty user means no assignee change
	var actingUser *string
	if user := strings.TrimSpace(c.Query("user")); user != "" {
		actingUser = &user
	}

	order, err := h.kitchen.UpdateOrderStatus(c.Request.Context(), orderID, status, actingUser)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, interfaces.NewOrderMessage(order))
}

func (h *OrderHandler) UpdateOrderItemStatus(c *gin.Context) {
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	status, err := domain.ParseItemStatus(c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	item, err := h.kitchen.UpdateOrderItemStatus(c.Request.Context(), itemID, status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, interfaces.NewOrderItemMessage(*item))
}
