package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/domain"
	"github.com/Pezu/servio/internal/interfaces"
	"github.com/gin-gonic/gin"
)

type TrackingHandler struct {
	service interfaces.TrackingService
	logger  logger.Logger
}

func NewTrackingHandler(service interfaces.TrackingService, logger logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TrackingHandler) Register(r gin.IRouter) {
	r.GET("", h.ListOrders)
	r.GET("/:orderId", h.GetOrder)
	r.GET("/events/:eventId", h.ListByEvent)
	r.GET("/registrations/:registrationId", h.ListByRegistration)
}

// OrderPageResponse is one page of GET /api/orders.
type OrderPageResponse struct {
	Content       []interfaces.OrderMessage `json:"content"`
	Page          int                       `json:"page"`
	Size          int                       `json:"size"`
	TotalElements int                       `json:"totalElements"`
	TotalPages    int                       `json:"totalPages"`
}

func (h *TrackingHandler) GetOrder(c *gin.Context) {
	orderID, ok := pathUUID(c, "orderId")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, interfaces.NewOrderMessage(order))
}

func (h *TrackingHandler) ListByEvent(c *gin.Context) {
	eventID, ok := pathUUID(c, "eventId")
	if !ok {
		return
	}

	orders, err := h.service.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toMessages(orders))
}

func (h *TrackingHandler) ListByRegistration(c *gin.Context) {
	registrationID, ok := pathUUID(c, "registrationId")
	if !ok {
		return
	}

	orders, err := h.service.ListByRegistration(c.Request.Context(), registrationID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toMessages(orders))
}

func (h *TrackingHandler) ListOrders(c *gin.Context) {
	var req interfaces.PageRequest
	var err error

	if req.Page, err = intQuery(c, "page"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_page", "msg": err.Error()})
		return
	}
	if req.Size, err = intQuery(c, "size"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_size", "msg": err.Error()})
		return
	}
	if req.From, err = timeQuery(c, "startDate"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_start_date", "msg": err.Error()})
		return
	}
	if req.To, err = timeQuery(c, "endDate"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_end_date", "msg": err.Error()})
		return
	}

	page, err := h.service.ListOrders(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, OrderPageResponse{
		Content:       toMessages(page.Orders),
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	})
}

func toMessages(orders []*domain.Order) []interfaces.OrderMessage {
	out := make([]interfaces.OrderMessage, len(orders))
	for i, o := range orders {
		out[i] = interfaces.NewOrderMessage(o)
	}
	return out
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// Accepted date layouts: RFC 3339, or a zone-less local date-time read as UTC.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			t = t.UTC()
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
