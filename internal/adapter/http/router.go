package http

import (
	"net/http"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/interfaces"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the order API under /api/orders plus /health.
func NewRouter(orders interfaces.OrderService, kitchen interfaces.KitchenService, tracking interfaces.TrackingService, lgr logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggingMiddleware(lgr), RecoveryMiddleware(lgr))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/orders")
	NewOrderHandler(orders, kitchen, lgr).Register(api)
	NewTrackingHandler(tracking, lgr).Register(api)

	return r
}
