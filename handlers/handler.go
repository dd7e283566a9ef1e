package handlers

import (
	"errors"
	"log/slog"

	"food-order-desk/apperrors"
	"food-order-desk/dispatcher"
	"food-order-desk/middleware"
	"food-order-desk/services"

	"github.com/gin-gonic/gin"
)

// Handler carries the services the HTTP routes delegate to.
type Handler struct {
	tickets *services.TicketService
	orders  *services.OrderService
	policy  *services.PolicyService
	tools   *dispatcher.Dispatcher
}

func New(tickets *services.TicketService, orders *services.OrderService, policy *services.PolicyService, tools *dispatcher.Dispatcher) *Handler {
	return &Handler{tickets: tickets, orders: orders, policy: policy, tools: tools}
}

// respondError maps a service error to its status code. Internal causes are
// logged, never sent to the client.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", middleware.GetRequestID(c),
			"error", err)
		c.JSON(kind.HTTPStatus(), gin.H{"error": "internal server error"})
		return
	}
	msg := err.Error()
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	c.JSON(kind.HTTPStatus(), gin.H{"error": msg})
}
