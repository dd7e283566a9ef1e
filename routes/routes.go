package routes

import (
	"net/http"

	"food-order-desk/handlers"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Food Order Desk",
		})
	})

	api := r.Group("/api")

	// ── Menu & restaurant (read only) ──────────────────────────────
	{
		api.GET("/menu", h.GetMenu)
		api.GET("/menu/search", h.SearchMenu)
		api.GET("/menu/items/:id", h.GetMenuItem)
		api.GET("/restaurant/hours", h.GetRestaurantHours)
		api.GET("/restaurant/delivery", h.GetDeliveryInfo)
		api.GET("/promotions", h.GetPromotions)
		api.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Tickets ────────────────────────────────────────────────────
	tickets := api.Group("/tickets")
	{
		tickets.POST("", h.CreateTicket)
		tickets.POST("/inbound", h.InboundMessage)
		tickets.GET("/contact/:contact", h.GetActiveTicket)
		tickets.GET("/:id", h.GetTicket)
		tickets.POST("/:id/touch", h.TouchTicket)
		tickets.POST("/:id/close", h.CloseTicket)
		tickets.GET("/:id/orders", h.ListTicketOrders)
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := api.Group("/orders")
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("/:id", h.GetOrderDetail)
		orders.PATCH("/:id", h.UpdateOrder)
		orders.PUT("/:id/cancel", h.CancelOrder)
		orders.PUT("/:id/status", h.UpdateOrderStatus)
	}

	// ── Tool dispatch ──────────────────────────────────────────────
	tools := api.Group("/tools")
	{
		tools.GET("", h.ListTools)
		tools.POST("/execute", h.ExecuteTool)
	}
}
