package handlers

import (
	"net/http"

	"food-order-desk/models"
	"food-order-desk/statemachine"

	"github.com/gin-gonic/gin"
)

// GetMenu lists sellable items (public)
func (h *Handler) GetMenu(c *gin.Context) {
	items, err := h.policy.Menu(c.Request.Context(), c.Query("category_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// SearchMenu matches ?q= against item names and descriptions
func (h *Handler) SearchMenu(c *gin.Context) {
	items, err := h.policy.SearchMenu(c.Request.Context(), c.Query("q"), c.Query("category_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

func (h *Handler) GetMenuItem(c *gin.Context) {
	item, err := h.policy.MenuItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *Handler) GetRestaurantHours(c *gin.Context) {
	hours, err := h.policy.RestaurantHours(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hours)
}

// GetDeliveryInfo checks ?address= against the delivery area when given
func (h *Handler) GetDeliveryInfo(c *gin.Context) {
	info, err := h.policy.DeliveryInfo(c.Request.Context(), c.Query("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) GetPromotions(c *gin.Context) {
	promos, err := h.policy.ActivePromotions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(promos), "promotions": promos})
}

// GetStateMachineInfo returns the full state machine for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"description":     "Order lifecycle state machine",
	})
}
