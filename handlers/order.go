package handlers

import (
	"errors"
	"io"
	"net/http"

	"food-order-desk/models"
	"food-order-desk/services"

	"github.com/gin-gonic/gin"
)

type OrderLineRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	Notes      string `json:"notes"`
}

type PlaceOrderRequest struct {
	TicketID        string             `json:"ticket_id" binding:"required"`
	Items           []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryType    string             `json:"delivery_type" binding:"required,oneof=delivery pickup"`
	DeliveryAddress string             `json:"delivery_address"`
}

type ItemQuantityRequest struct {
	OrderItemID string `json:"order_item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"min=0"`
}

// UpdateOrderRequest: an omitted list is left alone, an empty one is a no-op.
type UpdateOrderRequest struct {
	ItemsToAdd    []OrderLineRequest    `json:"items_to_add" binding:"omitempty,dive"`
	ItemsToRemove []string              `json:"items_to_remove"`
	ItemsToUpdate []ItemQuantityRequest `json:"items_to_update" binding:"omitempty,dive"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

func toOrderLines(reqs []OrderLineRequest) []services.OrderLine {
	if reqs == nil {
		return nil
	}
	lines := make([]services.OrderLine, len(reqs))
	for i, r := range reqs {
		lines[i] = services.OrderLine{MenuItemID: r.MenuItemID, Quantity: r.Quantity, Notes: r.Notes}
	}
	return lines
}

// PlaceOrder creates a pending order on a ticket
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Create(c.Request.Context(), services.CreateOrderInput{
		TicketID:        req.TicketID,
		Items:           toOrderLines(req.Items),
		DeliveryType:    models.DeliveryType(req.DeliveryType),
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":                "Order placed successfully",
		"order":                  order,
		"estimated_time_minutes": order.EstimatedTimeMinutes,
	})
}

// GetOrderDetail returns the order with items and status history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.UpdateOrderInput{
		ItemsToAdd:    toOrderLines(req.ItemsToAdd),
		ItemsToRemove: req.ItemsToRemove,
	}
	if req.ItemsToUpdate != nil {
		in.ItemsToUpdate = make([]services.ItemQuantity, len(req.ItemsToUpdate))
		for i, u := range req.ItemsToUpdate {
			in.ItemsToUpdate[i] = services.ItemQuantity{OrderItemID: u.OrderItemID, Quantity: u.Quantity}
		}
	}

	order, err := h.orders.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated successfully", "order": order})
}

// CancelOrder accepts an optional {"reason": ...} body
func (h *Handler) CancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	// An empty body means no reason was given.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orders.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}

// UpdateOrderStatus moves the order along the restaurant lifecycle
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orders.AdvanceStatus(c.Request.Context(), c.Param("id"), req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated to " + string(order.Status),
		"order":   order,
	})
}
