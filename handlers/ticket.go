package handlers

import (
	"net/http"
	"strconv"

	"food-order-desk/apperrors"
	"food-order-desk/models"

	"github.com/gin-gonic/gin"
)

type ContactRequest struct {
	Contact string `json:"contact" binding:"required"`
}

// CreateTicket always opens a new ticket
func (h *Handler) CreateTicket(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ticket, err := h.tickets.Create(c.Request.Context(), req.Contact)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Ticket opened", "ticket": ticket})
}

// InboundMessage resolves the contact's open ticket, opening one if needed
func (h *Handler) InboundMessage(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ticket, created, err := h.tickets.Resolve(c.Request.Context(), req.Contact)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"ticket": ticket, "created": created})
}

func (h *Handler) GetTicket(c *gin.Context) {
	ticket, err := h.tickets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// GetActiveTicket returns the contact's newest open ticket
func (h *Handler) GetActiveTicket(c *gin.Context) {
	ticket, err := h.tickets.GetActiveByContact(c.Request.Context(), c.Param("contact"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

func (h *Handler) TouchTicket(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.tickets.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.tickets.Touch(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	ticket, err := h.tickets.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// CloseTicket is idempotent: closing a closed ticket succeeds
func (h *Handler) CloseTicket(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	closed, err := h.tickets.Close(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !closed {
		respondError(c, apperrors.NotFound("ticket with id '%s' not found", id))
		return
	}
	ticket, err := h.tickets.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket closed", "ticket": ticket})
}

// ListTicketOrders supports ?status= and ?limit=
func (h *Handler) ListTicketOrders(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	orders, err := h.orders.ListByTicket(c.Request.Context(), c.Param("id"), models.OrderStatus(c.Query("status")), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}
