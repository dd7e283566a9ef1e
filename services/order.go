package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-order-desk/apperrors"
	"food-order-desk/models"
	"food-order-desk/statemachine"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultListLimit = 10

// OrderLine is one requested menu item.
type OrderLine struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes,omitempty"`
}

// ItemQuantity sets a new quantity on an existing order item.
type ItemQuantity struct {
	OrderItemID string `json:"orderItemId" validate:"required"`
	Quantity    int    `json:"quantity"`
}

type CreateOrderInput struct {
	TicketID        string
	Items           []OrderLine
	DeliveryType    models.DeliveryType
	DeliveryAddress string
}

// UpdateOrderInput holds item mutations; a nil list means "not provided".
type UpdateOrderInput struct {
	ItemsToAdd    []OrderLine
	ItemsToRemove []string
	ItemsToUpdate []ItemQuantity
}

// OrderService owns order writes. Every mutation runs in one transaction and
// leaves total == subtotal + delivery fee.
type OrderService struct {
	db      *gorm.DB
	tickets TicketStore
	policy  *PolicyService
	now     Clock
}

type OrderOption func(*OrderService)

func WithOrderClock(now Clock) OrderOption {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(db *gorm.DB, tickets TicketStore, policy *PolicyService, opts ...OrderOption) *OrderService {
	s := &OrderService{db: db, tickets: tickets, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) clock() time.Time {
	return s.now().UTC()
}

// Create validates the request, prices it against the current menu and
// writes the order with its items.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if strings.TrimSpace(in.TicketID) == "" {
		return nil, apperrors.Validation("ticketId is required")
	}
	if len(in.Items) == 0 {
		return nil, apperrors.Validation("items must contain at least one item")
	}
	if !in.DeliveryType.Valid() {
		return nil, apperrors.Validation(`deliveryType must be "delivery" or "pickup"`)
	}

	if _, err := s.tickets.Get(ctx, in.TicketID); err != nil {
		return nil, err
	}

	address := strings.TrimSpace(in.DeliveryAddress)
	isDelivery := in.DeliveryType == models.DeliveryTypeDelivery
	if isDelivery && address == "" {
		return nil, apperrors.Validation("delivery address is required for delivery orders")
	}

	info, err := s.policy.Restaurant(ctx)
	if err != nil {
		return nil, err
	}
	if info != nil && info.OpeningHours != nil && !s.policy.IsOpenNow(info.OpeningHours) {
		return nil, apperrors.Business("restaurant is closed")
	}

	now := s.clock()
	items := make([]models.OrderItem, 0, len(in.Items))
	var subtotal float64
	for i, line := range in.Items {
		menuItem, err := validateLine(ctx, s.policy, line)
		if err != nil {
			return nil, err
		}
		lineTotal := roundMoney(menuItem.Price * float64(line.Quantity))
		subtotal += lineTotal
		items = append(items, models.OrderItem{
			MenuItemID: menuItem.ID,
			LineNo:     i + 1,
			Quantity:   line.Quantity,
			UnitPrice:  menuItem.Price,
			Subtotal:   lineTotal,
			Notes:      optional(line.Notes),
			CreatedAt:  now,
		})
	}
	subtotal = roundMoney(subtotal)

	fee := 0.0
	eta := s.policy.defaultETA
	if info != nil {
		terms := s.policy.deliveryInfoFor(info, address)
		eta = terms.EstimatedDeliveryTimeMinutes
		if isDelivery {
			if terms.IsAddressInArea != nil && !*terms.IsAddressInArea {
				return nil, apperrors.Business("delivery address is outside delivery area")
			}
			if terms.MinOrderValue > 0 && subtotal < terms.MinOrderValue {
				return nil, apperrors.Business("minimum order value is %.2f", terms.MinOrderValue)
			}
		}
		// The restaurant fee applies to every order type.
		fee = feeFor(terms)
	}

	order := models.Order{
		TicketID:             in.TicketID,
		Status:               models.StatusPending,
		DeliveryType:         in.DeliveryType,
		DeliveryAddress:      optional(address),
		Subtotal:             subtotal,
		DeliveryFee:          fee,
		Total:                roundMoney(subtotal + fee),
		EstimatedTimeMinutes: eta,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			Note:      "order created",
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return nil, txError("create order", err)
	}
	return s.Get(ctx, order.ID)
}

// Get loads an order with its items and status history.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("order with id '%s' not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal("load order", err)
	}
	return &order, nil
}

// Update applies removals, then quantity changes, then additions, and
// recomputes the subtotal from the surviving items. Existing items keep
// their unit price; the delivery fee is left as written.
func (s *OrderService) Update(ctx context.Context, id string, in UpdateOrderInput) (*models.Order, error) {
	if in.ItemsToAdd == nil && in.ItemsToRemove == nil && in.ItemsToUpdate == nil {
		return nil, apperrors.Validation("at least one of itemsToAdd, itemsToRemove, or itemsToUpdate must be provided")
	}
	now := s.clock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrderForUpdate(tx, id)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return apperrors.Business("cannot update order with status %s", order.Status)
		}

		for _, itemID := range in.ItemsToRemove {
			res := tx.Where("id = ? AND order_id = ?", itemID, id).Delete(&models.OrderItem{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.NotFound("order item %s not found", itemID)
			}
		}

		for _, u := range in.ItemsToUpdate {
			var item models.OrderItem
			err := tx.Where("id = ? AND order_id = ?", u.OrderItemID, id).First(&item).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("order item %s not found", u.OrderItemID)
			}
			if err != nil {
				return err
			}
			if u.Quantity <= 0 {
				if err := tx.Delete(&item).Error; err != nil {
					return err
				}
				continue
			}
			err = tx.Model(&item).Updates(map[string]any{
				"quantity": u.Quantity,
				"subtotal": roundMoney(item.UnitPrice * float64(u.Quantity)),
			}).Error
			if err != nil {
				return err
			}
		}

		if len(in.ItemsToAdd) > 0 {
			policy := s.policy.withDB(tx)
			var lastLine int
			row := tx.Model(&models.OrderItem{}).Select("COALESCE(MAX(line_no), 0)").Where("order_id = ?", id).Row()
			if err := row.Scan(&lastLine); err != nil {
				return err
			}
			for _, line := range in.ItemsToAdd {
				menuItem, err := validateLine(ctx, policy, line)
				if err != nil {
					return err
				}
				lastLine++
				err = tx.Create(&models.OrderItem{
					OrderID:    id,
					MenuItemID: menuItem.ID,
					LineNo:     lastLine,
					Quantity:   line.Quantity,
					UnitPrice:  menuItem.Price,
					Subtotal:   roundMoney(menuItem.Price * float64(line.Quantity)),
					Notes:      optional(line.Notes),
					CreatedAt:  now,
				}).Error
				if err != nil {
					return err
				}
			}
		}

		var remaining []models.OrderItem
		if err := tx.Where("order_id = ?", id).Find(&remaining).Error; err != nil {
			return err
		}
		var subtotal float64
		for _, item := range remaining {
			subtotal += item.Subtotal
		}
		subtotal = roundMoney(subtotal)
		return tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
			"subtotal":   subtotal,
			"total":      roundMoney(subtotal + order.DeliveryFee),
			"updated_at": now,
		}).Error
	})
	if err != nil {
		return nil, txError("update order", err)
	}
	return s.Get(ctx, id)
}

// Cancel marks the order cancelled. Items and amounts stay as they were.
func (s *OrderService) Cancel(ctx context.Context, id, reason string) (*models.Order, error) {
	now := s.clock()
	reason = strings.TrimSpace(reason)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrderForUpdate(tx, id)
		if err != nil {
			return err
		}
		switch order.Status {
		case models.StatusCancelled:
			return apperrors.Business("order is already cancelled")
		case models.StatusDelivered:
			return apperrors.Business("cannot cancel a delivered order")
		}
		if err := statemachine.CanTransition(order.Status, models.StatusCancelled, statemachine.ActorCustomer); err != nil {
			return apperrors.Business("%s", err.Error())
		}

		err = tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
			"status":              models.StatusCancelled,
			"cancelled_at":        now,
			"cancellation_reason": optional(reason),
			"updated_at":          now,
		}).Error
		if err != nil {
			return err
		}
		note := "order cancelled"
		if reason != "" {
			note += ": " + reason
		}
		return recordStatus(tx, order.ID, order.Status, models.StatusCancelled, note, now)
	})
	if err != nil {
		return nil, txError("cancel order", err)
	}
	return s.Get(ctx, id)
}

// AdvanceStatus moves an order along the restaurant side of the lifecycle.
// Cancellation goes through Cancel.
func (s *OrderService) AdvanceStatus(ctx context.Context, id string, to models.OrderStatus, note string) (*models.Order, error) {
	if !to.Valid() {
		return nil, apperrors.Validation("invalid order status %q", to)
	}
	if to == models.StatusCancelled {
		return s.Cancel(ctx, id, note)
	}
	now := s.clock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrderForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := statemachine.CanTransition(order.Status, to, statemachine.ActorRestaurant); err != nil {
			return apperrors.Business("%s", err.Error())
		}
		err = tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
			"status":     to,
			"updated_at": now,
		}).Error
		if err != nil {
			return err
		}
		return recordStatus(tx, order.ID, order.Status, to, strings.TrimSpace(note), now)
	})
	if err != nil {
		return nil, txError("update order status", err)
	}
	return s.Get(ctx, id)
}

// ListByTicket returns a ticket's orders newest first, each with its items.
func (s *OrderService) ListByTicket(ctx context.Context, ticketID string, status models.OrderStatus, limit int) ([]models.Order, error) {
	if strings.TrimSpace(ticketID) == "" {
		return nil, apperrors.Validation("ticketId is required")
	}
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation("invalid order status %q", status)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	q := s.db.WithContext(ctx).Preload("Items", orderedItems).Where("ticket_id = ?", ticketID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	orders := []models.Order{}
	if err := q.Order("created_at desc").Limit(limit).Find(&orders).Error; err != nil {
		return nil, apperrors.Internal("list orders", err)
	}
	return orders, nil
}

// validateLine checks, in order: the item exists, it is sellable, and the
// quantity is positive.
func validateLine(ctx context.Context, policy *PolicyService, line OrderLine) (*models.MenuItem, error) {
	if strings.TrimSpace(line.MenuItemID) == "" {
		return nil, apperrors.Validation("menuItemId is required")
	}
	item, err := policy.MenuItem(ctx, line.MenuItemID)
	if err != nil {
		return nil, err
	}
	if !Sellable(item) {
		return nil, apperrors.Business("menu item %s is not available", item.Name)
	}
	if line.Quantity <= 0 {
		return nil, apperrors.Validation("invalid quantity for item %s", item.Name)
	}
	return item, nil
}

func findOrderForUpdate(tx *gorm.DB, id string) (*models.Order, error) {
	q := tx
	// sqlite serializes writers itself and has no row locks.
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	err := q.First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("order with id '%s' not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func recordStatus(tx *gorm.DB, orderID string, from, to models.OrderStatus, note string, at time.Time) error {
	return tx.Create(&models.OrderStatusHistory{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		CreatedAt:  at,
	}).Error
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_no")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// txError keeps classified errors intact and marks everything else internal.
func txError(op string, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal(fmt.Sprintf("%s failed", op), err)
}
