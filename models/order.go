package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of an order placed through a ticket
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further mutation is permitted.
func (s OrderStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusDelivered
}

type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

func (d DeliveryType) Valid() bool {
	return d == DeliveryTypeDelivery || d == DeliveryTypePickup
}

type Order struct {
	ID                   string               `json:"id" gorm:"primaryKey;size:36"`
	TicketID             string               `json:"ticket_id" gorm:"not null;size:36;index"`
	Status               OrderStatus          `json:"status" gorm:"not null;default:'pending';index"`
	DeliveryType         DeliveryType         `json:"delivery_type" gorm:"not null"`
	DeliveryAddress      *string              `json:"delivery_address,omitempty"`
	Subtotal             float64              `json:"subtotal" gorm:"not null"`
	DeliveryFee          float64              `json:"delivery_fee" gorm:"not null"`
	Total                float64              `json:"total" gorm:"not null"`
	EstimatedTimeMinutes int                  `json:"estimated_time_minutes"`
	CancelledAt          *time.Time           `json:"cancelled_at,omitempty"`
	CancellationReason   *string              `json:"cancellation_reason,omitempty"`
	Items                []OrderItem          `json:"items" gorm:"foreignKey:OrderID"`
	StatusHistory        []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem keeps the unit price it was written with; later menu price
// changes never touch it.
type OrderItem struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID    string    `json:"order_id" gorm:"not null;size:36;index"`
	MenuItemID string    `json:"menu_item_id" gorm:"not null;size:36"`
	LineNo     int       `json:"line_no" gorm:"not null"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	UnitPrice  float64   `json:"unit_price" gorm:"not null"`
	Subtotal   float64   `json:"subtotal" gorm:"not null"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// OrderStatusHistory tracks every status change of an order
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"order_id" gorm:"not null;size:36;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
