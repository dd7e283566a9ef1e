package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DaySchedule holds "HH:MM" opening and closing times for one weekday.
type DaySchedule struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// OpeningHours is keyed by lowercase English weekday name ("monday").
type OpeningHours map[string]DaySchedule

// RestaurantInfo is a singleton record.
type RestaurantInfo struct {
	ID                           string       `json:"id" gorm:"primaryKey;size:36"`
	Name                         string       `json:"name" gorm:"not null"`
	Phone                        string       `json:"phone,omitempty"`
	Address                      string       `json:"address,omitempty"`
	OpeningHours                 OpeningHours `json:"opening_hours,omitempty" gorm:"type:text;serializer:json"`
	DeliveryArea                 []string     `json:"delivery_area,omitempty" gorm:"type:text;serializer:json"`
	DeliveryFee                  float64      `json:"delivery_fee"`
	MinOrderValue                float64      `json:"min_order_value"`
	EstimatedDeliveryTimeMinutes int          `json:"estimated_delivery_time_minutes"`
	UpdatedAt                    time.Time    `json:"updated_at"`
}

func (RestaurantInfo) TableName() string {
	return "restaurant_info"
}

func (r *RestaurantInfo) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type MenuCategory struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *MenuCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type MenuItem struct {
	ID           string        `json:"id" gorm:"primaryKey;size:36"`
	CategoryID   string        `json:"category_id" gorm:"not null;size:36;index"`
	Category     *MenuCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name         string        `json:"name" gorm:"not null"`
	Description  string        `json:"description,omitempty"`
	Price        float64       `json:"price" gorm:"not null"`
	ImageURL     string        `json:"image_url,omitempty"`
	Ingredients  []string      `json:"ingredients,omitempty" gorm:"type:text;serializer:json"`
	Allergens    []string      `json:"allergens,omitempty" gorm:"type:text;serializer:json"`
	IsAvailable  bool          `json:"is_available" gorm:"not null"`
	DisplayOrder int           `json:"display_order"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Promotion is informational only; it is never applied to order totals.
type Promotion struct {
	ID            string       `json:"id" gorm:"primaryKey;size:36"`
	Title         string       `json:"title" gorm:"not null"`
	Description   string       `json:"description,omitempty"`
	DiscountType  DiscountType `json:"discount_type" gorm:"not null"`
	DiscountValue float64      `json:"discount_value" gorm:"not null"`
	MinOrderValue *float64     `json:"min_order_value,omitempty"`
	ValidFrom     time.Time    `json:"valid_from" gorm:"not null"`
	ValidUntil    time.Time    `json:"valid_until" gorm:"not null"`
	IsActive      bool         `json:"is_active" gorm:"not null"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (p *Promotion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
