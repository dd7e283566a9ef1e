package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"food-order-desk/apperrors"
	"food-order-desk/models"

	"gorm.io/gorm"
)

const defaultETAMinutes = 30

// Clock returns the current time.
type Clock func() time.Time

// DeliveryInfo is the delivery terms for an optional customer address.
// IsAddressInArea is nil unless an address was given and a delivery area is
// configured.
type DeliveryInfo struct {
	DeliveryArea                 []string `json:"delivery_area"`
	DeliveryFee                  float64  `json:"delivery_fee"`
	MinOrderValue                float64  `json:"min_order_value"`
	EstimatedDeliveryTimeMinutes int      `json:"estimated_delivery_time_minutes"`
	IsAddressInArea              *bool    `json:"is_address_in_area,omitempty"`
}

type RestaurantHours struct {
	Hours  models.OpeningHours `json:"hours"`
	IsOpen bool                `json:"is_open"`
}

// PolicyService is the read side of the menu and the restaurant record. It
// never writes.
type PolicyService struct {
	db         *gorm.DB
	now        Clock
	loc        *time.Location
	defaultETA int
}

type PolicyOption func(*PolicyService)

// WithLocation sets the timezone opening hours are evaluated in.
func WithLocation(loc *time.Location) PolicyOption {
	return func(s *PolicyService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithDefaultETA(minutes int) PolicyOption {
	return func(s *PolicyService) {
		if minutes > 0 {
			s.defaultETA = minutes
		}
	}
}

func WithPolicyClock(now Clock) PolicyOption {
	return func(s *PolicyService) { s.now = now }
}

func NewPolicyService(db *gorm.DB, opts ...PolicyOption) *PolicyService {
	s := &PolicyService{db: db, now: time.Now, loc: time.Local, defaultETA: defaultETAMinutes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// withDB returns a copy bound to db, typically an open transaction.
func (s *PolicyService) withDB(db *gorm.DB) *PolicyService {
	cp := *s
	cp.db = db
	return &cp
}

func (s *PolicyService) sellableQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.MenuItem{}).
		Select("menu_items.*").
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Where("menu_items.is_available = ? AND menu_categories.is_active = ?", true, true)
}

// Menu lists sellable items, optionally restricted to one category.
func (s *PolicyService) Menu(ctx context.Context, categoryID string) ([]models.MenuItem, error) {
	q := s.sellableQuery(ctx)
	if categoryID != "" {
		q = q.Where("menu_items.category_id = ?", categoryID)
	}
	var items []models.MenuItem
	err := q.Order("menu_categories.display_order, menu_items.display_order, menu_items.name").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Internal("load menu", err)
	}
	return items, nil
}

// SearchMenu matches sellable items whose name or description contains query,
// ignoring case.
func (s *PolicyService) SearchMenu(ctx context.Context, query, categoryID string) ([]models.MenuItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation("query must not be empty")
	}
	term := "%" + strings.ToLower(query) + "%"
	q := s.sellableQuery(ctx).
		Where("(LOWER(menu_items.name) LIKE ? OR LOWER(menu_items.description) LIKE ?)", term, term)
	if categoryID != "" {
		q = q.Where("menu_items.category_id = ?", categoryID)
	}
	var items []models.MenuItem
	err := q.Order("menu_categories.display_order, menu_items.display_order, menu_items.name").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Internal("search menu", err)
	}
	return items, nil
}

// MenuItem loads an item with its category, whether or not it is sellable.
func (s *PolicyService) MenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.WithContext(ctx).Preload("Category").First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("menu item %s not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal("load menu item", err)
	}
	return &item, nil
}

// IsSellable reports whether the item and its category are both active. An
// unknown item is not sellable.
func (s *PolicyService) IsSellable(ctx context.Context, menuItemID string) (bool, error) {
	item, err := s.MenuItem(ctx, menuItemID)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return Sellable(item), nil
}

// Sellable applies the availability rule to an item loaded with its category.
func Sellable(item *models.MenuItem) bool {
	return item != nil && item.IsAvailable && item.Category != nil && item.Category.IsActive
}

// Restaurant returns the singleton restaurant record, or nil when none exists.
func (s *PolicyService) Restaurant(ctx context.Context) (*models.RestaurantInfo, error) {
	var infos []models.RestaurantInfo
	if err := s.db.WithContext(ctx).Limit(1).Find(&infos).Error; err != nil {
		return nil, apperrors.Internal("load restaurant info", err)
	}
	if len(infos) == 0 {
		return nil, nil
	}
	return &infos[0], nil
}

func (s *PolicyService) localNow() time.Time {
	return s.now().In(s.loc)
}

// IsOpenNow evaluates hours at the current local time.
func (s *PolicyService) IsOpenNow(hours models.OpeningHours) bool {
	return IsOpenAt(hours, s.localNow())
}

// IsOpenAt reports whether t falls inside [open, close) of its weekday's
// schedule. Times compare as "HH:MM" strings, so a schedule closing after
// midnight (close < open) is never open.
func IsOpenAt(hours models.OpeningHours, t time.Time) bool {
	day, ok := hours[strings.ToLower(t.Weekday().String())]
	if !ok || day.Open == "" || day.Close == "" {
		return false
	}
	current := t.Format("15:04")
	return current >= day.Open && current < day.Close
}

// RestaurantHours returns the schedule with the current open flag.
func (s *PolicyService) RestaurantHours(ctx context.Context) (*RestaurantHours, error) {
	info, err := s.Restaurant(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil || info.OpeningHours == nil {
		return nil, apperrors.NotFound("restaurant hours information not available")
	}
	return &RestaurantHours{Hours: info.OpeningHours, IsOpen: s.IsOpenNow(info.OpeningHours)}, nil
}

// DeliveryInfo returns the delivery terms, checking address against the
// delivery area when both are present.
func (s *PolicyService) DeliveryInfo(ctx context.Context, address string) (*DeliveryInfo, error) {
	info, err := s.Restaurant(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, apperrors.NotFound("delivery information not available")
	}
	d := s.deliveryInfoFor(info, address)
	return &d, nil
}

func (s *PolicyService) deliveryInfoFor(info *models.RestaurantInfo, address string) DeliveryInfo {
	d := DeliveryInfo{
		DeliveryArea:                 info.DeliveryArea,
		DeliveryFee:                  info.DeliveryFee,
		MinOrderValue:                info.MinOrderValue,
		EstimatedDeliveryTimeMinutes: info.EstimatedDeliveryTimeMinutes,
	}
	if d.DeliveryArea == nil {
		d.DeliveryArea = []string{}
	}
	if d.EstimatedDeliveryTimeMinutes <= 0 {
		d.EstimatedDeliveryTimeMinutes = s.defaultETA
	}
	if strings.TrimSpace(address) != "" && len(info.DeliveryArea) > 0 {
		in := AddressInArea(address, info.DeliveryArea)
		d.IsAddressInArea = &in
	}
	return d
}

// AddressInArea is a fuzzy match: an area fragment matches when either string
// contains the other, ignoring case.
func AddressInArea(address string, areas []string) bool {
	addr := strings.ToLower(strings.TrimSpace(address))
	for _, area := range areas {
		a := strings.ToLower(strings.TrimSpace(area))
		if a == "" {
			continue
		}
		if strings.Contains(addr, a) || strings.Contains(a, addr) {
			return true
		}
	}
	return false
}

// DeliveryFee returns the configured fee, or 0 when address is given and falls
// outside the delivery area.
func (s *PolicyService) DeliveryFee(ctx context.Context, subtotal float64, address string) (float64, error) {
	info, err := s.Restaurant(ctx)
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, nil
	}
	d := s.deliveryInfoFor(info, address)
	return feeFor(d), nil
}

func feeFor(d DeliveryInfo) float64 {
	if d.IsAddressInArea != nil && !*d.IsAddressInArea {
		return 0
	}
	return d.DeliveryFee
}

// ActivePromotions lists promotions flagged active whose validity window
// contains the current time, newest first.
func (s *PolicyService) ActivePromotions(ctx context.Context) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at desc").
		Find(&promos).Error
	if err != nil {
		return nil, apperrors.Internal("load promotions", err)
	}
	now := s.now()
	active := make([]models.Promotion, 0, len(promos))
	for _, p := range promos {
		if !now.Before(p.ValidFrom) && !now.After(p.ValidUntil) {
			active = append(active, p)
		}
	}
	return active, nil
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
