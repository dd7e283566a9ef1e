// Package testutil provides a migrated throwaway database and a controllable
// clock for package tests.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"food-order-desk/config"
	"food-order-desk/models"

	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database in a per-test temp directory.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := config.OpenDB(config.DBConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}

// MustCreate inserts each record or fails the test.
func MustCreate(t testing.TB, db *gorm.DB, records ...any) {
	t.Helper()
	for _, r := range records {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("create %T: %v", r, err)
		}
	}
}

// Menu is a small fixture: one active category with two sellable items, one
// unavailable item, and an inactive category holding an otherwise available item.
type Menu struct {
	Active     models.MenuCategory
	Inactive   models.MenuCategory
	Pizza      models.MenuItem
	Soda       models.MenuItem
	SoldOut    models.MenuItem
	HiddenDish models.MenuItem
}

func SeedMenu(t testing.TB, db *gorm.DB) *Menu {
	t.Helper()
	m := &Menu{
		Active:   models.MenuCategory{Name: "Mains", DisplayOrder: 1, IsActive: true},
		Inactive: models.MenuCategory{Name: "Seasonal", DisplayOrder: 2, IsActive: false},
	}
	MustCreate(t, db, &m.Active, &m.Inactive)

	m.Pizza = models.MenuItem{CategoryID: m.Active.ID, Name: "Pizza Margherita", Description: "Tomato and mozzarella", Price: 25, IsAvailable: true, DisplayOrder: 1}
	m.Soda = models.MenuItem{CategoryID: m.Active.ID, Name: "Soda", Description: "Cold can", Price: 6.5, IsAvailable: true, DisplayOrder: 2}
	m.SoldOut = models.MenuItem{CategoryID: m.Active.ID, Name: "Lasagna", Description: "Baked pasta", Price: 30, IsAvailable: false, DisplayOrder: 3}
	m.HiddenDish = models.MenuItem{CategoryID: m.Inactive.ID, Name: "Pumpkin Soup", Description: "Autumn special", Price: 18, IsAvailable: true, DisplayOrder: 1}
	MustCreate(t, db, &m.Pizza, &m.Soda, &m.SoldOut, &m.HiddenDish)
	return m
}
