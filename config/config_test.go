package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"food-order-desk/models"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GIN_MODE", "DB_DRIVER", "DB_DSN", "TICKET_IDLE_TIMEOUT", "TICKET_SWEEP_INTERVAL",
		"RESTAURANT_TIMEZONE", "DEFAULT_ETA_MINUTES", "SEED_DEMO",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DB.Driver != "sqlite" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Tickets.IdleTimeout != 15*time.Minute || cfg.Tickets.SweepInterval != time.Minute {
		t.Errorf("tickets = %+v", cfg.Tickets)
	}
	if cfg.Restaurant.DefaultETAMinutes != 30 || cfg.Restaurant.Location != time.Local {
		t.Errorf("restaurant = %+v", cfg.Restaurant)
	}
	if cfg.SeedDemo {
		t.Error("seed demo should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("TICKET_IDLE_TIMEOUT", "5m")
	t.Setenv("RESTAURANT_TIMEZONE", "UTC")
	t.Setenv("SEED_DEMO", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.Driver != "postgres" || cfg.Tickets.IdleTimeout != 5*time.Minute || !cfg.SeedDemo {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Restaurant.Location.String() != "UTC" {
		t.Errorf("location = %s", cfg.Restaurant.Location)
	}
}

func TestLoadErrorsNameTheKey(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"TICKET_IDLE_TIMEOUT", "soon"},
		{"TICKET_SWEEP_INTERVAL", "-1s"},
		{"DEFAULT_ETA_MINUTES", "half an hour"},
		{"SEED_DEMO", "maybe"},
		{"RESTAURANT_TIMEZONE", "Mars/Olympus"},
		{"DB_DRIVER", "oracle"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
			if !strings.HasPrefix(err.Error(), tt.key) {
				t.Errorf("error %q does not name %s", err, tt.key)
			}
		})
	}
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	db, err := OpenDB(DBConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "seed.db")})
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	for i := 0; i < 2; i++ {
		if err := SeedDemo(db); err != nil {
			t.Fatalf("SeedDemo #%d: %v", i+1, err)
		}
	}

	var restaurants, items int64
	db.Model(&models.RestaurantInfo{}).Count(&restaurants)
	db.Model(&models.MenuItem{}).Count(&items)
	if restaurants != 1 || items != 5 {
		t.Errorf("restaurants = %d, items = %d; want 1 and 5", restaurants, items)
	}

	var info models.RestaurantInfo
	if err := db.First(&info).Error; err != nil {
		t.Fatalf("load restaurant: %v", err)
	}
	if len(info.OpeningHours) != 7 || len(info.DeliveryArea) != 3 {
		t.Errorf("serialized columns did not round-trip: %+v", info)
	}
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDB(DBConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error")
	}
}
