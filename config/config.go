package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	GinMode    string
	DB         DBConfig
	Tickets    TicketConfig
	Restaurant RestaurantConfig
	SeedDemo   bool
}

type DBConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

type TicketConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

type RestaurantConfig struct {
	Location          *time.Location
	DefaultETAMinutes int
}

// Load reads configuration from the environment, after loading a .env file
// when one exists in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	idle, err := getDuration("TICKET_IDLE_TIMEOUT", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	sweep, err := getDuration("TICKET_SWEEP_INTERVAL", 60*time.Second)
	if err != nil {
		return nil, err
	}
	eta, err := getInt("DEFAULT_ETA_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	seed, err := getBool("SEED_DEMO", false)
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if name := getEnv("RESTAURANT_TIMEZONE", ""); name != "" {
		loc, err = time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("RESTAURANT_TIMEZONE: %w", err)
		}
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "sqlite"))
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q", driver)
	}

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", ""),
		DB: DBConfig{
			Driver: driver,
			DSN:    getEnv("DB_DSN", "food_orders.db?_pragma=busy_timeout(5000)"),
		},
		Tickets: TicketConfig{
			IdleTimeout:   idle,
			SweepInterval: sweep,
		},
		Restaurant: RestaurantConfig{
			Location:          loc,
			DefaultETAMinutes: eta,
		},
		SeedDemo: seed,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", key)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
