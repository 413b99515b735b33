package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents the deployment environment of the service.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config holds all configurable parameters, sourced from environment
// variables (loaded from .env for local runs).
type Config struct {
	Port        int         `envconfig:"PORT" default:"8080"`
	Environment Environment `envconfig:"APP_ENV" default:"development"`

	// mysql DSN, e.g. user:pass@tcp(host:3306)/priceatlas?parseTime=true
	DatabaseDSN string `envconfig:"DATABASE_DSN"`

	// Front-end build directory served for non-API paths.
	StaticDir string `envconfig:"STATIC_DIR" default:"./static"`

	HomeCurrency string `envconfig:"HOME_CURRENCY" default:"INR"`
	ForexAPIURL  string `envconfig:"FOREX_API_URL" default:"https://api.exchangerate-api.com/v4/latest/USD"`

	ScrapeCachePath  string `envconfig:"SCRAPE_CACHE_PATH" default:"/tmp/priceatlas_cache.json"`
	AggregateWorkers int    `envconfig:"AGGREGATE_WORKERS" default:"5"`

	// Cron expression for the daily re-scrape of tracked products.
	// Empty disables the scheduler.
	RescrapeCron string `envconfig:"RESCRAPE_CRON" default:"0 6 * * *"`
}

// Load processes the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment config: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the environment corresponds to production.
func (e Environment) IsProduction() bool {
	return e == Production
}
