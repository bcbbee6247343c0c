package config

import (
	redisclient "github.com/vietddude/storefront/internal/infra/redis"
	"github.com/vietddude/storefront/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server        ServerConfig        `yaml:"server"`
	Database      postgres.Config     `yaml:"database"`
	Redis         redisclient.Config  `yaml:"redis"`
	Logging       LoggingConfig       `yaml:"logging"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	ExternalOrder ExternalOrderConfig `yaml:"external_order"`
	OrdersAPI     OrdersAPIConfig     `yaml:"orders_api"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TelemetryConfig holds event-sink settings.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Environment string `yaml:"environment"`
	TimeoutMS   int    `yaml:"timeout_ms"`
	Retries     int    `yaml:"retries"`
}

// ExternalOrderConfig holds settings for the optional external order
// service notified during checkout.
type ExternalOrderConfig struct {
	Enabled   bool   `yaml:"enabled"`
	URL       string `yaml:"url"`
	TimeoutMS int    `yaml:"timeout_ms"`
	Retries   int    `yaml:"retries"`
}

// OrdersAPIConfig points checkout at the order-creation endpoint.
// Defaults to this process's own listen address.
type OrdersAPIConfig struct {
	BaseURL string `yaml:"base_url"`
}
