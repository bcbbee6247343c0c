package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Telemetry.TimeoutMS == 0 {
		cfg.Telemetry.TimeoutMS = 10000
	}
	if cfg.Telemetry.Retries == 0 {
		cfg.Telemetry.Retries = 2
	}
	if cfg.ExternalOrder.TimeoutMS == 0 {
		cfg.ExternalOrder.TimeoutMS = 5000
	}
	if cfg.ExternalOrder.Retries == 0 {
		cfg.ExternalOrder.Retries = 2
	}
	if cfg.OrdersAPI.BaseURL == "" {
		cfg.OrdersAPI.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	return &cfg, nil
}
