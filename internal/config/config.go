// Package config provides configuration loading for crisisd.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment variable overrides.
// CRISISD_SERVER_PORT -> server.port, CRISISD_LLM_API_KEY -> llm.api_key.
const envPrefix = "CRISISD_"

// Config is the root configuration for crisisd.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	LLM      LLMConfig      `koanf:"llm"`
	Lookup   LookupConfig   `koanf:"lookup"`
	Store    StoreConfig    `koanf:"store"`
	Docks    DocksConfig    `koanf:"docks"`
	Costing  CostingConfig  `koanf:"costing"`
	Drafting DraftingConfig `koanf:"drafting"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// LLMConfig configures the generation-service client.
type LLMConfig struct {
	// Provider selects the backing model API: "anthropic" or "openai".
	Provider string `koanf:"provider"`

	// Model is the model identifier passed to the provider.
	Model string `koanf:"model"`

	// APIKey authenticates against the provider. Falls back to the
	// provider's own environment variable when unset.
	APIKey Secret `koanf:"api_key"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible servers).
	BaseURL string `koanf:"base_url"`

	// MaxTokens is the output budget per generation call.
	MaxTokens int `koanf:"max_tokens"`

	// Temperature is the sampling temperature.
	Temperature float64 `koanf:"temperature"`

	// Timeout bounds each generation call.
	Timeout Duration `koanf:"timeout"`

	// RequestsPerSecond rate-limits outbound generation calls.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// LookupConfig configures the historical-context lookup client.
type LookupConfig struct {
	// BaseURL is the lookup service endpoint.
	BaseURL string `koanf:"base_url"`

	// TopK is the number of supporting sources to request.
	TopK int `koanf:"top_k"`

	// Timeout bounds each lookup call.
	Timeout Duration `koanf:"timeout"`
}

// StoreConfig configures on-disk persistence.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `koanf:"path"`
}

// DocksConfig configures the dock status monitor.
type DocksConfig struct {
	// Names are the docks tracked by the monitor.
	Names []string `koanf:"names"`

	// ScanLimit bounds how many recent operational records are scanned.
	ScanLimit int `koanf:"scan_limit"`
}

// CostingConfig holds the daily rates used by the cost estimator.
type CostingConfig struct {
	DockRentalPerDay      int `koanf:"dock_rental_per_day"`
	LaborPerDay           int `koanf:"labor_per_day"`
	EquipmentPerDay       int `koanf:"equipment_per_day"`
	ExternalPremiumPerDay int `koanf:"external_premium_per_day"`
	DemurragePerDay       int `koanf:"demurrage_per_day"`
	DemurrageThresholdDay int `koanf:"demurrage_threshold_days"`
}

// DraftingConfig holds the stakeholder roles notified per workflow.
type DraftingConfig struct {
	Stakeholders []string `koanf:"stakeholders"`
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8470,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		LLM: LLMConfig{
			Provider:          "anthropic",
			Model:             "claude-3-sonnet-20240229",
			MaxTokens:         2000,
			Temperature:       0.2,
			Timeout:           Duration(30 * time.Second),
			RequestsPerSecond: 2,
		},
		Lookup: LookupConfig{
			BaseURL: "http://localhost:8471",
			TopK:    3,
			Timeout: Duration(10 * time.Second),
		},
		Store: StoreConfig{
			Path: "crisisd.db",
		},
		Docks: DocksConfig{
			Names:     []string{"dock 1", "dock 2"},
			ScanLimit: 10,
		},
		Costing: CostingConfig{
			DockRentalPerDay:      5000,
			LaborPerDay:           3000,
			EquipmentPerDay:       2000,
			ExternalPremiumPerDay: 10000,
			DemurragePerDay:       8000,
			DemurrageThresholdDay: 10,
		},
		Drafting: DraftingConfig{
			Stakeholders: []string{"Operations Manager", "Dock Scheduler", "Technical Lead"},
		},
	}
}

// Load reads configuration from the given YAML file (optional) and
// environment variables, on top of defaults.
//
// Precedence (highest to lowest):
//  1. Environment variables (CRISISD_SERVER_PORT, CRISISD_LLM_MODEL, ...)
//  2. YAML config file
//  3. Defaults from NewDefaultConfig
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment overrides. Split on the first underscore after the
	// prefix: section, then field name with underscores preserved.
	// CRISISD_LLM_MAX_TOKENS -> llm.max_tokens
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	switch c.LLM.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("llm.provider must be anthropic or openai, got %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Lookup.TopK <= 0 {
		return fmt.Errorf("lookup.top_k must be positive, got %d", c.Lookup.TopK)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if len(c.Docks.Names) == 0 {
		return fmt.Errorf("docks.names must name at least one dock")
	}
	if c.Docks.ScanLimit <= 0 {
		return fmt.Errorf("docks.scan_limit must be positive, got %d", c.Docks.ScanLimit)
	}
	if err := c.Costing.validate(); err != nil {
		return err
	}
	if len(c.Drafting.Stakeholders) == 0 {
		return fmt.Errorf("drafting.stakeholders must name at least one role")
	}
	return nil
}

func (c *CostingConfig) validate() error {
	rates := map[string]int{
		"costing.dock_rental_per_day":      c.DockRentalPerDay,
		"costing.labor_per_day":            c.LaborPerDay,
		"costing.equipment_per_day":        c.EquipmentPerDay,
		"costing.external_premium_per_day": c.ExternalPremiumPerDay,
		"costing.demurrage_per_day":        c.DemurragePerDay,
	}
	for name, rate := range rates {
		if rate < 0 {
			return fmt.Errorf("%s cannot be negative, got %d", name, rate)
		}
	}
	if c.DemurrageThresholdDay < 0 {
		return fmt.Errorf("costing.demurrage_threshold_days cannot be negative, got %d", c.DemurrageThresholdDay)
	}
	return nil
}
