package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Rates defines fallback utility rates used when a property carries no override.
type Rates struct {
	LightPerUnit float64 `yaml:"light_per_unit"`
	WaterPerUnit float64 `yaml:"water_per_unit"`
}

// Config defines service configuration.
type Config struct {
	DatabaseURL        string  `yaml:"database_url"`
	HTTPAddr           string  `yaml:"http_addr"`
	Currency           string  `yaml:"currency"`
	FallbackRates      Rates   `yaml:"fallback_rates"`
	OverstayDivisor    float64 `yaml:"overstay_divisor_days"`
	ReceivablesPageCap int     `yaml:"receivables_page_cap"`
}

// Load loads config from env plus an optional yaml file pointed at by RENTDESK_CONFIG.
// File values win over env defaults; required fields are validated last.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:        getenvDefault("DATABASE_URL", os.Getenv("PG_DSN")),
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8080"),
		Currency:           getenvDefault("CURRENCY", "USD"),
		OverstayDivisor:    getenvFloatDefault("OVERSTAY_DIVISOR_DAYS", 30),
		ReceivablesPageCap: getenvIntDefault("RECEIVABLES_PAGE_CAP", 500),
		FallbackRates: Rates{
			LightPerUnit: getenvFloatDefault("LIGHT_RATE_PER_UNIT", 0.25),
			WaterPerUnit: getenvFloatDefault("WATER_RATE_PER_UNIT", 0.15),
		},
	}

	if path := os.Getenv("RENTDESK_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("config: DATABASE_URL or PG_DSN is required")
	}
	if cfg.OverstayDivisor <= 0 {
		return cfg, errors.New("config: overstay divisor must be positive")
	}
	if cfg.FallbackRates.LightPerUnit < 0 || cfg.FallbackRates.WaterPerUnit < 0 {
		return cfg, errors.New("config: negative fallback rate")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
