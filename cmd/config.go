package cmd

import (
	"fmt"
	"os"

	"github.com/etnz/lotbook"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the settings read from the environment, or from a .env file
// in the working directory.
type Config struct {
	TradesFile      string
	OverridesFile   string
	AnnotationsFile string
	LogLevel        string
	KeninExclude    string // comma separated actions, see lotbook.ParseKeninPolicy
	TotalCapital    decimal.Decimal
	RiskPercent     decimal.Decimal
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	risk := lotbook.DefaultRiskSettings()
	cfg := &Config{
		TradesFile:      getEnv("LOTBOOK_TRADES_FILE", "trades.jsonl"),
		OverridesFile:   getEnv("LOTBOOK_OVERRIDES_FILE", "overrides.jsonl"),
		AnnotationsFile: getEnv("LOTBOOK_ANNOTATIONS_FILE", "annotations.jsonl"),
		LogLevel:        getEnv("LOTBOOK_LOG_LEVEL", "warn"),
		// an empty value is meaningful here: no exclusion at all.
		KeninExclude: lookupEnv("LOTBOOK_KENIN_EXCLUDE", lotbook.DefaultKeninPolicy().String()),
	}
	var err error
	if cfg.TotalCapital, err = getEnvAsDecimal("LOTBOOK_TOTAL_CAPITAL", risk.TotalCapital); err != nil {
		return nil, err
	}
	if cfg.RiskPercent, err = getEnvAsDecimal("LOTBOOK_RISK_PCT", risk.RiskPercent); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.TradesFile == "" {
		return fmt.Errorf("LOTBOOK_TRADES_FILE is required")
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.TotalCapital.IsNegative() || c.RiskPercent.IsNegative() {
		return fmt.Errorf("capital and risk percent must not be negative")
	}
	return nil
}

// Policy returns the KENIN classification policy.
func (c *Config) Policy() (lotbook.KeninPolicy, error) {
	return lotbook.ParseKeninPolicy(c.KeninExclude)
}

// Risk returns the money management settings.
func (c *Config) Risk() lotbook.RiskSettings {
	return lotbook.RiskSettings{TotalCapital: c.TotalCapital, RiskPercent: c.RiskPercent}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv is like getEnv but keeps a variable set to the empty string.
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
