// Package common provides shared utilities for Fairval
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Fairval
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Valuation   ValuationConfig `toml:"valuation"`
	Backtest    BacktestConfig  `toml:"backtest"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the analysis cache location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// ValuationConfig holds the PBR target ladder and zone thresholds.
// Thresholds are configuration, not derived constants - revisions of the
// heuristic have shipped with different literal pairs.
type ValuationConfig struct {
	Multipliers []float64 `toml:"multipliers"`
	BuyBelow    float64   `toml:"buy_below"`
	SellAbove   float64   `toml:"sell_above"`
	Freshness   string    `toml:"freshness"`
}

// GetFreshness parses and returns the snapshot freshness TTL
func (c *ValuationConfig) GetFreshness() time.Duration {
	d, err := time.ParseDuration(c.Freshness)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// BacktestConfig holds default backtest parameters.
type BacktestConfig struct {
	DefaultCapital float64 `toml:"default_capital"`
	BuyThreshold   float64 `toml:"buy_threshold"`
	SellThreshold  float64 `toml:"sell_threshold"`
	AlternateAsset string  `toml:"alternate_asset"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/analysis",
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:     "gemini-2.0-flash",
				RateLimit: 2,
				Timeout:   "60s",
			},
		},
		Valuation: ValuationConfig{
			Multipliers: []float64{1.0, 1.1, 1.2, 1.3, 1.4, 1.5, 1.6, 1.7, 1.8},
			BuyBelow:    1.45,
			SellAbove:   1.55,
			Freshness:   "24h",
		},
		Backtest: BacktestConfig{
			DefaultCapital: 10000,
			BuyThreshold:   1.45,
			SellThreshold:  1.55,
			AlternateAsset: "SPY",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console", "file"},
			FilePath:   "./logs/fairval.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validateThresholds(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FAIRVAL_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FAIRVAL_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FAIRVAL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FAIRVAL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FAIRVAL_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if v := os.Getenv("FAIRVAL_BUY_BELOW"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Valuation.BuyBelow = f
		}
	}
	if v := os.Getenv("FAIRVAL_SELL_ABOVE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Valuation.SellAbove = f
		}
	}
}

// validateThresholds ensures the zone thresholds describe contiguous bands.
func validateThresholds(config *Config) error {
	if config.Valuation.BuyBelow >= config.Valuation.SellAbove {
		return fmt.Errorf("valuation buy_below (%.2f) must be less than sell_above (%.2f)",
			config.Valuation.BuyBelow, config.Valuation.SellAbove)
	}
	if config.Backtest.BuyThreshold >= config.Backtest.SellThreshold {
		return fmt.Errorf("backtest buy_threshold (%.2f) must be less than sell_threshold (%.2f)",
			config.Backtest.BuyThreshold, config.Backtest.SellThreshold)
	}
	return nil
}

// ResolveAPIKey resolves the Gemini API key from environment or config fallback
func ResolveAPIKey(fallback string) (string, error) {
	for _, name := range []string{"GEMINI_API_KEY", "FAIRVAL_GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("gemini API key not found in environment or config")
}
