// Package common provides shared utilities for the finance services
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the finance services
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Valuation   ValuationConfig `toml:"valuation"`
	Snapshots   SnapshotsConfig `toml:"snapshots"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend    string `toml:"backend"`     // badger (default), surrealdb, sqlite
	Path       string `toml:"path"`        // badger directory
	SQLitePath string `toml:"sqlite_path"` // sqlite database file
	Address    string `toml:"address"`     // surrealdb websocket address
	Namespace  string `toml:"namespace"`
	Database   string `toml:"database"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD    EODHDConfig    `toml:"eodhd"`
	Coinbase CoinbaseConfig `toml:"coinbase"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// CoinbaseConfig holds Coinbase Exchange market data configuration
type CoinbaseConfig struct {
	BaseURL       string `toml:"base_url"`
	RateLimit     int    `toml:"rate_limit"`
	Timeout       string `toml:"timeout"`
	QuoteCurrency string `toml:"quote_currency"`
}

// GetTimeout parses and returns the timeout duration
func (c *CoinbaseConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// ValuationConfig tunes chart reconstruction.
type ValuationConfig struct {
	BenchmarkTicker   string `toml:"benchmark_ticker"`
	Currency          string `toml:"currency"`
	QuoteCacheTTL     string `toml:"quote_cache_ttl"`
	QuoteCacheSize    int    `toml:"quote_cache_size"`
	MaxPointsIntraday int    `toml:"max_points_intraday"`
	MaxPoints         int    `toml:"max_points"`
	LookbackDays      int    `toml:"lookback_days"`
	LookbackDaysWeek  int    `toml:"lookback_days_week"`
	FetchTimeout      string `toml:"fetch_timeout"`
	MaxConcurrency    int    `toml:"max_concurrency"`
}

// GetQuoteCacheTTL parses the live quote cache TTL
func (c *ValuationConfig) GetQuoteCacheTTL() time.Duration {
	return parseDuration(c.QuoteCacheTTL, 5*time.Minute)
}

// GetFetchTimeout parses the per-query upstream fetch budget
func (c *ValuationConfig) GetFetchTimeout() time.Duration {
	return parseDuration(c.FetchTimeout, 20*time.Second)
}

// SnapshotsConfig controls the daily snapshot recorder
type SnapshotsConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
	Hour     int    `toml:"hour"` // hour of day (0-23) after which today's snapshot is taken
}

// GetInterval parses the recorder check interval
func (c *SnapshotsConfig) GetInterval() time.Duration {
	return parseDuration(c.Interval, 15*time.Minute)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
		Storage: StorageConfig{
			Backend:    "badger",
			Path:       "data/badger",
			SQLitePath: "data/finance.db",
			Address:    "ws://localhost:8000/rpc",
			Namespace:  "finance",
			Database:   "finance",
			Username:   "root",
			Password:   "root",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Coinbase: CoinbaseConfig{
				BaseURL:       "https://api.exchange.coinbase.com",
				RateLimit:     8,
				Timeout:       "30s",
				QuoteCurrency: "USD",
			},
		},
		Valuation: ValuationConfig{
			BenchmarkTicker:   "GSPC.INDX",
			Currency:          "USD",
			QuoteCacheTTL:     "5m",
			QuoteCacheSize:    256,
			MaxPointsIntraday: 40,
			MaxPoints:         60,
			LookbackDays:      30,
			LookbackDaysWeek:  7,
			FetchTimeout:      "20s",
			MaxConcurrency:    8,
		},
		Snapshots: SnapshotsConfig{
			Enabled:  true,
			Interval: "15m",
			Hour:     23,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/finance.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
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
	normalize(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINANCE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FINANCE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FINANCE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FINANCE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("FINANCE_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	if path := os.Getenv("FINANCE_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path, "badger")
		config.Storage.SQLitePath = filepath.Join(path, "finance.db")
	}

	if addr := os.Getenv("FINANCE_SURREAL_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	for _, name := range []string{"EODHD_API_KEY", "FINANCE_EODHD_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.EODHD.APIKey = v
			break
		}
	}

	if v := os.Getenv("FINANCE_BENCHMARK_TICKER"); v != "" {
		config.Valuation.BenchmarkTicker = v
	}
}

// normalize clamps values that would otherwise break chart construction.
func normalize(config *Config) {
	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))
	config.Valuation.Currency = strings.ToUpper(config.Valuation.Currency)
	if config.Valuation.Currency == "" {
		config.Valuation.Currency = "USD"
	}
	if config.Valuation.MaxPointsIntraday < 2 {
		config.Valuation.MaxPointsIntraday = 40
	}
	if config.Valuation.MaxPoints < 2 {
		config.Valuation.MaxPoints = 60
	}
	if config.Valuation.LookbackDays <= 0 {
		config.Valuation.LookbackDays = 30
	}
	if config.Valuation.LookbackDaysWeek <= 0 {
		config.Valuation.LookbackDaysWeek = 7
	}
	if config.Valuation.MaxConcurrency <= 0 {
		config.Valuation.MaxConcurrency = 8
	}
	if config.Snapshots.Hour < 0 || config.Snapshots.Hour > 23 {
		config.Snapshots.Hour = 23
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
