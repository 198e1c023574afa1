// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the persistent store location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	MarketFeed MarketFeedConfig `toml:"marketfeed"`
	Gemini     GeminiConfig     `toml:"gemini"`
}

// MarketFeedConfig holds market data provider configuration.
// When APIKey is empty or UseMockData is set, the built-in mock
// provider is used instead of the HTTP client.
type MarketFeedConfig struct {
	BaseURL     string `toml:"base_url"`
	APIKey      string `toml:"api_key"`
	RateLimit   int    `toml:"rate_limit"`
	Timeout     string `toml:"timeout"`
	UseMockData bool   `toml:"use_mock_data"`
}

// GetTimeout parses and returns the timeout duration
func (c *MarketFeedConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration for news summaries
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// SchedulerConfig holds refresh scheduler intervals.
type SchedulerConfig struct {
	AnalysisInterval string `toml:"analysis_interval"`
	NewsInterval     string `toml:"news_interval"`
	BootstrapDelay   string `toml:"bootstrap_delay"`
}

// GetAnalysisInterval parses the analysis refresh interval (default 30m).
func (c *SchedulerConfig) GetAnalysisInterval() time.Duration {
	d, err := time.ParseDuration(c.AnalysisInterval)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// GetNewsInterval parses the news refresh interval (default 15m).
func (c *SchedulerConfig) GetNewsInterval() time.Duration {
	d, err := time.ParseDuration(c.NewsInterval)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// GetBootstrapDelay parses the startup bootstrap delay (default 5s).
func (c *SchedulerConfig) GetBootstrapDelay() time.Duration {
	d, err := time.ParseDuration(c.BootstrapDelay)
	if err != nil || d < 0 {
		return 5 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// IsProduction returns true when running in a production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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
			Path: "data/folio",
		},
		Clients: ClientsConfig{
			MarketFeed: MarketFeedConfig{
				BaseURL:   "https://api.marketfeed.io/v1",
				RateLimit: 2,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-3-flash-preview",
			},
		},
		Scheduler: SchedulerConfig{
			AnalysisInterval: "30m",
			NewsInterval:     "15m",
			BootstrapDelay:   "5s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the given TOML files in order
// (later files override earlier), then applies environment overrides.
// Missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

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

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if key := os.Getenv("FOLIO_MARKETFEED_API_KEY"); key != "" {
		config.Clients.MarketFeed.APIKey = key
	}

	if key := os.Getenv("FOLIO_GEMINI_API_KEY"); key != "" {
		config.Clients.Gemini.APIKey = key
	}

	if mock := os.Getenv("FOLIO_USE_MOCK_DATA"); mock != "" {
		config.Clients.MarketFeed.UseMockData = mock == "true" || mock == "1"
	}
}
