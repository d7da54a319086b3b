// Package config handles configuration loading for biasfeed.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"  yaml:"database"`
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // SQLite file path
}

// ProvidersConfig holds external news provider credentials and toggles.
// An empty credential degrades that provider to empty results; it never
// aborts a fetch.
type ProvidersConfig struct {
	PolygonAPIKey           string `mapstructure:"polygon_api_key"            yaml:"polygon_api_key"`
	FinnhubAPIKey           string `mapstructure:"finnhub_api_key"            yaml:"finnhub_api_key"`
	FinancialDatasetsAPIKey string `mapstructure:"financial_datasets_api_key" yaml:"financial_datasets_api_key"`
	RSSEnabled              bool   `mapstructure:"rss_enabled"                yaml:"rss_enabled"`
}

// NewsConfig holds ingestion and windowing policy.
type NewsConfig struct {
	WindowDays           int      `mapstructure:"window_days"             yaml:"window_days"`             // sliding analysis window
	MaxAgeDays           int      `mapstructure:"max_age_days"            yaml:"max_age_days"`            // default published_after for fetches
	LimitPerSource       int      `mapstructure:"limit_per_source"        yaml:"limit_per_source"`
	FetchIntervalMinutes int      `mapstructure:"fetch_interval_minutes"  yaml:"fetch_interval_minutes"`
	TickerDelaySeconds   int      `mapstructure:"ticker_delay_seconds"    yaml:"ticker_delay_seconds"` // between tickers in a batch
	Tickers              []string `mapstructure:"tickers"                 yaml:"tickers"`
}

// SentimentConfig holds text-classification settings.
type SentimentConfig struct {
	Model         string `mapstructure:"model"          yaml:"model"`          // e.g., "ProsusAI/finbert"
	InferenceURL  string `mapstructure:"inference_url"  yaml:"inference_url"`  // empty → offline keyword classifier
	APIKey        string `mapstructure:"api_key"        yaml:"api_key"`
	BackfillLimit int    `mapstructure:"backfill_limit" yaml:"backfill_limit"` // articles per backfill batch
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.biasfeed/config.yaml (home directory)
//  3. /etc/biasfeed/config.yaml (system)
//
// Environment variables override config file values.
// Format: BIASFEED_<SECTION>_<KEY>, e.g., BIASFEED_PROVIDERS_POLYGON_API_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".biasfeed"))
	v.AddConfigPath("/etc/biasfeed")

	v.SetEnvPrefix("BIASFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("BIASFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "biasfeed.db")

	// Provider defaults
	v.SetDefault("providers.rss_enabled", true)

	// News defaults
	v.SetDefault("news.window_days", 7)
	v.SetDefault("news.max_age_days", 7)
	v.SetDefault("news.limit_per_source", 10)
	v.SetDefault("news.fetch_interval_minutes", 5)
	v.SetDefault("news.ticker_delay_seconds", 1)
	v.SetDefault("news.tickers", []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA"})

	// Sentiment defaults
	v.SetDefault("sentiment.model", "ProsusAI/finbert")
	v.SetDefault("sentiment.backfill_limit", 200)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("BIASFEED_PROVIDERS_POLYGON_API_KEY"); key != "" {
		cfg.Providers.PolygonAPIKey = key
	}
	if key := os.Getenv("BIASFEED_PROVIDERS_FINNHUB_API_KEY"); key != "" {
		cfg.Providers.FinnhubAPIKey = key
	}
	if key := os.Getenv("BIASFEED_PROVIDERS_FINANCIAL_DATASETS_API_KEY"); key != "" {
		cfg.Providers.FinancialDatasetsAPIKey = key
	}
	if key := os.Getenv("BIASFEED_SENTIMENT_API_KEY"); key != "" {
		cfg.Sentiment.APIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
