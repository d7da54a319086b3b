package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckAPIKeys returns the status of all provider API keys. Missing
// keys are reported, not errors: the owning provider simply degrades
// to empty results.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("Polygon API Key", cfg.Providers.PolygonAPIKey, "BIASFEED_PROVIDERS_POLYGON_API_KEY"),
		checkKey("Finnhub API Key", cfg.Providers.FinnhubAPIKey, "BIASFEED_PROVIDERS_FINNHUB_API_KEY"),
		checkKey("Financial Datasets API Key", cfg.Providers.FinancialDatasetsAPIKey, "BIASFEED_PROVIDERS_FINANCIAL_DATASETS_API_KEY"),
		checkKey("Sentiment Inference API Key", cfg.Sentiment.APIKey, "BIASFEED_SENTIMENT_API_KEY"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
