// Package provider implements the news source adapters. Each adapter
// wraps one upstream API and returns raw JSON records which the ingest
// pipeline normalizes into articles.
package provider

import (
	"context"
	"encoding/json"
	"time"
)

// Kind identifies the upstream API an adapter talks to. The normalizer
// keys its decoding rules off the kind.
type Kind string

const (
	KindPolygon           Kind = "polygon"
	KindFinnhub           Kind = "finnhub"
	KindFinancialDatasets Kind = "financial_datasets"
	KindRSS               Kind = "rss"
)

// Adapter fetches raw news records for a ticker. Fetch returns at most
// limit records published after the given time. An adapter with no
// configured credential returns an empty slice without calling the
// network; transport and decode failures return an error, which the
// caller treats as non-fatal for that source.
type Adapter interface {
	Name() string
	Kind() Kind
	Fetch(ctx context.Context, ticker string, limit int, publishedAfter time.Time) ([]json.RawMessage, error)
}
