package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/seenimoa/biasfeed/internal/infra"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// Finnhub fetches company news from the Finnhub API. The API takes
// from/to calendar dates and authenticates via a token query parameter.
type Finnhub struct {
	apiKey  string
	baseURL string
	limiter *infra.RateLimiter
	logger  *slog.Logger

	// now is injectable so tests can pin the to-date.
	now func() time.Time
}

// NewFinnhub creates a Finnhub adapter. An empty apiKey leaves the
// adapter inert.
func NewFinnhub(apiKey string, logger *slog.Logger) *Finnhub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finnhub{
		apiKey:  apiKey,
		baseURL: finnhubBaseURL,
		limiter: infra.NewRateLimiter(30, time.Second),
		logger:  logger,
		now:     time.Now,
	}
}

func (f *Finnhub) Name() string { return "Finnhub" }
func (f *Finnhub) Kind() Kind   { return KindFinnhub }

// Fetch returns raw company-news records for the ticker. Finnhub has
// no limit parameter, so results are truncated client-side.
func (f *Finnhub) Fetch(ctx context.Context, ticker string, limit int, publishedAfter time.Time) ([]json.RawMessage, error) {
	if f.apiKey == "" {
		f.logger.Warn("finnhub API key not set, skipping news fetch")
		return nil, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("symbol", utils.NormalizeTicker(ticker))
	params.Set("from", publishedAfter.UTC().Format("2006-01-02"))
	params.Set("to", f.now().UTC().Format("2006-01-02"))
	params.Set("token", f.apiKey)

	reqURL := fmt.Sprintf("%s/company-news?%s", f.baseURL, params.Encode())

	body, _, err := infra.DoGet(ctx, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("finnhub news: %w", err)
	}
	defer body.Close()

	var records []json.RawMessage
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		return nil, fmt.Errorf("finnhub news decode: %w", err)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
