package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/biasfeed/internal/infra"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

const financialDatasetsBaseURL = "https://api.financialdatasets.ai/v1"

// FinancialDatasets fetches ticker news from the Financial Datasets
// API. Records come back under a "data" envelope.
type FinancialDatasets struct {
	apiKey  string
	baseURL string
	limiter *infra.RateLimiter
	logger  *slog.Logger
}

// NewFinancialDatasets creates a Financial Datasets adapter. An empty
// apiKey leaves the adapter inert.
func NewFinancialDatasets(apiKey string, logger *slog.Logger) *FinancialDatasets {
	if logger == nil {
		logger = slog.Default()
	}
	return &FinancialDatasets{
		apiKey:  apiKey,
		baseURL: financialDatasetsBaseURL,
		limiter: infra.NewRateLimiter(10, time.Second),
		logger:  logger,
	}
}

func (f *FinancialDatasets) Name() string { return "Financial Datasets" }
func (f *FinancialDatasets) Kind() Kind   { return KindFinancialDatasets }

type financialDatasetsResponse struct {
	Data []json.RawMessage `json:"data"`
}

// Fetch returns raw news records for the ticker.
func (f *FinancialDatasets) Fetch(ctx context.Context, ticker string, limit int, publishedAfter time.Time) ([]json.RawMessage, error) {
	if f.apiKey == "" {
		f.logger.Warn("financial datasets API key not set, skipping news fetch")
		return nil, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("symbol", utils.NormalizeTicker(ticker))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("from_date", publishedAfter.UTC().Format("2006-01-02T15:04:05Z"))
	params.Set("sort", "published_at:desc")

	reqURL := fmt.Sprintf("%s/news?%s", f.baseURL, params.Encode())
	headers := map[string]string{"Authorization": "Bearer " + f.apiKey}

	body, _, err := infra.DoGet(ctx, reqURL, headers)
	if err != nil {
		return nil, fmt.Errorf("financial datasets news: %w", err)
	}
	defer body.Close()

	var resp financialDatasetsResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("financial datasets news decode: %w", err)
	}
	return resp.Data, nil
}
