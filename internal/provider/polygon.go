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

const polygonBaseURL = "https://api.polygon.io/v2"

// Polygon fetches ticker news from the Polygon.io reference news API.
// Free tier allows 5 requests per minute.
type Polygon struct {
	apiKey  string
	baseURL string
	limiter *infra.RateLimiter
	logger  *slog.Logger
}

// NewPolygon creates a Polygon adapter. An empty apiKey leaves the
// adapter configured but inert: Fetch returns no records.
func NewPolygon(apiKey string, logger *slog.Logger) *Polygon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Polygon{
		apiKey:  apiKey,
		baseURL: polygonBaseURL,
		limiter: infra.NewRateLimiter(5, time.Minute),
		logger:  logger,
	}
}

func (p *Polygon) Name() string { return "Polygon.io" }
func (p *Polygon) Kind() Kind   { return KindPolygon }

type polygonResponse struct {
	Status  string            `json:"status"`
	Error   string            `json:"error"`
	Results []json.RawMessage `json:"results"`
}

// Fetch returns raw news records for the ticker.
func (p *Polygon) Fetch(ctx context.Context, ticker string, limit int, publishedAfter time.Time) ([]json.RawMessage, error) {
	if p.apiKey == "" {
		p.logger.Warn("polygon API key not set, skipping news fetch")
		return nil, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("ticker", utils.NormalizeTicker(ticker))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("published_utc.gte", publishedAfter.UTC().Format("2006-01-02"))
	params.Set("order", "published_utc.desc")

	reqURL := fmt.Sprintf("%s/reference/news?%s", p.baseURL, params.Encode())
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}

	body, _, err := infra.DoGet(ctx, reqURL, headers)
	if err != nil {
		return nil, fmt.Errorf("polygon news: %w", err)
	}
	defer body.Close()

	var resp polygonResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("polygon news decode: %w", err)
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("polygon news status %q: %s", resp.Status, resp.Error)
	}
	return resp.Results, nil
}
