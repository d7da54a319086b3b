package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/biasfeed/internal/analysis"
	"github.com/seenimoa/biasfeed/internal/bias"
	"github.com/seenimoa/biasfeed/internal/config"
	"github.com/seenimoa/biasfeed/internal/ingest"
	"github.com/seenimoa/biasfeed/internal/provider"
	"github.com/seenimoa/biasfeed/internal/sentiment"
	"github.com/seenimoa/biasfeed/internal/store"
	"github.com/seenimoa/biasfeed/pkg/models"
)

// stubAdapter feeds the ingest pipeline canned polygon-shaped records.
type stubAdapter struct {
	records []json.RawMessage
}

func (a *stubAdapter) Name() string        { return "stub" }
func (a *stubAdapter) Kind() provider.Kind { return provider.KindPolygon }
func (a *stubAdapter) Fetch(context.Context, string, int, time.Time) ([]json.RawMessage, error) {
	return a.records, nil
}

func testServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	if _, err := s.SeedSources(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	registry := bias.NewRegistry(s, nil)
	if err := registry.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	analyzer := sentiment.NewAnalyzer(sentiment.NewKeyword(), nil)
	svc := analysis.NewService(s, analyzer, registry, registry, nil, 200)

	adapter := &stubAdapter{records: []json.RawMessage{
		json.RawMessage(`{"title":"ingested","article_url":"https://www.reuters.com/ingested","published_utc":"2026-08-28T10:00:00Z","publisher":{"name":"Reuters","homepage_url":"https://reuters.com"}}`),
	}}
	normalizer := ingest.NewNormalizer(registry, nil)
	orch := ingest.NewOrchestrator([]provider.Adapter{adapter}, normalizer, registry, s, nil, 10, 7, 0)

	cfg := &config.Config{}
	return NewServer(cfg, s, svc, orch, nil), s
}

func seedArticle(t *testing.T, s *store.Store, ticker, url string, biasLabel models.BiasCategory, sentimentLabel models.SentimentCategory) {
	t.Helper()
	_, err := s.InsertNewArticles(context.Background(), []models.Article{{
		Ticker:         ticker,
		Headline:       "headline",
		URL:            url,
		Source:         "Test",
		SourceDomain:   "test.com",
		BiasLabel:      biasLabel,
		SentimentLabel: sentimentLabel,
		PublishedAt:    time.Now().UTC().Add(-time.Hour),
	}})
	if err != nil {
		t.Fatalf("seed article: %v", err)
	}
}

func doRequest(t *testing.T, srv *Server, method, target string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	rec, resp := doRequest(t, srv, http.MethodGet, "/health")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("health: code=%d resp=%+v", rec.Code, resp)
	}
}

func TestNewsRequiresTicker(t *testing.T) {
	srv, _ := testServer(t)
	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/news")
	if rec.Code != http.StatusBadRequest || resp.Success {
		t.Fatalf("code=%d resp=%+v", rec.Code, resp)
	}
}

func TestNewsFilters(t *testing.T) {
	srv, s := testServer(t)
	seedArticle(t, s, "AAPL", "https://test.com/1", models.BiasLeft, models.SentimentBullish)
	seedArticle(t, s, "AAPL", "https://test.com/2", models.BiasRight, models.SentimentBearish)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/news?ticker=aapl&bias=left")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("code=%d resp=%+v", rec.Code, resp)
	}
	articles, ok := resp.Data.([]interface{})
	if !ok || len(articles) != 1 {
		t.Fatalf("filtered articles = %v", resp.Data)
	}

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/v1/news?ticker=AAPL&bias=leftish")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid bias filter: code=%d", rec.Code)
	}

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/v1/news?ticker=AAPL&sentiment=angry")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid sentiment filter: code=%d", rec.Code)
	}

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/v1/news?ticker=AAPL&limit=nope")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid limit: code=%d", rec.Code)
	}
}

func TestTrendingNews(t *testing.T) {
	srv, s := testServer(t)
	for i := 0; i < 3; i++ {
		seedArticle(t, s, "MSFT", fmt.Sprintf("https://test.com/t%d", i), models.BiasCenter, models.SentimentNeutral)
	}

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/news/trending?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	articles, ok := resp.Data.([]interface{})
	if !ok || len(articles) != 2 {
		t.Fatalf("trending = %v", resp.Data)
	}
}

func TestPortfolioNews(t *testing.T) {
	srv, s := testServer(t)
	seedArticle(t, s, "AAPL", "https://test.com/a", models.BiasCenter, models.SentimentNeutral)
	seedArticle(t, s, "MSFT", "https://test.com/m", models.BiasCenter, models.SentimentNeutral)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/news/portfolio?tickers=AAPL,MSFT")
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	byTicker, ok := resp.Data.(map[string]interface{})
	if !ok || len(byTicker) != 2 {
		t.Fatalf("portfolio news = %v", resp.Data)
	}

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/v1/news/portfolio")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing tickers: code=%d", rec.Code)
	}
}

func TestTickerAnalysis(t *testing.T) {
	srv, s := testServer(t)
	for i := 0; i < 7; i++ {
		seedArticle(t, s, "TSLA", fmt.Sprintf("https://test.com/l%d", i), models.BiasLeft, models.SentimentBullish)
	}
	for i := 0; i < 3; i++ {
		seedArticle(t, s, "TSLA", fmt.Sprintf("https://test.com/c%d", i), models.BiasCenter, models.SentimentNeutral)
	}

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/analysis/ticker/TSLA")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("code=%d resp=%+v", rec.Code, resp)
	}
	data, _ := json.Marshal(resp.Data)
	body := string(data)
	if !strings.Contains(body, `"is_biased":true`) {
		t.Errorf("analysis missing biased flag: %s", body)
	}
	if !strings.Contains(body, "predominantly bullish") {
		t.Errorf("analysis missing sentiment summary: %s", body)
	}

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/v1/analysis/ticker/TSLA?days=0")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("days=0: code=%d", rec.Code)
	}
}

func TestTickerBiasAndSentiment(t *testing.T) {
	srv, s := testServer(t)
	seedArticle(t, s, "NVDA", "https://test.com/n1", models.BiasLeanRight, models.SentimentBearish)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/analysis/ticker/NVDA/bias")
	if rec.Code != http.StatusOK {
		t.Fatalf("bias: code=%d", rec.Code)
	}
	data, _ := json.Marshal(resp.Data)
	if !strings.Contains(string(data), `"lean_right_count":1`) {
		t.Errorf("bias distribution = %s", data)
	}

	rec, resp = doRequest(t, srv, http.MethodGet, "/api/v1/analysis/ticker/NVDA/sentiment")
	if rec.Code != http.StatusOK {
		t.Fatalf("sentiment: code=%d", rec.Code)
	}
	data, _ = json.Marshal(resp.Data)
	if !strings.Contains(string(data), `"bearish_count":1`) {
		t.Errorf("sentiment distribution = %s", data)
	}
}

func TestAnalysisStorageFailureIsServerError(t *testing.T) {
	srv, s := testServer(t)
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/analysis/ticker/AAPL/bias")
	if rec.Code != http.StatusInternalServerError || resp.Success {
		t.Fatalf("storage failure: code=%d resp=%+v, want 500", rec.Code, resp)
	}

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/v1/analysis/ticker/AAPL/bias?days=0")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("days=0: code=%d, want 400 even with storage down", rec.Code)
	}
}

func TestPortfolioAnalysis(t *testing.T) {
	srv, s := testServer(t)
	seedArticle(t, s, "AAPL", "https://test.com/p1", models.BiasLeft, models.SentimentBullish)
	seedArticle(t, s, "MSFT", "https://test.com/p2", models.BiasRight, models.SentimentBearish)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/analysis/portfolio?tickers=AAPL,MSFT")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("code=%d resp=%+v", rec.Code, resp)
	}
	data, _ := json.Marshal(resp.Data)
	if !strings.Contains(string(data), `"total_articles":2`) {
		t.Errorf("aggregate = %s", data)
	}

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/v1/analysis/portfolio")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing tickers: code=%d", rec.Code)
	}
}

func TestRunAnalysisAccepted(t *testing.T) {
	srv, _ := testServer(t)
	rec, resp := doRequest(t, srv, http.MethodPost, "/api/v1/analysis/run")
	if rec.Code != http.StatusAccepted || !resp.Success {
		t.Fatalf("code=%d resp=%+v", rec.Code, resp)
	}
}

func TestIngestEndpoint(t *testing.T) {
	srv, s := testServer(t)

	rec, resp := doRequest(t, srv, http.MethodPost, "/api/v1/ingest/AAPL")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("code=%d resp=%+v", rec.Code, resp)
	}
	data, _ := json.Marshal(resp.Data)
	if !strings.Contains(string(data), `"new_articles":1`) {
		t.Errorf("ingest response = %s", data)
	}

	n, _ := s.CountArticles(context.Background())
	if n != 1 {
		t.Fatalf("stored %d, want 1", n)
	}
}

func TestSources(t *testing.T) {
	srv, _ := testServer(t)

	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/sources")
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	sources, ok := resp.Data.([]interface{})
	if !ok || len(sources) != len(store.DefaultSources) {
		t.Fatalf("sources = %d entries", len(sources))
	}

	rec, resp = doRequest(t, srv, http.MethodGet, "/api/v1/sources/www.CNN.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("by domain: code=%d", rec.Code)
	}
	data, _ := json.Marshal(resp.Data)
	if !strings.Contains(string(data), `"cnn.com"`) {
		t.Errorf("source = %s", data)
	}

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/v1/sources/nosuch.example")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing source: code=%d", rec.Code)
	}
}

func TestMethodology(t *testing.T) {
	srv, _ := testServer(t)
	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/methodology")
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	data, _ := json.Marshal(resp.Data)
	if !strings.Contains(string(data), "allsides.com") {
		t.Errorf("methodology = %s", data)
	}
}
