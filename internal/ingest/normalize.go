// Package ingest turns raw provider records into stored articles:
// normalization, URL deduplication, and the fan-out orchestrator.
package ingest

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/seenimoa/biasfeed/internal/provider"
	"github.com/seenimoa/biasfeed/pkg/models"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

// BiasResolver maps a source domain to a bias rating.
type BiasResolver interface {
	ResolveBias(domain string) models.BiasCategory
}

// Normalizer converts raw provider records into articles. Records
// missing a URL or a publish timestamp are dropped. Every normalized
// article starts with a neutral sentiment label; classification runs
// as a separate pass.
type Normalizer struct {
	resolver BiasResolver
	logger   *slog.Logger
}

// NewNormalizer creates a normalizer using the given bias resolver.
func NewNormalizer(resolver BiasResolver, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{resolver: resolver, logger: logger}
}

type polygonArticle struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ArticleURL   string `json:"article_url"`
	PublishedUTC string `json:"published_utc"`
	Publisher    struct {
		Name     string `json:"name"`
		Homepage string `json:"homepage_url"`
	} `json:"publisher"`
}

type finnhubArticle struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Datetime int64  `json:"datetime"`
}

type financialDatasetsArticle struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	SourceURL   string `json:"source_url"`
	PublishedAt string `json:"published_at"`
}

// Normalize converts one raw record into an article. The second return
// value is false when the record cannot be used (unknown kind, decode
// failure, missing URL or timestamp).
func (n *Normalizer) Normalize(raw json.RawMessage, ticker string, kind provider.Kind) (*models.Article, bool) {
	ticker = utils.NormalizeTicker(ticker)

	switch kind {
	case provider.KindPolygon:
		return n.normalizePolygon(raw, ticker)
	case provider.KindFinnhub:
		return n.normalizeFinnhub(raw, ticker)
	case provider.KindFinancialDatasets:
		return n.normalizeFinancialDatasets(raw, ticker)
	case provider.KindRSS:
		return n.normalizeRSS(raw, ticker)
	default:
		n.logger.Warn("unknown provider kind", "kind", string(kind))
		return nil, false
	}
}

func (n *Normalizer) normalizePolygon(raw json.RawMessage, ticker string) (*models.Article, bool) {
	var rec polygonArticle
	if err := json.Unmarshal(raw, &rec); err != nil {
		n.logger.Warn("bad polygon record", "error", err)
		return nil, false
	}
	if rec.ArticleURL == "" || rec.PublishedUTC == "" {
		return nil, false
	}
	published, err := time.Parse(time.RFC3339, rec.PublishedUTC)
	if err != nil {
		n.logger.Warn("bad polygon timestamp", "value", rec.PublishedUTC)
		return nil, false
	}

	source := rec.Publisher.Name
	if source == "" {
		source = "Unknown"
	}
	domain := domainFromURL(rec.Publisher.Homepage)
	if domain == "" {
		domain = domainFromURL(rec.ArticleURL)
	}

	return n.article(ticker, rec.Title, rec.Description, rec.ArticleURL, source, domain, published), true
}

func (n *Normalizer) normalizeFinnhub(raw json.RawMessage, ticker string) (*models.Article, bool) {
	var rec finnhubArticle
	if err := json.Unmarshal(raw, &rec); err != nil {
		n.logger.Warn("bad finnhub record", "error", err)
		return nil, false
	}
	if rec.URL == "" || rec.Datetime == 0 {
		return nil, false
	}
	published := time.Unix(rec.Datetime, 0).UTC()

	source := rec.Source
	if source == "" {
		source = "Unknown"
	}
	// Finnhub carries no publisher URL; the source name doubles as the
	// domain key (it is often already a bare domain like "cnbc.com").
	domain := strings.ToLower(source)

	return n.article(ticker, rec.Headline, rec.Summary, rec.URL, source, domain, published), true
}

func (n *Normalizer) normalizeFinancialDatasets(raw json.RawMessage, ticker string) (*models.Article, bool) {
	var rec financialDatasetsArticle
	if err := json.Unmarshal(raw, &rec); err != nil {
		n.logger.Warn("bad financial datasets record", "error", err)
		return nil, false
	}
	if rec.URL == "" || rec.PublishedAt == "" {
		return nil, false
	}
	published, err := time.Parse(time.RFC3339, rec.PublishedAt)
	if err != nil {
		n.logger.Warn("bad financial datasets timestamp", "value", rec.PublishedAt)
		return nil, false
	}

	source := rec.Source
	if source == "" {
		source = "Unknown"
	}
	domain := domainFromURL(rec.SourceURL)
	if domain == "" {
		domain = domainFromURL(rec.URL)
	}

	return n.article(ticker, rec.Title, rec.Summary, rec.URL, source, domain, published), true
}

func (n *Normalizer) normalizeRSS(raw json.RawMessage, ticker string) (*models.Article, bool) {
	var rec provider.RSSRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		n.logger.Warn("bad rss record", "error", err)
		return nil, false
	}
	if rec.Link == "" || rec.Published == "" {
		return nil, false
	}
	published, err := time.Parse(time.RFC3339, rec.Published)
	if err != nil {
		n.logger.Warn("bad rss timestamp", "value", rec.Published)
		return nil, false
	}

	source := rec.Source
	if source == "" {
		source = "Unknown"
	}
	domain := domainFromURL(rec.Link)

	return n.article(ticker, rec.Title, rec.Summary, rec.Link, source, domain, published), true
}

func (n *Normalizer) article(ticker, headline, summary, articleURL, source, domain string, published time.Time) *models.Article {
	domain = utils.NormalizeDomain(domain)
	return &models.Article{
		Ticker:         ticker,
		Headline:       headline,
		Summary:        summary,
		URL:            articleURL,
		Source:         source,
		SourceDomain:   domain,
		BiasLabel:      n.resolver.ResolveBias(domain),
		SentimentLabel: models.SentimentNeutral,
		PublishedAt:    published.UTC(),
	}
}

// domainFromURL extracts the bare host from a URL, tolerating values
// that are already bare hosts.
func domainFromURL(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
