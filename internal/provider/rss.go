package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/biasfeed/internal/infra"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

const yahooFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// RSS fetches per-ticker headlines from the Yahoo Finance RSS feed.
// It needs no credential and is useful as a zero-cost fallback when no
// API keys are configured.
type RSS struct {
	feedURL string
	parser  *gofeed.Parser
	limiter *infra.RateLimiter
	logger  *slog.Logger
}

// RSSRecord is the JSON shape an RSS feed item is flattened into
// before normalization.
type RSSRecord struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Source    string `json:"source"`
	Summary   string `json:"summary"`
}

// NewRSS creates an RSS adapter over the Yahoo Finance ticker feed.
func NewRSS(logger *slog.Logger) *RSS {
	if logger == nil {
		logger = slog.Default()
	}
	return &RSS{
		feedURL: yahooFeedURL,
		parser:  gofeed.NewParser(),
		limiter: infra.NewRateLimiter(2, time.Second),
		logger:  logger,
	}
}

func (r *RSS) Name() string { return "Yahoo Finance RSS" }
func (r *RSS) Kind() Kind   { return KindRSS }

// Fetch parses the ticker's feed and flattens items into raw records.
// Items without a publish date or published before the cutoff are
// dropped here rather than in the normalizer, since the feed carries
// no date filter of its own.
func (r *RSS) Fetch(ctx context.Context, ticker string, limit int, publishedAfter time.Time) ([]json.RawMessage, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feedURL := fmt.Sprintf(r.feedURL, utils.NormalizeTicker(ticker))
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS feed: %w", err)
	}

	source := feed.Title
	if source == "" {
		source = "Yahoo Finance"
	}

	records := make([]json.RawMessage, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.PublishedParsed == nil || item.PublishedParsed.Before(publishedAfter) {
			continue
		}
		rec := RSSRecord{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.PublishedParsed.UTC().Format(time.RFC3339),
			Source:    source,
			Summary:   cleanHTML(item.Description),
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		records = append(records, raw)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
