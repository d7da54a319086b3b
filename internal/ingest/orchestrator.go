package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/biasfeed/internal/provider"
	"github.com/seenimoa/biasfeed/internal/store"
	"github.com/seenimoa/biasfeed/pkg/models"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

// Refresher reloads a bias snapshot from storage.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Orchestrator runs the fetch pipeline for a ticker: fan out to every
// adapter concurrently, normalize, dedupe across sources, and persist
// whatever is new. A failing adapter costs its own batch only.
type Orchestrator struct {
	adapters   []provider.Adapter
	normalizer *Normalizer
	refresher  Refresher
	store      *store.Store
	logger     *slog.Logger

	limitPerSource int
	windowDays     int
	tickerDelay    time.Duration
}

// NewOrchestrator wires the pipeline together. limitPerSource caps
// each adapter's batch; windowDays bounds how far back fetches reach.
func NewOrchestrator(adapters []provider.Adapter, normalizer *Normalizer, refresher Refresher, s *store.Store, logger *slog.Logger, limitPerSource, windowDays int, tickerDelay time.Duration) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		adapters:       adapters,
		normalizer:     normalizer,
		refresher:      refresher,
		store:          s,
		logger:         logger,
		limitPerSource: limitPerSource,
		windowDays:     windowDays,
		tickerDelay:    tickerDelay,
	}
}

// Run fetches, normalizes, dedupes, and stores news for one ticker.
// It returns the articles that were actually new. Re-running for the
// same window stores nothing extra: dedup here and the unique URL
// index below make ingestion idempotent.
func (o *Orchestrator) Run(ctx context.Context, ticker string) ([]models.Article, error) {
	ticker = utils.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("empty ticker")
	}

	if o.refresher != nil {
		if err := o.refresher.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("refresh bias registry: %w", err)
		}
	}

	publishedAfter := time.Now().UTC().AddDate(0, 0, -o.windowDays)

	// One normalized batch per adapter, in adapter order, so merge
	// precedence stays deterministic regardless of completion order.
	batches := make([][]models.Article, len(o.adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range o.adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			raws, err := adapter.Fetch(gctx, ticker, o.limitPerSource, publishedAfter)
			if err != nil {
				o.logger.Warn("source fetch failed", "source", adapter.Name(), "ticker", ticker, "error", err)
				return nil
			}
			batch := make([]models.Article, 0, len(raws))
			for _, raw := range raws {
				if a, ok := o.normalizer.Normalize(raw, ticker, adapter.Kind()); ok {
					batch = append(batch, *a)
				}
			}
			batches[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := Merge(batches...)
	if len(merged) == 0 {
		o.logger.Info("no articles fetched", "ticker", ticker)
		return nil, nil
	}

	saved, err := o.store.InsertNewArticles(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("store articles: %w", err)
	}

	o.logger.Info("ingest complete", "ticker", ticker, "fetched", len(merged), "new", len(saved))
	return saved, nil
}

// RunForTickers processes tickers sequentially with a pause between
// each, which keeps free-tier APIs from throttling the whole sweep.
// Per-ticker failures are logged and do not stop the sweep.
func (o *Orchestrator) RunForTickers(ctx context.Context, tickers []string) (int, error) {
	total := 0
	for i, ticker := range tickers {
		if i > 0 && o.tickerDelay > 0 {
			select {
			case <-time.After(o.tickerDelay):
			case <-ctx.Done():
				return total, ctx.Err()
			}
		}
		saved, err := o.Run(ctx, ticker)
		if err != nil {
			o.logger.Error("ingest failed", "ticker", ticker, "error", err)
			continue
		}
		total += len(saved)
	}
	return total, nil
}
