// Package scheduler drives the periodic fetch-and-analyze sweep.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Ingester runs the fetch pipeline for a set of tickers.
type Ingester interface {
	RunForTickers(ctx context.Context, tickers []string) (int, error)
}

// Analyzer runs the backfill passes after an ingest sweep.
type Analyzer interface {
	RunBatch(ctx context.Context) error
}

// Scheduler runs the ingest sweep and backfills on a fixed interval.
type Scheduler struct {
	ingester Ingester
	analyzer Analyzer
	tickers  []string
	interval int
	logger   *slog.Logger

	cron *cron.Cron

	mu      sync.Mutex
	running bool
}

// New creates a scheduler that sweeps the configured tickers every
// intervalMinutes.
func New(ingester Ingester, analyzer Analyzer, tickers []string, intervalMinutes int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if intervalMinutes <= 0 {
		intervalMinutes = 5
	}
	return &Scheduler{
		ingester: ingester,
		analyzer: analyzer,
		tickers:  tickers,
		interval: intervalMinutes,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the sweep job and starts the cron loop. An initial
// sweep runs immediately in the background so a fresh deployment has
// data before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	expr := fmt.Sprintf("*/%d * * * *", s.interval)
	if _, err := s.cron.AddFunc(expr, func() { s.sweep(ctx) }); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", "interval_minutes", s.interval, "tickers", len(s.tickers))

	go s.sweep(ctx)
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false
	s.logger.Info("scheduler stopped")
}

// sweep runs one full pass: ingest every ticker, then backfill bias
// and sentiment labels.
func (s *Scheduler) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	saved, err := s.ingester.RunForTickers(ctx, s.tickers)
	if err != nil {
		s.logger.Error("scheduled ingest failed", "error", err)
		return
	}
	s.logger.Info("scheduled ingest finished", "new_articles", saved)

	if err := s.analyzer.RunBatch(ctx); err != nil {
		s.logger.Error("scheduled analysis failed", "error", err)
	}
}
