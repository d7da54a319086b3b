package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seenimoa/biasfeed/internal/infra"
	"github.com/seenimoa/biasfeed/internal/sentiment"
	"github.com/seenimoa/biasfeed/internal/store"
	"github.com/seenimoa/biasfeed/pkg/models"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

// ErrInvalidInput marks request validation failures, as opposed to
// storage or classification errors.
var ErrInvalidInput = errors.New("invalid input")

// BiasResolver maps a source domain to a bias rating.
type BiasResolver interface {
	ResolveBias(domain string) models.BiasCategory
}

// Refresher reloads the bias snapshot from storage.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Service coordinates bias and sentiment analysis over the article
// store. Computed analyses are cached briefly since distributions only
// move when new articles land.
type Service struct {
	store     *store.Store
	analyzer  *sentiment.Analyzer
	resolver  BiasResolver
	refresher Refresher
	cache     *infra.Cache
	logger    *slog.Logger

	backfillLimit int
}

// NewService wires the analysis service. backfillLimit caps how many
// articles one backfill pass touches.
func NewService(s *store.Store, analyzer *sentiment.Analyzer, resolver BiasResolver, refresher Refresher, logger *slog.Logger, backfillLimit int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if backfillLimit <= 0 {
		backfillLimit = 200
	}
	return &Service{
		store:         s,
		analyzer:      analyzer,
		resolver:      resolver,
		refresher:     refresher,
		cache:         infra.NewCache(5 * time.Minute),
		logger:        logger,
		backfillLimit: backfillLimit,
	}
}

// AnalyzeTicker computes both distributions for a ticker plus the
// diversity warning and sentiment summary.
func (s *Service) AnalyzeTicker(ctx context.Context, ticker string, days int) (*models.TickerAnalysis, error) {
	ticker = utils.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrInvalidInput)
	}

	cacheKey := fmt.Sprintf("analysis:%s:%d", ticker, days)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*models.TickerAnalysis), nil
	}

	biasDist, err := s.BiasDistribution(ctx, ticker, days)
	if err != nil {
		return nil, err
	}
	sentDist, err := s.SentimentDistribution(ctx, ticker, days)
	if err != nil {
		return nil, err
	}

	analysis := &models.TickerAnalysis{
		Ticker:           ticker,
		Days:             days,
		Bias:             biasDist,
		Sentiment:        sentDist,
		DiversityWarning: DiversityWarning(biasDist),
		SentimentSummary: SentimentSummary(sentDist),
	}
	s.cache.Set(cacheKey, analysis)
	return analysis, nil
}

// RunBatch runs both backfill passes: bias labels for articles whose
// domain has since been registered, then sentiment for articles still
// on the neutral ingest label. Analysis caches are flushed afterwards.
func (s *Service) RunBatch(ctx context.Context) error {
	biasCount, err := s.BackfillBias(ctx)
	if err != nil {
		return fmt.Errorf("bias backfill: %w", err)
	}
	sentimentCount, err := s.BackfillSentiment(ctx)
	if err != nil {
		return fmt.Errorf("sentiment backfill: %w", err)
	}

	if biasCount > 0 || sentimentCount > 0 {
		s.cache.Flush()
	} else {
		s.cache.Cleanup()
	}
	s.logger.Info("batch analysis complete", "bias_updated", biasCount, "sentiment_updated", sentimentCount)
	return nil
}

// InvalidateCaches drops every cached analysis, forcing fresh
// computation on the next query. Called after ingest runs.
func (s *Service) InvalidateCaches() {
	s.cache.Flush()
}
