// Package analysis computes bias and sentiment distributions over
// stored articles and rolls them up across portfolios. Distribution
// math is kept in pure functions over article slices; the Service
// methods wrap them with store queries and caching.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/biasfeed/internal/store"
	"github.com/seenimoa/biasfeed/pkg/models"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

// biasedThreshold is the share one named category must strictly exceed
// before coverage counts as biased.
const biasedThreshold = 60.0

// BiasDistribution computes the bias distribution for a ticker over
// the trailing window of days. days must be positive.
func (s *Service) BiasDistribution(ctx context.Context, ticker string, days int) (*models.BiasDistribution, error) {
	ticker = utils.NormalizeTicker(ticker)
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive, got %d", ErrInvalidInput, days)
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	articles, err := s.store.ArticlesSince(ctx, ticker, since)
	if err != nil {
		return nil, err
	}
	return computeBiasDistribution(ticker, days, articles), nil
}

// computeBiasDistribution tallies articles into bias categories.
// Coverage is biased when one named category strictly exceeds 60% of
// all articles; unknown never qualifies as dominant. An empty slice
// yields an all-zero distribution with IsBiased false.
func computeBiasDistribution(ticker string, days int, articles []models.Article) *models.BiasDistribution {
	dist := &models.BiasDistribution{Ticker: ticker, Days: days}

	total := len(articles)
	dist.TotalArticles = total
	if total == 0 {
		return dist
	}

	counts := make(map[models.BiasCategory]int, len(models.AllBiasCategories))
	for _, a := range articles {
		c := a.BiasLabel
		if !c.Valid() {
			c = models.BiasUnknown
		}
		counts[c]++
	}

	dist.LeftCount = counts[models.BiasLeft]
	dist.LeanLeftCount = counts[models.BiasLeanLeft]
	dist.CenterCount = counts[models.BiasCenter]
	dist.LeanRightCount = counts[models.BiasLeanRight]
	dist.RightCount = counts[models.BiasRight]
	dist.UnknownCount = counts[models.BiasUnknown]

	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }
	dist.LeftPercentage = pct(dist.LeftCount)
	dist.LeanLeftPercentage = pct(dist.LeanLeftCount)
	dist.CenterPercentage = pct(dist.CenterCount)
	dist.LeanRightPercentage = pct(dist.LeanRightCount)
	dist.RightPercentage = pct(dist.RightCount)
	dist.UnknownPercentage = pct(dist.UnknownCount)

	for _, c := range models.NamedBiasCategories {
		if dist.Percentage(c) > biasedThreshold {
			dist.IsBiased = true
			dist.DominantBias = c
			break
		}
	}
	return dist
}

// DiversityWarning returns a human-readable warning when a ticker's
// coverage leans too hard on one viewpoint, or "" otherwise.
func DiversityWarning(dist *models.BiasDistribution) string {
	if dist == nil || !dist.IsBiased {
		return ""
	}
	return fmt.Sprintf("Warning: News coverage for %s is predominantly from %s sources (%.1f%%).",
		dist.Ticker, dist.DominantBias, dist.Percentage(dist.DominantBias))
}

// BackfillBias re-resolves bias for articles still labeled unknown,
// picking up registry entries added after the articles were ingested.
// Returns the number of articles whose label changed.
func (s *Service) BackfillBias(ctx context.Context) (int, error) {
	if err := s.refresher.Refresh(ctx); err != nil {
		return 0, fmt.Errorf("refresh bias registry: %w", err)
	}

	articles, err := s.store.ArticlesWithUnknownBias(ctx, s.backfillLimit)
	if err != nil {
		return 0, err
	}

	var updates []store.BiasUpdate
	for _, a := range articles {
		label := s.resolver.ResolveBias(a.SourceDomain)
		if label == models.BiasUnknown {
			continue
		}
		updates = append(updates, store.BiasUpdate{ArticleID: a.ID, Label: label})
	}
	if len(updates) == 0 {
		return 0, nil
	}

	if err := s.store.UpdateBiasBatch(ctx, updates); err != nil {
		return 0, err
	}
	s.logger.Info("bias backfill complete", "updated", len(updates), "scanned", len(articles))
	return len(updates), nil
}
