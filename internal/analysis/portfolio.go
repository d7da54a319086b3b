package analysis

import (
	"context"
	"fmt"

	"github.com/seenimoa/biasfeed/pkg/models"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

// Portfolio analyzes each ticker and rolls the results up into
// aggregate distributions. Aggregate percentages are recomputed from
// summed counts, never averaged across tickers.
func (s *Service) Portfolio(ctx context.Context, tickers []string, days int) (*models.PortfolioAggregate, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers given", ErrInvalidInput)
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive, got %d", ErrInvalidInput, days)
	}

	normalized := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t = utils.NormalizeTicker(t); t != "" {
			normalized = append(normalized, t)
		}
	}
	if len(normalized) == 0 {
		return nil, fmt.Errorf("%w: no tickers given", ErrInvalidInput)
	}

	cacheKey := fmt.Sprintf("portfolio:%v:%d", normalized, days)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*models.PortfolioAggregate), nil
	}

	results := make(map[string]*models.TickerAnalysis, len(normalized))
	for _, ticker := range normalized {
		analysis, err := s.AnalyzeTicker(ctx, ticker, days)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", ticker, err)
		}
		results[ticker] = analysis
	}

	agg := computePortfolioAggregate(normalized, days, results)
	s.cache.Set(cacheKey, agg)
	return agg, nil
}

// computePortfolioAggregate sums per-ticker counts and recomputes
// percentages and dominance calls over the combined totals.
func computePortfolioAggregate(tickers []string, days int, results map[string]*models.TickerAnalysis) *models.PortfolioAggregate {
	agg := &models.PortfolioAggregate{
		Tickers:       tickers,
		Days:          days,
		TickerResults: results,
		BiasedTickers: []string{},
	}
	agg.Bias.Days = days
	agg.Sentiment.Days = days
	agg.Sentiment.OverallSentiment = models.SentimentNeutral

	for _, ticker := range tickers {
		r, ok := results[ticker]
		if !ok || r == nil {
			continue
		}

		agg.TotalArticles += r.Bias.TotalArticles
		agg.Bias.LeftCount += r.Bias.LeftCount
		agg.Bias.LeanLeftCount += r.Bias.LeanLeftCount
		agg.Bias.CenterCount += r.Bias.CenterCount
		agg.Bias.LeanRightCount += r.Bias.LeanRightCount
		agg.Bias.RightCount += r.Bias.RightCount
		agg.Bias.UnknownCount += r.Bias.UnknownCount

		agg.Sentiment.BullishCount += r.Sentiment.BullishCount
		agg.Sentiment.BearishCount += r.Sentiment.BearishCount
		agg.Sentiment.NeutralCount += r.Sentiment.NeutralCount

		if r.Bias.IsBiased {
			agg.BiasedTickers = append(agg.BiasedTickers, ticker)
		}
	}

	total := agg.TotalArticles
	agg.Bias.TotalArticles = total
	agg.Sentiment.TotalArticles = total
	agg.HasBiasedCoverage = len(agg.BiasedTickers) > 0
	if total == 0 {
		return agg
	}

	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }
	agg.Bias.LeftPercentage = pct(agg.Bias.LeftCount)
	agg.Bias.LeanLeftPercentage = pct(agg.Bias.LeanLeftCount)
	agg.Bias.CenterPercentage = pct(agg.Bias.CenterCount)
	agg.Bias.LeanRightPercentage = pct(agg.Bias.LeanRightCount)
	agg.Bias.RightPercentage = pct(agg.Bias.RightCount)
	agg.Bias.UnknownPercentage = pct(agg.Bias.UnknownCount)

	for _, c := range models.NamedBiasCategories {
		if agg.Bias.Percentage(c) > biasedThreshold {
			agg.Bias.IsBiased = true
			agg.Bias.DominantBias = c
			break
		}
	}

	agg.Sentiment.BullishPercentage = pct(agg.Sentiment.BullishCount)
	agg.Sentiment.BearishPercentage = pct(agg.Sentiment.BearishCount)
	agg.Sentiment.NeutralPercentage = pct(agg.Sentiment.NeutralCount)
	switch {
	case agg.Sentiment.BullishPercentage > agg.Sentiment.BearishPercentage+sentimentMargin:
		agg.Sentiment.OverallSentiment = models.SentimentBullish
	case agg.Sentiment.BearishPercentage > agg.Sentiment.BullishPercentage+sentimentMargin:
		agg.Sentiment.OverallSentiment = models.SentimentBearish
	}
	return agg
}
