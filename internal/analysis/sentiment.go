package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/biasfeed/internal/store"
	"github.com/seenimoa/biasfeed/pkg/models"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

// sentimentMargin is how many percentage points bullish must strictly
// lead bearish (or vice versa) before the overall call moves off
// neutral.
const sentimentMargin = 20.0

// SentimentDistribution computes the sentiment distribution for a
// ticker over the trailing window of days. days must be positive.
func (s *Service) SentimentDistribution(ctx context.Context, ticker string, days int) (*models.SentimentDistribution, error) {
	ticker = utils.NormalizeTicker(ticker)
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive, got %d", ErrInvalidInput, days)
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	articles, err := s.store.ArticlesSince(ctx, ticker, since)
	if err != nil {
		return nil, err
	}
	return computeSentimentDistribution(ticker, days, articles), nil
}

// computeSentimentDistribution tallies sentiment labels. The overall
// call is bullish or bearish only when that side leads the other by
// strictly more than 20 points; a 20-point lead exactly stays neutral.
func computeSentimentDistribution(ticker string, days int, articles []models.Article) *models.SentimentDistribution {
	dist := &models.SentimentDistribution{
		Ticker:           ticker,
		Days:             days,
		OverallSentiment: models.SentimentNeutral,
	}

	total := len(articles)
	dist.TotalArticles = total
	if total == 0 {
		return dist
	}

	for _, a := range articles {
		switch a.SentimentLabel {
		case models.SentimentBullish:
			dist.BullishCount++
		case models.SentimentBearish:
			dist.BearishCount++
		default:
			dist.NeutralCount++
		}
	}

	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }
	dist.BullishPercentage = pct(dist.BullishCount)
	dist.BearishPercentage = pct(dist.BearishCount)
	dist.NeutralPercentage = pct(dist.NeutralCount)

	switch {
	case dist.BullishPercentage > dist.BearishPercentage+sentimentMargin:
		dist.OverallSentiment = models.SentimentBullish
	case dist.BearishPercentage > dist.BullishPercentage+sentimentMargin:
		dist.OverallSentiment = models.SentimentBearish
	}
	return dist
}

// SentimentSummary renders a one-line reading of the distribution.
func SentimentSummary(dist *models.SentimentDistribution) string {
	if dist.TotalArticles == 0 {
		return fmt.Sprintf("No sentiment data available for %s in the past %d days.", dist.Ticker, dist.Days)
	}
	switch dist.OverallSentiment {
	case models.SentimentBullish:
		return fmt.Sprintf("News sentiment for %s is predominantly bullish (%.1f%% positive) over the past %d days.",
			dist.Ticker, dist.BullishPercentage, dist.Days)
	case models.SentimentBearish:
		return fmt.Sprintf("News sentiment for %s is predominantly bearish (%.1f%% negative) over the past %d days.",
			dist.Ticker, dist.BearishPercentage, dist.Days)
	default:
		return fmt.Sprintf("News sentiment for %s is relatively neutral over the past %d days.", dist.Ticker, dist.Days)
	}
}

// BackfillSentiment classifies articles still carrying the neutral
// ingest label. A failed classification leaves its article neutral and
// the batch keeps going; all updates land in a single transaction.
func (s *Service) BackfillSentiment(ctx context.Context) (int, error) {
	articles, err := s.store.ArticlesLabeledNeutral(ctx, s.backfillLimit)
	if err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		return 0, nil
	}

	updates := make([]store.SentimentUpdate, 0, len(articles))
	for i := range articles {
		label, confidence := s.analyzer.AnalyzeArticle(ctx, &articles[i])
		updates = append(updates, store.SentimentUpdate{
			ArticleID:  articles[i].ID,
			Label:      label,
			Confidence: confidence,
		})
	}

	if err := s.store.UpdateSentimentBatch(ctx, updates); err != nil {
		return 0, err
	}
	s.logger.Info("sentiment backfill complete", "analyzed", len(updates))
	return len(updates), nil
}
