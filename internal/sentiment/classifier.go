// Package sentiment classifies article text as bullish, bearish, or
// neutral. A Classifier produces the model's native label; the
// Analyzer wraps it with truncation, label mapping, and a safe
// fallback when classification fails.
package sentiment

import (
	"context"
	"log/slog"
	"strings"

	"github.com/seenimoa/biasfeed/pkg/models"
)

// maxTextLength is the FinBERT input cap. Longer text is truncated
// rather than rejected.
const maxTextLength = 512

// Classifier returns the model's native label (positive, negative,
// neutral) and a confidence score in [0,1].
type Classifier interface {
	Classify(ctx context.Context, text string) (label string, score float64, err error)
}

// Analyzer converts raw text into a sentiment category. Classification
// failures never propagate: the article stays neutral with zero
// confidence and the error is logged.
type Analyzer struct {
	classifier Classifier
	logger     *slog.Logger
}

// NewAnalyzer wraps a classifier.
func NewAnalyzer(c Classifier, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{classifier: c, logger: logger}
}

// Analyze classifies text and maps the model label onto the market
// sentiment scale: positive reads as bullish, negative as bearish,
// anything else as neutral.
func (a *Analyzer) Analyze(ctx context.Context, text string) (models.SentimentCategory, float64) {
	if runes := []rune(text); len(runes) > maxTextLength {
		text = string(runes[:maxTextLength])
	}

	label, score, err := a.classifier.Classify(ctx, text)
	if err != nil {
		a.logger.Warn("sentiment classification failed", "error", err)
		return models.SentimentNeutral, 0.0
	}

	switch strings.ToLower(label) {
	case "positive":
		return models.SentimentBullish, score
	case "negative":
		return models.SentimentBearish, score
	default:
		return models.SentimentNeutral, score
	}
}

// AnalyzeArticle classifies an article using headline and summary
// together for context.
func (a *Analyzer) AnalyzeArticle(ctx context.Context, article *models.Article) (models.SentimentCategory, float64) {
	text := article.Headline
	if article.Summary != "" {
		text += " " + article.Summary
	}
	return a.Analyze(ctx, text)
}
