package sentiment

import (
	"context"
	"math"
	"strings"
)

// Keyword is a deterministic offline classifier used when no inference
// endpoint is configured. It scores text against bullish and bearish
// keyword dictionaries.
type Keyword struct{}

// NewKeyword creates the keyword classifier.
func NewKeyword() *Keyword { return &Keyword{} }

// bullish / bearish keyword dictionaries (lowercase, stemmed).
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"buy": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beat": 0.5,
	"exceeds": 0.5, "beats estimate": 0.6, "expansion": 0.4,
	"profit": 0.3, "dividend": 0.4, "accumulate": 0.5,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6,
	"negative": 0.4, "downgrade": 0.6, "underperform": 0.6,
	"sell": 0.5, "weak": 0.4, "decline": 0.5, "loss": 0.4,
	"selloff": 0.7, "fall": 0.4, "correction": 0.5,
	"default": 0.7, "fraud": 0.8, "scam": 0.8, "investigation": 0.5,
	"cut": 0.3, "miss": 0.5, "warning": 0.5, "concern": 0.3,
}

// netThreshold is the minimum normalized net score before the text
// counts as anything other than neutral.
const netThreshold = 0.15

// Classify scores the text against the keyword dictionaries. Score
// reflects both keyword weight and match count; texts with no keyword
// signal come back neutral with low confidence.
func (k *Keyword) Classify(_ context.Context, text string) (string, float64, error) {
	lower := strings.ToLower(text)

	bullScore := 0.0
	bearScore := 0.0
	matches := 0

	for word, weight := range bullishWords {
		if strings.Contains(lower, word) {
			bullScore += weight
			matches++
		}
	}
	for word, weight := range bearishWords {
		if strings.Contains(lower, word) {
			bearScore += weight
			matches++
		}
	}

	total := bullScore + bearScore
	if matches == 0 || total == 0 {
		return "neutral", 0.1, nil
	}

	net := (bullScore - bearScore) / total
	confidence := math.Min(float64(matches)*0.15+0.2, 0.85)

	switch {
	case net > netThreshold:
		return "positive", confidence, nil
	case net < -netThreshold:
		return "negative", confidence, nil
	default:
		return "neutral", confidence, nil
	}
}
