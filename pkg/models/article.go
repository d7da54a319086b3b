// Package models defines the canonical data types shared across the
// application: articles, news sources, and the computed distribution
// shapes returned by the analysis layer.
package models

import "time"

// BiasCategory is the political-bias rating of a news source, inherited
// by every article that source publishes. Ratings follow the AllSides
// six-point scale.
type BiasCategory string

const (
	BiasLeft      BiasCategory = "left"
	BiasLeanLeft  BiasCategory = "lean_left"
	BiasCenter    BiasCategory = "center"
	BiasLeanRight BiasCategory = "lean_right"
	BiasRight     BiasCategory = "right"
	BiasUnknown   BiasCategory = "unknown"
)

// NamedBiasCategories lists the five rated categories in spectrum order.
// Unknown is deliberately excluded: it can never be a dominant bias.
var NamedBiasCategories = []BiasCategory{
	BiasLeft, BiasLeanLeft, BiasCenter, BiasLeanRight, BiasRight,
}

// AllBiasCategories lists every category, including unknown.
var AllBiasCategories = []BiasCategory{
	BiasLeft, BiasLeanLeft, BiasCenter, BiasLeanRight, BiasRight, BiasUnknown,
}

// Valid reports whether b is one of the enumerated categories.
func (b BiasCategory) Valid() bool {
	switch b {
	case BiasLeft, BiasLeanLeft, BiasCenter, BiasLeanRight, BiasRight, BiasUnknown:
		return true
	}
	return false
}

// SentimentCategory is the market-sentiment label assigned to an
// article by text classification.
type SentimentCategory string

const (
	SentimentBullish SentimentCategory = "bullish"
	SentimentBearish SentimentCategory = "bearish"
	SentimentNeutral SentimentCategory = "neutral"
)

// Valid reports whether s is one of the enumerated categories.
func (s SentimentCategory) Valid() bool {
	switch s {
	case SentimentBullish, SentimentBearish, SentimentNeutral:
		return true
	}
	return false
}

// Article is the canonical, provider-independent unit of news.
// URL is the deduplication key: exact string equality, no
// normalization of trailing slashes or query parameters.
type Article struct {
	ID                  uint              `json:"id" gorm:"primaryKey"`
	Ticker              string            `json:"ticker" gorm:"index;not null"`
	Headline            string            `json:"headline" gorm:"not null"`
	Summary             string            `json:"summary" gorm:"type:text"`
	URL                 string            `json:"url" gorm:"uniqueIndex;not null"`
	Source              string            `json:"source" gorm:"not null"`
	SourceDomain        string            `json:"source_domain"`
	BiasLabel           BiasCategory      `json:"bias_label" gorm:"index;not null"`
	SentimentLabel      SentimentCategory `json:"sentiment_label" gorm:"index;not null"`
	SentimentConfidence *float64          `json:"sentiment_confidence,omitempty"`
	PublishedAt         time.Time         `json:"published_at" gorm:"index;not null"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}
