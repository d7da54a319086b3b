package models

// BiasDistribution holds per-category counts and percentages for one
// ticker over a trailing window of days. Never persisted; computed at
// query time. Percentages sum to 100 (within floating rounding) when
// TotalArticles > 0, and are all zero otherwise.
type BiasDistribution struct {
	Ticker        string `json:"ticker"`
	TotalArticles int    `json:"total_articles"`

	LeftCount      int `json:"left_count"`
	LeanLeftCount  int `json:"lean_left_count"`
	CenterCount    int `json:"center_count"`
	LeanRightCount int `json:"lean_right_count"`
	RightCount     int `json:"right_count"`
	UnknownCount   int `json:"unknown_count"`

	LeftPercentage      float64 `json:"left_percentage"`
	LeanLeftPercentage  float64 `json:"lean_left_percentage"`
	CenterPercentage    float64 `json:"center_percentage"`
	LeanRightPercentage float64 `json:"lean_right_percentage"`
	RightPercentage     float64 `json:"right_percentage"`
	UnknownPercentage   float64 `json:"unknown_percentage"`

	Days         int          `json:"days"`
	IsBiased     bool         `json:"is_biased"`
	DominantBias BiasCategory `json:"dominant_bias,omitempty"`
}

// Count returns the article count for the given bias category.
func (d *BiasDistribution) Count(c BiasCategory) int {
	switch c {
	case BiasLeft:
		return d.LeftCount
	case BiasLeanLeft:
		return d.LeanLeftCount
	case BiasCenter:
		return d.CenterCount
	case BiasLeanRight:
		return d.LeanRightCount
	case BiasRight:
		return d.RightCount
	default:
		return d.UnknownCount
	}
}

// Percentage returns the share for the given bias category.
func (d *BiasDistribution) Percentage(c BiasCategory) float64 {
	switch c {
	case BiasLeft:
		return d.LeftPercentage
	case BiasLeanLeft:
		return d.LeanLeftPercentage
	case BiasCenter:
		return d.CenterPercentage
	case BiasLeanRight:
		return d.LeanRightPercentage
	case BiasRight:
		return d.RightPercentage
	default:
		return d.UnknownPercentage
	}
}

// SentimentDistribution holds bullish/bearish/neutral counts and
// percentages for one ticker over a trailing window of days.
type SentimentDistribution struct {
	Ticker        string `json:"ticker"`
	TotalArticles int    `json:"total_articles"`

	BullishCount int `json:"bullish_count"`
	BearishCount int `json:"bearish_count"`
	NeutralCount int `json:"neutral_count"`

	BullishPercentage float64 `json:"bullish_percentage"`
	BearishPercentage float64 `json:"bearish_percentage"`
	NeutralPercentage float64 `json:"neutral_percentage"`

	Days             int               `json:"days"`
	OverallSentiment SentimentCategory `json:"overall_sentiment"`
}

// TickerAnalysis bundles everything the analysis layer knows about one
// ticker: both distributions plus the human-readable summaries.
type TickerAnalysis struct {
	Ticker           string                 `json:"ticker"`
	Days             int                    `json:"days"`
	Bias             *BiasDistribution      `json:"bias_distribution"`
	Sentiment        *SentimentDistribution `json:"sentiment_distribution"`
	DiversityWarning string                 `json:"diversity_warning,omitempty"`
	SentimentSummary string                 `json:"sentiment_summary"`
}

// PortfolioAggregate sums distributions across a list of tickers.
// Percentages are recomputed from the summed counts, never averaged
// from per-ticker percentages.
type PortfolioAggregate struct {
	Tickers       []string `json:"tickers"`
	Days          int      `json:"days"`
	TotalArticles int      `json:"total_articles"`

	Bias      BiasDistribution      `json:"bias_distribution"`
	Sentiment SentimentDistribution `json:"sentiment_distribution"`

	TickerResults     map[string]*TickerAnalysis `json:"ticker_results,omitempty"`
	BiasedTickers     []string                   `json:"biased_tickers"`
	HasBiasedCoverage bool                       `json:"has_biased_coverage"`
}
