package api

import "fmt"

// Version is the reported build version. Overridden at build time via
// -ldflags "-X github.com/seenimoa/biasfeed/api.Version=...".
var Version = "dev"

type methodologyCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type biasMethodology struct {
	Description string                `json:"description"`
	Categories  []methodologyCategory `json:"categories"`
	Reference   string                `json:"reference"`
}

type sentimentMethodology struct {
	Description string                `json:"description"`
	Categories  []methodologyCategory `json:"categories"`
	Model       string                `json:"model"`
}

// methodology documents how bias and sentiment labels are assigned.
// Static: served verbatim by GET /api/v1/methodology.
var methodology = struct {
	Bias      biasMethodology      `json:"bias_methodology"`
	Sentiment sentimentMethodology `json:"sentiment_methodology"`
}{
	Bias: biasMethodology{
		Description: "We categorize news sources on a political spectrum from Left to Right based on AllSides Media Bias Ratings, a widely respected methodology.",
		Categories: []methodologyCategory{
			{Name: "left", Description: "Sources with a strong liberal bias"},
			{Name: "lean_left", Description: "Sources with a moderate liberal bias"},
			{Name: "center", Description: "Sources with minimal partisan bias"},
			{Name: "lean_right", Description: "Sources with a moderate conservative bias"},
			{Name: "right", Description: "Sources with a strong conservative bias"},
			{Name: "unknown", Description: "Sources with an undetermined bias"},
		},
		Reference: "https://www.allsides.com/media-bias/media-bias-ratings",
	},
	Sentiment: sentimentMethodology{
		Description: "Our sentiment analysis uses natural language processing to determine if an article is bullish (positive), bearish (negative), or neutral about a stock.",
		Categories: []methodologyCategory{
			{Name: "bullish", Description: "Positive sentiment towards the stock"},
			{Name: "bearish", Description: "Negative sentiment towards the stock"},
			{Name: "neutral", Description: "Neutral or balanced sentiment towards the stock"},
		},
		Model: "FinBERT or similar financial sentiment analysis model",
	},
}

func errInvalidFilter(kind, value string) error {
	return fmt.Errorf("invalid %s category: %q", kind, value)
}
