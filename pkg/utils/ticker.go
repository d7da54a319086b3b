// Package utils holds small helpers shared by the CLI, API, and
// ingestion layers.
package utils

import "strings"

// NormalizeTicker canonicalizes a user-supplied ticker symbol:
// surrounding whitespace is trimmed and the symbol is uppercased.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// SplitTickers parses a comma-separated ticker list, normalizing each
// entry and dropping empties.
func SplitTickers(s string) []string {
	parts := strings.Split(s, ",")
	tickers := make([]string, 0, len(parts))
	for _, p := range parts {
		t := NormalizeTicker(p)
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}

// NormalizeDomain canonicalizes a publisher domain for registry
// lookups: lowercase, trimmed, leading "www." stripped.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	return strings.TrimPrefix(d, "www.")
}
