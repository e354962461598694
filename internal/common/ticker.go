// Package common provides shared utilities across the application.
package common

import (
	"fmt"
	"strings"
)

// tickerMaxLen is the maximum ticker symbol length accepted by the
// scoring provider contract.
const tickerMaxLen = 5

// NormalizeTicker trims and uppercases a ticker symbol and validates it
// against the provider contract: 1-5 letters A-Z.
// Lowercase input (e.g. "aapl") is accepted and normalized to "AAPL";
// anything else is rejected before any module call is made.
func NormalizeTicker(ticker string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))
	if normalized == "" {
		return "", fmt.Errorf("ticker symbol is required")
	}
	if len(normalized) > tickerMaxLen {
		return "", fmt.Errorf("ticker symbol %q exceeds %d characters", ticker, tickerMaxLen)
	}
	for _, r := range normalized {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("ticker symbol %q contains invalid character %q", ticker, r)
		}
	}
	return normalized, nil
}

// IsValidTicker reports whether a ticker symbol is already in canonical
// form (1-5 uppercase letters).
func IsValidTicker(ticker string) bool {
	normalized, err := NormalizeTicker(ticker)
	return err == nil && normalized == ticker
}
