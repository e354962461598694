package synthesis

import "strings"

// themeSynonyms maps free-form factor categories to canonical themes.
// Categories the table does not know normalize to themselves, so modules
// can introduce new themes without breaking grouping.
var themeSynonyms = map[string]string{
	// Growth
	"growth":          "growth",
	"revenue_growth":  "growth",
	"earnings_growth": "growth",
	"expansion":       "growth",

	// Valuation
	"valuation":  "valuation",
	"value":      "valuation",
	"multiples":  "valuation",
	"fair_value": "valuation",

	// Momentum
	"momentum":       "momentum",
	"trend":          "momentum",
	"breakout":       "momentum",
	"moving_average": "momentum",
	"rsi":            "momentum",
	"macd":           "momentum",

	// Profitability
	"profitability": "profitability",
	"margins":       "profitability",
	"cash_flow":     "profitability",

	// Risk
	"risk":       "risk",
	"volatility": "risk",
	"leverage":   "risk",
	"debt":       "risk",
	"drawdown":   "risk",

	// Liquidity
	"liquidity": "liquidity",
	"volume":    "liquidity",

	// Sentiment
	"sentiment": "sentiment",
	"news":      "sentiment",

	// ESG themes
	"governance":  "governance",
	"board":       "governance",
	"ownership":   "governance",
	"environment": "environment",
	"emissions":   "environment",
	"climate":     "environment",
	"social":      "social",
	"labor":       "social",
	"community":   "social",
}

// conflictingThemes lists theme pairs that conflict directionally even
// though they are distinct themes (e.g. bullish momentum vs bearish
// valuation). Pairs are checked in both directions.
var conflictingThemes = [][2]string{
	{"momentum", "valuation"},
	{"growth", "risk"},
}

// NormalizeTheme derives the canonical theme for a factor category.
// Categories are lowercased and space/dash separators collapse to
// underscores before the synonym lookup.
func NormalizeTheme(category string) string {
	normalized := strings.ToLower(strings.TrimSpace(category))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if canonical, ok := themeSynonyms[normalized]; ok {
		return canonical
	}
	return normalized
}

// themesConflict reports whether two distinct canonical themes are
// directionally opposed per the conflict table.
func themesConflict(a, b string) bool {
	for _, pair := range conflictingThemes {
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return true
		}
	}
	return false
}
