// Package synthesis turns three independent module scores into one
// composite verdict with convergence/divergence evidence.
// The engine is a pure function of its input: no I/O, no clock reads,
// identical inputs always produce identical results.
package synthesis

import (
	"time"

	"github.com/ternarybob/censeo/internal/models"
)

// WeightTable holds the per-module weights for one analysis context.
// Weights sum to 1.0.
type WeightTable struct {
	Fundamental float64 `json:"fundamental"`
	Technical   float64 `json:"technical"`
	ESG         float64 `json:"esg"`
}

// For returns the weight for a module name.
func (w WeightTable) For(name models.ModuleName) float64 {
	switch name {
	case models.ModuleFundamental:
		return w.Fundamental
	case models.ModuleTechnical:
		return w.Technical
	default:
		return w.ESG
	}
}

// Recommendation score bands. A synthesis score at or above a band's
// threshold maps to that recommendation.
const (
	ThresholdStrongBuy = 80
	ThresholdBuy       = 65
	ThresholdHold      = 45
	ThresholdSell      = 25
)

// Config is the immutable engine configuration, threaded through the
// constructor rather than read from ambient state.
type Config struct {
	Weights     map[models.AnalysisContext]WeightTable
	DataSources []string
	APIVersion  string
}

// DefaultConfig returns the fixed weighting tables:
// investment favors fundamentals, trading favors technicals.
func DefaultConfig() Config {
	return Config{
		Weights: map[models.AnalysisContext]WeightTable{
			models.ContextInvestment: {Fundamental: 0.50, ESG: 0.30, Technical: 0.20},
			models.ContextTrading:    {Technical: 0.60, Fundamental: 0.25, ESG: 0.15},
		},
		DataSources: []string{"scoring-provider"},
		APIVersion:  "1.0",
	}
}

// Input carries everything the engine needs for one synthesis.
// Timestamp is injected by the caller so the engine stays pure.
type Input struct {
	Ticker    string
	Context   models.AnalysisContext
	Timeframe models.Timeframe
	Results   models.ModuleResults
	Timestamp time.Time
}

// contribution is one factor flattened with its owning module and
// canonical theme, the unit of convergence/divergence grouping.
type contribution struct {
	module      models.ModuleName
	theme       string
	polarity    models.FactorType
	weight      float64
	confidence  float64
	category    string
	description string
}

// themeGroup buckets contributions for one canonical theme by polarity.
type themeGroup struct {
	positive []contribution
	negative []contribution
}
