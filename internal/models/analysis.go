package models

// AnalysisContext selects the weighting table applied during synthesis.
type AnalysisContext string

const (
	// ContextInvestment is the long-horizon context (fundamental-weighted).
	ContextInvestment AnalysisContext = "investment"
	// ContextTrading is the short-horizon context (technical-weighted),
	// always bound to a trading timeframe.
	ContextTrading AnalysisContext = "trading"
)

// IsValid reports whether the context is one of the two supported values.
func (c AnalysisContext) IsValid() bool {
	return c == ContextInvestment || c == ContextTrading
}

// Timeframe is the trading horizon for trading-context analyses.
type Timeframe string

const (
	Timeframe1D Timeframe = "1D"
	Timeframe1W Timeframe = "1W"
	Timeframe1M Timeframe = "1M"
	Timeframe3M Timeframe = "3M"
	Timeframe6M Timeframe = "6M"
	Timeframe1Y Timeframe = "1Y"
)

// IsValid reports whether the timeframe is one of the supported values.
func (t Timeframe) IsValid() bool {
	switch t {
	case Timeframe1D, Timeframe1W, Timeframe1M, Timeframe3M, Timeframe6M, Timeframe1Y:
		return true
	}
	return false
}

// AnalysisRequest is the inbound request for a composite analysis.
// TradingTimeframe is required iff AnalysisContext is "trading" and
// forbidden otherwise; the pairing is validated before any module runs.
type AnalysisRequest struct {
	TickerSymbol     string          `json:"ticker_symbol" validate:"required"`
	AnalysisContext  AnalysisContext `json:"analysis_context" validate:"required,oneof=investment trading"`
	TradingTimeframe Timeframe       `json:"trading_timeframe,omitempty" validate:"omitempty,oneof=1D 1W 1M 3M 6M 1Y"`
}

// ModuleName identifies one of the three scoring analyses.
type ModuleName string

const (
	ModuleFundamental ModuleName = "fundamental"
	ModuleTechnical   ModuleName = "technical"
	ModuleESG         ModuleName = "esg"
)

// AllModules returns the fixed module set in canonical order.
// Synthesis iterates in this order so output is deterministic.
func AllModules() []ModuleName {
	return []ModuleName{ModuleFundamental, ModuleTechnical, ModuleESG}
}

// FactorType is the polarity of an evidence factor.
type FactorType string

const (
	FactorPositive FactorType = "positive"
	FactorNegative FactorType = "negative"
)

// Factor is one piece of module-scoped evidence contributing to a score.
type Factor struct {
	Category    string                 `json:"category"` // Free-form theme tag, e.g. "growth", "valuation"
	Type        FactorType             `json:"type"`
	Description string                 `json:"description"`
	Weight      float64                `json:"weight"`     // 0-1
	Confidence  float64                `json:"confidence"` // 0-1
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ModuleResult is the output of one analysis module invocation.
// It is immutable after return: produced once per invocation, owned by
// the invoking executor until handed to the orchestrator.
type ModuleResult struct {
	Score      float64                `json:"score"` // 0-100
	Factors    []Factor               `json:"factors"`
	Details    map[string]interface{} `json:"details,omitempty"` // Module-specific structured payload
	Confidence float64                `json:"confidence"`        // 0-1
}

// Valid reports whether the result honors the module contract bounds.
func (r *ModuleResult) Valid() bool {
	if r == nil {
		return false
	}
	if r.Score < 0 || r.Score > 100 {
		return false
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return false
	}
	for _, f := range r.Factors {
		if f.Type != FactorPositive && f.Type != FactorNegative {
			return false
		}
		if f.Weight < 0 || f.Weight > 1 || f.Confidence < 0 || f.Confidence > 1 {
			return false
		}
	}
	return true
}
