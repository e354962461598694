package models

import "time"

// Timings holds per-step execution times for one orchestrated analysis.
// The orchestrating goroutine writes each field exactly once, after the
// corresponding step settles; module goroutines never touch it.
type Timings struct {
	FundamentalMs int64 `json:"fundamental_time_ms"`
	TechnicalMs   int64 `json:"technical_time_ms"`
	ESGMs         int64 `json:"esg_time_ms"`
	SynthesisMs   int64 `json:"synthesis_time_ms"`
	TotalMs       int64 `json:"total_time_ms"`
}

// Set records the elapsed time for a module by name.
func (t *Timings) Set(name ModuleName, elapsedMs int64) {
	switch name {
	case ModuleFundamental:
		t.FundamentalMs = elapsedMs
	case ModuleTechnical:
		t.TechnicalMs = elapsedMs
	case ModuleESG:
		t.ESGMs = elapsedMs
	}
}

// OrchestrationResult is the complete outcome of one analysis workflow.
type OrchestrationResult struct {
	AnalysisID       string          `json:"analysis_id"`
	TickerSymbol     string          `json:"ticker_symbol"`
	AnalysisContext  AnalysisContext `json:"analysis_context"`
	TradingTimeframe Timeframe       `json:"trading_timeframe,omitempty"`
	ModuleResults    ModuleResults   `json:"module_results"`
	Synthesis        SynthesisResult `json:"synthesis"`
	Timings          Timings         `json:"timings"`
	ExecutionTimeMs  int64           `json:"execution_time_ms"`
	FailureNotes     []string        `json:"failure_notes,omitempty"` // Per-step recoverable failure messages
}

// AnalysisRecord is the persisted form of a completed analysis.
type AnalysisRecord struct {
	ID               string          `json:"id" badgerhold:"key"`
	UserID           string          `json:"user_id" badgerholdIndex:"UserID"`
	TickerSymbol     string          `json:"ticker_symbol" badgerholdIndex:"TickerSymbol"`
	AnalysisContext  AnalysisContext `json:"analysis_context"`
	TradingTimeframe Timeframe       `json:"trading_timeframe,omitempty"`
	Synthesis        SynthesisResult `json:"synthesis"`
	Timings          Timings         `json:"timings"`
	ExecutionTimeMs  int64           `json:"execution_time_ms"`
	CreatedAt        time.Time       `json:"created_at"`
}
