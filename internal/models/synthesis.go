package models

import "time"

// ConvergenceFactor records evidence where two or more modules agree
// directionally on a theme.
type ConvergenceFactor struct {
	Category           string                 `json:"category"`
	Description        string                 `json:"description"`
	Weight             float64                `json:"weight"` // 0-1, aggregate of contributors
	SupportingAnalyses []ModuleName           `json:"supporting_analyses"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

// DivergenceFactor records evidence where two or more modules disagree
// directionally on related or directly conflicting themes.
type DivergenceFactor struct {
	Category            string                 `json:"category"`
	Description         string                 `json:"description"`
	Weight              float64                `json:"weight"` // 0-1, aggregate of contributors
	ConflictingAnalyses []ModuleName           `json:"conflicting_analyses"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
}

// Recommendation is the textual verdict derived from the synthesis score.
type Recommendation string

const (
	RecommendationStrongBuy  Recommendation = "strong_buy"
	RecommendationBuy        Recommendation = "buy"
	RecommendationHold       Recommendation = "hold"
	RecommendationSell       Recommendation = "sell"
	RecommendationStrongSell Recommendation = "strong_sell"
)

// ReportMetadata carries audit fields attached to every full report.
type ReportMetadata struct {
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
	DataSources       []string  `json:"data_sources"`
	APIVersion        string    `json:"api_version"`
}

// ModuleResults embeds the three module outputs verbatim in the report.
type ModuleResults struct {
	Fundamental ModuleResult `json:"fundamental"`
	Technical   ModuleResult `json:"technical"`
	ESG         ModuleResult `json:"esg"`
}

// Get returns the result for a module name.
func (m ModuleResults) Get(name ModuleName) ModuleResult {
	switch name {
	case ModuleFundamental:
		return m.Fundamental
	case ModuleTechnical:
		return m.Technical
	default:
		return m.ESG
	}
}

// FullReport is the structured evidentiary report assembled by synthesis.
type FullReport struct {
	Summary              string         `json:"summary"`
	Recommendation       Recommendation `json:"recommendation"`
	ModuleResults        ModuleResults  `json:"module_results"`
	SynthesisMethodology string         `json:"synthesis_methodology"` // Names the weight table actually used
	Limitations          []string       `json:"limitations"`
	Metadata             ReportMetadata `json:"metadata"`
}

// SynthesisResult is the composite verdict produced by the synthesis engine.
type SynthesisResult struct {
	SynthesisScore     int                 `json:"synthesis_score"` // 0-100, rounded
	ConvergenceFactors []ConvergenceFactor `json:"convergence_factors"`
	DivergenceFactors  []DivergenceFactor  `json:"divergence_factors"`
	FullReport         FullReport          `json:"full_report"`
	Confidence         float64             `json:"confidence"` // 0-1
}
