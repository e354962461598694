package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/censeo/internal/models"
)

const lowConfidenceFloor = 0.5

// recommendationFor maps a composite score onto a recommendation band.
func recommendationFor(score int) models.Recommendation {
	switch {
	case score >= ThresholdStrongBuy:
		return models.RecommendationStrongBuy
	case score >= ThresholdBuy:
		return models.RecommendationBuy
	case score >= ThresholdHold:
		return models.RecommendationHold
	case score >= ThresholdSell:
		return models.RecommendationSell
	default:
		return models.RecommendationStrongSell
	}
}

// methodologyFor renders the weight table as a stable, human-readable
// description of how the composite was computed.
func methodologyFor(context models.AnalysisContext, weights WeightTable) string {
	type moduleWeight struct {
		name   models.ModuleName
		weight float64
	}

	ordered := make([]moduleWeight, 0, 3)
	for _, name := range models.AllModules() {
		ordered = append(ordered, moduleWeight{name: name, weight: weights.For(name)})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].weight > ordered[j].weight
	})

	parts := make([]string, len(ordered))
	for i, mw := range ordered {
		parts[i] = fmt.Sprintf("%s=%.2f", mw.name, mw.weight)
	}

	return fmt.Sprintf("weighted_average(%s: %s)", context, strings.Join(parts, ", "))
}

func (e *Engine) buildReport(input Input, weights WeightTable, score int, confidence float64,
	convergence []models.ConvergenceFactor, divergence []models.DivergenceFactor) models.FullReport {

	recommendation := recommendationFor(score)

	return models.FullReport{
		Summary:              buildSummary(input, score, recommendation, convergence, divergence),
		Recommendation:       recommendation,
		ModuleResults:        input.Results,
		SynthesisMethodology: methodologyFor(input.Context, weights),
		Limitations:          buildLimitations(input, confidence),
		Metadata: models.ReportMetadata{
			AnalysisTimestamp: input.Timestamp,
			DataSources:       e.config.DataSources,
			APIVersion:        e.config.APIVersion,
		},
	}
}

func buildSummary(input Input, score int, recommendation models.Recommendation,
	convergence []models.ConvergenceFactor, divergence []models.DivergenceFactor) string {

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s scores %d/100 for the %s context, indicating %s.",
		input.Ticker, score, input.Context, strings.ReplaceAll(string(recommendation), "_", " "))

	for _, name := range models.AllModules() {
		result := input.Results.Get(name)
		fmt.Fprintf(&sb, " %s analysis scored %.0f (confidence %.2f).",
			capitalize(string(name)), result.Score, result.Confidence)
	}

	if len(convergence) > 0 {
		themes := make([]string, len(convergence))
		for i, f := range convergence {
			themes[i] = f.Category
		}
		fmt.Fprintf(&sb, " Analyses converge on: %s.", strings.Join(themes, ", "))
	}
	if len(divergence) > 0 {
		themes := make([]string, len(divergence))
		for i, f := range divergence {
			themes[i] = f.Category
		}
		fmt.Fprintf(&sb, " Analyses diverge on: %s.", strings.Join(themes, ", "))
	}

	if input.Context == models.ContextTrading && input.Timeframe != "" {
		fmt.Fprintf(&sb, " Assessment horizon: %s.", input.Timeframe)
	}

	return sb.String()
}

func buildLimitations(input Input, confidence float64) []string {
	limitations := []string{
		"Scores reflect data available at analysis time and do not predict future performance.",
		"Module scores depend on third-party provider data quality and coverage.",
	}

	for _, name := range models.AllModules() {
		result := input.Results.Get(name)
		if result.Confidence < lowConfidenceFloor {
			limitations = append(limitations,
				fmt.Sprintf("%s analysis reported low confidence (%.2f); treat its contribution with caution.",
					name, result.Confidence))
		}
	}

	if confidence < lowConfidenceFloor {
		limitations = append(limitations,
			"Overall confidence is low; the composite recommendation may be unstable.")
	}

	return limitations
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
