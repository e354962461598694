package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/censeo/internal/models"
)

// Engine computes composite synthesis results.
type Engine struct {
	config Config
}

// NewEngine creates a new synthesis engine with the given configuration
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// Synthesize combines three module results into one composite verdict.
//
// Composite score:
// synthesis_score = round(sum(weight_m * score_m)), clamped to 0-100,
// with the weight table selected by analysis context.
//
// Evidence:
// factors are grouped by canonical theme; two or more modules agreeing
// in polarity on a theme emit one ConvergenceFactor, modules opposing
// each other on the same or a directly conflicting theme emit one
// DivergenceFactor. Themes are walked in sorted order and modules in
// canonical order, so identical inputs yield identical output.
func (e *Engine) Synthesize(input Input) (*models.SynthesisResult, error) {
	weights, ok := e.config.Weights[input.Context]
	if !ok {
		return nil, fmt.Errorf("no weight table for analysis context %q", input.Context)
	}

	for _, name := range models.AllModules() {
		result := input.Results.Get(name)
		if !result.Valid() {
			return nil, fmt.Errorf("module %s returned a result outside contract bounds (score=%v confidence=%v)",
				name, result.Score, result.Confidence)
		}
	}

	weighted := 0.0
	confidenceSum := 0.0
	for _, name := range models.AllModules() {
		result := input.Results.Get(name)
		w := weights.For(name)
		weighted += w * result.Score
		confidenceSum += w * result.Confidence
	}
	score := RoundScore(weighted)
	confidence := ClampFloat64(confidenceSum, 0, 1)

	groups, themes := e.groupFactors(input.Results)
	convergence := e.detectConvergence(groups, themes)
	divergence := e.detectDivergence(groups, themes)

	result := &models.SynthesisResult{
		SynthesisScore:     score,
		ConvergenceFactors: convergence,
		DivergenceFactors:  divergence,
		Confidence:         confidence,
		FullReport:         e.buildReport(input, weights, score, confidence, convergence, divergence),
	}

	return result, nil
}

// groupFactors flattens all module factors into theme groups.
// Returns the groups plus the theme keys in sorted order.
func (e *Engine) groupFactors(results models.ModuleResults) (map[string]*themeGroup, []string) {
	groups := make(map[string]*themeGroup)

	for _, name := range models.AllModules() {
		for _, factor := range results.Get(name).Factors {
			c := contribution{
				module:      name,
				theme:       NormalizeTheme(factor.Category),
				polarity:    factor.Type,
				weight:      factor.Weight,
				confidence:  factor.Confidence,
				category:    factor.Category,
				description: factor.Description,
			}

			group, ok := groups[c.theme]
			if !ok {
				group = &themeGroup{}
				groups[c.theme] = group
			}
			if c.polarity == models.FactorPositive {
				group.positive = append(group.positive, c)
			} else {
				group.negative = append(group.negative, c)
			}
		}
	}

	themes := make([]string, 0, len(groups))
	for theme := range groups {
		themes = append(themes, theme)
	}
	sort.Strings(themes)

	return groups, themes
}

// detectConvergence emits one ConvergenceFactor per theme+polarity where
// at least two distinct modules contribute factors of the same polarity.
func (e *Engine) detectConvergence(groups map[string]*themeGroup, themes []string) []models.ConvergenceFactor {
	factors := make([]models.ConvergenceFactor, 0)

	for _, theme := range themes {
		group := groups[theme]
		for _, side := range []struct {
			polarity models.FactorType
			contribs []contribution
		}{
			{models.FactorPositive, group.positive},
			{models.FactorNegative, group.negative},
		} {
			modules := distinctModules(side.contribs)
			if len(modules) < 2 {
				continue
			}

			factors = append(factors, models.ConvergenceFactor{
				Category: theme,
				Description: fmt.Sprintf("%s analyses agree on a %s %s signal",
					joinModules(modules), side.polarity, theme),
				Weight:             Mean(weightsOf(side.contribs)),
				SupportingAnalyses: modules,
				Metadata: map[string]interface{}{
					"factor_count": len(side.contribs),
					"polarity":     string(side.polarity),
				},
			})
		}
	}

	return factors
}

// detectDivergence emits one DivergenceFactor per theme where modules
// oppose each other in polarity, plus one per conflicting theme pair
// (e.g. bullish momentum against bearish valuation).
func (e *Engine) detectDivergence(groups map[string]*themeGroup, themes []string) []models.DivergenceFactor {
	factors := make([]models.DivergenceFactor, 0)

	// Same theme, opposite polarity
	for _, theme := range themes {
		group := groups[theme]
		if len(group.positive) == 0 || len(group.negative) == 0 {
			continue
		}
		modules := distinctModules(append(append([]contribution{}, group.positive...), group.negative...))
		if len(modules) < 2 {
			// A single module disagreeing with itself is not a divergence
			continue
		}

		all := append(append([]contribution{}, group.positive...), group.negative...)
		factors = append(factors, models.DivergenceFactor{
			Category: theme,
			Description: fmt.Sprintf("%s analyses conflict on %s: %s see strength, %s see weakness",
				joinModules(modules), theme,
				joinModules(distinctModules(group.positive)),
				joinModules(distinctModules(group.negative))),
			Weight:              Mean(weightsOf(all)),
			ConflictingAnalyses: modules,
			Metadata: map[string]interface{}{
				"factor_count": len(all),
			},
		})
	}

	// Directly conflicting theme pairs across modules
	for i, themeA := range themes {
		for _, themeB := range themes[i+1:] {
			if !themesConflict(themeA, themeB) {
				continue
			}
			a := groups[themeA]
			b := groups[themeB]

			// Positive on one theme vs negative on the conflicting theme
			for _, cross := range []struct {
				bulls []contribution
				bears []contribution
				label string
			}{
				{a.positive, b.negative, fmt.Sprintf("%s_vs_%s", themeA, themeB)},
				{b.positive, a.negative, fmt.Sprintf("%s_vs_%s", themeB, themeA)},
			} {
				bullModules := distinctModules(cross.bulls)
				bearModules := distinctModules(cross.bears)
				modules := mergeModules(bullModules, bearModules)
				if len(bullModules) == 0 || len(bearModules) == 0 || len(modules) < 2 {
					continue
				}

				all := append(append([]contribution{}, cross.bulls...), cross.bears...)
				factors = append(factors, models.DivergenceFactor{
					Category: cross.label,
					Description: fmt.Sprintf("%s bullish signals conflict with %s bearish signals",
						joinModules(bullModules), joinModules(bearModules)),
					Weight:              Mean(weightsOf(all)),
					ConflictingAnalyses: modules,
					Metadata: map[string]interface{}{
						"factor_count": len(all),
					},
				})
			}
		}
	}

	return factors
}

// distinctModules returns the distinct contributing modules in
// canonical module order.
func distinctModules(contribs []contribution) []models.ModuleName {
	seen := make(map[models.ModuleName]bool, len(contribs))
	for _, c := range contribs {
		seen[c.module] = true
	}

	modules := make([]models.ModuleName, 0, len(seen))
	for _, name := range models.AllModules() {
		if seen[name] {
			modules = append(modules, name)
		}
	}
	return modules
}

// mergeModules merges two module lists preserving canonical order.
func mergeModules(a, b []models.ModuleName) []models.ModuleName {
	seen := make(map[models.ModuleName]bool, len(a)+len(b))
	for _, name := range a {
		seen[name] = true
	}
	for _, name := range b {
		seen[name] = true
	}

	modules := make([]models.ModuleName, 0, len(seen))
	for _, name := range models.AllModules() {
		if seen[name] {
			modules = append(modules, name)
		}
	}
	return modules
}

func weightsOf(contribs []contribution) []float64 {
	weights := make([]float64, len(contribs))
	for i, c := range contribs {
		weights[i] = c.weight
	}
	return weights
}

func joinModules(modules []models.ModuleName) string {
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
