package synthesis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/censeo/internal/models"
)

func testResults() models.ModuleResults {
	return models.ModuleResults{
		Fundamental: models.ModuleResult{
			Score:      90,
			Confidence: 0.9,
			Factors: []models.Factor{
				{Category: "revenue_growth", Type: models.FactorPositive, Description: "revenue up 18% YoY", Weight: 0.8, Confidence: 0.9},
				{Category: "valuation", Type: models.FactorNegative, Description: "trading above sector P/E", Weight: 0.5, Confidence: 0.8},
			},
		},
		Technical: models.ModuleResult{
			Score:      75,
			Confidence: 0.8,
			Factors: []models.Factor{
				{Category: "momentum", Type: models.FactorPositive, Description: "price above 50-day moving average", Weight: 0.7, Confidence: 0.8},
			},
		},
		ESG: models.ModuleResult{
			Score:      80,
			Confidence: 0.7,
			Factors: []models.Factor{
				{Category: "governance", Type: models.FactorPositive, Description: "independent board majority", Weight: 0.6, Confidence: 0.7},
			},
		},
	}
}

func TestSynthesizeInvestmentComposite(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	result, err := engine.Synthesize(Input{
		Ticker:    "AAPL",
		Context:   models.ContextInvestment,
		Results:   testResults(),
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// round(0.50*90 + 0.30*80 + 0.20*75) = round(84.0) = 84
	assert.Equal(t, 84, result.SynthesisScore)
	assert.Equal(t, models.RecommendationStrongBuy, result.FullReport.Recommendation)
	assert.InDelta(t, 0.50*0.9+0.30*0.7+0.20*0.8, result.Confidence, 1e-9)
	assert.Equal(t, "weighted_average(investment: fundamental=0.50, esg=0.30, technical=0.20)",
		result.FullReport.SynthesisMethodology)
}

func TestSynthesizeTradingComposite(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	result, err := engine.Synthesize(Input{
		Ticker:    "AAPL",
		Context:   models.ContextTrading,
		Timeframe: models.Timeframe1M,
		Results:   testResults(),
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// round(0.60*75 + 0.25*90 + 0.15*80) = round(79.5) = 80
	assert.Equal(t, 80, result.SynthesisScore)
	assert.Equal(t, models.RecommendationStrongBuy, result.FullReport.Recommendation)
}

func TestSynthesizeRecommendationBands(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	tests := []struct {
		name     string
		score    float64
		expected models.Recommendation
	}{
		{"strong buy at threshold", 80, models.RecommendationStrongBuy},
		{"buy just below strong buy", 79, models.RecommendationBuy},
		{"buy at threshold", 65, models.RecommendationBuy},
		{"hold at threshold", 45, models.RecommendationHold},
		{"sell at threshold", 25, models.RecommendationSell},
		{"strong sell below threshold", 24, models.RecommendationStrongSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := models.ModuleResults{
				Fundamental: models.ModuleResult{Score: tt.score, Confidence: 0.9},
				Technical:   models.ModuleResult{Score: tt.score, Confidence: 0.9},
				ESG:         models.ModuleResult{Score: tt.score, Confidence: 0.9},
			}
			result, err := engine.Synthesize(Input{
				Ticker:    "MSFT",
				Context:   models.ContextInvestment,
				Results:   results,
				Timestamp: time.Now().UTC(),
			})
			require.NoError(t, err)
			assert.Equal(t, int(tt.score), result.SynthesisScore)
			assert.Equal(t, tt.expected, result.FullReport.Recommendation)
		})
	}
}

func TestSynthesizeConvergence(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	results := models.ModuleResults{
		Fundamental: models.ModuleResult{
			Score: 85, Confidence: 0.9,
			Factors: []models.Factor{
				{Category: "earnings_growth", Type: models.FactorPositive, Description: "EPS accelerating", Weight: 0.8, Confidence: 0.9},
			},
		},
		Technical: models.ModuleResult{
			Score: 78, Confidence: 0.8,
			Factors: []models.Factor{
				{Category: "growth", Type: models.FactorPositive, Description: "breakout on expanding volume", Weight: 0.6, Confidence: 0.8},
			},
		},
		ESG: models.ModuleResult{Score: 70, Confidence: 0.7},
	}

	result, err := engine.Synthesize(Input{
		Ticker:    "NVDA",
		Context:   models.ContextInvestment,
		Results:   results,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.Len(t, result.ConvergenceFactors, 1)
	cf := result.ConvergenceFactors[0]
	assert.Equal(t, "growth", cf.Category)
	assert.Equal(t, []models.ModuleName{models.ModuleFundamental, models.ModuleTechnical}, cf.SupportingAnalyses)
	assert.InDelta(t, 0.7, cf.Weight, 1e-9)
	assert.Empty(t, result.DivergenceFactors)
}

func TestSynthesizeDivergenceSameTheme(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	results := models.ModuleResults{
		Fundamental: models.ModuleResult{
			Score: 60, Confidence: 0.8,
			Factors: []models.Factor{
				{Category: "momentum", Type: models.FactorNegative, Description: "earnings momentum fading", Weight: 0.5, Confidence: 0.8},
			},
		},
		Technical: models.ModuleResult{
			Score: 72, Confidence: 0.8,
			Factors: []models.Factor{
				{Category: "rsi", Type: models.FactorPositive, Description: "RSI recovering from oversold", Weight: 0.6, Confidence: 0.8},
			},
		},
		ESG: models.ModuleResult{Score: 65, Confidence: 0.7},
	}

	result, err := engine.Synthesize(Input{
		Ticker:    "TSLA",
		Context:   models.ContextTrading,
		Timeframe: models.Timeframe1W,
		Results:   results,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.Len(t, result.DivergenceFactors, 1)
	df := result.DivergenceFactors[0]
	assert.Equal(t, "momentum", df.Category)
	assert.Equal(t, []models.ModuleName{models.ModuleFundamental, models.ModuleTechnical}, df.ConflictingAnalyses)
	assert.Empty(t, result.ConvergenceFactors)
}

func TestSynthesizeDivergenceConflictingThemes(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	results := models.ModuleResults{
		Fundamental: models.ModuleResult{
			Score: 55, Confidence: 0.8,
			Factors: []models.Factor{
				{Category: "valuation", Type: models.FactorNegative, Description: "stretched multiples", Weight: 0.7, Confidence: 0.8},
			},
		},
		Technical: models.ModuleResult{
			Score: 82, Confidence: 0.8,
			Factors: []models.Factor{
				{Category: "momentum", Type: models.FactorPositive, Description: "strong uptrend intact", Weight: 0.8, Confidence: 0.9},
			},
		},
		ESG: models.ModuleResult{Score: 60, Confidence: 0.7},
	}

	result, err := engine.Synthesize(Input{
		Ticker:    "AMZN",
		Context:   models.ContextInvestment,
		Results:   results,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.Len(t, result.DivergenceFactors, 1)
	df := result.DivergenceFactors[0]
	assert.Equal(t, "momentum_vs_valuation", df.Category)
	assert.Equal(t, []models.ModuleName{models.ModuleFundamental, models.ModuleTechnical}, df.ConflictingAnalyses)
}

func TestSynthesizeSingleModuleNoConvergence(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	results := models.ModuleResults{
		Fundamental: models.ModuleResult{
			Score: 70, Confidence: 0.8,
			Factors: []models.Factor{
				{Category: "growth", Type: models.FactorPositive, Description: "revenue growth solid", Weight: 0.7, Confidence: 0.8},
				{Category: "earnings_growth", Type: models.FactorPositive, Description: "margins expanding", Weight: 0.6, Confidence: 0.8},
			},
		},
		Technical: models.ModuleResult{Score: 70, Confidence: 0.8},
		ESG:       models.ModuleResult{Score: 70, Confidence: 0.8},
	}

	result, err := engine.Synthesize(Input{
		Ticker:    "GOOG",
		Context:   models.ContextInvestment,
		Results:   results,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Empty(t, result.ConvergenceFactors, "one module agreeing with itself is not convergence")
	assert.Empty(t, result.DivergenceFactors)
}

func TestSynthesizeDeterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	input := Input{
		Ticker:    "AAPL",
		Context:   models.ContextInvestment,
		Results:   testResults(),
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	first, err := engine.Synthesize(input)
	require.NoError(t, err)
	second, err := engine.Synthesize(input)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestSynthesizeRejectsOutOfRangeScore(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	results := testResults()
	results.Technical.Score = 140

	_, err := engine.Synthesize(Input{
		Ticker:    "AAPL",
		Context:   models.ContextInvestment,
		Results:   results,
		Timestamp: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "technical")
}

func TestSynthesizeUnknownContext(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	_, err := engine.Synthesize(Input{
		Ticker:    "AAPL",
		Context:   models.AnalysisContext("speculative"),
		Results:   testResults(),
		Timestamp: time.Now().UTC(),
	})
	require.Error(t, err)
}

func TestBuildLimitationsLowConfidence(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	results := testResults()
	results.ESG.Confidence = 0.3

	result, err := engine.Synthesize(Input{
		Ticker:    "AAPL",
		Context:   models.ContextInvestment,
		Results:   results,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	found := false
	for _, limitation := range result.FullReport.Limitations {
		if limitation == "esg analysis reported low confidence (0.30); treat its contribution with caution." {
			found = true
		}
	}
	assert.True(t, found, "expected a low-confidence caveat for the esg module")
}
