package modules

import (
	"context"
	"net/url"

	"github.com/ternarybob/censeo/internal/models"
)

// TechnicalModule scores a ticker on price action: trend, momentum,
// volume and volatility indicators.
type TechnicalModule struct {
	client *Client
}

// NewTechnicalModule creates the technical analysis module.
func NewTechnicalModule(client *Client) *TechnicalModule {
	return &TechnicalModule{client: client}
}

// Name returns the module identity.
func (m *TechnicalModule) Name() models.ModuleName {
	return models.ModuleTechnical
}

// Run executes one technical scoring call. Trading requests carry the
// timeframe so indicator windows match the assessment horizon.
func (m *TechnicalModule) Run(ctx context.Context, ticker, apiKey string, analysisContext models.AnalysisContext, timeframe models.Timeframe) (*models.ModuleResult, error) {
	params := url.Values{}
	params.Set("context", string(analysisContext))
	if analysisContext == models.ContextTrading && timeframe != "" {
		params.Set("timeframe", string(timeframe))
	}

	resp, err := m.client.score(ctx, apiKey, "/v1/technical", ticker, params)
	if err != nil {
		return nil, err
	}

	result := resp.toModuleResult()
	return &result, nil
}
