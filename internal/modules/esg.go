package modules

import (
	"context"
	"net/url"

	"github.com/ternarybob/censeo/internal/models"
)

// ESGModule scores a ticker on environmental, social and governance
// posture.
type ESGModule struct {
	client *Client
}

// NewESGModule creates the ESG analysis module.
func NewESGModule(client *Client) *ESGModule {
	return &ESGModule{client: client}
}

// Name returns the module identity.
func (m *ESGModule) Name() models.ModuleName {
	return models.ModuleESG
}

// Run executes one ESG scoring call.
func (m *ESGModule) Run(ctx context.Context, ticker, apiKey string, analysisContext models.AnalysisContext, timeframe models.Timeframe) (*models.ModuleResult, error) {
	params := url.Values{}
	params.Set("context", string(analysisContext))
	if analysisContext == models.ContextTrading && timeframe != "" {
		params.Set("timeframe", string(timeframe))
	}

	resp, err := m.client.score(ctx, apiKey, "/v1/esg", ticker, params)
	if err != nil {
		return nil, err
	}

	result := resp.toModuleResult()
	return &result, nil
}
