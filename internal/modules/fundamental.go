package modules

import (
	"context"
	"net/url"

	"github.com/ternarybob/censeo/internal/models"
)

// FundamentalModule scores a ticker on financial health: earnings,
// balance sheet, cash flow and valuation.
type FundamentalModule struct {
	client *Client
}

// NewFundamentalModule creates the fundamental analysis module.
func NewFundamentalModule(client *Client) *FundamentalModule {
	return &FundamentalModule{client: client}
}

// Name returns the module identity.
func (m *FundamentalModule) Name() models.ModuleName {
	return models.ModuleFundamental
}

// Run executes one fundamental scoring call.
func (m *FundamentalModule) Run(ctx context.Context, ticker, apiKey string, analysisContext models.AnalysisContext, timeframe models.Timeframe) (*models.ModuleResult, error) {
	params := url.Values{}
	params.Set("context", string(analysisContext))
	if analysisContext == models.ContextTrading && timeframe != "" {
		params.Set("timeframe", string(timeframe))
	}

	resp, err := m.client.score(ctx, apiKey, "/v1/fundamental", ticker, params)
	if err != nil {
		return nil, err
	}

	result := resp.toModuleResult()
	return &result, nil
}
