package interfaces

import (
	"context"

	"github.com/ternarybob/censeo/internal/models"
)

// AnalysisModule is the uniform contract for the three scoring analyses.
// Each implementation is an opaque remote scoring capability: it accepts
// the call parameters and returns a bounded ModuleResult or a classified
// error. Implementations must honor context cancellation.
type AnalysisModule interface {
	// Name returns the fixed module identity (fundamental, technical, esg).
	Name() models.ModuleName

	// Run executes one scoring call. The timeframe is only meaningful for
	// trading-context calls and may be empty otherwise.
	Run(ctx context.Context, ticker, apiKey string, analysisContext models.AnalysisContext, timeframe models.Timeframe) (*models.ModuleResult, error)
}

// CredentialResolver resolves a caller's provider API key.
// Failures are typed: a missing key and a key that cannot be decrypted
// are distinct conditions with distinct downstream status codes.
type CredentialResolver interface {
	Resolve(ctx context.Context, userID string) (string, error)
}

// AnalysisOrchestrator drives the end-to-end workflow for one request.
type AnalysisOrchestrator interface {
	ExecuteAnalysis(ctx context.Context, request *models.AnalysisRequest, userID string) (*models.OrchestrationResult, error)
}
