// Package modules provides the three scoring analysis modules
// (fundamental, technical, esg) backed by a remote scoring provider.
// All modules share one HTTP client with rate limiting; credentials
// are supplied per call, never stored on the client.
package modules

import (
	"fmt"
	"time"

	"github.com/ternarybob/censeo/internal/models"
)

// APIError represents a non-2xx response from the scoring provider.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a 429 from the scoring provider.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("provider rate limit exceeded, retry after %v", e.RetryAfter)
}

// factorPayload is the wire shape of one scoring factor.
type factorPayload struct {
	Category    string                 `json:"category"`
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Weight      float64                `json:"weight"`
	Confidence  float64                `json:"confidence"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// scoreResponse is the wire shape of a module scoring response.
type scoreResponse struct {
	Score      float64                `json:"score"`
	Factors    []factorPayload        `json:"factors"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Confidence float64                `json:"confidence"`
}

// toModuleResult converts the wire response into the internal model.
func (r *scoreResponse) toModuleResult() models.ModuleResult {
	factors := make([]models.Factor, 0, len(r.Factors))
	for _, f := range r.Factors {
		factors = append(factors, models.Factor{
			Category:    f.Category,
			Type:        models.FactorType(f.Type),
			Description: f.Description,
			Weight:      f.Weight,
			Confidence:  f.Confidence,
			Metadata:    f.Metadata,
		})
	}

	return models.ModuleResult{
		Score:      r.Score,
		Factors:    factors,
		Details:    r.Details,
		Confidence: r.Confidence,
	}
}
