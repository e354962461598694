package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// ModuleExecutor runs a single analysis module with per-attempt
// timeouts and retry. The timeout applies per attempt, not across
// attempts, so a slow provider gets a fresh window each retry.
type ModuleExecutor struct {
	timeout time.Duration
	policy  RetryPolicy
	logger  arbor.ILogger
}

// NewModuleExecutor creates an executor with the given per-attempt
// timeout and retry policy.
func NewModuleExecutor(timeout time.Duration, policy RetryPolicy, logger arbor.ILogger) *ModuleExecutor {
	return &ModuleExecutor{
		timeout: timeout,
		policy:  policy,
		logger:  logger,
	}
}

// ModuleOutcome is one module's settled execution: either a valid
// result or a classified error, plus how long the module took.
type ModuleOutcome struct {
	Name     models.ModuleName
	Result   *models.ModuleResult
	Err      *Error
	Attempts int
	Elapsed  time.Duration
}

// Execute runs the module to settlement. The returned outcome always
// carries exactly one of Result or Err.
func (e *ModuleExecutor) Execute(ctx context.Context, module interfaces.AnalysisModule, ticker, apiKey string, analysisContext models.AnalysisContext, timeframe models.Timeframe) ModuleOutcome {
	name := module.Name()
	started := time.Now()

	var result *models.ModuleResult
	attempts, err := e.policy.Execute(ctx, e.logger, string(name), func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		r, err := module.Run(attemptCtx, ticker, apiKey, analysisContext, timeframe)
		if err != nil {
			return err
		}
		if !r.Valid() {
			return NewError(CodeModuleFailure,
				fmt.Sprintf("module %s returned out-of-contract values (score=%v confidence=%v)", name, r.Score, r.Confidence),
				nil)
		}
		result = r
		return nil
	})

	outcome := ModuleOutcome{
		Name:     name,
		Attempts: attempts,
		Elapsed:  time.Since(started),
	}
	if err != nil {
		outcome.Err = Classify(name, attempts, err)
		return outcome
	}

	outcome.Result = result
	return outcome
}
