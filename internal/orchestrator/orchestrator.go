package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
	"github.com/ternarybob/censeo/internal/synthesis"
)

// Options configures the orchestrator.
type Options struct {
	ModuleTimeout   time.Duration
	WorkflowTimeout time.Duration
	RetryPolicy     RetryPolicy
}

// DefaultOptions returns the standard workflow timing configuration.
func DefaultOptions() Options {
	return Options{
		ModuleTimeout:   45 * time.Second,
		WorkflowTimeout: 5 * time.Minute,
		RetryPolicy:     DefaultRetryPolicy(),
	}
}

// Orchestrator drives the six-step analysis workflow: validate,
// resolve credentials, fan out the three modules, synthesize, persist,
// respond. All modules must succeed for the analysis to succeed.
type Orchestrator struct {
	modules     []interfaces.AnalysisModule
	executor    *ModuleExecutor
	engine      *synthesis.Engine
	credentials interfaces.CredentialResolver
	storage     interfaces.AnalysisStorage
	events      interfaces.EventService
	validate    *validator.Validate
	logger      arbor.ILogger
	options     Options
}

// New creates an orchestrator over the given modules and services.
func New(
	analysisModules []interfaces.AnalysisModule,
	engine *synthesis.Engine,
	credentialResolver interfaces.CredentialResolver,
	storage interfaces.AnalysisStorage,
	events interfaces.EventService,
	logger arbor.ILogger,
	options Options,
) *Orchestrator {
	return &Orchestrator{
		modules:     analysisModules,
		executor:    NewModuleExecutor(options.ModuleTimeout, options.RetryPolicy, logger),
		engine:      engine,
		credentials: credentialResolver,
		storage:     storage,
		events:      events,
		validate:    validator.New(),
		logger:      logger,
		options:     options,
	}
}

// ExecuteAnalysis runs one complete analysis for the given user.
// Validation and credential failures abort before any module call.
// The whole workflow runs under WorkflowTimeout and retries once when
// the failure was retryable.
func (o *Orchestrator) ExecuteAnalysis(ctx context.Context, request *models.AnalysisRequest, userID string) (*models.OrchestrationResult, error) {
	started := time.Now()

	if err := o.validateRequest(request); err != nil {
		return nil, err
	}

	apiKey, err := o.credentials.Resolve(ctx, userID)
	if err != nil {
		code := CodeOf(err)
		return nil, &Error{
			Code:    code,
			Message: fmt.Sprintf("credential resolution failed: %v", err),
			Err:     err,
		}
	}

	analysisID := common.NewAnalysisID()
	o.publish(ctx, interfaces.EventAnalysisStarted, map[string]interface{}{
		"analysis_id": analysisID,
		"ticker":      request.TickerSymbol,
		"context":     string(request.AnalysisContext),
	})

	o.logger.Info().
		Str("analysis_id", analysisID).
		Str("ticker", request.TickerSymbol).
		Str("context", string(request.AnalysisContext)).
		Msg("Starting analysis workflow")

	result, err := o.runWithRetry(ctx, started, analysisID, request, userID, apiKey)
	if err != nil {
		o.publish(ctx, interfaces.EventAnalysisFailed, map[string]interface{}{
			"analysis_id": analysisID,
			"ticker":      request.TickerSymbol,
			"error_code":  string(CodeOf(err)),
		})
		return nil, err
	}

	result.ExecutionTimeMs = time.Since(started).Milliseconds()
	result.Timings.TotalMs = result.ExecutionTimeMs

	o.publish(ctx, interfaces.EventAnalysisCompleted, map[string]interface{}{
		"analysis_id":     analysisID,
		"ticker":          request.TickerSymbol,
		"synthesis_score": result.Synthesis.SynthesisScore,
		"recommendation":  string(result.Synthesis.FullReport.Recommendation),
	})

	o.logger.Info().
		Str("analysis_id", analysisID).
		Int("synthesis_score", result.Synthesis.SynthesisScore).
		Int64("execution_time_ms", result.ExecutionTimeMs).
		Msg("Analysis workflow completed")

	return result, nil
}

// validateRequest normalizes the ticker and checks the request shape.
func (o *Orchestrator) validateRequest(request *models.AnalysisRequest) error {
	if request == nil {
		return NewError(CodeValidation, "request is required", nil)
	}

	ticker, err := common.NormalizeTicker(request.TickerSymbol)
	if err != nil {
		return NewError(CodeValidation, err.Error(), err)
	}
	request.TickerSymbol = ticker

	if err := o.validate.Struct(request); err != nil {
		return NewError(CodeValidation, fmt.Sprintf("invalid request: %v", err), err)
	}

	if request.AnalysisContext == models.ContextTrading && request.TradingTimeframe == "" {
		return NewError(CodeValidation, "trading_timeframe is required for the trading context", nil)
	}
	if request.AnalysisContext == models.ContextInvestment {
		request.TradingTimeframe = ""
	}

	return nil
}

// runWithRetry executes the workflow body, retrying once when the
// aggregate failure is retryable. Each pass gets a fresh workflow
// timeout.
func (o *Orchestrator) runWithRetry(ctx context.Context, started time.Time, analysisID string, request *models.AnalysisRequest, userID, apiKey string) (*models.OrchestrationResult, error) {
	result, err := o.runWorkflow(ctx, started, analysisID, request, userID, apiKey)
	if err == nil || !IsRetryable(err) || ctx.Err() != nil {
		return result, err
	}

	o.logger.Warn().
		Str("analysis_id", analysisID).
		Err(err).
		Msg("Workflow failed with a retryable error, retrying once")

	retried, retryErr := o.runWorkflow(ctx, started, analysisID, request, userID, apiKey)
	if retryErr != nil {
		return nil, retryErr
	}
	retried.FailureNotes = append(retried.FailureNotes,
		fmt.Sprintf("first workflow attempt failed and was retried: %v", err))
	return retried, nil
}

func (o *Orchestrator) runWorkflow(ctx context.Context, started time.Time, analysisID string, request *models.AnalysisRequest, userID, apiKey string) (*models.OrchestrationResult, error) {
	workflowCtx, cancel := context.WithTimeout(ctx, o.options.WorkflowTimeout)
	defer cancel()

	outcomes, err := o.fanOut(workflowCtx, request, apiKey)
	if err != nil {
		if workflowCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			// Outer-timeout expiry is terminal. A workflow that already
			// burned its full time ceiling must not run a second pass.
			return nil, &Error{
				Code:      CodeOrchestrationTimeout,
				Message:   fmt.Sprintf("workflow exceeded %v", o.options.WorkflowTimeout),
				Retryable: false,
				Err:       err,
			}
		}
		return nil, err
	}

	result := &models.OrchestrationResult{
		AnalysisID:       analysisID,
		TickerSymbol:     request.TickerSymbol,
		AnalysisContext:  request.AnalysisContext,
		TradingTimeframe: request.TradingTimeframe,
	}

	for _, outcome := range outcomes {
		result.Timings.Set(outcome.Name, outcome.Elapsed.Milliseconds())
		if outcome.Attempts > 1 {
			result.FailureNotes = append(result.FailureNotes,
				fmt.Sprintf("%s module succeeded after %d attempts", outcome.Name, outcome.Attempts))
		}
		switch outcome.Name {
		case models.ModuleFundamental:
			result.ModuleResults.Fundamental = *outcome.Result
		case models.ModuleTechnical:
			result.ModuleResults.Technical = *outcome.Result
		case models.ModuleESG:
			result.ModuleResults.ESG = *outcome.Result
		}
	}

	synthesisStarted := time.Now()
	synthesisResult, err := o.engine.Synthesize(synthesis.Input{
		Ticker:    request.TickerSymbol,
		Context:   request.AnalysisContext,
		Timeframe: request.TradingTimeframe,
		Results:   result.ModuleResults,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil, NewError(CodeSynthesisFailure, fmt.Sprintf("synthesis failed: %v", err), err)
	}
	result.Synthesis = *synthesisResult
	result.Timings.SynthesisMs = time.Since(synthesisStarted).Milliseconds()

	result.Timings.TotalMs = time.Since(started).Milliseconds()

	record := &models.AnalysisRecord{
		ID:               analysisID,
		UserID:           userID,
		TickerSymbol:     request.TickerSymbol,
		AnalysisContext:  request.AnalysisContext,
		TradingTimeframe: request.TradingTimeframe,
		Synthesis:        *synthesisResult,
		Timings:          result.Timings,
		ExecutionTimeMs:  result.Timings.TotalMs,
		CreatedAt:        time.Now().UTC(),
	}
	if err := o.storage.SaveRecord(ctx, record); err != nil {
		return nil, NewError(CodePersistence, fmt.Sprintf("failed to persist analysis record: %v", err), err)
	}

	return result, nil
}

// fanOut runs all modules concurrently and waits for every goroutine
// to settle. The first terminal failure cancels the stragglers; the
// channel is still drained so no goroutine leaks.
func (o *Orchestrator) fanOut(ctx context.Context, request *models.AnalysisRequest, apiKey string) ([]ModuleOutcome, error) {
	fanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	settled := make(chan ModuleOutcome, len(o.modules))
	for _, module := range o.modules {
		go func(m interfaces.AnalysisModule) {
			settled <- o.executor.Execute(fanCtx, m, request.TickerSymbol, apiKey, request.AnalysisContext, request.TradingTimeframe)
		}(module)
	}

	outcomes := make([]ModuleOutcome, 0, len(o.modules))
	var firstErr *Error
	for range o.modules {
		outcome := <-settled

		o.publish(ctx, interfaces.EventModuleSettled, map[string]interface{}{
			"module":   string(outcome.Name),
			"ticker":   request.TickerSymbol,
			"success":  outcome.Err == nil,
			"attempts": outcome.Attempts,
		})

		if outcome.Err != nil {
			// Skip cancellation fallout from a module we aborted ourselves
			if firstErr == nil {
				firstErr = outcome.Err
				cancel()
			}
			continue
		}
		outcomes = append(outcomes, outcome)
	}

	if firstErr != nil {
		o.logger.Warn().
			Str("module", string(firstErr.Module)).
			Str("code", string(firstErr.Code)).
			Int("attempts", firstErr.Attempts).
			Msg("Module failed, aborting analysis")
		return nil, firstErr
	}

	return outcomes, nil
}

func (o *Orchestrator) publish(ctx context.Context, eventType interfaces.EventType, payload map[string]interface{}) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(ctx, interfaces.Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}); err != nil {
		o.logger.Warn().Err(err).Str("event", string(eventType)).Msg("Failed to publish event")
	}
}
