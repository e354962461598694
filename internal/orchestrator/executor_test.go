package orchestrator

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/models"
	"github.com/ternarybob/censeo/internal/modules"
)

// fakeModule is a scripted AnalysisModule for executor tests.
type fakeModule struct {
	name  models.ModuleName
	calls atomic.Int32
	run   func(ctx context.Context, call int) (*models.ModuleResult, error)
}

func (f *fakeModule) Name() models.ModuleName { return f.name }

func (f *fakeModule) Run(ctx context.Context, ticker, apiKey string, analysisContext models.AnalysisContext, timeframe models.Timeframe) (*models.ModuleResult, error) {
	call := int(f.calls.Add(1))
	return f.run(ctx, call)
}

func goodResult(score float64) *models.ModuleResult {
	return &models.ModuleResult{Score: score, Confidence: 0.8}
}

func newTestExecutor(timeout time.Duration) *ModuleExecutor {
	return NewModuleExecutor(timeout, fastPolicy(), common.GetLogger())
}

func TestExecuteReturnsResult(t *testing.T) {
	module := &fakeModule{
		name: models.ModuleFundamental,
		run: func(ctx context.Context, call int) (*models.ModuleResult, error) {
			return goodResult(85), nil
		},
	}

	outcome := newTestExecutor(time.Second).Execute(context.Background(), module, "AAPL", "key", models.ContextInvestment, "")

	require.Nil(t, outcome.Err)
	require.NotNil(t, outcome.Result)
	assert.Equal(t, 85.0, outcome.Result.Score)
	assert.Equal(t, 1, outcome.Attempts)
}

func TestExecuteRetriesTransientFailure(t *testing.T) {
	module := &fakeModule{
		name: models.ModuleTechnical,
		run: func(ctx context.Context, call int) (*models.ModuleResult, error) {
			if call == 1 {
				return nil, &modules.APIError{StatusCode: http.StatusBadGateway, Message: "upstream down"}
			}
			return goodResult(70), nil
		},
	}

	outcome := newTestExecutor(time.Second).Execute(context.Background(), module, "AAPL", "key", models.ContextInvestment, "")

	require.Nil(t, outcome.Err)
	assert.Equal(t, 2, outcome.Attempts)
}

func TestExecuteClassifiesTimeout(t *testing.T) {
	module := &fakeModule{
		name: models.ModuleESG,
		run: func(ctx context.Context, call int) (*models.ModuleResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	outcome := newTestExecutor(10 * time.Millisecond).Execute(context.Background(), module, "AAPL", "key", models.ContextInvestment, "")

	require.NotNil(t, outcome.Err)
	assert.Equal(t, CodeModuleTimeout, outcome.Err.Code)
	assert.Equal(t, models.ModuleESG, outcome.Err.Module)
	assert.Equal(t, 3, outcome.Attempts, "timeouts are retryable up to the attempt budget")
}

func TestExecuteRejectsOutOfContractResult(t *testing.T) {
	module := &fakeModule{
		name: models.ModuleFundamental,
		run: func(ctx context.Context, call int) (*models.ModuleResult, error) {
			return &models.ModuleResult{Score: 130, Confidence: 0.8}, nil
		},
	}

	outcome := newTestExecutor(time.Second).Execute(context.Background(), module, "AAPL", "key", models.ContextInvestment, "")

	require.NotNil(t, outcome.Err)
	assert.Equal(t, CodeModuleFailure, outcome.Err.Code)
}

func TestExecuteDoesNotRetryAuthFailure(t *testing.T) {
	module := &fakeModule{
		name: models.ModuleTechnical,
		run: func(ctx context.Context, call int) (*models.ModuleResult, error) {
			return nil, &modules.APIError{StatusCode: http.StatusUnauthorized, Message: "bad key"}
		},
	}

	outcome := newTestExecutor(time.Second).Execute(context.Background(), module, "AAPL", "key", models.ContextInvestment, "")

	require.NotNil(t, outcome.Err)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, int32(1), module.calls.Load())
}
