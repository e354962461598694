// Package orchestrator coordinates the end-to-end analysis workflow:
// credential resolution, concurrent module execution with retry and
// timeout discipline, synthesis and persistence.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/censeo/internal/models"
	"github.com/ternarybob/censeo/internal/modules"
	"github.com/ternarybob/censeo/internal/services/credentials"
)

// ErrorCode classifies workflow failures with stable identifiers.
type ErrorCode string

const (
	CodeValidation           ErrorCode = "VALIDATION_ERROR"
	CodeAuthentication       ErrorCode = "AUTHENTICATION_ERROR"
	CodeMissingCredential    ErrorCode = "MISSING_CREDENTIAL"
	CodeDecryption           ErrorCode = "DECRYPTION_ERROR"
	CodeModuleTimeout        ErrorCode = "MODULE_TIMEOUT"
	CodeModuleFailure        ErrorCode = "MODULE_FAILURE"
	CodeSynthesisFailure     ErrorCode = "SYNTHESIS_FAILURE"
	CodePersistence          ErrorCode = "PERSISTENCE_ERROR"
	CodeOrchestrationTimeout ErrorCode = "ORCHESTRATION_TIMEOUT"
	CodeRateLimited          ErrorCode = "RATE_LIMITED"
)

// Error is a classified workflow failure. Module identifies the failing
// analysis when the failure came from one; Attempts counts how many
// times the failing operation ran before giving up.
type Error struct {
	Code      ErrorCode
	Module    models.ModuleName
	Message   string
	Attempts  int
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Code, e.Module, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified error wrapping a cause.
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: retryableCode(code),
		Err:       err,
	}
}

// CodeOf extracts the classification from any error, deriving one from
// known cause types when the error is not already classified.
func CodeOf(err error) ErrorCode {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Code
	}

	var missing *credentials.MissingCredentialError
	if errors.As(err, &missing) {
		return CodeMissingCredential
	}
	var decrypt *credentials.DecryptionError
	if errors.As(err, &decrypt) {
		return CodeDecryption
	}
	var rateLimited *modules.RateLimitError
	if errors.As(err, &rateLimited) {
		return CodeRateLimited
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeModuleTimeout
	}
	return CodeModuleFailure
}

// Classify wraps a raw module error with its derived classification.
func Classify(name models.ModuleName, attempts int, err error) *Error {
	code := CodeOf(err)
	return &Error{
		Code:      code,
		Module:    name,
		Message:   err.Error(),
		Attempts:  attempts,
		Retryable: IsRetryable(err),
		Err:       err,
	}
}

// IsRetryable reports whether another attempt could plausibly succeed.
// Rate limits, timeouts, transport failures and provider 5xx responses
// are retryable; validation, authentication and provider 4xx responses
// are not.
func IsRetryable(err error) bool {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Retryable
	}

	var rateLimited *modules.RateLimitError
	if errors.As(err, &rateLimited) {
		return true
	}

	var apiErr *modules.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}

	var missing *credentials.MissingCredentialError
	if errors.As(err, &missing) {
		return false
	}
	var decrypt *credentials.DecryptionError
	if errors.As(err, &decrypt) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	// Unclassified transport errors get the benefit of the doubt.
	return true
}

func retryableCode(code ErrorCode) bool {
	switch code {
	case CodeModuleTimeout, CodeModuleFailure, CodeRateLimited, CodePersistence:
		return true
	default:
		return false
	}
}
