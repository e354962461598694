package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/orchestrator"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// RequireUserID extracts the caller identity from the X-User-ID header.
// Returns the identity and true, or writes a 401 and returns false.
func RequireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return "", false
	}
	return userID, true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success envelope around a payload.
func WriteSuccess(w http.ResponseWriter, statusCode int, data interface{}) error {
	return WriteJSON(w, statusCode, map[string]interface{}{
		"status":     "success",
		"request_id": common.NewRequestID(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"data":       data,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]interface{}{
		"status":     "error",
		"request_id": common.NewRequestID(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"error":      message,
	})
}

// WriteWorkflowError maps a classified workflow error onto an HTTP
// status and writes the error envelope with its stable code.
func WriteWorkflowError(w http.ResponseWriter, err error) error {
	code := orchestrator.CodeOf(err)
	return WriteJSON(w, statusForCode(code), map[string]interface{}{
		"status":     "error",
		"request_id": common.NewRequestID(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"error":      err.Error(),
		"error_code": string(code),
	})
}

// statusForCode maps workflow error codes to HTTP statuses.
func statusForCode(code orchestrator.ErrorCode) int {
	switch code {
	case orchestrator.CodeValidation:
		return http.StatusBadRequest
	case orchestrator.CodeAuthentication:
		return http.StatusUnauthorized
	case orchestrator.CodeMissingCredential:
		return http.StatusFailedDependency
	case orchestrator.CodeRateLimited:
		return http.StatusTooManyRequests
	case orchestrator.CodeModuleTimeout, orchestrator.CodeOrchestrationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetListParams extracts limit/offset parameters from the query string.
// Limit defaults to 20, capped at 100.
func GetListParams(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
