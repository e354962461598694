package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/censeo/internal/services/credentials"
)

// APIKeyHandler manages per-user scoring provider API keys.
type APIKeyHandler struct {
	credentials *credentials.Service
	logger      arbor.ILogger
}

func NewAPIKeyHandler(credentialService *credentials.Service, logger arbor.ILogger) *APIKeyHandler {
	return &APIKeyHandler{
		credentials: credentialService,
		logger:      logger,
	}
}

type storeKeyRequest struct {
	APIKey string `json:"api_key"`
}

// KeyHandler dispatches /api/keys by method: PUT stores the caller's
// provider API key, DELETE removes it.
func (h *APIKeyHandler) KeyHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.storeKey(w, r)
	case http.MethodDelete:
		h.deleteKey(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *APIKeyHandler) storeKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var request storeKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if request.APIKey == "" {
		WriteError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	if err := h.credentials.Store(r.Context(), userID, request.APIKey); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to store API key")
		WriteError(w, http.StatusInternalServerError, "Failed to store API key")
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "API key stored",
	})
}

func (h *APIKeyHandler) deleteKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	if err := h.credentials.Delete(r.Context(), userID); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to delete API key")
		WriteError(w, http.StatusInternalServerError, "Failed to delete API key")
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "API key deleted",
	})
}
