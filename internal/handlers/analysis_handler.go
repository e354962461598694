package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// AnalysisHandler serves the analysis API: running new analyses and
// retrieving stored records. Callers identify themselves with the
// X-User-ID header; records are scoped to their owner.
type AnalysisHandler struct {
	orchestrator interfaces.AnalysisOrchestrator
	storage      interfaces.AnalysisStorage
	logger       arbor.ILogger
}

func NewAnalysisHandler(orchestrator interfaces.AnalysisOrchestrator, storage interfaces.AnalysisStorage, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		orchestrator: orchestrator,
		storage:      storage,
		logger:       logger,
	}
}

// AnalyzeHandler runs a new analysis.
// POST /api/analysis
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	var request models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.orchestrator.ExecuteAnalysis(r.Context(), &request, userID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("ticker", request.TickerSymbol).
			Str("user_id", userID).
			Msg("Analysis request failed")
		WriteWorkflowError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, result)
}

// RecordHandler serves stored records.
// GET /api/analysis/{id}
func (h *AnalysisHandler) RecordHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/analysis/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "Analysis ID is required")
		return
	}

	record, err := h.storage.GetRecord(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Analysis record not found")
		return
	}
	if record.UserID != userID {
		// A foreign record reads the same as a missing one
		WriteError(w, http.StatusNotFound, "Analysis record not found")
		return
	}

	WriteSuccess(w, http.StatusOK, record)
}

// ListHandler lists the caller's records, newest first.
// GET /api/analysis?ticker=AAPL&limit=20&offset=0
func (h *AnalysisHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	limit, offset := GetListParams(r)
	records, err := h.storage.ListRecordsByUser(r.Context(), userID, interfaces.ListRecordsOptions{
		Ticker: strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker"))),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list analysis records")
		WriteError(w, http.StatusInternalServerError, "Failed to list analysis records")
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
		"limit":   limit,
		"offset":  offset,
	})
}

// CollectionHandler dispatches /api/analysis by method: POST runs an
// analysis, GET lists records.
func (h *AnalysisHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.AnalyzeHandler(w, r)
	case http.MethodGet:
		h.ListHandler(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
