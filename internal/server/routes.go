package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (workflow event stream)
	if s.app.WSHandler != nil {
		mux.Handle("/ws", s.app.WSHandler)
	}

	// API routes - Analysis
	mux.HandleFunc("/api/analysis", s.app.AnalysisHandler.CollectionHandler) // POST (run), GET (list)
	mux.HandleFunc("/api/analysis/", s.app.AnalysisHandler.RecordHandler)    // GET /{id}

	// API routes - Provider API keys
	mux.HandleFunc("/api/keys", s.app.APIKeyHandler.KeyHandler) // PUT (store), DELETE (remove)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Catch-all for unknown API paths
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
