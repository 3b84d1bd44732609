package server

import (
	"net/http"
	"strings"

	"github.com/dpetrov/folio/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Sync
	mux.HandleFunc("/api/sync", s.handleSync)
	mux.HandleFunc("/api/sync/path", s.handleSyncPath)
	mux.HandleFunc("/api/sync/url", s.handleSyncURL)

	// Holdings
	mux.HandleFunc("/api/holdings", s.handleHoldingsList)
	mux.HandleFunc("/api/holdings/", s.handleHoldingGet)
	mux.HandleFunc("/api/stats", s.handleStats)

	// News and analysis
	mux.HandleFunc("/api/news/", s.handleNews)
	mux.HandleFunc("/api/analysis/batch", s.handleBatchStart)
	mux.HandleFunc("/api/analysis/batch/status", s.handleBatchStatus)
	mux.HandleFunc("/api/analysis/", s.routeAnalysis)
	mux.HandleFunc("/api/recommendations", s.handleRecommendations)
}

// routeAnalysis dispatches /api/analysis/{ticker} by method.
func (s *Server) routeAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker := PathParam(r, "/api/analysis/", "")
	if ticker == "" || strings.Contains(ticker, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handleAnalyze(w, r, ticker)
	case http.MethodGet:
		s.handleGetAnalysis(w, r, ticker)
	default:
		w.Header().Set("Allow", "GET, POST")
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
