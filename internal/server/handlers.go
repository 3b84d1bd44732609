package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dpetrov/folio/internal/clients"
	"github.com/dpetrov/folio/internal/models"
	"github.com/dpetrov/folio/internal/parsers/xlsx"
	"github.com/dpetrov/folio/internal/services/batch"
	"github.com/dpetrov/folio/internal/services/portfolio"
)

// maxUploadSize caps spreadsheet uploads at 20MB.
const maxUploadSize = 20 << 20

// writeServiceError maps service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var sheetErr *xlsx.SheetNotFoundError
	var malformedErr *xlsx.MalformedSpreadsheetError
	var columnErr *portfolio.MissingColumnError
	var urlErr *portfolio.InvalidURLError

	switch {
	case errors.As(err, &sheetErr), errors.As(err, &malformedErr), errors.As(err, &columnErr), errors.As(err, &urlErr):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, batch.ErrAlreadyRunning):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, clients.ErrRateLimited):
		WriteError(w, http.StatusTooManyRequests, err.Error())
	case strings.Contains(err.Error(), "not found"):
		WriteError(w, http.StatusNotFound, err.Error())
	case strings.Contains(err.Error(), "not configured"):
		WriteError(w, http.StatusServiceUnavailable, err.Error())
	case strings.Contains(err.Error(), "news fetch"),
		strings.Contains(err.Error(), "failed to generate"),
		strings.Contains(err.Error(), "portfolio page fetch"):
		WriteError(w, http.StatusBadGateway, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleSync handles POST /api/sync with a multipart spreadsheet upload.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Form field 'file' is required")
		return
	}
	defer file.Close()

	sheetName := r.FormValue("sheet")

	s.logger.Info().
		Str("filename", header.Filename).
		Int64("size", header.Size).
		Msg("Sync upload received")

	result, err := s.app.Portfolio.SyncFromReader(r.Context(), file, sheetName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleSyncPath handles POST /api/sync/path with a server-local file path.
func (s *Server) handleSyncPath(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		WriteError(w, http.StatusBadRequest, "path is required")
		return
	}

	result, err := s.app.Portfolio.SyncFromPath(r.Context(), req.Path)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleSyncURL handles POST /api/sync/url with a public portfolio page URL.
func (s *Server) handleSyncURL(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.URL == "" {
		WriteError(w, http.StatusBadRequest, "url is required")
		return
	}

	result, err := s.app.Portfolio.SyncFromURL(r.Context(), req.URL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleHoldingsList handles GET /api/holdings with filter query parameters.
func (s *Server) handleHoldingsList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	filter := models.HoldingFilter{
		Ticker:    r.URL.Query().Get("ticker"),
		AssetType: r.URL.Query().Get("asset_type"),
		Currency:  r.URL.Query().Get("currency"),
		Skip:      QueryInt(r, "skip", 0),
		Limit:     QueryInt(r, "limit", 100),
	}

	holdings, total, err := s.app.Portfolio.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if holdings == nil {
		holdings = []*models.Holding{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"holdings": holdings,
		"total":    total,
		"skip":     filter.Skip,
		"limit":    filter.Limit,
	})
}

// handleHoldingGet handles GET /api/holdings/{ticker}.
func (s *Server) handleHoldingGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := PathParam(r, "/api/holdings/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required in path")
		return
	}

	holding, err := s.app.Portfolio.Get(r.Context(), ticker)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, holding)
}

// handleStats handles GET /api/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := s.app.Portfolio.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

// handleNews handles GET /api/news/{ticker}.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := PathParam(r, "/api/news/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required in path")
		return
	}

	articles, err := s.app.Analysis.News(r.Context(), ticker)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if articles == nil {
		articles = []models.NewsArticle{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":   ticker,
		"count":    len(articles),
		"articles": articles,
	})
}

// handleAnalyze handles POST /api/analysis/{ticker}.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, ticker string) {
	record, err := s.app.Analysis.Analyze(r.Context(), ticker)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// handleGetAnalysis handles GET /api/analysis/{ticker}.
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request, ticker string) {
	record, err := s.app.Analysis.GetAnalysis(r.Context(), ticker)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// handleBatchStart handles POST /api/analysis/batch.
func (s *Server) handleBatchStart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	job, err := s.app.Batch.Start(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, job)
}

// handleBatchStatus handles GET /api/analysis/batch/status. No job since
// process start is a valid state, not an error.
func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	job := s.app.Batch.Status()
	if job == nil {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "no_job"})
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// handleRecommendations handles GET /api/recommendations.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	text, err := s.app.Analysis.Recommendations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"recommendations": text})
}
