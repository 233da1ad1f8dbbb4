// Package handlers provides HTTP handlers for real-time performance analysis.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/aristath/mvt-analytics/internal/modules/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SessionHeader names the request header carrying the session id.
const SessionHeader = "X-Session-ID"

// Handler handles real-time analysis HTTP requests
type Handler struct {
	analyzer     *realtime.Analyzer
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new real-time handler
func NewHandler(analyzer *realtime.Analyzer, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		analyzer:     analyzer,
		eventManager: eventManager,
		log:          log.With().Str("handler", "realtime").Logger(),
	}
}

// RegisterRoutes registers all real-time routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/realtime", func(r chi.Router) {
		r.Post("/analyze", h.HandleAnalyze)
		r.Get("/sessions/{id}", h.HandleGetSession)
		r.Delete("/sessions/{id}", h.HandleResetSession)
	})
}

// AnalyzeRequest is the body of POST /realtime/analyze
type AnalyzeRequest struct {
	SessionID string `json:"session_id"`
	realtime.Metrics
}

// HandleAnalyze records a metrics snapshot and returns the analysis
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		sessionID = req.SessionID
	}

	analysis := h.analyzer.AnalyzeRealtimePerformance(sessionID, req.Metrics)

	h.eventManager.EmitTyped(events.RealtimeAnalyzed, "realtime", &events.RealtimeAnalyzedData{
		SessionID:  analysis.SessionID,
		Urgency:    string(analysis.Urgency),
		DataPoints: analysis.Trends.DataPoints,
	})

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "success",
		"realtime_analysis":  analysis,
		"analysis_timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleGetSession returns a session's snapshot history
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history := h.analyzer.History(id)
	if len(history) == 0 {
		h.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": id,
		"history":    history,
	})
}

// HandleResetSession drops a session's history
func (h *Handler) HandleResetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.analyzer.Reset(id) {
		h.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "session_id": id})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
