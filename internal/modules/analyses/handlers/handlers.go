// Package handlers provides HTTP handlers for project analyses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/aristath/mvt-analytics/internal/modules/analyses"
	"github.com/aristath/mvt-analytics/internal/modules/projects"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles analysis HTTP requests
type Handler struct {
	service      *analyses.Service
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *analyses.Service, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		service:      service,
		eventManager: eventManager,
		log:          log.With().Str("handler", "analyses").Logger(),
	}
}

// RegisterRoutes registers /analyses routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analyses", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
	})
}

// RegisterProjectRoutes registers routes nested under /projects/{id}
func (h *Handler) RegisterProjectRoutes(r chi.Router) {
	r.Get("/analyses", h.HandleListByProject)
}

// HandleCreate runs an analysis for a project
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req analyses.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	a, err := h.service.Run(req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.eventManager.EmitTyped(events.AnalysisCompleted, "analyses", &events.AnalysisCompletedData{
		AnalysisID:   a.ID,
		ProjectID:    a.ProjectID,
		AnalysisType: string(a.Type),
	})

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"analysis_id": a.ID,
		"status":      a.Status,
		"results":     a.Results,
		"message":     string(a.Type) + " analysis completed",
	})
}

// HandleGet returns a stored analysis
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

// HandleListByProject lists a project's analyses, filtered by ?analysis_type=
func (h *Handler) HandleListByProject(w http.ResponseWriter, r *http.Request) {
	t := analyses.Type(r.URL.Query().Get("analysis_type"))
	if t != "" && !t.Valid() {
		h.writeError(w, http.StatusBadRequest, "unknown analysis type: "+string(t))
		return
	}

	list, err := h.service.ListByProject(chi.URLParam(r, "id"), t)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analyses.ErrUnknownType):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analyses.ErrNotFound), errors.Is(err, projects.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("Analysis operation failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
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
