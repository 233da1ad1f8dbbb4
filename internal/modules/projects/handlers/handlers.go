// Package handlers provides HTTP handlers for project management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/aristath/mvt-analytics/internal/modules/projects"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles project HTTP requests
type Handler struct {
	repo         *projects.Repository
	eventManager *events.Manager
	nested       []func(chi.Router)
	log          zerolog.Logger
}

// NewHandler creates a new project handler
func NewHandler(repo *projects.Repository, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("handler", "projects").Logger(),
	}
}

// Nest adds routes under /projects/{id} owned by other modules,
// e.g. /projects/{id}/analyses. Must be called before RegisterRoutes.
func (h *Handler) Nest(register func(r chi.Router)) {
	h.nested = append(h.nested, register)
}

// RegisterRoutes registers all project routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			for _, register := range h.nested {
				register(r)
			}
		})
	})
}

// HandleList returns a page of projects
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.repo.List(limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list projects")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := h.repo.Count()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count projects")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": list,
		"total":    total,
		"limit":    projects.ClampLimit(limit),
		"offset":   max(0, offset),
	})
}

// HandleCreate creates a project
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req projects.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.repo.Create(req)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.eventManager.EmitTyped(events.ProjectCreated, "projects", &events.ProjectData{
		ProjectID: p.ID,
		Name:      p.Name,
		Industry:  p.IndustryType,
		Action:    events.ProjectCreated,
	})
	h.writeJSON(w, http.StatusCreated, p)
}

// HandleGet returns a single project
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// HandleUpdate applies a partial update
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req projects.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.repo.Update(chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.eventManager.EmitTyped(events.ProjectUpdated, "projects", &events.ProjectData{
		ProjectID: p.ID,
		Name:      p.Name,
		Industry:  p.IndustryType,
		Action:    events.ProjectUpdated,
	})
	h.writeJSON(w, http.StatusOK, p)
}

// HandleDelete deletes a project and its dependent records
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(id); err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.eventManager.EmitTyped(events.ProjectDeleted, "projects", &events.ProjectData{
		ProjectID: id,
		Action:    events.ProjectDeleted,
	})
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error) {
	var verr *projects.ValidationError
	switch {
	case errors.Is(err, projects.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Project operation failed")
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
