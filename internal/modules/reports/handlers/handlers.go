// Package handlers provides HTTP handlers for project reports.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/aristath/mvt-analytics/internal/modules/projects"
	"github.com/aristath/mvt-analytics/internal/modules/reports"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles report HTTP requests
type Handler struct {
	service      *reports.Service
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new report handler
func NewHandler(service *reports.Service, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		service:      service,
		eventManager: eventManager,
		log:          log.With().Str("handler", "reports").Logger(),
	}
}

// RegisterRoutes registers /reports routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Post("/generate", h.HandleGenerate)
		r.Get("/templates", h.HandleGetTemplates)
		r.Get("/projects/{id}", h.HandleListByProject)
		r.Get("/download/{id}", h.HandleDownload)
		r.Get("/{id}", h.HandleGet)
		r.Post("/{id}/export", h.HandleExport)
	})
}

// HandleGenerate builds and stores a report
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req reports.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProjectID == "" {
		h.writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}

	rep, err := h.service.Generate(req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.eventManager.EmitTyped(events.ReportGenerated, "reports", &events.ReportData{
		ReportID:  rep.ID,
		ProjectID: rep.ProjectID,
		Template:  string(rep.Template),
	})
	h.writeJSON(w, http.StatusCreated, rep)
}

// HandleGet returns a stored report
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

// HandleListByProject lists a project's reports (?limit=, 1..100)
func (h *Handler) HandleListByProject(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			h.writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	list, err := h.service.ListByProject(chi.URLParam(r, "id"), limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HandleExport renders a report in ?format= and stores the file
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := reports.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	export, err := h.service.Export(id, format)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.eventManager.EmitTyped(events.ReportExported, "reports", &events.ReportData{
		ReportID:  export.ReportID,
		ProjectID: export.ProjectID,
		Format:    string(export.Format),
	})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      string(format) + " export completed",
		"format":       format,
		"size":         len(export.Data),
		"filename":     export.Filename(),
		"download_url": "/api/reports/download/" + id,
	})
}

// HandleDownload serves the last export of a report
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.Download(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.Format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		h.log.Error().Err(err).Msg("Failed to write export")
	}
}

// HandleGetTemplates lists report templates
func (h *Handler) HandleGetTemplates(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": reports.Templates(),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reports.ErrUnsupportedFormat), errors.Is(err, reports.ErrUnknownTemplate):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, reports.ErrNotFound), errors.Is(err, projects.ErrNotFound),
		errors.Is(err, reports.ErrNotExported):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, reports.ErrNoCashflow):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error().Err(err).Msg("Report operation failed")
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
