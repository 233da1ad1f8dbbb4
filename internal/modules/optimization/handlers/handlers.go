// Package handlers provides HTTP handlers for budget optimization.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProjectChecker reports whether a project exists.
type ProjectChecker interface {
	Exists(id string) (bool, error)
}

// Handler handles optimization HTTP requests
type Handler struct {
	engine       *optimization.Engine
	repo         *optimization.Repository
	projects     ProjectChecker
	catalog      *catalog.Catalog
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new optimization handler
func NewHandler(
	engine *optimization.Engine,
	repo *optimization.Repository,
	projects ProjectChecker,
	cat *catalog.Catalog,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		engine:       engine,
		repo:         repo,
		projects:     projects,
		catalog:      cat,
		eventManager: eventManager,
		log:          log.With().Str("handler", "optimization").Logger(),
	}
}

// BusinessProfile carries the business context of a request.
type BusinessProfile struct {
	Industry string `json:"industry"`
}

// OptimizationRequest is the body of POST /optimization/risk-optimization
type OptimizationRequest struct {
	BusinessProfile  BusinessProfile                  `json:"business_profile"`
	Industry         string                           `json:"industry"`
	Constraints      optimization.BusinessConstraints `json:"constraints"`
	SelectedChannels []string                         `json:"selected_channels"`
	ProjectID        string                           `json:"project_id"`
}

// industry prefers the business profile, then the top-level field.
func (r OptimizationRequest) industry() string {
	if r.BusinessProfile.Industry != "" {
		return r.BusinessProfile.Industry
	}
	if r.Industry != "" {
		return r.Industry
	}
	return catalog.DefaultIndustry
}

// defaultConstraints are applied before decoding so absent fields keep them.
func defaultConstraints() optimization.BusinessConstraints {
	return optimization.BusinessConstraints{
		MaxRiskTolerance: 0.5,
		TargetROI:        200,
		TimeHorizon:      optimization.DefaultTimeHorizon,
	}
}

// ProjectionRequest is the body of POST /optimization/project
type ProjectionRequest struct {
	Allocation  optimization.Allocation          `json:"allocation"`
	Constraints optimization.BusinessConstraints `json:"constraints"`
}

// HandleRiskOptimization runs the full optimization
func (h *Handler) HandleRiskOptimization(w http.ResponseWriter, r *http.Request) {
	req := OptimizationRequest{Constraints: defaultConstraints()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ProjectID != "" {
		exists, err := h.projects.Exists(req.ProjectID)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to look up project")
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !exists {
			h.writeError(w, http.StatusNotFound, "project not found")
			return
		}
	}

	industry := h.catalog.ResolveIndustry(req.industry())
	result, err := h.engine.Optimize(r.Context(), req.Constraints, industry, req.SelectedChannels)
	if err != nil {
		var verr *optimization.ValidationError
		if errors.As(err, &verr) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":    verr.Error(),
				"problems": verr.Problems,
			})
			return
		}
		h.log.Error().Err(err).Msg("Optimization failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := map[string]interface{}{
		"status":             "success",
		"optimization":       result,
		"analysis_timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	eventData := &events.OptimizationCompletedData{
		ProjectID:   req.ProjectID,
		Industry:    industry,
		ExpectedROI: result.ExpectedROI,
		RiskScore:   result.RiskScore,
		Fallback:    result.Fallback,
	}

	if req.ProjectID != "" {
		rec, err := h.repo.Save(req.ProjectID, optimization.Request{
			Constraints:      req.Constraints,
			Industry:         industry,
			SelectedChannels: req.SelectedChannels,
		}, result)
		if err != nil {
			h.log.Error().Err(err).Str("project_id", req.ProjectID).Msg("Failed to save optimization")
			h.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		response["optimization_id"] = rec.ID
		eventData.OptimizationID = rec.ID
	}

	h.eventManager.EmitTyped(events.OptimizationCompleted, "optimization", eventData)
	h.writeJSON(w, http.StatusOK, response)
}

// HandleProject projects an explicit allocation
func (h *Handler) HandleProject(w http.ResponseWriter, r *http.Request) {
	req := ProjectionRequest{Constraints: defaultConstraints()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Allocation) == 0 {
		h.writeError(w, http.StatusBadRequest, "allocation is required")
		return
	}
	if req.Constraints.TimeHorizon < 1 {
		h.writeError(w, http.StatusBadRequest, "time_horizon must be at least 1 month")
		return
	}
	for id, budget := range req.Allocation {
		if budget < 0 {
			h.writeError(w, http.StatusBadRequest, "allocation for "+id+" cannot be negative")
			return
		}
	}

	projection := h.engine.Project(req.Allocation, req.Constraints)
	risk := h.engine.Assess(req.Allocation, req.Constraints)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "success",
		"projection":      projection,
		"risk_assessment": risk,
	})
}

// HandleGetChannels returns the channel catalog
func (h *Handler) HandleGetChannels(w http.ResponseWriter, r *http.Request) {
	channels := make(map[string]catalog.MarketingChannel)
	for _, ch := range h.catalog.Channels() {
		channels[ch.ID] = ch
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"channels": channels,
		"order":    h.catalog.ChannelIDs(),
	})
}

// HandleGetRiskRegister returns the generic marketing risk register
func (h *Handler) HandleGetRiskRegister(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"risks":  h.catalog.RiskRegister(),
	})
}

// HandleGetProjectHistory returns stored optimizations of a project
func (h *Handler) HandleGetProjectHistory(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	exists, err := h.projects.Exists(projectID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to look up project")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		h.writeError(w, http.StatusNotFound, "project not found")
		return
	}

	records, err := h.repo.ListByProject(projectID, 10)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list optimizations")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"project_id":    projectID,
		"optimizations": records,
	})
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
