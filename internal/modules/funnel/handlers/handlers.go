// Package handlers provides HTTP handlers for the sales funnel simulator.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/internal/modules/funnel"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProjectChecker reports whether a project exists.
type ProjectChecker interface {
	Exists(id string) (bool, error)
}

// Handler handles simulator HTTP requests
type Handler struct {
	simulator    *funnel.Simulator
	repo         *funnel.Repository
	projects     ProjectChecker
	catalog      *catalog.Catalog
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new simulator handler
func NewHandler(
	simulator *funnel.Simulator,
	repo *funnel.Repository,
	projects ProjectChecker,
	cat *catalog.Catalog,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		simulator:    simulator,
		repo:         repo,
		projects:     projects,
		catalog:      cat,
		eventManager: eventManager,
		log:          log.With().Str("handler", "simulator").Logger(),
	}
}

// RegisterRoutes registers /simulator routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/simulator", func(r chi.Router) {
		r.Post("/simulate", h.HandleSimulate)
		r.Post("/simulate-and-save", h.HandleSimulateAndSave)
		r.Get("/simulations/{id}", h.HandleGetSimulation)
		r.Get("/projects/{id}/simulations", h.HandleListProjectSimulations)
		r.Post("/compare-scenarios", h.HandleCompareScenarios)
		r.Get("/media-types", h.HandleGetMediaTypes)
		r.Get("/industries", h.HandleGetIndustries)
	})
}

// SaveRequest is the body of POST /simulator/simulate-and-save
type SaveRequest struct {
	funnel.Input
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}

// CompareRequest is the body of POST /simulator/compare-scenarios
type CompareRequest struct {
	Base      json.RawMessage            `json:"base_scenario"`
	Scenarios map[string]json.RawMessage `json:"scenarios"`
}

// decodeInput fills in defaults before decoding so absent fields keep them.
func decodeInput(raw []byte) (funnel.Input, error) {
	in := funnel.Input{VariableCostRate: funnel.DefaultVariableCostRate}
	err := json.Unmarshal(raw, &in)
	return in, err
}

// HandleSimulate runs a simulation without storing it
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	in := funnel.Input{VariableCostRate: funnel.DefaultVariableCostRate}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := h.simulator.Simulate(in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"simulation": out,
	})
}

// HandleSimulateAndSave runs a simulation and stores it under a project
func (h *Handler) HandleSimulateAndSave(w http.ResponseWriter, r *http.Request) {
	req := SaveRequest{Input: funnel.Input{VariableCostRate: funnel.DefaultVariableCostRate}}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProjectID == "" {
		h.writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}

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

	out, err := h.simulator.Simulate(req.Input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	sim, err := h.repo.Save(req.ProjectID, req.Name, req.Input, out)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.eventManager.EmitTyped(events.SimulationSaved, "simulator", &events.SimulationSavedData{
		SimulationID:   sim.ID,
		ProjectID:      sim.ProjectID,
		RequiredBudget: out.RequiredBudget,
		BreakevenMonth: out.BreakevenMonth,
	})

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":        "success",
		"simulation_id": sim.ID,
		"simulation":    out,
	})
}

// HandleGetSimulation returns a stored simulation
func (h *Handler) HandleGetSimulation(w http.ResponseWriter, r *http.Request) {
	sim, err := h.repo.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sim)
}

// HandleListProjectSimulations lists a project's latest simulations (?limit=)
func (h *Handler) HandleListProjectSimulations(w http.ResponseWriter, r *http.Request) {
	limit := funnel.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	projectID := chi.URLParam(r, "id")
	list, err := h.repo.ListByProject(projectID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"project_id":  projectID,
		"simulations": list,
	})
}

// HandleCompareScenarios simulates a base case against named alternatives
func (h *Handler) HandleCompareScenarios(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Base) == 0 {
		h.writeError(w, http.StatusBadRequest, "base_scenario is required")
		return
	}

	base, err := decodeInput(req.Base)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid base_scenario")
		return
	}
	scenarios := make(map[string]funnel.Input, len(req.Scenarios))
	for name, raw := range req.Scenarios {
		in, err := decodeInput(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid scenario "+name)
			return
		}
		scenarios[name] = in
	}

	cmp, err := h.simulator.Compare(base, scenarios)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"comparison": cmp,
	})
}

// HandleGetMediaTypes lists the media the simulator knows
func (h *Handler) HandleGetMediaTypes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"media_types": h.catalog.MediaTypes(),
	})
}

// HandleGetIndustries lists the industries the simulator knows
func (h *Handler) HandleGetIndustries(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"industries": h.catalog.FunnelIndustries(),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, funnel.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, funnel.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("Simulator operation failed")
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
