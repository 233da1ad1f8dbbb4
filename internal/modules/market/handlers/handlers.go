// Package handlers provides HTTP handlers for market prediction.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/internal/modules/market"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles market HTTP requests
type Handler struct {
	predictor     *market.Predictor
	comprehensive *market.ComprehensiveAnalyzer
	seasonal      *market.SeasonalAnalyzer
	catalog       *catalog.Catalog
	log           zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(
	predictor *market.Predictor,
	comprehensive *market.ComprehensiveAnalyzer,
	seasonal *market.SeasonalAnalyzer,
	cat *catalog.Catalog,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		predictor:     predictor,
		comprehensive: comprehensive,
		seasonal:      seasonal,
		catalog:       cat,
		log:           log.With().Str("handler", "market").Logger(),
	}
}

// RegisterRoutes registers all market routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Post("/prediction", h.HandlePrediction)
		r.Post("/comprehensive-analysis", h.HandleComprehensiveAnalysis)
		r.Get("/seasonal/{industry}", h.HandleSeasonal)
		r.Get("/industry-benchmarks/{industry}", h.HandleIndustryBenchmarks)
	})
}

// ComprehensiveRequest is the body of POST /market/comprehensive-analysis
type ComprehensiveRequest struct {
	BusinessProfile  market.BusinessProfile           `json:"business_profile"`
	Constraints      optimization.BusinessConstraints `json:"constraints"`
	SelectedChannels []string                         `json:"selected_channels"`
}

// HandlePrediction returns a market prediction with its seasonal outlook
func (h *Handler) HandlePrediction(w http.ResponseWriter, r *http.Request) {
	var profile market.BusinessProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prediction, err := h.predictor.Predict(r.Context(), profile)
	if err != nil {
		h.log.Error().Err(err).Msg("Market prediction failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "success",
		"prediction":         prediction,
		"seasonal_analysis":  h.seasonal.Analyze(profile.Industry, market.DefaultMonthsAhead),
		"analysis_timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleComprehensiveAnalysis runs market, optimization and seasonal analysis together
func (h *Handler) HandleComprehensiveAnalysis(w http.ResponseWriter, r *http.Request) {
	req := ComprehensiveRequest{Constraints: optimization.BusinessConstraints{
		MaxRiskTolerance: 0.5,
		TargetROI:        200,
		TimeHorizon:      optimization.DefaultTimeHorizon,
	}}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	start := time.Now()
	analysis, err := h.comprehensive.Analyze(r.Context(), req.BusinessProfile, req.Constraints, req.SelectedChannels)
	if err != nil {
		var verr *optimization.ValidationError
		if errors.As(err, &verr) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":    verr.Error(),
				"problems": verr.Problems,
			})
			return
		}
		h.log.Error().Err(err).Msg("Comprehensive analysis failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":                 "success",
		"comprehensive_analysis": analysis,
		"analysis_timestamp":     time.Now().UTC().Format(time.RFC3339),
		"processing_time_ms":     time.Since(start).Milliseconds(),
	})
}

// HandleSeasonal returns the seasonal outlook of an industry (?months=, default 12)
func (h *Handler) HandleSeasonal(w http.ResponseWriter, r *http.Request) {
	months := market.DefaultMonthsAhead
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 36 {
			h.writeError(w, http.StatusBadRequest, "months must be between 1 and 36")
			return
		}
		months = n
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "success",
		"seasonal_analysis": h.seasonal.Analyze(chi.URLParam(r, "industry"), months),
	})
}

// HandleIndustryBenchmarks returns reference market data of an industry
func (h *Handler) HandleIndustryBenchmarks(w http.ResponseWriter, r *http.Request) {
	industry := chi.URLParam(r, "industry")
	profile, ok := h.catalog.LookupIndustry(industry)
	if !ok {
		h.writeError(w, http.StatusNotFound, "industry not found: "+industry)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"industry":   industry,
		"benchmarks": profile,
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
