package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/internal/modules/market"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() http.Handler {
	cat := catalog.New()
	predictor := market.NewPredictor(market.MockSource{}, cat, zerolog.Nop())
	seasonal := market.NewSeasonalAnalyzer(cat, nil)
	engine := optimization.NewEngine(cat, optimization.Options{}, zerolog.Nop())
	comprehensive := market.NewComprehensiveAnalyzer(predictor, engine, seasonal, zerolog.Nop())

	handler := NewHandler(predictor, comprehensive, seasonal, cat, zerolog.Nop())
	r := chi.NewRouter()
	r.Route("/api", handler.RegisterRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHandlePrediction(t *testing.T) {
	router := setupRouter()

	rec := do(t, router, http.MethodPost, "/api/market/prediction", map[string]interface{}{
		"industry": "beauty",
		"location": "Shibuya",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status     string                  `json:"status"`
		Prediction market.Prediction       `json:"prediction"`
		Seasonal   market.SeasonalAnalysis `json:"seasonal_analysis"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 2037, resp.Prediction.MonthlyDemand)
	assert.Len(t, resp.Seasonal.Trends, 12)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/market/prediction", bytes.NewBufferString("nope")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleComprehensiveAnalysis(t *testing.T) {
	router := setupRouter()

	rec := do(t, router, http.MethodPost, "/api/market/comprehensive-analysis", map[string]interface{}{
		"business_profile": map[string]interface{}{"industry": "restaurant", "location": "Osaka"},
		"constraints": map[string]interface{}{
			"total_budget":         2000000,
			"monthly_budget_limit": 200000,
			"target_customers":     400,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Analysis market.ComprehensiveAnalysis `json:"comprehensive_analysis"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Analysis.MarketPrediction)
	require.NotNil(t, resp.Analysis.RiskOptimization)
	assert.Equal(t, 12, resp.Analysis.RiskOptimization.MonthlyProjections[11].Month)
	assert.Greater(t, resp.Analysis.OverallConfidence, 0.0)
}

func TestHandleComprehensiveAnalysis_InvalidConstraints(t *testing.T) {
	router := setupRouter()

	rec := do(t, router, http.MethodPost, "/api/market/comprehensive-analysis", map[string]interface{}{
		"business_profile": map[string]interface{}{"industry": "beauty"},
		"constraints":      map[string]interface{}{"total_budget": 0},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["problems"])
}

func TestHandleSeasonal(t *testing.T) {
	router := setupRouter()

	rec := do(t, router, http.MethodGet, "/api/market/seasonal/fitness?months=6", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Seasonal market.SeasonalAnalysis `json:"seasonal_analysis"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Seasonal.Trends, 6)
	assert.Equal(t, []string{"January"}, resp.Seasonal.PeakMonths)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/market/seasonal/fitness?months=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/market/seasonal/fitness?months=x", nil).Code)
}

func TestHandleIndustryBenchmarks(t *testing.T) {
	router := setupRouter()

	rec := do(t, router, http.MethodGet, "/api/market/industry-benchmarks/healthcare", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Industry   string                  `json:"industry"`
		Benchmarks catalog.IndustryProfile `json:"benchmarks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthcare", resp.Industry)
	assert.Equal(t, 0.15, resp.Benchmarks.PenetrationRate)
	assert.Equal(t, 36, resp.Benchmarks.AvgCustomerLifetime)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/market/industry-benchmarks/bakery", nil).Code)
}
