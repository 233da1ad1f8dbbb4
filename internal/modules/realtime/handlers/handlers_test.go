package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/aristath/mvt-analytics/internal/modules/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() (http.Handler, *realtime.Analyzer, *events.Bus) {
	analyzer := realtime.NewAnalyzer(realtime.DefaultHistorySize, zerolog.Nop())
	bus := events.NewBus(zerolog.Nop())
	handler := NewHandler(analyzer, events.NewManager(bus, zerolog.Nop()), zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api", handler.RegisterRoutes)
	return r, analyzer, bus
}

func analyze(t *testing.T, h http.Handler, session string, body map[string]interface{}) realtime.Analysis {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/realtime/analyze", bytes.NewReader(raw))
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Analysis realtime.Analysis `json:"realtime_analysis"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Analysis
}

func TestHandleAnalyze_SessionFromHeaderOrBody(t *testing.T) {
	router, analyzer, bus := setupRouter()

	var emitted int
	bus.Subscribe(events.RealtimeAnalyzed, func(*events.Event) { emitted++ })

	first := analyze(t, router, "campaign-1", map[string]interface{}{"roi": 150, "cpa": 9000, "monthly_cost": 100000})
	assert.Equal(t, "campaign-1", first.SessionID)
	assert.Equal(t, realtime.UrgencyMedium, first.Urgency)
	assert.Equal(t, []string{realtime.RecommendationHighCPA}, first.Recommendations)

	second := analyze(t, router, "", map[string]interface{}{"session_id": "campaign-1", "roi": 110, "monthly_cost": 120000})
	assert.Equal(t, 2, second.Trends.DataPoints)
	assert.Equal(t, realtime.TrendDeclining, second.Trends.ROITrend)
	assert.Equal(t, realtime.TrendIncreasing, second.Trends.CostTrend)
	assert.Equal(t, 120000.0, second.CurrentPerformance.Cost)

	other := analyze(t, router, "", map[string]interface{}{"roi": 300})
	assert.Equal(t, realtime.DefaultSessionID, other.SessionID)

	assert.Equal(t, 2, analyzer.SessionCount())
	assert.Equal(t, 3, emitted)
}

func TestSessionEndpoints(t *testing.T) {
	router, _, _ := setupRouter()

	analyze(t, router, "s1", map[string]interface{}{"roi": 200})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/realtime/sessions/s1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/realtime/sessions/s1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/realtime/sessions/s1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/realtime/sessions/s1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAnalyze_BadBody(t *testing.T) {
	router, _, _ := setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/realtime/analyze", bytes.NewBufferString("[")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
