package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/aristath/mvt-analytics/internal/modules/analyses"
	"github.com/aristath/mvt-analytics/internal/modules/projects"
	projecthandlers "github.com/aristath/mvt-analytics/internal/modules/projects/handlers"
	testingpkg "github.com/aristath/mvt-analytics/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (http.Handler, []testingpkg.ProjectFixture, *events.Bus) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "analytics")
	t.Cleanup(cleanup)
	fixtures := testingpkg.InsertProjects(t, db.Conn())

	bus := events.NewBus(zerolog.Nop())
	manager := events.NewManager(bus, zerolog.Nop())
	projectRepo := projects.NewRepository(db.Conn(), zerolog.Nop())
	service := analyses.NewService(analyses.NewRepository(db.Conn(), zerolog.Nop()), projectRepo, zerolog.Nop())

	handler := NewHandler(service, manager, zerolog.Nop())
	projectHandler := projecthandlers.NewHandler(projectRepo, manager, zerolog.Nop())
	projectHandler.Nest(handler.RegisterProjectRoutes)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		projectHandler.RegisterRoutes(r)
		handler.RegisterRoutes(r)
	})
	return r, fixtures, bus
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

func TestAnalysisLifecycle(t *testing.T) {
	router, fixtures, bus := setupRouter(t)
	projectID := fixtures[0].ID

	var completed []*events.Event
	bus.Subscribe(events.AnalysisCompleted, func(e *events.Event) { completed = append(completed, e) })

	rec := do(t, router, http.MethodPost, "/api/analyses", map[string]string{
		"project_id":    projectID,
		"analysis_type": "demographics",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		AnalysisID string           `json:"analysis_id"`
		Status     string           `json:"status"`
		Results    analyses.Results `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, analyses.StatusCompleted, created.Status)
	require.NotNil(t, created.Results.PopulationData)
	assert.Equal(t, 50000, created.Results.PopulationData.TotalPopulation)

	require.Len(t, completed, 1)
	data, ok := completed[0].Data.(*events.AnalysisCompletedData)
	require.True(t, ok)
	assert.Equal(t, created.AnalysisID, data.AnalysisID)

	rec = do(t, router, http.MethodGet, "/api/analyses/"+created.AnalysisID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got analyses.Analysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, projectID, got.ProjectID)
	assert.Equal(t, analyses.TypeDemographics, got.Type)

	do(t, router, http.MethodPost, "/api/analyses", map[string]string{"project_id": projectID, "analysis_type": "roi"})

	rec = do(t, router, http.MethodGet, "/api/projects/"+projectID+"/analyses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []analyses.Analysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 2)

	rec = do(t, router, http.MethodGet, "/api/projects/"+projectID+"/analyses?analysis_type=roi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, analyses.TypeROI, list[0].Type)

	// the project itself is still served
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/projects/"+projectID, nil).Code)
}

func TestAnalysisErrors(t *testing.T) {
	router, fixtures, _ := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/analyses", map[string]string{"project_id": "missing", "analysis_type": "roi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/analyses", map[string]string{"project_id": fixtures[0].ID, "analysis_type": "weather"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyses", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/analyses/missing", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/projects/"+fixtures[0].ID+"/analyses?analysis_type=weather", nil).Code)
}
