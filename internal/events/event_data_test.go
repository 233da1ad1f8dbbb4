package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypes(t *testing.T) {
	tests := []struct {
		data EventData
		want EventType
	}{
		{&ProjectData{ProjectID: "p"}, ProjectCreated},
		{&ProjectData{ProjectID: "p", Action: ProjectDeleted}, ProjectDeleted},
		{&AnalysisCompletedData{}, AnalysisCompleted},
		{&OptimizationCompletedData{}, OptimizationCompleted},
		{&SimulationSavedData{}, SimulationSaved},
		{&ReportData{}, ReportGenerated},
		{&ReportData{Format: "png"}, ReportExported},
		{&RealtimeAnalyzedData{}, RealtimeAnalyzed},
		{&CacheCleanedData{}, CacheCleaned},
		{&BackupCompletedData{}, BackupCompleted},
		{&JobFailedData{}, JobFailed},
		{&ErrorEventData{}, ErrorOccurred},
		{&GenericEventData{Type: "CUSTOM"}, EventType("CUSTOM")},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.data.EventType())
		})
	}
}

func TestEvent_JSONRestoresTypedData(t *testing.T) {
	original := &Event{
		Type:      OptimizationCompleted,
		Module:    "optimization",
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Data: &OptimizationCompletedData{
			ProjectID:   "proj-1",
			Industry:    "beauty",
			ExpectedROI: 900,
			RiskScore:   0.44,
		},
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"expected_roi":900`)
	assert.Contains(t, string(raw), `"type":"OPTIMIZATION_COMPLETED"`)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original.Type, decoded.Type)
	assert.Equal(t, original.Module, decoded.Module)
	assert.True(t, original.Timestamp.Equal(decoded.Timestamp))

	data, ok := decoded.Data.(*OptimizationCompletedData)
	require.True(t, ok, "expected *OptimizationCompletedData, got %T", decoded.Data)
	assert.Equal(t, "proj-1", data.ProjectID)
	assert.Equal(t, 0.44, data.RiskScore)
}

func TestEvent_JSONUnknownTypeUsesGenericData(t *testing.T) {
	raw := []byte(`{"type":"SOMETHING_NEW","module":"x","timestamp":"2024-01-01T00:00:00Z","data":{"count":3}}`)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))

	generic, ok := decoded.Data.(*GenericEventData)
	require.True(t, ok)
	assert.Equal(t, EventType("SOMETHING_NEW"), generic.EventType())
	assert.Equal(t, float64(3), generic.Data["count"])
}

func TestEvent_JSONProjectActionSurvivesRoundTrip(t *testing.T) {
	raw, err := json.Marshal(&Event{
		Type: ProjectDeleted,
		Data: &ProjectData{ProjectID: "p1", Action: ProjectDeleted},
	})
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ProjectDeleted, decoded.Data.EventType())
}
