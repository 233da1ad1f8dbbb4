package events

import (
	"encoding/json"
)

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// ProjectData contains data for project lifecycle events
type ProjectData struct {
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name,omitempty"`
	Industry  string    `json:"industry,omitempty"`
	Action    EventType `json:"-"`
}

// EventType returns the event type for ProjectData
func (d *ProjectData) EventType() EventType {
	if d.Action != "" {
		return d.Action
	}
	return ProjectCreated
}

// AnalysisCompletedData contains data for AnalysisCompleted events
type AnalysisCompletedData struct {
	AnalysisID   string `json:"analysis_id"`
	ProjectID    string `json:"project_id"`
	AnalysisType string `json:"analysis_type"`
}

// EventType returns the event type for AnalysisCompletedData
func (d *AnalysisCompletedData) EventType() EventType {
	return AnalysisCompleted
}

// OptimizationCompletedData contains data for OptimizationCompleted events
type OptimizationCompletedData struct {
	OptimizationID string  `json:"optimization_id,omitempty"`
	ProjectID      string  `json:"project_id,omitempty"`
	Industry       string  `json:"industry"`
	ExpectedROI    float64 `json:"expected_roi"`
	RiskScore      float64 `json:"risk_score"`
	Fallback       bool    `json:"fallback"`
}

// EventType returns the event type for OptimizationCompletedData
func (d *OptimizationCompletedData) EventType() EventType {
	return OptimizationCompleted
}

// SimulationSavedData contains data for SimulationSaved events
type SimulationSavedData struct {
	SimulationID   string  `json:"simulation_id"`
	ProjectID      string  `json:"project_id"`
	RequiredBudget float64 `json:"required_budget"`
	BreakevenMonth int     `json:"breakeven_month"`
}

// EventType returns the event type for SimulationSavedData
func (d *SimulationSavedData) EventType() EventType {
	return SimulationSaved
}

// ReportData contains data for report events
type ReportData struct {
	ReportID  string `json:"report_id"`
	ProjectID string `json:"project_id"`
	Template  string `json:"template,omitempty"`
	Format    string `json:"format,omitempty"`
}

// EventType returns the event type for ReportData
func (d *ReportData) EventType() EventType {
	if d.Format != "" {
		return ReportExported
	}
	return ReportGenerated
}

// RealtimeAnalyzedData contains data for RealtimeAnalyzed events
type RealtimeAnalyzedData struct {
	SessionID  string `json:"session_id"`
	Urgency    string `json:"urgency"`
	DataPoints int    `json:"data_points"`
}

// EventType returns the event type for RealtimeAnalyzedData
func (d *RealtimeAnalyzedData) EventType() EventType {
	return RealtimeAnalyzed
}

// CacheCleanedData contains data for CacheCleaned events
type CacheCleanedData struct {
	Removed int64 `json:"removed"`
}

// EventType returns the event type for CacheCleanedData
func (d *CacheCleanedData) EventType() EventType {
	return CacheCleaned
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Files    []string `json:"files"`
	Uploaded bool     `json:"uploaded"`
	Pruned   int      `json:"pruned"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// JobFailedData contains data for JobFailed events
type JobFailedData struct {
	Job   string `json:"job"`
	Error string `json:"error"`
}

// EventType returns the event type for JobFailedData
func (d *JobFailedData) EventType() EventType {
	return JobFailed
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON customizes JSON serialization for GenericEventData
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON customizes JSON deserialization for GenericEventData
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}

// MarshalJSON encodes the event with its data inlined.
func (e *Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	aux := &struct {
		Data json.RawMessage `json:"data,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}
	if e.Data != nil {
		raw, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = raw
	}
	return json.Marshal(aux)
}

// UnmarshalJSON decodes an event, restoring the typed data by event type.
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if len(aux.Data) == 0 || string(aux.Data) == "null" {
		e.Data = nil
		return nil
	}

	var eventData EventData
	switch aux.Type {
	case ProjectCreated, ProjectUpdated, ProjectDeleted:
		eventData = &ProjectData{Action: aux.Type}
	case AnalysisCompleted:
		eventData = &AnalysisCompletedData{}
	case OptimizationCompleted:
		eventData = &OptimizationCompletedData{}
	case SimulationSaved:
		eventData = &SimulationSavedData{}
	case ReportGenerated, ReportExported:
		eventData = &ReportData{}
	case RealtimeAnalyzed:
		eventData = &RealtimeAnalyzedData{}
	case CacheCleaned:
		eventData = &CacheCleanedData{}
	case BackupCompleted:
		eventData = &BackupCompletedData{}
	case JobFailed:
		eventData = &JobFailedData{}
	case ErrorOccurred:
		eventData = &ErrorEventData{}
	default:
		eventData = &GenericEventData{Type: aux.Type}
	}

	if err := json.Unmarshal(aux.Data, eventData); err != nil {
		return err
	}
	e.Data = eventData
	return nil
}
