// Package events provides the in-process event bus used to notify streaming
// clients about work completed by the analysis modules.
package events

import "time"

// EventType identifies a kind of event.
type EventType string

// Domain events
const (
	ProjectCreated        EventType = "PROJECT_CREATED"
	ProjectUpdated        EventType = "PROJECT_UPDATED"
	ProjectDeleted        EventType = "PROJECT_DELETED"
	AnalysisCompleted     EventType = "ANALYSIS_COMPLETED"
	OptimizationCompleted EventType = "OPTIMIZATION_COMPLETED"
	SimulationSaved       EventType = "SIMULATION_SAVED"
	ReportGenerated       EventType = "REPORT_GENERATED"
	ReportExported        EventType = "REPORT_EXPORTED"
	RealtimeAnalyzed      EventType = "REALTIME_ANALYZED"
)

// System events
const (
	CacheCleaned    EventType = "CACHE_CLEANED"
	BackupCompleted EventType = "BACKUP_COMPLETED"
	JobFailed       EventType = "JOB_FAILED"
	ErrorOccurred   EventType = "ERROR_OCCURRED"
)

// AllEventTypes lists every known event type.
var AllEventTypes = []EventType{
	ProjectCreated,
	ProjectUpdated,
	ProjectDeleted,
	AnalysisCompleted,
	OptimizationCompleted,
	SimulationSaved,
	ReportGenerated,
	ReportExported,
	RealtimeAnalyzed,
	CacheCleaned,
	BackupCompleted,
	JobFailed,
	ErrorOccurred,
}

// Event is a single published event.
type Event struct {
	Type      EventType `json:"type"`
	Module    string    `json:"module"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
}
