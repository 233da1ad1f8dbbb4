// Package di provides dependency injection type definitions.
//
// The Container holds every long-lived dependency of the application and is
// the single source of truth handed to the HTTP server and the CLI.
package di

import (
	"github.com/aristath/mvt-analytics/internal/clientdata"
	"github.com/aristath/mvt-analytics/internal/database"
	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/aristath/mvt-analytics/internal/modules/analyses"
	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/internal/modules/funnel"
	"github.com/aristath/mvt-analytics/internal/modules/market"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/aristath/mvt-analytics/internal/modules/projects"
	"github.com/aristath/mvt-analytics/internal/modules/realtime"
	"github.com/aristath/mvt-analytics/internal/modules/reports"
	"github.com/aristath/mvt-analytics/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	AnalyticsDB *database.DB // projects, analyses, simulations, optimizations, reports
	CacheDB     *database.DB // geographic data cache

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Reference data
	Catalog *catalog.Catalog

	// Repositories
	ProjectRepo      *projects.Repository
	AnalysisRepo     *analyses.Repository
	SimulationRepo   *funnel.Repository
	BenchmarkRepo    *funnel.BenchmarkRepository
	OptimizationRepo *optimization.Repository
	ReportRepo       *reports.Repository
	CacheRepo        *clientdata.Repository

	// Services
	AnalysisService       *analyses.Service
	Simulator             *funnel.Simulator
	OptimizationEngine    *optimization.Engine
	MarketSource          market.DataSource
	Predictor             *market.Predictor
	SeasonalAnalyzer      *market.SeasonalAnalyzer
	ComprehensiveAnalyzer *market.ComprehensiveAnalyzer
	RealtimeAnalyzer      *realtime.Analyzer
	ReportService         *reports.Service

	// Background work
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered background jobs
type JobInstances struct {
	CacheCleanup scheduler.Job
	Backup       scheduler.Job // nil when backups are disabled
}

// Close releases the databases. It is safe on a partially built container.
func (c *Container) Close() error {
	var firstErr error
	for _, db := range []*database.DB{c.AnalyticsDB, c.CacheDB} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
