package di

import (
	"fmt"

	"github.com/aristath/mvt-analytics/internal/clientdata"
	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/aristath/mvt-analytics/internal/modules/analyses"
	"github.com/aristath/mvt-analytics/internal/modules/funnel"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/aristath/mvt-analytics/internal/modules/projects"
	"github.com/aristath/mvt-analytics/internal/modules/reports"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the event bus and all repositories.
// Requires InitializeDatabases to have run.
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container.AnalyticsDB == nil || container.CacheDB == nil {
		return fmt.Errorf("databases must be initialized before repositories")
	}

	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	conn := container.AnalyticsDB.Conn()
	container.ProjectRepo = projects.NewRepository(conn, log)
	container.AnalysisRepo = analyses.NewRepository(conn, log)
	container.SimulationRepo = funnel.NewRepository(conn, log)
	container.BenchmarkRepo = funnel.NewBenchmarkRepository(conn, log)
	container.OptimizationRepo = optimization.NewRepository(conn, log)
	container.ReportRepo = reports.NewRepository(conn, log)

	container.CacheRepo = clientdata.NewRepository(container.CacheDB.Conn())

	log.Debug().Msg("Repositories initialized")
	return nil
}
