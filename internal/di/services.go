package di

import (
	"fmt"
	"time"

	"github.com/aristath/mvt-analytics/internal/config"
	"github.com/aristath/mvt-analytics/internal/modules/analyses"
	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/internal/modules/funnel"
	"github.com/aristath/mvt-analytics/internal/modules/market"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/aristath/mvt-analytics/internal/modules/realtime"
	"github.com/aristath/mvt-analytics/internal/modules/reports"
	"github.com/rs/zerolog"
)

// InitializeServices builds the catalog and every domain service.
// Requires InitializeRepositories to have run.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	cat, err := LoadCatalog(cfg.CatalogFile, log)
	if err != nil {
		return err
	}
	container.Catalog = cat

	seeded, err := container.BenchmarkRepo.SeedDefaults(cat.Benchmarks())
	if err != nil {
		return fmt.Errorf("failed to seed CPA benchmarks: %w", err)
	}
	if seeded > 0 {
		log.Info().Int("benchmarks", seeded).Msg("Seeded default CPA benchmarks")
	}

	container.AnalysisService = analyses.NewService(container.AnalysisRepo, container.ProjectRepo, log)
	container.Simulator = funnel.NewSimulator(container.BenchmarkRepo, cat, log)
	container.OptimizationEngine = optimization.NewEngine(cat, optimization.Options{
		FallbackOnInvalid: cfg.Optimizer.FallbackOnInvalid,
	}, log)

	container.MarketSource = market.NewCachedSource(market.MockSource{}, container.CacheRepo, log)
	container.Predictor = market.NewPredictor(container.MarketSource, cat, log)
	container.SeasonalAnalyzer = market.NewSeasonalAnalyzer(cat, time.Now)
	container.ComprehensiveAnalyzer = market.NewComprehensiveAnalyzer(
		container.Predictor,
		container.OptimizationEngine,
		container.SeasonalAnalyzer,
		log,
	)

	container.RealtimeAnalyzer = realtime.NewAnalyzer(cfg.Realtime.HistorySize, log)

	container.ReportService = reports.NewService(reports.Sources{
		Projects:      container.ProjectRepo,
		Analyses:      container.AnalysisRepo,
		Simulations:   container.SimulationRepo,
		Optimizations: container.OptimizationRepo,
	}, container.ReportRepo, log)

	log.Debug().Msg("Services initialized")
	return nil
}

// LoadCatalog returns the built-in catalog, with overrides applied when
// path is set.
func LoadCatalog(path string, log zerolog.Logger) (*catalog.Catalog, error) {
	cat := catalog.New()
	if path == "" {
		return cat, nil
	}

	overrides, err := catalog.LoadOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog overrides: %w", err)
	}
	cat, err = cat.WithOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog overrides in %s: %w", path, err)
	}

	log.Info().Str("file", path).Int("channels", len(cat.Channels())).Msg("Catalog overrides applied")
	return cat, nil
}
