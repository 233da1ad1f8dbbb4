package di

import (
	"fmt"

	"github.com/aristath/mvt-analytics/internal/config"
	"github.com/aristath/mvt-analytics/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// analytics.db - domain records, must survive restarts
	analyticsDB, err := database.New(database.Config{
		Path:    cfg.AnalyticsDBPath(),
		Profile: database.ProfileStandard,
		Name:    "analytics",
		Driver:  cfg.DBDriver,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analytics database: %w", err)
	}
	container.AnalyticsDB = analyticsDB

	// cache.db - geographic data cache, safe to lose
	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache,
		Name:    "cache",
		Driver:  cfg.DBDriver,
	})
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	for _, db := range []*database.DB{analyticsDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	log.Info().
		Str("analytics", analyticsDB.Path()).
		Str("cache", cacheDB.Path()).
		Str("driver", analyticsDB.Driver()).
		Msg("Databases initialized")

	return container, nil
}
