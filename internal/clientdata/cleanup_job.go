package clientdata

import (
	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/rs/zerolog"
)

// CleanupJob removes expired entries from the geographic cache.
// It is scheduled hourly by default.
type CleanupJob struct {
	repo         *Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewCleanupJob creates a new cache cleanup job. eventManager may be nil.
func NewCleanupJob(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Run removes all expired entries.
func (j *CleanupJob) Run() error {
	results, err := j.repo.DeleteAllExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired cache entries")
		return err
	}

	var totalDeleted int64
	for dataType, count := range results {
		if count > 0 {
			j.log.Info().
				Str("data_type", dataType).
				Int64("deleted", count).
				Msg("Cleaned up expired cache entries")
			totalDeleted += count
		}
	}

	if totalDeleted > 0 {
		j.log.Info().Int64("total_deleted", totalDeleted).Msg("Cache cleanup completed")
	}
	j.eventManager.EmitTyped(events.CacheCleaned, "clientdata", &events.CacheCleanedData{Removed: totalDeleted})

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}
