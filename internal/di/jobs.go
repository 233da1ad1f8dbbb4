package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/mvt-analytics/internal/clientdata"
	"github.com/aristath/mvt-analytics/internal/config"
	"github.com/aristath/mvt-analytics/internal/database"
	"github.com/aristath/mvt-analytics/internal/reliability"
	"github.com/aristath/mvt-analytics/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler and registers the background jobs.
// The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	container.Scheduler = scheduler.New(container.EventManager, log)
	instances := &JobInstances{}

	cleanup := clientdata.NewCleanupJob(container.CacheRepo, container.EventManager, log)
	if err := container.Scheduler.AddJob(cfg.Jobs.CacheCleanupSchedule, cleanup); err != nil {
		return nil, err
	}
	instances.CacheCleanup = cleanup

	if !cfg.Backup.Enabled {
		log.Info().Msg("Database backups disabled")
		return instances, nil
	}

	var uploader reliability.Uploader
	if cfg.Backup.S3Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		s3, err := reliability.NewS3Uploader(ctx, cfg.Backup, log)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to configure backup upload: %w", err)
		}
		uploader = s3
		log.Info().Str("bucket", cfg.Backup.S3Bucket).Msg("Off-site backup upload enabled")
	}

	backup := reliability.NewBackupJob(
		[]*database.DB{container.AnalyticsDB, container.CacheDB},
		cfg.Backup.Dir,
		cfg.Backup.Retention,
		uploader,
		container.EventManager,
		log,
	)
	if err := container.Scheduler.AddJob(cfg.Jobs.BackupSchedule, backup); err != nil {
		return nil, err
	}
	instances.Backup = backup

	return instances, nil
}
