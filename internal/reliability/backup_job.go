// Package reliability keeps the databases recoverable: scheduled backups,
// integrity checks and optional off-site copies.
package reliability

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aristath/mvt-analytics/internal/database"
	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/rs/zerolog"
)

// backupLayout names the per-run backup directory.
const backupLayout = "20060102-150405"

// DefaultBackupTimeout bounds a single backup run.
const DefaultBackupTimeout = 10 * time.Minute

// Uploader copies a backup file off-site.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader) error
}

// BackupJob copies every database into a timestamped directory with
// VACUUM INTO, checks the copies, optionally uploads them and prunes old runs.
type BackupJob struct {
	databases    []*database.DB
	dir          string
	retention    int
	uploader     Uploader
	eventManager *events.Manager
	log          zerolog.Logger
	now          func() time.Time
	timeout      time.Duration
}

// NewBackupJob creates a backup job. uploader and eventManager may be nil.
// retention is the number of local runs kept (at least 1).
func NewBackupJob(
	databases []*database.DB,
	dir string,
	retention int,
	uploader Uploader,
	eventManager *events.Manager,
	log zerolog.Logger,
) *BackupJob {
	if retention < 1 {
		retention = 1
	}
	return &BackupJob{
		databases:    databases,
		dir:          dir,
		retention:    retention,
		uploader:     uploader,
		eventManager: eventManager,
		log:          log.With().Str("job", "database_backup").Logger(),
		now:          time.Now,
		timeout:      DefaultBackupTimeout,
	}
}

// Name returns the job name for scheduling and logging.
func (j *BackupJob) Name() string {
	return "database_backup"
}

// Run performs one backup.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.Backup(ctx)
	if err != nil {
		return err
	}
	j.eventManager.EmitTyped(events.BackupCompleted, "reliability", &events.BackupCompletedData{
		Files:    result.Files,
		Uploaded: result.Uploaded,
		Pruned:   result.Pruned,
	})
	return nil
}

// BackupResult describes a completed backup.
type BackupResult struct {
	Dir      string   `json:"dir"`
	Files    []string `json:"files"`
	Uploaded bool     `json:"uploaded"`
	Pruned   int      `json:"pruned"`
}

// Backup copies, verifies and uploads every database.
func (j *BackupJob) Backup(ctx context.Context) (*BackupResult, error) {
	start := j.now()
	stamp := start.UTC().Format(backupLayout)
	runDir := filepath.Join(j.dir, stamp)
	if _, err := os.Stat(runDir); err == nil {
		return nil, fmt.Errorf("backup %s already exists", stamp)
	}

	result := &BackupResult{Dir: runDir}
	for _, db := range j.databases {
		dest := filepath.Join(runDir, db.Name()+".db")
		if err := db.BackupTo(ctx, dest); err != nil {
			return nil, err
		}
		if err := verifyBackup(ctx, db.Driver(), dest); err != nil {
			_ = os.Remove(dest)
			return nil, fmt.Errorf("backup verification failed for %s: %w", db.Name(), err)
		}
		result.Files = append(result.Files, dest)
		j.log.Debug().Str("database", db.Name()).Str("path", dest).Msg("Database backed up")
	}

	if j.uploader != nil {
		for _, path := range result.Files {
			if err := j.upload(ctx, stamp, path); err != nil {
				return nil, err
			}
		}
		result.Uploaded = true
	}

	pruned, err := j.prune()
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to prune old backups")
	}
	result.Pruned = pruned

	j.log.Info().
		Str("dir", runDir).
		Int("databases", len(result.Files)).
		Bool("uploaded", result.Uploaded).
		Int("pruned", pruned).
		Dur("duration", j.now().Sub(start)).
		Msg("Backup completed")
	return result, nil
}

func (j *BackupJob) upload(ctx context.Context, stamp, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup %s: %w", path, err)
	}
	defer f.Close()

	key := stamp + "/" + filepath.Base(path)
	if err := j.uploader.Upload(ctx, key, f); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// prune removes the oldest backup runs beyond the retention count. Only
// directories named like a backup run are considered.
func (j *BackupJob) prune() (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var runs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(backupLayout, e.Name()); err != nil {
			continue
		}
		runs = append(runs, e.Name())
	}
	if len(runs) <= j.retention {
		return 0, nil
	}

	sort.Strings(runs)
	removed := 0
	for _, name := range runs[:len(runs)-j.retention] {
		path := filepath.Join(j.dir, name)
		if err := os.RemoveAll(path); err != nil {
			j.log.Warn().Err(err).Str("path", path).Msg("Failed to delete old backup")
			continue
		}
		removed++
	}
	return removed, nil
}

// verifyBackup runs an integrity check on a backup file.
func verifyBackup(ctx context.Context, driver, path string) error {
	conn, err := sql.Open(driver, path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer conn.Close()

	var result string
	if err := conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
