package reliability

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/mvt-analytics/internal/database"
	"github.com/aristath/mvt-analytics/internal/events"
	testingpkg "github.com/aristath/mvt-analytics/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUploader struct {
	keys  []string
	sizes []int
	err   error
}

func (u *recordingUploader) Upload(_ context.Context, key string, body io.Reader) error {
	if u.err != nil {
		return u.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	u.keys = append(u.keys, key)
	u.sizes = append(u.sizes, len(data))
	return nil
}

func setupDatabases(t *testing.T) []*database.DB {
	t.Helper()
	analytics, cleanupAnalytics := testingpkg.NewTestDB(t, "analytics")
	t.Cleanup(cleanupAnalytics)
	cache, cleanupCache := testingpkg.NewTestDB(t, "cache")
	t.Cleanup(cleanupCache)
	testingpkg.InsertProjects(t, analytics.Conn())
	return []*database.DB{analytics, cache}
}

func TestBackupJob_Run(t *testing.T) {
	dbs := setupDatabases(t)
	dir := t.TempDir()

	// two older runs and an unrelated directory
	for _, name := range []string{"20240101-030000", "20240102-030000", "notes"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0755))
	}

	bus := events.NewBus(zerolog.Nop())
	var completed []*events.Event
	bus.Subscribe(events.BackupCompleted, func(e *events.Event) { completed = append(completed, e) })

	uploader := &recordingUploader{}
	job := NewBackupJob(dbs, dir, 2, uploader, events.NewManager(bus, zerolog.Nop()), zerolog.Nop())
	clock := testingpkg.NewMockClock(time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC))
	job.now = clock.Now

	require.NoError(t, job.Run())

	runDir := filepath.Join(dir, "20260314-030000")
	for _, name := range []string{"analytics.db", "cache.db"} {
		info, err := os.Stat(filepath.Join(runDir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0))
	}

	assert.Equal(t, []string{"20260314-030000/analytics.db", "20260314-030000/cache.db"}, uploader.keys)
	for _, size := range uploader.sizes {
		assert.Greater(t, size, 0)
	}

	_, err := os.Stat(filepath.Join(dir, "20240101-030000"))
	assert.True(t, os.IsNotExist(err), "oldest run should be pruned")
	assert.DirExists(t, filepath.Join(dir, "20240102-030000"))
	assert.DirExists(t, filepath.Join(dir, "notes"))

	require.Len(t, completed, 1)
	data, ok := completed[0].Data.(*events.BackupCompletedData)
	require.True(t, ok)
	assert.Len(t, data.Files, 2)
	assert.True(t, data.Uploaded)
	assert.Equal(t, 1, data.Pruned)
}

func TestBackupJob_BackupCopyIsReadable(t *testing.T) {
	dbs := setupDatabases(t)
	job := NewBackupJob(dbs[:1], t.TempDir(), 7, nil, nil, zerolog.Nop())

	result, err := job.Backup(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.False(t, result.Uploaded)

	restored, err := database.New(database.Config{Path: result.Files[0], Name: "restored"})
	require.NoError(t, err)
	defer restored.Close()

	var count int
	require.NoError(t, restored.Conn().QueryRow("SELECT COUNT(*) FROM projects").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestBackupJob_RejectsDuplicateRun(t *testing.T) {
	dbs := setupDatabases(t)
	job := NewBackupJob(dbs, t.TempDir(), 7, nil, nil, zerolog.Nop())
	clock := testingpkg.NewMockClock(time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC))
	job.now = clock.Now

	require.NoError(t, job.Run())
	assert.Error(t, job.Run())

	clock.Advance(time.Second)
	assert.NoError(t, job.Run())
}

func TestBackupJob_UploadFailure(t *testing.T) {
	dbs := setupDatabases(t)
	bus := events.NewBus(zerolog.Nop())
	var completed int
	bus.Subscribe(events.BackupCompleted, func(*events.Event) { completed++ })

	uploader := &recordingUploader{err: errors.New("bucket unavailable")}
	job := NewBackupJob(dbs, t.TempDir(), 7, uploader, events.NewManager(bus, zerolog.Nop()), zerolog.Nop())

	err := job.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
	assert.Zero(t, completed)
}

func TestNewBackupJob_MinimumRetention(t *testing.T) {
	job := NewBackupJob(nil, t.TempDir(), 0, nil, nil, zerolog.Nop())
	assert.Equal(t, 1, job.retention)
	assert.Equal(t, "database_backup", job.Name())
}
