package clientdata

import (
	"testing"
	"time"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobName(t *testing.T) {
	repo, _, _ := setupRepo(t)
	job := NewCleanupJob(repo, nil, zerolog.Nop())

	assert.Equal(t, "cache_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	repo, db, clock := setupRepo(t)

	bus := events.NewBus(zerolog.Nop())
	var cleaned []*events.CacheCleanedData
	bus.Subscribe(events.CacheCleaned, func(e *events.Event) {
		cleaned = append(cleaned, e.Data.(*events.CacheCleanedData))
	})
	job := NewCleanupJob(repo, events.NewManager(bus, zerolog.Nop()), zerolog.Nop())

	require.NoError(t, repo.Store(DataTypeCompetitors, "competitors:old", 1, time.Hour))
	require.NoError(t, repo.Store(DataTypeEconomic, "economic:old", 1, time.Hour))
	clock.Advance(2 * time.Hour)
	require.NoError(t, repo.Store(DataTypeCompetitors, "competitors:new", 1, time.Hour))

	require.NoError(t, job.Run())

	var remaining int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM geographic_cache`).Scan(&remaining))
	assert.Equal(t, 1, remaining)

	require.Len(t, cleaned, 1)
	assert.Equal(t, int64(2), cleaned[0].Removed)
}

func TestCleanupJobRun_EmptyCache(t *testing.T) {
	repo, _, _ := setupRepo(t)
	job := NewCleanupJob(repo, nil, zerolog.Nop())

	assert.NoError(t, job.Run())
}
