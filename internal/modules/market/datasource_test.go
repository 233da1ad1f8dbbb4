package market

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aristath/mvt-analytics/internal/clientdata"
	testingpkg "github.com/aristath/mvt-analytics/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource counts calls and can be switched to fail.
type countingSource struct {
	MockSource
	calls atomic.Int32
	fail  atomic.Bool
}

func (s *countingSource) Demographics(ctx context.Context, location string, radius int) (*Demographics, error) {
	s.calls.Add(1)
	if s.fail.Load() {
		return nil, errors.New("source unavailable")
	}
	return s.MockSource.Demographics(ctx, location, radius)
}

func newCache(t *testing.T) *clientdata.Repository {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "cache")
	t.Cleanup(cleanup)
	return clientdata.NewRepository(db.Conn())
}

func TestCompetitorCount(t *testing.T) {
	assert.Equal(t, 8, CompetitorCount("beauty"))
	assert.Equal(t, 15, CompetitorCount("restaurant_izakaya"))
	assert.Equal(t, 3, CompetitorCount("Fitness"))
	assert.Equal(t, 6, CompetitorCount("retail"))
}

func TestMockSource(t *testing.T) {
	ctx := context.Background()
	var src MockSource

	d, err := src.Demographics(ctx, "Shibuya", 500)
	require.NoError(t, err)
	assert.Equal(t, MockPopulation, d.TotalPopulation)
	assert.Equal(t, 19565, d.Households)
	assert.Equal(t, 8100, d.AgeDistribution["0-19"])
	assert.Equal(t, 29250, d.WorkingPopulation)

	c, err := src.Competitors(ctx, "Shibuya", "beauty", 500)
	require.NoError(t, err)
	require.Len(t, c.Competitors, 8)
	assert.Equal(t, "middle", c.Competitors[0].PriceRange)
	assert.Equal(t, "low", c.Competitors[1].PriceRange)
	assert.Equal(t, 550, c.Competitors[3].EstimatedCustomers)

	e, err := src.Economic(ctx, "Shibuya")
	require.NoError(t, err)
	assert.Equal(t, 0.012, e.GDPGrowth)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.Demographics(canceled, "Shibuya", 500)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedSource_ServesFreshEntries(t *testing.T) {
	inner := &countingSource{}
	src := NewCachedSource(inner, newCache(t), zerolog.Nop())
	ctx := context.Background()

	first, err := src.Demographics(ctx, "Shibuya", 500)
	require.NoError(t, err)
	second, err := src.Demographics(ctx, "  shibuya ", 500)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())

	// a different radius is a different key
	_, err = src.Demographics(ctx, "Shibuya", 800)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedSource_ServesStaleEntryWhenSourceFails(t *testing.T) {
	cache := newCache(t)
	inner := &countingSource{}
	inner.fail.Store(true)
	src := NewCachedSource(inner, cache, zerolog.Nop())

	_, err := src.Demographics(context.Background(), "Shibuya", 500)
	assert.Error(t, err)

	stale := &Demographics{TotalPopulation: 12345}
	key := clientdata.Key(clientdata.DataTypeDemographics, "shibuya", "500")
	require.NoError(t, cache.Store(clientdata.DataTypeDemographics, key, stale, -time.Hour))

	got, err := src.Demographics(context.Background(), "Shibuya", 500)
	require.NoError(t, err)
	assert.Equal(t, 12345, got.TotalPopulation)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedSource_CompetitorsAndEconomic(t *testing.T) {
	src := NewCachedSource(MockSource{}, newCache(t), zerolog.Nop())
	ctx := context.Background()

	c, err := src.Competitors(ctx, "Umeda", "restaurant", 500)
	require.NoError(t, err)
	assert.Equal(t, 15, c.TotalCompetitors)
	again, err := src.Competitors(ctx, "Umeda", "restaurant", 500)
	require.NoError(t, err)
	assert.Equal(t, c, again)

	e, err := src.Economic(ctx, "Umeda")
	require.NoError(t, err)
	assert.Equal(t, "stable", e.LocalIncomeTrend)
}
