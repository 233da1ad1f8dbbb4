package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/mvt-analytics/internal/clientdata"
	"github.com/rs/zerolog"
)

// DataSource provides the raw inputs of a prediction.
type DataSource interface {
	Demographics(ctx context.Context, location string, radius int) (*Demographics, error)
	Competitors(ctx context.Context, location, industry string, radius int) (*Competitors, error)
	Economic(ctx context.Context, location string) (*EconomicIndicators, error)
}

// MockPopulation is the resident count reported by MockSource.
const MockPopulation = 45000

const defaultCompetitorCount = 6

var competitorCounts = map[string]int{
	"beauty":     8,
	"restaurant": 15,
	"healthcare": 5,
	"fitness":    3,
}

// MockSource returns deterministic reference data for any location.
type MockSource struct{}

// Demographics returns a fixed 45,000-resident trade area.
func (MockSource) Demographics(ctx context.Context, location string, radius int) (*Demographics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pop := MockPopulation
	share := func(f float64) int { return int(float64(pop) * f) }
	return &Demographics{
		TotalPopulation: pop,
		Households:      int(float64(pop) / 2.3),
		AgeDistribution: map[string]int{
			"0-19":  share(0.18),
			"20-29": share(0.13),
			"30-39": share(0.16),
			"40-49": share(0.15),
			"50-59": share(0.14),
			"60+":   share(0.24),
		},
		IncomeDistribution: map[string]int{
			"low":    share(0.28),
			"middle": share(0.52),
			"high":   share(0.20),
		},
		WorkingPopulation: share(0.65),
		CommuterRatio:     0.35,
	}, nil
}

// Competitors returns a per-industry-family number of competitors.
func (MockSource) Competitors(ctx context.Context, location, industry string, radius int) (*Competitors, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	count := CompetitorCount(industry)
	out := &Competitors{TotalCompetitors: count, Competitors: make([]CompetitorProfile, count)}
	for i := range out.Competitors {
		priceRange := "middle"
		if i%2 == 1 {
			priceRange = "low"
		}
		out.Competitors[i] = CompetitorProfile{
			Name:               fmt.Sprintf("Competitor %d", i+1),
			Distance:           200 + i*100,
			Rating:             3.2 + float64(i%4)*0.3,
			EstimatedCustomers: 400 + i*50,
			PriceRange:         priceRange,
		}
	}
	return out, nil
}

// Economic returns stable growth indicators.
func (MockSource) Economic(ctx context.Context, location string) (*EconomicIndicators, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &EconomicIndicators{
		GDPGrowth:           0.012,
		EmploymentRate:      0.97,
		ConsumerConfidence:  105.2,
		LocalIncomeTrend:    "stable",
		DevelopmentProjects: 2,
	}, nil
}

// CompetitorCount returns the mock competitor count of an industry,
// matching its family prefix before the default.
func CompetitorCount(industry string) int {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if n, ok := competitorCounts[industry]; ok {
		return n
	}
	if family, _, found := strings.Cut(industry, "_"); found {
		if n, ok := competitorCounts[family]; ok {
			return n
		}
	}
	return defaultCompetitorCount
}

// CachedSource reads through the geographic cache. Fresh entries are served
// directly; on a source failure an expired entry is served instead.
type CachedSource struct {
	source DataSource
	cache  *clientdata.Repository
	log    zerolog.Logger
}

// NewCachedSource wraps source with the geographic cache.
func NewCachedSource(source DataSource, cache *clientdata.Repository, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  cache,
		log:    log.With().Str("component", "market_cache").Logger(),
	}
}

// Demographics implements DataSource.
func (c *CachedSource) Demographics(ctx context.Context, location string, radius int) (*Demographics, error) {
	key := clientdata.Key(clientdata.DataTypeDemographics, normalizeLocation(location), strconv.Itoa(radius))
	return cached(c, ctx, clientdata.DataTypeDemographics, key, func() (*Demographics, error) {
		return c.source.Demographics(ctx, location, radius)
	})
}

// Competitors implements DataSource.
func (c *CachedSource) Competitors(ctx context.Context, location, industry string, radius int) (*Competitors, error) {
	key := clientdata.Key(clientdata.DataTypeCompetitors, normalizeLocation(location), strings.ToLower(industry), strconv.Itoa(radius))
	return cached(c, ctx, clientdata.DataTypeCompetitors, key, func() (*Competitors, error) {
		return c.source.Competitors(ctx, location, industry, radius)
	})
}

// Economic implements DataSource.
func (c *CachedSource) Economic(ctx context.Context, location string) (*EconomicIndicators, error) {
	key := clientdata.Key(clientdata.DataTypeEconomic, normalizeLocation(location))
	return cached(c, ctx, clientdata.DataTypeEconomic, key, func() (*EconomicIndicators, error) {
		return c.source.Economic(ctx, location)
	})
}

func cached[T any](c *CachedSource, ctx context.Context, dataType, key string, fetch func() (*T, error)) (*T, error) {
	var hit T
	found, err := c.cache.GetIfFresh(key, &hit)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	} else if found {
		return &hit, nil
	}

	value, err := fetch()
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		var stale T
		if found, cacheErr := c.cache.Get(key, &stale); cacheErr == nil && found {
			c.log.Warn().Err(err).Str("key", key).Msg("Data source failed, serving stale cache entry")
			return &stale, nil
		}
		return nil, err
	}

	if err := c.cache.Store(dataType, key, value, clientdata.TTLFor(dataType)); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return value, nil
}

func normalizeLocation(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}
