package optimization

import (
	"errors"
	"testing"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcentrationFactor(t *testing.T) {
	tests := []struct {
		tolerance float64
		want      float64
	}{
		{1.0, 0.8},
		{0.71, 0.8},
		{0.7, 0.6},
		{0.41, 0.6},
		{0.4, 0.4},
		{0.0, 0.4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConcentrationFactor(tt.tolerance), "tolerance %v", tt.tolerance)
	}
}

func TestEfficiency(t *testing.T) {
	c := catalog.New()
	a := NewAllocator(c)

	tests := []struct {
		channel  string
		industry string
		want     float64
	}{
		{catalog.GoogleAds, "beauty", 0.0075},
		{catalog.FacebookAds, "beauty", 0.009625},
		{catalog.InstagramAds, "beauty", 0.0104},
		{catalog.LocalPromotion, "beauty", 0.088},
		{catalog.SEOContent, "beauty", 0.0175},
		{catalog.SEOContent, "restaurant", 0.01575},
	}
	for _, tt := range tests {
		t.Run(tt.channel+"/"+tt.industry, func(t *testing.T) {
			ch, ok := c.Channel(tt.channel)
			require.True(t, ok)
			assert.InDelta(t, tt.want, a.Efficiency(ch, tt.industry), 1e-12)
		})
	}
}

func TestRank_DescendingByEfficiency(t *testing.T) {
	c := catalog.New()
	a := NewAllocator(c)

	ranked := a.Rank(c.Resolve(goldenChannels), "beauty")

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ChannelID
	}
	assert.Equal(t, []string{
		catalog.LocalPromotion,
		catalog.InstagramAds,
		catalog.FacebookAds,
		catalog.GoogleAds,
	}, ids)
}

func TestRank_TiesKeepCatalogOrder(t *testing.T) {
	c, err := catalog.New().WithOverrides(catalog.Overrides{
		Multipliers: map[string]map[string]float64{
			"beauty": {catalog.FacebookAds: 1.0, catalog.InstagramAds: 1.0},
		},
		Channels: map[string]catalog.ChannelOverride{
			catalog.InstagramAds: {ExpectedCPC: ptr(80.0), ExpectedCTR: ptr(0.035), ExpectedCVR: ptr(0.02)},
		},
	})
	require.NoError(t, err)
	a := NewAllocator(c)

	ranked := a.Rank(c.Resolve([]string{catalog.InstagramAds, catalog.FacebookAds}), "beauty")
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Efficiency, ranked[1].Efficiency)
	assert.Equal(t, catalog.FacebookAds, ranked[0].ChannelID)
	assert.Equal(t, catalog.InstagramAds, ranked[1].ChannelID)
}

func TestAllocate_Golden(t *testing.T) {
	c := catalog.New()
	a := NewAllocator(c)

	plan, err := a.Allocate(goldenConstraints(), c.Resolve(goldenChannels), "beauty")
	require.NoError(t, err)

	assert.Equal(t, Allocation{
		catalog.LocalPromotion: 320000,
		catalog.InstagramAds:   553333,
		catalog.FacebookAds:    553333,
		catalog.GoogleAds:      573333,
	}, plan.Allocation)
	assert.Equal(t, int64(1999999), plan.Allocation.Total())
	assert.Equal(t, 0.6, plan.ConcentrationFactor)
	assert.Zero(t, plan.Overshoot)
	assert.Empty(t, plan.SkippedChannels)
}

func TestAllocate_SetupCostAddBackMayExceedTotalBudget(t *testing.T) {
	c := catalog.New()
	a := NewAllocator(c)

	constraints := BusinessConstraints{
		TotalBudget:        30000,
		MonthlyBudgetLimit: 10000,
		MaxRiskTolerance:   0.5,
		TargetROI:          100,
		TimeHorizon:        12,
	}

	plan, err := a.Allocate(constraints, c.Resolve([]string{catalog.GoogleAds}), "beauty")
	require.NoError(t, err)

	// 30000 - 50000 setup leaves -20000; the primary is clamped up to its
	// 30000 minimum and the setup cost is added back on top.
	assert.Equal(t, Allocation{catalog.GoogleAds: 80000}, plan.Allocation)
	assert.Equal(t, int64(50000), plan.Overshoot)
}

func TestAllocate_ChannelBelowMinimumIsSkipped(t *testing.T) {
	c := catalog.New()
	a := NewAllocator(c)

	constraints := BusinessConstraints{
		TotalBudget:        600000,
		MonthlyBudgetLimit: 100000,
		MaxRiskTolerance:   0.9,
		TargetROI:          150,
		TimeHorizon:        12,
	}

	// 380000 left after setup; local is capped at 300000 and the remaining
	// 80000 is under seo's 100000 minimum
	plan, err := a.Allocate(constraints, c.Resolve([]string{catalog.SEOContent, catalog.LocalPromotion}), "beauty")
	require.NoError(t, err)

	assert.Equal(t, Allocation{catalog.LocalPromotion: 320000}, plan.Allocation)
	assert.Equal(t, []string{catalog.SEOContent}, plan.SkippedChannels)
}

func TestAllocate_RespectsChannelBounds(t *testing.T) {
	c := catalog.New()
	a := NewAllocator(c)

	constraints := goldenConstraints()
	constraints.TotalBudget = 10000000
	constraints.MaxRiskTolerance = 0.9

	channels := c.Resolve(c.ChannelIDs())
	plan, err := a.Allocate(constraints, channels, "beauty")
	require.NoError(t, err)

	for _, ch := range channels {
		budget, ok := plan.Allocation[ch.ID]
		if !ok {
			continue
		}
		spend := budget - ch.SetupCost
		assert.GreaterOrEqual(t, spend, ch.MinBudget, ch.ID)
		assert.LessOrEqual(t, spend, ch.MaxBudget, ch.ID)
	}
}

func TestValidate(t *testing.T) {
	c := catalog.New()
	a := NewAllocator(c)
	channels := c.Resolve(goldenChannels)

	tests := []struct {
		name   string
		mutate func(*BusinessConstraints)
		chans  []catalog.MarketingChannel
		want   string
	}{
		{"valid", func(*BusinessConstraints) {}, channels, ""},
		{"no channels", func(*BusinessConstraints) {}, nil, "no known channels"},
		{"zero budget", func(b *BusinessConstraints) { b.TotalBudget = 0 }, channels, "total_budget must be positive"},
		{"zero monthly limit", func(b *BusinessConstraints) { b.MonthlyBudgetLimit = 0 }, channels, "monthly_budget_limit"},
		{"tolerance above one", func(b *BusinessConstraints) { b.MaxRiskTolerance = 1.5 }, channels, "max_risk_tolerance"},
		{"negative tolerance", func(b *BusinessConstraints) { b.MaxRiskTolerance = -0.1 }, channels, "max_risk_tolerance"},
		{"zero horizon", func(b *BusinessConstraints) { b.TimeHorizon = 0 }, channels, "time_horizon"},
		{"negative customers", func(b *BusinessConstraints) { b.TargetCustomers = -1 }, channels, "target_customers"},
		{"zero roi", func(b *BusinessConstraints) { b.TargetROI = 0 }, channels, "target_roi"},
		{"below channel minimums", func(b *BusinessConstraints) { b.TotalBudget = 100000 }, channels, "below the 120000 minimum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraints := goldenConstraints()
			tt.mutate(&constraints)

			err := a.Validate(constraints, tt.chans)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConstraintValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	a := NewAllocator(catalog.New())

	err := a.Validate(BusinessConstraints{MaxRiskTolerance: 2}, nil)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.GreaterOrEqual(t, len(verr.Problems), 5)
}

func ptr[T any](v T) *T { return &v }
