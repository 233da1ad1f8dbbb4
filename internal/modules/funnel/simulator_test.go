package funnel

import (
	"errors"
	"testing"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beautyInput() Input {
	return Input{
		TargetMonthlySales: 1_000_000,
		AverageOrderValue:  10_000,
		ConversionRate:     0.03,
		SelectedMedia:      []string{catalog.GoogleAds, catalog.FacebookAds},
		Industry:           "beauty",
		FixedCosts:         200_000,
		VariableCostRate:   0.3,
	}
}

func restaurantInput() Input {
	return Input{
		TargetMonthlySales: 500_000,
		AverageOrderValue:  5_000,
		ConversionRate:     0.05,
		SelectedMedia:      []string{catalog.GoogleAds},
		Industry:           "restaurant",
		VariableCostRate:   0.3,
	}
}

type stubBenchmarks struct {
	stored map[string]catalog.Benchmark
	err    error
}

func (s stubBenchmarks) Get(industry, media string) (*catalog.Benchmark, error) {
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.stored[industry+"/"+media]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func TestSimulate_BeautyCase(t *testing.T) {
	sim := NewSimulator(nil, catalog.New(), zerolog.Nop())

	out, err := sim.Simulate(beautyInput())
	require.NoError(t, err)

	assert.InDelta(t, 100, out.RequiredCustomers, 1e-9)
	assert.InDelta(t, 3333.33, out.RequiredReach, 0.01)
	// 50 customers at 3,000 on Google plus 50 at 2,500 on Facebook
	assert.InDelta(t, 275_000, out.RequiredBudget, 1e-6)
	assert.Equal(t, 8, out.BreakevenMonth)

	require.Len(t, out.Cashflow, HorizonMonths)
	first := out.Cashflow[0]
	assert.Equal(t, 1, first.Month)
	assert.Equal(t, 166_667.0, first.Revenue)
	assert.Equal(t, 275_000.0, first.AdCost)
	assert.Equal(t, 200_000.0, first.FixedCost)
	assert.Equal(t, 50_000.0, first.VariableCost)
	assert.Equal(t, 525_000.0, first.TotalCost)
	assert.Equal(t, -358_333.0, first.MonthlyProfit)
	assert.Equal(t, -358_333.0, first.CumulativeProfit)

	assert.Equal(t, -733_333.0, out.Cashflow[3].CumulativeProfit)
	assert.Equal(t, 50_000.0, out.Cashflow[7].CumulativeProfit)
	assert.Equal(t, 950_000.0, out.Cashflow[11].CumulativeProfit)

	require.Len(t, out.Funnel, 3)
	assert.Equal(t, Stage{Stage: "reach", Count: 3333}, out.Funnel[0])
	assert.Equal(t, Stage{Stage: "clicks", Count: 100}, out.Funnel[1])
	assert.Equal(t, Stage{Stage: "customers", Count: 100}, out.Funnel[2])

	google := out.MediaBreakdown[catalog.GoogleAds]
	assert.InDelta(t, 50, google.Customers, 1e-9)
	assert.InDelta(t, 150_000, google.Budget, 1e-6)
	assert.Equal(t, 0.03, google.CVR)
	facebook := out.MediaBreakdown[catalog.FacebookAds]
	assert.InDelta(t, 125_000, facebook.Budget, 1e-6)
}

func TestSimulate_Summary(t *testing.T) {
	sim := NewSimulator(nil, catalog.New(), zerolog.Nop())

	out, err := sim.Simulate(beautyInput())
	require.NoError(t, err)

	s := out.Summary
	assert.Equal(t, 9_500_000.0, s.TotalRevenue)
	assert.Equal(t, 8_550_000.0, s.TotalCost)
	assert.Equal(t, 950_000.0, s.TotalProfit)
	assert.InDelta(t, 79_166.67, s.AverageProfit, 0.001)
	assert.InDelta(t, 211_789.48, s.ProfitStdDev, 0.01)
	assert.Equal(t, 2.8788, s.ReturnOnAdSpend)
	assert.Equal(t, 8, s.ProfitableMonths)
	assert.True(t, s.BreakevenReached)
}

func TestSimulate_SingleMediumWithoutFixedCosts(t *testing.T) {
	sim := NewSimulator(nil, catalog.New(), zerolog.Nop())

	out, err := sim.Simulate(restaurantInput())
	require.NoError(t, err)
	assert.InDelta(t, 200_000, out.RequiredBudget, 1e-6)
	assert.Equal(t, 6, out.BreakevenMonth)
	assert.Equal(t, 25_000.0, out.Cashflow[5].CumulativeProfit)
}

func TestSimulate_NoBreakevenReportsHorizon(t *testing.T) {
	sim := NewSimulator(nil, catalog.New(), zerolog.Nop())

	in := beautyInput()
	in.FixedCosts = 2_000_000

	out, err := sim.Simulate(in)
	require.NoError(t, err)
	assert.Equal(t, HorizonMonths, out.BreakevenMonth)
	assert.False(t, out.Summary.BreakevenReached)
	assert.Less(t, out.Cashflow[HorizonMonths-1].CumulativeProfit, 0.0)
}

func TestSimulate_StoredBenchmarkOverridesCatalog(t *testing.T) {
	stored := stubBenchmarks{stored: map[string]catalog.Benchmark{
		"beauty/google_ads": {Industry: "beauty", Media: catalog.GoogleAds, AverageCPA: 1000, MedianCPA: 900, AverageCVR: 0.04},
	}}
	sim := NewSimulator(stored, catalog.New(), zerolog.Nop())

	out, err := sim.Simulate(beautyInput())
	require.NoError(t, err)
	assert.InDelta(t, 175_000, out.RequiredBudget, 1e-6)
	assert.Equal(t, 900.0, out.MediaBreakdown[catalog.GoogleAds].MedianCPA)
}

func TestSimulate_FallsBackWhenBenchmarksFail(t *testing.T) {
	sim := NewSimulator(stubBenchmarks{err: errors.New("db down")}, catalog.New(), zerolog.Nop())

	out, err := sim.Simulate(beautyInput())
	require.NoError(t, err)
	assert.InDelta(t, 275_000, out.RequiredBudget, 1e-6)
}

func TestSimulate_UnknownPairUsesGenericBenchmark(t *testing.T) {
	sim := NewSimulator(nil, catalog.New(), zerolog.Nop())

	in := beautyInput()
	in.Industry = "bakery"
	in.SelectedMedia = []string{"youtube_ads", "youtube_ads"}

	out, err := sim.Simulate(in)
	require.NoError(t, err)
	require.Len(t, out.MediaBreakdown, 1)
	assert.InDelta(t, 100*catalog.GenericBenchmark.AverageCPA, out.RequiredBudget, 1e-6)
}

func TestSimulate_Validation(t *testing.T) {
	sim := NewSimulator(nil, catalog.New(), zerolog.Nop())

	tests := []struct {
		name   string
		modify func(*Input)
	}{
		{"zero sales", func(in *Input) { in.TargetMonthlySales = 0 }},
		{"zero order value", func(in *Input) { in.AverageOrderValue = 0 }},
		{"conversion above one", func(in *Input) { in.ConversionRate = 1.5 }},
		{"zero conversion", func(in *Input) { in.ConversionRate = 0 }},
		{"no media", func(in *Input) { in.SelectedMedia = nil }},
		{"blank media", func(in *Input) { in.SelectedMedia = []string{""} }},
		{"no industry", func(in *Input) { in.Industry = " " }},
		{"negative fixed costs", func(in *Input) { in.FixedCosts = -1 }},
		{"variable rate above one", func(in *Input) { in.VariableCostRate = 1.2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := beautyInput()
			tt.modify(&in)
			_, err := sim.Simulate(in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCompare(t *testing.T) {
	sim := NewSimulator(nil, catalog.New(), zerolog.Nop())

	cheaper := beautyInput()
	cheaper.SelectedMedia = []string{catalog.FacebookAds}
	leaner := beautyInput()
	leaner.FixedCosts = 0

	cmp, err := sim.Compare(beautyInput(), map[string]Input{
		"facebook_only": cheaper,
		"no_rent":       leaner,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, cmp.Base.BreakevenMonth)

	fb := cmp.Scenarios["facebook_only"]
	assert.InDelta(t, 250_000, fb.RequiredBudget, 1e-6)
	assert.InDelta(t, -25_000, fb.BudgetDiff, 1e-6)

	noRent := cmp.Scenarios["no_rent"]
	assert.Equal(t, 0.0, noRent.BudgetDiff)
	assert.Less(t, noRent.BreakevenDiff, 0)

	assert.Equal(t, "facebook_only", cmp.BestBudget)
	assert.Equal(t, "no_rent", cmp.BestBreakeven)
}

func TestCompare_TiesGoToFirstName(t *testing.T) {
	sim := NewSimulator(nil, catalog.New(), zerolog.Nop())

	cmp, err := sim.Compare(beautyInput(), map[string]Input{
		"b": beautyInput(),
		"a": beautyInput(),
	})
	require.NoError(t, err)
	assert.Equal(t, "a", cmp.BestBudget)
	assert.Equal(t, "a", cmp.BestBreakeven)
}

func TestCompare_InvalidScenario(t *testing.T) {
	sim := NewSimulator(nil, catalog.New(), zerolog.Nop())

	bad := beautyInput()
	bad.AverageOrderValue = 0
	_, err := sim.Compare(beautyInput(), map[string]Input{"bad": bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
