package funnel

import (
	"math"
	"sort"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/pkg/formulas"
	"github.com/rs/zerolog"
)

// BenchmarkLookup returns a stored benchmark, or nil when none is stored.
type BenchmarkLookup interface {
	Get(industry, media string) (*catalog.Benchmark, error)
}

// Simulator runs funnel simulations.
type Simulator struct {
	benchmarks BenchmarkLookup
	catalog    *catalog.Catalog
	log        zerolog.Logger
}

// NewSimulator creates a simulator. benchmarks may be nil, in which case only
// the built-in catalog benchmarks are used.
func NewSimulator(benchmarks BenchmarkLookup, cat *catalog.Catalog, log zerolog.Logger) *Simulator {
	return &Simulator{
		benchmarks: benchmarks,
		catalog:    cat,
		log:        log.With().Str("service", "funnel").Logger(),
	}
}

// Simulate computes the funnel, media costs and 12-month cashflow for in.
func (s *Simulator) Simulate(in Input) (*Output, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	customers := in.TargetMonthlySales / in.AverageOrderValue
	reach := customers / in.ConversionRate

	media := uniqueMedia(in.SelectedMedia)
	perMedia := customers / float64(len(media))
	breakdown := make(map[string]MediaAllocation, len(media))
	var budget float64
	for _, m := range media {
		b := s.benchmark(in.Industry, m)
		cost := perMedia * b.AverageCPA
		budget += cost
		breakdown[m] = MediaAllocation{
			Customers: perMedia,
			Budget:    cost,
			CPA:       b.AverageCPA,
			CVR:       b.AverageCVR,
			MedianCPA: b.MedianCPA,
		}
	}

	cashflow := projectCashflow(in, budget)
	out := &Output{
		RequiredCustomers: customers,
		RequiredReach:     reach,
		RequiredBudget:    budget,
		BreakevenMonth:    breakevenMonth(cashflow),
		Cashflow:          cashflow,
		Funnel: []Stage{
			{Stage: "reach", Count: int(reach)},
			{Stage: "clicks", Count: int(reach * ClickThroughRate)},
			{Stage: "customers", Count: int(customers)},
		},
		MediaBreakdown: breakdown,
	}
	out.Summary = summarize(cashflow, budget)

	s.log.Debug().
		Float64("required_budget", budget).
		Int("breakeven_month", out.BreakevenMonth).
		Msg("Funnel simulated")
	return out, nil
}

// Compare simulates base and every named scenario, and reports which scenario
// needs the smallest budget and which breaks even first. Ties go to the
// alphabetically first name.
func (s *Simulator) Compare(base Input, scenarios map[string]Input) (*Comparison, error) {
	baseOut, err := s.Simulate(base)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	cmp := &Comparison{
		Base:      *baseOut,
		Scenarios: make(map[string]ScenarioResult, len(names)),
	}
	bestBudget, bestBreakeven := math.Inf(1), math.MaxInt
	for _, name := range names {
		out, err := s.Simulate(scenarios[name])
		if err != nil {
			return nil, err
		}
		cmp.Scenarios[name] = ScenarioResult{
			RequiredBudget:    out.RequiredBudget,
			BreakevenMonth:    out.BreakevenMonth,
			RequiredCustomers: out.RequiredCustomers,
			BudgetDiff:        out.RequiredBudget - baseOut.RequiredBudget,
			BreakevenDiff:     out.BreakevenMonth - baseOut.BreakevenMonth,
		}
		if out.RequiredBudget < bestBudget {
			bestBudget = out.RequiredBudget
			cmp.BestBudget = name
		}
		if out.BreakevenMonth < bestBreakeven {
			bestBreakeven = out.BreakevenMonth
			cmp.BestBreakeven = name
		}
	}
	return cmp, nil
}

// benchmark prefers a stored benchmark and falls back to the catalog.
func (s *Simulator) benchmark(industry, media string) catalog.Benchmark {
	if s.benchmarks != nil {
		b, err := s.benchmarks.Get(industry, media)
		if err != nil {
			s.log.Warn().Err(err).Str("industry", industry).Str("media", media).
				Msg("Failed to load stored benchmark, using default")
		} else if b != nil {
			return *b
		}
	}
	return s.catalog.DefaultBenchmark(industry, media)
}

func projectCashflow(in Input, adCost float64) []CashflowMonth {
	months := make([]CashflowMonth, 0, HorizonMonths)
	var cumulative float64
	for m := 1; m <= HorizonMonths; m++ {
		ramp := math.Min(1, float64(m)/RampMonths)
		revenue := in.TargetMonthlySales * ramp
		variable := revenue * in.VariableCostRate
		total := adCost + in.FixedCosts + variable
		profit := revenue - total
		cumulative += profit

		months = append(months, CashflowMonth{
			Month:            m,
			Revenue:          formulas.Round(revenue, 0),
			AdCost:           formulas.Round(adCost, 0),
			FixedCost:        formulas.Round(in.FixedCosts, 0),
			VariableCost:     formulas.Round(variable, 0),
			TotalCost:        formulas.Round(total, 0),
			MonthlyProfit:    formulas.Round(profit, 0),
			CumulativeProfit: formulas.Round(cumulative, 0),
		})
	}
	return months
}

// breakevenMonth is the first month with non-negative cumulative profit, or
// the horizon when that never happens.
func breakevenMonth(cashflow []CashflowMonth) int {
	for _, m := range cashflow {
		if m.CumulativeProfit >= 0 {
			return m.Month
		}
	}
	return HorizonMonths
}

func summarize(cashflow []CashflowMonth, adCost float64) Summary {
	revenue := make([]float64, len(cashflow))
	cost := make([]float64, len(cashflow))
	profit := make([]float64, len(cashflow))
	var sum Summary
	for i, m := range cashflow {
		revenue[i] = m.Revenue
		cost[i] = m.TotalCost
		profit[i] = m.MonthlyProfit
		if m.MonthlyProfit > 0 {
			sum.ProfitableMonths++
		}
		if m.CumulativeProfit >= 0 {
			sum.BreakevenReached = true
		}
	}

	sum.TotalRevenue = formulas.Sum(revenue)
	sum.TotalCost = formulas.Sum(cost)
	sum.TotalProfit = formulas.Sum(profit)
	sum.AverageProfit = formulas.Round(formulas.Mean(profit), 2)
	sum.ProfitStdDev = formulas.Round(formulas.StdDev(profit), 2)
	if totalAd := adCost * float64(len(cashflow)); totalAd > 0 {
		sum.ReturnOnAdSpend = formulas.Round(sum.TotalRevenue/totalAd, 4)
	}
	return sum
}

func uniqueMedia(media []string) []string {
	seen := make(map[string]bool, len(media))
	out := make([]string, 0, len(media))
	for _, m := range media {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
