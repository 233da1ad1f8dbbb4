package optimization

import (
	"errors"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
)

// Scenario names
const (
	ScenarioConservative = "conservative"
	ScenarioAggressive   = "aggressive"
)

// ScenarioSpec scales the base constraints into an alternative plan.
type ScenarioSpec struct {
	Name           string
	Description    string
	BudgetScale    float64
	LimitScale     float64
	RiskTolerance  float64
	CustomersScale float64
	ROIScale       float64
	Channels       []string // nil means every catalog channel
}

// DefaultScenarios are the two alternatives produced for every optimization.
var DefaultScenarios = []ScenarioSpec{
	{
		Name:           ScenarioConservative,
		Description:    "Minimizes risk with a smaller budget on two low-risk channels",
		BudgetScale:    0.7,
		LimitScale:     1.0,
		RiskTolerance:  0.3,
		CustomersScale: 0.8,
		ROIScale:       0.8,
		Channels:       []string{catalog.GoogleAds, catalog.LocalPromotion},
	},
	{
		Name:           ScenarioAggressive,
		Description:    "Targets higher returns with a larger budget across every channel",
		BudgetScale:    1.2,
		LimitScale:     1.3,
		RiskTolerance:  0.8,
		CustomersScale: 1.3,
		ROIScale:       1.2,
	},
}

// Apply derives the scenario constraints from the base constraints.
func (s ScenarioSpec) Apply(base BusinessConstraints) BusinessConstraints {
	return BusinessConstraints{
		TotalBudget:        int64(float64(base.TotalBudget) * s.BudgetScale),
		MonthlyBudgetLimit: int64(float64(base.MonthlyBudgetLimit) * s.LimitScale),
		MinMonthlyProfit:   base.MinMonthlyProfit,
		MaxRiskTolerance:   s.RiskTolerance,
		TargetCustomers:    int64(float64(base.TargetCustomers) * s.CustomersScale),
		TargetROI:          base.TargetROI * s.ROIScale,
		TimeHorizon:        base.TimeHorizon,
	}
}

// ScenarioGenerator runs the allocate/project/score pipeline for each
// scenario. Scenario runs never produce nested scenarios.
type ScenarioGenerator struct {
	catalog   ChannelCatalog
	allocator *Allocator
	projector *Projector
	scorer    *RiskScorer
	specs     []ScenarioSpec
}

// NewScenarioGenerator creates a generator using DefaultScenarios.
func NewScenarioGenerator(c ChannelCatalog, allocator *Allocator, projector *Projector, scorer *RiskScorer) *ScenarioGenerator {
	return &ScenarioGenerator{
		catalog:   c,
		allocator: allocator,
		projector: projector,
		scorer:    scorer,
		specs:     DefaultScenarios,
	}
}

// Generate evaluates every scenario. A scenario whose constraints fail
// validation is reported with Error set, or with the fallback plan when
// useFallback is true.
func (g *ScenarioGenerator) Generate(base BusinessConstraints, industry string, useFallback bool) []Scenario {
	scenarios := make([]Scenario, 0, len(g.specs))
	for _, spec := range g.specs {
		scenarios = append(scenarios, g.run(spec, base, industry, useFallback))
	}
	return scenarios
}

func (g *ScenarioGenerator) run(spec ScenarioSpec, base BusinessConstraints, industry string, useFallback bool) Scenario {
	constraints := spec.Apply(base)
	channelIDs := spec.Channels
	if channelIDs == nil {
		channelIDs = g.catalog.ChannelIDs()
	}

	scenario := Scenario{
		Name:        spec.Name,
		Description: spec.Description,
		Constraints: constraints,
		Channels:    channelIDs,
	}

	plan, err := g.allocator.Allocate(constraints, g.catalog.Resolve(channelIDs), industry)
	if err != nil {
		if useFallback && errors.Is(err, ErrConstraintValidation) {
			fb := FallbackResult(industry, channelIDs)
			scenario.Allocation = fb.RecommendedAllocation
			scenario.ExpectedROI = fb.ExpectedROI
			scenario.ExpectedCustomers = fb.ExpectedCustomers
			scenario.RiskScore = fb.RiskScore
			scenario.RiskLevel = fb.RiskLevel
			scenario.Fallback = true
			return scenario
		}
		scenario.Error = err.Error()
		return scenario
	}

	projection := g.projector.Project(plan.Allocation, constraints)
	risk := g.scorer.Assess(plan.Allocation, constraints)

	scenario.Allocation = plan.Allocation
	scenario.ExpectedROI = projection.Totals.ROI
	scenario.ExpectedCustomers = projection.Totals.Customers
	scenario.RiskScore = risk.OverallRisk
	scenario.RiskLevel = risk.RiskLevel
	return scenario
}
