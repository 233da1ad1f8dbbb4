package optimization

import (
	"context"
	"errors"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/rs/zerolog"
)

// DefaultChannels are used when the caller selects none.
var DefaultChannels = []string{catalog.GoogleAds, catalog.FacebookAds, catalog.LocalPromotion}

// Options configures the Engine.
type Options struct {
	// FallbackOnInvalid returns FallbackResult instead of a validation error.
	FallbackOnInvalid bool
}

// Engine runs the full risk-aware optimization: allocation, projection,
// risk assessment and alternative scenarios.
type Engine struct {
	catalog   ChannelCatalog
	allocator *Allocator
	projector *Projector
	scorer    *RiskScorer
	scenarios *ScenarioGenerator
	opts      Options
	log       zerolog.Logger
}

// NewEngine creates an engine over the given catalog.
func NewEngine(c ChannelCatalog, opts Options, log zerolog.Logger) *Engine {
	allocator := NewAllocator(c)
	projector := NewProjector(c)
	scorer := NewRiskScorer(c)
	return &Engine{
		catalog:   c,
		allocator: allocator,
		projector: projector,
		scorer:    scorer,
		scenarios: NewScenarioGenerator(c, allocator, projector, scorer),
		opts:      opts,
		log:       log.With().Str("component", "optimization_engine").Logger(),
	}
}

// Optimize computes the recommended allocation for the constraints.
// Unknown channel ids in selected are ignored; an empty selection uses
// DefaultChannels.
func (e *Engine) Optimize(ctx context.Context, constraints BusinessConstraints, industry string, selected []string) (*OptimizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	constraints = constraints.WithDefaults()
	if len(selected) == 0 {
		selected = DefaultChannels
	}
	channels := e.catalog.Resolve(selected)
	resolved := make([]string, len(channels))
	for i, ch := range channels {
		resolved[i] = ch.ID
	}

	plan, err := e.allocator.Allocate(constraints, channels, industry)
	if err != nil {
		if e.opts.FallbackOnInvalid && errors.Is(err, ErrConstraintValidation) {
			e.log.Warn().Err(err).Str("industry", industry).Msg("Constraints invalid, returning fallback plan")
			return FallbackResult(industry, resolved), nil
		}
		return nil, err
	}

	if plan.Overshoot > 0 {
		e.log.Warn().
			Int64("total_budget", constraints.TotalBudget).
			Int64("allocated", plan.Allocation.Total()).
			Int64("overshoot", plan.Overshoot).
			Msg("Allocation exceeds total budget after setup costs")
	}

	projection := e.projector.Project(plan.Allocation, constraints)
	risk := e.scorer.Assess(plan.Allocation, constraints)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scenarios := e.scenarios.Generate(constraints, industry, e.opts.FallbackOnInvalid)

	e.log.Debug().
		Str("industry", industry).
		Int("channels", len(plan.Allocation)).
		Float64("roi", projection.Totals.ROI).
		Float64("risk", risk.OverallRisk).
		Msg("Optimization complete")

	return &OptimizationResult{
		Industry:              industry,
		SelectedChannels:      resolved,
		RecommendedAllocation: plan.Allocation,
		SkippedChannels:       plan.SkippedChannels,
		BudgetOvershoot:       plan.Overshoot,
		ExpectedROI:           projection.Totals.ROI,
		ExpectedCustomers:     projection.Totals.Customers,
		ExpectedRevenue:       projection.Totals.Revenue,
		BreakevenMonth:        projection.Totals.BreakevenMonth,
		RiskScore:             risk.OverallRisk,
		RiskLevel:             risk.RiskLevel,
		Confidence:            projection.Confidence,
		MonthlyProjections:    projection.Monthly,
		RiskMitigationPlan:    risk.MitigationPlan,
		AlternativeScenarios:  scenarios,
		RiskAssessment:        &risk,
	}, nil
}

// Allocate exposes the allocation step alone.
func (e *Engine) Allocate(constraints BusinessConstraints, industry string, selected []string) (*AllocationPlan, error) {
	return e.allocator.Allocate(constraints.WithDefaults(), e.catalog.Resolve(selected), industry)
}

// Project projects an explicit allocation.
func (e *Engine) Project(allocation Allocation, constraints BusinessConstraints) Projection {
	return e.projector.Project(allocation, constraints)
}

// Assess scores an explicit allocation.
func (e *Engine) Assess(allocation Allocation, constraints BusinessConstraints) RiskAssessment {
	return e.scorer.Assess(allocation, constraints)
}
