package market

import (
	"context"
	"testing"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOptimizer struct {
	result *optimization.OptimizationResult
	err    error
}

func (s stubOptimizer) Optimize(ctx context.Context, _ optimization.BusinessConstraints, _ string, _ []string) (*optimization.OptimizationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newComprehensive(opt Optimizer) *ComprehensiveAnalyzer {
	cat := catalog.New()
	return NewComprehensiveAnalyzer(
		NewPredictor(MockSource{}, cat, zerolog.Nop()),
		opt,
		novemberAnalyzer(),
		zerolog.Nop(),
	)
}

func TestComprehensive_MergesResults(t *testing.T) {
	plan := &optimization.OptimizationResult{ExpectedCustomers: 20, ExpectedROI: 900, RiskScore: 0.44, Confidence: 0.7}
	a := newComprehensive(stubOptimizer{result: plan})

	got, err := a.Analyze(context.Background(), beautyProfile(), optimization.BusinessConstraints{}, nil)
	require.NoError(t, err)

	assert.Same(t, plan, got.RiskOptimization)
	assert.Equal(t, 2037, got.MarketPrediction.MonthlyDemand)
	assert.Len(t, got.SeasonalAnalysis.Trends, 12)
	assert.Equal(t, 0.75, got.OverallConfidence)
	assert.Equal(t, []string{
		"Marketing target is conservative against market demand of 2037: room to grow",
		"March, December are peak months: consider raising the budget for them",
	}, got.IntegratedInsights)
}

func TestComprehensive_OptimizationErrorIsReturned(t *testing.T) {
	verr := &optimization.ValidationError{Problems: []string{"total_budget is required"}}
	a := newComprehensive(stubOptimizer{err: verr})

	_, err := a.Analyze(context.Background(), beautyProfile(), optimization.BusinessConstraints{}, nil)
	require.Error(t, err)

	var target *optimization.ValidationError
	assert.ErrorAs(t, err, &target)
	assert.ErrorIs(t, err, optimization.ErrConstraintValidation)
}

func TestComprehensive_WithEngine(t *testing.T) {
	engine := optimization.NewEngine(catalog.New(), optimization.Options{}, zerolog.Nop())
	a := newComprehensive(engine)

	constraints := optimization.BusinessConstraints{
		TotalBudget:        2000000,
		MonthlyBudgetLimit: 200000,
		MaxRiskTolerance:   0.5,
		TargetCustomers:    400,
		TargetROI:          200,
		TimeHorizon:        12,
	}
	got, err := a.Analyze(context.Background(), beautyProfile(), constraints, nil)
	require.NoError(t, err)
	require.NotNil(t, got.RiskOptimization)
	assert.Equal(t, "beauty", got.RiskOptimization.Industry)
	assert.NotEmpty(t, got.IntegratedInsights)
}

func TestIntegratedInsights(t *testing.T) {
	market := &Prediction{MonthlyDemand: 100, Confidence: 0.9}
	seasonal := SeasonalAnalysis{}

	matched := IntegratedInsights(market, &optimization.OptimizationResult{ExpectedCustomers: 90, RiskScore: 0.2, ExpectedROI: 250, Confidence: 0.9}, seasonal)
	assert.Equal(t, []string{
		"Marketing target of 90 customers is well matched to market demand of 100",
		"Low risk and high return: an ideal channel portfolio",
		"High-confidence results: conditions suit executing the plan",
	}, matched)

	risky := IntegratedInsights(&Prediction{MonthlyDemand: 100, Confidence: 0.3}, &optimization.OptimizationResult{ExpectedCustomers: 50, RiskScore: 0.7, Confidence: 0.3}, seasonal)
	assert.Equal(t, []string{
		"Risk level is elevated: invest in stages",
		"Collect more data to improve forecast accuracy",
	}, risky)
}
