package market

import (
	"context"
	"fmt"
	"strings"

	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/aristath/mvt-analytics/pkg/formulas"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Optimizer runs budget optimization; satisfied by *optimization.Engine.
type Optimizer interface {
	Optimize(ctx context.Context, constraints optimization.BusinessConstraints, industry string, selected []string) (*optimization.OptimizationResult, error)
}

// ComprehensiveAnalysis merges market, optimization and seasonal outlooks.
type ComprehensiveAnalysis struct {
	MarketPrediction   *Prediction                      `json:"market_prediction"`
	RiskOptimization   *optimization.OptimizationResult `json:"risk_optimization"`
	SeasonalAnalysis   SeasonalAnalysis                 `json:"seasonal_analysis"`
	IntegratedInsights []string                         `json:"integrated_insights"`
	OverallConfidence  float64                          `json:"overall_confidence"`
}

// ComprehensiveAnalyzer runs the three analyses concurrently.
type ComprehensiveAnalyzer struct {
	predictor *Predictor
	optimizer Optimizer
	seasonal  *SeasonalAnalyzer
	log       zerolog.Logger
}

// NewComprehensiveAnalyzer creates a comprehensive analyzer.
func NewComprehensiveAnalyzer(predictor *Predictor, optimizer Optimizer, seasonal *SeasonalAnalyzer, log zerolog.Logger) *ComprehensiveAnalyzer {
	return &ComprehensiveAnalyzer{
		predictor: predictor,
		optimizer: optimizer,
		seasonal:  seasonal,
		log:       log.With().Str("component", "comprehensive_analysis").Logger(),
	}
}

// Analyze runs market prediction, budget optimization and seasonal analysis
// concurrently. The first error (including optimization validation errors)
// cancels the others and is returned.
func (a *ComprehensiveAnalyzer) Analyze(ctx context.Context, profile BusinessProfile, constraints optimization.BusinessConstraints, selected []string) (*ComprehensiveAnalysis, error) {
	profile = profile.WithDefaults()
	out := &ComprehensiveAnalysis{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := a.predictor.Predict(gctx, profile)
		if err != nil {
			return fmt.Errorf("failed to predict market: %w", err)
		}
		out.MarketPrediction = p
		return nil
	})
	g.Go(func() error {
		r, err := a.optimizer.Optimize(gctx, constraints, profile.Industry, selected)
		if err != nil {
			return fmt.Errorf("failed to optimize budget: %w", err)
		}
		out.RiskOptimization = r
		return nil
	})
	g.Go(func() error {
		out.SeasonalAnalysis = a.seasonal.Analyze(profile.Industry, DefaultMonthsAhead)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.OverallConfidence = formulas.Round((out.MarketPrediction.Confidence+out.RiskOptimization.Confidence)/2, 2)
	out.IntegratedInsights = IntegratedInsights(out.MarketPrediction, out.RiskOptimization, out.SeasonalAnalysis)

	a.log.Info().
		Str("industry", profile.Industry).
		Float64("overall_confidence", out.OverallConfidence).
		Msg("Comprehensive analysis completed")
	return out, nil
}

// IntegratedInsights cross-checks the market forecast against the marketing plan.
func IntegratedInsights(market *Prediction, plan *optimization.OptimizationResult, seasonal SeasonalAnalysis) []string {
	insights := []string{}

	demand := float64(market.MonthlyDemand)
	customers := float64(plan.ExpectedCustomers)
	switch {
	case customers > demand*0.8:
		insights = append(insights, fmt.Sprintf(
			"Marketing target of %d customers is well matched to market demand of %d",
			plan.ExpectedCustomers, market.MonthlyDemand))
	case customers < demand*0.3:
		insights = append(insights, fmt.Sprintf(
			"Marketing target is conservative against market demand of %d: room to grow",
			market.MonthlyDemand))
	}

	switch {
	case plan.RiskScore < 0.3 && plan.ExpectedROI > 200:
		insights = append(insights, "Low risk and high return: an ideal channel portfolio")
	case plan.RiskScore > 0.6:
		insights = append(insights, "Risk level is elevated: invest in stages")
	}

	if len(seasonal.PeakMonths) > 0 {
		insights = append(insights, fmt.Sprintf(
			"%s are peak months: consider raising the budget for them",
			strings.Join(seasonal.PeakMonths, ", ")))
	}

	overall := (market.Confidence + plan.Confidence) / 2
	switch {
	case overall > 0.8:
		insights = append(insights, "High-confidence results: conditions suit executing the plan")
	case overall < 0.5:
		insights = append(insights, "Collect more data to improve forecast accuracy")
	}

	return insights
}
