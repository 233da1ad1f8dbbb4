package optimization

import (
	"sort"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
)

// DefaultTimeHorizon is used when constraints leave the horizon unset.
const DefaultTimeHorizon = 12

// MaxProjectionMonths caps the projected horizon.
const MaxProjectionMonths = 12

// BusinessConstraints are the caller's budget and goal parameters.
type BusinessConstraints struct {
	TotalBudget        int64   `json:"total_budget"`
	MonthlyBudgetLimit int64   `json:"monthly_budget_limit"`
	MinMonthlyProfit   int64   `json:"min_monthly_profit"`
	MaxRiskTolerance   float64 `json:"max_risk_tolerance"`
	TargetCustomers    int64   `json:"target_customers"`
	TargetROI          float64 `json:"target_roi"`   // percent
	TimeHorizon        int     `json:"time_horizon"` // months
}

// WithDefaults fills unset optional fields.
func (c BusinessConstraints) WithDefaults() BusinessConstraints {
	if c.TimeHorizon == 0 {
		c.TimeHorizon = DefaultTimeHorizon
	}
	return c
}

// Allocation maps channel id to allocated budget, setup cost included.
type Allocation map[string]int64

// Total sums the allocated budgets.
func (a Allocation) Total() int64 {
	var total int64
	for _, v := range a {
		total += v
	}
	return total
}

// Channels returns the allocated channel ids, sorted.
func (a Allocation) Channels() []string {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RankedChannel is a channel with its computed efficiency.
type RankedChannel struct {
	ChannelID  string  `json:"channel_id"`
	Efficiency float64 `json:"efficiency"`
}

// AllocationPlan is the Allocator output.
type AllocationPlan struct {
	Allocation          Allocation      `json:"allocation"`
	Ranking             []RankedChannel `json:"ranking"`
	ConcentrationFactor float64         `json:"concentration_factor"`
	SkippedChannels     []string        `json:"skipped_channels,omitempty"`
	// Overshoot is how far the allocation exceeds the total budget once setup
	// costs are added back. Zero when within budget.
	Overshoot int64 `json:"budget_overshoot"`
}

// MonthlyProjection is one projected month.
type MonthlyProjection struct {
	Month            int     `json:"month"`
	Customers        int64   `json:"customers"`
	Revenue          int64   `json:"revenue"`
	Cost             int64   `json:"cost"`
	Profit           int64   `json:"profit"`
	ROI              float64 `json:"roi"`
	CumulativeProfit int64   `json:"cumulative_profit"`
}

// ProjectionTotals aggregates a projection.
type ProjectionTotals struct {
	Customers      int64   `json:"total_customers"`
	Revenue        int64   `json:"total_revenue"`
	Cost           int64   `json:"total_cost"`
	ROI            float64 `json:"total_roi"`
	BreakevenMonth int     `json:"breakeven_month"`
}

// Projection is the Projector output.
type Projection struct {
	Monthly    []MonthlyProjection `json:"monthly"`
	Totals     ProjectionTotals    `json:"totals"`
	Confidence float64             `json:"confidence"`
}

// RiskLevel is the categorical portfolio risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ChannelRisk is the risk detail of one allocated channel.
type ChannelRisk struct {
	RiskScore   float64  `json:"risk_score"`
	Weight      float64  `json:"weight"`
	RiskFactors []string `json:"risk_factors"`
}

// RiskAssessment is the Risk Scorer output.
type RiskAssessment struct {
	OverallRisk        float64                `json:"overall_risk"`
	PortfolioRisk      float64                `json:"portfolio_risk"`
	ConcentrationIndex float64                `json:"concentration_index"`
	ConcentrationRisk  float64                `json:"concentration_risk"`
	RiskLevel          RiskLevel              `json:"risk_level"`
	ChannelRisks       map[string]ChannelRisk `json:"channel_risks"`
	MitigationPlan     []string               `json:"mitigation_plan"`
}

// Scenario is an alternative plan derived from scaled constraints.
type Scenario struct {
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	Constraints       BusinessConstraints `json:"constraints"`
	Channels          []string            `json:"channels"`
	Allocation        Allocation          `json:"allocation"`
	ExpectedROI       float64             `json:"expected_roi"`
	ExpectedCustomers int64               `json:"expected_customers"`
	RiskScore         float64             `json:"risk_score"`
	RiskLevel         RiskLevel           `json:"risk_level,omitempty"`
	Fallback          bool                `json:"fallback,omitempty"`
	Error             string              `json:"error,omitempty"`
}

// OptimizationResult is the full engine output, persisted verbatim as JSON.
type OptimizationResult struct {
	Industry              string              `json:"industry"`
	SelectedChannels      []string            `json:"selected_channels"`
	RecommendedAllocation Allocation          `json:"recommended_allocation"`
	SkippedChannels       []string            `json:"skipped_channels,omitempty"`
	BudgetOvershoot       int64               `json:"budget_overshoot"`
	ExpectedROI           float64             `json:"expected_roi"`
	ExpectedCustomers     int64               `json:"expected_customers"`
	ExpectedRevenue       int64               `json:"expected_revenue"`
	BreakevenMonth        int                 `json:"breakeven_month"`
	RiskScore             float64             `json:"risk_score"`
	RiskLevel             RiskLevel           `json:"risk_level"`
	Confidence            float64             `json:"confidence"`
	MonthlyProjections    []MonthlyProjection `json:"monthly_projections"`
	RiskMitigationPlan    []string            `json:"risk_mitigation_plan"`
	AlternativeScenarios  []Scenario          `json:"alternative_scenarios"`
	RiskAssessment        *RiskAssessment     `json:"risk_assessment,omitempty"`
	Fallback              bool                `json:"fallback"`
}

// ChannelCatalog is the reference data the engine reads.
type ChannelCatalog interface {
	ChannelIDs() []string
	Channel(id string) (catalog.MarketingChannel, bool)
	Resolve(ids []string) []catalog.MarketingChannel
	Multiplier(industry, channelID string) float64
	ChannelSeasonal(month int, channelID string) float64
	BaseRisk(channelID string) float64
}
