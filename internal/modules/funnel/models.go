// Package funnel simulates the sales funnel behind a monthly sales target:
// how many customers and how much reach it takes, what the advertising costs
// per medium, and when the business breaks even.
package funnel

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Simulation constants
const (
	// HorizonMonths is the length of the simulated cashflow.
	HorizonMonths = 12
	// RampMonths is the number of months revenue takes to reach the target.
	RampMonths = 6
	// ClickThroughRate converts reach into clicks for the funnel stages.
	ClickThroughRate = 0.03
	// DefaultVariableCostRate applies when a request omits the rate.
	DefaultVariableCostRate = 0.3
)

var (
	// ErrInvalidInput is returned when simulation input fails validation.
	ErrInvalidInput = errors.New("invalid simulation input")
	// ErrNotFound is returned when a stored simulation does not exist.
	ErrNotFound = errors.New("simulation not found")
)

// Input describes the business goal to simulate.
type Input struct {
	TargetMonthlySales float64  `json:"target_monthly_sales"`
	AverageOrderValue  float64  `json:"average_order_value"`
	ConversionRate     float64  `json:"conversion_rate"`
	SelectedMedia      []string `json:"selected_media"`
	Industry           string   `json:"industry"`
	FixedCosts         float64  `json:"fixed_costs"`
	VariableCostRate   float64  `json:"variable_cost_rate"`
}

// Validate returns an ErrInvalidInput-wrapped error listing every problem.
func (in Input) Validate() error {
	var problems []string
	if in.TargetMonthlySales <= 0 {
		problems = append(problems, "target_monthly_sales must be positive")
	}
	if in.AverageOrderValue <= 0 {
		problems = append(problems, "average_order_value must be positive")
	}
	if in.ConversionRate <= 0 || in.ConversionRate > 1 {
		problems = append(problems, "conversion_rate must be in (0, 1]")
	}
	if len(uniqueMedia(in.SelectedMedia)) == 0 {
		problems = append(problems, "selected_media must not be empty")
	}
	if strings.TrimSpace(in.Industry) == "" {
		problems = append(problems, "industry is required")
	}
	if in.FixedCosts < 0 {
		problems = append(problems, "fixed_costs must not be negative")
	}
	if in.VariableCostRate < 0 || in.VariableCostRate > 1 {
		problems = append(problems, "variable_cost_rate must be in [0, 1]")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// CashflowMonth is one month of the simulated cashflow. Amounts are rounded
// to whole currency units.
type CashflowMonth struct {
	Month            int     `json:"month"`
	Revenue          float64 `json:"revenue"`
	AdCost           float64 `json:"ad_cost"`
	FixedCost        float64 `json:"fixed_cost"`
	VariableCost     float64 `json:"variable_cost"`
	TotalCost        float64 `json:"total_cost"`
	MonthlyProfit    float64 `json:"monthly_profit"`
	CumulativeProfit float64 `json:"cumulative_profit"`
}

// Stage is one step of the funnel.
type Stage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// MediaAllocation is the share of the funnel carried by one medium.
type MediaAllocation struct {
	Customers float64 `json:"customers"`
	Budget    float64 `json:"budget"`
	CPA       float64 `json:"cpa"`
	CVR       float64 `json:"cvr"`
	MedianCPA float64 `json:"median_cpa"`
}

// Summary aggregates the cashflow.
type Summary struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalCost        float64 `json:"total_cost"`
	TotalProfit      float64 `json:"total_profit"`
	AverageProfit    float64 `json:"average_monthly_profit"`
	ProfitStdDev     float64 `json:"profit_std_dev"`
	ReturnOnAdSpend  float64 `json:"return_on_ad_spend"`
	ProfitableMonths int     `json:"profitable_months"`
	BreakevenReached bool    `json:"breakeven_reached"`
}

// Output is the result of a simulation.
type Output struct {
	RequiredCustomers float64                    `json:"required_customers"`
	RequiredReach     float64                    `json:"required_reach"`
	RequiredBudget    float64                    `json:"required_budget"`
	BreakevenMonth    int                        `json:"breakeven_months"`
	Cashflow          []CashflowMonth            `json:"monthly_cashflow"`
	Funnel            []Stage                    `json:"funnel_data"`
	MediaBreakdown    map[string]MediaAllocation `json:"media_breakdown"`
	Summary           Summary                    `json:"summary"`
}

// Simulation is a stored simulation run.
type Simulation struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Input     Input     `json:"input"`
	Result    Output    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

// ScenarioResult compares one scenario against the base case.
type ScenarioResult struct {
	RequiredBudget    float64 `json:"required_budget"`
	BreakevenMonth    int     `json:"breakeven_months"`
	RequiredCustomers float64 `json:"required_customers"`
	BudgetDiff        float64 `json:"budget_diff"`
	BreakevenDiff     int     `json:"breakeven_diff"`
}

// Comparison is the outcome of Compare.
type Comparison struct {
	Base          Output                    `json:"base_scenario"`
	Scenarios     map[string]ScenarioResult `json:"scenarios"`
	BestBudget    string                    `json:"best_budget"`
	BestBreakeven string                    `json:"best_breakeven"`
}
