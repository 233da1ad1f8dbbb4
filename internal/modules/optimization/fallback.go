package optimization

import "github.com/aristath/mvt-analytics/internal/modules/catalog"

// FallbackResult is the fixed degraded-mode plan returned instead of a
// validation error when the fallback policy is enabled.
func FallbackResult(industry string, selected []string) *OptimizationResult {
	monthly := make([]MonthlyProjection, 0, MaxProjectionMonths)
	for month := 1; month <= MaxProjectionMonths; month++ {
		monthly = append(monthly, MonthlyProjection{
			Month:            month,
			Customers:        20,
			Revenue:          100000,
			Cost:             40000,
			Profit:           60000,
			ROI:              150,
			CumulativeProfit: int64(month) * 60000,
		})
	}

	return &OptimizationResult{
		Industry:         industry,
		SelectedChannels: selected,
		RecommendedAllocation: Allocation{
			catalog.GoogleAds:      300000,
			catalog.LocalPromotion: 200000,
		},
		ExpectedROI:        180.0,
		ExpectedCustomers:  250,
		ExpectedRevenue:    1250000,
		BreakevenMonth:     1,
		RiskScore:          0.4,
		RiskLevel:          RiskLevelFor(0.4),
		Confidence:         0.3,
		MonthlyProjections: monthly,
		RiskMitigationPlan: []string{
			"Simplified estimate due to insufficient data",
			"Re-run the detailed analysis with valid constraints",
		},
		AlternativeScenarios: []Scenario{},
		Fallback:             true,
	}
}
