package optimization

import (
	"github.com/aristath/mvt-analytics/internal/modules/catalog"
)

// flatCatalog removes seasonality from the built-in catalog.
type flatCatalog struct {
	*catalog.Catalog
}

func (flatCatalog) ChannelSeasonal(int, string) float64 { return 1.0 }

func goldenConstraints() BusinessConstraints {
	return BusinessConstraints{
		TotalBudget:        2000000,
		MonthlyBudgetLimit: 200000,
		MaxRiskTolerance:   0.5,
		TargetCustomers:    400,
		TargetROI:          200,
		TimeHorizon:        12,
	}
}

var goldenChannels = []string{
	catalog.GoogleAds,
	catalog.FacebookAds,
	catalog.InstagramAds,
	catalog.LocalPromotion,
}
