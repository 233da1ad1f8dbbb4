package analyses

import (
	"fmt"
	"math"
	"strings"

	"github.com/aristath/mvt-analytics/pkg/formulas"
)

// BasePopulation is the resident count of a 1 km trade area.
const BasePopulation = 50000

const (
	householdSize        = 2.3
	baseCompetitors      = 12
	baseAverageDistance  = 350
	listedCompetitors    = 5
	defaultDemandRate    = 0.04
	addressableShare     = 0.75
	demandSeasonalFactor = 1.2
	demandGrowthRate     = 0.05
	marketSaturation     = 0.65
)

// demandRates is the share of residents buying from the industry each month.
var demandRates = map[string]float64{
	"beauty":     0.03,
	"restaurant": 0.08,
	"retail":     0.05,
	"healthcare": 0.025,
}

var ageShares = map[string]float64{
	"20-29": 0.15,
	"30-39": 0.18,
	"40-49": 0.16,
	"50-59": 0.14,
	"60+":   0.25,
}

var incomeShares = map[string]float64{
	"low":    0.25,
	"middle": 0.55,
	"high":   0.20,
}

// Population returns the resident count for a trade-area radius.
// Radii at or below zero count as 1 km.
func Population(radiusKm float64) int {
	if radiusKm <= 0 {
		radiusKm = 1
	}
	return int(math.Round(BasePopulation * radiusKm))
}

// DemandRate returns the monthly demand rate of an industry, matching its
// family prefix ("beauty_salon" uses "beauty") before the default.
func DemandRate(industry string) float64 {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if r, ok := demandRates[industry]; ok {
		return r
	}
	if family, _, found := strings.Cut(industry, "_"); found {
		if r, ok := demandRates[family]; ok {
			return r
		}
	}
	return defaultDemandRate
}

// Generate computes the results of an analysis. Results are deterministic
// for a given type, industry and radius.
func Generate(t Type, industry string, radiusKm float64) (Results, error) {
	population := Population(radiusKm)
	scale := float64(population) / BasePopulation

	switch t {
	case TypeDemographics:
		return Results{PopulationData: &PopulationData{
			TotalPopulation: population,
			Households:      int(float64(population) / householdSize),
			AgeGroups:       split(population, ageShares),
			IncomeBrackets:  split(population, incomeShares),
		}}, nil

	case TypeCompetitors:
		total := int(math.Max(1, math.Round(baseCompetitors*scale)))
		competitors := make([]Competitor, listedCompetitors)
		for i := range competitors {
			competitors[i] = Competitor{
				Name:     fmt.Sprintf("Competitor %d", i+1),
				Distance: int(math.Round(float64(200+i*100) * scale)),
				Rating:   formulas.Round(3.5+float64(i%10)*0.1, 1),
			}
		}
		return Results{CompetitorData: &CompetitorData{
			TotalCompetitors:  total,
			CompetitorDensity: formulas.Round(float64(total)/(float64(population)/1000), 2),
			AverageDistance:   int(math.Round(baseAverageDistance * scale)),
			Competitors:       competitors,
		}}, nil

	case TypeDemand:
		demand := int(float64(population) * DemandRate(industry))
		return Results{DemandMetrics: &DemandMetrics{
			MonthlyDemand:     demand,
			SeasonalFactor:    demandSeasonalFactor,
			GrowthRate:        demandGrowthRate,
			MarketSaturation:  marketSaturation,
			AddressableMarket: int(float64(demand) * addressableShare),
		}}, nil

	case TypeROI:
		return Results{ROIProjections: &ROIProjections{
			InvestmentScenarios: map[string]InvestmentScenario{
				"conservative": {Budget: 200000, ExpectedROI: 1.8, MonthsToPositive: 8},
				"moderate":     {Budget: 350000, ExpectedROI: 2.4, MonthsToPositive: 6},
				"aggressive":   {Budget: 500000, ExpectedROI: 3.1, MonthsToPositive: 4},
			},
			RiskFactors: []string{"competitor density", "seasonality", "initial awareness"},
		}}, nil
	}

	return Results{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

func split(total int, shares map[string]float64) map[string]int {
	out := make(map[string]int, len(shares))
	for k, share := range shares {
		out[k] = int(float64(total) * share)
	}
	return out
}
