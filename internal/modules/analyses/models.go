// Package analyses runs and stores trade-area analyses for projects.
package analyses

import (
	"errors"
	"time"
)

// Type is the kind of analysis.
type Type string

const (
	TypeDemographics Type = "demographics"
	TypeCompetitors  Type = "competitors"
	TypeDemand       Type = "demand"
	TypeROI          Type = "roi"
)

// Types lists the supported analysis types.
var Types = []Type{TypeDemographics, TypeCompetitors, TypeDemand, TypeROI}

// StatusCompleted is the status of every stored analysis.
const StatusCompleted = "completed"

var (
	// ErrNotFound is returned when an analysis id does not exist.
	ErrNotFound = errors.New("analysis not found")
	// ErrUnknownType is returned for an unsupported analysis type.
	ErrUnknownType = errors.New("unknown analysis type")
)

// Valid reports whether t is a supported type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Parameters are the inputs recorded with an analysis.
type Parameters struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	RadiusKm  float64  `json:"radius_km"`
	Industry  string   `json:"industry"`
}

// PopulationData describes residents of the trade area.
type PopulationData struct {
	TotalPopulation int            `json:"total_population"`
	Households      int            `json:"households"`
	AgeGroups       map[string]int `json:"age_groups"`
	IncomeBrackets  map[string]int `json:"income_brackets"`
}

// Competitor is a nearby business in the same industry.
type Competitor struct {
	Name     string  `json:"name"`
	Distance int     `json:"distance"` // meters
	Rating   float64 `json:"rating"`
}

// CompetitorData summarizes competition in the trade area.
type CompetitorData struct {
	TotalCompetitors  int          `json:"total_competitors"`
	CompetitorDensity float64      `json:"competitor_density"` // per 1000 residents
	AverageDistance   int          `json:"average_distance"`   // meters
	Competitors       []Competitor `json:"competitors"`
}

// DemandMetrics estimates monthly demand for the industry.
type DemandMetrics struct {
	MonthlyDemand     int     `json:"monthly_demand"`
	SeasonalFactor    float64 `json:"seasonal_factor"`
	GrowthRate        float64 `json:"growth_rate"`
	MarketSaturation  float64 `json:"market_saturation"`
	AddressableMarket int     `json:"addressable_market"`
}

// InvestmentScenario is a reference budget with its expected return.
type InvestmentScenario struct {
	Budget           int64   `json:"budget"`
	ExpectedROI      float64 `json:"expected_roi"` // multiple of budget
	MonthsToPositive int     `json:"months_to_positive"`
}

// ROIProjections compares reference investment levels.
type ROIProjections struct {
	InvestmentScenarios map[string]InvestmentScenario `json:"investment_scenarios"`
	RiskFactors         []string                      `json:"risk_factors"`
}

// Results holds the section produced by an analysis; exactly one is set.
type Results struct {
	PopulationData *PopulationData `json:"population_data,omitempty"`
	CompetitorData *CompetitorData `json:"competitor_data,omitempty"`
	DemandMetrics  *DemandMetrics  `json:"demand_metrics,omitempty"`
	ROIProjections *ROIProjections `json:"roi_projections,omitempty"`
}

// Analysis is a stored analysis run.
type Analysis struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"project_id"`
	Type       Type       `json:"analysis_type"`
	Status     string     `json:"status"`
	Parameters Parameters `json:"parameters"`
	Results    Results    `json:"results"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Request asks for a new analysis of a project.
type Request struct {
	ProjectID string   `json:"project_id"`
	Type      Type     `json:"analysis_type"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}
