package catalog

// DefaultIndustry is used whenever an industry id is not known.
const DefaultIndustry = "beauty"

// IndustryProfile holds market reference data for an industry family.
type IndustryProfile struct {
	ID                   string      `json:"id"`
	PenetrationRate      float64     `json:"penetration_rate"`
	FrequencyMonthly     float64     `json:"frequency_monthly"`
	SeasonalPatterns     [12]float64 `json:"seasonal_patterns"`
	CompetitionThreshold float64     `json:"competition_threshold"` // competitors per 1000 target residents
	AvgCustomerLifetime  int         `json:"avg_customer_lifetime"` // months
}

// SeasonalFactor returns the demand factor for a calendar month (1-12).
func (p IndustryProfile) SeasonalFactor(month int) float64 {
	return p.SeasonalPatterns[monthIndex(month)]
}

var builtinIndustries = map[string]IndustryProfile{
	"beauty": {
		ID:                   "beauty",
		PenetrationRate:      0.08,
		FrequencyMonthly:     1.2,
		SeasonalPatterns:     [12]float64{0.9, 1.0, 1.3, 1.1, 1.0, 0.9, 0.8, 0.8, 1.0, 1.1, 1.2, 1.4},
		CompetitionThreshold: 0.3,
		AvgCustomerLifetime:  18,
	},
	"restaurant": {
		ID:                   "restaurant",
		PenetrationRate:      0.25,
		FrequencyMonthly:     4.5,
		SeasonalPatterns:     [12]float64{0.8, 0.9, 1.0, 1.1, 1.0, 1.1, 1.2, 1.1, 1.0, 1.0, 1.1, 1.3},
		CompetitionThreshold: 1.2,
		AvgCustomerLifetime:  24,
	},
	"healthcare": {
		ID:                   "healthcare",
		PenetrationRate:      0.15,
		FrequencyMonthly:     2.0,
		SeasonalPatterns:     [12]float64{1.2, 1.1, 1.0, 0.9, 0.9, 0.8, 0.8, 0.9, 1.0, 1.1, 1.2, 1.3},
		CompetitionThreshold: 0.8,
		AvgCustomerLifetime:  36,
	},
	"fitness": {
		ID:                   "fitness",
		PenetrationRate:      0.12,
		FrequencyMonthly:     8.0,
		SeasonalPatterns:     [12]float64{1.4, 1.2, 1.1, 1.0, 1.0, 0.9, 0.8, 0.9, 1.0, 1.1, 1.0, 1.2},
		CompetitionThreshold: 0.5,
		AvgCustomerLifetime:  12,
	},
}

// FunnelIndustry is an industry offered by the funnel simulator with its typical conversion rate.
type FunnelIndustry struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DefaultCVR float64 `json:"default_cvr"`
}

var builtinFunnelIndustries = []FunnelIndustry{
	{ID: "beauty", Name: "Beauty & Esthetics", DefaultCVR: 0.03},
	{ID: "restaurant", Name: "Restaurants", DefaultCVR: 0.05},
	{ID: "retail", Name: "Retail", DefaultCVR: 0.02},
	{ID: "healthcare", Name: "Healthcare", DefaultCVR: 0.025},
	{ID: "education", Name: "Education & Schools", DefaultCVR: 0.04},
	{ID: "real_estate", Name: "Real Estate", DefaultCVR: 0.015},
	{ID: "financial", Name: "Finance & Insurance", DefaultCVR: 0.01},
	{ID: "automotive", Name: "Automotive", DefaultCVR: 0.008},
}

func monthIndex(month int) int {
	idx := (month - 1) % 12
	if idx < 0 {
		idx += 12
	}
	return idx
}
