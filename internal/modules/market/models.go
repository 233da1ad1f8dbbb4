// Package market predicts trade-area market size, competition and demand,
// and combines it with budget optimization and seasonality.
package market

// Profile defaults applied by WithDefaults.
const (
	DefaultTargetRadius    = 500 // meters
	DefaultTargetAgeMin    = 20
	DefaultTargetAgeMax    = 60
	DefaultAverageSpend    = 5000
	DefaultMonthlyCapacity = 1000
)

// BusinessProfile describes the business being analyzed.
type BusinessProfile struct {
	Industry        string  `json:"industry"`
	Location        string  `json:"location"`
	TargetRadius    int     `json:"target_radius"` // meters
	TargetAgeMin    int     `json:"target_age_min"`
	TargetAgeMax    int     `json:"target_age_max"`
	AverageSpend    float64 `json:"average_spend"`
	MonthlyCapacity int     `json:"monthly_capacity"`
}

// WithDefaults fills unset fields.
func (p BusinessProfile) WithDefaults() BusinessProfile {
	if p.TargetRadius <= 0 {
		p.TargetRadius = DefaultTargetRadius
	}
	if p.TargetAgeMin <= 0 && p.TargetAgeMax <= 0 {
		p.TargetAgeMin = DefaultTargetAgeMin
		p.TargetAgeMax = DefaultTargetAgeMax
	}
	if p.TargetAgeMax < p.TargetAgeMin {
		p.TargetAgeMin, p.TargetAgeMax = p.TargetAgeMax, p.TargetAgeMin
	}
	if p.AverageSpend <= 0 {
		p.AverageSpend = DefaultAverageSpend
	}
	if p.MonthlyCapacity <= 0 {
		p.MonthlyCapacity = DefaultMonthlyCapacity
	}
	return p
}

// Demographics is resident data for a trade area.
type Demographics struct {
	TotalPopulation    int            `json:"total_population"`
	Households         int            `json:"households"`
	AgeDistribution    map[string]int `json:"age_distribution"`
	IncomeDistribution map[string]int `json:"income_distribution"`
	WorkingPopulation  int            `json:"working_population"`
	CommuterRatio      float64        `json:"commuter_ratio"`
}

// CompetitorProfile is one competing business.
type CompetitorProfile struct {
	Name               string  `json:"name"`
	Distance           int     `json:"distance"` // meters
	Rating             float64 `json:"rating"`
	EstimatedCustomers int     `json:"estimated_customers"`
	PriceRange         string  `json:"price_range"`
}

// Competitors lists competition in a trade area.
type Competitors struct {
	TotalCompetitors int                 `json:"total_competitors"`
	Competitors      []CompetitorProfile `json:"competitors"`
}

// EconomicIndicators are local economic signals.
type EconomicIndicators struct {
	GDPGrowth           float64 `json:"gdp_growth"`
	EmploymentRate      float64 `json:"employment_rate"`
	ConsumerConfidence  float64 `json:"consumer_confidence"`
	LocalIncomeTrend    string  `json:"local_income_trend"`
	DevelopmentProjects int     `json:"development_projects"`
}

// Prediction is the market forecast for a business profile.
type Prediction struct {
	TotalMarketSize   int      `json:"total_market_size"`
	AddressableMarket int      `json:"addressable_market"`
	MonthlyDemand     int      `json:"monthly_demand"`
	CompetitionScore  float64  `json:"competition_score"` // 0-100, lower is less competition
	MarketSaturation  float64  `json:"market_saturation"`
	GrowthPotential   float64  `json:"growth_potential"`
	RiskScore         float64  `json:"risk_score"`
	RiskFactors       []string `json:"risk_factors"`
	Confidence        float64  `json:"confidence"`
	KeyInsights       []string `json:"key_insights"`
	Recommendations   []string `json:"recommendations"`
	Fallback          bool     `json:"fallback"`
}
