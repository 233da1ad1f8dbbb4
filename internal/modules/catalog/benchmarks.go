package catalog

// Benchmark is a reference cost per acquisition and conversion rate for an
// industry/media pair.
type Benchmark struct {
	Industry   string  `json:"industry"`
	Media      string  `json:"media"`
	AverageCPA float64 `json:"average_cpa"`
	MedianCPA  float64 `json:"median_cpa"`
	AverageCVR float64 `json:"average_cvr"`
}

// GenericBenchmark is used for industry/media pairs without reference data.
var GenericBenchmark = Benchmark{AverageCPA: 2000, MedianCPA: 2000, AverageCVR: 0.025}

var builtinBenchmarks = []Benchmark{
	{Industry: "beauty", Media: GoogleAds, AverageCPA: 3000, MedianCPA: 3000, AverageCVR: 0.03},
	{Industry: "beauty", Media: FacebookAds, AverageCPA: 2500, MedianCPA: 2500, AverageCVR: 0.025},
	{Industry: "beauty", Media: InstagramAds, AverageCPA: 2800, MedianCPA: 2800, AverageCVR: 0.028},
	{Industry: "restaurant", Media: GoogleAds, AverageCPA: 2000, MedianCPA: 2000, AverageCVR: 0.05},
	{Industry: "restaurant", Media: FacebookAds, AverageCPA: 1800, MedianCPA: 1800, AverageCVR: 0.045},
	{Industry: "restaurant", Media: InstagramAds, AverageCPA: 2200, MedianCPA: 2200, AverageCVR: 0.042},
	{Industry: "retail", Media: GoogleAds, AverageCPA: 1500, MedianCPA: 1500, AverageCVR: 0.02},
	{Industry: "retail", Media: FacebookAds, AverageCPA: 1200, MedianCPA: 1200, AverageCVR: 0.018},
	{Industry: "retail", Media: InstagramAds, AverageCPA: 1400, MedianCPA: 1400, AverageCVR: 0.019},
}

// RiskFactor is an entry of the general business risk register.
type RiskFactor struct {
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Impact      float64 `json:"impact"`
}

// Exposure is probability times impact.
func (r RiskFactor) Exposure() float64 {
	return r.Probability * r.Impact
}

var builtinRiskRegister = []RiskFactor{
	{Category: "market", Name: "new competitor entry", Probability: 0.3, Impact: 0.4},
	{Category: "market", Name: "price war", Probability: 0.4, Impact: 0.3},
	{Category: "market", Name: "demand decline", Probability: 0.2, Impact: 0.6},
	{Category: "market", Name: "economic downturn", Probability: 0.25, Impact: 0.5},
	{Category: "operational", Name: "staff shortage", Probability: 0.4, Impact: 0.3},
	{Category: "operational", Name: "quality issues", Probability: 0.15, Impact: 0.7},
	{Category: "operational", Name: "equipment failure", Probability: 0.2, Impact: 0.4},
	{Category: "operational", Name: "supply chain disruption", Probability: 0.3, Impact: 0.3},
	{Category: "marketing", Name: "declining ad effectiveness", Probability: 0.5, Impact: 0.4},
	{Category: "marketing", Name: "brand damage", Probability: 0.1, Impact: 0.8},
	{Category: "marketing", Name: "budget overrun", Probability: 0.3, Impact: 0.3},
	{Category: "marketing", Name: "measurement error", Probability: 0.4, Impact: 0.2},
}
