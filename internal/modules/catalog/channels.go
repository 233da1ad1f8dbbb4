package catalog

// MarketingChannel describes a paid or organic acquisition channel.
// Budgets are in whole currency units.
type MarketingChannel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	MinBudget   int64    `json:"min_budget"`
	MaxBudget   int64    `json:"max_budget"`
	ExpectedCPC float64  `json:"expected_cpc"` // 0 means organic
	ExpectedCTR float64  `json:"expected_ctr"`
	ExpectedCVR float64  `json:"expected_cvr"`
	SetupCost   int64    `json:"setup_cost"`
	RiskFactors []string `json:"risk_factors"`
}

// Organic reports whether the channel has no cost per click.
func (c MarketingChannel) Organic() bool {
	return c.ExpectedCPC <= 0
}

// Channel ids of the built-in catalog
const (
	GoogleAds      = "google_ads"
	FacebookAds    = "facebook_ads"
	InstagramAds   = "instagram_ads"
	LineAds        = "line_ads"
	SEOContent     = "seo_content"
	LocalPromotion = "local_promotion"
)

func builtinChannels() []MarketingChannel {
	return []MarketingChannel{
		{
			ID:          GoogleAds,
			Name:        "Google Ads",
			MinBudget:   30000,
			MaxBudget:   1000000,
			ExpectedCPC: 120,
			ExpectedCTR: 0.03,
			ExpectedCVR: 0.025,
			SetupCost:   50000,
			RiskFactors: []string{"bid competition", "quality score volatility", "seasonality"},
		},
		{
			ID:          FacebookAds,
			Name:        "Facebook Ads",
			MinBudget:   20000,
			MaxBudget:   800000,
			ExpectedCPC: 80,
			ExpectedCTR: 0.035,
			ExpectedCVR: 0.02,
			SetupCost:   30000,
			RiskFactors: []string{"algorithm changes", "audience exhaustion", "ad fatigue"},
		},
		{
			ID:          InstagramAds,
			Name:        "Instagram Ads",
			MinBudget:   20000,
			MaxBudget:   800000,
			ExpectedCPC: 90,
			ExpectedCTR: 0.04,
			ExpectedCVR: 0.018,
			SetupCost:   30000,
			RiskFactors: []string{"younger audience churn", "creative quality dependency", "visual competition"},
		},
		{
			ID:          LineAds,
			Name:        "LINE Ads",
			MinBudget:   50000,
			MaxBudget:   1500000,
			ExpectedCPC: 150,
			ExpectedCTR: 0.025,
			ExpectedCVR: 0.03,
			SetupCost:   100000,
			RiskFactors: []string{"narrow user base", "high cost", "delivery volume caps"},
		},
		{
			ID:          SEOContent,
			Name:        "SEO Content",
			MinBudget:   100000,
			MaxBudget:   500000,
			ExpectedCPC: 0,
			ExpectedCTR: 0.05,
			ExpectedCVR: 0.035,
			SetupCost:   200000,
			RiskFactors: []string{"slow time to impact", "algorithm changes", "competing content"},
		},
		{
			ID:          LocalPromotion,
			Name:        "Local Promotion",
			MinBudget:   50000,
			MaxBudget:   300000,
			ExpectedCPC: 50,
			ExpectedCTR: 0.08,
			ExpectedCVR: 0.05,
			SetupCost:   20000,
			RiskFactors: []string{"local reach only", "hard to measure", "weather dependency"},
		},
	}
}

// Per-industry efficiency multipliers. Channels absent from a table use 1.0.
var builtinMultipliers = map[string]map[string]float64{
	"beauty": {
		GoogleAds: 1.2, FacebookAds: 1.1, InstagramAds: 1.3,
		LineAds: 0.9, SEOContent: 1.0, LocalPromotion: 1.1,
	},
	"restaurant": {
		GoogleAds: 1.0, FacebookAds: 1.2, InstagramAds: 1.1,
		LineAds: 1.1, SEOContent: 0.9, LocalPromotion: 1.3,
	},
	"healthcare": {
		GoogleAds: 1.1, FacebookAds: 0.8, InstagramAds: 0.7,
		LineAds: 1.0, SEOContent: 1.3, LocalPromotion: 1.2,
	},
	"fitness": {
		GoogleAds: 1.0, FacebookAds: 1.1, InstagramAds: 1.4,
		LineAds: 0.8, SEOContent: 1.1, LocalPromotion: 1.0,
	},
}

// Monthly seasonal curves per channel, index = month - 1.
var builtinChannelSeasonality = map[string][12]float64{
	GoogleAds:      {0.9, 1.0, 1.2, 1.1, 1.0, 0.9, 0.8, 0.8, 1.0, 1.1, 1.1, 1.3},
	FacebookAds:    {0.8, 0.9, 1.1, 1.0, 1.0, 1.0, 0.9, 0.9, 1.0, 1.1, 1.2, 1.4},
	LocalPromotion: {0.7, 0.8, 1.3, 1.2, 1.1, 1.0, 0.9, 0.8, 1.0, 1.1, 1.0, 1.2},
}

// DefaultBaseRisk applies to channels without an explicit base risk.
const DefaultBaseRisk = 0.4

var builtinBaseRisks = map[string]float64{
	GoogleAds:      0.3,
	FacebookAds:    0.4,
	InstagramAds:   0.4,
	LineAds:        0.5,
	SEOContent:     0.2,
	LocalPromotion: 0.3,
}

// MediaType is an advertising medium offered by the funnel simulator.
type MediaType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var builtinMediaTypes = []MediaType{
	{ID: GoogleAds, Name: "Google Ads", Description: "Search and display ads"},
	{ID: FacebookAds, Name: "Facebook Ads", Description: "Social network ads"},
	{ID: InstagramAds, Name: "Instagram Ads", Description: "Visual-first social ads"},
	{ID: "youtube_ads", Name: "YouTube Ads", Description: "Video ads"},
	{ID: "twitter_ads", Name: "Twitter Ads", Description: "Real-time social ads"},
	{ID: LineAds, Name: "LINE Ads", Description: "Messaging app ads"},
}
