package market

import (
	"math"
	"strings"
	"time"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
)

// DefaultMonthsAhead is the default length of a seasonal outlook.
const DefaultMonthsAhead = 12

// Seasonal recommendations.
const (
	SeasonPeak   = "High demand: increase inventory and staffing"
	SeasonNormal = "Normal season: standard operations"
	SeasonLow    = "Low demand: strengthen promotions"
)

// SeasonalTrend is the outlook for one month.
type SeasonalTrend struct {
	Month          int     `json:"month"` // 1-12
	MonthName      string  `json:"month_name"`
	SeasonalFactor float64 `json:"seasonal_factor"`
	DemandIndex    int     `json:"demand_index"`
	Recommendation string  `json:"recommendation"`
}

// SeasonalAnalysis is a month-by-month outlook starting at the current month.
type SeasonalAnalysis struct {
	Industry    string          `json:"industry"`
	Trends      []SeasonalTrend `json:"seasonal_trends"`
	PeakMonths  []string        `json:"peak_months"`
	LowMonths   []string        `json:"low_months"`
	KnownSeason bool            `json:"known_season"`
}

// SeasonalAnalyzer projects industry seasonality forward from the current month.
type SeasonalAnalyzer struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewSeasonalAnalyzer creates a seasonal analyzer. now may be nil for time.Now.
func NewSeasonalAnalyzer(cat *catalog.Catalog, now func() time.Time) *SeasonalAnalyzer {
	if now == nil {
		now = time.Now
	}
	return &SeasonalAnalyzer{catalog: cat, now: now}
}

// Analyze returns the outlook for monthsAhead months (DefaultMonthsAhead when <= 0).
// Industries without a seasonal profile get a flat 1.0 curve.
func (s *SeasonalAnalyzer) Analyze(industry string, monthsAhead int) SeasonalAnalysis {
	if monthsAhead <= 0 {
		monthsAhead = DefaultMonthsAhead
	}

	patterns, known := s.patterns(industry)
	current := int(s.now().Month())

	trends := make([]SeasonalTrend, monthsAhead)
	for i := range trends {
		idx := (current - 1 + i) % 12
		factor := patterns[idx]
		trends[i] = SeasonalTrend{
			Month:          idx + 1,
			MonthName:      time.Month(idx + 1).String(),
			SeasonalFactor: factor,
			DemandIndex:    int(math.Round(factor * 100)),
			Recommendation: SeasonalRecommendation(factor),
		}
	}

	return SeasonalAnalysis{
		Industry:    industry,
		Trends:      trends,
		PeakMonths:  PeakMonths(patterns),
		LowMonths:   LowMonths(patterns),
		KnownSeason: known,
	}
}

func (s *SeasonalAnalyzer) patterns(industry string) ([12]float64, bool) {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if p, ok := s.catalog.LookupIndustry(industry); ok {
		return p.SeasonalPatterns, true
	}
	if family, _, found := strings.Cut(industry, "_"); found {
		if p, ok := s.catalog.LookupIndustry(family); ok {
			return p.SeasonalPatterns, true
		}
	}
	var flat [12]float64
	for i := range flat {
		flat[i] = 1.0
	}
	return flat, false
}

// SeasonalRecommendation maps a seasonal factor to an operating recommendation.
func SeasonalRecommendation(factor float64) string {
	switch {
	case factor > 1.2:
		return SeasonPeak
	case factor > 1.0:
		return SeasonNormal
	default:
		return SeasonLow
	}
}

// PeakMonths names the months within 90% of the highest factor.
func PeakMonths(patterns [12]float64) []string {
	highest := patterns[0]
	for _, f := range patterns {
		highest = math.Max(highest, f)
	}
	return monthsWhere(patterns, func(f float64) bool { return f >= highest*0.9 })
}

// LowMonths names the months within 110% of the lowest factor.
func LowMonths(patterns [12]float64) []string {
	lowest := patterns[0]
	for _, f := range patterns {
		lowest = math.Min(lowest, f)
	}
	return monthsWhere(patterns, func(f float64) bool { return f <= lowest*1.1 })
}

func monthsWhere(patterns [12]float64, keep func(float64) bool) []string {
	months := []string{}
	for i, f := range patterns {
		if keep(f) {
			months = append(months, time.Month(i+1).String())
		}
	}
	return months
}
