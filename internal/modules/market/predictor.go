package market

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/pkg/formulas"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	fallbackPopulation      = 40000
	fallbackTargetShare     = 0.4
	fallbackCompetitorCount = 5
	nearAccessibility       = 0.7 // radius up to 500 m
	farAccessibility        = 0.5
	nearRadius              = 500
	baseConfidence          = 0.8
	minConfidence           = 0.3
	largeAddressableMarket  = 5000
	openMarketSaturation    = 0.7
	highRiskThreshold       = 0.6
)

// Risk factor labels.
const (
	RiskSmallPopulation  = "small trade-area population"
	RiskDenseCompetition = "high competitor density"
	RiskWeakEconomy      = "slowing local economy"
	RiskHighChurn        = "high customer churn industry"
)

var errNoPopulation = errors.New("target population is empty")

// Predictor computes market predictions from a DataSource.
type Predictor struct {
	source  DataSource
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// NewPredictor creates a market predictor.
func NewPredictor(source DataSource, cat *catalog.Catalog, log zerolog.Logger) *Predictor {
	return &Predictor{
		source:  source,
		catalog: cat,
		log:     log.With().Str("component", "market_predictor").Logger(),
	}
}

// Predict fetches the trade-area data concurrently and computes the forecast.
// A failing data source lowers confidence; when no forecast can be computed
// the fixed FallbackPrediction is returned. Only context errors are returned.
func (p *Predictor) Predict(ctx context.Context, profile BusinessProfile) (*Prediction, error) {
	profile = profile.WithDefaults()

	var (
		demographics *Demographics
		competitors  *Competitors
		economic     *EconomicIndicators
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := p.source.Demographics(gctx, profile.Location, profile.TargetRadius)
		if err != nil {
			p.log.Warn().Err(err).Msg("Demographics unavailable")
			return nil
		}
		demographics = d
		return nil
	})
	g.Go(func() error {
		c, err := p.source.Competitors(gctx, profile.Location, profile.Industry, profile.TargetRadius)
		if err != nil {
			p.log.Warn().Err(err).Msg("Competitor data unavailable")
			return nil
		}
		competitors = c
		return nil
	})
	g.Go(func() error {
		e, err := p.source.Economic(gctx, profile.Location)
		if err != nil {
			p.log.Warn().Err(err).Msg("Economic indicators unavailable")
			return nil
		}
		economic = e
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prediction, err := p.compute(profile, demographics, competitors, economic)
	if err != nil {
		p.log.Error().Err(err).Str("industry", profile.Industry).Msg("Market prediction failed, using fallback")
		return FallbackPrediction(), nil
	}
	return prediction, nil
}

func (p *Predictor) compute(profile BusinessProfile, demographics *Demographics, competitors *Competitors, economic *EconomicIndicators) (*Prediction, error) {
	industry := p.catalog.Industry(profile.Industry)

	// market size
	totalPopulation := fallbackPopulation
	var ageDistribution map[string]int
	if demographics != nil {
		totalPopulation = demographics.TotalPopulation
		ageDistribution = demographics.AgeDistribution
	}
	targetPopulation := TargetPopulation(ageDistribution, profile.TargetAgeMin, profile.TargetAgeMax)
	if targetPopulation == 0 {
		targetPopulation = int(float64(totalPopulation) * fallbackTargetShare)
	}
	if targetPopulation <= 0 {
		return nil, errNoPopulation
	}

	theoretical := int(float64(targetPopulation) * industry.PenetrationRate)
	accessibility := farAccessibility
	if profile.TargetRadius <= nearRadius {
		accessibility = nearAccessibility
	}
	addressable := int(float64(theoretical) * accessibility)

	// competition
	competitorCount := fallbackCompetitorCount
	if competitors != nil {
		competitorCount = competitors.TotalCompetitors
	}
	density := float64(competitorCount) / float64(targetPopulation) * 1000
	saturation := density / industry.CompetitionThreshold
	score := math.Min(saturation*100, 100)

	// demand
	theoreticalDemand := int(float64(addressable) * industry.FrequencyMonthly)
	monthlyDemand := int(float64(theoreticalDemand) * (1.0 / (1 + density)))
	growth := math.Max(0, math.Min(1, 1-saturation))

	// risk
	var risks []string
	var risk float64
	if demographics != nil && demographics.TotalPopulation < 30000 {
		risks = append(risks, RiskSmallPopulation)
		risk += 0.2
	}
	if competitors != nil && competitors.TotalCompetitors > 10 {
		risks = append(risks, RiskDenseCompetition)
		risk += 0.3
	}
	if economic != nil && economic.GDPGrowth < 0 {
		risks = append(risks, RiskWeakEconomy)
		risk += 0.2
	}
	if industry.AvgCustomerLifetime < 12 {
		risks = append(risks, RiskHighChurn)
		risk += 0.1
	}
	risk = math.Min(risk, 1.0)

	confidence := baseConfidence
	if demographics == nil {
		confidence -= 0.2
	}
	if competitors == nil {
		confidence -= 0.1
	}
	confidence = math.Max(minConfidence, confidence)

	prediction := &Prediction{
		TotalMarketSize:   theoretical,
		AddressableMarket: addressable,
		MonthlyDemand:     monthlyDemand,
		CompetitionScore:  formulas.Round(score, 2),
		MarketSaturation:  formulas.Round(saturation, 4),
		GrowthPotential:   formulas.Round(growth, 4),
		RiskScore:         formulas.Round(risk, 4),
		RiskFactors:       nonNil(risks),
		Confidence:        formulas.Round(confidence, 2),
	}
	prediction.KeyInsights, prediction.Recommendations = insights(prediction, saturation, profile)
	return prediction, nil
}

func insights(p *Prediction, saturation float64, profile BusinessProfile) ([]string, []string) {
	found := []string{}
	recommended := []string{}

	if p.AddressableMarket > largeAddressableMarket {
		found = append(found, fmt.Sprintf("%d target customers in the trade area is a sufficient market", p.AddressableMarket))
	} else {
		found = append(found, fmt.Sprintf("%d target customers in the trade area is a limited market", p.AddressableMarket))
		recommended = append(recommended, "Consider widening the trade area or revisiting the target segment")
	}

	if saturation < openMarketSaturation {
		found = append(found, "The market still has room for new entrants")
		recommended = append(recommended, "Enter early to secure a first-mover advantage")
	} else {
		found = append(found, "Competitor density in the market is high")
		recommended = append(recommended, "Differentiate and target niche segments")
	}

	capacity := profile.MonthlyCapacity
	switch {
	case p.MonthlyDemand >= capacity:
		found = append(found, fmt.Sprintf("Expected monthly demand of %d exceeds capacity", p.MonthlyDemand))
		recommended = append(recommended, "Plan for additional capacity")
	case float64(p.MonthlyDemand) < float64(capacity)*0.5:
		found = append(found, "Capacity is oversized for the expected demand")
		recommended = append(recommended, "Review the cost structure or invest in demand generation")
	}

	if p.RiskScore > highRiskThreshold {
		recommended = append(recommended, "Prepare risk mitigation measures in advance")
	}

	return found, recommended
}

// TargetPopulation sums the age bands overlapping [minAge, maxAge].
// Bands are "lo-hi" or "lo+".
func TargetPopulation(bands map[string]int, minAge, maxAge int) int {
	total := 0
	for band, population := range bands {
		lo, hi, ok := parseAgeBand(band)
		if !ok {
			continue
		}
		if lo <= maxAge && minAge <= hi {
			total += population
		}
	}
	return total
}

func parseAgeBand(band string) (int, int, bool) {
	if open, found := strings.CutSuffix(band, "+"); found {
		lo, err := strconv.Atoi(open)
		return lo, math.MaxInt32, err == nil
	}
	loStr, hiStr, found := strings.Cut(band, "-")
	if !found {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(loStr)
	hi, err2 := strconv.Atoi(hiStr)
	return lo, hi, err1 == nil && err2 == nil
}

// FallbackPrediction is returned when a forecast cannot be computed.
func FallbackPrediction() *Prediction {
	return &Prediction{
		TotalMarketSize:   1000,
		AddressableMarket: 700,
		MonthlyDemand:     350,
		CompetitionScore:  50.0,
		MarketSaturation:  0.5,
		GrowthPotential:   0.3,
		RiskScore:         0.4,
		RiskFactors:       []string{},
		Confidence:        0.3,
		KeyInsights:       []string{"Data retrieval failed, showing a simplified forecast"},
		Recommendations:   []string{"Run the analysis again for a detailed forecast"},
		Fallback:          true,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
