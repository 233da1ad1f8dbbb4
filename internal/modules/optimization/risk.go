package optimization

import (
	"slices"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/pkg/formulas"
)

// MaxMitigationSteps caps the mitigation plan length.
const MaxMitigationSteps = 7

// Concentration penalty applied to the Herfindahl index of budget shares.
const concentrationWeight = 0.3

// Mitigation plan entries
const (
	MitigationWeeklyReview      = "Run weekly performance measurement and budget adjustment"
	MitigationMultiKPI          = "Monitor several KPIs together (CVR, CPA, ROAS)"
	MitigationDiversify         = "Diversify the budget allocation (consider additional channels)"
	MitigationMonthlyRebalance  = "Reallocate budget monthly"
	MitigationGoogleAds         = "Google Ads: improve quality score and spread keywords"
	MitigationFacebookAds       = "Facebook Ads: diversify audiences and optimize creatives"
	MitigationSEO               = "SEO: target several search engines and raise content quality"
	MitigationABTesting         = "Optimize continuously through A/B testing"
	MitigationStagedBudget      = "Roll out budget in stages, expanding after results are confirmed"
	MitigationEmergencyStopRule = "Define emergency budget stop criteria in advance"
)

var channelMitigations = map[string]string{
	catalog.GoogleAds:   MitigationGoogleAds,
	catalog.FacebookAds: MitigationFacebookAds,
	catalog.SEOContent:  MitigationSEO,
}

// RiskScorer rates the risk of an allocation.
type RiskScorer struct {
	catalog ChannelCatalog
}

// NewRiskScorer creates a scorer over the given catalog.
func NewRiskScorer(c ChannelCatalog) *RiskScorer {
	return &RiskScorer{catalog: c}
}

// RiskLevelFor maps a score in [0,1] to its category.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score >= 0.7:
		return RiskCritical
	case score >= 0.5:
		return RiskHigh
	case score >= 0.3:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ChannelRiskScore is the base risk of a channel adjusted for budget size:
// +0.1 above six months of the monthly limit, +0.05 below two months.
func (s *RiskScorer) ChannelRiskScore(channelID string, budget int64, constraints BusinessConstraints) float64 {
	risk := s.catalog.BaseRisk(channelID)
	if budget > constraints.MonthlyBudgetLimit*6 {
		risk += 0.1
	} else if budget < constraints.MonthlyBudgetLimit*2 {
		risk += 0.05
	}
	return min(risk, 1.0)
}

// Assess scores an allocation: budget-weighted channel risk plus a
// concentration penalty of 0.3 x the Herfindahl index, capped at 1.
func (s *RiskScorer) Assess(allocation Allocation, constraints BusinessConstraints) RiskAssessment {
	total := float64(allocation.Total())

	budgets := make([]float64, 0, len(allocation))
	for _, id := range allocation.Channels() {
		budgets = append(budgets, float64(allocation[id]))
	}

	channelRisks := make(map[string]ChannelRisk, len(allocation))
	var order []string
	portfolioRisk := 0.0
	for _, id := range s.catalog.ChannelIDs() {
		budget, ok := allocation[id]
		if !ok || total <= 0 {
			continue
		}
		ch, _ := s.catalog.Channel(id)
		weight := float64(budget) / total
		risk := s.ChannelRiskScore(id, budget, constraints)
		portfolioRisk += risk * weight

		channelRisks[id] = ChannelRisk{
			RiskScore:   risk,
			Weight:      weight,
			RiskFactors: ch.RiskFactors,
		}
		order = append(order, id)
	}

	hhi := formulas.HerfindahlIndex(budgets)
	concentrationRisk := hhi * concentrationWeight
	overall := max(0, min(portfolioRisk+concentrationRisk, 1.0))

	assessment := RiskAssessment{
		OverallRisk:        overall,
		PortfolioRisk:      portfolioRisk,
		ConcentrationIndex: hhi,
		ConcentrationRisk:  concentrationRisk,
		RiskLevel:          RiskLevelFor(overall),
		ChannelRisks:       channelRisks,
	}
	assessment.MitigationPlan = MitigationPlan(assessment, order)
	return assessment
}

// MitigationPlan builds the ordered advisory list for an assessment.
// channelOrder fixes the order of channel-specific entries.
func MitigationPlan(assessment RiskAssessment, channelOrder []string) []string {
	var plan []string

	if assessment.OverallRisk > 0.6 {
		plan = append(plan, MitigationWeeklyReview, MitigationMultiKPI)
	}
	if assessment.ConcentrationRisk > 0.2 {
		plan = append(plan, MitigationDiversify, MitigationMonthlyRebalance)
	}
	for _, id := range channelOrder {
		risk, ok := assessment.ChannelRisks[id]
		if !ok || risk.RiskScore <= 0.5 {
			continue
		}
		if line, ok := channelMitigations[id]; ok {
			plan = append(plan, line)
		}
	}
	plan = append(plan, MitigationABTesting, MitigationStagedBudget, MitigationEmergencyStopRule)

	if len(plan) > MaxMitigationSteps {
		plan = plan[:MaxMitigationSteps]
	}
	return slices.Clip(plan)
}
