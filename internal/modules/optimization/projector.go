package optimization

import (
	"github.com/aristath/mvt-analytics/pkg/formulas"
)

// FallbackCustomerValue is the revenue per customer used when no customer
// target is given.
const FallbackCustomerValue = 5000.0

// OrganicCostPerClick converts organic channel spend into visits.
const OrganicCostPerClick = 100.0

// Projector simulates month-by-month results of an allocation.
type Projector struct {
	catalog ChannelCatalog
}

// NewProjector creates a projector over the given catalog.
func NewProjector(c ChannelCatalog) *Projector {
	return &Projector{catalog: c}
}

// CustomerValue derives the revenue per customer from the caller's targets.
func CustomerValue(constraints BusinessConstraints, totalCost float64) float64 {
	if constraints.TargetCustomers > 0 {
		return constraints.TargetROI * totalCost / float64(constraints.TargetCustomers)
	}
	return FallbackCustomerValue
}

// Project simulates min(TimeHorizon, 12) months. Each channel spends
// budget/TimeHorizon per month; customers per channel are truncated to whole
// customers before being summed. Channels unknown to the catalog count towards
// total cost but produce no customers.
func (p *Projector) Project(allocation Allocation, constraints BusinessConstraints) Projection {
	constraints = constraints.WithDefaults()
	horizon := constraints.TimeHorizon
	months := min(horizon, MaxProjectionMonths)

	totalCost := float64(allocation.Total())
	customerValue := CustomerValue(constraints, totalCost)

	// Catalog order keeps float accumulation deterministic
	type funded struct {
		id       string
		budget   float64
		cpc      float64
		ctr, cvr float64
		organic  bool
	}
	var channels []funded
	for _, id := range p.catalog.ChannelIDs() {
		budget, ok := allocation[id]
		if !ok {
			continue
		}
		ch, _ := p.catalog.Channel(id)
		channels = append(channels, funded{
			id:      id,
			budget:  float64(budget),
			cpc:     ch.ExpectedCPC,
			ctr:     ch.ExpectedCTR,
			cvr:     ch.ExpectedCVR,
			organic: ch.Organic(),
		})
	}

	monthly := make([]MonthlyProjection, 0, months)
	var totalCustomers int64
	var totalRevenue, cumulative float64
	breakeven := 0

	for month := 1; month <= months; month++ {
		var customers int64
		var cost float64

		for _, ch := range channels {
			monthlyBudget := ch.budget / float64(horizon)

			var clicks float64
			if ch.organic {
				clicks = monthlyBudget / OrganicCostPerClick
			} else {
				clicks = monthlyBudget / ch.cpc
			}

			conversions := clicks * ch.ctr * ch.cvr
			conversions *= p.catalog.ChannelSeasonal(month, ch.id)

			customers += int64(conversions)
			cost += monthlyBudget
		}

		revenue := float64(customers) * customerValue
		profit := revenue - cost
		roi := 0.0
		if cost > 0 {
			roi = profit / cost * 100
		}

		cumulative += profit
		if breakeven == 0 && cumulative >= 0 {
			breakeven = month
		}

		monthly = append(monthly, MonthlyProjection{
			Month:            month,
			Customers:        customers,
			Revenue:          int64(revenue),
			Cost:             int64(cost),
			Profit:           int64(profit),
			ROI:              formulas.Round(roi, 1),
			CumulativeProfit: int64(cumulative),
		})

		totalCustomers += customers
		totalRevenue += revenue
	}

	if breakeven == 0 {
		breakeven = months
	}

	overallROI := 0.0
	if totalCost > 0 {
		overallROI = (totalRevenue - totalCost) / totalCost * 100
	}

	return Projection{
		Monthly: monthly,
		Totals: ProjectionTotals{
			Customers:      totalCustomers,
			Revenue:        int64(totalRevenue),
			Cost:           int64(totalCost),
			ROI:            formulas.Round(overallROI, 1),
			BreakevenMonth: breakeven,
		},
		Confidence: Confidence(allocation, constraints),
	}
}

// Confidence scores how much the projection can be trusted, in [0.3, 0.8].
func Confidence(allocation Allocation, constraints BusinessConstraints) float64 {
	confidence := 0.8
	if len(allocation) == 1 {
		confidence -= 0.1
	}
	if float64(allocation.Total()) > float64(constraints.TotalBudget)*0.9 {
		confidence -= 0.1
	}
	return formulas.Round(max(0.3, confidence), 2)
}
