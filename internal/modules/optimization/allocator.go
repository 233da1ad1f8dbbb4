package optimization

import (
	"fmt"
	"sort"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
)

// Allocator distributes a budget across channels, most efficient first.
type Allocator struct {
	catalog ChannelCatalog
}

// NewAllocator creates an allocator over the given catalog.
func NewAllocator(c ChannelCatalog) *Allocator {
	return &Allocator{catalog: c}
}

// ConcentrationFactor is the share of the post-setup budget steered to the
// most efficient channel.
func ConcentrationFactor(maxRiskTolerance float64) float64 {
	switch {
	case maxRiskTolerance > 0.7:
		return 0.8
	case maxRiskTolerance > 0.4:
		return 0.6
	default:
		return 0.4
	}
}

// Efficiency scores a channel for an industry. Organic channels have no CPC
// denominator and are scaled by 10 instead.
func (a *Allocator) Efficiency(ch catalog.MarketingChannel, industry string) float64 {
	m := a.catalog.Multiplier(industry, ch.ID)
	if ch.Organic() {
		return ch.ExpectedCVR * ch.ExpectedCTR * m * 10
	}
	return (ch.ExpectedCVR * ch.ExpectedCTR * m) / (ch.ExpectedCPC / 1000)
}

// Validate checks constraints against the selected channels.
func (a *Allocator) Validate(constraints BusinessConstraints, channels []catalog.MarketingChannel) error {
	verr := &ValidationError{}

	if len(channels) == 0 {
		verr.add("no known channels selected")
	}
	if constraints.TotalBudget <= 0 {
		verr.add("total_budget must be positive")
	}
	if constraints.MonthlyBudgetLimit <= 0 {
		verr.add("monthly_budget_limit must be positive")
	}
	if constraints.MaxRiskTolerance < 0 || constraints.MaxRiskTolerance > 1 {
		verr.add(fmt.Sprintf("max_risk_tolerance must be within [0,1], got %g", constraints.MaxRiskTolerance))
	}
	if constraints.TimeHorizon < 1 {
		verr.add(fmt.Sprintf("time_horizon must be at least 1 month, got %d", constraints.TimeHorizon))
	}
	if constraints.TargetCustomers < 0 {
		verr.add("target_customers cannot be negative")
	}
	if constraints.TargetROI <= 0 {
		verr.add("target_roi must be positive")
	}

	var minTotal int64
	for _, ch := range channels {
		minTotal += ch.MinBudget
	}
	if constraints.TotalBudget < minTotal {
		verr.add(fmt.Sprintf("total_budget %d is below the %d minimum of the selected channels", constraints.TotalBudget, minTotal))
	}

	return verr.orNil()
}

// Rank orders channels by descending efficiency. Ties keep catalog order.
func (a *Allocator) Rank(channels []catalog.MarketingChannel, industry string) []RankedChannel {
	ranked := make([]RankedChannel, len(channels))
	for i, ch := range channels {
		ranked[i] = RankedChannel{ChannelID: ch.ID, Efficiency: a.Efficiency(ch, industry)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Efficiency > ranked[j].Efficiency
	})
	return ranked
}

// Allocate runs the greedy allocation over the selected channels.
//
// Setup costs of every selected channel are reserved first. The top channel
// receives the concentration share of what is left, clamped to its bounds.
// The rest is split evenly over the other channels; a channel whose share is
// below its minimum gets nothing. Setup costs are then added back to every
// funded channel, which can push the total past TotalBudget (see Overshoot).
func (a *Allocator) Allocate(constraints BusinessConstraints, channels []catalog.MarketingChannel, industry string) (*AllocationPlan, error) {
	if err := a.Validate(constraints, channels); err != nil {
		return nil, err
	}

	byID := make(map[string]catalog.MarketingChannel, len(channels))
	remaining := constraints.TotalBudget
	for _, ch := range channels {
		byID[ch.ID] = ch
		remaining -= ch.SetupCost
	}

	ranked := a.Rank(channels, industry)
	cf := ConcentrationFactor(constraints.MaxRiskTolerance)

	allocation := make(Allocation, len(channels))

	primary := byID[ranked[0].ChannelID]
	primaryBudget := clamp(int64(float64(remaining)*cf), primary.MinBudget, primary.MaxBudget)
	allocation[primary.ID] = primaryBudget
	remaining -= primaryBudget

	var skipped []string
	others := ranked[1:]
	if len(others) > 0 && remaining > 0 {
		perChannel := remaining / int64(len(others))
		for _, r := range others {
			ch := byID[r.ChannelID]
			if perChannel < ch.MinBudget {
				skipped = append(skipped, ch.ID)
				continue
			}
			budget := min(perChannel, ch.MaxBudget)
			allocation[ch.ID] = budget
			remaining -= budget
		}
	} else {
		for _, r := range others {
			skipped = append(skipped, r.ChannelID)
		}
	}

	for id := range allocation {
		allocation[id] += byID[id].SetupCost
	}

	return &AllocationPlan{
		Allocation:          allocation,
		Ranking:             ranked,
		ConcentrationFactor: cf,
		SkippedChannels:     skipped,
		Overshoot:           max(0, allocation.Total()-constraints.TotalBudget),
	}, nil
}

func clamp(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}
