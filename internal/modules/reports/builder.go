package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/aristath/mvt-analytics/internal/modules/analyses"
	"github.com/aristath/mvt-analytics/internal/modules/funnel"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/aristath/mvt-analytics/internal/modules/projects"
	"github.com/aristath/mvt-analytics/pkg/formulas"
)

// ProjectSource loads projects.
type ProjectSource interface {
	Get(id string) (*projects.Project, error)
}

// AnalysisSource lists a project's analyses.
type AnalysisSource interface {
	ListByProject(projectID string, t analyses.Type) ([]analyses.Analysis, error)
}

// SimulationSource returns a project's newest simulation, or nil.
type SimulationSource interface {
	Latest(projectID string) (*funnel.Simulation, error)
}

// OptimizationSource returns a project's newest optimization, or nil.
type OptimizationSource interface {
	Latest(projectID string) (*optimization.Record, error)
}

// Sources bundles everything a report is built from.
type Sources struct {
	Projects      ProjectSource
	Analyses      AnalysisSource
	Simulations   SimulationSource
	Optimizations OptimizationSource
}

type projectData struct {
	project      *projects.Project
	analyses     []analyses.Analysis
	simulation   *funnel.Simulation
	optimization *optimization.Record
}

func (s Sources) load(projectID string) (*projectData, error) {
	p, err := s.Projects.Get(projectID)
	if err != nil {
		return nil, err
	}
	data := &projectData{project: p}

	if data.analyses, err = s.Analyses.ListByProject(projectID, ""); err != nil {
		return nil, fmt.Errorf("failed to load analyses: %w", err)
	}
	if data.simulation, err = s.Simulations.Latest(projectID); err != nil {
		return nil, fmt.Errorf("failed to load simulation: %w", err)
	}
	if data.optimization, err = s.Optimizations.Latest(projectID); err != nil {
		return nil, fmt.Errorf("failed to load optimization: %w", err)
	}
	return data, nil
}

// build lays out the report content for a template.
func build(data *projectData, tmpl TemplateInfo, now time.Time) (Content, ChartsData) {
	p := data.project
	content := Content{
		Project: ProjectOverview{
			Name:        p.Name,
			Industry:    p.IndustryType,
			TargetArea:  p.TargetArea,
			Description: p.Description,
			RadiusKm:    p.RadiusKm,
		},
		Sections:    tmpl.Sections,
		GeneratedAt: now,
	}

	for _, section := range tmpl.Sections {
		switch section {
		case SectionSummary:
			content.Summary = buildSummary(data)
		case SectionMarket:
			content.Market = buildMarket(data.analyses)
		case SectionSimulation:
			content.Simulation = buildSimulation(data.simulation)
		case SectionOptimization:
			content.Optimization = buildOptimization(data.optimization)
		}
	}
	return content, buildCharts(data)
}

func buildSummary(data *projectData) *SummarySection {
	s := &SummarySection{Highlights: []string{}}
	m := &s.Metrics
	m.AnalysesCompleted = len(data.analyses)

	// analyses are newest first; keep the newest value of each metric
	for i := len(data.analyses) - 1; i >= 0; i-- {
		r := data.analyses[i].Results
		if r.PopulationData != nil {
			m.TotalPopulation = r.PopulationData.TotalPopulation
		}
		if r.CompetitorData != nil {
			m.TotalCompetitors = r.CompetitorData.TotalCompetitors
		}
		if r.DemandMetrics != nil {
			m.MonthlyDemand = r.DemandMetrics.MonthlyDemand
		}
	}

	if sim := data.simulation; sim != nil {
		m.RequiredBudget = sim.Result.RequiredBudget
		m.BreakevenMonth = sim.Result.BreakevenMonth
		if sim.Result.Summary.BreakevenReached {
			s.Highlights = append(s.Highlights, fmt.Sprintf(
				"A monthly advertising budget of %.0f reaches breakeven in month %d",
				sim.Result.RequiredBudget, sim.Result.BreakevenMonth))
		} else {
			s.Highlights = append(s.Highlights, fmt.Sprintf(
				"The simulated plan does not break even within %d months", funnel.HorizonMonths))
		}
	}

	if opt := data.optimization; opt != nil && opt.Result != nil {
		m.ExpectedROI = opt.Result.ExpectedROI
		m.RiskLevel = opt.Result.RiskLevel
		s.Highlights = append(s.Highlights, fmt.Sprintf(
			"The recommended channel mix targets %.1f%% ROI at %s risk",
			opt.Result.ExpectedROI, opt.Result.RiskLevel))
		if top := topChannel(opt.Result.RecommendedAllocation); top != "" {
			s.Highlights = append(s.Highlights, "Largest budget share goes to "+top)
		}
	}

	if m.MonthlyDemand > 0 {
		s.Highlights = append(s.Highlights, fmt.Sprintf(
			"Estimated monthly demand in the trade area is %d customers", m.MonthlyDemand))
	}
	if len(s.Highlights) == 0 {
		s.Highlights = append(s.Highlights,
			"No analyses, simulations or optimizations have been run for this project yet")
	}
	return s
}

func buildMarket(list []analyses.Analysis) *MarketSection {
	section := &MarketSection{Analyses: make([]AnalysisEntry, 0, len(list))}
	for _, a := range list {
		if a.Status != analyses.StatusCompleted {
			continue
		}
		section.Analyses = append(section.Analyses, AnalysisEntry{
			Type:      a.Type,
			Results:   a.Results,
			CreatedAt: a.CreatedAt,
		})
	}
	return section
}

func buildSimulation(sim *funnel.Simulation) *SimulationSection {
	if sim == nil {
		return nil
	}
	return &SimulationSection{
		SimulationID:   sim.ID,
		Name:           sim.Name,
		TargetSales:    sim.Input.TargetMonthlySales,
		RequiredBudget: sim.Result.RequiredBudget,
		BreakevenMonth: sim.Result.BreakevenMonth,
		Funnel:         sim.Result.Funnel,
		Summary:        sim.Result.Summary,
	}
}

func buildOptimization(rec *optimization.Record) *OptimizationSection {
	if rec == nil || rec.Result == nil {
		return nil
	}
	r := rec.Result
	return &OptimizationSection{
		OptimizationID: rec.ID,
		Allocation:     r.RecommendedAllocation,
		ExpectedROI:    r.ExpectedROI,
		RiskScore:      r.RiskScore,
		RiskLevel:      r.RiskLevel,
		BreakevenMonth: r.BreakevenMonth,
		Confidence:     r.Confidence,
		MitigationPlan: r.RiskMitigationPlan,
	}
}

func buildCharts(data *projectData) ChartsData {
	var charts ChartsData

	if sim := data.simulation; sim != nil && len(sim.Result.Cashflow) > 0 {
		cf := sim.Result.Cashflow
		series := &CashflowSeries{
			Months:           make([]int, len(cf)),
			Revenue:          make([]float64, len(cf)),
			TotalCost:        make([]float64, len(cf)),
			MonthlyProfit:    make([]float64, len(cf)),
			CumulativeProfit: make([]float64, len(cf)),
		}
		for i, m := range cf {
			series.Months[i] = m.Month
			series.Revenue[i] = m.Revenue
			series.TotalCost[i] = m.TotalCost
			series.MonthlyProfit[i] = m.MonthlyProfit
			series.CumulativeProfit[i] = m.CumulativeProfit
		}
		charts.Cashflow = series
		charts.Funnel = sim.Result.Funnel
	}

	if opt := data.optimization; opt != nil && opt.Result != nil {
		charts.AllocationShares = allocationShares(opt.Result.RecommendedAllocation)
	}

	for _, a := range data.analyses {
		if a.Results.PopulationData != nil {
			charts.AgeGroups = a.Results.PopulationData.AgeGroups
			break
		}
	}
	return charts
}

// allocationShares returns each channel's fraction of the total budget,
// rounded to four places.
func allocationShares(a optimization.Allocation) map[string]float64 {
	ids := a.Channels()
	values := make([]float64, len(ids))
	for i, id := range ids {
		values[i] = float64(a[id])
	}
	shares := formulas.Shares(values)
	if shares == nil {
		return nil
	}
	out := make(map[string]float64, len(ids))
	for i, id := range ids {
		out[id] = formulas.Round(shares[i], 4)
	}
	return out
}

func topChannel(a optimization.Allocation) string {
	var (
		top  string
		best int64
	)
	for _, id := range a.Channels() {
		if a[id] > best {
			top, best = id, a[id]
		}
	}
	return top
}

func defaultTitle(p *projects.Project, tmpl TemplateInfo) string {
	return strings.TrimSpace(p.Name) + " - " + tmpl.Name
}
