// Package reports assembles project reports from stored analyses, simulations
// and optimizations, and exports them as JSON, CSV or PNG.
package reports

import (
	"errors"
	"time"

	"github.com/aristath/mvt-analytics/internal/modules/analyses"
	"github.com/aristath/mvt-analytics/internal/modules/funnel"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
)

var (
	// ErrNotFound is returned when a report does not exist.
	ErrNotFound = errors.New("report not found")
	// ErrUnknownTemplate is returned for template ids not in Templates.
	ErrUnknownTemplate = errors.New("unknown report template")
	// ErrUnsupportedFormat is returned for export formats other than json, csv and png.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNoCashflow is returned when a cashflow export is requested for a
	// report without simulation data.
	ErrNoCashflow = errors.New("report has no cashflow data")
	// ErrNotExported is returned when downloading a report that was never exported.
	ErrNotExported = errors.New("report has not been exported")
)

// Template identifies a report layout.
type Template string

// Report templates
const (
	TemplateExecutiveSummary Template = "executive_summary"
	TemplateDetailedAnalysis Template = "detailed_analysis"
	TemplateInvestorPitch    Template = "investor_pitch"
)

// Section names
const (
	SectionSummary      = "summary"
	SectionMarket       = "market"
	SectionSimulation   = "simulation"
	SectionOptimization = "optimization"
)

// TemplateInfo describes a template for clients.
type TemplateInfo struct {
	ID          Template `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Sections    []string `json:"sections"`
}

var templates = []TemplateInfo{
	{
		ID:          TemplateExecutiveSummary,
		Name:        "Executive summary",
		Description: "Key numbers of the latest simulation and budget plan",
		Sections:    []string{SectionSummary, SectionSimulation, SectionOptimization},
	},
	{
		ID:          TemplateDetailedAnalysis,
		Name:        "Detailed analysis",
		Description: "Every stored analysis together with simulation and optimization results",
		Sections:    []string{SectionSummary, SectionMarket, SectionSimulation, SectionOptimization},
	},
	{
		ID:          TemplateInvestorPitch,
		Name:        "Investor pitch",
		Description: "Market opportunity and expected return on the marketing plan",
		Sections:    []string{SectionSummary, SectionMarket, SectionOptimization},
	},
}

// Templates returns the available templates.
func Templates() []TemplateInfo {
	out := make([]TemplateInfo, len(templates))
	copy(out, templates)
	return out
}

// LookupTemplate returns the template with the given id.
func LookupTemplate(id Template) (TemplateInfo, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return TemplateInfo{}, false
}

// Format is an export format.
type Format string

// Export formats
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPNG  Format = "png"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPNG:
		return "image/png"
	default:
		return "application/json"
	}
}

// GenerateRequest is the input of Generate.
type GenerateRequest struct {
	ProjectID string   `json:"project_id"`
	Title     string   `json:"title"`
	Template  Template `json:"template"`
}

// ProjectOverview describes the project a report is about.
type ProjectOverview struct {
	Name        string  `json:"name"`
	Industry    string  `json:"industry"`
	TargetArea  string  `json:"target_area"`
	Description string  `json:"description"`
	RadiusKm    float64 `json:"radius_km"`
}

// KeyMetrics are the headline numbers of a report. Zero values mean the
// underlying data was not available.
type KeyMetrics struct {
	RequiredBudget    float64                `json:"required_budget,omitempty"`
	BreakevenMonth    int                    `json:"breakeven_month,omitempty"`
	ExpectedROI       float64                `json:"expected_roi,omitempty"`
	RiskLevel         optimization.RiskLevel `json:"risk_level,omitempty"`
	MonthlyDemand     int                    `json:"monthly_demand,omitempty"`
	TotalPopulation   int                    `json:"total_population,omitempty"`
	TotalCompetitors  int                    `json:"total_competitors,omitempty"`
	AnalysesCompleted int                    `json:"analyses_completed"`
}

// SummarySection is the opening section of every report.
type SummarySection struct {
	Metrics    KeyMetrics `json:"key_metrics"`
	Highlights []string   `json:"highlights"`
}

// AnalysisEntry is one stored analysis as shown in a report.
type AnalysisEntry struct {
	Type      analyses.Type    `json:"type"`
	Results   analyses.Results `json:"results"`
	CreatedAt time.Time        `json:"created_at"`
}

// MarketSection lists the project's analyses.
type MarketSection struct {
	Analyses []AnalysisEntry `json:"analyses"`
}

// SimulationSection summarizes the latest funnel simulation.
type SimulationSection struct {
	SimulationID   string         `json:"simulation_id"`
	Name           string         `json:"name"`
	TargetSales    float64        `json:"target_monthly_sales"`
	RequiredBudget float64        `json:"required_budget"`
	BreakevenMonth int            `json:"breakeven_months"`
	Funnel         []funnel.Stage `json:"funnel"`
	Summary        funnel.Summary `json:"summary"`
}

// OptimizationSection summarizes the latest budget optimization.
type OptimizationSection struct {
	OptimizationID string                  `json:"optimization_id"`
	Allocation     optimization.Allocation `json:"allocation"`
	ExpectedROI    float64                 `json:"expected_roi"`
	RiskScore      float64                 `json:"risk_score"`
	RiskLevel      optimization.RiskLevel  `json:"risk_level"`
	BreakevenMonth int                     `json:"breakeven_month"`
	Confidence     float64                 `json:"confidence"`
	MitigationPlan []string                `json:"risk_mitigation_plan"`
}

// Content is the body of a report. Sections absent from the template, or
// without data, are nil.
type Content struct {
	Project      ProjectOverview      `json:"project_overview"`
	Sections     []string             `json:"sections"`
	Summary      *SummarySection      `json:"summary,omitempty"`
	Market       *MarketSection       `json:"market,omitempty"`
	Simulation   *SimulationSection   `json:"simulation,omitempty"`
	Optimization *OptimizationSection `json:"optimization,omitempty"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// CashflowSeries is the chartable form of a simulation cashflow.
type CashflowSeries struct {
	Months           []int     `json:"months"`
	Revenue          []float64 `json:"revenue"`
	TotalCost        []float64 `json:"total_cost"`
	MonthlyProfit    []float64 `json:"monthly_profit"`
	CumulativeProfit []float64 `json:"cumulative_profit"`
}

// ChartsData holds the series clients plot next to a report.
type ChartsData struct {
	Cashflow         *CashflowSeries    `json:"cashflow,omitempty"`
	AllocationShares map[string]float64 `json:"allocation_shares,omitempty"`
	Funnel           []funnel.Stage     `json:"funnel,omitempty"`
	AgeGroups        map[string]int     `json:"age_groups,omitempty"`
}

// Report is a generated report.
type Report struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"project_id"`
	Template     Template   `json:"template"`
	Title        string     `json:"title"`
	Content      Content    `json:"content"`
	ChartsData   ChartsData `json:"charts_data"`
	ExportFormat Format     `json:"export_format,omitempty"`
	ExportedAt   *time.Time `json:"exported_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Summary is the list form of a report.
type Summary struct {
	ID           string     `json:"id"`
	Template     Template   `json:"template"`
	Title        string     `json:"title"`
	ExportFormat Format     `json:"export_format,omitempty"`
	ExportedAt   *time.Time `json:"exported_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Export is a rendered report file.
type Export struct {
	ReportID  string
	ProjectID string
	Format    Format
	Data      []byte
}

// Filename is the download name of the export.
func (e *Export) Filename() string {
	return "report_" + e.ReportID + "." + string(e.Format)
}
