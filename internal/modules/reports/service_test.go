package reports

import (
	"testing"
	"time"

	"github.com/aristath/mvt-analytics/internal/modules/analyses"
	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/internal/modules/funnel"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/aristath/mvt-analytics/internal/modules/projects"
	testingpkg "github.com/aristath/mvt-analytics/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service  *Service
	projects []testingpkg.ProjectFixture
	clock    *testingpkg.MockClock
}

// newFixture seeds the beauty project with a demographics analysis, a
// simulation and an optimization. The restaurant project has no data.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "analytics")
	t.Cleanup(cleanup)
	fixtures := testingpkg.InsertProjects(t, db.Conn())
	beauty := fixtures[0].ID

	projectRepo := projects.NewRepository(db.Conn(), zerolog.Nop())
	analysisRepo := analyses.NewRepository(db.Conn(), zerolog.Nop())
	analysisSvc := analyses.NewService(analysisRepo, projectRepo, zerolog.Nop())
	_, err := analysisSvc.Run(analyses.Request{ProjectID: beauty, Type: analyses.TypeDemographics})
	require.NoError(t, err)
	_, err = analysisSvc.Run(analyses.Request{ProjectID: beauty, Type: analyses.TypeDemand})
	require.NoError(t, err)

	simulator := funnel.NewSimulator(nil, catalog.New(), zerolog.Nop())
	in := funnel.Input{
		TargetMonthlySales: 1_000_000,
		AverageOrderValue:  10_000,
		ConversionRate:     0.03,
		SelectedMedia:      []string{catalog.GoogleAds, catalog.FacebookAds},
		Industry:           "beauty",
		FixedCosts:         200_000,
		VariableCostRate:   0.3,
	}
	out, err := simulator.Simulate(in)
	require.NoError(t, err)
	simRepo := funnel.NewRepository(db.Conn(), zerolog.Nop())
	_, err = simRepo.Save(beauty, "launch", in, out)
	require.NoError(t, err)

	optRepo := optimization.NewRepository(db.Conn(), zerolog.Nop())
	_, err = optRepo.Save(beauty, optimization.Request{Industry: "beauty"}, &optimization.OptimizationResult{
		Industry: "beauty",
		RecommendedAllocation: optimization.Allocation{
			catalog.GoogleAds:   150_000,
			catalog.FacebookAds: 50_000,
		},
		ExpectedROI:        180.5,
		RiskScore:          0.32,
		RiskLevel:          optimization.RiskMedium,
		BreakevenMonth:     5,
		Confidence:         0.7,
		RiskMitigationPlan: []string{"Review channel performance monthly"},
	})
	require.NoError(t, err)

	clock := testingpkg.NewMockClock(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(Sources{
		Projects:      projectRepo,
		Analyses:      analysisRepo,
		Simulations:   simRepo,
		Optimizations: optRepo,
	}, NewRepository(db.Conn(), zerolog.Nop()), zerolog.Nop())
	svc.now = clock.Now

	return &fixture{service: svc, projects: fixtures, clock: clock}
}

func TestGenerate_DetailedAnalysis(t *testing.T) {
	f := newFixture(t)

	rep, err := f.service.Generate(GenerateRequest{
		ProjectID: f.projects[0].ID,
		Template:  TemplateDetailedAnalysis,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, "Shibuya Salon - Detailed analysis", rep.Title)

	c := rep.Content
	assert.Equal(t, "beauty", c.Project.Industry)
	assert.Equal(t, []string{SectionSummary, SectionMarket, SectionSimulation, SectionOptimization}, c.Sections)

	require.NotNil(t, c.Summary)
	m := c.Summary.Metrics
	assert.Equal(t, 2, m.AnalysesCompleted)
	assert.Equal(t, 50000, m.TotalPopulation)
	assert.Equal(t, 8, m.BreakevenMonth)
	assert.InDelta(t, 275_000, m.RequiredBudget, 1e-6)
	assert.Equal(t, 180.5, m.ExpectedROI)
	assert.Equal(t, optimization.RiskMedium, m.RiskLevel)
	assert.Positive(t, m.MonthlyDemand)
	assert.Contains(t, c.Summary.Highlights, "Largest budget share goes to google_ads")

	require.NotNil(t, c.Market)
	assert.Len(t, c.Market.Analyses, 2)
	require.NotNil(t, c.Simulation)
	assert.Equal(t, "launch", c.Simulation.Name)
	require.NotNil(t, c.Optimization)
	assert.Equal(t, 5, c.Optimization.BreakevenMonth)

	charts := rep.ChartsData
	require.NotNil(t, charts.Cashflow)
	assert.Len(t, charts.Cashflow.Months, funnel.HorizonMonths)
	assert.Equal(t, 950_000.0, charts.Cashflow.CumulativeProfit[11])
	assert.Equal(t, map[string]float64{catalog.GoogleAds: 0.75, catalog.FacebookAds: 0.25}, charts.AllocationShares)
	assert.Len(t, charts.Funnel, 3)
	assert.NotEmpty(t, charts.AgeGroups)
}

func TestGenerate_TemplateSelectsSections(t *testing.T) {
	f := newFixture(t)

	rep, err := f.service.Generate(GenerateRequest{ProjectID: f.projects[0].ID, Title: "Q2 plan"})
	require.NoError(t, err)
	assert.Equal(t, TemplateExecutiveSummary, rep.Template)
	assert.Equal(t, "Q2 plan", rep.Title)
	assert.Nil(t, rep.Content.Market)
	assert.NotNil(t, rep.Content.Simulation)

	pitch, err := f.service.Generate(GenerateRequest{ProjectID: f.projects[0].ID, Template: TemplateInvestorPitch})
	require.NoError(t, err)
	assert.NotNil(t, pitch.Content.Market)
	assert.Nil(t, pitch.Content.Simulation)
	assert.NotNil(t, pitch.ChartsData.Cashflow, "charts do not depend on the template")
}

func TestGenerate_ProjectWithoutData(t *testing.T) {
	f := newFixture(t)

	rep, err := f.service.Generate(GenerateRequest{ProjectID: f.projects[1].ID, Template: TemplateDetailedAnalysis})
	require.NoError(t, err)
	assert.Nil(t, rep.Content.Simulation)
	assert.Nil(t, rep.Content.Optimization)
	assert.Empty(t, rep.Content.Market.Analyses)
	assert.Nil(t, rep.ChartsData.Cashflow)
	assert.Nil(t, rep.ChartsData.AllocationShares)
	require.Len(t, rep.Content.Summary.Highlights, 1)

	_, err = f.service.Export(rep.ID, FormatCSV)
	assert.ErrorIs(t, err, ErrNoCashflow)

	export, err := f.service.Export(rep.ID, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(export.Data), rep.ID)
}

func TestGenerate_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Generate(GenerateRequest{ProjectID: "missing"})
	assert.ErrorIs(t, err, projects.ErrNotFound)

	_, err = f.service.Generate(GenerateRequest{ProjectID: f.projects[0].ID, Template: "memo"})
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	_, err = f.service.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.service.Export("missing", FormatJSON)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportAndDownload(t *testing.T) {
	f := newFixture(t)

	rep, err := f.service.Generate(GenerateRequest{ProjectID: f.projects[0].ID})
	require.NoError(t, err)

	_, err = f.service.Download(rep.ID)
	assert.ErrorIs(t, err, ErrNotExported)

	f.clock.Advance(time.Minute)
	export, err := f.service.Export(rep.ID, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, f.projects[0].ID, export.ProjectID)

	got, err := f.service.Download(rep.ID)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, got.Format)
	assert.Equal(t, export.Data, got.Data)

	stored, err := f.service.Get(rep.ID)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, stored.ExportFormat)
	require.NotNil(t, stored.ExportedAt)
	assert.Equal(t, f.clock.Now().Unix(), stored.ExportedAt.Unix())

	list, err := f.service.ListByProject(f.projects[0].ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, FormatCSV, list[0].ExportFormat)
}
