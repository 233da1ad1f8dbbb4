package analyses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulation(t *testing.T) {
	assert.Equal(t, 50000, Population(1))
	assert.Equal(t, 50000, Population(0))
	assert.Equal(t, 50000, Population(-2))
	assert.Equal(t, 100000, Population(2))
	assert.Equal(t, 25000, Population(0.5))
}

func TestDemandRate(t *testing.T) {
	assert.Equal(t, 0.03, DemandRate("beauty"))
	assert.Equal(t, 0.03, DemandRate("beauty_salon"))
	assert.Equal(t, 0.08, DemandRate(" Restaurant "))
	assert.Equal(t, 0.025, DemandRate("healthcare"))
	assert.Equal(t, 0.04, DemandRate("fitness"))
}

func TestGenerate_Demographics(t *testing.T) {
	r, err := Generate(TypeDemographics, "beauty", 1)
	require.NoError(t, err)
	require.NotNil(t, r.PopulationData)
	assert.Nil(t, r.CompetitorData)

	assert.Equal(t, 50000, r.PopulationData.TotalPopulation)
	assert.Equal(t, 21739, r.PopulationData.Households)
	assert.Equal(t, 7500, r.PopulationData.AgeGroups["20-29"])
	assert.Equal(t, 12500, r.PopulationData.AgeGroups["60+"])
	assert.Equal(t, 27500, r.PopulationData.IncomeBrackets["middle"])
}

func TestGenerate_Competitors(t *testing.T) {
	r, err := Generate(TypeCompetitors, "beauty", 1)
	require.NoError(t, err)
	require.NotNil(t, r.CompetitorData)

	c := r.CompetitorData
	assert.Equal(t, 12, c.TotalCompetitors)
	assert.Equal(t, 0.24, c.CompetitorDensity)
	assert.Equal(t, 350, c.AverageDistance)
	require.Len(t, c.Competitors, 5)
	assert.Equal(t, "Competitor 1", c.Competitors[0].Name)
	assert.Equal(t, 200, c.Competitors[0].Distance)
	assert.Equal(t, 3.9, c.Competitors[4].Rating)

	wide, err := Generate(TypeCompetitors, "beauty", 2)
	require.NoError(t, err)
	assert.Equal(t, 24, wide.CompetitorData.TotalCompetitors)
	assert.Equal(t, 700, wide.CompetitorData.AverageDistance)
}

func TestGenerate_Demand(t *testing.T) {
	r, err := Generate(TypeDemand, "restaurant", 1)
	require.NoError(t, err)
	require.NotNil(t, r.DemandMetrics)
	assert.Equal(t, 4000, r.DemandMetrics.MonthlyDemand)
	assert.Equal(t, 3000, r.DemandMetrics.AddressableMarket)
	assert.Equal(t, 1.2, r.DemandMetrics.SeasonalFactor)
}

func TestGenerate_ROI(t *testing.T) {
	r, err := Generate(TypeROI, "beauty", 1)
	require.NoError(t, err)
	require.NotNil(t, r.ROIProjections)
	assert.Len(t, r.ROIProjections.InvestmentScenarios, 3)
	assert.Equal(t, int64(350000), r.ROIProjections.InvestmentScenarios["moderate"].Budget)
}

func TestGenerate_UnknownType(t *testing.T) {
	_, err := Generate(Type("weather"), "beauty", 1)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.False(t, Type("weather").Valid())
	assert.True(t, TypeROI.Valid())
}
