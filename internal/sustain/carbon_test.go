package sustain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareToBenchmarks(t *testing.T) {
	got := CompareToBenchmarks(650)
	require.Len(t, got, 5)

	byName := make(map[string]BenchmarkComparison, len(got))
	for _, c := range got {
		byName[c.Name] = c
	}

	world := byName["world_average"]
	assert.Equal(t, 0.0, world.Difference)
	assert.Equal(t, 0.0, world.Percent)
	assert.False(t, world.Better, "matching the benchmark exactly is not beating it")

	india := byName["india_average"]
	assert.Equal(t, -70.0, india.Difference)
	assert.Equal(t, -9.7, india.Percent)
	assert.True(t, india.Better)

	best := byName["best_in_class"]
	assert.Equal(t, 100.0, best.Difference)
	assert.Equal(t, 18.2, best.Percent)
	assert.False(t, best.Better)

	target := byName["target_2030"]
	assert.Equal(t, 130.0, target.Difference)
	assert.Equal(t, 25.0, target.Percent)
}

func TestEmissionsBreakdown(t *testing.T) {
	e := EmissionsBreakdown(Snapshot{FuelRate: 12})

	// fuel    = 12 t/h * 25.5 GJ/t * 94.6 kg/GJ = 28947.6
	// power   = 30000 kW * 0.82 kg/kWh          = 24600
	// process = 285 t/h * 525 kg/t              = 149625
	assert.InDelta(t, 28947.6, e.FuelCombustion, 1e-6)
	assert.InDelta(t, 24600.0, e.Electricity, 1e-6)
	assert.InDelta(t, 149625.0, e.Process, 1e-6)
	assert.InDelta(t, 203172.6, e.Total, 1e-6)

	assert.Equal(t, 14.2, e.FuelPercent)
	assert.Equal(t, 12.1, e.ElectricityPercent)
	assert.Equal(t, 73.6, e.ProcessPercent)

	assert.InDelta(t, 203172.6/285, CarbonIntensity(e, 285), 1e-9)
}

func TestEmissionsBreakdownDefaults(t *testing.T) {
	e := EmissionsBreakdown(Snapshot{})

	assert.Equal(t, 0.0, e.FuelCombustion)
	assert.InDelta(t, 24600.0, e.Electricity, 1e-6)
	assert.InDelta(t, 149625.0, e.Process, 1e-6)
	assert.Equal(t, 0.0, e.FuelPercent)
	assert.Equal(t, 14.1, e.ElectricityPercent)
	assert.Equal(t, 85.9, e.ProcessPercent)
}

func TestCarbonIntensityZeroProduction(t *testing.T) {
	e := EmissionsBreakdown(Snapshot{FuelRate: 12})
	assert.Equal(t, 0.0, CarbonIntensity(e, 0))
}

func TestAvoidedEmissions(t *testing.T) {
	// (720 - 650) * 2257200 / 1000 = 158004 t/year
	assert.InDelta(t, 158004.0, AvoidedEmissions(650), 1e-6)
	assert.Equal(t, 0.0, AvoidedEmissions(800), "worse than the baseline avoids nothing")
}

func TestAnnualEmissionsTonnes(t *testing.T) {
	assert.InDelta(t, 1580040.0, AnnualEmissionsTonnes(700), 1e-6)
}

func TestCarbonCost(t *testing.T) {
	got := CarbonCost(1580040)
	require.Len(t, got, 4)

	wantOrder := []string{"current_india", "eu_ets", "social_cost", "paris_aligned"}
	wantCost := []int64{0, 134303400, 80582040, 189604800}
	for i, c := range got {
		assert.Equal(t, wantOrder[i], c.Scenario)
		assert.True(t, c.Cost.Equal(decimal.NewFromInt(wantCost[i])),
			"scenario %s: got %s want %d", c.Scenario, c.Cost, wantCost[i])
	}
}
