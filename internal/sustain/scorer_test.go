package sustain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreTypicalOperation(t *testing.T) {
	got := NewScorer().Score(Input{
		CarbonIntensity: 700,
		AltFuelRate:     30,
		SpecificPower:   100,
	})

	// Hand-computed components:
	// carbon intensity (800-700)/250*100 = 40
	// alt fuel        min(100, 30*2)     = 60
	// energy          (120-100)/25*100   = 80
	// waste heat, circular economy defaults 70 and 50
	assert.InDelta(t, 40.0, got.Components.CarbonIntensity, 1e-9)
	assert.InDelta(t, 60.0, got.Components.AltFuelRate, 1e-9)
	assert.InDelta(t, 80.0, got.Components.EnergyEfficiency, 1e-9)
	assert.InDelta(t, 70.0, got.Components.WasteHeatRecovery, 1e-9)
	assert.InDelta(t, 50.0, got.Components.CircularEconomy, 1e-9)

	// 40*0.35 + 60*0.25 + 80*0.20 + 70*0.10 + 50*0.10 = 57
	assert.InDelta(t, 57.0, got.Total, 1e-9)
	assert.Equal(t, "C", got.Grade)
	assert.Contains(t, got.Interpretation, "improvement needed")
}

func TestScoreBestInClassOperation(t *testing.T) {
	got := NewScorer().Score(Input{
		CarbonIntensity:   520,
		AltFuelRate:       40,
		SpecificPower:     92,
		WasteHeatRecovery: 85,
		CircularEconomy:   60,
	})

	// Intensity and power both beat their floors, so those components
	// cap at 100: 35 + 20 + 20 + 8.5 + 6 = 89.5.
	assert.InDelta(t, 100.0, got.Components.CarbonIntensity, 1e-9)
	assert.InDelta(t, 100.0, got.Components.EnergyEfficiency, 1e-9)
	assert.InDelta(t, 89.5, got.Total, 1e-9)
	assert.Equal(t, "A", got.Grade)
	assert.Contains(t, got.Interpretation, "Outstanding")
}

func TestScoreFloorsAtZero(t *testing.T) {
	got := NewScorer().Score(Input{
		CarbonIntensity: 900,
		AltFuelRate:     0,
		SpecificPower:   150,
	})

	assert.InDelta(t, 0.0, got.Components.CarbonIntensity, 1e-9)
	assert.InDelta(t, 0.0, got.Components.AltFuelRate, 1e-9)
	assert.InDelta(t, 0.0, got.Components.EnergyEfficiency, 1e-9)
	assert.InDelta(t, 12.0, got.Total, 1e-9)
	assert.Equal(t, "D", got.Grade)
}

func TestScoreCapsAltFuelComponent(t *testing.T) {
	got := NewScorer().Score(Input{
		CarbonIntensity: 650,
		AltFuelRate:     75,
		SpecificPower:   100,
	})
	assert.InDelta(t, 100.0, got.Components.AltFuelRate, 1e-9)
}

func TestScoreClampsSuppliedSubScores(t *testing.T) {
	got := NewScorer().Score(Input{
		CarbonIntensity:   650,
		AltFuelRate:       30,
		SpecificPower:     100,
		WasteHeatRecovery: 150,
		CircularEconomy:   -20,
	})
	assert.InDelta(t, 100.0, got.Components.WasteHeatRecovery, 1e-9)
	assert.InDelta(t, 0.0, got.Components.CircularEconomy, 1e-9)
}

func TestGrade(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		{95, "A+"},
		{90, "A+"},
		{89.9, "A"},
		{80, "A"},
		{79.9, "B+"},
		{70, "B+"},
		{69.9, "B"},
		{60, "B"},
		{59.9, "C"},
		{50, "C"},
		{49.9, "D"},
		{0, "D"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.total), "total %v", tt.total)
	}
}
