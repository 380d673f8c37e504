// Package sustain scores plant sustainability and carbon performance:
// a weighted component score with letter grades, industry benchmark
// comparison, an emissions breakdown by source and carbon-price cost
// scenarios. All calculations are pure and safe for concurrent use.
package sustain

import "math"

// Component weights of the total score.
const (
	weightCarbonIntensity = 0.35
	weightAltFuelRate     = 0.25
	weightEnergy          = 0.20
	weightWasteHeat       = 0.10
	weightCircular        = 0.10
)

// Carbon-intensity scoring band, kg CO2 per tonne of cement. Intensity
// at or below the floor scores 100, at or above the ceiling scores 0.
const (
	intensityFloor   = 550.0
	intensityCeiling = 800.0
)

// Specific-power scoring band, kWh per tonne of cement.
const (
	powerFloor   = 95.0
	powerCeiling = 120.0
)

// Default assessments for the two components no plant sensor measures
// directly.
const (
	DefaultWasteHeatScore = 70.0
	DefaultCircularScore  = 50.0
)

// Input carries the plant indicators the score is computed from.
type Input struct {
	// CarbonIntensity is the specific emission rate in kg CO2 per
	// tonne of cement.
	CarbonIntensity float64

	// AltFuelRate is the thermal substitution rate in percent (30%
	// substitution is 30, not 0.3).
	AltFuelRate float64

	// SpecificPower is the electrical consumption in kWh per tonne.
	SpecificPower float64

	// WasteHeatRecovery and CircularEconomy are externally assessed
	// sub-scores on a 0-100 scale. Zero selects the package default.
	WasteHeatRecovery float64
	CircularEconomy   float64
}

// Components holds the five sub-scores, each on a 0-100 scale.
type Components struct {
	CarbonIntensity   float64 `json:"carbon_intensity"`
	AltFuelRate       float64 `json:"alternative_fuel_rate"`
	EnergyEfficiency  float64 `json:"energy_efficiency"`
	WasteHeatRecovery float64 `json:"waste_heat_recovery"`
	CircularEconomy   float64 `json:"circular_economy"`
}

// Score is the weighted sustainability assessment of one operating
// state.
type Score struct {
	Total          float64    `json:"total_score"`
	Grade          string     `json:"grade"`
	Components     Components `json:"component_scores"`
	Interpretation string     `json:"interpretation"`
}

// Scorer computes sustainability scores. The zero value is not usable;
// construct with NewScorer.
type Scorer struct {
	wasteHeatDefault float64
	circularDefault  float64
}

// NewScorer returns a scorer with the standard component defaults.
func NewScorer() *Scorer {
	return &Scorer{
		wasteHeatDefault: DefaultWasteHeatScore,
		circularDefault:  DefaultCircularScore,
	}
}

// Score rates the operating state on a 0-100 scale and assigns a letter
// grade. Sub-scores are rounded to one decimal before weighting.
func (s *Scorer) Score(in Input) Score {
	whr := in.WasteHeatRecovery
	if whr == 0 {
		whr = s.wasteHeatDefault
	}
	circular := in.CircularEconomy
	if circular == 0 {
		circular = s.circularDefault
	}

	components := Components{
		CarbonIntensity:   round1(bandScore(in.CarbonIntensity, intensityFloor, intensityCeiling)),
		AltFuelRate:       round1(math.Min(100, in.AltFuelRate*2)),
		EnergyEfficiency:  round1(bandScore(in.SpecificPower, powerFloor, powerCeiling)),
		WasteHeatRecovery: round1(clampScore(whr)),
		CircularEconomy:   round1(clampScore(circular)),
	}

	total := round1(components.CarbonIntensity*weightCarbonIntensity +
		components.AltFuelRate*weightAltFuelRate +
		components.EnergyEfficiency*weightEnergy +
		components.WasteHeatRecovery*weightWasteHeat +
		components.CircularEconomy*weightCircular)

	return Score{
		Total:          total,
		Grade:          Grade(total),
		Components:     components,
		Interpretation: interpret(total),
	}
}

// Grade maps a total score to its letter grade.
func Grade(total float64) string {
	switch {
	case total >= 90:
		return "A+"
	case total >= 80:
		return "A"
	case total >= 70:
		return "B+"
	case total >= 60:
		return "B"
	case total >= 50:
		return "C"
	default:
		return "D"
	}
}

func interpret(total float64) string {
	switch {
	case total >= 80:
		return "Outstanding sustainability performance. Leading industry standards."
	case total >= 70:
		return "Good sustainability practices. Above average performance."
	case total >= 60:
		return "Moderate sustainability. Room for improvement in key areas."
	default:
		return "Sustainability improvement needed. Focus on emissions reduction strategies."
	}
}

// bandScore maps v linearly to 100 at the floor and 0 at the ceiling,
// clamped to [0, 100]. Lower v is better.
func bandScore(v, floor, ceiling float64) float64 {
	return clampScore((ceiling - v) / (ceiling - floor) * 100)
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
