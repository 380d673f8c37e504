package process

import "math"

// Process setpoints and scaling factors for the scoring function.
const (
	optimalKilnTemp     = 1450.0
	optimalAirFuelRatio = 10.0
	optimalResidence    = 30.0
	optimalKilnSpeed    = 4.0

	// coalCO2PerGJ is the emission intensity of pure coal firing, the
	// baseline the environmental term discounts against.
	coalCO2PerGJ = 94.6

	// maxCO2Reduction caps how much of the baseline emission the
	// available alternative fuels can displace.
	maxCO2Reduction = 0.5

	// tonnesToReduction converts on-site alternative-fuel tonnage into
	// displacement potential relative to the firing rate.
	tonnesToReduction = 0.001

	referenceAmbient     = 25.0
	weatherPenaltyPerDeg = 0.001
)

// ScoreContext carries the environmental context for one scoring call.
type ScoreContext struct {
	// AmbientTemperature in degC enables the weather penalty when set.
	AmbientTemperature *float64

	// FuelAvailability maps fuel names to on-site tonnages available
	// for co-firing.
	FuelAvailability map[string]float64
}

// Objective is the weighted multi-objective score over the operating
// space. Higher is better. The zero value is unusable; NewObjective
// returns the plant weighting.
type Objective struct {
	EnergyWeight      float64
	QualityWeight     float64
	EnvironmentWeight float64
}

// NewObjective returns the objective with the plant weights 0.40 energy,
// 0.35 quality, 0.25 environmental.
func NewObjective() *Objective {
	return &Objective{
		EnergyWeight:      0.40,
		QualityWeight:     0.35,
		EnvironmentWeight: 0.25,
	}
}

// Score evaluates an operating point in canonical vector order. Each
// sub-score is clamped to [0, 1] before weighting; the ambient-weather
// penalty is subtracted afterwards. Vectors of the wrong length score
// zero.
func (o *Objective) Score(params []float64, sc ScoreContext) float64 {
	if len(params) != Dim {
		return 0
	}
	kilnTemp := params[0]
	kilnSpeed := params[1]
	fuelRate := params[2]
	airFlow := params[3]
	residence := params[4]
	// Feed rate (params[5]) does not enter the score; it is part of the
	// operating point for the downstream consumers.

	score := o.EnergyWeight*o.energyEfficiency(kilnTemp, fuelRate, airFlow) +
		o.QualityWeight*o.qualityScore(kilnTemp, residence, kilnSpeed) +
		o.EnvironmentWeight*o.environmentalScore(fuelRate, sc.FuelAvailability)

	if sc.AmbientTemperature != nil {
		score -= math.Abs(*sc.AmbientTemperature-referenceAmbient) * weatherPenaltyPerDeg
	}
	return score
}

// energyEfficiency rewards operating near the 1450 degC burning zone,
// low firing rates and a 10:1 air-to-fuel ratio.
func (o *Objective) energyEfficiency(kilnTemp, fuelRate, airFlow float64) float64 {
	tempEff := clamp01(1 - math.Abs(kilnTemp-optimalKilnTemp)/150)
	fuelEff := clamp01(1 - (fuelRate-8)/7)

	var ratioEff float64
	if fuelRate > 0 {
		ratioEff = clamp01(1 - math.Abs(airFlow/fuelRate-optimalAirFuelRatio)/optimalAirFuelRatio)
	}
	return (tempEff + fuelEff + ratioEff) / 3
}

// qualityScore rewards the clinker-formation setpoints: burning-zone
// temperature, 30 min residence and 4 rpm kiln speed.
func (o *Objective) qualityScore(kilnTemp, residence, kilnSpeed float64) float64 {
	tempQ := clamp01(1 - math.Abs(kilnTemp-optimalKilnTemp)/100)
	timeQ := clamp01(1 - math.Abs(residence-optimalResidence)/10)
	speedQ := clamp01(1 - math.Abs(kilnSpeed-optimalKilnSpeed)/2)
	return (tempQ + timeQ + speedQ) / 3
}

// environmentalScore discounts the coal-firing baseline emission by the
// displacement potential of the alternative fuels on site.
func (o *Objective) environmentalScore(fuelRate float64, availability map[string]float64) float64 {
	if fuelRate <= 0 {
		return 0
	}
	baseCO2 := fuelRate * coalCO2PerGJ

	var potential float64
	for _, tonnes := range availability {
		potential += tonnes * tonnesToReduction
	}
	reduction := math.Min(maxCO2Reduction, potential/fuelRate)

	return clamp01(1 - baseCO2*(1-reduction)/(fuelRate*100))
}

// Confidence maps an observation count to a reported confidence level,
// saturating at 0.95.
func Confidence(observations int) float64 {
	return math.Min(0.95, 0.5+0.05*float64(observations))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
