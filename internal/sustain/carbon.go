package sustain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Emission factors, kg CO2 per unit burned, drawn or produced.
const (
	ElectricityFactor = 0.82 // kg CO2 per kWh, India grid average
	CoalFactor        = 94.6 // kg CO2 per GJ
	DieselFactor      = 2.68 // kg CO2 per litre
	CalcinationFactor = 525  // kg CO2 per tonne of clinker
	TransportFactor   = 0.12 // kg CO2 per tonne-km
)

// Plant-scale defaults used when a snapshot omits a reading.
const (
	DefaultCoalCV      = 25.5  // GJ per tonne
	DefaultPowerDraw   = 30000 // kW
	DefaultClinkerRate = 285.0 // tonnes per hour
)

// AnnualProductionTonnes is the clinker output of a full production
// year at the default rate: 285 t/h over 24 h for 330 running days.
const AnnualProductionTonnes = DefaultClinkerRate * 24 * 330

// Benchmark is one industry carbon-intensity reference point in kg CO2
// per tonne of cement.
type Benchmark struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Benchmarks returns the industry intensity benchmarks in a fixed
// order.
func Benchmarks() []Benchmark {
	return []Benchmark{
		{Name: "world_average", Value: 650},
		{Name: "india_average", Value: 720},
		{Name: "best_in_class", Value: 550},
		{Name: "european_standard", Value: 600},
		{Name: "target_2030", Value: 520},
	}
}

// BenchmarkComparison relates a measured carbon intensity to one
// benchmark. Difference is measured minus benchmark, so negative means
// the plant outperforms it.
type BenchmarkComparison struct {
	Benchmark
	Difference float64 `json:"difference"`
	Percent    float64 `json:"percentage_difference"`
	Better     bool    `json:"better"`
}

// CompareToBenchmarks positions a carbon intensity against every
// industry benchmark.
func CompareToBenchmarks(intensity float64) []BenchmarkComparison {
	benchmarks := Benchmarks()
	out := make([]BenchmarkComparison, len(benchmarks))
	for i, b := range benchmarks {
		diff := intensity - b.Value
		out[i] = BenchmarkComparison{
			Benchmark:  b,
			Difference: round2(diff),
			Percent:    round1(diff / b.Value * 100),
			Better:     diff < 0,
		}
	}
	return out
}

// Snapshot is the hourly operating state emissions are accounted from.
// Zero fields fall back to the plant-scale defaults.
type Snapshot struct {
	FuelRate    float64 // tonnes of fuel per hour
	FuelCV      float64 // GJ per tonne of fuel
	PowerDraw   float64 // kW
	ClinkerRate float64 // tonnes of clinker per hour
}

// Emissions is an hourly CO2 account split by source, in kg CO2 per
// hour, with each source's share of the total in percent.
type Emissions struct {
	FuelCombustion float64 `json:"fuel_combustion"`
	Electricity    float64 `json:"electricity"`
	Process        float64 `json:"process_emissions"`
	Total          float64 `json:"total_kg_co2_per_hour"`

	FuelPercent        float64 `json:"fuel_combustion_percent"`
	ElectricityPercent float64 `json:"electricity_percent"`
	ProcessPercent     float64 `json:"process_emissions_percent"`
}

// EmissionsBreakdown accounts the three emission sources of clinker
// production: fuel combustion, grid electricity and calcination of the
// raw meal.
func EmissionsBreakdown(s Snapshot) Emissions {
	cv := s.FuelCV
	if cv <= 0 {
		cv = DefaultCoalCV
	}
	power := s.PowerDraw
	if power <= 0 {
		power = DefaultPowerDraw
	}
	clinker := s.ClinkerRate
	if clinker <= 0 {
		clinker = DefaultClinkerRate
	}

	e := Emissions{
		FuelCombustion: s.FuelRate * cv * CoalFactor,
		Electricity:    power * ElectricityFactor,
		Process:        clinker * CalcinationFactor,
	}
	e.Total = e.FuelCombustion + e.Electricity + e.Process
	if e.Total > 0 {
		e.FuelPercent = round1(e.FuelCombustion / e.Total * 100)
		e.ElectricityPercent = round1(e.Electricity / e.Total * 100)
		e.ProcessPercent = round1(e.Process / e.Total * 100)
	}
	return e
}

// CarbonIntensity converts an hourly emissions account to kg CO2 per
// tonne of clinker. A zero production rate yields 0.
func CarbonIntensity(e Emissions, clinkerRate float64) float64 {
	if clinkerRate <= 0 {
		return 0
	}
	return e.Total / clinkerRate
}

// AvoidedEmissions returns the tonnes of CO2 per year the plant avoids
// relative to the India average intensity, floored at zero.
func AvoidedEmissions(intensity float64) float64 {
	const indiaAverage = 720
	avoided := (indiaAverage - intensity) * AnnualProductionTonnes / 1000
	return math.Max(0, avoided)
}

// AnnualEmissionsTonnes projects an intensity onto a full production
// year.
func AnnualEmissionsTonnes(intensity float64) float64 {
	return intensity * AnnualProductionTonnes / 1000
}

// CostScenario prices a mass of emitted CO2 under one carbon-price
// regime.
type CostScenario struct {
	Scenario      string          `json:"scenario"`
	PricePerTonne decimal.Decimal `json:"price_per_tonne_usd"`
	Cost          decimal.Decimal `json:"cost_usd"`
}

// CarbonCost prices the given emissions under each scenario, in USD.
func CarbonCost(emissionsTonnes float64) []CostScenario {
	scenarios := []struct {
		name  string
		price int64
	}{
		{"current_india", 0},
		{"eu_ets", 85},
		{"social_cost", 51},
		{"paris_aligned", 120},
	}

	tonnes := decimal.NewFromFloat(emissionsTonnes)
	out := make([]CostScenario, len(scenarios))
	for i, sc := range scenarios {
		price := decimal.NewFromInt(sc.price)
		out[i] = CostScenario{
			Scenario:      sc.name,
			PricePerTonne: price,
			Cost:          tonnes.Mul(price).Round(2),
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
