package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/copyleftdev/clinkerline/internal/chemistry"
	"github.com/copyleftdev/clinkerline/internal/fuels"
	"github.com/copyleftdev/clinkerline/internal/logging"
	"github.com/copyleftdev/clinkerline/internal/mix"
	"github.com/copyleftdev/clinkerline/internal/process"
	"github.com/copyleftdev/clinkerline/internal/surrogate"
	"github.com/copyleftdev/clinkerline/internal/sustain"
)

type mixOptions struct {
	energyGJ     float64
	month        int
	maxAFR       float64
	maxAsh       float64
	maxMoisture  float64
	maxCO2       float64
	costPriority float64
	production   float64
	heatRate     float64
	catalogPath  string
	jsonOut      bool
}

type fuelsOptions struct {
	month       int
	catalogPath string
}

type chemistryOptions struct {
	cao, sio2, al2o3, fe2o3, so3 float64
}

type carbonOptions struct {
	fuelRate    float64
	fuelCV      float64
	powerDraw   float64
	clinkerRate float64
}

type sustainabilityOptions struct {
	intensity  float64
	afrPercent float64
	power      float64
	wasteHeat  float64
	circular   float64
}

type tuneOptions struct {
	iterations int
	seed       int64
	warmup     int
	restarts   int
	verbose    bool
}

func loadCatalog(path string) (*fuels.Catalog, error) {
	if path == "" {
		return fuels.Default(), nil
	}
	return fuels.LoadYAML(path)
}

func resolveMonth(m int) (time.Month, error) {
	if m == 0 {
		return time.Now().Month(), nil
	}
	if m < 1 || m > 12 {
		return 0, fmt.Errorf("month must be in 1..12, got %d", m)
	}
	return time.Month(m), nil
}

func runMix(opts mixOptions) error {
	catalog, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}
	month, err := resolveMonth(opts.month)
	if err != nil {
		return err
	}

	req := mix.NewRequest(opts.energyGJ)
	req.MaxAsh = opts.maxAsh
	req.MaxMoisture = opts.maxMoisture
	req.MaxCO2PerGJ = opts.maxCO2
	req.MaxAltFuelRate = opts.maxAFR
	req.CostPriority = opts.costPriority
	req.Month = month

	optimizer := mix.NewOptimizer(catalog, zap.NewNop())
	res, err := optimizer.Optimize(req)
	if err != nil {
		return err
	}

	if !res.Success {
		if opts.jsonOut {
			return writeJSON(map[string]interface{}{
				"success": false,
				"reason":  res.Reason,
			})
		}
		fmt.Printf("No feasible blend: %s\n", res.Reason)
		return nil
	}

	savings, err := optimizer.MonthlySavings(res, opts.production, opts.heatRate)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeJSON(map[string]interface{}{
			"success":   true,
			"month":     month.String(),
			"fractions": res.Fractions,
			"mix":       res.Mix,
			"properties": map[string]interface{}{
				"calorific_value_mj_kg": res.Properties.CalorificValue,
				"ash":                   res.Properties.Ash,
				"moisture":              res.Properties.Moisture,
				"co2_per_gj":            res.Properties.CO2PerGJ,
				"alt_fuel_rate":         res.Properties.AltFuelRate,
			},
			"economics": map[string]interface{}{
				"cost_per_gj":           res.Economics.CostPerGJ,
				"baseline_cost_per_gj":  res.Economics.BaselineCostPerGJ,
				"cost_delta_per_gj":     res.Economics.CostDeltaPerGJ,
				"savings_percent":       res.Economics.SavingsPercent,
				"co2_reduction_percent": res.Economics.CO2ReductionPercent,
			},
			"savings": map[string]interface{}{
				"monthly_energy_gj":  savings.MonthlyEnergyGJ,
				"monthly_cost_usd":   savings.MonthlyCost,
				"monthly_co2_tonnes": savings.MonthlyCO2Tonnes,
				"annual_cost_usd":    savings.AnnualCost,
				"annual_co2_tonnes":  savings.AnnualCO2Tonnes,
			},
		})
	}

	printMixResult(res, month)
	printSavings(savings)
	return nil
}

func runFuels(opts fuelsOptions) error {
	catalog, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}
	month, err := resolveMonth(opts.month)
	if err != nil {
		return err
	}

	printFuelTable(catalog, month)
	return nil
}

func runChemistry(opts chemistryOptions) error {
	comp := chemistry.Composition{
		CaO:   opts.cao,
		SiO2:  opts.sio2,
		Al2O3: opts.al2o3,
		Fe2O3: opts.fe2o3,
		SO3:   opts.so3,
	}

	v := chemistry.Validate(comp)
	if v.Undefined {
		return fmt.Errorf("all oxides are zero; pass at least --cao and --sio2")
	}

	phases, defined := chemistry.ClinkerPhases(comp)
	printChemistry(v, phases, defined)
	return nil
}

func runCarbon(opts carbonOptions) error {
	emissions := sustain.EmissionsBreakdown(sustain.Snapshot{
		FuelRate:    opts.fuelRate,
		FuelCV:      opts.fuelCV,
		PowerDraw:   opts.powerDraw,
		ClinkerRate: opts.clinkerRate,
	})

	clinkerRate := opts.clinkerRate
	if clinkerRate <= 0 {
		clinkerRate = sustain.DefaultClinkerRate
	}
	intensity := sustain.CarbonIntensity(emissions, clinkerRate)
	annual := sustain.AnnualEmissionsTonnes(intensity)

	printEmissions(emissions, intensity)
	printBenchmarks(sustain.CompareToBenchmarks(intensity))
	fmt.Printf("Avoided vs India average:  %s t CO2/yr\n", formatQuantity(sustain.AvoidedEmissions(intensity)))
	printCarbonCost(annual, sustain.CarbonCost(annual))
	return nil
}

func runSustainability(opts sustainabilityOptions) error {
	scorer := sustain.NewScorer()
	score := scorer.Score(sustain.Input{
		CarbonIntensity:   opts.intensity,
		AltFuelRate:       opts.afrPercent,
		SpecificPower:     opts.power,
		WasteHeatRecovery: opts.wasteHeat,
		CircularEconomy:   opts.circular,
	})

	printScore(score)
	printBenchmarks(sustain.CompareToBenchmarks(opts.intensity))
	return nil
}

func runTune(opts tuneOptions) error {
	zlog := zap.NewNop()
	if opts.verbose {
		zlog = logging.NewZapLogger(logging.New(logging.DebugLevel, os.Stderr))
	}

	search, err := surrogate.New(surrogate.Config{
		Bounds:        process.SearchBounds(),
		WarmupSamples: opts.warmup,
		Restarts:      opts.restarts,
		Seed:          opts.seed,
		Logger:        zlog,
	})
	if err != nil {
		return err
	}

	objective := process.NewObjective()
	for i := 1; i <= opts.iterations; i++ {
		point := search.SuggestNext()
		value := objective.Score(point, process.ScoreContext{})
		if err := search.Update(point, value); err != nil {
			return err
		}

		best, _ := search.Best()
		phase := "model"
		if i <= search.Warmup() {
			phase = "warmup"
		}
		fmt.Printf("iter %3d/%d  [%s]  score %.4f  best %.4f\n",
			i, opts.iterations, phase, value, best.Value)
	}

	best, ok := search.Best()
	if !ok {
		return fmt.Errorf("no observations recorded")
	}
	printBestPoint(best, search.Observations())
	return nil
}

func writeJSON(payload interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
