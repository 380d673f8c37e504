package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/copyleftdev/clinkerline/internal/chemistry"
	"github.com/copyleftdev/clinkerline/internal/fuels"
	"github.com/copyleftdev/clinkerline/internal/mix"
	"github.com/copyleftdev/clinkerline/internal/process"
	"github.com/copyleftdev/clinkerline/internal/surrogate"
	"github.com/copyleftdev/clinkerline/internal/sustain"
)

func printMixResult(res mix.Result, month time.Month) {
	fmt.Printf("Optimal fuel blend (%s)\n", month)
	fmt.Println("=======================")
	fmt.Println()

	type share struct {
		name string
		frac float64
	}
	shares := make([]share, 0, len(res.Mix))
	for name, frac := range res.Mix {
		shares = append(shares, share{name, frac})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].frac != shares[j].frac {
			return shares[i].frac > shares[j].frac
		}
		return shares[i].name < shares[j].name
	})
	for _, s := range shares {
		fmt.Printf("  %-15s %6.1f%%\n", s.name, s.frac*100)
	}

	fmt.Println()
	fmt.Println("Blend properties")
	fmt.Println("----------------")
	fmt.Printf("  Calorific value:        %.2f MJ/kg\n", res.Properties.CalorificValue)
	fmt.Printf("  Ash:                    %.1f%%\n", res.Properties.Ash*100)
	fmt.Printf("  Moisture:               %.1f%%\n", res.Properties.Moisture*100)
	fmt.Printf("  CO2 intensity:          %.1f kg/GJ\n", res.Properties.CO2PerGJ)
	fmt.Printf("  Alternative fuel rate:  %.1f%%\n", res.Properties.AltFuelRate*100)

	fmt.Println()
	fmt.Println("Economics")
	fmt.Println("---------")
	fmt.Printf("  Blend cost:       $%s/GJ\n", res.Economics.CostPerGJ.StringFixed(3))
	fmt.Printf("  Baseline cost:    $%s/GJ\n", res.Economics.BaselineCostPerGJ.StringFixed(3))
	fmt.Printf("  Savings:          %s%% vs all-coal\n", res.Economics.SavingsPercent.StringFixed(1))
	fmt.Printf("  CO2 reduction:    %.1f%% vs all-coal\n", res.Economics.CO2ReductionPercent)
}

func printSavings(sav mix.Savings) {
	fmt.Println()
	fmt.Println("Plant projection")
	fmt.Println("----------------")
	fmt.Printf("  Monthly energy:   %s GJ\n", formatQuantity(sav.MonthlyEnergyGJ))
	fmt.Printf("  Monthly savings:  $%s\n", sav.MonthlyCost.StringFixed(0))
	fmt.Printf("  Monthly CO2 cut:  %s t\n", formatQuantity(sav.MonthlyCO2Tonnes))
	fmt.Printf("  Annual savings:   $%s\n", sav.AnnualCost.StringFixed(0))
	fmt.Printf("  Annual CO2 cut:   %s t\n", formatQuantity(sav.AnnualCO2Tonnes))
}

func printFuelTable(catalog *fuels.Catalog, m time.Month) {
	fmt.Printf("Fuel catalog, caps for %s\n", m)
	fmt.Println()
	fmt.Printf("%-15s %8s %6s %6s %10s %9s %6s\n",
		"Fuel", "CV MJ/kg", "Ash%", "H2O%", "USD/GJ", "Handling", "Cap%")
	fmt.Printf("%-15s %8s %6s %6s %10s %9s %6s\n",
		"---------------", "--------", "------", "------", "----------", "---------", "------")

	for _, p := range catalog.Fuels() {
		fmt.Printf("%-15s %8.1f %6.1f %6.1f %10s %9s %6.0f\n",
			p.Name,
			p.CalorificValue,
			p.Ash*100,
			p.Moisture*100,
			p.TotalCostPerGJ().StringFixed(2),
			p.Handling,
			p.EffectiveCap(m)*100,
		)
	}
}

func printChemistry(v chemistry.Validation, p chemistry.Phases, defined bool) {
	fmt.Println("Control ratios")
	fmt.Println("--------------")
	fmt.Printf("  LSF  %6.4f  band %.2f-%.2f  %s\n", v.LSF, chemistry.LSFMin, chemistry.LSFMax, okMark(v.LSFValid))
	fmt.Printf("  SM   %6.4f  band %.2f-%.2f  %s\n", v.SM, chemistry.SMMin, chemistry.SMMax, okMark(v.SMValid))
	fmt.Printf("  AM   %6.4f  band %.2f-%.2f  %s\n", v.AM, chemistry.AMMin, chemistry.AMMax, okMark(v.AMValid))
	if v.Valid {
		fmt.Println("  Result: IN SPEC")
	} else {
		fmt.Println("  Result: OUT OF SPEC")
	}

	fmt.Println()
	fmt.Println("Clinker phases (Bogue)")
	fmt.Println("----------------------")
	if !defined {
		fmt.Println("  Not defined for this composition.")
		return
	}
	fmt.Printf("  C3S (alite)       %5.1f%%\n", p.C3S)
	fmt.Printf("  C2S (belite)      %5.1f%%\n", p.C2S)
	fmt.Printf("  C3A (aluminate)   %5.1f%%\n", p.C3A)
	fmt.Printf("  C4AF (ferrite)    %5.1f%%\n", p.C4AF)
}

func okMark(ok bool) string {
	if ok {
		return "ok"
	}
	return "OUT"
}

func printEmissions(e sustain.Emissions, intensity float64) {
	fmt.Println("Hourly emissions")
	fmt.Println("----------------")
	fmt.Printf("  Fuel combustion:  %s kg CO2/h (%.1f%%)\n", formatQuantity(e.FuelCombustion), e.FuelPercent)
	fmt.Printf("  Electricity:      %s kg CO2/h (%.1f%%)\n", formatQuantity(e.Electricity), e.ElectricityPercent)
	fmt.Printf("  Calcination:      %s kg CO2/h (%.1f%%)\n", formatQuantity(e.Process), e.ProcessPercent)
	fmt.Printf("  Total:            %s kg CO2/h\n", formatQuantity(e.Total))
	fmt.Println()
	fmt.Printf("Carbon intensity:  %.1f kg CO2/t clinker\n", intensity)
	fmt.Println()
}

func printBenchmarks(comparisons []sustain.BenchmarkComparison) {
	fmt.Println("Benchmark position")
	fmt.Println("------------------")
	for _, c := range comparisons {
		verdict := "above"
		if c.Better {
			verdict = "below"
		}
		fmt.Printf("  %-18s %5.0f  %+7.1f (%+.1f%%, %s)\n",
			c.Name, c.Value, c.Difference, c.Percent, verdict)
	}
	fmt.Println()
}

func printCarbonCost(annualTonnes float64, scenarios []sustain.CostScenario) {
	fmt.Printf("Carbon cost exposure at %s t CO2/yr\n", formatQuantity(annualTonnes))
	fmt.Println("-----------------------------------")
	for _, sc := range scenarios {
		fmt.Printf("  %-15s $%3s/t   $%s/yr\n",
			sc.Scenario, sc.PricePerTonne.StringFixed(0), sc.Cost.StringFixed(0))
	}
}

func printScore(s sustain.Score) {
	fmt.Printf("Sustainability score: %.1f / 100  (grade %s)\n", s.Total, s.Grade)
	fmt.Println()
	fmt.Printf("  %-22s %5.1f\n", "Carbon intensity", s.Components.CarbonIntensity)
	fmt.Printf("  %-22s %5.1f\n", "Alternative fuel rate", s.Components.AltFuelRate)
	fmt.Printf("  %-22s %5.1f\n", "Energy efficiency", s.Components.EnergyEfficiency)
	fmt.Printf("  %-22s %5.1f\n", "Waste heat recovery", s.Components.WasteHeatRecovery)
	fmt.Printf("  %-22s %5.1f\n", "Circular economy", s.Components.CircularEconomy)
	fmt.Println()
	fmt.Println(s.Interpretation)
	fmt.Println()
}

func printBestPoint(best surrogate.Observation, observations int) {
	fmt.Println()
	fmt.Printf("Best operating point after %d observations (confidence %.2f)\n",
		observations, process.Confidence(observations))
	fmt.Println("------------------------------------------------------------")
	for i, b := range process.Bounds() {
		if i >= len(best.Params) {
			break
		}
		fmt.Printf("  %-18s %10.2f   [%g, %g]\n", b.Name, best.Params[i], b.Min, b.Max)
	}
	fmt.Printf("  %-18s %10.4f\n", "score", best.Value)
}

func formatQuantity(v float64) string {
	if v >= 1_000_000 {
		return fmt.Sprintf("%.2fM", v/1_000_000)
	}
	if v >= 10_000 {
		return fmt.Sprintf("%.1fK", v/1_000)
	}
	return fmt.Sprintf("%.0f", v)
}
