package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/clinkerline/internal/mix"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinkerline",
		Short: "Cement plant fuel, process and carbon optimization toolkit",
	}

	rootCmd.AddCommand(mixCmd())
	rootCmd.AddCommand(fuelsCmd())
	rootCmd.AddCommand(chemistryCmd())
	rootCmd.AddCommand(carbonCmd())
	rootCmd.AddCommand(sustainabilityCmd())
	rootCmd.AddCommand(tuneCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func mixCmd() *cobra.Command {
	var opts mixOptions

	cmd := &cobra.Command{
		Use:   "mix",
		Short: "Solve the cheapest fuel blend for a thermal demand",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMix(opts)
		},
	}

	cmd.Flags().Float64Var(&opts.energyGJ, "energy",
		mix.DefaultMonthlyProductionTonnes*mix.DefaultHeatRateGJPerTonne,
		"thermal demand in GJ")
	cmd.Flags().IntVar(&opts.month, "month", 0, "calendar month 1-12 (0 = current)")
	cmd.Flags().Float64Var(&opts.maxAFR, "max-afr", 0.65, "alternative-fuel energy share cap")
	cmd.Flags().Float64Var(&opts.maxAsh, "max-ash", 0.14, "blend ash fraction cap")
	cmd.Flags().Float64Var(&opts.maxMoisture, "max-moisture", 0.20, "blend moisture fraction cap")
	cmd.Flags().Float64Var(&opts.maxCO2, "max-co2", 0, "blend CO2 cap in kg/GJ (0 = off)")
	cmd.Flags().Float64Var(&opts.costPriority, "cost-priority", 1.0,
		"cost weight in [0,1]; the remainder weights CO2")
	cmd.Flags().Float64Var(&opts.production, "production", 0,
		"monthly clinker production in tonnes for the savings projection (0 = plant default)")
	cmd.Flags().Float64Var(&opts.heatRate, "heat-rate", 0,
		"specific heat demand in GJ/t for the savings projection (0 = plant default)")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "fuel catalog YAML (default: built-in)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "emit the result as JSON")
	return cmd
}

func fuelsCmd() *cobra.Command {
	var opts fuelsOptions

	cmd := &cobra.Command{
		Use:   "fuels",
		Short: "List the fuel catalog with this month's blend caps",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runFuels(opts)
		},
	}

	cmd.Flags().IntVar(&opts.month, "month", 0, "calendar month 1-12 (0 = current)")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "fuel catalog YAML (default: built-in)")
	return cmd
}

func chemistryCmd() *cobra.Command {
	var opts chemistryOptions

	cmd := &cobra.Command{
		Use:   "chemistry",
		Short: "Check raw meal control ratios and estimate clinker phases",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runChemistry(opts)
		},
	}

	cmd.Flags().Float64Var(&opts.cao, "cao", 0, "CaO mass percent")
	cmd.Flags().Float64Var(&opts.sio2, "sio2", 0, "SiO2 mass percent")
	cmd.Flags().Float64Var(&opts.al2o3, "al2o3", 0, "Al2O3 mass percent")
	cmd.Flags().Float64Var(&opts.fe2o3, "fe2o3", 0, "Fe2O3 mass percent")
	cmd.Flags().Float64Var(&opts.so3, "so3", 0, "SO3 mass percent")
	return cmd
}

func carbonCmd() *cobra.Command {
	var opts carbonOptions

	cmd := &cobra.Command{
		Use:   "carbon",
		Short: "Break down hourly CO2 emissions and price the annual total",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCarbon(opts)
		},
	}

	cmd.Flags().Float64Var(&opts.fuelRate, "fuel-rate", 0, "coal firing rate in t/h (0 = excluded)")
	cmd.Flags().Float64Var(&opts.fuelCV, "fuel-cv", 0, "fuel calorific value in GJ/t (0 = default)")
	cmd.Flags().Float64Var(&opts.powerDraw, "power-kw", 0, "electrical draw in kW (0 = default)")
	cmd.Flags().Float64Var(&opts.clinkerRate, "clinker-rate", 0, "clinker production in t/h (0 = default)")
	return cmd
}

func sustainabilityCmd() *cobra.Command {
	var opts sustainabilityOptions

	cmd := &cobra.Command{
		Use:   "sustainability",
		Short: "Grade plant sustainability from its operating indicators",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSustainability(opts)
		},
	}

	cmd.Flags().Float64Var(&opts.intensity, "intensity", 0, "carbon intensity in kg CO2 per tonne clinker")
	cmd.Flags().Float64Var(&opts.afrPercent, "afr", 0, "alternative fuel substitution in percent")
	cmd.Flags().Float64Var(&opts.power, "power", 0, "specific power in kWh per tonne")
	cmd.Flags().Float64Var(&opts.wasteHeat, "whr", 0, "waste heat recovery score 0-100 (0 = default)")
	cmd.Flags().Float64Var(&opts.circular, "circular", 0, "circular economy score 0-100 (0 = default)")
	return cmd
}

func tuneCmd() *cobra.Command {
	var opts tuneOptions

	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Run the kiln parameter search against the built-in objective",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTune(opts)
		},
	}

	cmd.Flags().IntVar(&opts.iterations, "iterations", 25, "number of suggest/observe rounds")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed (0 = from clock)")
	cmd.Flags().IntVar(&opts.warmup, "warmup", 0, "random warm-up samples before the model engages (0 = default)")
	cmd.Flags().IntVar(&opts.restarts, "restarts", 0, "acquisition optimizer restarts (0 = scale with dimension)")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "log the search internals")
	return cmd
}
