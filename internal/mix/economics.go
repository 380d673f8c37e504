package mix

import (
	"github.com/shopspring/decimal"

	cerrors "github.com/copyleftdev/clinkerline/internal/errors"
	"github.com/copyleftdev/clinkerline/internal/fuels"
)

// Plant-scale defaults for savings projections.
const (
	DefaultMonthlyProductionTonnes = 85500.0
	DefaultHeatRateGJPerTonne      = 3.2
)

var hundred = decimal.NewFromInt(100)

// Economics compares a blend against firing the baseline fuel alone.
// Monetary figures are exact decimals; deltas are positive when the
// blend is cheaper or cleaner than the baseline.
type Economics struct {
	CostPerGJ         decimal.Decimal
	BaselineCostPerGJ decimal.Decimal
	CostDeltaPerGJ    decimal.Decimal
	SavingsPercent    decimal.Decimal

	BaselineCO2PerGJ    float64
	CO2DeltaPerGJ       float64
	CO2ReductionPercent float64
}

// economics prices the blend. The baseline comparison always uses the
// catalog's baseline fuel at full share.
func (o *Optimizer) economics(profiles []fuels.Profile, shares []float64, props BlendProperties) Economics {
	cost := decimal.Zero
	for i, p := range profiles {
		cost = cost.Add(p.TotalCostPerGJ().Mul(decimal.NewFromFloat(shares[i])))
	}

	baseline := profiles[0].TotalCostPerGJ()
	delta := baseline.Sub(cost)

	savings := decimal.Zero
	if !baseline.IsZero() {
		savings = delta.Div(baseline).Mul(hundred)
	}

	baseCO2 := profiles[0].CO2PerGJ
	co2Delta := baseCO2 - props.CO2PerGJ
	var co2Pct float64
	if baseCO2 > 0 {
		co2Pct = co2Delta / baseCO2 * 100
	}

	return Economics{
		CostPerGJ:           cost,
		BaselineCostPerGJ:   baseline,
		CostDeltaPerGJ:      delta,
		SavingsPercent:      savings,
		BaselineCO2PerGJ:    baseCO2,
		CO2DeltaPerGJ:       co2Delta,
		CO2ReductionPercent: co2Pct,
	}
}

// Savings projects a blend's per-GJ deltas onto plant throughput.
type Savings struct {
	MonthlyEnergyGJ  float64
	MonthlyCost      decimal.Decimal
	MonthlyCO2Tonnes float64
	AnnualCost       decimal.Decimal
	AnnualCO2Tonnes  float64
}

// MonthlySavings scales the blend's economics to a monthly production
// volume. Non-positive production or heat rate values fall back to the
// plant defaults. The result is only meaningful for successful solves.
func (o *Optimizer) MonthlySavings(res Result, productionTonnes, heatRateGJPerTonne float64) (Savings, error) {
	const op = "Mix.MonthlySavings"

	if !res.Success {
		return Savings{}, cerrors.New("cannot project savings from a failed solve").WithOp(op).WithComponent("fuel_mix")
	}
	if productionTonnes <= 0 {
		productionTonnes = DefaultMonthlyProductionTonnes
	}
	if heatRateGJPerTonne <= 0 {
		heatRateGJPerTonne = DefaultHeatRateGJPerTonne
	}

	energyGJ := productionTonnes * heatRateGJPerTonne
	energy := decimal.NewFromFloat(energyGJ)

	monthlyCost := res.Economics.CostDeltaPerGJ.Mul(energy).Round(2)
	monthlyCO2 := res.Economics.CO2DeltaPerGJ * energyGJ / 1000

	return Savings{
		MonthlyEnergyGJ:  energyGJ,
		MonthlyCost:      monthlyCost,
		MonthlyCO2Tonnes: monthlyCO2,
		AnnualCost:       monthlyCost.Mul(decimal.NewFromInt(12)).Round(2),
		AnnualCO2Tonnes:  monthlyCO2 * 12,
	}, nil
}
