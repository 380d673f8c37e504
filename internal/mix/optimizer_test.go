package mix

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/copyleftdev/clinkerline/internal/fuels"
)

const tol = 1e-6

func newTestOptimizer(t *testing.T) *Optimizer {
	t.Helper()
	return NewOptimizer(fuels.Default(), zaptest.NewLogger(t))
}

func fractionSum(fractions map[string]float64) float64 {
	var sum float64
	for _, f := range fractions {
		sum += f
	}
	return sum
}

// February keeps the seasonal multipliers simple: rice husk at 1.0 and
// biomass at 0.6, so the effective caps are 0.35, 0.35, 0.15, 0.45 and
// 0.25 for the five alternatives.
func TestOptimizeDefaultRequest(t *testing.T) {
	o := newTestOptimizer(t)

	req := NewRequest(1000)
	req.Month = time.February

	res, err := o.Optimize(req)
	require.NoError(t, err)
	require.True(t, res.Success, "default request must be feasible: %s", res.Reason)

	assert.InDelta(t, 1.0, fractionSum(res.Fractions), tol, "fractions must sum to one")

	// Cheapest-first within the 65% alternative ceiling: RDF and
	// plastic to their handling caps, rice husk takes the remainder.
	want := map[string]float64{
		"coal":          0.35,
		"rice_husk":     0.05,
		"rdf":           0.35,
		"biomass":       0,
		"petcoke":       0,
		"plastic_waste": 0.25,
	}
	for name, frac := range want {
		assert.InDelta(t, frac, res.Fractions[name], tol, "fraction for %s", name)
	}

	for _, p := range o.Catalog().Fuels() {
		assert.LessOrEqual(t, res.Fractions[p.Name], p.EffectiveCap(time.February)+tol,
			"%s exceeds its effective cap", p.Name)
	}

	assert.Len(t, res.Mix, 4, "zero-share fuels must not be reported")
	assert.NotContains(t, res.Mix, "biomass")
	assert.NotContains(t, res.Mix, "petcoke")

	assert.InDelta(t, 23.21, res.Properties.CalorificValue, tol)
	assert.InDelta(t, 0.1285, res.Properties.Ash, tol)
	assert.InDelta(t, 0.1155, res.Properties.Moisture, tol)
	assert.InDelta(t, 59.315, res.Properties.CO2PerGJ, tol)
	assert.InDelta(t, 0.65, res.Properties.AltFuelRate, tol)
	assert.LessOrEqual(t, res.Properties.Ash, req.MaxAsh+tol)
	assert.LessOrEqual(t, res.Properties.Moisture, req.MaxMoisture+tol)

	assert.True(t, res.Economics.BaselineCostPerGJ.Equal(decimal.NewFromFloat(3.2)))
	assert.InDelta(t, 1.855, res.Economics.CostPerGJ.InexactFloat64(), tol)
	assert.InDelta(t, 1.345, res.Economics.CostDeltaPerGJ.InexactFloat64(), tol)
	assert.InDelta(t, 42.03125, res.Economics.SavingsPercent.InexactFloat64(), 1e-3)
	assert.InDelta(t, 94.6, res.Economics.BaselineCO2PerGJ, tol)
	assert.InDelta(t, 35.285, res.Economics.CO2DeltaPerGJ, tol)
	assert.InDelta(t, 37.29915, res.Economics.CO2ReductionPercent, 1e-3)
}

func TestOptimizeZeroAltFuelRate(t *testing.T) {
	o := newTestOptimizer(t)

	req := NewRequest(500)
	req.Month = time.February
	req.MaxAltFuelRate = 0

	res, err := o.Optimize(req)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	assert.InDelta(t, 1.0, res.Fractions["coal"], tol, "a zero alternative ceiling must yield pure baseline firing")
	for _, name := range []string{"rice_husk", "rdf", "biomass", "petcoke", "plastic_waste"} {
		assert.InDelta(t, 0, res.Fractions[name], tol, "fraction for %s", name)
	}
	assert.InDelta(t, 0, res.Properties.AltFuelRate, tol)
	assert.InDelta(t, 3.2, res.Economics.CostPerGJ.InexactFloat64(), tol)
	assert.InDelta(t, 0, res.Economics.SavingsPercent.InexactFloat64(), tol)
}

func TestOptimizeBaselineCoversZeroAlternatives(t *testing.T) {
	o := newTestOptimizer(t)

	req := NewRequest(1000)
	req.Month = time.February
	req.Availability = map[string]float64{
		"rice_husk":     0,
		"rdf":           0,
		"biomass":       0,
		"petcoke":       0,
		"plastic_waste": 0,
	}

	res, err := o.Optimize(req)
	require.NoError(t, err)
	require.True(t, res.Success, "unlimited baseline must keep the program feasible: %s", res.Reason)
	assert.InDelta(t, 1.0, res.Fractions["coal"], tol)
}

func TestOptimizeInfeasible(t *testing.T) {
	o := newTestOptimizer(t)

	tests := []struct {
		name         string
		availability map[string]float64
		wantReason   string
	}{
		{
			name:         "baseline gone, alternative ceiling binds",
			availability: map[string]float64{"coal": 0},
			wantReason:   "alternative-fuel rate",
		},
		{
			name: "total availability below demand",
			availability: map[string]float64{
				"coal":          0.1,
				"rice_husk":     0.05,
				"rdf":           0.05,
				"biomass":       0.05,
				"petcoke":       0.05,
				"plastic_waste": 0.05,
			},
			wantReason: "35% of the required energy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(1000)
			req.Month = time.February
			req.Availability = tt.availability

			res, err := o.Optimize(req)
			require.NoError(t, err, "infeasibility is a result, not an error")
			assert.False(t, res.Success)
			assert.Contains(t, res.Reason, tt.wantReason)
		})
	}
}

func TestOptimizeZeroEnergy(t *testing.T) {
	o := newTestOptimizer(t)

	res, err := o.Optimize(NewRequest(0))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Mix)
	for name, frac := range res.Fractions {
		assert.Zero(t, frac, "fraction for %s", name)
	}
	assert.True(t, res.Economics.CostPerGJ.IsZero())
}

func TestOptimizeInvalidRequests(t *testing.T) {
	o := newTestOptimizer(t)

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr string
	}{
		{
			name:    "negative energy",
			mutate:  func(r *Request) { r.EnergyGJ = -10 },
			wantErr: "energy must be non-negative",
		},
		{
			name:    "unknown fuel",
			mutate:  func(r *Request) { r.Availability = map[string]float64{"uranium": 0.1} },
			wantErr: `unknown fuel "uranium"`,
		},
		{
			name:    "negative availability",
			mutate:  func(r *Request) { r.Availability = map[string]float64{"rdf": -0.5} },
			wantErr: "must be non-negative",
		},
		{
			name:    "alternative rate above one",
			mutate:  func(r *Request) { r.MaxAltFuelRate = 1.5 },
			wantErr: "alternative-fuel rate must be in [0,1]",
		},
		{
			name:    "cost priority out of range",
			mutate:  func(r *Request) { r.CostPriority = 2 },
			wantErr: "cost priority must be in [0,1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(100)
			tt.mutate(&req)

			res, err := o.Optimize(req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, res.Success)
		})
	}
}

func TestOptimizeCO2Bound(t *testing.T) {
	o := newTestOptimizer(t)

	req := NewRequest(1000)
	req.Month = time.February
	req.MaxCO2PerGJ = 50

	res, err := o.Optimize(req)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	assert.LessOrEqual(t, res.Properties.CO2PerGJ, 50+tol)
	// Tightening the emission bound can only cost money.
	assert.GreaterOrEqual(t, res.Economics.CostPerGJ.InexactFloat64(), 1.855-tol)
}

// With the objective flipped to pure emission intensity the solver
// should fill the cleanest fuels first: biomass and rice husk to their
// caps, then RDF up to the alternative ceiling.
func TestOptimizeEmissionPriority(t *testing.T) {
	o := newTestOptimizer(t)

	req := NewRequest(1000)
	req.Month = time.February
	req.CostPriority = 0

	res, err := o.Optimize(req)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	want := map[string]float64{
		"coal":          0.35,
		"rice_husk":     0.35,
		"rdf":           0.15,
		"biomass":       0.15,
		"petcoke":       0,
		"plastic_waste": 0,
	}
	for name, frac := range want {
		assert.InDelta(t, frac, res.Fractions[name], tol, "fraction for %s", name)
	}
	assert.InDelta(t, 42.81, res.Properties.CO2PerGJ, tol)
}

func TestOptimizeQuantities(t *testing.T) {
	o := newTestOptimizer(t)

	req := NewRequest(1000)
	req.Month = time.February

	// 100 GJ of RDF against a 1000 GJ demand caps its share at 10%.
	res, err := o.OptimizeQuantities(req, map[string]float64{"rdf": 100})
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	assert.InDelta(t, 1.0, fractionSum(res.Fractions), tol)
	assert.InDelta(t, 0.10, res.Fractions["rdf"], tol)
	assert.InDelta(t, 0.25, res.Fractions["plastic_waste"], tol)
	assert.InDelta(t, 0.30, res.Fractions["rice_husk"], tol)
	assert.InDelta(t, 0.35, res.Fractions["coal"], tol)
}

func TestOptimizeOmitsNegligibleShares(t *testing.T) {
	o := newTestOptimizer(t)

	req := NewRequest(1000)
	req.Month = time.February
	req.Availability = map[string]float64{"rice_husk": 0.005}

	res, err := o.Optimize(req)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	assert.InDelta(t, 0.005, res.Fractions["rice_husk"], tol, "tiny shares stay in the full solution")
	assert.NotContains(t, res.Mix, "rice_husk", "tiny shares are not reported")
	assert.InDelta(t, 1.0, fractionSum(res.Fractions), tol)
}

// In May the rice husk season bottoms out at 0.3, so its cap drops to
// 0.105. Lifting the alternative ceiling exposes the seasonal caps as
// the binding constraints.
func TestOptimizeSeasonalCaps(t *testing.T) {
	o := newTestOptimizer(t)

	req := NewRequest(1000)
	req.Month = time.May
	req.MaxAltFuelRate = 1.0

	res, err := o.Optimize(req)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	want := map[string]float64{
		"coal":          0,
		"rice_husk":     0.105,
		"rdf":           0.35,
		"biomass":       0.25,
		"petcoke":       0.045,
		"plastic_waste": 0.25,
	}
	for name, frac := range want {
		assert.InDelta(t, frac, res.Fractions[name], tol, "fraction for %s", name)
	}
	assert.LessOrEqual(t, res.Properties.Ash, req.MaxAsh+tol)
}

func TestMonthlySavings(t *testing.T) {
	o := newTestOptimizer(t)

	req := NewRequest(1000)
	req.Month = time.February

	res, err := o.Optimize(req)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	sav, err := o.MonthlySavings(res, 0, 0)
	require.NoError(t, err)

	// 85,500 t/month at 3.2 GJ/t is 273,600 GJ; the blend saves
	// 1.345 USD and 35.285 kg CO2 per GJ.
	assert.InDelta(t, 273600, sav.MonthlyEnergyGJ, tol)
	assert.InDelta(t, 367992.00, sav.MonthlyCost.InexactFloat64(), 0.01)
	assert.InDelta(t, 9653.976, sav.MonthlyCO2Tonnes, 0.001)
	assert.InDelta(t, 4415904.00, sav.AnnualCost.InexactFloat64(), 0.12)
	assert.InDelta(t, 115847.712, sav.AnnualCO2Tonnes, 0.012)
}

func TestMonthlySavingsRequiresSuccess(t *testing.T) {
	o := newTestOptimizer(t)

	_, err := o.MonthlySavings(Result{Success: false}, 1000, 3.2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed solve")
}
