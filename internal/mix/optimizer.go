// Package mix formulates and solves the alternative-fuel blend linear
// program. The solver works in fraction space: each decision variable is
// the share of the total energy requirement supplied by one cataloged
// fuel. Quantity-space requests are converted at the boundary.
package mix

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	cerrors "github.com/copyleftdev/clinkerline/internal/errors"
	"github.com/copyleftdev/clinkerline/internal/fuels"
)

// reportThreshold is the smallest blend share worth reporting. Fuels
// below it stay in Fractions but are omitted from Mix.
const reportThreshold = 0.01

// Request describes one blend optimization call.
//
// The zero value of MaxAltFuelRate means no alternative fuels at all;
// a zero or negative quality bound means that bound is unconstrained,
// since every real fuel carries some ash and moisture. NewRequest fills
// the plant defaults.
type Request struct {
	// EnergyGJ is the total thermal energy the blend must supply.
	EnergyGJ float64

	// Availability caps each fuel's share of the total energy, in
	// [0, 1]. Fuels without an entry are capped only by their handling
	// tier. An explicit 0 excludes the fuel from the feasible region.
	Availability map[string]float64

	// MaxAsh and MaxMoisture bound the fraction-weighted ash and
	// moisture of the blend. Values <= 0 leave the bound off.
	MaxAsh      float64
	MaxMoisture float64

	// MaxCO2PerGJ optionally bounds the weighted emission intensity in
	// kg CO2 per GJ. Values <= 0 leave the bound off.
	MaxCO2PerGJ float64

	// MaxAltFuelRate caps the total share of non-baseline fuels.
	MaxAltFuelRate float64

	// Month selects the seasonal availability multipliers. The zero
	// value resolves to the current calendar month.
	Month time.Month

	// CostPriority in [0, 1] weighs delivered cost against emission
	// intensity in the objective. 1 minimizes pure cost.
	CostPriority float64
}

// NewRequest returns a request with the plant defaults: 14% ash cap,
// 20% moisture cap, 65% alternative-fuel ceiling, pure cost objective.
func NewRequest(energyGJ float64) Request {
	return Request{
		EnergyGJ:       energyGJ,
		MaxAsh:         0.14,
		MaxMoisture:    0.20,
		MaxAltFuelRate: 0.65,
		CostPriority:   1.0,
	}
}

// BlendProperties are the fraction-weighted physical properties of a
// blend.
type BlendProperties struct {
	CalorificValue float64
	Ash            float64
	Moisture       float64
	CO2PerGJ       float64
	// AltFuelRate is the share of energy from non-baseline fuels.
	AltFuelRate float64
}

// Result is the outcome of one blend optimization. It is constructed
// fresh per call and never mutated afterwards.
type Result struct {
	Success bool
	// Reason is a human-readable explanation when Success is false.
	Reason string

	// Fractions is the complete optimal blend; fractions sum to 1 for
	// any successful solve with positive energy.
	Fractions map[string]float64

	// Mix is the reported blend: only fuels with at least a 1% share.
	Mix map[string]float64

	Properties BlendProperties
	Economics  Economics
}

// Optimizer solves blend requests against one fuel catalog. It holds no
// mutable state and is safe for concurrent use.
type Optimizer struct {
	catalog *fuels.Catalog
	logger  *zap.Logger
}

// NewOptimizer creates a blend optimizer over the given catalog. A nil
// catalog selects the built-in one; a nil logger disables logging.
func NewOptimizer(catalog *fuels.Catalog, logger *zap.Logger) *Optimizer {
	if catalog == nil {
		catalog = fuels.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{catalog: catalog, logger: logger.Named("fuel_mix")}
}

// Catalog returns the catalog the optimizer solves over.
func (o *Optimizer) Catalog() *fuels.Catalog {
	return o.catalog
}

// Optimize solves the blend linear program for the request. Infeasible
// constraint systems come back as Success=false with a reason, never as
// an error; the error return covers invalid requests and solver faults.
func (o *Optimizer) Optimize(req Request) (Result, error) {
	const op = "Mix.Optimize"

	if err := o.validate(req); err != nil {
		return Result{Success: false, Reason: err.Error()}, cerrors.Wrap(err, "invalid request").WithOp(op).WithComponent("fuel_mix")
	}

	if req.EnergyGJ == 0 {
		return o.trivialResult(), nil
	}

	month := req.Month
	if month == 0 {
		month = time.Now().Month()
	}

	profiles := o.catalog.Fuels()
	caps := o.shareCaps(profiles, req, month)

	o.logger.Debug("solving blend LP",
		zap.Float64("energy_gj", req.EnergyGJ),
		zap.Int("fuels", len(profiles)),
		zap.String("month", month.String()),
		zap.Float64("max_alt_fuel_rate", req.MaxAltFuelRate),
	)

	rows := o.constraintRows(profiles, req, caps)
	x, err := o.solve(o.objective(profiles, req.CostPriority), rows, len(profiles))
	if err != nil {
		if cerrors.Is(err, lp.ErrInfeasible) {
			reason := o.diagnose(profiles, req, caps, rows)
			o.logger.Warn("blend LP infeasible", zap.String("reason", reason))
			return Result{Success: false, Reason: reason}, nil
		}
		return Result{Success: false, Reason: "solver failure: " + err.Error()},
			cerrors.Wrap(err, "simplex failed").WithOp(op).WithComponent("fuel_mix")
	}

	return o.buildResult(profiles, x), nil
}

// OptimizeQuantities is the quantity-space form of Optimize: per-fuel
// availability is given as absolute energy in GJ instead of as a share
// of the requirement. This is the single conversion point between the
// two representations; the solver always works in fraction space.
func (o *Optimizer) OptimizeQuantities(req Request, availabilityGJ map[string]float64) (Result, error) {
	if req.EnergyGJ > 0 && availabilityGJ != nil {
		shares := make(map[string]float64, len(availabilityGJ))
		for name, gj := range availabilityGJ {
			shares[name] = gj / req.EnergyGJ
		}
		req.Availability = shares
	}
	return o.Optimize(req)
}

func (o *Optimizer) validate(req Request) error {
	var verr error
	if req.EnergyGJ < 0 {
		verr = multierr.Append(verr, fmt.Errorf("energy must be non-negative, got %g", req.EnergyGJ))
	}
	if req.MaxAltFuelRate < 0 || req.MaxAltFuelRate > 1 {
		verr = multierr.Append(verr, fmt.Errorf("alternative-fuel rate must be in [0,1], got %g", req.MaxAltFuelRate))
	}
	if req.CostPriority < 0 || req.CostPriority > 1 {
		verr = multierr.Append(verr, fmt.Errorf("cost priority must be in [0,1], got %g", req.CostPriority))
	}
	for name, v := range req.Availability {
		if _, ok := o.catalog.Get(name); !ok {
			verr = multierr.Append(verr, fmt.Errorf("unknown fuel %q in availability map", name))
		}
		if v < 0 {
			verr = multierr.Append(verr, fmt.Errorf("availability for %q must be non-negative, got %g", name, v))
		}
	}
	return verr
}

// shareCaps computes each fuel's effective upper bound: the handling
// tier cap scaled by season, further tightened by any caller ceiling.
func (o *Optimizer) shareCaps(profiles []fuels.Profile, req Request, month time.Month) []float64 {
	caps := make([]float64, len(profiles))
	for i, p := range profiles {
		c := p.EffectiveCap(month)
		if avail, ok := req.Availability[p.Name]; ok {
			c = math.Min(c, avail)
		}
		caps[i] = math.Min(c, 1.0)
	}
	return caps
}

// constraintRow is one inequality of the blend LP, tagged with the bound
// family it belongs to for infeasibility diagnosis.
type constraintRow struct {
	kind  string
	coefs []float64
	bound float64
}

const (
	kindAvailability = "availability"
	kindAsh          = "ash"
	kindMoisture     = "moisture"
	kindAltFuelRate  = "alternative-fuel rate"
	kindCO2          = "CO2 intensity"
)

func (o *Optimizer) constraintRows(profiles []fuels.Profile, req Request, caps []float64) []constraintRow {
	nf := len(profiles)
	rows := make([]constraintRow, 0, nf+4)

	for i := range profiles {
		coefs := make([]float64, nf)
		coefs[i] = 1
		rows = append(rows, constraintRow{kind: kindAvailability, coefs: coefs, bound: caps[i]})
	}

	if req.MaxAsh > 0 {
		coefs := make([]float64, nf)
		for i, p := range profiles {
			coefs[i] = p.Ash
		}
		rows = append(rows, constraintRow{kind: kindAsh, coefs: coefs, bound: req.MaxAsh})
	}

	if req.MaxMoisture > 0 {
		coefs := make([]float64, nf)
		for i, p := range profiles {
			coefs[i] = p.Moisture
		}
		rows = append(rows, constraintRow{kind: kindMoisture, coefs: coefs, bound: req.MaxMoisture})
	}

	// Baseline sits at index 0, so the alternative-fuel total is the
	// sum over the rest.
	if req.MaxAltFuelRate < 1 {
		coefs := make([]float64, nf)
		for i := 1; i < nf; i++ {
			coefs[i] = 1
		}
		rows = append(rows, constraintRow{kind: kindAltFuelRate, coefs: coefs, bound: req.MaxAltFuelRate})
	}

	if req.MaxCO2PerGJ > 0 {
		coefs := make([]float64, nf)
		for i, p := range profiles {
			coefs[i] = p.CO2PerGJ
		}
		rows = append(rows, constraintRow{kind: kindCO2, coefs: coefs, bound: req.MaxCO2PerGJ})
	}

	return rows
}

// objective builds the per-fuel cost coefficients: delivered cost plus
// handling surcharge, optionally blended with emission intensity. Both
// terms are normalized by their catalog maximum so the blend weight is
// meaningful.
func (o *Optimizer) objective(profiles []fuels.Profile, costPriority float64) []float64 {
	var maxCost, maxCO2 float64
	for _, p := range profiles {
		maxCost = math.Max(maxCost, p.TotalCostPerGJ().InexactFloat64())
		maxCO2 = math.Max(maxCO2, p.CO2PerGJ)
	}

	c := make([]float64, len(profiles))
	for i, p := range profiles {
		if maxCost > 0 {
			c[i] += costPriority * p.TotalCostPerGJ().InexactFloat64() / maxCost
		}
		if maxCO2 > 0 {
			c[i] += (1 - costPriority) * p.CO2PerGJ / maxCO2
		}
	}
	return c
}

// solve assembles the standard-form program and runs the simplex. The
// variables are the nf fuel shares followed by one slack per inequality,
// all non-negative; the first row is the sum-to-one equality. The slack
// identity block keeps the constraint matrix at full row rank.
func (o *Optimizer) solve(costs []float64, rows []constraintRow, nf int) ([]float64, error) {
	m := len(rows)
	ncols := nf + m

	A := mat.NewDense(1+m, ncols, nil)
	b := make([]float64, 1+m)

	for i := 0; i < nf; i++ {
		A.Set(0, i, 1)
	}
	b[0] = 1

	for j, row := range rows {
		for i, cf := range row.coefs {
			A.Set(1+j, i, cf)
		}
		A.Set(1+j, nf+j, 1)
		b[1+j] = row.bound
	}

	c := make([]float64, ncols)
	copy(c, costs)

	_, x, err := lp.Simplex(c, A, b, 1e-10, nil)
	if err != nil {
		return nil, err
	}

	shares := make([]float64, nf)
	for i := range shares {
		shares[i] = math.Max(0, x[i])
	}
	return shares, nil
}

// diagnose finds the tightest violated bound of an infeasible request by
// re-solving relaxations. Quality bounds are dropped one family at a
// time; if none of them unblocks the program the availability itself
// cannot cover the demand.
func (o *Optimizer) diagnose(profiles []fuels.Profile, req Request, caps []float64, rows []constraintRow) string {
	var capTotal float64
	for _, c := range caps {
		capTotal += c
	}
	if capTotal < 1 {
		return fmt.Sprintf("available fuels cover only %.0f%% of the required energy", capTotal*100)
	}

	costs := o.objective(profiles, req.CostPriority)
	for _, kind := range []string{kindAsh, kindMoisture, kindCO2, kindAltFuelRate} {
		relaxed := rows[:0:0]
		dropped := false
		for _, row := range rows {
			if row.kind == kind {
				dropped = true
				continue
			}
			relaxed = append(relaxed, row)
		}
		if !dropped {
			continue
		}
		if _, err := o.solve(costs, relaxed, len(profiles)); err == nil {
			return fmt.Sprintf("the %s bound is the tightest violated constraint", kind)
		}
	}

	return "availability too low relative to demand"
}

// trivialResult is the zero-energy case: nothing to blend, trivially
// satisfied.
func (o *Optimizer) trivialResult() Result {
	fractions := make(map[string]float64, o.catalog.Len())
	for _, name := range o.catalog.Names() {
		fractions[name] = 0
	}
	return Result{
		Success:   true,
		Fractions: fractions,
		Mix:       map[string]float64{},
	}
}

func (o *Optimizer) buildResult(profiles []fuels.Profile, shares []float64) Result {
	fractions := make(map[string]float64, len(profiles))
	mix := make(map[string]float64, len(profiles))

	var props BlendProperties
	for i, p := range profiles {
		s := shares[i]
		fractions[p.Name] = s
		if s >= reportThreshold {
			mix[p.Name] = s
		}
		props.CalorificValue += s * p.CalorificValue
		props.Ash += s * p.Ash
		props.Moisture += s * p.Moisture
		props.CO2PerGJ += s * p.CO2PerGJ
		if i > 0 {
			props.AltFuelRate += s
		}
	}

	res := Result{
		Success:    true,
		Fractions:  fractions,
		Mix:        mix,
		Properties: props,
		Economics:  o.economics(profiles, shares, props),
	}

	o.logger.Debug("blend solved",
		zap.Float64("alt_fuel_rate", props.AltFuelRate),
		zap.Float64("weighted_ash", props.Ash),
		zap.String("cost_per_gj", res.Economics.CostPerGJ.String()),
	)
	return res
}
