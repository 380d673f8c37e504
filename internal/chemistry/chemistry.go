// Package chemistry provides cement raw-meal and clinker chemistry
// calculations: control ratios (LSF, SM, AM) and Bogue phase estimation.
// All functions are pure and safe for concurrent use.
package chemistry

import "math"

// Composition holds the oxide mass fractions of one raw-meal or clinker
// sample, in percent by mass.
type Composition struct {
	CaO   float64
	SiO2  float64
	Al2O3 float64
	Fe2O3 float64
	SO3   float64
}

// IsZero reports whether every oxide in the composition is zero. Ratios
// computed from a zero composition are undefined, not measured zeros.
func (c Composition) IsZero() bool {
	return c.CaO == 0 && c.SiO2 == 0 && c.Al2O3 == 0 && c.Fe2O3 == 0 && c.SO3 == 0
}

// Control bands for a burnable raw meal.
const (
	LSFMin = 0.92
	LSFMax = 0.98
	SMMin  = 2.3
	SMMax  = 2.7
	AMMin  = 1.0
	AMMax  = 2.5
)

// LSF returns the Lime Saturation Factor of the composition. A zero
// denominator yields 0 rather than a division fault.
func LSF(c Composition) float64 {
	den := 2.8*c.SiO2 + 1.2*c.Al2O3 + 0.65*c.Fe2O3
	if den == 0 {
		return 0
	}
	return (c.CaO - 0.7*c.SO3) / den
}

// SM returns the Silica Modulus. A zero denominator yields 0.
func SM(c Composition) float64 {
	den := c.Al2O3 + c.Fe2O3
	if den == 0 {
		return 0
	}
	return c.SiO2 / den
}

// AM returns the Alumina Modulus. A zero denominator yields 0.
func AM(c Composition) float64 {
	if c.Fe2O3 == 0 {
		return 0
	}
	return c.Al2O3 / c.Fe2O3
}

// Validation reports the computed control ratios of a composition and
// whether each falls inside its band.
type Validation struct {
	LSF      float64
	SM       float64
	AM       float64
	LSFValid bool
	SMValid  bool
	AMValid  bool
	// Valid holds only when all three ratios are in band.
	Valid bool
	// Undefined is set for an all-zero composition, where the returned
	// ratios are 0 by convention rather than by measurement.
	Undefined bool
}

// Validate computes LSF, SM and AM for the composition and checks each
// against its control band.
func Validate(c Composition) Validation {
	v := Validation{
		LSF:       LSF(c),
		SM:        SM(c),
		AM:        AM(c),
		Undefined: c.IsZero(),
	}
	v.LSFValid = v.LSF >= LSFMin && v.LSF <= LSFMax
	v.SMValid = v.SM >= SMMin && v.SM <= SMMax
	v.AMValid = v.AM >= AMMin && v.AM <= AMMax
	v.Valid = v.LSFValid && v.SMValid && v.AMValid
	return v
}

// Phases holds estimated clinker mineral fractions in percent. The four
// values sum to 100 when the estimate is defined.
type Phases struct {
	C3S  float64
	C2S  float64
	C3A  float64
	C4AF float64
}

// Sum returns the total of the four phase fractions.
func (p Phases) Sum() float64 {
	return p.C3S + p.C2S + p.C3A + p.C4AF
}

// ClinkerPhases estimates the clinker mineral phases from the oxide
// composition using the Bogue equations. Each raw phase is clamped to
// [0, 100] first and the clamped values are then renormalized to sum to
// 100. The clamp-before-renormalize order is part of the contract:
// downstream consumers depend on the numbers it produces.
//
// The second return value is false when the clamped total is zero, in
// which case all phases are 0 and no renormalization is possible.
func ClinkerPhases(c Composition) (Phases, bool) {
	c3s := 4.071*c.CaO - 7.600*c.SiO2 - 6.718*c.Al2O3 - 1.430*c.Fe2O3
	c2s := 2.867*c.SiO2 - 0.7544*c3s
	c3a := 2.650*c.Al2O3 - 1.692*c.Fe2O3
	c4af := 3.043 * c.Fe2O3

	p := Phases{
		C3S:  clampPhase(c3s),
		C2S:  clampPhase(c2s),
		C3A:  clampPhase(c3a),
		C4AF: clampPhase(c4af),
	}

	total := p.Sum()
	if total == 0 {
		return Phases{}, false
	}

	scale := 100 / total
	p.C3S *= scale
	p.C2S *= scale
	p.C3A *= scale
	p.C4AF *= scale
	return p, true
}

func clampPhase(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
