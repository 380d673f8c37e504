// Package process defines the kiln operating space and the
// multi-objective scoring function evaluated over it. The score is the
// black-box objective the surrogate search maximizes, so it must stay
// deterministic and side-effect free.
package process

import (
	"fmt"

	"go.uber.org/multierr"
)

// Dim is the dimension of the operating space.
const Dim = 6

// Bound is one named dimension of the operating space.
type Bound struct {
	Name string
	Min  float64
	Max  float64
}

// Bounds returns the fixed operating space in canonical vector order:
// kiln temperature (degC), kiln speed (rpm), fuel rate (t/h), air flow,
// residence time (min), feed rate (t/h).
func Bounds() []Bound {
	return []Bound{
		{Name: "kiln_temperature", Min: 1350, Max: 1500},
		{Name: "kiln_speed", Min: 3.0, Max: 5.0},
		{Name: "fuel_rate", Min: 8, Max: 15},
		{Name: "air_flow", Min: 50, Max: 120},
		{Name: "residence_time", Min: 25, Max: 35},
		{Name: "feed_rate", Min: 250, Max: 350},
	}
}

// SearchBounds returns the operating space as [min, max] pairs in vector
// order, the form the surrogate search consumes.
func SearchBounds() [][2]float64 {
	bounds := Bounds()
	out := make([][2]float64, len(bounds))
	for i, b := range bounds {
		out[i] = [2]float64{b.Min, b.Max}
	}
	return out
}

// Names returns the dimension names in canonical vector order.
func Names() []string {
	bounds := Bounds()
	out := make([]string, len(bounds))
	for i, b := range bounds {
		out[i] = b.Name
	}
	return out
}

// MapToVector converts a named parameter map into a canonical vector.
// Every dimension must be present and no unknown names are allowed;
// violations are aggregated into one error.
func MapToVector(params map[string]float64) ([]float64, error) {
	names := Names()
	known := make(map[string]bool, len(names))

	v := make([]float64, len(names))
	var verr error
	for i, name := range names {
		known[name] = true
		val, ok := params[name]
		if !ok {
			verr = multierr.Append(verr, fmt.Errorf("missing parameter %q", name))
			continue
		}
		v[i] = val
	}
	for name := range params {
		if !known[name] {
			verr = multierr.Append(verr, fmt.Errorf("unknown parameter %q", name))
		}
	}
	if verr != nil {
		return nil, verr
	}
	return v, nil
}

// VectorToMap converts a canonical vector into a named parameter map.
func VectorToMap(v []float64) map[string]float64 {
	names := Names()
	out := make(map[string]float64, len(names))
	for i, name := range names {
		if i >= len(v) {
			break
		}
		out[name] = v[i]
	}
	return out
}
