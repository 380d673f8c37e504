// Package kernels provides the covariance functions for the surrogate
// Gaussian process.
package kernels

import (
	"fmt"
	"math"
)

// Kernel is a positive-definite covariance function over parameter
// vectors. Implementations must be symmetric in their arguments and
// safe for concurrent use.
type Kernel interface {
	Eval(x1, x2 []float64) float64
}

// squaredDistance returns the squared Euclidean distance between two
// points of equal dimension.
func squaredDistance(x1, x2 []float64) float64 {
	var sum float64
	for i := range x1 {
		d := x1[i] - x2[i]
		sum += d * d
	}
	return sum
}

func mustPositive(name string, v float64) {
	if v <= 0 {
		panic(fmt.Sprintf("kernels: %s must be positive, got %v", name, v))
	}
}

// RBF is the squared-exponential kernel. Larger length scales give
// smoother surrogates.
type RBF struct {
	lengthScale float64
	variance    float64
}

// NewRBF creates an RBF kernel. It panics on non-positive parameters,
// which are programmer errors rather than runtime conditions.
func NewRBF(lengthScale, variance float64) *RBF {
	mustPositive("lengthScale", lengthScale)
	mustPositive("variance", variance)
	return &RBF{lengthScale: lengthScale, variance: variance}
}

// Eval computes variance * exp(-|x1-x2|^2 / (2 l^2)).
func (k *RBF) Eval(x1, x2 []float64) float64 {
	r2 := squaredDistance(x1, x2) / (2 * k.lengthScale * k.lengthScale)
	return k.variance * math.Exp(-r2)
}

// Matern52 is the Matérn kernel with smoothness 5/2, the default choice
// for the process surrogate: rougher than RBF, which suits objectives
// that are not infinitely differentiable.
type Matern52 struct {
	lengthScale float64
	variance    float64
}

// NewMatern52 creates a Matérn 5/2 kernel. It panics on non-positive
// parameters.
func NewMatern52(lengthScale, variance float64) *Matern52 {
	mustPositive("lengthScale", lengthScale)
	mustPositive("variance", variance)
	return &Matern52{lengthScale: lengthScale, variance: variance}
}

// Eval computes variance * (1 + sqrt5 r + 5 r^2/3) * exp(-sqrt5 r) with
// r the scaled Euclidean distance.
func (k *Matern52) Eval(x1, x2 []float64) float64 {
	r := math.Sqrt(squaredDistance(x1, x2)) / k.lengthScale
	sqrt5r := math.Sqrt(5) * r
	return k.variance * (1 + sqrt5r + 5.0/3.0*r*r) * math.Exp(-sqrt5r)
}
