// Package acquisition scores candidate points for the surrogate search.
package acquisition

import "gonum.org/v1/gonum/stat/distuv"

// sigmaFloor treats predictive deviations at or below this value as
// degenerate, mirroring the zero-variance clamp of the EI definition.
const sigmaFloor = 1e-10

// ExpectedImprovement scores how much a candidate is expected to improve
// on the incumbent under a Gaussian posterior. The search maximizes the
// objective, so improvement means a higher mean. The type is stateless
// and safe for concurrent use.
type ExpectedImprovement struct {
	// xi is the exploration margin: larger values demand more than a
	// marginal predicted gain before a point scores.
	xi float64
}

// NewExpectedImprovement creates the acquisition function with the given
// exploration margin.
func NewExpectedImprovement(xi float64) *ExpectedImprovement {
	return &ExpectedImprovement{xi: xi}
}

// Value computes EI = improvement*Phi(Z) + sigma*phi(Z) with
// Z = improvement/sigma and improvement = mu - best - xi. It is zero
// when no improvement is predicted or the posterior is degenerate.
func (ei *ExpectedImprovement) Value(mu, sigma, best float64) float64 {
	improvement := mu - best - ei.xi
	if improvement <= 0 {
		return 0
	}
	if sigma <= sigmaFloor {
		return 0
	}

	z := improvement / sigma
	norm := distuv.UnitNormal
	return improvement*norm.CDF(z) + sigma*norm.Prob(z)
}
