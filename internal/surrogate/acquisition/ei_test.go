package acquisition

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

func TestExpectedImprovement(t *testing.T) {
	tests := []struct {
		name     string
		xi       float64
		mu       float64
		sigma    float64
		best     float64
		expected float64
	}{
		{
			name:     "no predicted improvement",
			xi:       0.01,
			mu:       0.5,
			sigma:    0.1,
			best:     1.0,
			expected: 0.0,
		},
		{
			name:     "margin eats a marginal gain",
			xi:       0.05,
			mu:       1.04,
			sigma:    0.1,
			best:     1.0,
			expected: 0.0,
		},
		{
			name:     "degenerate posterior",
			xi:       0.0,
			mu:       1.5,
			sigma:    0.0,
			best:     1.0,
			expected: 0.0,
		},
		{
			name:     "clear improvement",
			xi:       0.01,
			mu:       1.0,
			sigma:    1.0,
			best:     0.5,
			expected: 0.49*distuv.UnitNormal.CDF(0.49) + distuv.UnitNormal.Prob(0.49),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ei := NewExpectedImprovement(tt.xi)

			got := ei.Value(tt.mu, tt.sigma, tt.best)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
			if got < 0 {
				t.Errorf("EI must be non-negative, got %v", got)
			}
		})
	}
}

func TestExpectedImprovementMonotonicInMean(t *testing.T) {
	ei := NewExpectedImprovement(0.01)

	prev := -1.0
	for _, mu := range []float64{0.6, 0.8, 1.0, 1.4, 2.0} {
		cur := ei.Value(mu, 0.5, 0.5)
		if cur <= prev {
			t.Errorf("EI must grow with the predicted mean: EI(%v) = %v <= %v", mu, cur, prev)
		}
		prev = cur
	}
}

func TestExpectedImprovementRewardsUncertainty(t *testing.T) {
	ei := NewExpectedImprovement(0.01)

	// With the same predicted gain, a less certain point scores higher.
	confident := ei.Value(1.0, 0.1, 0.5)
	uncertain := ei.Value(1.0, 1.0, 0.5)
	if uncertain <= confident {
		t.Errorf("expected uncertainty bonus: %v <= %v", uncertain, confident)
	}
}
