package kernels

import (
	"math"
	"testing"
)

func TestRBF(t *testing.T) {
	tests := []struct {
		name     string
		x1       []float64
		x2       []float64
		ls       float64
		variance float64
		expected float64
	}{
		{
			name:     "same point returns variance",
			x1:       []float64{1450, 4, 10},
			x2:       []float64{1450, 4, 10},
			ls:       1.0,
			variance: 2.5,
			expected: 2.5,
		},
		{
			name:     "unit distance",
			x1:       []float64{0, 0},
			x2:       []float64{1, 1},
			ls:       1.0,
			variance: 1.0,
			expected: math.Exp(-1.0),
		},
		{
			name:     "length scale flattens decay",
			x1:       []float64{0, 0},
			x2:       []float64{2, 2},
			ls:       2.0,
			variance: 1.0,
			expected: math.Exp(-1.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewRBF(tt.ls, tt.variance)

			got := k.Eval(tt.x1, tt.x2)
			if math.Abs(got-tt.expected) > 1e-10 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}

			if sym := k.Eval(tt.x2, tt.x1); math.Abs(got-sym) > 1e-10 {
				t.Error("kernel is not symmetric")
			}
		})
	}
}

func TestMatern52(t *testing.T) {
	k := NewMatern52(1.0, 1.0)

	if got := k.Eval([]float64{3, 7}, []float64{3, 7}); got != 1.0 {
		t.Errorf("same point: expected variance 1.0, got %v", got)
	}

	// (1 + sqrt5 + 5/3) * exp(-sqrt5) at unit distance.
	got := k.Eval([]float64{0}, []float64{1})
	want := (1 + math.Sqrt(5) + 5.0/3.0) * math.Exp(-math.Sqrt(5))
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("unit distance: expected %v, got %v", want, got)
	}
	if math.Abs(got-0.52399) > 1e-4 {
		t.Errorf("unit distance: expected about 0.52399, got %v", got)
	}

	if sym := k.Eval([]float64{1}, []float64{0}); math.Abs(got-sym) > 1e-12 {
		t.Error("kernel is not symmetric")
	}
}

func TestMatern52Decays(t *testing.T) {
	k := NewMatern52(1.0, 1.0)

	origin := []float64{0, 0}
	prev := k.Eval(origin, origin)
	for _, d := range []float64{0.5, 1, 2, 4, 8} {
		cur := k.Eval(origin, []float64{d, 0})
		if cur >= prev {
			t.Errorf("covariance must decay with distance: k(%v) = %v >= %v", d, cur, prev)
		}
		if cur < 0 {
			t.Errorf("covariance must stay non-negative, got %v at distance %v", cur, d)
		}
		prev = cur
	}
}

func TestNewKernelRejectsBadParameters(t *testing.T) {
	assertPanics := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}

	assertPanics("rbf zero length scale", func() { NewRBF(0, 1) })
	assertPanics("rbf negative variance", func() { NewRBF(1, -1) })
	assertPanics("matern zero variance", func() { NewMatern52(1, 0) })
}
