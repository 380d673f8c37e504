package gp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/clinkerline/internal/surrogate/kernels"
)

func TestFitAndPredictInterpolates(t *testing.T) {
	model := New(kernels.NewRBF(1.0, 1.0), 1e-6, zap.NewNop())

	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{1, 2, 1})

	require.NoError(t, model.Fit(X, y))
	assert.True(t, model.Trained())

	means, variances, err := model.Predict(X)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.InDelta(t, y.AtVec(i), means.AtVec(i), 0.01,
			"posterior mean should pass near training targets at low noise")
		assert.GreaterOrEqual(t, variances.AtVec(i), 0.0)
		assert.Less(t, variances.AtVec(i), 1e-3,
			"posterior variance should collapse at training points")
	}
}

func TestPredictRevertsToPriorFarFromData(t *testing.T) {
	model := New(kernels.NewMatern52(1.0, 1.0), 1e-6, zap.NewNop())

	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{1, 2, 1})
	require.NoError(t, model.Fit(X, y))

	mu, sigma, err := model.PredictOne([]float64{100})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, mu, 1e-3, "mean should revert to the zero prior")
	assert.InDelta(t, 1.0, sigma*sigma, 1e-3, "variance should revert to the kernel variance")
}

func TestPredictWithObservationNoise(t *testing.T) {
	model := New(kernels.NewRBF(1.0, 1.0), 0.1, zap.NewNop())

	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := mat.NewVecDense(4, []float64{0.1, 0.9, 2.1, 2.9})
	require.NoError(t, model.Fit(X, y))

	means, variances, err := model.Predict(X)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.InDelta(t, y.AtVec(i), means.AtVec(i), 0.5)
		assert.Greater(t, variances.AtVec(i), 0.0,
			"noisy observations should leave residual uncertainty")
	}
}

func TestPredictOneMatchesPredict(t *testing.T) {
	model := New(kernels.NewMatern52(1.5, 2.0), 1e-4, zap.NewNop())

	X := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 1,
		2, 0,
	})
	y := mat.NewVecDense(3, []float64{0.5, 1.5, 0.8})
	require.NoError(t, model.Fit(X, y))

	query := []float64{0.5, 0.5}
	mu, sigma, err := model.PredictOne(query)
	require.NoError(t, err)

	means, variances, err := model.Predict(mat.NewDense(1, 2, query))
	require.NoError(t, err)

	assert.InDelta(t, means.AtVec(0), mu, 1e-12)
	assert.InDelta(t, variances.AtVec(0), sigma*sigma, 1e-12)
}

func TestFitToleratesDuplicateRows(t *testing.T) {
	model := New(kernels.NewRBF(1.0, 1.0), 0, zap.NewNop())

	X := mat.NewDense(2, 1, []float64{1, 1})
	y := mat.NewVecDense(2, []float64{1.0, 1.5})
	require.NoError(t, model.Fit(X, y),
		"duplicate rows must be absorbed by jitter or the pseudoinverse fallback")

	mu, _, err := model.PredictOne([]float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 1.25, mu, 0.05,
		"conflicting duplicates should average out")
}

func TestFitValidation(t *testing.T) {
	tests := []struct {
		name    string
		x       *mat.Dense
		y       *mat.VecDense
		wantErr string
	}{
		{
			name:    "nil inputs",
			x:       nil,
			y:       nil,
			wantErr: "input matrices must not be nil",
		},
		{
			name:    "length mismatch",
			x:       mat.NewDense(3, 1, []float64{1, 2, 3}),
			y:       mat.NewVecDense(2, []float64{1, 2}),
			wantErr: "dimension mismatch: X has 3 samples but y has length 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(kernels.NewRBF(1.0, 1.0), 1e-6, zap.NewNop())
			err := model.Fit(tt.x, tt.y)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, model.Trained())
		})
	}
}

func TestPredictValidation(t *testing.T) {
	model := New(kernels.NewRBF(1.0, 1.0), 1e-6, zap.NewNop())

	_, _, err := model.Predict(mat.NewDense(1, 1, []float64{1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not trained")

	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{1, 2, 1})
	require.NoError(t, model.Fit(X, y))

	_, _, err = model.Predict(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input matrix X is nil")

	_, _, err = model.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch: test points have 2 features, training has 1")
}
