// Package gp implements the Gaussian-process regression surrogate the
// search loop fits over its observation history.
package gp

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	cerrors "github.com/copyleftdev/clinkerline/internal/errors"
	"github.com/copyleftdev/clinkerline/internal/surrogate/kernels"
)

const (
	// initialJitter is the first diagonal boost tried when the kernel
	// matrix is not numerically positive definite; it escalates by
	// factors of ten up to maxFitAttempts times.
	initialJitter  = 1e-12
	maxFitAttempts = 10

	// svdThresholdScale sets the relative singular-value cutoff for the
	// pseudoinverse fallback.
	svdThresholdScale = 1e-15
)

// GP is a Gaussian-process regression model with a fixed kernel and
// homoscedastic noise. Fit replaces all model state; Predict only reads
// it, so a fitted model may serve concurrent readers.
type GP struct {
	kernel   kernels.Kernel
	noiseVar float64

	// Training state, replaced wholesale by Fit.
	x     *mat.Dense
	y     *mat.VecDense
	alpha *mat.VecDense
	chol  *mat.Cholesky

	logger *zap.Logger
}

// New creates an unfitted model. A nil logger disables logging.
func New(kernel kernels.Kernel, noiseVar float64, logger *zap.Logger) *GP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GP{
		kernel:   kernel,
		noiseVar: noiseVar,
		logger:   logger.Named("gp"),
	}
}

// Trained reports whether Fit has succeeded at least once.
func (g *GP) Trained() bool {
	return g.alpha != nil
}

// Fit trains the model on the given points, one sample per row of X.
func (g *GP) Fit(X *mat.Dense, y *mat.VecDense) error {
	const op = "GP.Fit"

	if X == nil || y == nil {
		return cerrors.New("input matrices must not be nil").WithOp(op).WithComponent("surrogate")
	}
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return cerrors.New("input matrix X must not be empty").WithOp(op).WithComponent("surrogate")
	}
	if n != y.Len() {
		return cerrors.Newf("dimension mismatch: X has %d samples but y has length %d", n, y.Len()).
			WithOp(op).WithComponent("surrogate")
	}

	g.logger.Debug("fitting surrogate",
		zap.Int("samples", n),
		zap.Int("features", d),
		zap.Float64("noise_var", g.noiseVar),
	)

	g.x = mat.DenseCopyOf(X)
	g.y = mat.VecDenseCopyOf(y)

	if err := g.factorize(g.kernelMatrix(g.x, n), n); err != nil {
		return cerrors.Wrap(err, "kernel matrix factorization failed").WithOp(op).WithComponent("surrogate")
	}
	return nil
}

// kernelMatrix builds K with the noise variance already on the diagonal.
func (g *GP) kernelMatrix(X *mat.Dense, n int) *mat.SymDense {
	K := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		xi := X.RawRowView(i)
		K.SetSym(i, i, g.kernel.Eval(xi, xi)+g.noiseVar)
		for j := i + 1; j < n; j++ {
			K.SetSym(i, j, g.kernel.Eval(xi, X.RawRowView(j)))
		}
	}
	return K
}

// factorize solves K alpha = y. Cholesky is tried first with escalating
// diagonal jitter; matrices that never become positive definite fall
// back to an SVD pseudoinverse without a stored factor.
func (g *GP) factorize(K *mat.SymDense, n int) error {
	jitter := initialJitter
	for attempt := 0; attempt < maxFitAttempts; attempt++ {
		Kj := mat.NewSymDense(n, nil)
		Kj.CopySym(K)
		for i := 0; i < n; i++ {
			Kj.SetSym(i, i, Kj.At(i, i)+jitter)
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(Kj); !ok {
			g.logger.Debug("cholesky rejected kernel matrix",
				zap.Int("attempt", attempt+1),
				zap.Float64("jitter", jitter),
			)
			jitter *= 10
			continue
		}

		alpha := mat.NewVecDense(n, nil)
		if err := chol.SolveVecTo(alpha, g.y); err != nil {
			g.logger.Debug("cholesky solve failed",
				zap.Error(err),
				zap.Int("attempt", attempt+1),
			)
			jitter *= 10
			continue
		}

		g.alpha = alpha
		g.chol = &chol
		return nil
	}

	g.logger.Warn("cholesky never accepted the kernel matrix, using pseudoinverse",
		zap.Float64("final_jitter", jitter),
	)
	g.chol = nil
	return g.solvePseudoinverse(K, n)
}

func (g *GP) solvePseudoinverse(K *mat.SymDense, n int) error {
	const op = "GP.solvePseudoinverse"

	var svd mat.SVD
	if ok := svd.Factorize(K, mat.SVDFull); !ok {
		return cerrors.New("SVD factorization failed").WithOp(op).WithComponent("surrogate")
	}

	s := svd.Values(nil)
	if len(s) == 0 {
		return cerrors.New("SVD returned no singular values").WithOp(op).WithComponent("surrogate")
	}
	threshold := math.Max(float64(n), 1) * s[0] * svdThresholdScale

	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)

	var uty mat.VecDense
	uty.MulVec(U.T(), g.y)

	coef := mat.NewVecDense(n, nil)
	rank := 0
	for i := 0; i < n; i++ {
		if s[i] > threshold {
			coef.SetVec(i, uty.AtVec(i)/s[i])
			rank++
		}
	}
	if rank == 0 {
		return cerrors.New("matrix is effectively rank zero after thresholding").
			WithOp(op).WithComponent("surrogate")
	}

	alpha := mat.NewVecDense(n, nil)
	alpha.MulVec(&V, coef)
	g.alpha = alpha

	if g.logger.Level() <= zap.DebugLevel {
		kalpha := mat.NewVecDense(n, nil)
		kalpha.MulVec(K, alpha)
		resid := mat.NewVecDense(n, nil)
		resid.SubVec(kalpha, g.y)
		g.logger.Debug("solved with pseudoinverse",
			zap.Int("effective_rank", rank),
			zap.Float64("residual", mat.Norm(resid, 2)),
			zap.Float64("condition_number", s[0]/math.Max(s[len(s)-1], 1e-16)),
		)
	}
	return nil
}

// Predict returns the posterior mean and variance at the given test
// points, one per row.
func (g *GP) Predict(X *mat.Dense) (*mat.VecDense, *mat.VecDense, error) {
	const op = "GP.Predict"

	if X == nil {
		return nil, nil, cerrors.New("input matrix X is nil").WithOp(op).WithComponent("surrogate")
	}
	if g.alpha == nil || g.x == nil {
		return nil, nil, cerrors.New("model not trained").WithOp(op).WithComponent("surrogate")
	}

	nTest, dTest := X.Dims()
	nTrain, d := g.x.Dims()
	if dTest != d {
		return nil, nil, cerrors.Newf("dimension mismatch: test points have %d features, training has %d", dTest, d).
			WithOp(op).WithComponent("surrogate")
	}

	kstar := mat.NewDense(nTest, nTrain, nil)
	kss := make([]float64, nTest)
	for i := 0; i < nTest; i++ {
		xs := X.RawRowView(i)
		kss[i] = g.kernel.Eval(xs, xs) + g.noiseVar
		for j := 0; j < nTrain; j++ {
			kstar.Set(i, j, g.kernel.Eval(xs, g.x.RawRowView(j)))
		}
	}

	mean := mat.NewVecDense(nTest, nil)
	mean.MulVec(kstar, g.alpha)

	variance := mat.NewVecDense(nTest, nil)
	if g.chol != nil {
		var v mat.Dense
		if err := g.chol.SolveTo(&v, kstar.T()); err != nil {
			return nil, nil, cerrors.Wrap(err, "predictive solve failed").WithOp(op).WithComponent("surrogate")
		}
		for i := 0; i < nTest; i++ {
			var sum float64
			for j := 0; j < nTrain; j++ {
				val := v.At(j, i)
				sum += val * val
			}
			variance.SetVec(i, math.Max(0, kss[i]-sum))
		}
	} else {
		// The pseudoinverse path keeps no factor for the reduction
		// term; report the prior variance rather than a false zero.
		for i := 0; i < nTest; i++ {
			variance.SetVec(i, math.Max(0, kss[i]))
		}
	}

	return mean, variance, nil
}

// PredictOne returns the posterior mean and standard deviation at a
// single point.
func (g *GP) PredictOne(x []float64) (mu, sigma float64, err error) {
	point := mat.NewDense(1, len(x), append([]float64(nil), x...))
	mean, variance, err := g.Predict(point)
	if err != nil {
		return 0, 0, err
	}
	return mean.AtVec(0), math.Sqrt(variance.AtVec(0)), nil
}
