// Package surrogate implements the sequential model-based search over a
// bounded continuous space: a uniform random warm-up phase, then a
// Gaussian-process surrogate refit lazily over the observation history
// and maximized through an Expected-Improvement acquisition rule.
package surrogate

import (
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	cerrors "github.com/copyleftdev/clinkerline/internal/errors"
	"github.com/copyleftdev/clinkerline/internal/surrogate/acquisition"
	"github.com/copyleftdev/clinkerline/internal/surrogate/gp"
	"github.com/copyleftdev/clinkerline/internal/surrogate/kernels"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultWarmupSamples = 5
	DefaultXi            = 0.01
	DefaultNoiseVar      = 1e-6
)

// Config describes one search instance.
type Config struct {
	// Bounds give the inclusive [min, max] range per dimension. At
	// least one dimension is required and every min must be below its
	// max.
	Bounds [][2]float64

	// WarmupSamples is the number of uniformly random suggestions
	// before the surrogate takes over. Zero selects the default.
	WarmupSamples int

	// Restarts is the number of local refinements per suggestion. Zero
	// selects 5 + 5*sqrt(d).
	Restarts int

	// Seed fixes the random stream for reproducible runs. Zero derives
	// a seed from the clock.
	Seed int64

	// Xi is the exploration margin of the acquisition rule. Zero
	// selects the default.
	Xi float64

	// NoiseVar is the observation noise the surrogate assumes. Zero
	// selects the default.
	NoiseVar float64

	// Kernel overrides the default Matérn 5/2 covariance.
	Kernel kernels.Kernel

	// Logger receives search diagnostics; nil disables logging.
	Logger *zap.Logger
}

// Observation is one evaluated point of the search history.
type Observation struct {
	Params []float64
	Value  float64
}

// Search proposes parameter vectors to evaluate and learns from the
// observed objective values. The observation history is the only
// mutable state; one mutex serializes suggesting and updating, so a
// single instance is safe for concurrent use. Values are maximized.
type Search struct {
	bounds   [][2]float64
	warmup   int
	restarts int

	mu      sync.Mutex
	rng     *rand.Rand
	history []Observation
	model   *gp.GP
	stale   bool
	ei      *acquisition.ExpectedImprovement

	logger *zap.Logger
}

// New creates a search over the configured space.
func New(cfg Config) (*Search, error) {
	const op = "Search.New"

	if len(cfg.Bounds) == 0 {
		return nil, cerrors.New("at least one dimension is required").WithOp(op).WithComponent("surrogate")
	}
	for i, b := range cfg.Bounds {
		if !(b[0] < b[1]) {
			return nil, cerrors.Newf("dimension %d: min %v must be below max %v", i, b[0], b[1]).
				WithOp(op).WithComponent("surrogate")
		}
	}

	warmup := cfg.WarmupSamples
	if warmup <= 0 {
		warmup = DefaultWarmupSamples
	}
	restarts := cfg.Restarts
	if restarts <= 0 {
		restarts = 5 + int(5*math.Sqrt(float64(len(cfg.Bounds))))
	}
	xi := cfg.Xi
	if xi <= 0 {
		xi = DefaultXi
	}
	noiseVar := cfg.NoiseVar
	if noiseVar <= 0 {
		noiseVar = DefaultNoiseVar
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	kernel := cfg.Kernel
	if kernel == nil {
		kernel = kernels.NewMatern52(1.0, 1.0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("surrogate")

	bounds := make([][2]float64, len(cfg.Bounds))
	copy(bounds, cfg.Bounds)

	return &Search{
		bounds:   bounds,
		warmup:   warmup,
		restarts: restarts,
		rng:      rand.New(rand.NewSource(seed)),
		model:    gp.New(kernel, noiseVar, logger),
		ei:       acquisition.NewExpectedImprovement(xi),
		logger:   logger,
	}, nil
}

// Dims returns the dimension of the search space.
func (s *Search) Dims() int {
	return len(s.bounds)
}

// Bounds returns a copy of the search space.
func (s *Search) Bounds() [][2]float64 {
	out := make([][2]float64, len(s.bounds))
	copy(out, s.bounds)
	return out
}

// Warmup returns the warm-up threshold.
func (s *Search) Warmup() int {
	return s.warmup
}

// SuggestNext proposes the next point to evaluate, always within
// bounds. During warm-up it samples uniformly at random; afterwards it
// refits the surrogate over the history when observations arrived since
// the last fit, and refines the acquisition maximum from multiple
// starts. A surrogate that cannot be fitted or maximized degrades to
// random exploration instead of stalling the loop.
func (s *Search) SuggestNext() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) < s.warmup {
		point := s.randomPoint()
		s.logger.Debug("warm-up suggestion",
			zap.Int("observations", len(s.history)),
			zap.Int("warmup", s.warmup),
		)
		return point
	}

	if s.stale || !s.model.Trained() {
		if err := s.refit(); err != nil {
			s.logger.Warn("surrogate refit failed, exploring randomly", zap.Error(err))
			return s.randomPoint()
		}
		s.stale = false
	}

	return s.maximizeAcquisition()
}

// Update records an observed objective value for a previously suggested
// (or externally chosen) point. The surrogate is refit lazily on the
// next SuggestNext call, not here.
func (s *Search) Update(params []float64, value float64) error {
	const op = "Search.Update"

	if len(params) != len(s.bounds) {
		return cerrors.Newf("parameter vector has %d dimensions, expected %d", len(params), len(s.bounds)).
			WithOp(op).WithComponent("surrogate")
	}
	for i, v := range params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return cerrors.Newf("parameter %d must be finite, got %v", i, v).
				WithOp(op).WithComponent("surrogate")
		}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return cerrors.Newf("objective value must be finite, got %v", value).
			WithOp(op).WithComponent("surrogate")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, Observation{
		Params: append([]float64(nil), params...),
		Value:  value,
	})
	s.stale = true

	s.logger.Debug("observation recorded",
		zap.Int("observations", len(s.history)),
		zap.Float64("value", value),
	)
	return nil
}

// Best returns the observation with the highest value, if any.
func (s *Search) Best() (Observation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestLocked()
}

// History returns a copy of all observations in arrival order.
func (s *Search) History() []Observation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Observation, len(s.history))
	for i, obs := range s.history {
		out[i] = Observation{
			Params: append([]float64(nil), obs.Params...),
			Value:  obs.Value,
		}
	}
	return out
}

// Observations returns the number of recorded observations.
func (s *Search) Observations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

func (s *Search) bestLocked() (Observation, bool) {
	if len(s.history) == 0 {
		return Observation{}, false
	}
	best := s.history[0]
	for _, obs := range s.history[1:] {
		if obs.Value > best.Value {
			best = obs
		}
	}
	return Observation{
		Params: append([]float64(nil), best.Params...),
		Value:  best.Value,
	}, true
}

func (s *Search) randomPoint() []float64 {
	point := make([]float64, len(s.bounds))
	for i, b := range s.bounds {
		point[i] = b[0] + s.rng.Float64()*(b[1]-b[0])
	}
	return point
}

func (s *Search) refit() error {
	n := len(s.history)
	d := len(s.bounds)

	X := mat.NewDense(n, d, nil)
	y := mat.NewVecDense(n, nil)
	for i, obs := range s.history {
		for j, v := range obs.Params {
			X.Set(i, j, v)
		}
		y.SetVec(i, obs.Value)
	}
	return s.model.Fit(X, y)
}

// maximizeAcquisition refines the Expected-Improvement maximum from the
// incumbent plus a Latin-hypercube start design. Every start also
// counts as a raw candidate, so if all local refinements fail the best
// sampled candidate is still returned.
func (s *Search) maximizeAcquisition() []float64 {
	incumbent, _ := s.bestLocked()
	fBest := incumbent.Value

	negEI := func(x []float64) float64 {
		s.clamp(x)
		mu, sigma, err := s.model.PredictOne(x)
		if err != nil {
			return math.Inf(1)
		}
		return -s.ei.Value(mu, sigma, fBest)
	}

	starts := make([][]float64, 0, s.restarts)
	starts = append(starts, incumbent.Params)
	starts = append(starts, s.latinHypercube(s.restarts-1)...)

	var bestX []float64
	bestVal := math.Inf(1)
	for _, st := range starts {
		if v := negEI(append([]float64(nil), st...)); v < bestVal {
			bestVal = v
			bestX = append([]float64(nil), st...)
		}
	}

	var resMu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, start := range starts {
		start := append([]float64(nil), start...)
		g.Go(func() error {
			problem := optimize.Problem{Func: negEI}
			settings := &optimize.Settings{
				Converger: &optimize.FunctionConverge{
					Absolute:   1e-6,
					Relative:   1e-6,
					Iterations: 100,
				},
			}
			method := &optimize.NelderMead{
				Reflection:  1.0,
				Expansion:   2.0,
				Contraction: 0.5,
				Shrink:      0.5,
				SimplexSize: 0.2,
			}

			result, err := optimize.Minimize(problem, start, settings, method)
			if err != nil || result == nil {
				// A failed refinement loses to the raw candidates.
				return nil
			}

			x := append([]float64(nil), result.X...)
			s.clamp(x)
			v := negEI(x)

			resMu.Lock()
			if v < bestVal {
				bestVal = v
				bestX = x
			}
			resMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if bestX == nil {
		s.logger.Warn("acquisition maximization produced no candidate, exploring randomly")
		return s.randomPoint()
	}

	s.logger.Debug("guided suggestion",
		zap.Float64("expected_improvement", -bestVal),
		zap.Int("restarts", len(starts)),
	)
	return bestX
}

// latinHypercube draws a space-filling design of n points: each
// dimension is stratified into n bins and the bin order shuffled
// independently per dimension.
func (s *Search) latinHypercube(n int) [][]float64 {
	if n <= 0 {
		return nil
	}
	points := make([][]float64, n)
	for j := range points {
		points[j] = make([]float64, len(s.bounds))
	}
	for i, b := range s.bounds {
		col := make([]float64, n)
		for j := 0; j < n; j++ {
			col[j] = (float64(j) + s.rng.Float64()) / float64(n)
		}
		s.rng.Shuffle(n, func(a, c int) {
			col[a], col[c] = col[c], col[a]
		})
		for j := 0; j < n; j++ {
			points[j][i] = b[0] + col[j]*(b[1]-b[0])
		}
	}
	return points
}

func (s *Search) clamp(x []float64) {
	for i := range x {
		if i >= len(s.bounds) {
			return
		}
		if x[i] < s.bounds[i][0] {
			x[i] = s.bounds[i][0]
		}
		if x[i] > s.bounds[i][1] {
			x[i] = s.bounds[i][1]
		}
	}
}
