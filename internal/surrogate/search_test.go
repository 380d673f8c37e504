package surrogate

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var kilnBounds = [][2]float64{
	{1350, 1500},
	{3, 5},
	{8, 15},
	{50, 120},
	{25, 35},
	{250, 350},
}

func assertWithinBounds(t *testing.T, bounds [][2]float64, point []float64) {
	t.Helper()
	require.Len(t, point, len(bounds))
	for i, b := range bounds {
		assert.GreaterOrEqual(t, point[i], b[0], "dimension %d below min", i)
		assert.LessOrEqual(t, point[i], b[1], "dimension %d above max", i)
	}
}

func TestWarmupStaysWithinBounds(t *testing.T) {
	s, err := New(Config{
		Bounds: kilnBounds,
		Seed:   42,
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultWarmupSamples, s.Warmup())

	for i := 0; i < s.Warmup(); i++ {
		assertWithinBounds(t, kilnBounds, s.SuggestNext())
	}
}

func TestSeedReproducibility(t *testing.T) {
	a, err := New(Config{Bounds: kilnBounds, Seed: 7})
	require.NoError(t, err)
	b, err := New(Config{Bounds: kilnBounds, Seed: 7})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Equal(t, a.SuggestNext(), b.SuggestNext(),
			"identical seeds must replay the same warm-up sequence")
	}

	c, err := New(Config{Bounds: kilnBounds, Seed: 8})
	require.NoError(t, err)
	assert.NotEqual(t, a.SuggestNext(), c.SuggestNext())
}

func TestSearchConvergesOnSmoothObjective(t *testing.T) {
	s, err := New(Config{
		Bounds:   [][2]float64{{0, 5}},
		Seed:     7,
		Restarts: 6,
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	objective := func(x []float64) float64 {
		return -(x[0] - 2) * (x[0] - 2)
	}

	runningBest := math.Inf(-1)
	for i := 0; i < 50; i++ {
		point := s.SuggestNext()
		assertWithinBounds(t, s.Bounds(), point)

		value := objective(point)
		require.NoError(t, s.Update(point, value))

		if value > runningBest {
			runningBest = value
		}
		best, ok := s.Best()
		require.True(t, ok)
		assert.Equal(t, runningBest, best.Value,
			"best must track the running maximum")
	}

	assert.Equal(t, 50, s.Observations())
	best, ok := s.Best()
	require.True(t, ok)
	assert.Greater(t, best.Value, -1.0,
		"fifty evaluations should localize the optimum of a smooth unimodal objective")
}

func TestUpdateValidation(t *testing.T) {
	s, err := New(Config{Bounds: [][2]float64{{0, 1}, {0, 1}}, Seed: 1})
	require.NoError(t, err)

	tests := []struct {
		name    string
		params  []float64
		value   float64
		wantErr string
	}{
		{
			name:    "wrong dimension",
			params:  []float64{0.5},
			value:   1,
			wantErr: "parameter vector has 1 dimensions, expected 2",
		},
		{
			name:    "NaN parameter",
			params:  []float64{math.NaN(), 0.5},
			value:   1,
			wantErr: "parameter 0 must be finite",
		},
		{
			name:    "NaN value",
			params:  []float64{0.5, 0.5},
			value:   math.NaN(),
			wantErr: "objective value must be finite",
		},
		{
			name:    "infinite value",
			params:  []float64{0.5, 0.5},
			value:   math.Inf(1),
			wantErr: "objective value must be finite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Update(tt.params, tt.value)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Equal(t, 0, s.Observations(), "rejected updates must not be recorded")
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "no bounds",
			cfg:     Config{},
			wantErr: "at least one dimension is required",
		},
		{
			name:    "inverted bound",
			cfg:     Config{Bounds: [][2]float64{{0, 1}, {5, 3}}},
			wantErr: "dimension 1: min 5 must be below max 3",
		},
		{
			name:    "degenerate bound",
			cfg:     Config{Bounds: [][2]float64{{2, 2}}},
			wantErr: "dimension 0: min 2 must be below max 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBestAndHistory(t *testing.T) {
	s, err := New(Config{Bounds: [][2]float64{{0, 10}}, Seed: 3})
	require.NoError(t, err)

	_, ok := s.Best()
	assert.False(t, ok, "no best before any observation")

	require.NoError(t, s.Update([]float64{1}, 0.3))
	require.NoError(t, s.Update([]float64{4}, 0.9))
	require.NoError(t, s.Update([]float64{7}, 0.5))

	best, ok := s.Best()
	require.True(t, ok)
	assert.Equal(t, 0.9, best.Value)
	assert.Equal(t, []float64{4}, best.Params)

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, []float64{1}, history[0].Params)
	assert.Equal(t, 0.5, history[2].Value)
}

func TestHistoryIsACopy(t *testing.T) {
	s, err := New(Config{Bounds: [][2]float64{{0, 10}}, Seed: 3})
	require.NoError(t, err)

	params := []float64{2}
	require.NoError(t, s.Update(params, 1.0))

	params[0] = 99
	s.History()[0].Params[0] = 99
	best, _ := s.Best()
	best.Params[0] = 99

	fresh := s.History()
	assert.Equal(t, 2.0, fresh[0].Params[0],
		"recorded observations must be isolated from caller slices")
}

type nanKernel struct{}

func (nanKernel) Eval(_, _ []float64) float64 { return math.NaN() }

func TestDegenerateSurrogateFallsBackToRandom(t *testing.T) {
	s, err := New(Config{
		Bounds:        [][2]float64{{0, 1}},
		WarmupSamples: 1,
		Seed:          3,
		Kernel:        nanKernel{},
		Logger:        zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	require.NoError(t, s.Update([]float64{0.5}, 1.0))

	// The surrogate cannot be fitted from a NaN covariance; the search
	// must keep producing usable in-bounds points regardless.
	for i := 0; i < 3; i++ {
		assertWithinBounds(t, s.Bounds(), s.SuggestNext())
	}
}

func TestConcurrentSuggestAndUpdate(t *testing.T) {
	s, err := New(Config{
		Bounds:        [][2]float64{{0, 1}, {0, 1}},
		WarmupSamples: 100,
		Seed:          11,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				point := s.SuggestNext()
				if err := s.Update(point, point[0]+point[1]); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 40, s.Observations())
}
