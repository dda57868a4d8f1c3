// Package sweep evaluates an engine over a grid of strikes, splitting the
// grid into contiguous chunks priced concurrently.
package sweep

import (
	"context"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"

	"option-pricer/internal/errors"
	"option-pricer/internal/logging"
	"option-pricer/internal/models"
	"option-pricer/internal/pricing"
	"option-pricer/internal/stats"
)

// Grid describes an evenly spaced strike range relative to spot.
type Grid struct {
	LowRatio  float64 `json:"low_ratio"`
	HighRatio float64 `json:"high_ratio"`
	Points    int     `json:"points"`
}

// DefaultGrid spans 50% to 150% of spot in 50 points.
func DefaultGrid() Grid {
	return Grid{LowRatio: 0.5, HighRatio: 1.5, Points: 50}
}

// Validate checks the grid bounds.
func (g Grid) Validate() error {
	if g.Points < 1 {
		return errors.NewValidationError("points", g.Points, "must be at least 1")
	}
	if g.LowRatio <= 0 {
		return errors.NewValidationError("low_ratio", g.LowRatio, "must be positive")
	}
	if g.HighRatio < g.LowRatio {
		return errors.NewValidationError("high_ratio", g.HighRatio, "must not be below low_ratio")
	}
	return nil
}

// Strikes returns the grid strikes for the given spot.
func (g Grid) Strikes(spot float64) []float64 {
	return stats.StrikeGrid(spot*g.LowRatio, spot*g.HighRatio, g.Points)
}

// Result is a completed sweep.
type Result struct {
	Model    models.Model         `json:"model"`
	Contract models.Contract      `json:"contract"`
	Quotes   []models.StrikeQuote `json:"quotes"`
	Failed   int                  `json:"failed"`
	Duration time.Duration        `json:"duration"`
}

// Runner prices strike grids with a bounded number of workers.
type Runner struct {
	workers int
	// minChunk is the smallest number of strikes handed to one worker.
	minChunk int
}

// NewRunner creates a runner. workers <= 0 means runtime.NumCPU().
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{workers: workers, minChunk: 4}
}

// Run prices c at every strike. Each chunk goes through the engine's batched
// entry point, so shared setup is paid once per chunk rather than per strike.
// Simulation sweeps run as a single chunk: the engine already parallelises
// over paths and every strike must see the same draws.
func (r *Runner) Run(ctx context.Context, engine pricing.Engine, c models.Contract, strikes []float64) (*Result, error) {
	logger := logging.WithOperation(logging.FromContext(ctx), "sweep")
	start := time.Now()

	chunks := r.chunks(len(strikes))
	if engine.Model() == models.ModelSimulation {
		chunks = [][2]int{{0, len(strikes)}}
	}

	quotes := make([]models.StrikeQuote, len(strikes))
	p := pool.New().WithMaxGoroutines(r.workers).WithContext(ctx).WithCancelOnError()
	for _, ch := range chunks {
		lo, hi := ch[0], ch[1]
		p.Go(func(ctx context.Context) error {
			part, err := engine.PriceStrikes(ctx, c, strikes[lo:hi])
			if err != nil {
				return err
			}
			copy(quotes[lo:hi], part)
			return nil
		})
	}

	err := p.Wait()
	res := &Result{
		Model:    engine.Model(),
		Contract: c,
		Quotes:   quotes,
		Duration: time.Since(start),
	}
	for _, q := range quotes {
		if q.Err != nil {
			res.Failed++
		}
	}
	logging.LogSweep(logger, string(engine.Model()), len(strikes), res.Failed, res.Duration, err)
	if err != nil {
		return nil, errors.NewPricingError(string(engine.Model()), "sweep", err)
	}
	return res, nil
}

// chunks splits n strikes into at most r.workers contiguous ranges.
func (r *Runner) chunks(n int) [][2]int {
	if n == 0 {
		return nil
	}
	size := (n + r.workers - 1) / r.workers
	if size < r.minChunk {
		size = r.minChunk
	}
	var out [][2]int
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		out = append(out, [2]int{lo, hi})
	}
	return out
}
