package pricing

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"

	"option-pricer/internal/logging"
	"option-pricer/internal/models"
	"option-pricer/internal/stats"
)

// Simulation prices European options by Monte Carlo sampling of the exact
// geometric Brownian motion terminal value.
//
// Paths are drawn in batches. Batch b always uses the sub-stream
// stats.StreamSeed(seed, b), so a seeded run returns the same estimate for
// any worker count. The context is checked before every batch.
type Simulation struct {
	paths     int
	batchSize int
	workers   int
	seed      uint64
	seeded    bool
}

// NewSimulation creates a simulation engine.
func NewSimulation(p models.SimulationParams) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		paths:     p.Paths,
		batchSize: p.BatchSize,
		workers:   p.Workers,
	}
	if s.batchSize == 0 {
		s.batchSize = models.DefaultBatchSize
	}
	if s.workers == 0 {
		s.workers = runtime.NumCPU()
	}
	if p.Seed != nil {
		s.seed, s.seeded = *p.Seed, true
	}
	return s, nil
}

// Model implements Engine.
func (s *Simulation) Model() models.Model {
	return models.ModelSimulation
}

// Price implements Engine.
func (s *Simulation) Price(ctx context.Context, c models.Contract) (models.Quote, error) {
	if err := c.Validate(); err != nil {
		return models.Quote{}, err
	}
	if err := requireEuropean(models.ModelSimulation, c); err != nil {
		return models.Quote{}, err
	}

	seed := s.resolveSeed()
	moments, err := s.run(ctx, c, []float64{c.Strike}, seed)
	if err != nil {
		return models.Quote{}, err
	}

	disc := c.Discount()
	return models.Quote{
		Model:  models.ModelSimulation,
		Price:  disc * moments[0].Mean,
		StdErr: disc * moments[0].StdErr(),
		Paths:  s.paths,
		Seed:   &seed,
	}, nil
}

// PriceStrikes implements Engine. Every strike is evaluated against the same
// terminal draws, so a sweep samples the underlying only once.
func (s *Simulation) PriceStrikes(ctx context.Context, c models.Contract, strikes []float64) ([]models.StrikeQuote, error) {
	out, err := validateStrikes(c, strikes)
	if err != nil {
		return nil, err
	}
	if err := requireEuropean(models.ModelSimulation, c); err != nil {
		return nil, err
	}

	valid := make([]float64, 0, len(out))
	index := make([]int, 0, len(out))
	for i, q := range out {
		if q.Err == nil {
			valid = append(valid, q.Strike)
			index = append(index, i)
		}
	}
	if len(valid) == 0 {
		return out, nil
	}

	moments, err := s.run(ctx, c, valid, s.resolveSeed())
	if err != nil {
		return nil, err
	}

	disc := c.Discount()
	for k, i := range index {
		out[i].Price = disc * moments[k].Mean
		out[i].StdErr = disc * moments[k].StdErr()
	}
	return out, nil
}

func (s *Simulation) resolveSeed() uint64 {
	if s.seeded {
		return s.seed
	}
	return stats.NewSeed()
}

// run returns the undiscounted payoff moments for each strike.
func (s *Simulation) run(ctx context.Context, c models.Contract, strikes []float64, seed uint64) ([]stats.Moments, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	drift := (c.Rate - 0.5*c.Volatility*c.Volatility) * c.Maturity
	diffusion := c.Volatility * math.Sqrt(c.Maturity)

	batches := (s.paths + s.batchSize - 1) / s.batchSize
	partial := make([][]stats.Moments, batches)

	p := pool.New().WithMaxGoroutines(s.workers).WithContext(ctx)
	for b := 0; b < batches; b++ {
		b := b
		n := s.batchSize
		if rem := s.paths - b*s.batchSize; rem < n {
			n = rem
		}
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partial[b] = simulateBatch(c.Spot, drift, diffusion, c.Kind, strikes, n, stats.StreamSeed(seed, b))
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	// Merge in batch order so the floating-point result does not depend on
	// scheduling.
	total := make([]stats.Moments, len(strikes))
	for _, batch := range partial {
		for k := range total {
			total[k] = total[k].Merge(batch[k])
		}
	}

	logger.Debug().
		Int("paths", s.paths).
		Int("batches", batches).
		Int("strikes", len(strikes)).
		Uint64("seed", seed).
		Dur("duration", time.Since(start)).
		Msg("Simulation completed")

	return total, nil
}

// simulateBatch draws n terminal prices and returns the payoff moments per strike.
func simulateBatch(spot, drift, diffusion float64, kind models.OptionKind, strikes []float64, n int, seed uint64) []stats.Moments {
	terminal := make([]float64, n)
	stats.NewSampler(seed).Fill(terminal)
	for i, z := range terminal {
		terminal[i] = spot * math.Exp(drift+diffusion*z)
	}

	payoffs := make([]float64, n)
	out := make([]stats.Moments, len(strikes))
	for k, strike := range strikes {
		for i, st := range terminal {
			payoffs[i] = models.Payoff(kind, st, strike)
		}
		out[k] = stats.MomentsOf(payoffs)
	}
	return out
}
