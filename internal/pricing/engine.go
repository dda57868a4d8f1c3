// Package pricing implements the closed-form, binomial lattice and Monte Carlo
// engines for vanilla European and American options.
//
// All engines are safe for concurrent use: they hold only immutable
// configuration and allocate their working buffers per call.
package pricing

import (
	"context"

	"option-pricer/internal/errors"
	"option-pricer/internal/models"
)

// Engine prices vanilla option contracts.
type Engine interface {
	// Model identifies the engine.
	Model() models.Model

	// Price values a single contract.
	Price(ctx context.Context, c models.Contract) (models.Quote, error)

	// PriceStrikes values c once per strike, sharing every quantity that does
	// not depend on the strike. c.Strike is ignored. A bad strike fails only
	// its own element; a bad shared parameter fails the call.
	PriceStrikes(ctx context.Context, c models.Contract, strikes []float64) ([]models.StrikeQuote, error)
}

// Options carries the engine-specific parameters for New.
type Options struct {
	Lattice    models.LatticeParams
	Simulation models.SimulationParams
}

// New builds the engine for model m.
func New(m models.Model, opts Options) (Engine, error) {
	switch m {
	case models.ModelAnalytic:
		return NewAnalytic(), nil
	case models.ModelLattice:
		return NewLattice(opts.Lattice)
	case models.ModelSimulation:
		return NewSimulation(opts.Simulation)
	default:
		return nil, errors.Wrapf(errors.ErrUnknownModel, "%q", m)
	}
}

// requireEuropean rejects American contracts for engines that cannot
// represent early exercise.
func requireEuropean(m models.Model, c models.Contract) error {
	if c.Style == models.American {
		return &errors.StyleError{Model: string(m), Style: "american"}
	}
	return nil
}

// validateStrikes runs the shared validation once and returns a quote slice
// pre-filled with the strikes and any per-strike validation error.
func validateStrikes(c models.Contract, strikes []float64) ([]models.StrikeQuote, error) {
	if err := c.ValidateShared(); err != nil {
		return nil, err
	}
	out := make([]models.StrikeQuote, len(strikes))
	for i, k := range strikes {
		out[i].Strike = k
		out[i].Err = models.ValidateStrike(k)
	}
	return out, nil
}
