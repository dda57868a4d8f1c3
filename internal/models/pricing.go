package models

import (
	"strings"

	"option-pricer/internal/errors"
)

// Model identifies a pricing engine.
type Model string

// Pricing models
const (
	ModelAnalytic   Model = "analytic"
	ModelLattice    Model = "lattice"
	ModelSimulation Model = "simulation"
)

// AllModels lists the models in display order.
var AllModels = []Model{ModelAnalytic, ModelLattice, ModelSimulation}

// ParseModel accepts the model names plus the common aliases used on the
// command line (black-scholes, binomial, monte-carlo).
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "analytic", "black-scholes", "blackscholes", "bs":
		return ModelAnalytic, nil
	case "lattice", "binomial", "binomial-tree", "crr":
		return ModelLattice, nil
	case "simulation", "monte-carlo", "montecarlo", "mc":
		return ModelSimulation, nil
	default:
		return "", errors.Wrapf(errors.ErrUnknownModel, "%q", s)
	}
}

// Title returns a display name for the model.
func (m Model) Title() string {
	switch m {
	case ModelAnalytic:
		return "Black-Scholes"
	case ModelLattice:
		return "Binomial Tree"
	case ModelSimulation:
		return "Monte Carlo"
	default:
		return string(m)
	}
}

// LatticeParams configures the lattice engine.
type LatticeParams struct {
	Steps int `json:"steps"`
}

// Validate checks the step count.
func (p LatticeParams) Validate() error {
	if p.Steps < 1 {
		return errors.NewValidationError("steps", p.Steps, "must be at least 1")
	}
	return nil
}

// DefaultBatchSize is the number of paths drawn between cancellation checks.
const DefaultBatchSize = 10000

// SimulationParams configures the simulation engine.
type SimulationParams struct {
	Paths int `json:"paths"`
	// Seed makes the run reproducible. Nil means a seed is drawn once per
	// call and reported in the quote.
	Seed      *uint64 `json:"seed,omitempty"`
	BatchSize int     `json:"batch_size"`
	Workers   int     `json:"workers"`
}

// Validate checks path, batch and worker counts. Zero batch size and
// worker count mean defaults.
func (p SimulationParams) Validate() error {
	if p.Paths < 1 {
		return errors.NewValidationError("paths", p.Paths, "must be at least 1")
	}
	if p.BatchSize < 0 {
		return errors.NewValidationError("batch_size", p.BatchSize, "must not be negative")
	}
	if p.Workers < 0 {
		return errors.NewValidationError("workers", p.Workers, "must not be negative")
	}
	return nil
}

// Quote is the result of pricing one contract.
type Quote struct {
	Model Model   `json:"model"`
	Price float64 `json:"price"`
	// StdErr is the sample standard error of the estimate. Zero for
	// deterministic engines.
	StdErr float64 `json:"std_err,omitempty"`
	Paths  int     `json:"paths,omitempty"`
	Steps  int     `json:"steps,omitempty"`
	Seed   *uint64 `json:"seed,omitempty"`
}

// StrikeQuote is one element of a batched strike evaluation. A non-nil Err
// means this strike failed; the other elements are still valid.
type StrikeQuote struct {
	Strike float64 `json:"strike"`
	Price  float64 `json:"price"`
	StdErr float64 `json:"std_err,omitempty"`
	Err    error   `json:"-"`
}

// Prices extracts the price column of a batch.
func Prices(quotes []StrikeQuote) []float64 {
	out := make([]float64, len(quotes))
	for i, q := range quotes {
		out[i] = q.Price
	}
	return out
}
