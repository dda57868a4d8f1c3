package pricing

import (
	"context"

	"option-pricer/internal/models"
)

// Flat entry points for callers that hold raw numbers rather than a Contract.
// Each builds and validates the contract, then delegates to the engine.

// PriceAnalytic returns the Black-Scholes price of a European option.
func PriceAnalytic(spot, strike, maturity, rate, volatility float64, kind models.OptionKind) (float64, error) {
	c, err := models.NewContract(models.ContractParams{
		Spot: spot, Strike: strike, Maturity: maturity, Rate: rate, Volatility: volatility,
		Kind: kind, Style: models.European,
	})
	if err != nil {
		return 0, err
	}
	q, err := NewAnalytic().Price(context.Background(), c)
	return q.Price, err
}

// PriceLattice returns the binomial tree price of a European or American option.
func PriceLattice(spot, strike, maturity, rate, volatility float64, steps int, kind models.OptionKind, style models.ExerciseStyle) (float64, error) {
	c, err := models.NewContract(models.ContractParams{
		Spot: spot, Strike: strike, Maturity: maturity, Rate: rate, Volatility: volatility,
		Kind: kind, Style: style,
	})
	if err != nil {
		return 0, err
	}
	engine, err := NewLattice(models.LatticeParams{Steps: steps})
	if err != nil {
		return 0, err
	}
	q, err := engine.Price(context.Background(), c)
	return q.Price, err
}

// PriceSimulation returns the Monte Carlo price of a European option and its
// standard error. Pass a seed for reproducible prices. A nil seed draws a
// fresh clock-derived seed, so two unseeded calls return different prices; use
// a Simulation engine directly to read that seed back from Quote.Seed.
func PriceSimulation(ctx context.Context, spot, strike, maturity, rate, volatility float64, kind models.OptionKind, paths int, seed *uint64) (price, stdErr float64, err error) {
	c, err := models.NewContract(models.ContractParams{
		Spot: spot, Strike: strike, Maturity: maturity, Rate: rate, Volatility: volatility,
		Kind: kind, Style: models.European,
	})
	if err != nil {
		return 0, 0, err
	}
	engine, err := NewSimulation(models.SimulationParams{Paths: paths, Seed: seed})
	if err != nil {
		return 0, 0, err
	}
	q, err := engine.Price(ctx, c)
	return q.Price, q.StdErr, err
}

// PriceAnalyticStrikes is the array form of PriceAnalytic.
func PriceAnalyticStrikes(spot float64, strikes []float64, maturity, rate, volatility float64, kind models.OptionKind) ([]models.StrikeQuote, error) {
	return NewAnalytic().PriceStrikes(context.Background(), sweepContract(spot, maturity, rate, volatility, kind, models.European), strikes)
}

// PriceLatticeStrikes is the array form of PriceLattice.
func PriceLatticeStrikes(spot float64, strikes []float64, maturity, rate, volatility float64, steps int, kind models.OptionKind, style models.ExerciseStyle) ([]models.StrikeQuote, error) {
	engine, err := NewLattice(models.LatticeParams{Steps: steps})
	if err != nil {
		return nil, err
	}
	return engine.PriceStrikes(context.Background(), sweepContract(spot, maturity, rate, volatility, kind, style), strikes)
}

// PriceSimulationStrikes is the array form of PriceSimulation. All strikes
// share the same terminal draws.
func PriceSimulationStrikes(ctx context.Context, spot float64, strikes []float64, maturity, rate, volatility float64, kind models.OptionKind, paths int, seed *uint64) ([]models.StrikeQuote, error) {
	engine, err := NewSimulation(models.SimulationParams{Paths: paths, Seed: seed})
	if err != nil {
		return nil, err
	}
	return engine.PriceStrikes(ctx, sweepContract(spot, maturity, rate, volatility, kind, models.European), strikes)
}

// sweepContract builds the strike-less contract the batched engines expect.
// Validation happens inside PriceStrikes.
func sweepContract(spot, maturity, rate, volatility float64, kind models.OptionKind, style models.ExerciseStyle) models.Contract {
	return models.Contract{
		Spot:       spot,
		Maturity:   maturity,
		Rate:       rate,
		Volatility: volatility,
		Kind:       kind,
		Style:      style,
	}
}
