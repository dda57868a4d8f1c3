package pricing

import (
	"context"
	"math"

	"option-pricer/internal/models"
	"option-pricer/internal/stats"
)

// Analytic prices European options with the Black-Scholes closed form.
type Analytic struct{}

// NewAnalytic creates the closed-form engine.
func NewAnalytic() *Analytic {
	return &Analytic{}
}

// Model implements Engine.
func (a *Analytic) Model() models.Model {
	return models.ModelAnalytic
}

// Price implements Engine.
func (a *Analytic) Price(ctx context.Context, c models.Contract) (models.Quote, error) {
	if err := c.Validate(); err != nil {
		return models.Quote{}, err
	}
	if err := requireEuropean(models.ModelAnalytic, c); err != nil {
		return models.Quote{}, err
	}
	k := newAnalyticKernel(c)
	return models.Quote{Model: models.ModelAnalytic, Price: k.price(c.Strike)}, nil
}

// PriceStrikes implements Engine.
func (a *Analytic) PriceStrikes(ctx context.Context, c models.Contract, strikes []float64) ([]models.StrikeQuote, error) {
	out, err := validateStrikes(c, strikes)
	if err != nil {
		return nil, err
	}
	if err := requireEuropean(models.ModelAnalytic, c); err != nil {
		return nil, err
	}
	k := newAnalyticKernel(c)
	for i := range out {
		if out[i].Err == nil {
			out[i].Price = k.price(out[i].Strike)
		}
	}
	return out, nil
}

// analyticKernel holds the strike-independent parts of the formula.
type analyticKernel struct {
	kind     models.OptionKind
	spot     float64
	logSpot  float64
	discount float64
	volSqrtT float64
	// drift is (r + sigma²/2)·T
	drift float64
}

func newAnalyticKernel(c models.Contract) analyticKernel {
	return analyticKernel{
		kind:     c.Kind,
		spot:     c.Spot,
		logSpot:  math.Log(c.Spot),
		discount: c.Discount(),
		volSqrtT: c.Volatility * math.Sqrt(c.Maturity),
		drift:    (c.Rate + 0.5*c.Volatility*c.Volatility) * c.Maturity,
	}
}

func (k analyticKernel) price(strike float64) float64 {
	// No uncertainty: d1/d2 are undefined, fall back to the discounted
	// intrinsic value.
	if k.volSqrtT == 0 {
		return k.discount * models.Payoff(k.kind, k.spot, strike)
	}

	d1 := (k.logSpot - math.Log(strike) + k.drift) / k.volSqrtT
	d2 := d1 - k.volSqrtT
	pvStrike := strike * k.discount

	if k.kind == models.Call {
		return k.spot*stats.NormCDF(d1) - pvStrike*stats.NormCDF(d2)
	}
	return pvStrike*stats.NormCDF(-d2) - k.spot*stats.NormCDF(-d1)
}
