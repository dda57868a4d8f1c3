package pricing

import (
	"context"
	"math"

	"option-pricer/internal/errors"
	"option-pricer/internal/models"
)

// Lattice prices European and American options on a recombining
// Cox-Ross-Rubinstein binomial tree.
type Lattice struct {
	steps int
}

// NewLattice creates a lattice engine with p.Steps time increments.
func NewLattice(p models.LatticeParams) (*Lattice, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Lattice{steps: p.Steps}, nil
}

// Model implements Engine.
func (l *Lattice) Model() models.Model {
	return models.ModelLattice
}

// Price implements Engine.
func (l *Lattice) Price(ctx context.Context, c models.Contract) (models.Quote, error) {
	if err := c.Validate(); err != nil {
		return models.Quote{}, err
	}
	tree, err := newLatticeTree(c, l.steps)
	if err != nil {
		return models.Quote{}, err
	}
	buf := tree.newBuffers()
	return models.Quote{
		Model: models.ModelLattice,
		Price: tree.price(c.Strike, buf),
		Steps: l.steps,
	}, nil
}

// PriceStrikes implements Engine. The tree parameters and the terminal spot
// ladder are built once; the two working buffers are reused for every strike.
func (l *Lattice) PriceStrikes(ctx context.Context, c models.Contract, strikes []float64) ([]models.StrikeQuote, error) {
	out, err := validateStrikes(c, strikes)
	if err != nil {
		return nil, err
	}
	tree, err := newLatticeTree(c, l.steps)
	if err != nil {
		return nil, err
	}
	buf := tree.newBuffers()
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if out[i].Err == nil {
			out[i].Price = tree.price(out[i].Strike, buf)
		}
	}
	return out, nil
}

// latticeTree holds the strike-independent parts of the tree.
type latticeTree struct {
	kind     models.OptionKind
	american bool
	steps    int
	up       float64
	prob     float64
	discount float64
	// leaves[j] is the underlying price at maturity after j up moves.
	leaves []float64
}

type latticeBuffers struct {
	values []float64
	spots  []float64
}

func newLatticeTree(c models.Contract, steps int) (*latticeTree, error) {
	dt := c.Maturity / float64(steps)
	u := math.Exp(c.Volatility * math.Sqrt(dt))
	d := 1 / u
	growth := math.Exp(c.Rate * dt)
	p := (growth - d) / (u - d)

	// Also catches the NaN produced by sigma == 0 (u == d).
	if !(p > 0 && p < 1) {
		return nil, &errors.ArbitrageError{Probability: p, Up: u, Down: d, Growth: growth}
	}

	return &latticeTree{
		kind:     c.Kind,
		american: c.Style == models.American,
		steps:    steps,
		up:       u,
		prob:     p,
		discount: 1 / growth,
		leaves:   spotLadder(c.Spot, u, steps),
	}, nil
}

// spotLadder returns S·u^j·d^(n−j) for j = 0..n. Rather than walking up from
// S·d^n by repeated u, it starts at the node closest to S and multiplies
// outwards by u² and d², so each price is at most n/2 multiplications away
// from an exact value.
func spotLadder(spot, u float64, n int) []float64 {
	ladder := make([]float64, n+1)
	u2 := u * u
	d2 := 1 / u2

	mid := n / 2
	if n%2 == 0 {
		ladder[mid] = spot
	} else {
		ladder[mid] = spot / u
	}
	for j := mid + 1; j <= n; j++ {
		ladder[j] = ladder[j-1] * u2
	}
	for j := mid - 1; j >= 0; j-- {
		ladder[j] = ladder[j+1] * d2
	}
	return ladder
}

func (t *latticeTree) newBuffers() *latticeBuffers {
	b := &latticeBuffers{values: make([]float64, t.steps+1)}
	if t.american {
		b.spots = make([]float64, t.steps+1)
	}
	return b
}

// price runs backward induction for one strike, overwriting buf.
func (t *latticeTree) price(strike float64, buf *latticeBuffers) float64 {
	values := buf.values
	for j, s := range t.leaves {
		values[j] = models.Payoff(t.kind, s, strike)
	}

	p, q := t.prob, 1-t.prob
	disc := t.discount

	if !t.american {
		for i := t.steps - 1; i >= 0; i-- {
			for j := 0; j <= i; j++ {
				values[j] = disc * (p*values[j+1] + q*values[j])
			}
		}
		return values[0]
	}

	spots := buf.spots
	copy(spots, t.leaves)
	for i := t.steps - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			// node (i, j) = node (i+1, j) · u, since u·d = 1
			spots[j] *= t.up
			cont := disc * (p*values[j+1] + q*values[j])
			values[j] = math.Max(cont, models.Payoff(t.kind, spots[j], strike))
		}
	}
	return values[0]
}
