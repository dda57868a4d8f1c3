package pricing

import (
	"context"
	"math"
	"testing"

	"option-pricer/internal/errors"
	"option-pricer/internal/models"
)

const (
	refCall = 10.450583572185565
	refPut  = 5.573526022256971
)

func latticePrice(t *testing.T, c models.Contract, steps int) float64 {
	t.Helper()
	engine, err := NewLattice(models.LatticeParams{Steps: steps})
	if err != nil {
		t.Fatalf("NewLattice: %v", err)
	}
	q, err := engine.Price(context.Background(), c)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	return q.Price
}

func TestLattice_ConvergesToAnalytic(t *testing.T) {
	tests := []struct {
		steps int
		tol   float64
	}{
		{200, 0.05},
		{500, 0.01},
	}
	for _, tt := range tests {
		call := latticePrice(t, atmContract(t, models.Call, models.European), tt.steps)
		if math.Abs(call-refCall) > tt.tol {
			t.Errorf("steps=%d: call = %.6f, want %.6f ± %v", tt.steps, call, refCall, tt.tol)
		}
		put := latticePrice(t, atmContract(t, models.Put, models.European), tt.steps)
		if math.Abs(put-refPut) > tt.tol {
			t.Errorf("steps=%d: put = %.6f, want %.6f ± %v", tt.steps, put, refPut, tt.tol)
		}
	}
}

func TestLattice_ErrorShrinksWithSteps(t *testing.T) {
	c := atmContract(t, models.Call, models.European)
	coarse := math.Abs(latticePrice(t, c, 20) - refCall)
	fine := math.Abs(latticePrice(t, c, 800) - refCall)
	if fine >= coarse {
		t.Errorf("error at 800 steps (%g) should be below error at 20 steps (%g)", fine, coarse)
	}
}

func TestLattice_EuropeanPutCallParity(t *testing.T) {
	call := latticePrice(t, atmContract(t, models.Call, models.European), 400)
	put := latticePrice(t, atmContract(t, models.Put, models.European), 400)
	want := 100 - 100*math.Exp(-0.05)
	// Parity holds exactly on the tree, up to rounding.
	if diff := math.Abs(call - put - want); diff > 1e-8 {
		t.Errorf("C - P = %.10f, want %.10f", call-put, want)
	}
}

func TestLattice_AmericanPutCarriesEarlyExercisePremium(t *testing.T) {
	european := latticePrice(t, atmContract(t, models.Put, models.European), 300)
	american := latticePrice(t, atmContract(t, models.Put, models.American), 300)
	if american <= european {
		t.Errorf("american put %.6f should exceed european put %.6f", american, european)
	}
	// Reference value for these parameters is about 6.09.
	if math.Abs(american-6.09) > 0.03 {
		t.Errorf("american put = %.6f, want ~6.09", american)
	}
}

func TestLattice_AmericanCallEqualsEuropeanWithoutDividends(t *testing.T) {
	european := latticePrice(t, atmContract(t, models.Call, models.European), 300)
	american := latticePrice(t, atmContract(t, models.Call, models.American), 300)
	if math.Abs(american-european) > 1e-9 {
		t.Errorf("american call %.12f != european call %.12f", american, european)
	}
}

func TestLattice_DeepInTheMoneyAmericanPutIsIntrinsic(t *testing.T) {
	c, err := models.NewContract(models.ContractParams{
		Spot: 50, Strike: 100, Maturity: 1, Rate: 0.05, Volatility: 0.2,
		Kind: models.Put, Style: models.American,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := latticePrice(t, c, 200); math.Abs(got-50) > 1e-9 {
		t.Errorf("deep ITM american put = %v, want immediate exercise value 50", got)
	}
}

func TestLattice_ArbitrageViolation(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		vol   float64
		steps int
	}{
		{"zero volatility", 0.05, 0, 100},
		{"rate dominates volatility", 1.0, 0.01, 1},
		{"negative rate dominates volatility", -1.0, 0.01, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PriceLattice(100, 100, 1, tt.rate, tt.vol, tt.steps, models.Call, models.European)
			if !errors.Is(err, errors.ErrArbitrageViolation) {
				t.Fatalf("expected ErrArbitrageViolation, got %v", err)
			}
			var arb *errors.ArbitrageError
			if !errors.As(err, &arb) {
				t.Fatalf("expected *ArbitrageError, got %T", err)
			}
		})
	}
}

func TestLattice_RejectsBadSteps(t *testing.T) {
	for _, steps := range []int{0, -3} {
		if _, err := NewLattice(models.LatticeParams{Steps: steps}); !errors.Is(err, errors.ErrInvalidParameter) {
			t.Errorf("steps=%d: expected ErrInvalidParameter, got %v", steps, err)
		}
	}
}

func TestLattice_SingleStep(t *testing.T) {
	// One step by hand: u = e^0.2, d = 1/u, p = (e^0.05 - d)/(u - d).
	u := math.Exp(0.2)
	d := 1 / u
	p := (math.Exp(0.05) - d) / (u - d)
	want := math.Exp(-0.05) * p * (100*u - 100)

	got := latticePrice(t, atmContract(t, models.Call, models.European), 1)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("one-step call = %v, want %v", got, want)
	}
}

func TestSpotLadder(t *testing.T) {
	u := math.Exp(0.02)
	for _, n := range []int{1, 2, 7, 100, 101} {
		ladder := spotLadder(100, u, n)
		if len(ladder) != n+1 {
			t.Fatalf("n=%d: len = %d", n, len(ladder))
		}
		for j, got := range ladder {
			want := 100 * math.Pow(u, float64(2*j-n))
			if math.Abs(got-want)/want > 1e-12 {
				t.Errorf("n=%d j=%d: got %v, want %v", n, j, got, want)
			}
		}
	}
}

func TestLattice_PriceStrikesReusesTree(t *testing.T) {
	engine, err := NewLattice(models.LatticeParams{Steps: 150})
	if err != nil {
		t.Fatal(err)
	}
	base := atmContract(t, models.Put, models.American)
	strikes := []float64{70, 90, 100, 0, 130}

	quotes, err := engine.PriceStrikes(context.Background(), base, strikes)
	if err != nil {
		t.Fatalf("PriceStrikes: %v", err)
	}
	for i, k := range strikes {
		if k <= 0 {
			if !errors.Is(quotes[i].Err, errors.ErrInvalidParameter) {
				t.Errorf("strike %v: expected ErrInvalidParameter, got %v", k, quotes[i].Err)
			}
			continue
		}
		single := latticePrice(t, base.WithStrike(k), 150)
		if quotes[i].Price != single {
			t.Errorf("strike %v: batch %v, single %v", k, quotes[i].Price, single)
		}
	}
}

func TestLattice_PriceStrikesHonoursCancellation(t *testing.T) {
	engine, err := NewLattice(models.LatticeParams{Steps: 50})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.PriceStrikes(ctx, atmContract(t, models.Call, models.European), []float64{90, 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func BenchmarkLattice500American(b *testing.B) {
	engine, _ := NewLattice(models.LatticeParams{Steps: 500})
	c := models.Contract{Spot: 100, Strike: 100, Maturity: 1, Rate: 0.05, Volatility: 0.2, Kind: models.Put, Style: models.American}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Price(context.Background(), c); err != nil {
			b.Fatal(err)
		}
	}
}
