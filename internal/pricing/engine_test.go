package pricing

import (
	"context"
	"testing"

	"option-pricer/internal/errors"
	"option-pricer/internal/models"
)

func TestEngines_ShareContractValidation(t *testing.T) {
	seed := uint64(9)
	opts := Options{
		Lattice:    models.LatticeParams{Steps: 50},
		Simulation: models.SimulationParams{Paths: 1000, Seed: &seed},
	}
	valid := models.Contract{Spot: 100, Strike: 100, Maturity: 1, Rate: 0.05, Volatility: 0.2, Kind: models.Call, Style: models.European}

	tests := []struct {
		name   string
		mutate func(c *models.Contract)
		want   error
	}{
		{"unknown kind", func(c *models.Contract) { c.Kind = "STRADDLE" }, errors.ErrUnknownOptionKind},
		{"negative spot", func(c *models.Contract) { c.Spot = -1 }, errors.ErrInvalidParameter},
		{"zero maturity", func(c *models.Contract) { c.Maturity = 0 }, errors.ErrInvalidParameter},
		{"negative volatility", func(c *models.Contract) { c.Volatility = -0.2 }, errors.ErrInvalidParameter},
	}

	for _, m := range models.AllModels {
		engine, err := New(m, opts)
		if err != nil {
			t.Fatalf("New(%s): %v", m, err)
		}
		for _, tt := range tests {
			t.Run(string(m)+"/"+tt.name, func(t *testing.T) {
				c := valid
				tt.mutate(&c)

				if _, err := engine.Price(context.Background(), c); !errors.Is(err, tt.want) {
					t.Errorf("Price: expected %v, got %v", tt.want, err)
				}
				if _, err := engine.PriceStrikes(context.Background(), c, []float64{90, 100, 110}); !errors.Is(err, tt.want) {
					t.Errorf("PriceStrikes: expected %v, got %v", tt.want, err)
				}
			})
		}
	}
}

func TestNew_UnknownModel(t *testing.T) {
	if _, err := New(models.Model("heston"), Options{}); !errors.Is(err, errors.ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}
