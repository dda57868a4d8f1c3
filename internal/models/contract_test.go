package models

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"option-pricer/internal/errors"
)

func validParams() ContractParams {
	return ContractParams{
		Spot: 100, Strike: 100, Maturity: 1, Rate: 0.05, Volatility: 0.2,
		Kind: Call, Style: European,
	}
}

func TestNewContract_Valid(t *testing.T) {
	p := validParams()
	p.Style = ""
	c, err := NewContract(p)
	if err != nil {
		t.Fatalf("NewContract: %v", err)
	}
	if c.Style != European {
		t.Errorf("empty style should default to European, got %q", c.Style)
	}

	p.Rate = -0.01
	if _, err := NewContract(p); err != nil {
		t.Errorf("negative rates are allowed: %v", err)
	}
	p.Volatility = 0
	if _, err := NewContract(p); err != nil {
		t.Errorf("zero volatility is allowed: %v", err)
	}
}

func TestNewContract_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ContractParams)
		field  string
		want   error
	}{
		{"zero strike", func(p *ContractParams) { p.Strike = 0 }, "strike", errors.ErrInvalidParameter},
		{"negative spot", func(p *ContractParams) { p.Spot = -1 }, "spot", errors.ErrInvalidParameter},
		{"negative maturity", func(p *ContractParams) { p.Maturity = -1 }, "maturity", errors.ErrInvalidParameter},
		{"zero maturity", func(p *ContractParams) { p.Maturity = 0 }, "maturity", errors.ErrInvalidParameter},
		{"negative volatility", func(p *ContractParams) { p.Volatility = -0.1 }, "volatility", errors.ErrInvalidParameter},
		{"NaN spot", func(p *ContractParams) { p.Spot = math.NaN() }, "spot", errors.ErrInvalidParameter},
		{"infinite rate", func(p *ContractParams) { p.Rate = math.Inf(1) }, "rate", errors.ErrInvalidParameter},
		{"unknown kind", func(p *ContractParams) { p.Kind = "STRADDLE" }, "kind", errors.ErrUnknownOptionKind},
		{"unknown style", func(p *ContractParams) { p.Style = "BERMUDAN" }, "style", errors.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := NewContract(p)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var ve *errors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestParseOptionKind(t *testing.T) {
	for in, want := range map[string]OptionKind{"call": Call, "CALL": Call, " c ": Call, "Put": Put, "p": Put} {
		got, err := ParseOptionKind(in)
		if err != nil || got != want {
			t.Errorf("ParseOptionKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseOptionKind("straddle"); !errors.Is(err, errors.ErrUnknownOptionKind) {
		t.Errorf("expected ErrUnknownOptionKind, got %v", err)
	}
}

func TestParseExerciseStyle(t *testing.T) {
	for in, want := range map[string]ExerciseStyle{"european": European, "EU": European, "american": American, "a": American} {
		got, err := ParseExerciseStyle(in)
		if err != nil || got != want {
			t.Errorf("ParseExerciseStyle(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseExerciseStyle("bermudan"); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestParseModel(t *testing.T) {
	tests := map[string]Model{
		"analytic":      ModelAnalytic,
		"Black-Scholes": ModelAnalytic,
		"bs":            ModelAnalytic,
		"lattice":       ModelLattice,
		"binomial":      ModelLattice,
		"CRR":           ModelLattice,
		"simulation":    ModelSimulation,
		"monte-carlo":   ModelSimulation,
		"mc":            ModelSimulation,
	}
	for in, want := range tests {
		got, err := ParseModel(in)
		if err != nil || got != want {
			t.Errorf("ParseModel(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseModel("heston"); !errors.Is(err, errors.ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestEngineParamsValidate(t *testing.T) {
	if err := (LatticeParams{Steps: 0}).Validate(); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Errorf("steps=0: got %v", err)
	}
	if err := (LatticeParams{Steps: 1}).Validate(); err != nil {
		t.Errorf("steps=1: %v", err)
	}
	if err := (SimulationParams{Paths: 0}).Validate(); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Errorf("paths=0: got %v", err)
	}
	if err := (SimulationParams{Paths: 1}).Validate(); err != nil {
		t.Errorf("paths=1: %v", err)
	}
}

func TestPayoff(t *testing.T) {
	tests := []struct {
		kind OptionKind
		s, k float64
		want float64
	}{
		{Call, 110, 100, 10},
		{Call, 90, 100, 0},
		{Put, 90, 100, 10},
		{Put, 110, 100, 0},
		{Call, 100, 100, 0},
	}
	for _, tt := range tests {
		if got := Payoff(tt.kind, tt.s, tt.k); got != tt.want {
			t.Errorf("Payoff(%s, %v, %v) = %v, want %v", tt.kind, tt.s, tt.k, got, tt.want)
		}
	}
}

// Property: WithStrike changes nothing but the strike.
func TestProperty_WithStrikePreservesSharedFields(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("WithStrike only replaces the strike", prop.ForAll(
		func(spot, strike, k float64) bool {
			p := validParams()
			p.Spot, p.Strike = spot, strike
			c, err := NewContract(p)
			if err != nil {
				return false
			}
			moved := c.WithStrike(k)
			if moved.Strike != k {
				return false
			}
			moved.Strike = c.Strike
			return moved == c && moved.ValidateShared() == nil
		},
		gen.Float64Range(0.01, 1e4),
		gen.Float64Range(0.01, 1e4),
		gen.Float64Range(0.01, 1e4),
	))

	properties.TestingRun(t)
}
