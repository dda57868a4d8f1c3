package models

import (
	"fmt"
	"math"
	"strings"

	"option-pricer/internal/errors"
)

// OptionKind is the right the option grants: buy (call) or sell (put).
type OptionKind string

// Option kinds
const (
	Call OptionKind = "CALL"
	Put  OptionKind = "PUT"
)

// ParseOptionKind parses "call"/"put" case-insensitively.
func ParseOptionKind(s string) (OptionKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL", "C":
		return Call, nil
	case "PUT", "P":
		return Put, nil
	default:
		return "", errors.NewKindError(s)
	}
}

// IsValid reports whether k is Call or Put.
func (k OptionKind) IsValid() bool {
	return k == Call || k == Put
}

// ExerciseStyle determines when the option may be exercised.
type ExerciseStyle string

// Exercise styles
const (
	European ExerciseStyle = "EUROPEAN"
	American ExerciseStyle = "AMERICAN"
)

// ParseExerciseStyle parses "european"/"american" case-insensitively.
func ParseExerciseStyle(s string) (ExerciseStyle, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EUROPEAN", "EU", "E":
		return European, nil
	case "AMERICAN", "US", "A":
		return American, nil
	default:
		return "", errors.NewValidationError("style", s, "must be european or american")
	}
}

// IsValid reports whether s is European or American.
func (s ExerciseStyle) IsValid() bool {
	return s == European || s == American
}

// ContractParams is the raw, unvalidated input for NewContract.
type ContractParams struct {
	Spot       float64
	Strike     float64
	Maturity   float64
	Rate       float64
	Volatility float64
	Kind       OptionKind
	Style      ExerciseStyle
}

// Contract is a validated vanilla option. It is a plain value; engines copy it
// and never retain it past a pricing call.
type Contract struct {
	Spot       float64       `json:"spot"`
	Strike     float64       `json:"strike"`
	Maturity   float64       `json:"maturity"`
	Rate       float64       `json:"rate"`
	Volatility float64       `json:"volatility"`
	Kind       OptionKind    `json:"kind"`
	Style      ExerciseStyle `json:"style"`
}

// NewContract validates p and returns the contract. An empty Style means European.
func NewContract(p ContractParams) (Contract, error) {
	if p.Style == "" {
		p.Style = European
	}
	c := Contract(p)
	if err := c.Validate(); err != nil {
		return Contract{}, err
	}
	return c, nil
}

// Validate checks every contract invariant. It is the single validation
// routine all engines run on entry.
func (c Contract) Validate() error {
	if err := c.ValidateShared(); err != nil {
		return err
	}
	return ValidateStrike(c.Strike)
}

// ValidateShared checks everything except the strike. Batched strike
// evaluation calls it once per batch and ValidateStrike per element.
func (c Contract) ValidateShared() error {
	if !isFinite(c.Spot) || c.Spot <= 0 {
		return errors.NewValidationError("spot", c.Spot, "must be positive")
	}
	if !isFinite(c.Maturity) || c.Maturity <= 0 {
		return errors.NewValidationError("maturity", c.Maturity, "must be positive")
	}
	if !isFinite(c.Rate) {
		return errors.NewValidationError("rate", c.Rate, "must be finite")
	}
	if !isFinite(c.Volatility) || c.Volatility < 0 {
		return errors.NewValidationError("volatility", c.Volatility, "must be non-negative")
	}
	if !c.Kind.IsValid() {
		return errors.NewKindError(c.Kind)
	}
	if !c.Style.IsValid() {
		return errors.NewValidationError("style", c.Style, "must be european or american")
	}
	return nil
}

// ValidateStrike checks a single strike value.
func ValidateStrike(k float64) error {
	if !isFinite(k) || k <= 0 {
		return errors.NewValidationError("strike", k, "must be positive")
	}
	return nil
}

// WithStrike returns a copy of c with strike k. The copy is not validated.
func (c Contract) WithStrike(k float64) Contract {
	c.Strike = k
	return c
}

// Payoff returns the exercise value of the option at underlying price s.
func (c Contract) Payoff(s float64) float64 {
	return Payoff(c.Kind, s, c.Strike)
}

// Discount returns e^(-rT).
func (c Contract) Discount() float64 {
	return math.Exp(-c.Rate * c.Maturity)
}

// String implements fmt.Stringer.
func (c Contract) String() string {
	return fmt.Sprintf("%s %s S=%.4g K=%.4g T=%.4g r=%.4g sigma=%.4g",
		c.Style, c.Kind, c.Spot, c.Strike, c.Maturity, c.Rate, c.Volatility)
}

// Payoff returns max(s-k, 0) for a call and max(k-s, 0) for a put.
func Payoff(kind OptionKind, s, k float64) float64 {
	if kind == Call {
		return math.Max(s-k, 0)
	}
	return math.Max(k-s, 0)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
