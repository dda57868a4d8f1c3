// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrUnsupportedStyle   = errors.New("unsupported exercise style")
	ErrArbitrageViolation = errors.New("arbitrage violation")
	ErrUnknownOptionKind  = errors.New("unknown option kind")
	ErrUnknownModel       = errors.New("unknown pricing model")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrScenarioNotFound   = errors.New("scenario not found")
	ErrDatabaseError      = errors.New("database error")
)

// ValidationError represents a rejected contract or engine parameter.
// Kind is the sentinel the error unwraps to.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Kind    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Kind == nil {
		return ErrInvalidParameter
	}
	return e.Kind
}

// NewValidationError creates a new ValidationError classified as ErrInvalidParameter.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Kind:    ErrInvalidParameter,
	}
}

// NewKindError creates a ValidationError for an option kind outside {call, put}.
func NewKindError(value interface{}) *ValidationError {
	return &ValidationError{
		Field:   "kind",
		Value:   value,
		Message: "must be call or put",
		Kind:    ErrUnknownOptionKind,
	}
}

// PricingError represents a failure inside a pricing engine.
type PricingError struct {
	Model     string
	Operation string
	Err       error
}

func (e *PricingError) Error() string {
	return fmt.Sprintf("pricing error [%s] %s: %v", e.Model, e.Operation, e.Err)
}

func (e *PricingError) Unwrap() error {
	return e.Err
}

// NewPricingError creates a new PricingError.
func NewPricingError(model, operation string, err error) *PricingError {
	return &PricingError{
		Model:     model,
		Operation: operation,
		Err:       err,
	}
}

// ArbitrageError reports a lattice whose risk-neutral probability left (0, 1).
type ArbitrageError struct {
	Probability float64
	Up          float64
	Down        float64
	Growth      float64
}

func (e *ArbitrageError) Error() string {
	return fmt.Sprintf("arbitrage violation: risk-neutral probability %.6g outside (0, 1) (u=%.6g, d=%.6g, e^(r·dt)=%.6g)",
		e.Probability, e.Up, e.Down, e.Growth)
}

func (e *ArbitrageError) Unwrap() error {
	return ErrArbitrageViolation
}

// StyleError reports an exercise style the engine cannot price.
type StyleError struct {
	Model string
	Style string
}

func (e *StyleError) Error() string {
	return fmt.Sprintf("%s engine cannot price %s-style options", e.Model, e.Style)
}

func (e *StyleError) Unwrap() error {
	return ErrUnsupportedStyle
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
