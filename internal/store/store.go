// Package store provides persistence for named pricing scenarios.
package store

import (
	"context"

	"option-pricer/internal/models"
)

// ScenarioStore defines the interface for scenario persistence.
type ScenarioStore interface {
	SaveScenario(ctx context.Context, s *models.Scenario) error
	GetScenario(ctx context.Context, name string) (*models.Scenario, error)
	ListScenarios(ctx context.Context, filter ScenarioFilter) ([]models.Scenario, error)
	DeleteScenario(ctx context.Context, name string) error

	// Lifecycle
	Close() error
}

// ScenarioFilter represents filters for listing scenarios.
type ScenarioFilter struct {
	Model models.Model
	Limit int
}
