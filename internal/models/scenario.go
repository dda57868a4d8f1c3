package models

import "time"

// Scenario is a named set of pricing inputs saved for later reruns.
// Only inputs are stored, never computed prices.
type Scenario struct {
	Name       string           `json:"name"`
	Model      Model            `json:"model"`
	Contract   Contract         `json:"contract"`
	Lattice    LatticeParams    `json:"lattice"`
	Simulation SimulationParams `json:"simulation"`
	Notes      string           `json:"notes,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
