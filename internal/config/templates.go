package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Option Pricer Configuration

# Default pricing model: "analytic", "lattice" or "simulation"
model = "analytic"

[contract]
# Current underlying price
spot = 100.0
# Exercise price
strike = 100.0
# Time to expiry in years
maturity = 1.0
# Continuously compounded risk-free rate (may be negative)
rate = 0.05
# Annualized volatility of log-returns
volatility = 0.2
# Option kind: "call" or "put"
kind = "call"
# Exercise style: "european" or "american" (american needs the lattice model)
style = "european"

[lattice]
# Number of binomial time steps
steps = 100

[simulation]
# Number of Monte Carlo paths
paths = 10000
# Paths drawn between cancellation checks
batch_size = 10000
# Parallel batch workers (0 = number of CPUs)
workers = 0
# Fixed seed for reproducible runs (0 = fresh seed per run)
seed = 0

[sweep]
# Strike range as fractions of spot
low_ratio = 0.5
high_ratio = 1.5
# Number of strikes in the range
points = 50
# Parallel sweep workers (0 = number of CPUs)
workers = 0

[logging]
# Log level: debug, info, warn, error
level = "warn"
console = true
file = false
file_path = ""
max_size = 20
max_backups = 3
max_age = 14
`

// createTemplateConfig writes config.toml into configDir unless it exists.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
