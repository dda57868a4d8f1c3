package config

import (
	"os"
	"path/filepath"
	"testing"

	"option-pricer/internal/errors"
	"option-pricer/internal/models"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_CreatesTemplateAndUsesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "optprice")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("template not written: %v", err)
	}

	c, err := cfg.ContractDefaults()
	if err != nil {
		t.Fatalf("ContractDefaults: %v", err)
	}
	want := models.Contract{Spot: 100, Strike: 100, Maturity: 1, Rate: 0.05, Volatility: 0.2, Kind: models.Call, Style: models.European}
	if c != want {
		t.Errorf("contract = %+v, want %+v", c, want)
	}
	if cfg.Model != "analytic" || cfg.Lattice.Steps != 100 || cfg.Simulation.Paths != 10000 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SimulationParams().Seed != nil {
		t.Errorf("seed 0 should mean a fresh seed per run")
	}

	// The written template must load back to the same values.
	again, err := Load(dir)
	if err != nil {
		t.Fatalf("Load template: %v", err)
	}
	if again.LogConfig() != cfg.LogConfig() {
		t.Errorf("template logging = %+v, defaults = %+v", again.LogConfig(), cfg.LogConfig())
	}
	if again.LogConfig().FilePath == "" {
		t.Errorf("empty file_path should fall back to the default log path")
	}
	again.Logging, cfg.Logging = LoggingConfig{}, LoggingConfig{}
	if *again != *cfg {
		t.Errorf("template config = %+v, defaults = %+v", again, cfg)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
model = "binomial"

[contract]
spot = 42.0
kind = "put"
style = "american"

[lattice]
steps = 250

[simulation]
seed = 9
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m, err := models.ParseModel(cfg.Model)
	if err != nil || m != models.ModelLattice {
		t.Errorf("model = %q (%v)", cfg.Model, err)
	}
	c, err := cfg.ContractDefaults()
	if err != nil {
		t.Fatal(err)
	}
	if c.Spot != 42 || c.Kind != models.Put || c.Style != models.American || c.Strike != 100 {
		t.Errorf("contract = %+v", c)
	}
	if cfg.LatticeParams().Steps != 250 {
		t.Errorf("steps = %d", cfg.LatticeParams().Steps)
	}
	if seed := cfg.SimulationParams().Seed; seed == nil || *seed != 9 {
		t.Errorf("seed = %v, want 9", seed)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"negative volatility": "[contract]\nvolatility = -0.1\n",
		"unknown model":       "model = \"heston\"\n",
		"unknown kind":        "[contract]\nkind = \"straddle\"\n",
		"zero steps":          "[lattice]\nsteps = 0\n",
		"zero paths":          "[simulation]\npaths = 0\n",
		"bad grid":            "[sweep]\nlow_ratio = 2.0\nhigh_ratio = 1.0\n",
		"bad log level":       "[logging]\nlevel = \"verbose\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, body)
			if _, err := Load(dir); !errors.Is(err, errors.ErrConfigInvalid) {
				t.Fatalf("expected ErrConfigInvalid, got %v", err)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPTPRICE_MODEL", "mc")
	t.Setenv("OPTPRICE_SEED", "1234")
	t.Setenv("OPTPRICE_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "mc" {
		t.Errorf("model = %q", cfg.Model)
	}
	if seed := cfg.SimulationParams().Seed; seed == nil || *seed != 1234 {
		t.Errorf("seed = %v", seed)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	g := cfg.Grid()
	if g.LowRatio != 0.5 || g.HighRatio != 1.5 || g.Points != 50 {
		t.Errorf("grid = %+v", g)
	}
}
