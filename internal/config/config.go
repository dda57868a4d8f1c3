// Package config provides configuration management for the option pricer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"option-pricer/internal/errors"
	"option-pricer/internal/logging"
	"option-pricer/internal/models"
	"option-pricer/internal/sweep"
)

// Config holds all application configuration.
type Config struct {
	Model      string           `mapstructure:"model"`
	Contract   ContractConfig   `mapstructure:"contract"`
	Lattice    LatticeConfig    `mapstructure:"lattice"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Sweep      SweepConfig      `mapstructure:"sweep"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ContractConfig holds the default contract inputs.
type ContractConfig struct {
	Spot       float64 `mapstructure:"spot"`
	Strike     float64 `mapstructure:"strike"`
	Maturity   float64 `mapstructure:"maturity"`
	Rate       float64 `mapstructure:"rate"`
	Volatility float64 `mapstructure:"volatility"`
	Kind       string  `mapstructure:"kind"`  // call, put
	Style      string  `mapstructure:"style"` // european, american
}

// LatticeConfig holds binomial tree configuration.
type LatticeConfig struct {
	Steps int `mapstructure:"steps"`
}

// SimulationConfig holds Monte Carlo configuration.
type SimulationConfig struct {
	Paths     int `mapstructure:"paths"`
	BatchSize int `mapstructure:"batch_size"`
	Workers   int `mapstructure:"workers"`
	// Seed of 0 means a fresh seed per run.
	Seed uint64 `mapstructure:"seed"`
}

// SweepConfig holds strike sweep configuration.
type SweepConfig struct {
	LowRatio  float64 `mapstructure:"low_ratio"`
	HighRatio float64 `mapstructure:"high_ratio"`
	Points    int     `mapstructure:"points"`
	Workers   int     `mapstructure:"workers"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/option-pricer"
	}
	return filepath.Join(home, ".config", "option-pricer")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := newViper(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// Defaults still apply; a template is written for the next run.
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	// Unmarshalling defaults only cannot fail.
	_ = newViper("").Unmarshal(cfg)
	return cfg
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	logDefaults := logging.DefaultLogConfig()
	grid := sweep.DefaultGrid()

	v.SetDefault("model", string(models.ModelAnalytic))

	v.SetDefault("contract.spot", 100.0)
	v.SetDefault("contract.strike", 100.0)
	v.SetDefault("contract.maturity", 1.0)
	v.SetDefault("contract.rate", 0.05)
	v.SetDefault("contract.volatility", 0.2)
	v.SetDefault("contract.kind", "call")
	v.SetDefault("contract.style", "european")

	v.SetDefault("lattice.steps", 100)

	v.SetDefault("simulation.paths", 10000)
	v.SetDefault("simulation.batch_size", models.DefaultBatchSize)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("sweep.low_ratio", grid.LowRatio)
	v.SetDefault("sweep.high_ratio", grid.HighRatio)
	v.SetDefault("sweep.points", grid.Points)
	v.SetDefault("sweep.workers", 0)

	v.SetDefault("logging.level", logDefaults.Level)
	v.SetDefault("logging.console", logDefaults.Console)
	v.SetDefault("logging.file", logDefaults.File)
	v.SetDefault("logging.file_path", logDefaults.FilePath)
	v.SetDefault("logging.max_size", logDefaults.MaxSize)
	v.SetDefault("logging.max_backups", logDefaults.MaxBackups)
	v.SetDefault("logging.max_age", logDefaults.MaxAge)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPTPRICE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("OPTPRICE_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Simulation.Seed = seed
		}
	}
	if v := os.Getenv("OPTPRICE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := models.ParseModel(c.Model); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, err.Error())
	}
	if _, err := c.ContractDefaults(); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, err.Error())
	}
	if err := c.LatticeParams().Validate(); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, err.Error())
	}
	if err := c.SimulationParams().Validate(); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, err.Error())
	}
	if err := c.Grid().Validate(); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, err.Error())
	}
	if c.Sweep.Workers < 0 {
		return fmt.Errorf("%w: sweep.workers must not be negative", errors.ErrConfigInvalid)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: invalid log level: %s (must be debug, info, warn or error)", errors.ErrConfigInvalid, c.Logging.Level)
	}
	return nil
}

// ContractDefaults builds the default contract.
func (c *Config) ContractDefaults() (models.Contract, error) {
	kind, err := models.ParseOptionKind(c.Contract.Kind)
	if err != nil {
		return models.Contract{}, err
	}
	style, err := models.ParseExerciseStyle(c.Contract.Style)
	if err != nil {
		return models.Contract{}, err
	}
	return models.NewContract(models.ContractParams{
		Spot:       c.Contract.Spot,
		Strike:     c.Contract.Strike,
		Maturity:   c.Contract.Maturity,
		Rate:       c.Contract.Rate,
		Volatility: c.Contract.Volatility,
		Kind:       kind,
		Style:      style,
	})
}

// LatticeParams returns the configured lattice parameters.
func (c *Config) LatticeParams() models.LatticeParams {
	return models.LatticeParams{Steps: c.Lattice.Steps}
}

// SimulationParams returns the configured simulation parameters.
func (c *Config) SimulationParams() models.SimulationParams {
	p := models.SimulationParams{
		Paths:     c.Simulation.Paths,
		BatchSize: c.Simulation.BatchSize,
		Workers:   c.Simulation.Workers,
	}
	if c.Simulation.Seed != 0 {
		seed := c.Simulation.Seed
		p.Seed = &seed
	}
	return p
}

// Grid returns the configured strike grid.
func (c *Config) Grid() sweep.Grid {
	return sweep.Grid{
		LowRatio:  c.Sweep.LowRatio,
		HighRatio: c.Sweep.HighRatio,
		Points:    c.Sweep.Points,
	}
}

// LogConfig converts the logging section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	path := c.Logging.FilePath
	if path == "" {
		path = logging.DefaultLogConfig().FilePath
	}
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   path,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}
