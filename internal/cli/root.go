package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"option-pricer/internal/config"
	"option-pricer/internal/logging"
	"option-pricer/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-18"
)

// App holds the application dependencies. They are populated by the root
// command's PersistentPreRunE once flags are parsed.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	store     store.ScenarioStore
}

// Store opens the scenario database on first use.
func (a *App) Store() (store.ScenarioStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	dbPath := filepath.Join(a.ConfigDir, "scenarios.db")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug().Str("path", dbPath).Msg("Scenario store opened")
	a.store = s
	return s, nil
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// context returns ctx with the app logger attached.
func (a *App) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, a.Logger)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := &App{Logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "optprice",
		Short: "Vanilla option pricer - Black-Scholes, binomial tree and Monte Carlo",
		Long: `optprice values European and American vanilla options under three models:

  analytic     Black-Scholes closed form (European only)
  lattice      Cox-Ross-Rubinstein binomial tree (European and American)
  simulation   Monte Carlo on the exact GBM terminal value (European only)

Defaults come from ~/.config/option-pricer/config.toml; every value can be
overridden with flags or loaded from a saved scenario.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config")
			if configDir == "" {
				configDir = config.DefaultConfigDir()
			}
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}

			logCfg := cfg.LogConfig()
			logCfg.Output = cmd.ErrOrStderr()
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logCfg.Level = "debug"
			}

			app.Config = cfg
			app.ConfigDir = configDir
			app.Logger = logging.NewLoggerWithConfig(logCfg)
			app.Logger.Debug().Str("config_dir", configDir).Msg("Configuration loaded")
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/option-pricer)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addPricingCommands(rootCmd, app)
	addScenarioCommands(rootCmd, app)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("optprice v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": app.ConfigDir})
			}
			output.Println(app.ConfigDir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	c := cfg.Contract
	output.Box("Configuration", []string{
		fmt.Sprintf("Model:       %s", cfg.Model),
		fmt.Sprintf("Spot:        %s", FormatPrice(c.Spot)),
		fmt.Sprintf("Strike:      %s", FormatPrice(c.Strike)),
		fmt.Sprintf("Maturity:    %.4g years", c.Maturity),
		fmt.Sprintf("Rate:        %s", FormatPercent(c.Rate)),
		fmt.Sprintf("Volatility:  %s", FormatPercent(c.Volatility)),
		fmt.Sprintf("Kind/Style:  %s / %s", c.Kind, c.Style),
		fmt.Sprintf("Steps:       %d", cfg.Lattice.Steps),
		fmt.Sprintf("Paths:       %d (batch %d)", cfg.Simulation.Paths, cfg.Simulation.BatchSize),
		fmt.Sprintf("Sweep:       %.2f..%.2f x spot, %d points", cfg.Sweep.LowRatio, cfg.Sweep.HighRatio, cfg.Sweep.Points),
		fmt.Sprintf("Log level:   %s", cfg.Logging.Level),
	})
}
