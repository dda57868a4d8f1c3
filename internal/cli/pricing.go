package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"option-pricer/internal/errors"
	"option-pricer/internal/logging"
	"option-pricer/internal/models"
	"option-pricer/internal/pricing"
	"option-pricer/internal/sweep"
)

// addPricingCommands adds price, sweep and compare.
func addPricingCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPriceCmd(app))
	rootCmd.AddCommand(newSweepCmd(app))
	rootCmd.AddCommand(newCompareCmd(app))
}

// request is a fully resolved pricing input.
type request struct {
	Model      models.Model            `json:"model"`
	Contract   models.Contract         `json:"contract"`
	Lattice    models.LatticeParams    `json:"lattice"`
	Simulation models.SimulationParams `json:"simulation"`
}

func (r *request) engineOptions() pricing.Options {
	return pricing.Options{Lattice: r.Lattice, Simulation: r.Simulation}
}

func addContractFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "Pricing model: analytic, lattice, simulation")
	cmd.Flags().String("scenario", "", "Start from a saved scenario")
	cmd.Flags().Float64P("spot", "S", 0, "Spot price")
	cmd.Flags().Float64P("strike", "K", 0, "Strike price")
	cmd.Flags().Float64P("maturity", "T", 0, "Time to maturity in years")
	cmd.Flags().Float64P("rate", "r", 0, "Risk-free rate (continuously compounded)")
	cmd.Flags().Float64("vol", 0, "Volatility (annualized)")
	cmd.Flags().String("kind", "", "Option kind: call or put")
	cmd.Flags().String("style", "", "Exercise style: european or american")
	cmd.Flags().Int("steps", 0, "Binomial tree steps")
	cmd.Flags().Int("paths", 0, "Monte Carlo paths")
	cmd.Flags().Uint64("seed", 0, "Monte Carlo seed for reproducible runs")
	cmd.Flags().Int("batch-size", 0, "Monte Carlo paths per batch")
	cmd.Flags().Int("mc-workers", 0, "Monte Carlo batch workers")
}

// resolveRequest layers config defaults, an optional scenario and explicit
// flags, then validates the result.
func resolveRequest(cmd *cobra.Command, app *App) (*request, error) {
	cfg := app.Config
	model, err := models.ParseModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	base, err := cfg.ContractDefaults()
	if err != nil {
		return nil, err
	}
	req := &request{
		Model:      model,
		Contract:   base,
		Lattice:    cfg.LatticeParams(),
		Simulation: cfg.SimulationParams(),
	}

	if name, _ := cmd.Flags().GetString("scenario"); name != "" {
		s, err := app.Store()
		if err != nil {
			return nil, err
		}
		sc, err := s.GetScenario(app.context(cmd.Context()), name)
		if err != nil {
			return nil, err
		}
		req.Model = sc.Model
		req.Contract = sc.Contract
		if sc.Lattice.Steps > 0 {
			req.Lattice = sc.Lattice
		}
		if sc.Simulation.Paths > 0 {
			req.Simulation = sc.Simulation
		}
	}

	flags := cmd.Flags()
	p := models.ContractParams(req.Contract)

	if flags.Changed("model") {
		v, _ := flags.GetString("model")
		if req.Model, err = models.ParseModel(v); err != nil {
			return nil, err
		}
	}
	floatFlags := map[string]*float64{
		"spot":     &p.Spot,
		"strike":   &p.Strike,
		"maturity": &p.Maturity,
		"rate":     &p.Rate,
		"vol":      &p.Volatility,
	}
	for name, dst := range floatFlags {
		if flags.Changed(name) {
			*dst, _ = flags.GetFloat64(name)
		}
	}
	if flags.Changed("kind") {
		v, _ := flags.GetString("kind")
		if p.Kind, err = models.ParseOptionKind(v); err != nil {
			return nil, err
		}
	}
	if flags.Changed("style") {
		v, _ := flags.GetString("style")
		if p.Style, err = models.ParseExerciseStyle(v); err != nil {
			return nil, err
		}
	}
	if flags.Changed("steps") {
		req.Lattice.Steps, _ = flags.GetInt("steps")
	}
	if flags.Changed("paths") {
		req.Simulation.Paths, _ = flags.GetInt("paths")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetUint64("seed")
		req.Simulation.Seed = &seed
	}
	if flags.Changed("batch-size") {
		req.Simulation.BatchSize, _ = flags.GetInt("batch-size")
	}
	if flags.Changed("mc-workers") {
		req.Simulation.Workers, _ = flags.GetInt("mc-workers")
	}

	if req.Contract, err = models.NewContract(p); err != nil {
		return nil, err
	}
	if err := req.Lattice.Validate(); err != nil {
		return nil, err
	}
	if err := req.Simulation.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a single option",
		Long: `Price a single vanilla option with the selected model.

Monte Carlo prices are reported with their standard error and the seed used,
so any run can be reproduced with --seed.`,
		Example: `  optprice price
  optprice price -m lattice --style american --kind put --steps 500
  optprice price -m simulation --paths 100000 --seed 42 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			req, err := resolveRequest(cmd, app)
			if err != nil {
				return err
			}

			ctx := app.context(cmd.Context())
			logger := logging.WithModel(app.Logger, string(req.Model))

			engine, err := pricing.New(req.Model, req.engineOptions())
			if err != nil {
				return err
			}

			start := time.Now()
			quote, err := engine.Price(ctx, req.Contract)
			if err != nil {
				return errors.NewPricingError(string(req.Model), "price", err)
			}
			logging.LogQuote(logger, string(req.Model), req.Contract.Strike, quote.Price, quote.StdErr, time.Since(start))

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"contract": req.Contract,
					"quote":    quote,
				})
			}
			displayQuote(output, req, quote)
			return nil
		},
	}
	addContractFlags(cmd)
	return cmd
}

func displayQuote(output *Output, req *request, q models.Quote) {
	c := req.Contract
	lines := []string{
		fmt.Sprintf("Spot %s  Strike %s  T %.4g", FormatPrice(c.Spot), FormatPrice(c.Strike), c.Maturity),
		fmt.Sprintf("Rate %s  Vol %s", FormatPercent(c.Rate), FormatPercent(c.Volatility)),
		"",
		fmt.Sprintf("Price: %s", output.Green(FormatPrice(q.Price))),
	}
	switch req.Model {
	case models.ModelLattice:
		lines = append(lines, output.DimText(fmt.Sprintf("Steps: %d", q.Steps)))
	case models.ModelSimulation:
		lines = append(lines,
			fmt.Sprintf("Std error: %s", FormatStdErr(q.StdErr)),
			output.DimText(fmt.Sprintf("Paths: %d  Seed: %d", q.Paths, *q.Seed)),
		)
	}
	output.Box(fmt.Sprintf("%s %s %s", req.Model.Title(), c.Style, c.Kind), lines)
}

// sweepRow is the JSON shape of one sweep point.
type sweepRow struct {
	Strike float64 `json:"strike"`
	Price  float64 `json:"price"`
	StdErr float64 `json:"std_err,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func newSweepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Price an option across a range of strikes",
		Long: `Price the option at evenly spaced strikes around spot and chart price
against strike. The current strike is marked in the chart.`,
		Example: `  optprice sweep
  optprice sweep -m lattice --style american --kind put --points 30
  optprice sweep -m simulation --paths 50000 --seed 7 --low 0.8 --high 1.2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			req, err := resolveRequest(cmd, app)
			if err != nil {
				return err
			}

			grid := app.Config.Grid()
			flags := cmd.Flags()
			if flags.Changed("low") {
				grid.LowRatio, _ = flags.GetFloat64("low")
			}
			if flags.Changed("high") {
				grid.HighRatio, _ = flags.GetFloat64("high")
			}
			if flags.Changed("points") {
				grid.Points, _ = flags.GetInt("points")
			}
			if err := grid.Validate(); err != nil {
				return err
			}
			workers := app.Config.Sweep.Workers
			if flags.Changed("workers") {
				workers, _ = flags.GetInt("workers")
			}

			engine, err := pricing.New(req.Model, req.engineOptions())
			if err != nil {
				return err
			}

			ctx := app.context(cmd.Context())
			res, err := sweep.NewRunner(workers).Run(ctx, engine, req.Contract, grid.Strikes(req.Contract.Spot))
			if err != nil {
				return err
			}

			if output.IsJSON() {
				rows := make([]sweepRow, len(res.Quotes))
				for i, q := range res.Quotes {
					rows[i] = sweepRow{Strike: q.Strike, Price: q.Price, StdErr: q.StdErr}
					if q.Err != nil {
						rows[i].Error = q.Err.Error()
					}
				}
				return output.JSON(map[string]interface{}{
					"model":    res.Model,
					"contract": res.Contract,
					"points":   rows,
				})
			}
			displaySweep(output, req, res)
			return nil
		},
	}
	addContractFlags(cmd)
	cmd.Flags().Float64("low", 0, "Lowest strike as a fraction of spot")
	cmd.Flags().Float64("high", 0, "Highest strike as a fraction of spot")
	cmd.Flags().Int("points", 0, "Number of strikes")
	cmd.Flags().Int("workers", 0, "Parallel sweep workers (0 = number of CPUs)")
	return cmd
}

const chartWidth = 40

func displaySweep(output *Output, req *request, res *sweep.Result) {
	c := req.Contract
	output.Bold("%s %s %s price vs strike", req.Model.Title(), c.Style, c.Kind)
	output.Dim("Spot %s  T %.4g  r %s  vol %s  (%d strikes in %s)",
		FormatPrice(c.Spot), c.Maturity, FormatPercent(c.Rate), FormatPercent(c.Volatility),
		len(res.Quotes), res.Duration.Round(time.Microsecond))
	output.Println()

	maxPrice := 0.0
	for _, q := range res.Quotes {
		if q.Err == nil && q.Price > maxPrice {
			maxPrice = q.Price
		}
	}

	// The grid point closest to the contract strike carries the marker.
	marker := -1
	best := 0.0
	for i, q := range res.Quotes {
		d := q.Strike - c.Strike
		if d < 0 {
			d = -d
		}
		if marker < 0 || d < best {
			marker, best = i, d
		}
	}

	headers := []string{"Strike", "Price"}
	if req.Model == models.ModelSimulation {
		headers = append(headers, "Std Err")
	}
	headers = append(headers, "")
	table := NewTable(output, headers...)
	for i, q := range res.Quotes {
		strike := FormatPrice(q.Strike)
		if i == marker {
			strike = output.Cyan(strike + " ◀")
		}
		if q.Err != nil {
			row := []string{strike, output.Red("error")}
			if req.Model == models.ModelSimulation {
				row = append(row, "")
			}
			table.AddRow(append(row, output.DimText(q.Err.Error()))...)
			continue
		}
		row := []string{strike, FormatPrice(q.Price)}
		if req.Model == models.ModelSimulation {
			row = append(row, FormatStdErr(q.StdErr))
		}
		table.AddRow(append(row, output.Green(Bar(q.Price, maxPrice, chartWidth)))...)
	}
	table.Render()

	if res.Failed > 0 {
		output.Println()
		output.Warning("%d of %d strikes failed", res.Failed, len(res.Quotes))
	}
}

// compareRow is one model's result in the compare command.
type compareRow struct {
	Model  models.Model `json:"model"`
	Price  float64      `json:"price"`
	StdErr float64      `json:"std_err,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func newCompareCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Price one option under all three models",
		Long: `Price the same contract with the analytic, lattice and simulation engines
and show each model's deviation from the closed form. Models that cannot price
the requested exercise style are reported rather than approximated.`,
		Example: `  optprice compare
  optprice compare --steps 1000 --paths 200000 --seed 1
  optprice compare --style american --kind put`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			req, err := resolveRequest(cmd, app)
			if err != nil {
				return err
			}
			ctx := app.context(cmd.Context())

			rows := make([]compareRow, 0, len(models.AllModels))
			for _, m := range models.AllModels {
				row := compareRow{Model: m}
				engine, err := pricing.New(m, req.engineOptions())
				if err == nil {
					var q models.Quote
					q, err = engine.Price(ctx, req.Contract)
					row.Price, row.StdErr = q.Price, q.StdErr
				}
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					app.Logger.Debug().Err(err).Str("model", string(m)).Msg("Model skipped")
					row.Error = err.Error()
				}
				rows = append(rows, row)
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"contract": req.Contract,
					"models":   rows,
				})
			}
			displayComparison(output, req, rows)
			return nil
		},
	}
	addContractFlags(cmd)
	return cmd
}

func displayComparison(output *Output, req *request, rows []compareRow) {
	c := req.Contract
	output.Bold("%s %s  S=%s K=%s T=%.4g r=%s vol=%s", c.Style, c.Kind,
		FormatPrice(c.Spot), FormatPrice(c.Strike), c.Maturity, FormatPercent(c.Rate), FormatPercent(c.Volatility))
	output.Println()

	var reference *float64
	for _, r := range rows {
		if r.Model == models.ModelAnalytic && r.Error == "" {
			p := r.Price
			reference = &p
		}
	}

	table := NewTable(output, "Model", "Price", "Std Err", "vs Analytic")
	for _, r := range rows {
		if r.Error != "" {
			table.AddRow(r.Model.Title(), output.Red("n/a"), "", output.DimText(r.Error))
			continue
		}
		dev := "-"
		if reference != nil && r.Model != models.ModelAnalytic {
			dev = FormatDeviation(r.Price, *reference)
		}
		table.AddRow(r.Model.Title(), FormatPrice(r.Price), FormatStdErr(r.StdErr), dev)
	}
	table.Render()
}
