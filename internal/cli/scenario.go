package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"option-pricer/internal/models"
	"option-pricer/internal/store"
)

// addScenarioCommands adds scenario management commands.
func addScenarioCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "scenario",
		Aliases: []string{"scenarios"},
		Short:   "Manage saved pricing scenarios",
		Long: `Save named sets of pricing inputs and rerun them with --scenario.

Only the inputs are stored; prices are recomputed on every run.`,
	}

	cmd.AddCommand(newScenarioSaveCmd(app))
	cmd.AddCommand(newScenarioListCmd(app))
	cmd.AddCommand(newScenarioShowCmd(app))
	cmd.AddCommand(newScenarioDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newScenarioSaveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current inputs as a scenario",
		Example: `  optprice scenario save atm-put --kind put --style american -m lattice --steps 400
  optprice sweep --scenario atm-put`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			req, err := resolveRequest(cmd, app)
			if err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")

			s, err := app.Store()
			if err != nil {
				return err
			}
			sc := &models.Scenario{
				Name:       args[0],
				Model:      req.Model,
				Contract:   req.Contract,
				Lattice:    req.Lattice,
				Simulation: req.Simulation,
				Notes:      notes,
			}
			if err := s.SaveScenario(app.context(cmd.Context()), sc); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(sc)
			}
			output.Success("✓ Scenario %q saved", sc.Name)
			return nil
		},
	}
	addContractFlags(cmd)
	cmd.Flags().String("notes", "", "Free-form notes")
	return cmd
}

func newScenarioListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			filter := store.ScenarioFilter{}
			if v, _ := cmd.Flags().GetString("model"); v != "" {
				m, err := models.ParseModel(v)
				if err != nil {
					return err
				}
				filter.Model = m
			}
			filter.Limit, _ = cmd.Flags().GetInt("limit")

			s, err := app.Store()
			if err != nil {
				return err
			}
			scenarios, err := s.ListScenarios(app.context(cmd.Context()), filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				if scenarios == nil {
					scenarios = []models.Scenario{}
				}
				return output.JSON(scenarios)
			}
			if len(scenarios) == 0 {
				output.Dim("No scenarios saved")
				return nil
			}

			table := NewTable(output, "Name", "Model", "Option", "Spot", "Strike", "T", "Vol", "Updated")
			for _, sc := range scenarios {
				c := sc.Contract
				table.AddRow(
					sc.Name,
					sc.Model.Title(),
					fmt.Sprintf("%s %s", c.Style, c.Kind),
					FormatPrice(c.Spot),
					FormatPrice(c.Strike),
					fmt.Sprintf("%.4g", c.Maturity),
					FormatPercent(c.Volatility),
					sc.UpdatedAt.Local().Format("02-Jan-2006 15:04"),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("model", "", "Only list scenarios for this model")
	cmd.Flags().Int("limit", 0, "Maximum number of scenarios")
	return cmd
}

func newScenarioShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a saved scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.Store()
			if err != nil {
				return err
			}
			sc, err := s.GetScenario(app.context(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(sc)
			}

			c := sc.Contract
			lines := []string{
				fmt.Sprintf("Model:       %s", sc.Model.Title()),
				fmt.Sprintf("Option:      %s %s", c.Style, c.Kind),
				fmt.Sprintf("Spot:        %s", FormatPrice(c.Spot)),
				fmt.Sprintf("Strike:      %s", FormatPrice(c.Strike)),
				fmt.Sprintf("Maturity:    %.4g years", c.Maturity),
				fmt.Sprintf("Rate:        %s", FormatPercent(c.Rate)),
				fmt.Sprintf("Volatility:  %s", FormatPercent(c.Volatility)),
				fmt.Sprintf("Steps:       %d", sc.Lattice.Steps),
				fmt.Sprintf("Paths:       %d", sc.Simulation.Paths),
			}
			if sc.Simulation.Seed != nil {
				lines = append(lines, fmt.Sprintf("Seed:        %d", *sc.Simulation.Seed))
			}
			if sc.Notes != "" {
				lines = append(lines, "", sc.Notes)
			}
			output.Box(sc.Name, lines)
			return nil
		},
	}
}

func newScenarioDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved scenario",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.Store()
			if err != nil {
				return err
			}
			if err := s.DeleteScenario(app.context(cmd.Context()), args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Scenario %q deleted", args[0])
			return nil
		},
	}
}
