package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/config"
	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/internal/output"
)

// signalContext returns a context cancelled by SIGINT/SIGTERM so a long
// simulation shuts down cleanly.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func newProjectCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "project <scenario.yaml>",
		Short: "Run the deterministic year-by-year projection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := config.NewParser().LoadScenario(args[0])
			if err != nil {
				return err
			}

			runCtx, cancel := signalContext(cmd)
			defer cancel()
			projection, err := ctx.engine.RunScenario(runCtx, scenario)
			if err != nil {
				return err
			}

			data := output.NewReportData()
			data.Scenario = scenario
			data.Projection = projection
			return output.GenerateReport(data, ctx.format, ctx.outputPath)
		},
	}
}

func newSimulateCommand(ctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run the Monte Carlo simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := config.NewParser().LoadScenario(args[0])
			if err != nil {
				return err
			}
			applySimulationFlags(ctx, scenario)

			runCtx, cancel := signalContext(cmd)
			defer cancel()
			projection, err := ctx.engine.RunScenario(runCtx, scenario)
			if err != nil {
				return err
			}
			simulation, err := ctx.engine.RunMonteCarlo(runCtx, scenario)
			if err != nil {
				return err
			}

			data := output.NewReportData()
			data.Scenario = scenario
			data.Projection = projection
			data.MonteCarlo = simulation
			return output.GenerateReport(data, ctx.format, ctx.outputPath)
		},
	}
	cmd.Flags().IntVarP(&ctx.iterations, "iterations", "n", 0, "simulation iterations (overrides the scenario file)")
	cmd.Flags().Int64Var(&ctx.seed, "seed", 0, "random seed for reproducible runs")
	return cmd
}

func newCompareCommand(ctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <scenario.yaml>...",
		Short: "Rank several scenarios by simulated success",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := config.NewParser().LoadScenarios(args)
			if err != nil {
				return err
			}
			for _, scenario := range scenarios {
				applySimulationFlags(ctx, scenario)
			}

			runCtx, cancel := signalContext(cmd)
			defer cancel()
			comparison, err := ctx.engine.CompareScenarios(runCtx, scenarios)
			if err != nil {
				return err
			}

			data := output.NewReportData()
			data.Comparison = comparison
			return output.GenerateReport(data, ctx.format, ctx.outputPath)
		},
	}
	cmd.Flags().IntVarP(&ctx.iterations, "iterations", "n", 0, "simulation iterations (overrides the scenario files)")
	cmd.Flags().Int64Var(&ctx.seed, "seed", 0, "random seed for reproducible runs")
	return cmd
}

func newSpendingCommand(ctx *cliContext) *cobra.Command {
	var target float64
	cmd := &cobra.Command{
		Use:   "spending <scenario.yaml>",
		Short: "Solve for the highest sustainable spending level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := config.NewParser().LoadScenario(args[0])
			if err != nil {
				return err
			}
			applySimulationFlags(ctx, scenario)

			runCtx, cancel := signalContext(cmd)
			defer cancel()
			analysis, err := ctx.engine.SustainableSpending(runCtx, scenario, decimal.NewFromFloat(target))
			if err != nil {
				return err
			}

			data := output.NewReportData()
			data.Scenario = scenario
			data.Spending = analysis
			return output.GenerateReport(data, ctx.format, ctx.outputPath)
		},
	}
	cmd.Flags().Float64VarP(&target, "target", "t", 0.90, "target success rate in (0, 1]")
	cmd.Flags().IntVarP(&ctx.iterations, "iterations", "n", 0, "simulation iterations (overrides the scenario file)")
	cmd.Flags().Int64Var(&ctx.seed, "seed", 0, "random seed for reproducible runs")
	return cmd
}

func newValidateCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Check scenario files without running anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewParser()
			failed := 0
			for _, filename := range args {
				if _, err := parser.LoadScenario(filename); err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", filename, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", filename)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenario files failed validation", failed, len(args))
			}
			return nil
		},
	}
}

func newExampleCommand(ctx *cliContext) *cobra.Command {
	var toFile string
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Generate an example scenario file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			example := config.NewParser().CreateExampleScenario()
			if toFile == "" {
				return output.SaveScenario(example, "example_scenario.yaml")
			}
			return output.SaveScenario(example, toFile)
		},
	}
	cmd.Flags().StringVarP(&toFile, "write", "w", "", "destination file (default example_scenario.yaml)")
	return cmd
}

// applySimulationFlags overlays CLI/environment simulation settings onto a
// loaded scenario.
func applySimulationFlags(ctx *cliContext, scenario *domain.Scenario) {
	if ctx.iterations > 0 {
		scenario.MonteCarlo.Iterations = ctx.iterations
	}
	if ctx.seed != 0 {
		scenario.MonteCarlo.Seed = ctx.seed
	}
}
