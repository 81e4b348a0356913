package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/calculation"
)

const version = "1.0.0"

// envSettings are the defaults picked up from the environment; flags
// override them.
type envSettings struct {
	Format     string `env:"FINCAST_FORMAT" envDefault:"console"`
	LogLevel   string `env:"FINCAST_LOG_LEVEL" envDefault:"warn"`
	Output     string `env:"FINCAST_OUTPUT"`
	Iterations int    `env:"FINCAST_ITERATIONS"`
}

// cliContext carries what every subcommand needs: the resolved settings,
// the logger, and the engine wired to it.
type cliContext struct {
	settings envSettings
	logger   *logrus.Logger
	engine   *calculation.Engine

	format     string
	outputPath string
	iterations int
	seed       int64
	verbose    bool
}

func newRootCommand() *cobra.Command {
	ctx := &cliContext{logger: logrus.New()}

	root := &cobra.Command{
		Use:   "fincast",
		Short: "Household retirement projection and Monte Carlo simulation",
		Long: `fincast projects household finances year by year: accounts on
age-banded return policies, recurring income and expenses, mortgages and
property sales. On top of the deterministic projection it layers a Monte
Carlo simulation with correlated asset-class returns.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Parse(&ctx.settings); err != nil {
				return fmt.Errorf("failed to read environment: %w", err)
			}
			if !cmd.Flags().Changed("format") {
				ctx.format = ctx.settings.Format
			}
			if !cmd.Flags().Changed("output") && ctx.settings.Output != "" {
				ctx.outputPath = ctx.settings.Output
			}
			if !cmd.Flags().Changed("iterations") && ctx.settings.Iterations > 0 {
				ctx.iterations = ctx.settings.Iterations
			}

			level, err := logrus.ParseLevel(ctx.settings.LogLevel)
			if err != nil {
				return fmt.Errorf("bad FINCAST_LOG_LEVEL: %w", err)
			}
			if ctx.verbose {
				level = logrus.DebugLevel
			}
			ctx.logger.SetLevel(level)

			ctx.engine = calculation.NewEngine()
			ctx.engine.SetLogger(newLogrusAdapter(ctx.logger))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&ctx.format, "format", "f", "console",
		"output format (console, console-verbose, json, csv, detailed-csv, montecarlo-csv, html)")
	root.PersistentFlags().StringVarP(&ctx.outputPath, "output", "o", "",
		"write the report to this file instead of the default")
	root.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false,
		"enable debug logging")

	root.AddCommand(newProjectCommand(ctx))
	root.AddCommand(newSimulateCommand(ctx))
	root.AddCommand(newCompareCommand(ctx))
	root.AddCommand(newSpendingCommand(ctx))
	root.AddCommand(newValidateCommand(ctx))
	root.AddCommand(newExampleCommand(ctx))
	return root
}
