// Command mc_convergence runs the same scenario at increasing iteration
// counts to show how the simulated success rate converges. Useful when
// picking an iteration budget for a new scenario shape.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/calculation"
	"github.com/fincast/fincast/internal/config"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: mc_convergence <scenario.yaml>")
		os.Exit(2)
	}

	scenario, err := config.NewParser().LoadScenario(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if scenario.MonteCarlo.Seed == 0 {
		scenario.MonteCarlo.Seed = 1
	}

	engine := calculation.NewEngine()
	fmt.Printf("%-12s %-12s %-18s\n", "Iterations", "Success", "MedianFinalNW")

	var previous decimal.Decimal
	for _, iterations := range []int{100, 250, 500, 1000, 2500, 5000, 10000} {
		scenario.MonteCarlo.Iterations = iterations
		result, err := engine.RunMonteCarlo(context.Background(), scenario)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		delta := ""
		if iterations > 100 {
			delta = fmt.Sprintf("  (Δ %s)", result.SuccessRate.Sub(previous).StringFixed(4))
		}
		fmt.Printf("%-12d %-12s %-18s%s\n",
			iterations,
			result.SuccessRate.StringFixed(4),
			result.FinalNetWorth.Median.StringFixed(0),
			delta)
		previous = result.SuccessRate
	}
}
