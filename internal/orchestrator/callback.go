// Package orchestrator wires constraint validation, problem construction,
// solver selection, and the solve loop into a single run, and reports
// progress back to the caller while it does.
package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"circuitopt/internal/circuit"
	"circuitopt/internal/model"
)

// ProgressCallback implements solver.Callback: it records iteration history,
// optionally prints a metrics comparison against a live Problem, and halts
// the solver once maxIterations is reached.
type ProgressCallback struct {
	Verbose       bool
	MaxIterations int

	problem *circuit.Problem
	targets []model.Target
	names   []string

	iterationCount int
	history        []model.IterationResult

	startTime    time.Time
	lastIterTime time.Time
}

// NewProgressCallback returns a ProgressCallback bound to problem for
// re-running metrics during verbose printing. problem is a borrowed handle:
// the callback never closes it.
func NewProgressCallback(verbose bool, maxIterations int, targets []model.Target, names []string, problem *circuit.Problem) *ProgressCallback {
	return &ProgressCallback{
		Verbose:       verbose,
		MaxIterations: maxIterations,
		problem:       problem,
		targets:       targets,
		names:         names,
		startTime:     time.Now(),
	}
}

// History returns the recorded iterations in call order.
func (c *ProgressCallback) History() []model.IterationResult { return c.history }

// OnIteration records the iteration and, if verbose, prints a metrics table.
func (c *ProgressCallback) OnIteration(iteration int, params []float64, cost float64) {
	c.iterationCount = iteration

	recorded := model.IterationResult{
		Params: append([]float64(nil), params...),
		Cost:   cost,
	}
	c.history = append(c.history, recorded)

	if c.Verbose {
		c.printIteration(iteration, params, cost)
	}
	c.lastIterTime = time.Now()
}

func (c *ProgressCallback) printIteration(iteration int, params []float64, cost float64) {
	fmt.Printf("\nIter %4d: Cost = %.6e\n", iteration, cost)

	if err := c.problem.UpdateParameters(params); err != nil {
		fmt.Printf("  (metrics unavailable: %v)\n", err)
		return
	}
	if err := c.problem.ExecuteMeasurements(); err != nil {
		fmt.Printf("  (metrics unavailable: %v)\n", err)
		return
	}
	achieved := c.problem.ExtractMetrics()

	for i, t := range c.targets {
		fmt.Printf("  %-20s Target: %12.6e %s Current: %12.6e\n", t.Metric, t.Value, t.Mode.Symbol(), achieved[i])
	}
}

// ShouldStop reports whether the configured iteration budget is spent.
func (c *ProgressCallback) ShouldStop() bool {
	return c.MaxIterations > 0 && c.iterationCount >= c.MaxIterations
}

// PrintSummary renders an 80-column final report.
func (c *ProgressCallback) PrintSummary(success bool, stopReason string) {
	bar := strings.Repeat("=", 80)
	fmt.Printf("\n%s\n", bar)
	fmt.Println("OPTIMIZATION SUMMARY")
	fmt.Println(bar)

	status := color.RedString("✗ FAILED")
	if success {
		status = color.GreenString("✓ SUCCESS")
	}
	fmt.Printf("\nStatus: %s\n", status)
	fmt.Printf("Stop Reason: %s\n", stopReason)
	fmt.Printf("Total Iterations: %d\n", len(c.history))
	fmt.Printf("Elapsed: %s\n", formatDuration(time.Since(c.startTime)))

	if len(c.history) > 0 {
		final := c.history[len(c.history)-1]
		fmt.Printf("\nFinal Cost: %.6e\n", final.Cost)
		fmt.Println("\nOptimal Parameters:")
		for i, name := range c.names {
			if i < len(final.Params) {
				fmt.Printf("  %s = %.6e\n", name, final.Params[i])
			}
		}
	}

	fmt.Println("\nIteration History:")
	fmt.Printf("%-8s %-20s\n", "Iter", "Cost")
	fmt.Println(strings.Repeat("-", 30))
	for i, r := range c.history {
		fmt.Printf("%-8d %-20.6e\n", i+1, r.Cost)
	}

	fmt.Printf("\n%s\n\n", bar)
}

func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		m := int(d / time.Minute)
		s := int((d % time.Minute) / time.Second)
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
