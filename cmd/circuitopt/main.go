// SPDX-License-Identifier: Apache-2.0

// Command circuitopt drives the analog-circuit parameter optimizer from a
// scenario file and a netlist. It is the thin CLI shell around the core
// packages under internal/: scenario parsing and diagnostics, constraint
// validation, netlist parameterization, and the solver run
// (orchestrator.Run does the actual wiring).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"circuitopt/internal/config"
	"circuitopt/internal/diag"
	"circuitopt/internal/model"
	"circuitopt/internal/netlist"
	"circuitopt/internal/orchestrator"
	"circuitopt/internal/scenario"
	"circuitopt/internal/simchannel"
	"circuitopt/repl"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  circuitopt [flags] <scenario-file> <netlist-file>")
	fmt.Fprintln(os.Stderr, "  circuitopt repl")
	flag.PrintDefaults()
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "repl" {
		repl.Start(os.Stdin)
		return
	}

	solverName := flag.String("solver", "auto", `solver to use: "auto", "newton", "pso", or "cmaes"`)
	maxIter := flag.Int("max-iterations", config.DefaultMaxIterations, "iteration budget")
	precision := flag.Float64("precision", config.DefaultPrecision, "convergence precision")
	gridSize := flag.Float64("grid", config.DefaultGridSize, "fabrication grid size (0 disables rounding)")
	verbose := flag.Bool("verbose", false, "print per-iteration progress")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}

	if err := run(args[0], args[1], orchestrator.Options{
		SolverName:    *solverName,
		MaxIterations: *maxIter,
		Precision:     *precision,
		GridSize:      *gridSize,
		Verbose:       *verbose,
	}); err != nil {
		color.Red("✗ %s", err)
		os.Exit(1)
	}
}

func run(scenarioPath, netlistPath string, opts orchestrator.Options) error {
	source, err := os.ReadFile(scenarioPath)
	if err != nil {
		return fmt.Errorf("failed to read scenario file: %w", err)
	}

	sc, err := scenario.Parse(scenarioPath, string(source))
	if err != nil {
		reportScenarioError(scenarioPath, string(source), err)
		os.Exit(1)
	}

	netlistLines, err := netlist.LoadFile(netlistPath)
	if err != nil {
		return err
	}

	color.Green("✓ Parsed %d parameter(s), %d constraint(s), %d target(s), %d test(s)",
		len(sc.Parameters), len(sc.Constraints), len(sc.Targets), len(sc.Tests))

	engine := dryRunEngine(sc.Targets)

	result, err := orchestrator.Run(context.Background(), sc.Parameters, sc.Constraints, sc.Tests, sc.Targets, netlistLines, engine, opts)
	if err != nil {
		return err
	}

	if result.Success {
		color.Green("\n✓ %s (cost=%.6e, iterations=%d)", result.Message, result.Cost, result.Iterations)
	} else {
		color.Yellow("\n✗ %s (cost=%.6e, iterations=%d)", result.Message, result.Cost, result.Iterations)
	}
	for _, p := range result.Parameters {
		fmt.Printf("  %-20s = %.6e\n", p.Name, p.Value)
	}
	return nil
}

// dryRunEngine builds a FakeEngine seeded so every target metric reports
// exactly its target value. No real simulator binding exists in this tree,
// so this lets a scenario's wiring (parsing, constraint validation,
// netlist parameterization, cost extraction) be exercised end to end
// without one attached.
func dryRunEngine(targets []model.Target) *simchannel.FakeEngine {
	engine := simchannel.NewFakeEngine()
	for _, t := range targets {
		engine.Responses[t.Metric] = t.Value
	}
	return engine
}

func reportScenarioError(path, source string, err error) {
	pos, ok := scenario.ErrorPosition(err)
	if !ok {
		color.Red("✗ %s", err)
		return
	}
	fmt.Print(diag.Render(source, diag.Diagnostic{
		Level:   diag.Error,
		Message: scenario.ErrorMessage(err),
		Position: diag.Position{
			Filename: path,
			Line:     pos.Line,
			Column:   pos.Column,
		},
		Length: 1,
	}))
}
