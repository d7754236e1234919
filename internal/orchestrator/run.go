package orchestrator

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"circuitopt/internal/circuit"
	"circuitopt/internal/constraints"
	"circuitopt/internal/model"
	"circuitopt/internal/simchannel"
	"circuitopt/internal/solver"
)

// Options configures a Run.
type Options struct {
	SolverName    string // "auto", "newton", "pso", "cmaes"
	MaxIterations int
	Precision     float64
	GridSize      float64
	Verbose       bool
}

// Run validates constraints, builds a circuit Problem, selects a solver,
// drives it to completion (or until ctx is cancelled), and returns the
// optimization result.
func Run(ctx context.Context, params []model.Parameter, cs []model.ParameterConstraint, tests []model.Test, targets []model.Target, netlistLines []string, engine simchannel.Engine, opts Options) (model.OptimizationResult, error) {
	if opts.Verbose {
		fmt.Println("\n=== OPTIMIZATION START ===")
	}

	if err := constraints.Validate(cs, params); err != nil {
		return model.OptimizationResult{}, fmt.Errorf("constraint validation failed: %w", err)
	}

	channel := simchannel.New(engine)

	problem, err := circuit.New(params, cs, tests, targets, netlistLines, channel, circuit.Options{
		GridSize: opts.GridSize,
		Verbose:  opts.Verbose,
	})
	if err != nil {
		return model.OptimizationResult{}, fmt.Errorf("failed to build problem: %w", err)
	}
	defer problem.Close()

	names := problem.ParamNames()
	s, reason := solver.SelectByName(opts.SolverName, problem.Bounds(), len(cs) > 0)
	if opts.Verbose {
		fmt.Printf("Solver: %s (%s)\n", s.Name(), reason)
	}

	applyNumericDefaults(s, opts)

	cb := NewProgressCallback(opts.Verbose, opts.MaxIterations, targets, names, problem)
	cancelAware := &cancelCallback{inner: cb, ctx: ctx}

	result := s.Solve(problem, cancelAware)
	if ctx.Err() != nil {
		result.Success = false
		result.Message = solver.MsgInterrupted
	}

	if opts.Verbose {
		fmt.Println("\n=== OPTIMIZATION COMPLETE ===")
		fmt.Printf("Success: %v\n", result.Success)
		fmt.Printf("Cost: %.6e\n", result.Cost)
		fmt.Printf("Iterations: %d\n", result.Iterations)
		if !result.Success {
			color.Yellow("Stop reason: %s", result.Message)
		}
		cb.PrintSummary(result.Success, result.Message)
	}

	finalParams := make([]model.Parameter, len(params))
	for i, def := range params {
		v := def.Value
		if i < len(result.Params) {
			v = result.Params[i]
		}
		finalParams[i] = model.Parameter{Name: def.Name, Value: v, Min: def.Min, Max: def.Max}
	}

	return model.OptimizationResult{
		Success:    result.Success,
		Cost:       result.Cost,
		Iterations: result.Iterations,
		Message:    result.Message,
		Parameters: finalParams,
		History:    cb.History(),
	}, nil
}

func applyNumericDefaults(s solver.Solver, opts Options) {
	if opts.MaxIterations <= 0 && opts.Precision <= 0 {
		return
	}
	switch v := s.(type) {
	case *solver.AdaptiveNewton:
		if opts.MaxIterations > 0 {
			v.MaxIterations = opts.MaxIterations
		}
		if opts.Precision > 0 {
			v.Precision = opts.Precision
		}
	case *solver.ParticleSwarm:
		if opts.MaxIterations > 0 {
			v.MaxIterations = opts.MaxIterations
		}
		if opts.Precision > 0 {
			v.Precision = opts.Precision
		}
	case *solver.CMAES:
		if opts.MaxIterations > 0 {
			v.MaxIterations = opts.MaxIterations
		}
		if opts.Precision > 0 {
			v.Precision = opts.Precision
		}
	}
}

// cancelCallback wraps a solver.Callback and additionally stops the solve
// when ctx is done, without the wrapped callback needing to know about
// context.Context.
type cancelCallback struct {
	inner interface {
		OnIteration(int, []float64, float64)
		ShouldStop() bool
	}
	ctx context.Context
}

func (c *cancelCallback) OnIteration(iteration int, params []float64, cost float64) {
	c.inner.OnIteration(iteration, params, cost)
}

func (c *cancelCallback) ShouldStop() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
	}
	return c.inner.ShouldStop()
}
