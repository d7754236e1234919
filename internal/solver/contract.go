// Package solver implements the common Problem/Solver contract and three
// solver algorithms (adaptive Newton, particle swarm, and a simplified
// CMA-ES), plus the auto-selection heuristic.
package solver

import "circuitopt/internal/model"

// Problem is the numeric contract a Solver drives. circuit.Problem
// satisfies it.
type Problem interface {
	NumParams() int
	InitialParams() []float64
	Bounds() []model.Parameter
	ApplyConstraints(params []float64) error
	Cost(params []float64) (float64, error)
}

// Callback receives progress notifications from a Solver and may request
// early termination.
type Callback interface {
	OnIteration(iteration int, bestParams []float64, bestCost float64)
	ShouldStop() bool
}

// NoopCallback satisfies Callback without recording or stopping anything;
// useful for tests and for callers that don't need progress reporting.
type NoopCallback struct{}

func (NoopCallback) OnIteration(int, []float64, float64) {}
func (NoopCallback) ShouldStop() bool                    { return false }

// Result is the terminal outcome of a single Solve call.
type Result struct {
	Success    bool
	Cost       float64
	Iterations int
	Message    string
	Params     []float64
	CostEvals  int
	GradEvals  int
}

// Solver is implemented by each optimization algorithm.
type Solver interface {
	Name() string
	Solve(problem Problem, callback Callback) Result
}

const (
	// MsgStoppedByCallback is returned when callback.ShouldStop() becomes true.
	MsgStoppedByCallback = "Stopped by callback"
	// MsgConverged is returned when cost drops below the configured precision.
	MsgConverged = "Converged"
	// MsgMaxIterations is returned when the iteration budget is exhausted
	// without converging.
	MsgMaxIterations = "Max iterations reached"
	// MsgStagnated is returned when a solver's own stagnation heuristic fires.
	MsgStagnated = "Stagnated"
	// MsgInterrupted is returned when an external cancellation unwinds the solve.
	MsgInterrupted = "Interrupted"
)
