package solver

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"circuitopt/internal/model"
)

// AdaptiveNewton is a numerical-gradient descent solver with Armijo
// backtracking line search and an adaptive learning rate.
type AdaptiveNewton struct {
	Precision     float64
	MaxIterations int
	LearningRate  float64

	// GradStep is the central-difference step size.
	GradStep float64
}

// NewAdaptiveNewton returns an AdaptiveNewton with the standard defaults.
func NewAdaptiveNewton() *AdaptiveNewton {
	return &AdaptiveNewton{
		Precision:     1e-6,
		MaxIterations: 200,
		LearningRate:  0.1,
		GradStep:      1e-6,
	}
}

func (s *AdaptiveNewton) Name() string { return "newton" }

const (
	armijoC           = 1e-4
	armijoBacktracks  = 10
	armijoFactor      = 0.5
	minLearningRate   = 1e-6
	maxLearningRate   = 1.0
	lrGrowthFactor    = 1.2
	improvementStreak = 3
)

func clampToBounds(params []float64, bounds []model.Parameter) {
	for i, b := range bounds {
		if params[i] < b.Min {
			params[i] = b.Min
		}
		if params[i] > b.Max {
			params[i] = b.Max
		}
	}
}

func (s *AdaptiveNewton) Solve(problem Problem, callback Callback) Result {
	n := problem.NumParams()
	bounds := problem.Bounds()
	x := append([]float64(nil), problem.InitialParams()...)

	costEvals := 0
	gradEvals := 0
	prevCost := math.Inf(1)
	improvements := 0
	lr := s.LearningRate
	if lr <= 0 {
		lr = 0.1
	}

	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = 200
	}

	var evalErr error
	costAt := func(v []float64) float64 {
		p := append([]float64(nil), v...)
		if err := problem.ApplyConstraints(p); err != nil {
			evalErr = err
			return math.Inf(1)
		}
		clampToBounds(p, bounds)
		c, err := problem.Cost(p)
		costEvals++
		if err != nil {
			evalErr = err
			return math.Inf(1)
		}
		return c
	}

	grad := make([]float64, n)
	fdSettings := &fd.Settings{Formula: fd.Central, Step: s.GradStep}

	for iter := 0; iter < maxIter; iter++ {
		if err := problem.ApplyConstraints(x); err != nil {
			return Result{Success: false, Message: err.Error(), Cost: prevCost, Params: x, Iterations: iter, CostEvals: costEvals, GradEvals: gradEvals}
		}
		clampToBounds(x, bounds)

		cost, err := problem.Cost(x)
		costEvals++
		if err != nil {
			return Result{Success: false, Message: err.Error(), Cost: prevCost, Params: x, Iterations: iter, CostEvals: costEvals, GradEvals: gradEvals}
		}

		callback.OnIteration(iter+1, x, cost)

		if callback.ShouldStop() {
			return Result{Success: false, Message: MsgStoppedByCallback, Cost: cost, Params: x, Iterations: iter + 1, CostEvals: costEvals, GradEvals: gradEvals}
		}
		if cost < s.Precision {
			return Result{Success: true, Message: MsgConverged, Cost: cost, Params: x, Iterations: iter + 1, CostEvals: costEvals, GradEvals: gradEvals}
		}
		if math.Abs(prevCost-cost) < 0.01*s.Precision {
			return Result{Success: false, Message: MsgStagnated, Cost: cost, Params: x, Iterations: iter + 1, CostEvals: costEvals, GradEvals: gradEvals}
		}

		if cost < prevCost {
			improvements++
			if improvements >= improvementStreak {
				lr = math.Min(lr*lrGrowthFactor, maxLearningRate)
			}
		} else {
			improvements = 0
		}
		prevCost = cost

		fd.Gradient(grad, costAt, x, fdSettings)
		gradEvals++
		if evalErr != nil {
			return Result{Success: false, Message: evalErr.Error(), Cost: cost, Params: x, Iterations: iter + 1, CostEvals: costEvals, GradEvals: gradEvals}
		}

		alpha := s.lineSearch(x, grad, cost, lr, costAt)
		if evalErr != nil {
			return Result{Success: false, Message: evalErr.Error(), Cost: cost, Params: x, Iterations: iter + 1, CostEvals: costEvals, GradEvals: gradEvals}
		}

		for i := range x {
			x[i] -= alpha * grad[i]
		}
		clampToBounds(x, bounds)
	}

	return Result{Success: false, Message: MsgMaxIterations, Cost: prevCost, Params: x, Iterations: maxIter, CostEvals: costEvals, GradEvals: gradEvals}
}

// lineSearch backtracks from lr until the Armijo sufficient-decrease
// condition holds, returning the accepted step size (or the floor after the
// backtrack budget is spent).
func (s *AdaptiveNewton) lineSearch(x, grad []float64, cost, lr float64, costAt func([]float64) float64) float64 {
	alpha := lr
	gradNormSq := 0.0
	for _, g := range grad {
		gradNormSq += g * g
	}

	candidate := make([]float64, len(x))
	for bt := 0; bt < armijoBacktracks; bt++ {
		for i := range candidate {
			candidate[i] = x[i] - alpha*grad[i]
		}
		if costAt(candidate) <= cost-armijoC*alpha*gradNormSq {
			return alpha
		}
		alpha *= armijoFactor
		if alpha < minLearningRate {
			break
		}
	}
	return math.Max(alpha, minLearningRate)
}
