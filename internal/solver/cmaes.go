package solver

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CMAES is a simplified (mu/mu_w, lambda)-CMA-ES with a diagonal-dominant
// covariance approximation rather than a full eigendecomposition of C.
type CMAES struct {
	Sigma          float64
	Precision      float64
	MaxIterations  int
	PopulationSize int // lambda; 0 selects 4+floor(3*ln(n))

	Rand *rand.Rand
}

// NewCMAES returns a CMAES with the standard defaults.
func NewCMAES() *CMAES {
	return &CMAES{
		Sigma:         0.3,
		Precision:     1e-6,
		MaxIterations: 500,
		Rand:          rand.New(rand.NewSource(1)),
	}
}

func (s *CMAES) Name() string { return "cmaes" }

func defaultLambda(n int) int {
	return 4 + int(3*math.Log(float64(n)))
}

func (s *CMAES) Solve(problem Problem, callback Callback) Result {
	n := problem.NumParams()
	mean := append([]float64(nil), problem.InitialParams()...)

	lambda := s.PopulationSize
	if lambda <= 0 {
		lambda = defaultLambda(n)
	}
	if lambda < 4 {
		lambda = 4
	}
	mu := lambda / 2
	if mu < 1 {
		mu = 1
	}

	weights := make([]float64, mu)
	for i := 0; i < mu; i++ {
		w := math.Log(float64(mu)+0.5) - math.Log(float64(i+1))
		if w < 0 {
			w = 0
		}
		weights[i] = w
	}
	wSum := floats.Sum(weights)
	if wSum > 0 {
		floats.Scale(1/wSum, weights)
	}
	sqSum := 0.0
	for _, w := range weights {
		sqSum += w * w
	}
	mueff := 1.0
	if sqSum > 0 {
		mueff = 1 / sqSum
	}

	fn := float64(n)
	cc := 4 / (fn + 4)
	cs := 4 / (fn + 4)
	c1 := 2 / math.Pow(fn+1.3, 2)
	damps := 1 + 2*math.Max(0, math.Sqrt((mueff-1)/(fn+1))-1) + cs
	chiN := math.Sqrt(fn) * (1 - 1/(4*fn) + 1/(21*fn*fn))

	C := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		C.Set(i, i, 1)
	}
	ps := make([]float64, n)
	pc := make([]float64, n)

	sigma := s.Sigma
	costEvals := 0

	bestParams := append([]float64(nil), mean...)
	bestCost := math.Inf(1)
	if c, err := evalAt(problem, bestParams); err == nil {
		bestCost = c
		costEvals++
	}

	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = 500
	}

	type candidate struct {
		x    []float64
		y    []float64
		cost float64
	}

	iterations := 0
	for gen := 0; gen < maxIter; iterations, gen = iterations+1, gen+1 {
		if callback.ShouldStop() {
			return Result{Success: false, Message: MsgStoppedByCallback, Cost: bestCost, Params: bestParams, Iterations: iterations, CostEvals: costEvals}
		}

		pop := make([]candidate, lambda)
		for k := 0; k < lambda; k++ {
			z := make([]float64, n)
			for i := range z {
				z[i] = s.Rand.NormFloat64()
			}
			y := make([]float64, n)
			for i := 0; i < n; i++ {
				sum := 0.0
				for j := 0; j < n; j++ {
					sum += math.Sqrt(math.Abs(C.At(i, j))) * z[j]
				}
				y[i] = sum
			}
			x := make([]float64, n)
			for i := 0; i < n; i++ {
				x[i] = mean[i] + sigma*y[i]
			}
			_ = problem.ApplyConstraints(x)
			cost, err := problem.Cost(x)
			costEvals++
			if err != nil {
				return Result{Success: false, Message: err.Error(), Cost: bestCost, Params: bestParams, Iterations: iterations, CostEvals: costEvals}
			}
			pop[k] = candidate{x: x, y: y, cost: cost}

			if cost < bestCost {
				bestCost = cost
				bestParams = append([]float64(nil), x...)
			}
		}

		sort.Slice(pop, func(i, j int) bool { return pop[i].cost < pop[j].cost })

		yw := make([]float64, n)
		for i := 0; i < mu; i++ {
			for d := 0; d < n; d++ {
				yw[d] += weights[i] * pop[i].y[d]
			}
		}

		for d := 0; d < n; d++ {
			mean[d] += sigma * yw[d]
		}

		psNorm := 0.0
		for d := 0; d < n; d++ {
			ps[d] = (1-cs)*ps[d] + math.Sqrt(cs*(2-cs)*mueff)*yw[d]
			psNorm += ps[d] * ps[d]
		}
		psNorm = math.Sqrt(psNorm)

		hsig := 0.0
		if psNorm/math.Sqrt(1-math.Pow(1-cs, float64(2*(gen+1)))) < (1.4+2/(fn+1))*chiN {
			hsig = 1
		}
		for d := 0; d < n; d++ {
			pc[d] = (1-cc)*pc[d] + hsig*math.Sqrt(cc*(2-cc)*mueff)*yw[d]
		}

		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				updated := (1-c1)*C.At(i, j) + c1*pc[i]*pc[j]
				C.Set(i, j, updated)
			}
		}

		sigma *= math.Exp((cs / damps) * (psNorm/chiN - 1))

		callback.OnIteration(gen+1, bestParams, bestCost)

		if bestCost < s.Precision {
			return Result{Success: true, Message: MsgConverged, Cost: bestCost, Params: bestParams, Iterations: iterations + 1, CostEvals: costEvals}
		}
	}

	return Result{Success: false, Message: MsgMaxIterations, Cost: bestCost, Params: bestParams, Iterations: iterations, CostEvals: costEvals}
}

func evalAt(problem Problem, params []float64) (float64, error) {
	p := append([]float64(nil), params...)
	if err := problem.ApplyConstraints(p); err != nil {
		return 0, err
	}
	return problem.Cost(p)
}
