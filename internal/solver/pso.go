package solver

import (
	"math"

	"golang.org/x/exp/rand"
)

// ParticleSwarm is a particle-swarm optimizer.
type ParticleSwarm struct {
	Population    int
	Precision     float64
	MaxIterations int

	Inertia   float64 // w
	Cognitive float64 // c1
	Social    float64 // c2

	Rand *rand.Rand
}

// NewParticleSwarm returns a ParticleSwarm with the standard defaults.
func NewParticleSwarm(population int) *ParticleSwarm {
	if population <= 0 {
		population = 20
	}
	return &ParticleSwarm{
		Population:    population,
		Precision:     1e-6,
		MaxIterations: 300,
		Inertia:       0.7,
		Cognitive:     1.5,
		Social:        1.5,
		Rand:          rand.New(rand.NewSource(1)),
	}
}

func (s *ParticleSwarm) Name() string { return "pso" }

const maxPSOStagnation = 5

func (s *ParticleSwarm) Solve(problem Problem, callback Callback) Result {
	n := problem.NumParams()
	bounds := problem.Bounds()
	initial := problem.InitialParams()

	positions := make([][]float64, s.Population)
	velocities := make([][]float64, s.Population)
	personalBest := make([][]float64, s.Population)
	personalBestCost := make([]float64, s.Population)

	costEvals := 0

	for p := 0; p < s.Population; p++ {
		pos := make([]float64, n)
		vel := make([]float64, n)
		for i := 0; i < n; i++ {
			rng := bounds[i].Range()
			if p == 0 {
				pos[i] = initial[i]
			} else {
				pos[i] = bounds[i].Min + s.Rand.Float64()*rng
			}
			vel[i] = (s.Rand.Float64()*2 - 1) * 0.1 * rng
		}
		_ = problem.ApplyConstraints(pos)
		c, err := problem.Cost(pos)
		costEvals++
		if err != nil {
			return Result{Success: false, Message: err.Error(), CostEvals: costEvals}
		}
		positions[p] = pos
		velocities[p] = vel
		personalBest[p] = append([]float64(nil), pos...)
		personalBestCost[p] = c
	}

	globalBestIdx := 0
	for p := 1; p < s.Population; p++ {
		if personalBestCost[p] < personalBestCost[globalBestIdx] {
			globalBestIdx = p
		}
	}
	globalBest := append([]float64(nil), personalBest[globalBestIdx]...)
	globalBestCost := personalBestCost[globalBestIdx]

	stagnation := 0
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = 300
	}

	iterations := 0
	for iter := 0; iter < maxIter; iterations, iter = iterations+1, iter+1 {
		if callback.ShouldStop() {
			return Result{Success: false, Message: MsgStoppedByCallback, Cost: globalBestCost, Params: globalBest, Iterations: iterations, CostEvals: costEvals}
		}

		prevGlobalBestCost := globalBestCost

		for p := 0; p < s.Population; p++ {
			for i := 0; i < n; i++ {
				rng := bounds[i].Range()
				r1, r2 := s.Rand.Float64(), s.Rand.Float64()
				v := s.Inertia*velocities[p][i] +
					s.Cognitive*r1*(personalBest[p][i]-positions[p][i]) +
					s.Social*r2*(globalBest[i]-positions[p][i])
				clamp := 0.2 * rng
				if v > clamp {
					v = clamp
				}
				if v < -clamp {
					v = -clamp
				}
				velocities[p][i] = v
				positions[p][i] += v
			}

			_ = problem.ApplyConstraints(positions[p])
			c, err := problem.Cost(positions[p])
			costEvals++
			if err != nil {
				return Result{Success: false, Message: err.Error(), Cost: globalBestCost, Params: globalBest, Iterations: iterations, CostEvals: costEvals}
			}

			if c < personalBestCost[p] {
				personalBestCost[p] = c
				copy(personalBest[p], positions[p])
				if c < globalBestCost {
					globalBestCost = c
					copy(globalBest, positions[p])
				}
			}
		}

		callback.OnIteration(iter+1, globalBest, globalBestCost)

		if globalBestCost < s.Precision {
			return Result{Success: true, Message: MsgConverged, Cost: globalBestCost, Params: globalBest, Iterations: iterations + 1, CostEvals: costEvals}
		}

		if math.Abs(prevGlobalBestCost-globalBestCost) < 0.01*s.Precision {
			stagnation++
			if stagnation >= maxPSOStagnation {
				return Result{Success: false, Message: MsgStagnated, Cost: globalBestCost, Params: globalBest, Iterations: iterations + 1, CostEvals: costEvals}
			}
		} else {
			stagnation = 0
		}
	}

	return Result{Success: false, Message: MsgMaxIterations, Cost: globalBestCost, Params: globalBest, Iterations: iterations, CostEvals: costEvals}
}
