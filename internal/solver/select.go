package solver

import (
	"fmt"
	"math"

	"circuitopt/internal/model"
)

// Select picks a Solver from the problem's shape per the heuristic in
// (n, avg_range, CV_of_ranges, has_constraints). Guard order matters: the
// first matching condition wins.
func Select(bounds []model.Parameter, hasConstraints bool) (Solver, string) {
	n := len(bounds)

	var sumRange float64
	for _, b := range bounds {
		sumRange += b.Range()
	}
	avgRange := 0.0
	if n > 0 {
		avgRange = sumRange / float64(n)
	}

	var variance float64
	for _, b := range bounds {
		d := b.Range() - avgRange
		variance += d * d
	}
	if n > 0 {
		variance /= float64(n)
	}
	stddev := math.Sqrt(variance)
	cv := 0.0
	if avgRange != 0 {
		cv = stddev / avgRange
	}

	switch {
	case n <= 2 && avgRange < 0.1:
		return NewAdaptiveNewton(), fmt.Sprintf("newton: n=%d <= 2 and avg_range=%.4g < 0.1", n, avgRange)
	case n <= 8:
		pop := minInt(10+3*n, 30)
		return NewParticleSwarm(pop), fmt.Sprintf("pso(pop=%d): n=%d <= 8", pop, n)
	case n >= 9 || cv > 1.5:
		return NewCMAES(), fmt.Sprintf("cmaes: n=%d >= 9 or cv=%.4g > 1.5", n, cv)
	default:
		return NewParticleSwarm(20), "pso(pop=20): default"
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// SelectByName returns the named solver ("newton", "pso", "cmaes"), or
// falls back to Select's heuristic for any other name (including "auto"
// and "").
func SelectByName(name string, bounds []model.Parameter, hasConstraints bool) (Solver, string) {
	switch name {
	case "newton":
		return NewAdaptiveNewton(), "newton: explicitly requested"
	case "pso":
		return NewParticleSwarm(20), "pso: explicitly requested"
	case "cmaes":
		return NewCMAES(), "cmaes: explicitly requested"
	default:
		return Select(bounds, hasConstraints)
	}
}
