// Package constraints validates a set of ParameterConstraints against a
// Parameter set: it detects cyclic dependencies in the constraint graph and
// compiles every constraint's expression via exprvm.
package constraints

import (
	"fmt"

	"circuitopt/internal/model"
)

const (
	white = 0
	gray  = 1
	black = 2
)

// DetectCycles builds the directed graph (edge: source -> target for every
// constraint) and runs DFS cycle detection with white/gray/black coloring.
// It returns an error naming a parameter on the first cycle found.
func DetectCycles(cs []model.ParameterConstraint, params []model.Parameter) error {
	n := len(params)
	index := make(map[string]int, n)
	for i, p := range params {
		index[p.Name] = i
	}

	graph := make([][]int, n)
	for _, c := range cs {
		targetIdx, ok := index[c.TargetParam]
		if !ok {
			continue
		}
		for _, src := range c.SourceParams {
			if srcIdx, ok := index[src]; ok {
				graph[srcIdx] = append(graph[srcIdx], targetIdx)
			}
		}
	}

	color := make([]int, n)

	var dfs func(node int) error
	dfs = func(node int) error {
		color[node] = gray
		for _, next := range graph[node] {
			switch color[next] {
			case white:
				if err := dfs(next); err != nil {
					return err
				}
			case gray:
				return fmt.Errorf("cyclic dependency detected involving parameter %q", params[next].Name)
			}
		}
		color[node] = black
		return nil
	}

	for i := 0; i < n; i++ {
		if color[i] == white {
			if err := dfs(i); err != nil {
				return err
			}
		}
	}
	return nil
}
