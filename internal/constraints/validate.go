package constraints

import (
	"fmt"

	"circuitopt/internal/exprvm"
	"circuitopt/internal/model"
)

// Validate checks the constraint set for cyclic dependencies and, once
// clean, compiles each constraint's expression over its declared source
// parameters in order, filling in cs[i].Compiled.
func Validate(cs []model.ParameterConstraint, params []model.Parameter) error {
	if err := DetectCycles(cs, params); err != nil {
		return err
	}

	known := make(map[string]struct{}, len(params))
	for _, p := range params {
		known[p.Name] = struct{}{}
	}

	for i := range cs {
		for _, src := range cs[i].SourceParams {
			if _, ok := known[src]; !ok {
				return fmt.Errorf("constraint on %q references unknown parameter %q", cs[i].TargetParam, src)
			}
		}

		compiled, err := exprvm.Compile(cs[i].Expression, cs[i].SourceParams)
		if err != nil {
			return fmt.Errorf("constraint on %q: %w", cs[i].TargetParam, err)
		}
		cs[i].Compiled = compiled
	}

	return nil
}
