package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circuitopt/internal/model"
)

func TestCycleDetectionFailsOnCycle(t *testing.T) {
	params := []model.Parameter{{Name: "x"}, {Name: "y"}}
	cs := []model.ParameterConstraint{
		{TargetParam: "x", SourceParams: []string{"y"}, Expression: "y+1", Relationship: model.RelEq},
		{TargetParam: "y", SourceParams: []string{"x"}, Expression: "x-1", Relationship: model.RelEq},
	}

	err := Validate(cs, params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic dependency")
}

func TestValidDAGSucceeds(t *testing.T) {
	params := []model.Parameter{{Name: "a"}, {Name: "b"}}
	cs := []model.ParameterConstraint{
		{TargetParam: "b", SourceParams: []string{"a"}, Expression: "a*2", Relationship: model.RelEq},
	}

	err := Validate(cs, params)
	require.NoError(t, err)
	require.NotNil(t, cs[0].Compiled)

	v, err := cs[0].Compiled.Evaluate([]float64{3})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, v, 1e-9)
}

func TestUnknownSourceParameter(t *testing.T) {
	params := []model.Parameter{{Name: "a"}}
	cs := []model.ParameterConstraint{
		{TargetParam: "a", SourceParams: []string{"z"}, Expression: "z+1", Relationship: model.RelEq},
	}

	err := Validate(cs, params)
	assert.Error(t, err)
}
