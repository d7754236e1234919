package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetErrorByMode(t *testing.T) {
	minT := Target{Metric: "bw", Value: 10, Weight: 1, Mode: ModeMin}
	assert.Equal(t, 0.0, minT.Error(9))
	assert.Equal(t, 2.0, minT.Error(12))

	maxT := Target{Metric: "gain", Value: 60, Weight: 1, Mode: ModeMax}
	assert.Equal(t, 0.0, maxT.Error(65))
	assert.Equal(t, 5.0, maxT.Error(55))

	exactT := Target{Metric: "vout", Value: 1.2, Weight: 1, Mode: ModeExact}
	assert.Equal(t, 0.0, exactT.Error(1.2))
	assert.InDelta(t, 0.3, exactT.Error(0.9), 1e-12)
	assert.InDelta(t, 0.3, exactT.Error(1.5), 1e-12)
}

func TestTargetPenaltyByMode(t *testing.T) {
	assert.Equal(t, 6.0, Target{Value: 60, Mode: ModeMin}.Penalty())
	assert.Equal(t, 600.0, Target{Value: 60, Mode: ModeMax}.Penalty())
	assert.Equal(t, 120.0, Target{Value: 60, Mode: ModeExact}.Penalty())
}

func TestParameterClamp(t *testing.T) {
	p := Parameter{Name: "w", Value: 12, Min: 0, Max: 10}
	p.Clamp()
	assert.Equal(t, 10.0, p.Value)

	p.Value = -1
	p.Clamp()
	assert.Equal(t, 0.0, p.Value)
}

func TestParseRelationship(t *testing.T) {
	for s, want := range map[string]Relationship{
		"==": RelEq, "<": RelLt, "<=": RelLe, ">": RelGt, ">=": RelGe,
	} {
		got, err := ParseRelationship(s)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRelationship("=")
	assert.Error(t, err)
}
