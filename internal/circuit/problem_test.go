package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circuitopt/internal/constraints"
	"circuitopt/internal/model"
	"circuitopt/internal/simchannel"
)

func newTestProblem(t *testing.T, responses map[string]float64) (*Problem, *simchannel.FakeEngine) {
	t.Helper()

	fe := simchannel.NewFakeEngine()
	for k, v := range responses {
		fe.Responses[k] = v
	}
	ch := simchannel.New(fe)

	params := []model.Parameter{
		{Name: "M1_W", Value: 1e-6, Min: 0.42e-6, Max: 10e-6},
	}
	tests := []model.Test{
		{Name: "ac_test", SpiceCode: ".ac dec 10 1 1e6\nmeas ac gain find vdb(out) at=1e3"},
	}
	targets := []model.Target{
		{Metric: "gain", Value: 60, Weight: 1, Mode: model.ModeMax},
	}
	netlistLines := []string{"title", "M1 d g s b nmos L=0.15e-6 W=1e-6", ".end"}

	p, err := New(params, nil, tests, targets, netlistLines, ch, Options{GridSize: 5e-9})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, fe
}

func TestCostUsesMeasuredMetric(t *testing.T) {
	p, _ := newTestProblem(t, map[string]float64{"gain": 65})

	cost, err := p.Cost(p.InitialParams())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, cost, 1e-9) // 65 >= 60 satisfies Max mode
}

func TestCostAppliesPenaltyWhenMetricMissing(t *testing.T) {
	p, _ := newTestProblem(t, map[string]float64{})

	cost, err := p.Cost(p.InitialParams())
	require.NoError(t, err)
	// Missing Max metric -> penalty = value*10 = 600; error = max(0, 60-600) = 0.
	assert.InDelta(t, 0.0, cost, 1e-9)
}

func TestApplyConstraintsProjectsToGrid(t *testing.T) {
	params := []model.Parameter{
		{Name: "a", Value: 0.0123e-6, Min: 0, Max: 1e-6},
	}
	var cache constraintCache
	vals := []float64{0.0123e-6}
	err := applyConstraints(vals, params, nil, &cache, 5e-9)
	require.NoError(t, err)
	quotient := vals[0] / 5e-9
	assert.InDelta(t, quotient, float64(int64(quotient+0.5)), 1e-6)
	assert.GreaterOrEqual(t, vals[0], params[0].Min)
	assert.LessOrEqual(t, vals[0], params[0].Max)
}

func TestApplyConstraintsIsIdempotent(t *testing.T) {
	params := []model.Parameter{{Name: "a", Value: 0, Min: 0, Max: 1e-6}}
	var cache constraintCache
	vals := []float64{0.0123e-6}
	require.NoError(t, applyConstraints(vals, params, nil, &cache, 5e-9))
	first := append([]float64(nil), vals...)
	require.NoError(t, applyConstraints(vals, params, nil, &cache, 5e-9))
	assert.Equal(t, first, vals)
}

func TestConstraintClosureAdjustsTarget(t *testing.T) {
	params := []model.Parameter{
		{Name: "a", Value: 2, Min: 0, Max: 10},
		{Name: "b", Value: 1, Min: 0, Max: 10},
	}
	cs := []model.ParameterConstraint{
		{TargetParam: "b", SourceParams: []string{"a"}, Expression: "a*2", Relationship: model.RelEq},
	}
	require.NoError(t, constraints.Validate(cs, params))

	records := []constraintRecord{{targetIdx: 1, sourceIdx: []int{0}, relationship: model.RelEq, compiled: cs[0].Compiled}}
	var cache constraintCache
	vals := []float64{2, 1}
	require.NoError(t, applyConstraints(vals, params, records, &cache, 0))
	assert.InDelta(t, 4.0, vals[1], 1e-9)
}

func TestConstraintCacheReappliesRelationship(t *testing.T) {
	params := []model.Parameter{
		{Name: "a", Value: 2, Min: 0, Max: 10},
		{Name: "b", Value: 1, Min: 0, Max: 10},
	}
	cs := []model.ParameterConstraint{
		{TargetParam: "b", SourceParams: []string{"a"}, Expression: "a*2", Relationship: model.RelGe},
	}
	require.NoError(t, constraints.Validate(cs, params))
	records := []constraintRecord{{targetIdx: 1, sourceIdx: []int{0}, relationship: model.RelGe, compiled: cs[0].Compiled}}

	var cache constraintCache

	// Target below the computed floor gets raised.
	vals := []float64{2, 1}
	require.NoError(t, applyConstraints(vals, params, records, &cache, 0))
	assert.InDelta(t, 4.0, vals[1], 1e-9)

	// Same sources (cache hit) but a target already above the floor must be
	// left alone, not replayed from the previous call's decision.
	vals = []float64{2, 7}
	require.NoError(t, applyConstraints(vals, params, records, &cache, 0))
	assert.InDelta(t, 7.0, vals[1], 1e-9)
}

func TestApplyConstraintsClampsOutOfBoundsCandidate(t *testing.T) {
	params := []model.Parameter{{Name: "a", Value: 1, Min: 0, Max: 1}}
	var cache constraintCache
	vals := []float64{3.2}
	require.NoError(t, applyConstraints(vals, params, nil, &cache, 0))
	assert.Equal(t, 1.0, vals[0])
}

func TestMergeTestsByEnvironment(t *testing.T) {
	tests := []model.Test{
		{Name: "t1", SpiceCode: ".ac dec 10 1 1e6\nmeas ac g1 find vdb(out) at=1e3", Environment: []model.Environment{{Name: "TEMP", Value: "27"}}},
		{Name: "t2", SpiceCode: ".ac dec 10 1 1e6\nmeas ac g2 find vdb(out) at=2e3", Environment: []model.Environment{{Name: "TEMP", Value: "27"}}},
	}
	merged, err := MergeTestsByEnvironment(tests)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "t1+t2", merged[0].Name)
	assert.Contains(t, merged[0].SpiceCode, "g1")
	assert.Contains(t, merged[0].SpiceCode, "g2")
}
