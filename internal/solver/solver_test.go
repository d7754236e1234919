package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circuitopt/internal/model"
)

// sphereProblem implements Problem over f(x,y) = x^2+y^2 with no
// constraints.
type sphereProblem struct {
	bounds []model.Parameter
}

func newSphereProblem() *sphereProblem {
	return &sphereProblem{bounds: []model.Parameter{
		{Name: "x", Value: 3, Min: -5, Max: 5},
		{Name: "y", Value: -4, Min: -5, Max: 5},
	}}
}

func (p *sphereProblem) NumParams() int            { return 2 }
func (p *sphereProblem) InitialParams() []float64  { return []float64{3, -4} }
func (p *sphereProblem) Bounds() []model.Parameter { return p.bounds }
func (p *sphereProblem) ApplyConstraints(x []float64) error {
	for i, b := range p.bounds {
		if x[i] < b.Min {
			x[i] = b.Min
		}
		if x[i] > b.Max {
			x[i] = b.Max
		}
	}
	return nil
}
func (p *sphereProblem) Cost(x []float64) (float64, error) {
	return x[0]*x[0] + x[1]*x[1], nil
}

func TestPSOConvergesOnSphere(t *testing.T) {
	pso := NewParticleSwarm(20)
	pso.Precision = 1e-6
	pso.MaxIterations = 500
	result := pso.Solve(newSphereProblem(), NoopCallback{})
	assert.Less(t, result.Cost, 1e-6)
}

func TestNewtonConvergesOnSphere(t *testing.T) {
	n := NewAdaptiveNewton()
	n.Precision = 1e-6
	n.MaxIterations = 500
	result := n.Solve(newSphereProblem(), NoopCallback{})
	assert.Less(t, result.Cost, 1e-3)
}

func TestCMAESReducesCostOnSphere(t *testing.T) {
	c := NewCMAES()
	c.MaxIterations = 100
	result := c.Solve(newSphereProblem(), NoopCallback{})
	assert.Less(t, result.Cost, 25.0) // started at 3^2+4^2=25
}

func TestSelectChoosesNewtonForTinyTightProblem(t *testing.T) {
	bounds := []model.Parameter{{Min: 0, Max: 0.05}, {Min: 0, Max: 0.05}}
	s, reason := Select(bounds, false)
	require.Equal(t, "newton", s.Name())
	assert.Contains(t, reason, "newton")
}

func TestSelectChoosesPSOForModerateDimension(t *testing.T) {
	bounds := make([]model.Parameter, 5)
	for i := range bounds {
		bounds[i] = model.Parameter{Min: 0, Max: 10}
	}
	s, _ := Select(bounds, false)
	assert.Equal(t, "pso", s.Name())
}

func TestSelectChoosesCMAESForHighDimension(t *testing.T) {
	bounds := make([]model.Parameter, 12)
	for i := range bounds {
		bounds[i] = model.Parameter{Min: 0, Max: 10}
	}
	s, _ := Select(bounds, false)
	assert.Equal(t, "cmaes", s.Name())
}

func TestCallbackStopHaltsNewton(t *testing.T) {
	n := NewAdaptiveNewton()
	result := n.Solve(newSphereProblem(), stoppingCallback{})
	assert.Equal(t, MsgStoppedByCallback, result.Message)
}

type stoppingCallback struct{}

func (stoppingCallback) OnIteration(int, []float64, float64) {}
func (stoppingCallback) ShouldStop() bool                    { return true }
