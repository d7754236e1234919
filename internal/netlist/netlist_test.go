package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"circuitopt/internal/model"
)

func TestParameterizePreservesTitleAndInsertsParams(t *testing.T) {
	lines := []string{
		"Test circuit",
		"M1 d g s b nmos L=0.15e-6 W=1e-6",
		".end",
	}
	params := []model.Parameter{
		{Name: "M1_L", Value: 0.15e-6},
		{Name: "M1_W", Value: 1e-6},
	}

	out := Parameterize(lines, params)

	assert.Equal(t, "Test circuit", out[0])

	joined := ""
	for _, l := range out {
		joined += l + "\n"
	}
	assert.Contains(t, joined, ".param M1_L = 1.5e-07")
	assert.Contains(t, joined, ".param M1_W = 1e-06")
	assert.Contains(t, joined, "L={M1_L}")
	assert.Contains(t, joined, "W={M1_W}")
	assert.Equal(t, ".end", out[len(out)-1])
}

func TestParameterizeStripsExistingParamLines(t *testing.T) {
	lines := []string{
		"Test circuit",
		".param old = 1",
		"R1 a b 1k",
		".end",
	}
	out := Parameterize(lines, nil)

	for _, l := range out {
		assert.NotContains(t, l, "old = 1")
	}
}

func TestParameterizeAddsEndWhenMissing(t *testing.T) {
	lines := []string{"title", "R1 a b 1k"}
	out := Parameterize(lines, nil)
	assert.Equal(t, ".end", out[len(out)-1])
}
