package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReturnsReferenceDefaults(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultGridSize, c.GridSize)
	assert.Equal(t, DefaultMaxIterations, c.MaxIterations)
	assert.Equal(t, DefaultPrecision, c.Precision)
	assert.Equal(t, DefaultPSOPopulation, c.PSOPopulation)
	assert.False(t, c.Verbose)
}

func TestLoadAppliesOptionsOverDefaults(t *testing.T) {
	c := Load(WithGridSize(1e-9), WithMaxIterations(50), WithPrecision(1e-8), WithVerbose(true))
	assert.Equal(t, 1e-9, c.GridSize)
	assert.Equal(t, 50, c.MaxIterations)
	assert.Equal(t, 1e-8, c.Precision)
	assert.True(t, c.Verbose)
}
