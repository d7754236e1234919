package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circuitopt/internal/model"
)

const sampleScenario = `
# a minimal scan scenario
parameter M1_L = 180e-9 [100e-9, 500e-9]
parameter M1_W = 5e-6 [1e-6, 20e-6]

constraint M1_W >= M1_L * 10

target gain_db = 40 weight=1.0 mode=min unit=dB

test ac_gain environment(temp=27) {
	.ac dec 10 1 1e9
	meas ac gain_db_val find vdb(out) at=1e6
}
`

func TestParseExtractsAllStatementKinds(t *testing.T) {
	sc, err := Parse("sample.scn", sampleScenario)
	require.NoError(t, err)

	require.Len(t, sc.Parameters, 2)
	assert.Equal(t, "M1_L", sc.Parameters[0].Name)
	assert.Equal(t, 180e-9, sc.Parameters[0].Value)
	assert.Equal(t, 100e-9, sc.Parameters[0].Min)
	assert.Equal(t, 500e-9, sc.Parameters[0].Max)

	require.Len(t, sc.Constraints, 1)
	c := sc.Constraints[0]
	assert.Equal(t, "M1_W", c.TargetParam)
	assert.Equal(t, model.RelGe, c.Relationship)
	assert.Equal(t, []string{"M1_L"}, c.SourceParams)

	require.Len(t, sc.Targets, 1)
	assert.Equal(t, "gain_db", sc.Targets[0].Metric)
	assert.Equal(t, model.ModeMin, sc.Targets[0].Mode)
	assert.Equal(t, "dB", sc.Targets[0].Unit)

	require.Len(t, sc.Tests, 1)
	assert.Equal(t, "ac_gain", sc.Tests[0].Name)
	require.Len(t, sc.Tests[0].Environment, 1)
	assert.Equal(t, "temp", sc.Tests[0].Environment[0].Name)
	assert.Contains(t, sc.Tests[0].SpiceCode, ".ac dec 10 1 1e9")
}

func TestParseRejectsUnknownMode(t *testing.T) {
	_, err := Parse("bad.scn", `target x = 1 weight=1 mode=sideways`)
	require.Error(t, err)
}

func TestParseSurfacesSyntaxErrorPosition(t *testing.T) {
	_, err := Parse("bad.scn", "parameter w = \n")
	require.Error(t, err)

	_, ok := ErrorPosition(err)
	assert.True(t, ok)
	assert.NotEmpty(t, ErrorMessage(err))
}

func TestIdentifiersInPreservesFirstOccurrenceOrder(t *testing.T) {
	names := identifiersIn("b*2 + a - b/c")
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestIdentifiersInSkipsExponentSuffixes(t *testing.T) {
	names := identifiersIn("M1_L * 2e-6 + 1E3")
	assert.Equal(t, []string{"M1_L"}, names)
}
