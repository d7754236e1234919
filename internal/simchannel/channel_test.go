package simchannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelCapturesPrintOutput(t *testing.T) {
	fe := NewFakeEngine()
	fe.Responses["gain"] = 42.0
	ch := New(fe)

	require.NoError(t, ch.Command("run"))
	out := ch.Output()
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "gain_val")
}

func TestChannelClearOutput(t *testing.T) {
	fe := NewFakeEngine()
	fe.Responses["gain"] = 1
	ch := New(fe)

	require.NoError(t, ch.Command("run"))
	assert.NotEmpty(t, ch.Output())

	ch.ClearOutput()
	assert.Empty(t, ch.Output())
}

func TestVectorMissingFails(t *testing.T) {
	ch := New(NewFakeEngine())
	_, err := ch.Vector("nope")
	assert.Error(t, err)
}

func TestMagnitude(t *testing.T) {
	m := Magnitude([]float64{3}, []float64{4})
	assert.InDelta(t, 5.0, m[0], 1e-9)
}

func TestParseTrailingFloat(t *testing.T) {
	v, ok := ParseTrailingFloat("gain_val = 12.5 extra")
	require.True(t, ok)
	assert.InDelta(t, 12.5, v, 1e-9)

	_, ok = ParseTrailingFloat("no equals here")
	assert.False(t, ok)
}
