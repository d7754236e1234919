// Package simchannel is a typed wrapper over a SPICE-like simulator's
// in-process command/vector API. It does not implement a simulator: Engine
// is the small interface the real binding must satisfy, and Channel adds
// the shared, mutex-protected output-capture buffer every command writes
// into via the simulator's print callback.
package simchannel

// Engine is the minimal command/vector surface a SPICE-like simulator must
// expose to be driven by this package. A production binding implements it
// against the real process-embedded engine; tests use the in-memory
// FakeEngine in this package.
type Engine interface {
	Command(text string) error
	LoadCircuit(lines []string) error
	AlterComponent(ref string, value float64) error
	AlterParameter(ref, attr string, value float64) error
	Vector(name string) ([]float64, error)
	VectorComplex(name string) (real, imag []float64, err error)
	Running() bool
	SetBreakpoint(t float64) error
	CurrentPlot() string
	AllPlots() []string
	AllVecs(plot string) []string
}
