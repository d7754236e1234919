package simchannel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Channel wraps an Engine with the shared output-capture buffer described
// in the concurrency model: the buffer is the only state touched from a
// foreign callback "thread" (the simulator's print callback) and is
// protected by a mutex. Every other Channel method runs on the
// optimization goroutine.
type Channel struct {
	engine Engine

	mu     sync.Mutex
	output []string
}

// New wraps engine in a Channel, wiring its print callback (if the engine
// exposes one via OnPrint) into the shared buffer.
func New(engine Engine) *Channel {
	ch := &Channel{engine: engine}
	if p, ok := engine.(interface{ OnPrint(func(string)) }); ok {
		p.OnPrint(ch.appendOutput)
	}
	return ch
}

func (c *Channel) appendOutput(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output = append(c.output, line)
}

// ClearOutput empties the captured output buffer. Must be called at the
// start of every cost evaluation so a run reads only its own output.
func (c *Channel) ClearOutput() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output = c.output[:0]
}

// Output returns a snapshot of the captured output lines.
func (c *Channel) Output() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.output))
	copy(out, c.output)
	return out
}

// Command executes one command; on failure the error carries the offending
// text.
func (c *Channel) Command(text string) error {
	if err := c.engine.Command(text); err != nil {
		return fmt.Errorf("command failed: %q: %w", text, err)
	}
	return nil
}

// Commands joins lines and executes them as a single Command call.
func (c *Channel) Commands(lines []string) error {
	return c.Command(strings.Join(lines, "\n"))
}

// LoadCircuit replaces the currently loaded circuit.
func (c *Channel) LoadCircuit(lines []string) error {
	if err := c.engine.LoadCircuit(lines); err != nil {
		return fmt.Errorf("load circuit failed: %w", err)
	}
	return nil
}

// AlterComponent mutates a component's value at runtime.
func (c *Channel) AlterComponent(ref string, value float64) error {
	return c.engine.AlterComponent(ref, value)
}

// AlterParameter mutates a component attribute's value at runtime.
func (c *Channel) AlterParameter(ref, attr string, value float64) error {
	return c.engine.AlterParameter(ref, attr, value)
}

// Vector reads a named vector and returns the samples exactly as
// Engine.Vector reports them. It does not itself reduce complex data to
// magnitudes; Magnitude does that for VectorComplex output. An empty or
// missing vector fails.
func (c *Channel) Vector(name string) ([]float64, error) {
	v, err := c.engine.Vector(name)
	if err != nil {
		return nil, fmt.Errorf("vector %q: %w", name, err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("vector %q is empty or missing", name)
	}
	return v, nil
}

// VectorComplex reads a named vector's real and imaginary parts, padding
// imaginary with zeros when the simulator holds only real data.
func (c *Channel) VectorComplex(name string) (real, imag []float64, err error) {
	real, imag, err = c.engine.VectorComplex(name)
	if err != nil {
		return nil, nil, fmt.Errorf("vector %q: %w", name, err)
	}
	if len(real) == 0 {
		return nil, nil, fmt.Errorf("vector %q is empty or missing", name)
	}
	if len(imag) == 0 {
		imag = make([]float64, len(real))
	}
	return real, imag, nil
}

// Magnitude reduces paired real/imaginary samples to magnitudes.
func Magnitude(real, imag []float64) []float64 {
	out := make([]float64, len(real))
	for i := range real {
		out[i] = math.Sqrt(real[i]*real[i] + imag[i]*imag[i])
	}
	return out
}

// Scalar evaluates expr via the simulator's `let` command and reads the
// resulting singleton vector.
func (c *Channel) Scalar(expr string) (float64, error) {
	const tempVec = "circuitopt_scalar_tmp"
	if err := c.Command(fmt.Sprintf("let %s = %s", tempVec, expr)); err != nil {
		return 0, err
	}
	v, err := c.Vector(tempVec)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// CurrentPlot, AllPlots, AllVecs are introspection pass-throughs.
func (c *Channel) CurrentPlot() string          { return c.engine.CurrentPlot() }
func (c *Channel) AllPlots() []string           { return c.engine.AllPlots() }
func (c *Channel) AllVecs(plot string) []string { return c.engine.AllVecs(plot) }

// Running reports whether a simulation is in progress.
func (c *Channel) Running() bool { return c.engine.Running() }

// SetBreakpoint schedules a breakpoint at simulation time t.
func (c *Channel) SetBreakpoint(t float64) error { return c.engine.SetBreakpoint(t) }

// ParseTrailingFloat parses the first whitespace-delimited token after the
// first '=' in line as a float64. Used by the metric extractor, kept here
// since it operates on the same textual convention as Scalar/print output.
func ParseTrailingFloat(line string) (float64, bool) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[eq+1:])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
