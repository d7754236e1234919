package simchannel

import (
	"fmt"
	"strings"
)

// FakeEngine is an in-memory Engine used by tests and by the CLI's dry
// run; it is not a simulator, only a test double honoring the Engine
// contract. It answers `run` by echoing deterministic `<name>_val = <n>`
// print lines, mimicking the real simulator's measurement-output
// convention closely enough to exercise the metric extractor end to end.
type FakeEngine struct {
	onPrint func(string)
	circuit []string
	plot    string
	vectors map[string][]float64

	// Responses maps a measurement/metric name (lowercase) to the value
	// FakeEngine should "measure" for it when Run is invoked via Command.
	Responses map[string]float64
}

// NewFakeEngine returns a FakeEngine with an empty response table.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{vectors: make(map[string][]float64), Responses: make(map[string]float64)}
}

// OnPrint registers the print callback Channel uses to capture output.
func (f *FakeEngine) OnPrint(fn func(string)) { f.onPrint = fn }

func (f *FakeEngine) print(line string) {
	if f.onPrint != nil {
		f.onPrint(line)
	}
}

// Command interprets a handful of commands well enough for tests: `run`
// emits one `<metric>_val = <value>` print line per configured response;
// everything else is accepted silently.
func (f *FakeEngine) Command(text string) error {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "run":
			for metric, v := range f.Responses {
				f.print(fmt.Sprintf("%s_val = %v", metric, v))
			}
		case strings.HasPrefix(trimmed, "let "):
			// let <name> = <expr>: defines <name> as a single zero sample;
			// the expression is not evaluated.
			parts := strings.SplitN(trimmed[len("let "):], "=", 2)
			if len(parts) == 2 {
				name := strings.TrimSpace(parts[0])
				f.vectors[name] = []float64{0}
			}
		}
	}
	return nil
}

func (f *FakeEngine) LoadCircuit(lines []string) error {
	f.circuit = lines
	return nil
}

func (f *FakeEngine) AlterComponent(ref string, value float64) error       { return nil }
func (f *FakeEngine) AlterParameter(ref, attr string, value float64) error { return nil }

func (f *FakeEngine) Vector(name string) ([]float64, error) {
	v, ok := f.vectors[name]
	if !ok {
		return nil, fmt.Errorf("no such vector %q", name)
	}
	return v, nil
}

func (f *FakeEngine) VectorComplex(name string) ([]float64, []float64, error) {
	v, err := f.Vector(name)
	if err != nil {
		return nil, nil, err
	}
	return v, nil, nil
}

func (f *FakeEngine) Running() bool                 { return false }
func (f *FakeEngine) SetBreakpoint(t float64) error { return nil }
func (f *FakeEngine) CurrentPlot() string           { return f.plot }
func (f *FakeEngine) AllPlots() []string            { return []string{f.plot} }
func (f *FakeEngine) AllVecs(plot string) []string {
	names := make([]string, 0, len(f.vectors))
	for n := range f.vectors {
		names = append(names, n)
	}
	return names
}
