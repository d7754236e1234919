// Package circuit implements the circuit problem: it parameterizes a
// netlist, drives a simulator channel through update/measure cycles,
// extracts scalar metrics, computes a weighted cost, and projects candidate
// parameter vectors onto the feasible set.
package circuit

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"circuitopt/internal/model"
	"circuitopt/internal/netlist"
	"circuitopt/internal/simchannel"
)

// Problem wraps a circuit optimization instance as a cost function plus a
// constraint projection, the contract the solvers consume.
type Problem struct {
	params []model.Parameter
	names  []string

	constraints []constraintRecord
	tests       []model.Test
	targets     []model.Target

	channel  *simchannel.Channel
	gridSize float64

	tempNetlistPath string

	cache constraintCache

	Verbose bool
}

// Options configures Problem construction.
type Options struct {
	GridSize float64 // fabrication grid size in the same units as Parameter.Value; 0 disables rounding.
	Verbose  bool
}

// New constructs a Problem: it resolves constraint indices, merges tests
// sharing (environment, analysis) signatures, parameterizes the supplied
// netlist, writes it to a uniquely named temp file, and sources that file
// into the channel.
func New(params []model.Parameter, cs []model.ParameterConstraint, tests []model.Test, targets []model.Target, netlistLines []string, channel *simchannel.Channel, opts Options) (*Problem, error) {
	names := make([]string, len(params))
	index := make(map[string]int, len(params))
	for i, p := range params {
		names[i] = p.Name
		index[p.Name] = i
	}

	records := make([]constraintRecord, 0, len(cs))
	for _, c := range cs {
		targetIdx, ok := index[c.TargetParam]
		if !ok {
			return nil, fmt.Errorf("constraint target %q is not a known parameter", c.TargetParam)
		}
		if c.Compiled == nil {
			return nil, fmt.Errorf("constraint on %q has not been validated/compiled", c.TargetParam)
		}
		srcIdx := make([]int, len(c.SourceParams))
		for i, s := range c.SourceParams {
			idx, ok := index[s]
			if !ok {
				return nil, fmt.Errorf("constraint source %q is not a known parameter", s)
			}
			srcIdx[i] = idx
		}
		records = append(records, constraintRecord{
			targetIdx:    targetIdx,
			sourceIdx:    srcIdx,
			relationship: c.Relationship,
			compiled:     c.Compiled,
		})
	}

	merged, err := MergeTestsByEnvironment(tests)
	if err != nil {
		return nil, err
	}

	p := &Problem{
		params:      append([]model.Parameter(nil), params...),
		names:       names,
		constraints: records,
		tests:       merged,
		targets:     targets,
		channel:     channel,
		gridSize:    opts.GridSize,
		Verbose:     opts.Verbose,
	}

	parameterized := netlist.Parameterize(netlistLines, params)
	f, err := os.CreateTemp("", fmt.Sprintf("ngspice_opt_%d_*.spice", os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp netlist: %w", err)
	}
	p.tempNetlistPath = f.Name()
	for _, line := range parameterized {
		if _, err := fmt.Fprintln(f, line); err != nil {
			f.Close()
			_ = p.Close()
			return nil, fmt.Errorf("failed to write temp netlist: %w", err)
		}
	}
	f.Close()

	if err := channel.Command("source " + p.tempNetlistPath); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to source circuit: %w", err)
	}

	return p, nil
}

// Close removes the temporary netlist file. It is safe to call multiple
// times.
func (p *Problem) Close() error {
	if p.tempNetlistPath == "" {
		return nil
	}
	path := p.tempNetlistPath
	p.tempNetlistPath = ""
	return os.Remove(path)
}

// NumParams reports the number of tunable parameters.
func (p *Problem) NumParams() int { return len(p.params) }

// InitialParams returns the initial parameter values.
func (p *Problem) InitialParams() []float64 {
	out := make([]float64, len(p.params))
	for i, pa := range p.params {
		out[i] = pa.Value
	}
	return out
}

// Bounds returns the per-parameter (min, max) bounds.
func (p *Problem) Bounds() []model.Parameter {
	return p.params
}

// Targets returns the performance targets this problem optimizes against.
func (p *Problem) Targets() []model.Target { return p.targets }

// ParamNames returns parameter names in index order.
func (p *Problem) ParamNames() []string { return p.names }

// ApplyConstraints projects params onto the feasible set (bounds, declared
// constraints, fabrication grid) in place.
func (p *Problem) ApplyConstraints(params []float64) error {
	return applyConstraints(params, p.params, p.constraints, &p.cache, p.gridSize)
}

// UpdateParameters clears the output buffer, issues an alterparam command
// per parameter, then resets and reruns the loaded circuit.
func (p *Problem) UpdateParameters(values []float64) error {
	p.channel.ClearOutput()
	for i, v := range values {
		name := strings.ToLower(p.names[i])
		if err := p.channel.Command(fmt.Sprintf("alterparam %s = %s", name, formatFloat(v))); err != nil {
			return err
		}
	}
	if err := p.channel.Command("reset"); err != nil {
		return err
	}
	return p.channel.Command("run")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ExecuteMeasurements runs, for each merged test, its environment bindings
// followed by its analysis directive (interactive form, leading '.'
// stripped) and its measurement lines.
func (p *Problem) ExecuteMeasurements() error {
	for _, t := range p.tests {
		for _, env := range t.Environment {
			cmd := environmentCommand(env)
			if err := p.channel.Command(cmd); err != nil {
				return err
			}
		}

		if err := p.channel.Command("reset"); err != nil {
			return err
		}

		analysisLine, ok := findAnalysisDirective(t.SpiceCode)
		if !ok {
			return fmt.Errorf("merged test %q has no analysis directive", t.Name)
		}
		// The interactive form of the directive (leading '.' stripped) both
		// selects and runs the analysis.
		if err := p.channel.Command(strings.TrimPrefix(analysisLine, ".")); err != nil {
			return err
		}

		for _, line := range strings.Split(t.SpiceCode, "\n") {
			if isMeasurementLine(line, analysisLine) {
				if err := p.channel.Command(strings.TrimSpace(line)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func environmentCommand(env model.Environment) string {
	lower := strings.ToLower(env.Name)
	if lower == "temp" || lower == "temperature" {
		return fmt.Sprintf("set temp = %s", env.Value)
	}
	return fmt.Sprintf("alterparam %s = %s", env.Name, env.Value)
}

// ExtractMetrics scans captured output once and returns, per target (same
// order as Targets()), the value after the first '=' of the last line that
// contains '=', "_val" and the lowercase metric name (three separate
// substring checks, not the adjacent `<metric>_val`), or the target's
// penalty value when no such line was found.
func (p *Problem) ExtractMetrics() []float64 {
	lines := p.channel.Output()
	values := make([]float64, len(p.targets))
	found := make([]bool, len(p.targets))

	for _, line := range lines {
		if !strings.Contains(line, "=") {
			continue
		}
		lower := strings.ToLower(line)
		for i, t := range p.targets {
			metric := strings.ToLower(t.Metric)
			if strings.Contains(lower, metric) && strings.Contains(lower, "_val") {
				if v, ok := simchannel.ParseTrailingFloat(line); ok {
					values[i] = v
					found[i] = true
				}
			}
		}
	}

	for i, t := range p.targets {
		if !found[i] {
			values[i] = t.Penalty()
		}
	}
	return values
}

// Cost runs a full update/measure/extract cycle and returns the weighted
// sum of per-target errors.
func (p *Problem) Cost(params []float64) (float64, error) {
	if err := p.UpdateParameters(params); err != nil {
		return 0, err
	}
	if err := p.ExecuteMeasurements(); err != nil {
		return 0, err
	}

	achieved := p.ExtractMetrics()
	var cost float64
	for i, t := range p.targets {
		cost += t.Weight * t.Error(achieved[i])
	}
	return cost, nil
}
