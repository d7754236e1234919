// Package netlist rewrites textual SPICE-like netlists to reference named
// optimization parameters via {param_name} placeholders.
package netlist

import (
	"fmt"
	"os"
	"strings"

	"circuitopt/internal/model"
)

// componentParam pairs an attribute key with the full parameter name that
// supplies its value.
type componentParam struct {
	attr string
	name string
}

// buildComponentParamMap groups parameters by component prefix
// (name[..rfind('_')]) with the attribute key being name[rfind('_')+1:].
func buildComponentParamMap(params []model.Parameter) map[string][]componentParam {
	out := make(map[string][]componentParam)
	for _, p := range params {
		idx := strings.LastIndexByte(p.Name, '_')
		if idx < 0 {
			continue
		}
		component := p.Name[:idx]
		attr := p.Name[idx+1:]
		out[component] = append(out[component], componentParam{attr: attr, name: p.Name})
	}
	return out
}

// parameterizeComponentLine replaces each `<attr>=<value>` occurrence on
// line with `<attr>={<param_name>}` for every (attr, param) pair in params.
func parameterizeComponentLine(line string, params []componentParam) string {
	modified := line
	for _, cp := range params {
		pattern := " " + cp.attr + "="
		pos := strings.Index(modified, pattern)
		if pos < 0 {
			continue
		}
		valStart := pos + len(pattern)
		remaining := modified[valStart:]
		valEnd := len(remaining)
		for i := 0; i < len(remaining); i++ {
			if remaining[i] == ' ' || remaining[i] == '\t' {
				valEnd = i
				break
			}
		}
		modified = modified[:pos+len(pattern)-1] + "=" + "{" + cp.name + "}" + modified[valStart+valEnd:]
	}
	return modified
}

// Parameterize rewrites netlist lines so every Parameter is declared via a
// `.param` directive and referenced from matching X*/M* component lines.
func Parameterize(lines []string, params []model.Parameter) []string {
	var result []string

	hasTitle := len(lines) > 0 && !strings.HasPrefix(strings.TrimSpace(lines[0]), ".")
	if hasTitle {
		result = append(result, lines[0])
	}

	result = append(result, "")
	result = append(result, "* === Optimization Parameters (Auto-generated) ===")
	for _, p := range params {
		result = append(result, fmt.Sprintf(".param %s = %v", p.Name, p.Value))
	}
	result = append(result, "* === End Parameters ===")
	result = append(result, "")

	componentParams := buildComponentParamMap(params)

	start := 0
	if hasTitle {
		start = 1
	}

	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, ".param") {
			continue
		}

		if strings.HasPrefix(trimmed, "X") || strings.HasPrefix(trimmed, "M") {
			fields := strings.Fields(trimmed)
			if len(fields) > 0 {
				if cps, ok := componentParams[fields[0]]; ok {
					result = append(result, parameterizeComponentLine(line, cps))
					continue
				}
			}
		}

		result = append(result, line)
	}

	if !hasEndDirective(result) {
		result = append(result, ".end")
	}

	return result
}

func hasEndDirective(lines []string) bool {
	for _, l := range lines {
		if strings.EqualFold(strings.TrimSpace(l), ".end") {
			return true
		}
	}
	return false
}

// LoadFile reads a netlist from disk, trims trailing whitespace from each
// line, and drops blank lines. It performs no further validation.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read netlist %s: %w", path, err)
	}

	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimRight(line, " \t\r")
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out, nil
}
