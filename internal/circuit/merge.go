package circuit

import (
	"fmt"
	"sort"
	"strings"

	"circuitopt/internal/model"
)

var analysisDirectives = []string{".ac", ".dc", ".tran", ".op"}

func findAnalysisDirective(spiceCode string) (line string, ok bool) {
	for _, l := range strings.Split(spiceCode, "\n") {
		trimmed := strings.TrimSpace(l)
		lower := strings.ToLower(trimmed)
		for _, d := range analysisDirectives {
			if strings.HasPrefix(lower, d) {
				return trimmed, true
			}
		}
	}
	return "", false
}

func isMeasurementLine(line, analysisLine string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "*") {
		return false
	}
	if strings.HasPrefix(trimmed, ".") {
		return false
	}
	if strings.EqualFold(trimmed, "run") {
		return false
	}
	if trimmed == analysisLine {
		return false
	}
	return true
}

func substituteEnvironment(spiceCode string, env []model.Environment) string {
	out := spiceCode
	for _, e := range env {
		out = strings.ReplaceAll(out, "{"+e.Name+"}", e.Value)
	}
	return out
}

func environmentSignature(env []model.Environment) string {
	parts := make([]string, len(env))
	for i, e := range env {
		parts[i] = e.Name + "=" + e.Value
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

type mergedGroup struct {
	key          string
	analysisLine string
	members      []model.Test
}

// MergeTestsByEnvironment groups tests sharing (sorted environment
// bindings, analysis type) into single merged tests: the first member's
// analysis directive is kept and every member's measurement lines are
// concatenated. Environment placeholders are substituted into each test's
// spice_code before grouping.
func MergeTestsByEnvironment(tests []model.Test) ([]model.Test, error) {
	substituted := make([]model.Test, len(tests))
	for i, t := range tests {
		substituted[i] = t
		substituted[i].SpiceCode = substituteEnvironment(t.SpiceCode, t.Environment)
	}

	var order []string
	groups := make(map[string]*mergedGroup)

	for _, t := range substituted {
		analysisLine, ok := findAnalysisDirective(t.SpiceCode)
		if !ok {
			return nil, fmt.Errorf("test %q has no analysis directive", t.Name)
		}
		key := environmentSignature(t.Environment) + "|" + strings.ToLower(strings.Fields(analysisLine)[0])

		g, exists := groups[key]
		if !exists {
			g = &mergedGroup{key: key, analysisLine: analysisLine}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, t)
	}

	merged := make([]model.Test, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if len(g.members) == 1 {
			merged = append(merged, g.members[0])
			continue
		}

		names := make([]string, len(g.members))
		var measurements []string
		for i, m := range g.members {
			names[i] = m.Name
			for _, line := range strings.Split(m.SpiceCode, "\n") {
				if isMeasurementLine(line, g.analysisLine) {
					measurements = append(measurements, strings.TrimSpace(line))
				}
			}
		}

		spiceCode := g.analysisLine + "\n" + strings.Join(measurements, "\n")
		merged = append(merged, model.Test{
			Name:        strings.Join(names, "+"),
			SpiceCode:   spiceCode,
			Description: "Merged from: " + strings.Join(names, ", "),
			Environment: g.members[0].Environment,
		})
	}

	return merged, nil
}
