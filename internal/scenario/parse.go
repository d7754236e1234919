// Package scenario parses the declarative scenario text format into the
// optimizer's data model. A scenario file parses directly into
// Parameter/ParameterConstraint/Target/Test slices; there is no separate
// AST or semantic-analysis stage, since a scenario is data, not a program.
package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"circuitopt/internal/exprvm"
	"circuitopt/internal/model"
)

var parser = participle.MustBuild[Program](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment", "SpiceWhitespace"),
)

// Scenario is the parsed, model-ready content of a scenario file.
type Scenario struct {
	Parameters  []model.Parameter
	Constraints []model.ParameterConstraint
	Targets     []model.Target
	Tests       []model.Test
}

// Parse parses source (the named file's text, used only for error messages)
// into a Scenario.
func Parse(filename, source string) (Scenario, error) {
	program, err := parser.ParseString(filename, source)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario parse error: %w", err)
	}

	var out Scenario
	for _, stmt := range program.Statements {
		switch {
		case stmt.Parameter != nil:
			p := stmt.Parameter
			out.Parameters = append(out.Parameters, model.Parameter{
				Name: p.Name, Value: p.Value, Min: p.Min, Max: p.Max,
			})

		case stmt.Constraint != nil:
			c := stmt.Constraint
			rel, err := model.ParseRelationship(c.Relationship)
			if err != nil {
				return Scenario{}, fmt.Errorf("constraint on %q: %w", c.Target, err)
			}
			expr := strings.TrimSpace(c.Expr)
			out.Constraints = append(out.Constraints, model.ParameterConstraint{
				TargetParam:  c.Target,
				SourceParams: identifiersIn(expr),
				Expression:   expr,
				Relationship: rel,
			})

		case stmt.Target != nil:
			tg := stmt.Target
			mode, err := parseMode(tg.Mode)
			if err != nil {
				return Scenario{}, err
			}
			out.Targets = append(out.Targets, model.Target{
				Metric: tg.Metric, Value: tg.Value, Weight: tg.Weight, Mode: mode, Unit: tg.Unit,
			})

		case stmt.Test != nil:
			ts := stmt.Test
			env := make([]model.Environment, len(ts.Environment))
			for i, e := range ts.Environment {
				env[i] = model.Environment{Name: e.Name, Value: e.Value}
			}
			out.Tests = append(out.Tests, model.Test{
				Name:        ts.Name,
				SpiceCode:   strings.Join(ts.Lines, "\n"),
				Environment: env,
			})
		}
	}

	return out, nil
}

// ErrorPosition extracts the source position from an error returned by
// Parse, if it wraps a participle.Error, for caret-style diagnostics.
func ErrorPosition(err error) (lexer.Position, bool) {
	var pe participle.Error
	if errors.As(err, &pe) {
		return pe.Position(), true
	}
	return lexer.Position{}, false
}

// ErrorMessage extracts the underlying message from an error returned by
// Parse, stripped of participle's own position prefix.
func ErrorMessage(err error) string {
	var pe participle.Error
	if errors.As(err, &pe) {
		return pe.Message()
	}
	return err.Error()
}

func parseMode(s string) (model.TargetMode, error) {
	switch s {
	case "min":
		return model.ModeMin, nil
	case "max":
		return model.ModeMax, nil
	case "exact":
		return model.ModeExact, nil
	default:
		return 0, fmt.Errorf("unknown target mode %q", s)
	}
}

// identifiersIn extracts the source-parameter identifiers referenced by a
// constraint expression, in first-occurrence order, for exprvm.Compile's
// declared-parameter-order requirement. It tokenizes with the same lexer
// the expression compiler uses, so numeric literals with exponents
// ("2e-6") never shed a stray "e" identifier.
func identifiersIn(expr string) []string {
	var names []string
	seen := make(map[string]bool)

	lx := exprvm.NewLexer(expr)
	for {
		t := lx.Next()
		if t.Type == exprvm.TokenEOF {
			break
		}
		if t.Type == exprvm.TokenIdent && !seen[t.Literal] {
			seen[t.Literal] = true
			names = append(names, t.Literal)
		}
	}

	return names
}
