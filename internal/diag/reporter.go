package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Level represents the severity of a diagnostic.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
	Help    Level = "help"
)

// Diagnostic is a structured error or warning pointing into source text.
type Diagnostic struct {
	Level    Level
	Code     string
	Message  string
	Position Position
	Length   int
	Notes    []string
	HelpText string
}

// Render formats d against the source text it points into, in the compact
// compiler style: a file:line:col header, the offending source line, and a
// caret underline, followed by any notes and help.
//
//	bad.scn:2:13: error[E0001]: unknown source parameter "missing"
//	    constraint bad_ref on w: w + 1
//	                ^^^
//	note: declare it with a parameter statement first
func Render(source string, d Diagnostic) string {
	var b strings.Builder

	label := string(d.Level)
	if d.Code != "" {
		label += "[" + d.Code + "]"
	}
	fmt.Fprintf(&b, "%s:%d:%d: %s: %s\n",
		d.Position.Filename, d.Position.Line, d.Position.Column,
		levelColor(d.Level)(label), d.Message)

	lines := strings.Split(source, "\n")
	if d.Position.Line >= 1 && d.Position.Line <= len(lines) {
		line := lines[d.Position.Line-1]
		fmt.Fprintf(&b, "    %s\n", line)
		fmt.Fprintf(&b, "    %s%s\n",
			caretPadding(line, d.Position.Column),
			levelColor(d.Level)(strings.Repeat("^", max(d.Length, 1))))
	}

	noteLabel := color.New(color.FgBlue).SprintFunc()
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "%s %s\n", noteLabel("note:"), n)
	}
	if d.HelpText != "" {
		helpLabel := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(&b, "%s %s\n", helpLabel("help:"), d.HelpText)
	}

	return b.String()
}

// caretPadding aligns the caret under column, preserving any tabs the
// source line uses so the marker lands where the terminal renders the text.
func caretPadding(line string, column int) string {
	var pad strings.Builder
	for i := 0; i < column-1 && i < len(line); i++ {
		if line[i] == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	for i := len(line); i < column-1; i++ {
		pad.WriteByte(' ')
	}
	return pad.String()
}

func levelColor(level Level) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}
