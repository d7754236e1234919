// SPDX-License-Identifier: Apache-2.0

// Package repl is an interactive console over the expression VM: type an
// arithmetic expression plus parameter bindings and see it compiled to
// bytecode and evaluated. Useful for debugging a constraint expression
// outside a full optimization run.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"circuitopt/internal/exprvm"
)

const PROMPT = ">> "

// Start runs the console loop against in until EOF, reading lines of the
// form "expr | name=value, name=value" and printing the compiled bytecode
// and evaluated result. A bare expression with no "|" is compiled with no
// parameters.
func Start(in io.Reader) {
	fmt.Println(`circuitopt expression console. Enter "expr | name=value, ...", or "quit" to exit.`)
	scanner := bufio.NewScanner(in)

	for {
		fmt.Print(PROMPT)
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		exprText, bindings, err := parseLine(line)
		if err != nil {
			fmt.Printf("error: %s\n", err)
			continue
		}

		names := make([]string, 0, len(bindings))
		for name := range bindings {
			names = append(names, name)
		}
		sort.Strings(names)

		compiled, err := exprvm.Compile(exprText, names)
		if err != nil {
			fmt.Printf("compile error: %s\n", err)
			continue
		}

		fmt.Printf("bytecode: %s\n", formatInstructions(compiled.Instructions()))

		values := make([]float64, len(names))
		for i, name := range names {
			values[i] = bindings[name]
		}

		result, err := compiled.Evaluate(values)
		if err != nil {
			fmt.Printf("eval error: %s\n", err)
			continue
		}
		fmt.Printf("= %g\n", result)
	}
}

// parseLine splits a console line into its expression text and parameter
// bindings. "a+b | a=1, b=2" yields ("a+b", {a:1, b:2}); an expression with
// no "|" yields an empty binding set.
func parseLine(line string) (string, map[string]float64, error) {
	exprText := line
	var bindingsText string
	if idx := strings.IndexByte(line, '|'); idx >= 0 {
		exprText = strings.TrimSpace(line[:idx])
		bindingsText = strings.TrimSpace(line[idx+1:])
	}

	bindings := make(map[string]float64)
	if bindingsText == "" {
		return exprText, bindings, nil
	}

	for _, pair := range strings.Split(bindingsText, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			return "", nil, fmt.Errorf("malformed binding %q, expected name=value", pair)
		}
		name := strings.TrimSpace(pair[:eq])
		valueText := strings.TrimSpace(pair[eq+1:])
		value, err := strconv.ParseFloat(valueText, 64)
		if err != nil {
			return "", nil, fmt.Errorf("malformed value in binding %q: %w", pair, err)
		}
		bindings[name] = value
	}

	return exprText, bindings, nil
}

func formatInstructions(instrs []exprvm.Instruction) string {
	parts := make([]string, len(instrs))
	for i, instr := range instrs {
		parts[i] = formatInstruction(instr)
	}
	return strings.Join(parts, " ")
}

func formatInstruction(instr exprvm.Instruction) string {
	switch instr.Op {
	case exprvm.OpLoadParam:
		return fmt.Sprintf("LoadParam(%d)", instr.Operand)
	case exprvm.OpLoadConst:
		return fmt.Sprintf("LoadConst(%d)", instr.Operand)
	case exprvm.OpAdd:
		return "Add"
	case exprvm.OpSub:
		return "Sub"
	case exprvm.OpMul:
		return "Mul"
	case exprvm.OpDiv:
		return "Div"
	case exprvm.OpPow:
		return "Pow"
	default:
		return "?"
	}
}
