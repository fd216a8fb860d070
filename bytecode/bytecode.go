// Package bytecode translates the textual three-address code produced by
// package tac into the stack-bytecode instruction list described in
// spec.md §3, ready for the vm package to execute.
package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Error is a CodegenError: a malformed TAC operand. Per spec.md §7 this
// should be unreachable from a well-formed AST; it exists to surface a
// malformed bytecode/textual-TAC input (e.g. one loaded from disk) rather
// than panic.
type Error struct {
	Line    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("codegen error: %s (line %q)", e.Message, e.Line)
}

var binaryOps = map[string]bool{
	"ADD": true, "SUB": true, "MUL": true, "DIV": true,
	"EQ": true, "NEQ": true, "LT": true, "GT": true, "LE": true, "GE": true,
}

var printMnemonics = map[string]bool{
	"PRINT": true, "SHOUT": true, "WHISPER": true, "LAUGH": true, "MURMUR": true,
}

// generator accumulates the bytecode instruction list for one Generate
// call.
type generator struct {
	instructions []string
}

func (g *generator) emit(format string, args ...interface{}) {
	g.instructions = append(g.instructions, fmt.Sprintf(format, args...))
}

// emitOperand pushes an operand onto the stack: a digit-only literal and
// a quoted string literal both become PUSH; anything else is an
// identifier load.
func (g *generator) emitOperand(operand string) {
	if isDigits(operand) {
		g.emit("PUSH %s", operand)
		return
	}
	if strings.HasPrefix(operand, `"`) && strings.HasSuffix(operand, `"`) && len(operand) >= 2 {
		g.emit("PUSH %s", operand)
		return
	}
	// An operand containing a space but no digits would need re-quoting
	// here; the tac generator always quotes string operands, so this
	// path is unreachable in practice (spec.md §4.5).
	if strings.Contains(operand, " ") {
		g.emit("PUSH %q", operand)
		return
	}
	g.emit("LOAD %s", operand)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Generate translates a TAC instruction list into stack bytecode. It is
// the `code_generate` entry point from spec.md §6.
func Generate(tac []string) ([]string, error) {
	g := &generator{}
	for _, line := range tac {
		if err := g.process(line); err != nil {
			return nil, err
		}
	}
	return g.instructions, nil
}

func (g *generator) process(line string) error {
	fields := strings.SplitN(line, " ", 2)
	if len(fields) == 0 || fields[0] == "" {
		return nil
	}
	mnemonic := fields[0]
	rest := ""
	if len(fields) == 2 {
		rest = fields[1]
	}

	switch {
	case printMnemonics[mnemonic]:
		g.emitOperand(rest)
		g.emit(mnemonic)
		return nil
	case mnemonic == "PANIC":
		g.emit("PANIC %s", rest)
		return nil
	case mnemonic == "PAUSE", mnemonic == "SLEEP":
		g.emit(mnemonic)
		return nil
	case mnemonic == "INPUT":
		g.emit("INPUT %s", rest)
		return nil
	case mnemonic == "LABEL", mnemonic == "JMP":
		g.emit("%s %s", mnemonic, rest)
		return nil
	case mnemonic == "JZ":
		operand, label, ok := splitLast(rest)
		if !ok {
			return &Error{Line: line, Message: "malformed JZ instruction"}
		}
		g.emitOperand(operand)
		g.emit("JZ %s", label)
		return nil
	default:
		return g.processAssignment(line)
	}
}

// processAssignment handles `<var> = <operand>` and
// `<var> = <a> <OP> <b>` TAC lines.
func (g *generator) processAssignment(line string) error {
	target, expr, ok := splitOnce(line, " = ")
	if !ok {
		return &Error{Line: line, Message: "not a recognized TAC instruction"}
	}

	for op := range binaryOps {
		if a, b, ok := splitOnOp(expr, op); ok {
			g.emitOperand(a)
			g.emitOperand(b)
			g.emit(op)
			g.emit("STORE %s", target)
			return nil
		}
	}

	g.emitOperand(expr)
	g.emit("STORE %s", target)
	return nil
}

// splitOnce splits s on the first occurrence of sep.
func splitOnce(s, sep string) (before, after string, ok bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+len(sep):], true
}

// splitOnOp splits "a OP b" on " OP " (surrounded by spaces, so e.g. the
// identifier "ADDER" never matches the ADD mnemonic).
func splitOnOp(expr, op string) (a, b string, ok bool) {
	return splitOnce(expr, " "+op+" ")
}

// splitLast splits "operand label" on the final space, so a quoted
// string operand containing spaces stays intact.
func splitLast(s string) (operand, label string, ok bool) {
	i := strings.LastIndex(s, " ")
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// Unquote strips the surrounding quotes from a quoted-string bytecode
// operand, if present. Shared with the vm package, which needs the same
// logic for PANIC messages and PUSH string literals.
func Unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err == nil {
			return unq
		}
		return s[1 : len(s)-1]
	}
	return s
}
