// Package loader reads and writes the textual stack-bytecode grammar
// (spec.md §3) to and from disk, so a program compiled once can be saved,
// inspected, and reloaded into the vm package without recompiling from
// source.
package loader

import (
	"fmt"
	"os"
	"strings"
)

var validOpcodes = map[string]bool{
	"PUSH": true, "LOAD": true, "STORE": true,
	"ADD": true, "SUB": true, "MUL": true, "DIV": true,
	"EQ": true, "NEQ": true, "LT": true, "GT": true, "LE": true, "GE": true,
	"PRINT": true, "SHOUT": true, "WHISPER": true, "LAUGH": true, "MURMUR": true,
	"PANIC": true, "PAUSE": true, "SLEEP": true,
	"INPUT": true, "JMP": true, "JZ": true, "LABEL": true,
}

// Load reads a bytecode image from path and validates it.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-supplied bytecode file path
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return Parse(data)
}

// Parse validates and returns the bytecode instruction list encoded in
// data, one instruction per non-blank line.
func Parse(data []byte) ([]string, error) {
	var program []string
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		program = append(program, line)
	}

	if err := Validate(program); err != nil {
		return nil, err
	}
	return program, nil
}

// Save writes program to path, one instruction per line.
func Save(path string, program []string) error {
	var sb strings.Builder
	for _, line := range program {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return nil
}

// Validate checks that every instruction has a recognized opcode and that
// every JMP/JZ target is defined by some LABEL in the same program.
func Validate(program []string) error {
	labels := make(map[string]bool)
	for _, line := range program {
		if name, ok := labelName(line); ok {
			labels[name] = true
		}
	}

	for i, line := range program {
		opcode, rest := splitOpcode(line)
		if !validOpcodes[opcode] {
			return &Error{Line: i + 1, Message: fmt.Sprintf("unrecognized opcode %q", opcode)}
		}
		if opcode == "JMP" && !labels[rest] {
			return &Error{Line: i + 1, Message: fmt.Sprintf("JMP targets undefined label %q", rest)}
		}
		if opcode == "JZ" && !labels[rest] {
			return &Error{Line: i + 1, Message: fmt.Sprintf("JZ targets undefined label %q", rest)}
		}
	}
	return nil
}

func labelName(line string) (string, bool) {
	opcode, rest := splitOpcode(line)
	if opcode != "LABEL" {
		return "", false
	}
	return rest, true
}

func splitOpcode(line string) (opcode, rest string) {
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return line, ""
	}
	return line[:i], line[i+1:]
}

func splitLast(s string) (before, after string, ok bool) {
	i := strings.LastIndex(s, " ")
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
