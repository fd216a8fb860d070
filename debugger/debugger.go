package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hearthlang/hearth/vm"
)

// Debugger represents the debugger state and functionality, driving a
// vm.VM one bytecode instruction at a time via VM.Step instead of letting
// it run to completion.
type Debugger struct {
	VM      *vm.VM
	Program []string // bytecode lines, as passed to VM.Load/VM.Step

	// Breakpoint management
	Breakpoints *BreakpointManager

	// Watchpoint management
	Watchpoints *WatchpointManager

	// Command history
	History *CommandHistory

	// Expression evaluator
	Evaluator *ExpressionEvaluator

	// Execution control
	Running  bool
	StepMode StepMode

	// Last command (for repeat on empty input)
	LastCommand string

	// Output buffer
	Output strings.Builder
}

// StepMode represents different stepping modes. The language has no
// function calls, so there is no call-depth to step over or out of -
// single-stepping one bytecode instruction at a time is the only mode.
type StepMode int

const (
	StepNone   StepMode = iota // Not stepping; run freely until break/halt
	StepSingle                 // Step one bytecode instruction
)

// NewDebugger creates a new debugger instance for program, which must
// already have been loaded onto machine via machine.Load.
func NewDebugger(machine *vm.VM, program []string) *Debugger {
	return &Debugger{
		VM:          machine,
		Program:     program,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		Running:     false,
		StepMode:    StepNone,
	}
}

// ResolveLine resolves a breakpoint target to a bytecode line index: either
// a plain integer, or a label name matching a "LABEL <name>" instruction.
func (d *Debugger) ResolveLine(target string) (int, error) {
	if n, err := strconv.Atoi(target); err == nil {
		if n < 0 || n >= len(d.Program) {
			return 0, fmt.Errorf("line %d out of range (program has %d lines)", n, len(d.Program))
		}
		return n, nil
	}

	for i, line := range d.Program {
		opcode, rest, _ := strings.Cut(line, " ")
		if opcode == "LABEL" && rest == target {
			return i, nil
		}
	}

	return 0, fmt.Errorf("unknown label: %s", target)
}

// ExecuteCommand processes and executes a debugger command
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	// Empty command repeats last command (for step, next, etc.)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}

	expanded, err := d.expandHistoryReference(cmdLine)
	if err != nil {
		return err
	}
	cmdLine = expanded

	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	return d.handleCommand(cmd, args)
}

// expandHistoryReference rewrites a shell-style history reference to the
// command it names, the way an interactive debugger's readline does:
// "!!" repeats the last command, "!<n>" repeats the n'th (1-indexed)
// command in History. Anything else passes through unchanged.
func (d *Debugger) expandHistoryReference(cmdLine string) (string, error) {
	if !strings.HasPrefix(cmdLine, "!") || cmdLine == "!" {
		return cmdLine, nil
	}

	if cmdLine == "!!" {
		if last := d.History.GetLast(); last != "" {
			return last, nil
		}
		return "", fmt.Errorf("history: no commands yet")
	}

	n, err := strconv.Atoi(cmdLine[1:])
	if err != nil {
		return "", fmt.Errorf("history: unrecognized reference %q", cmdLine)
	}
	all := d.History.GetAll()
	if n < 1 || n > len(all) {
		return "", fmt.Errorf("history: no such command: %d", n)
	}
	return all[n-1], nil
}

// handleCommand dispatches commands to appropriate handlers
func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	// Execution control
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "next", "n":
		return d.cmdStep(args)

	// Breakpoints
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	// Watchpoints
	case "watch", "w":
		return d.cmdWatch(args)

	// Inspection
	case "print", "p":
		return d.cmdPrint(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "list", "l":
		return d.cmdList(args)

	// State modification
	case "set":
		return d.cmdSet(args)

	// Program control
	case "reset":
		return d.cmdReset(args)

	// History
	case "history":
		return d.cmdHistory(args)

	// Help
	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak checks if execution should pause at the current PC
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.VM.PC()

	if d.StepMode == StepSingle {
		d.StepMode = StepNone
		return true, "single step"
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}

		if bp.Condition != "" {
			result, err := d.Evaluator.Evaluate(bp.Condition, d.VM)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !result {
				return false, ""
			}
		}

		hit := d.Breakpoints.ProcessHit(pc)
		return true, fmt.Sprintf("breakpoint %d", hit.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Variable)
	}

	return false, ""
}

// GetOutput returns and clears the output buffer
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}
