package debugger

import (
	"fmt"
	"strconv"
	"strings"
)

// Command handler implementations

// cmdRun starts or restarts program execution from the beginning.
func (d *Debugger) cmdRun(args []string) error {
	d.VM.Load(d.Program, nil)
	d.Running = true
	d.StepMode = StepNone

	d.Println("Starting program execution...")
	return nil
}

// cmdContinue continues execution from current point
func (d *Debugger) cmdContinue(args []string) error {
	d.Running = true
	d.StepMode = StepNone

	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single bytecode instruction. The language has no
// function calls, so there is no distinction between stepping into and
// stepping over - "step" and "next" are the same command.
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdBreak sets a breakpoint
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <line|label> [if <condition>]")
	}

	line, err := d.ResolveLine(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(line, false, condition)

	if condition != "" {
		d.Printf("Breakpoint %d at line %d (condition: %s)\n", bp.ID, line, condition)
	} else {
		d.Printf("Breakpoint %d at line %d\n", bp.ID, line)
	}

	return nil
}

// cmdTBreak sets a temporary breakpoint (auto-delete after hit)
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <line|label>")
	}

	line, err := d.ResolveLine(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(line, true, "")
	d.Printf("Temporary breakpoint %d at line %d\n", bp.ID, line)

	return nil
}

// cmdDelete deletes breakpoint(s)
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable enables a breakpoint
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

// cmdDisable disables a breakpoint
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint on a declared variable
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <variable>")
	}

	variable := args[0]
	wp := d.Watchpoints.AddWatchpoint(variable)

	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.VM); err != nil {
		d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}

	d.Printf("Watchpoint %d: %s\n", wp.ID, variable)
	return nil
}

// cmdPrint evaluates and prints an expression
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}

	expression := strings.Join(args, " ")
	result, err := d.Evaluator.EvaluateExpression(expression, d.VM)
	if err != nil {
		return err
	}

	d.Printf("$%d = %v\n", d.Evaluator.GetValueNumber(), result)
	return nil
}

// cmdInfo displays information about program state
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <variables|breakpoints|watchpoints|stack>")
	}

	switch strings.ToLower(args[0]) {
	case "variables", "vars", "v":
		return d.showVariables()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "stack", "s":
		return d.showStack()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

// showVariables displays all declared variables
func (d *Debugger) showVariables() error {
	vars := d.VM.Vars()
	if len(vars) == 0 {
		d.Println("No variables declared")
		return nil
	}

	d.Println("Variables:")
	for name, value := range vars {
		d.Printf("  %s = %v\n", name, value)
	}

	return nil
}

// showBreakpoints displays all breakpoints
func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}

	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}

		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}

		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}

		d.Printf("  %d: line %d %s%s%s (hit %d times)\n",
			bp.ID, bp.Line, status, temp, condition, bp.HitCount)
	}

	return nil
}

// showWatchpoints displays all watchpoints
func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}

	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}

		d.Printf("  %d: %s %s (hit %d times, last value: %v)\n",
			wp.ID, wp.Variable, status, wp.HitCount, wp.LastValue)
	}

	return nil
}

// showStack displays the operand stack, top first
func (d *Debugger) showStack() error {
	stack := d.VM.Stack()
	if len(stack) == 0 {
		d.Println("Stack is empty")
		return nil
	}

	d.Println("Stack (top first):")
	for i := len(stack) - 1; i >= 0; i-- {
		d.Printf("  [%d] %v\n", len(stack)-1-i, stack[i])
	}

	return nil
}

// cmdList shows bytecode lines around the current PC
func (d *Debugger) cmdList(args []string) error {
	pc := d.VM.PC()

	start := pc - 5
	if start < 0 {
		start = 0
	}
	end := pc + 10
	if end > len(d.Program) {
		end = len(d.Program)
	}

	for i := start; i < end; i++ {
		marker := "  "
		if i == pc {
			marker = "=>"
		}
		if d.Breakpoints.HasBreakpoint(i) {
			marker = "* "
		}
		d.Printf("%s %4d: %s\n", marker, i, d.Program[i])
	}

	return nil
}

// cmdSet assigns a value to a variable in the running VM
func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 || args[1] != "=" {
		return fmt.Errorf("usage: set <variable> = <expression>")
	}

	name := args[0]
	valueExpr := strings.Join(args[2:], " ")

	value, err := d.Evaluator.EvaluateExpression(valueExpr, d.VM)
	if err != nil {
		return err
	}

	d.VM.SetVar(name, value)
	d.Printf("%s set to %v\n", name, value)

	return nil
}

// cmdReset reloads the program from the beginning without running it
func (d *Debugger) cmdReset(args []string) error {
	d.VM.Load(d.Program, nil)
	d.Running = false
	d.StepMode = StepNone
	d.Println("VM reset")
	return nil
}

// cmdHistory lists recently executed commands, or those matching a
// prefix filter, numbered for use with "!<n>" recall.
func (d *Debugger) cmdHistory(args []string) error {
	all := d.History.GetAll()
	if len(args) > 0 {
		all = d.History.Search(args[0])
	}

	if len(all) == 0 {
		d.Println("No command history")
		return nil
	}

	for i, cmd := range all {
		d.Printf("  %d  %s\n", i+1, cmd)
	}

	return nil
}

// cmdHelp displays help information
func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("hearth Debugger Commands:")
	d.Println()
	d.Println("Execution Control:")
	d.Println("  run (r)           - Load and start program execution")
	d.Println("  continue (c)      - Continue execution")
	d.Println("  step (s, next, n) - Execute single instruction")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <line>  - Set breakpoint")
	d.Println("  tbreak (tb) <line>- Set temporary breakpoint")
	d.Println("  delete (d) [id]   - Delete breakpoint(s)")
	d.Println("  enable <id>       - Enable breakpoint")
	d.Println("  disable <id>      - Disable breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <var>   - Watch a variable for changes")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>  - Evaluate expression")
	d.Println("  info (i) <what>   - Show variables/breakpoints/watchpoints/stack")
	d.Println("  list (l)          - List bytecode around current PC")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <var> = <val> - Modify a variable")
	d.Println()
	d.Println("Control:")
	d.Println("  reset             - Reload program without running it")
	d.Println("  history [prefix]  - List command history, optionally filtered")
	d.Println("  !! / !<n>         - Repeat the last command, or the n'th from history")
	d.Println("  help (h, ?)       - Show this help")
	d.Println()
	d.Println("Type 'help <command>' for detailed help on a specific command.")

	return nil
}

// showCommandHelp shows detailed help for a specific command
func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break":   "break <line|label> [if <condition>]\n  Set a breakpoint at the specified bytecode line or label.\n  Optional condition is evaluated against variables each time it is hit.",
		"step":    "step\n  Execute a single bytecode instruction.",
		"watch":   "watch <variable>\n  Stop execution the next time variable's value changes.",
		"print":   "print <expression>\n  Evaluate and print an expression over the current variable environment.",
		"info":    "info <variables|breakpoints|watchpoints|stack>\n  Display information about program state.",
		"history": "history [prefix]\n  List command history, optionally filtered to commands starting with prefix.\n  Recall with \"!!\" (last command) or \"!<n>\" (the n'th command shown).",
	}

	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}

	return fmt.Errorf("no help available for command: %s", cmd)
}
