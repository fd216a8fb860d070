package debugger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI represents the text user interface for the debugger
type TUI struct {
	// Core components
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	// Layout containers
	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	// View panels
	SourceView      *tview.TextView
	VariablesView   *tview.TextView
	StackView       *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI creates a new text user interface driving the real terminal.
func NewTUI(debugger *Debugger) *TUI {
	tui := &TUI{
		Debugger: debugger,
		App:      tview.NewApplication(),
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

// NewTUIWithScreen creates a TUI bound to a pre-initialized screen, letting
// callers (tests) drive it against a tcell.SimulationScreen instead of the
// real terminal.
func NewTUIWithScreen(debugger *Debugger, screen tcell.Screen) *TUI {
	tui := NewTUI(debugger)
	tui.App.SetScreen(screen)
	return tui
}

// initializeViews creates all the view panels
func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Bytecode ")

	t.VariablesView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.VariablesView.SetBorder(true).SetTitle(" Variables ")

	t.StackView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
	t.CommandInput.SetInputCapture(t.handleCommandInputKey)
}

// handleCommandInputKey recalls command history on Up/Down, the way a
// shell readline does, before the event reaches tview's default field
// editing.
func (t *TUI) handleCommandInputKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		if cmd := t.Debugger.History.Previous(); cmd != "" {
			t.CommandInput.SetText(cmd)
		}
		return nil
	case tcell.KeyDown:
		t.CommandInput.SetText(t.Debugger.History.Next())
		return nil
	}
	return event
}

// buildLayout constructs the TUI layout
func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 1, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.VariablesView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

// setupKeyBindings sets up keyboard shortcuts
func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			go t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			go t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			go t.executeCommand("break")
			return nil
		case tcell.KeyF11:
			go t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

// handleCommand processes command input. It only reads the field and hands
// off to executeCommand in a goroutine - executeCommand may block running
// the VM to a breakpoint, and the tview event loop calling this must never
// be blocked waiting on it.
func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}

	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	t.CommandInput.SetText("")

	go t.executeCommand(cmd)
}

// executeCommand executes a debugger command and, if it leaves the
// debugger running, drives the VM until it stops - then redraws.
func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)

	if err == nil && t.Debugger.Running {
		t.runUntilStop()
	}

	output := t.Debugger.GetOutput()

	t.App.QueueUpdateDraw(func() {
		if err != nil {
			t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
		}
		if output != "" {
			t.WriteOutput(output)
		}
		t.refreshAllLocked()
	})
}

// runUntilStop drives the VM instruction by instruction until a breakpoint,
// watchpoint, step-mode stop, halt, or runtime error ends the run. It
// redraws periodically (every DisplayUpdateFrequency instructions) so a
// long free-running program doesn't leave the TUI looking frozen.
func (t *TUI) runUntilStop() {
	steps := 0
	for t.Debugger.Running {
		if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
			t.Debugger.Running = false
			t.Debugger.Printf("Stopped: %s at line %d\n", reason, t.Debugger.VM.PC())
			break
		}

		halted, err := t.Debugger.VM.Step(t.Debugger.Program)
		if err != nil {
			t.Debugger.Running = false
			t.Debugger.Printf("Runtime error: %v\n", err)
			break
		}
		if halted {
			t.Debugger.Running = false
			t.Debugger.Printf("Program halted.\n")
			break
		}

		steps++
		if steps%DisplayUpdateFrequency == 0 {
			t.App.QueueUpdateDraw(t.refreshAllLocked)
		}
	}
}

// WriteOutput writes to the output view
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text)) // Ignore write errors in TUI
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels and redraws the screen. Safe to call
// from the event-loop goroutine only; callers from other goroutines must go
// through App.QueueUpdateDraw.
func (t *TUI) RefreshAll() {
	t.refreshAllLocked()
	t.App.Draw()
}

// refreshAllLocked updates every panel's text without issuing its own draw,
// so it can be composed inside a QueueUpdateDraw callback (which draws once
// after the callback returns) without a redundant extra draw.
func (t *TUI) refreshAllLocked() {
	t.UpdateSourceView()
	t.UpdateVariablesView()
	t.UpdateStackView()
	t.UpdateBreakpointsView()
}

// UpdateSourceView updates the bytecode view, centered on the current PC
func (t *TUI) UpdateSourceView() {
	t.SourceView.Clear()

	program := t.Debugger.Program
	if len(program) == 0 {
		t.SourceView.SetText("[yellow]No program loaded[white]")
		return
	}

	pc := t.Debugger.VM.PC()
	start := pc - CodeContextLinesBeforeCompact
	if start < 0 {
		start = 0
	}
	end := pc + CodeContextLinesAfterCompact
	if end > len(program) {
		end = len(program)
	}

	var lines []string
	for i := start; i < end; i++ {
		marker := "  "
		color := "white"
		if i == pc {
			marker = "->"
			color = "yellow"
		}
		if t.Debugger.Breakpoints.GetBreakpoint(i) != nil {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("[%s]%s %4d: %s[white]", color, marker, i, program[i]))
	}

	t.SourceView.SetText(strings.Join(lines, "\n"))
}

// UpdateVariablesView updates the variables view
func (t *TUI) UpdateVariablesView() {
	t.VariablesView.Clear()

	vars := t.Debugger.VM.Vars()
	if len(vars) == 0 {
		t.VariablesView.SetText("[yellow]No variables[white]")
		return
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s = %v", name, vars[name]))
	}

	t.VariablesView.SetText(strings.Join(lines, "\n"))
}

// UpdateStackView updates the stack view
func (t *TUI) UpdateStackView() {
	t.StackView.Clear()

	stack := t.Debugger.VM.Stack()
	if len(stack) == 0 {
		t.StackView.SetText("[yellow]Stack is empty[white]")
		return
	}

	var lines []string
	for i := len(stack) - 1; i >= 0 && len(stack)-1-i < StackDisplayMaxValues; i-- {
		lines = append(lines, fmt.Sprintf("[%d] %v", len(stack)-1-i, stack[i]))
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView updates the breakpoints and watchpoints view
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status := "enabled"
			color := "green"
			if !bp.Enabled {
				status = "disabled"
				color = "red"
			}

			line := fmt.Sprintf("  %d: [%s]%s[white] line %d", bp.ID, color, status, bp.Line)
			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}
			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)

			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			lines = append(lines, fmt.Sprintf("  %d: watch %s = %v", wp.ID, wp.Variable, wp.LastValue))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]hearth Debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application
func (t *TUI) Stop() {
	t.App.Stop()
}
