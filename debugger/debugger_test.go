package debugger

import (
	"testing"

	"github.com/hearthlang/hearth/vm"
)

func newTestDebugger() *Debugger {
	machine := vm.New()
	return NewDebugger(machine, []string{"PUSH 1", "PRINT", "SLEEP"})
}

func TestExecuteCommandBangBangRepeatsLastCommand(t *testing.T) {
	d := newTestDebugger()

	if err := d.ExecuteCommand("help"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.GetOutput()

	if err := d.ExecuteCommand("!!"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.LastCommand; got != "help" {
		t.Errorf("LastCommand = %q, want %q", got, "help")
	}
}

func TestExecuteCommandBangNRecallsNthHistoryEntry(t *testing.T) {
	d := newTestDebugger()

	_ = d.ExecuteCommand("help")
	d.GetOutput()
	_ = d.ExecuteCommand("list")
	d.GetOutput()

	if err := d.ExecuteCommand("!1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.LastCommand; got != "help" {
		t.Errorf("LastCommand = %q, want %q", got, "help")
	}
}

func TestExecuteCommandBangNOutOfRangeIsError(t *testing.T) {
	d := newTestDebugger()

	_ = d.ExecuteCommand("help")
	d.GetOutput()

	if err := d.ExecuteCommand("!5"); err == nil {
		t.Error("expected an error for an out-of-range history reference")
	}
}

func TestExecuteCommandBangBangWithNoHistoryIsError(t *testing.T) {
	d := newTestDebugger()

	if err := d.ExecuteCommand("!!"); err == nil {
		t.Error("expected an error when history is empty")
	}
}

func TestCmdHistoryListsEntries(t *testing.T) {
	d := newTestDebugger()

	_ = d.ExecuteCommand("help")
	d.GetOutput()
	_ = d.ExecuteCommand("list")
	output := d.GetOutput()
	_ = output

	if err := d.ExecuteCommand("history"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := d.GetOutput()
	if out == "" {
		t.Error("expected history output, got none")
	}
}

func TestCmdHistoryFiltersByPrefix(t *testing.T) {
	d := newTestDebugger()

	_ = d.ExecuteCommand("break 0")
	d.GetOutput()
	_ = d.ExecuteCommand("list")
	d.GetOutput()

	if err := d.ExecuteCommand("history break"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := d.GetOutput()
	if out == "" {
		t.Error("expected filtered history output, got none")
	}
}
