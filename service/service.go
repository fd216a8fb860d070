// Package service provides a thread-safe façade over the compile and
// execute pipeline, shared by the CLI and the API server, modeled on the
// teacher's own DebuggerService. The step debugger drives a vm.VM directly
// instead.
package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/hearthlang/hearth/bytecode"
	"github.com/hearthlang/hearth/lexer"
	"github.com/hearthlang/hearth/parser"
	"github.com/hearthlang/hearth/semantic"
	"github.com/hearthlang/hearth/tac"
	"github.com/hearthlang/hearth/vm"
)

var serviceLog *log.Logger

func init() {
	if os.Getenv("HEARTH_DEBUG") != "" {
		// Note: file handle intentionally not closed - kept open for
		// process lifetime; the OS cleans up on exit.
		logPath := filepath.Join(os.TempDir(), "hearth-service-debug.log")
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			serviceLog = log.New(os.Stderr, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			serviceLog = log.New(f, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		serviceLog = log.New(io.Discard, "", 0)
	}
}

// CompiledProgram is the output of every pipeline stage up to and
// including bytecode generation, kept together so a caller can inspect
// the TAC or bytecode a source program produced without recompiling.
type CompiledProgram struct {
	Filename string
	TAC      []string
	Bytecode []string
}

// Service owns one VM and the most recently compiled program. It is safe
// for concurrent use; the API server's SessionManager holds one Service
// per session.
type Service struct {
	mu       sync.RWMutex
	vm       *vm.VM
	compiled *CompiledProgram
	state    ExecutionState

	stateChangedCallback func(ExecutionState)
}

// NewService creates a Service with a fresh VM, ready for Compile.
func NewService() *Service {
	return &Service{
		vm:    vm.New(),
		state: StateHalted,
	}
}

// SetOutputWriter wires w to receive every line the VM prints as it runs,
// in addition to the buffered result Run returns. The API server uses
// this to stream PRINT/SHOUT/... output over a session's EventWriter.
func (s *Service) SetOutputWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vm.OutputWriter = w
}

// SetMaxSteps bounds how many bytecode instructions Run will dispatch
// before giving up, overriding vm.DefaultMaxSteps. Wired from config by
// cmd/hearth at startup, so a teaching deployment can tighten or loosen the
// runaway-loop guard without recompiling.
func (s *Service) SetMaxSteps(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vm.MaxSteps = n
}

// SetStateChangedCallback registers a callback invoked whenever the
// Service's ExecutionState changes, letting a caller (the API session
// manager) broadcast state transitions without polling.
func (s *Service) SetStateChangedCallback(callback func(ExecutionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateChangedCallback = callback
}

func (s *Service) setState(state ExecutionState) {
	s.state = state
	if cb := s.stateChangedCallback; cb != nil {
		// Callers hold s.mu; release it while the callback runs so the
		// callback can read PC/Vars/Stack back through the Service.
		s.mu.Unlock()
		cb(state)
		s.mu.Lock()
	}
}

// GetExecutionState returns the Service's current state.
func (s *Service) GetExecutionState() ExecutionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Compile runs source through the lexer, parser, semantic analyzer, TAC
// generator, and bytecode generator, in order, returning the first error
// encountered at whichever stage it occurs.
func (s *Service) Compile(source, filename string) (*CompiledProgram, error) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		serviceLog.Printf("lex error: %v", err)
		return nil, fmt.Errorf("lex: %w", err)
	}

	program, err := parser.Parse(tokens)
	if err != nil {
		serviceLog.Printf("parse error: %v", err)
		return nil, fmt.Errorf("parse: %w", err)
	}

	if err := semantic.Analyze(program); err != nil {
		serviceLog.Printf("semantic error: %v", err)
		return nil, fmt.Errorf("semantic: %w", err)
	}

	tacLines := tac.Generate(program)

	bc, err := bytecode.Generate(tacLines)
	if err != nil {
		serviceLog.Printf("bytecode error: %v", err)
		return nil, fmt.Errorf("bytecode: %w", err)
	}

	compiled := &CompiledProgram{Filename: filename, TAC: tacLines, Bytecode: bc}

	s.mu.Lock()
	s.compiled = compiled
	s.mu.Unlock()

	return compiled, nil
}

// Run executes compiled to completion (or until ctx is canceled), feeding
// inputs to LISTEN statements in order. Cancellation makes Run return
// early, but the VM goroutine keeps going until it halts: a PAUSE
// mid-sleep or a loop already inside vm.VM.Run is not interrupted. The API
// server bounds each run request with runTimeout in api/handlers.go.
func (s *Service) Run(ctx context.Context, compiled *CompiledProgram, inputs []string) (string, error) {
	s.mu.Lock()
	s.setState(StateRunning)
	machine := s.vm
	s.mu.Unlock()

	type result struct {
		output string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		out, err := machine.Run(compiled.Bytecode, inputs)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		s.mu.Lock()
		s.setState(StateError)
		s.mu.Unlock()
		return "", ctx.Err()
	case res := <-done:
		s.mu.Lock()
		if res.err != nil {
			s.setState(StateError)
		} else {
			s.setState(StateHalted)
		}
		s.mu.Unlock()
		return res.output, res.err
	}
}

// LoadForStepping prepares the Service's VM to execute compiled one
// instruction at a time via Step, for callers that drive execution step
// by step.
func (s *Service) LoadForStepping(compiled *CompiledProgram, inputs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compiled = compiled
	s.vm.Load(compiled.Bytecode, inputs)
	s.setState(StateHalted)
}

// Step executes the next instruction of the program most recently passed
// to LoadForStepping.
func (s *Service) Step() (halted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.compiled == nil {
		return true, fmt.Errorf("service: no program loaded for stepping")
	}
	halted, err = s.vm.Step(s.compiled.Bytecode)
	if err != nil {
		s.setState(StateError)
	} else if halted {
		s.setState(StateHalted)
	} else {
		s.setState(StateRunning)
	}
	return halted, err
}

// PC returns the VM's current program counter.
func (s *Service) PC() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm.PC()
}

// Vars returns a snapshot of the VM's variable environment.
func (s *Service) Vars() map[string]vm.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm.Vars()
}

// Stack returns a snapshot of the VM's operand stack.
func (s *Service) Stack() []vm.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm.Stack()
}

// Output returns the output accumulated by the VM so far.
func (s *Service) Output() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vm.Output()
}

// Bytecode returns the most recently compiled program's bytecode, or nil
// if nothing has been compiled yet.
func (s *Service) Bytecode() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.compiled == nil {
		return nil
	}
	return s.compiled.Bytecode
}
