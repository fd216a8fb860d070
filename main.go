package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/hearthlang/hearth/api"
	"github.com/hearthlang/hearth/config"
	"github.com/hearthlang/hearth/debugger"
	"github.com/hearthlang/hearth/loader"
	"github.com/hearthlang/hearth/service"
	"github.com/hearthlang/hearth/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")

		runFile  = flag.String("run", "", "Source file to compile and run")
		loadFile = flag.String("load", "", "Precompiled bytecode file to load and run directly (skips source compilation)")
		saveFile = flag.String("save", "", "With -run, also save the compiled bytecode to this file (the program still runs)")

		showTAC      = flag.Bool("tac", false, "Print generated three-address code and exit")
		showBytecode = flag.Bool("bytecode", false, "Print generated bytecode and exit")

		debugMode = flag.Bool("debug", false, "Start in debugger mode (CLI)")
		tuiMode   = flag.Bool("tui", false, "Start in TUI debugger mode")

		apiServer = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort   = flag.Int("port", 8080, "API server port (used with -api-server)")

		traceMode = flag.Bool("trace", false, "Dump TAC, bytecode, and output to stderr while running, for teaching")

		configPath = flag.String("config", "", "Path to a TOML config file (default: platform config dir)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("hearth %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	if *loadFile != "" {
		runLoadedBytecode(*loadFile)
		return
	}

	if *runFile == "" {
		printHelp()
		os.Exit(0)
	}

	source, err := os.ReadFile(*runFile) // #nosec G304 -- user-specified source file path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", *runFile, err)
		os.Exit(1)
	}

	svc := service.NewService()
	if cfg.Execution.MaxSteps > 0 {
		svc.SetMaxSteps(cfg.Execution.MaxSteps)
	}

	compiled, err := svc.Compile(string(source), *runFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compile error:\n%v\n", err)
		os.Exit(1)
	}

	if *saveFile != "" {
		if err := loader.Save(*saveFile, compiled.Bytecode); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving bytecode: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Bytecode saved to %s\n", *saveFile)
	}

	if *showTAC {
		fmt.Println(strings.Join(compiled.TAC, "\n"))
		return
	}

	if *showBytecode {
		fmt.Println(strings.Join(compiled.Bytecode, "\n"))
		return
	}

	if *traceMode {
		fmt.Fprintln(os.Stderr, "=== TAC ===")
		fmt.Fprintln(os.Stderr, strings.Join(compiled.TAC, "\n"))
		fmt.Fprintln(os.Stderr, "=== Bytecode ===")
		fmt.Fprintln(os.Stderr, strings.Join(compiled.Bytecode, "\n"))
		fmt.Fprintln(os.Stderr, "=== Output ===")
	}

	if *debugMode || *tuiMode {
		runDebugger(compiled.Bytecode, *runFile, *tuiMode)
		return
	}

	runDirect(svc, compiled, *traceMode)
}

// loadConfig loads the TOML config from path, or from the default platform
// location when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// runAPIServer starts the HTTP+WebSocket API server and blocks until it is
// asked to shut down via Ctrl+C, SIGTERM, or its launching editor/IDE
// process dying out from under it.
func runAPIServer(port int) {
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	// A language-server-style API server is typically spawned by an editor
	// plugin; if that parent dies without signaling us (force-quit, crash),
	// this keeps the process from lingering as an orphan.
	monitor := api.NewProcessMonitor(performShutdown)
	monitor.Start()
	defer monitor.Stop()

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

// runLoadedBytecode loads a precompiled bytecode image from disk and
// executes it directly, bypassing the compiler entirely.
func runLoadedBytecode(path string) {
	program, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bytecode: %v\n", err)
		os.Exit(1)
	}

	machine := vm.New()
	machine.OutputWriter = os.Stdout

	inputs := readStdinInputs()
	if _, err := machine.Run(program, inputs); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
}

// runDebugger starts either the CLI or TUI step-debugger over compiled
// bytecode, depending on tui.
func runDebugger(program []string, sourceName string, tui bool) {
	machine := vm.New()
	machine.Load(program, nil)
	dbg := debugger.NewDebugger(machine, program)

	if tui {
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("hearth Debugger - Type 'help' for commands")
	fmt.Printf("Program loaded: %s\n", sourceName)
	fmt.Println()

	if err := debugger.RunCLI(dbg); err != nil {
		fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
		os.Exit(1)
	}
}

// runDirect runs an already-compiled program to completion, streaming output as
// it's produced rather than only at the end.
func runDirect(svc *service.Service, compiled *service.CompiledProgram, trace bool) {
	var out io.Writer = os.Stdout
	if trace {
		out = io.MultiWriter(os.Stdout, os.Stderr)
	}
	svc.SetOutputWriter(out)

	inputs := readStdinInputs()

	if _, err := svc.Run(context.Background(), compiled, inputs); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
}

// readStdinInputs reads every line available on stdin up front, to feed
// `listen` statements in the order they execute. A program with no
// `listen` statements never touches this; one with more listens than
// supplied lines fails with a missing-input runtime error.
func readStdinInputs() []string {
	stat, err := os.Stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		// No piped/redirected input waiting - don't block reading a
		// terminal that will never send EOF.
		return nil
	}

	var inputs []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		inputs = append(inputs, scanner.Text())
	}
	return inputs
}

func printHelp() {
	fmt.Printf(`hearth %s - a teaching programming language

Usage: hearth -run <file> [options]
       hearth -load <bytecode-file>
       hearth -api-server [-port N]

Options:
  -help              Show this help message
  -version           Show version information
  -run FILE          Compile and run FILE
  -load FILE         Load and run a precompiled bytecode file directly
  -save FILE         Save compiled bytecode to FILE (used with -run)
  -tac               Print generated three-address code and exit
  -bytecode          Print generated bytecode and exit
  -debug             Start in debugger mode (CLI)
  -tui               Start in TUI debugger mode
  -trace             Dump TAC, bytecode, and output to stderr, for teaching
  -api-server        Start HTTP API server mode
  -port N            API server port (default: 8080, used with -api-server)
  -config FILE       Path to a TOML config file (default: platform config dir)

Examples:
  # Run a program, reading any 'listen' input from stdin
  hearth -run examples/hello.hearth

  # Inspect what the compiler produces at each stage
  hearth -run examples/hello.hearth -tac
  hearth -run examples/hello.hearth -bytecode

  # Step through a program's bytecode interactively
  hearth -run examples/fib.hearth -debug
  hearth -run examples/fib.hearth -tui

  # Compile once, run many times without recompiling
  hearth -run examples/fib.hearth -save fib.hbc
  hearth -load fib.hbc

  # Start the API server for a browser/editor front end
  hearth -api-server -port 3000
`, Version)
}
