// Package main is the entry point for the stoutlist tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/stoutlist/internal/config"
	"github.com/dshills/stoutlist/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// env is what every command needs.
type env struct {
	cfg    config.Config
	log    *logging.Logger
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, e *env, args []string) int
}

var commands = []command{
	{"run", "run [-json] [-strict] PLAN", "replay a YAML or TOML operation file", cmdRun},
	{"lua", "lua SCRIPT", "run a Lua script against the stout module", cmdLua},
	{"view", "view [-plan PLAN] [-log FILE] [VALUE...]", "browse a list in the terminal", cmdView},
	{"watch", "watch FILE", "re-run a plan or Lua script whenever it changes", cmdWatch},
	{"version", "version", "show version information", cmdVersion},
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stoutlist", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var configPath, logLevel string
	var capacity int
	fs.StringVar(&configPath, "config", "", "Path to configuration file (TOML or YAML)")
	fs.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.IntVar(&capacity, "capacity", 0, "Node capacity for new lists (positive, even)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "stoutlist - unrolled linked list workbench\n\n")
		fmt.Fprintf(stderr, "Usage: stoutlist [options] COMMAND [args...]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-42s %s\n", c.usage, c.summary)
		}
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if capacity != 0 {
		cfg.List.Capacity = capacity
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	e := &env{
		cfg:    cfg,
		log:    cfg.Logger(stderr),
		stdout: stdout,
		stderr: stderr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := fs.Arg(0)
	for _, c := range commands {
		if c.name == name {
			return c.run(ctx, e, fs.Args()[1:])
		}
	}
	fmt.Fprintf(stderr, "Error: unknown command %q\n", name)
	fs.Usage()
	return 2
}

func cmdVersion(_ context.Context, e *env, _ []string) int {
	fmt.Fprintf(e.stdout, "stoutlist %s\n", version)
	fmt.Fprintf(e.stdout, "Commit: %s\n", commit)
	fmt.Fprintf(e.stdout, "Built: %s\n", date)
	return 0
}
