package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/tidwall/pretty"
	"golang.org/x/term"

	"github.com/dshills/stoutlist/internal/batch"
	"github.com/dshills/stoutlist/internal/logging"
	"github.com/dshills/stoutlist/internal/script"
	"github.com/dshills/stoutlist/internal/stout"
	"github.com/dshills/stoutlist/internal/viewer"
	"github.com/dshills/stoutlist/internal/watch"
)

// subFlags returns a flag set for a command that reports errors to stderr.
func subFlags(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func cmdRun(ctx context.Context, e *env, args []string) int {
	fs := subFlags(e, "run")
	asJSON := fs.Bool("json", false, "Write the report as JSON")
	strict := fs.Bool("strict", false, "Exit with status 1 if any operation fails")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(e.stderr, "Usage: stoutlist run [-json] [-strict] PLAN\n")
		return 2
	}

	failed, err := runPlan(ctx, e, fs.Arg(0), *asJSON)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}
	if *strict && failed > 0 {
		return 1
	}
	return 0
}

// runPlan loads and replays the plan at path and writes its report.
// It returns the number of failed operations.
func runPlan(ctx context.Context, e *env, path string, asJSON bool) (int, error) {
	p, err := batch.Load(path)
	if err != nil {
		return 0, err
	}
	rep, err := batch.NewRunner(e.cfg.List.Capacity, e.log).Run(ctx, p)
	if err != nil {
		return 0, err
	}

	if asJSON {
		doc, err := rep.JSON()
		if err != nil {
			return 0, err
		}
		if _, err := e.stdout.Write(pretty.Pretty(doc)); err != nil {
			return 0, err
		}
	} else if _, err := rep.WriteTo(e.stdout); err != nil {
		return 0, err
	}
	return len(rep.Failed()), nil
}

func cmdLua(ctx context.Context, e *env, args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(e.stderr, "Usage: stoutlist lua SCRIPT\n")
		return 2
	}
	if err := runLua(ctx, e, args[0]); err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runLua runs the script at path in a fresh engine.
func runLua(ctx context.Context, e *env, path string) error {
	eng, err := script.NewEngine(
		script.WithCapacity(e.cfg.List.Capacity),
		script.WithTimeout(time.Duration(e.cfg.Script.Timeout)),
		script.WithCallStackSize(e.cfg.Script.CallStackSize),
		script.WithOutput(e.stdout),
		script.WithLogger(e.log),
	)
	if err != nil {
		return err
	}
	defer eng.Close()
	return eng.RunFile(ctx, path)
}

func cmdView(ctx context.Context, e *env, args []string) int {
	fs := subFlags(e, "view")
	planPath := fs.String("plan", "", "Start from the capacity and values of a plan file")
	logPath := fs.String("log", "", "Write log lines to this file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(e.stderr, "Error: view needs a terminal\n")
		return 1
	}

	capacity, values := e.cfg.List.Capacity, fs.Args()
	if *planPath != "" {
		p, err := batch.Load(*planPath)
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return 1
		}
		if p.Capacity != 0 {
			capacity = p.Capacity
		}
		values = append(p.Values, values...)
	}

	list, err := stout.NewOrdered(stout.WithCapacity[string](capacity))
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}
	for _, v := range values {
		if err := list.Add(v); err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return 1
		}
	}

	// The screen owns the terminal; log lines go to a file or nowhere.
	log := logging.Nop()
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		log = e.cfg.Logger(f)
	}

	theme, err := viewer.ThemeByName(e.cfg.Viewer.Theme)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(e.stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}

	v := viewer.New(screen, list, viewer.WithTheme(theme), viewer.WithLogger(log))
	err = v.Run(ctx)
	screen.Fini()
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintln(e.stdout, list.Render())
	return 0
}

func cmdWatch(ctx context.Context, e *env, args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(e.stderr, "Usage: stoutlist watch FILE\n")
		return 2
	}
	path := args[0]

	var fn watch.Func
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		fn = func(ctx context.Context, path string) error {
			return runLua(ctx, e, path)
		}
	case ".yaml", ".yml", ".toml":
		fn = func(ctx context.Context, path string) error {
			_, err := runPlan(ctx, e, path, false)
			return err
		}
	default:
		fmt.Fprintf(e.stderr, "Error: %s: watch expects a .lua, .yaml or .toml file\n", path)
		return 2
	}

	w, err := watch.New(path,
		watch.WithLogger(e.log),
		watch.WithErrorHandler(func(err error) {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
		}),
	)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}

	runs := 0
	err = w.Run(ctx, func(ctx context.Context, path string) error {
		runs++
		fmt.Fprintf(e.stdout, "== run %d at %s ==\n", runs, time.Now().Format(time.TimeOnly))
		return fn(ctx, path)
	})
	// Interrupts and deadlines end a watch normally.
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
