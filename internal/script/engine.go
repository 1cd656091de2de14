package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stoutlist/internal/logging"
	"github.com/dshills/stoutlist/internal/stout"
)

// Defaults for a new Engine.
const (
	DefaultTimeout = 5 * time.Second
)

// ErrEngineClosed is returned when running code on a closed Engine.
var ErrEngineClosed = errors.New("script engine is closed")

// Engine is a sandboxed Lua state with the stout module installed.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes Run calls.
type Engine struct {
	L *lua.LState

	mu       sync.Mutex
	id       string
	capacity int
	stack    int
	timeout  time.Duration
	output   io.Writer
	logger   *logging.Logger
	closed   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithCapacity sets the node capacity used by stout.new() without an argument.
func WithCapacity(n int) Option {
	return func(e *Engine) {
		e.capacity = n
	}
}

// WithCallStackSize bounds Lua call depth. Zero keeps the runtime default.
func WithCallStackSize(n int) Option {
	return func(e *Engine) {
		e.stack = n
	}
}

// WithTimeout bounds each Run call. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.output = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a sandboxed Lua state with the stout module installed.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		id:       uuid.New().String(),
		capacity: stout.DefaultCapacity,
		timeout:  DefaultTimeout,
		output:   os.Stdout,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if _, err := newList(e.capacity); err != nil {
		return nil, err
	}
	e.logger = e.logger.WithComponent("script").WithField("session", e.id)

	e.L = lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: e.stack,
	})
	openSafeLibraries(e.L)
	e.installPrint()
	registerList(e.L, e.capacity)
	registerIterator(e.L)

	e.logger.Debug("engine ready (capacity %d)", e.capacity)
	return e, nil
}

// ID returns the session id used in log lines.
func (e *Engine) ID() string {
	return e.id
}

// openSafeLibraries opens the libraries scripts may use and drops the
// loaders that reach the file system.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// installPrint replaces print so output goes to the engine's writer.
func (e *Engine) installPrint() {
	e.L.SetGlobal("print", e.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(e.output, strings.Join(parts, "\t"))
		return 0
	}))
}

// Run executes Lua source. name labels the chunk in error messages.
func (e *Engine) Run(ctx context.Context, name, code string) error {
	fn, err := e.compile(name, code)
	if err != nil {
		return err
	}
	return e.exec(ctx, name, fn)
}

// RunFile executes the Lua file at path.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script %s: %w", path, err)
	}
	return e.Run(ctx, path, string(data))
}

func (e *Engine) compile(name, code string) (*lua.LFunction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}
	fn, err := e.L.Load(strings.NewReader(code), name)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return fn, nil
}

func (e *Engine) exec(ctx context.Context, name string, fn *lua.LFunction) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic in %s: %v", name, r)
		}
	}()

	start := time.Now()
	e.L.Push(fn)
	defer e.L.SetTop(0)
	if err := e.L.PCall(0, lua.MultRet, nil); err != nil {
		e.logger.Warn("%s failed after %s: %v", name, time.Since(start), err)
		return fmt.Errorf("running %s: %w", name, err)
	}
	e.logger.Debug("%s finished in %s", name, time.Since(start))
	return nil
}

// Global returns a global Lua value, for tests and embedding.
func (e *Engine) Global(name string) lua.LValue {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.L.GetGlobal(name)
}

// Close releases the Lua state. It is safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.L.Close()
}
