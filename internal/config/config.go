// Package config loads stoutlist settings from defaults, a TOML or YAML file
// and STOUT_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/stoutlist/internal/logging"
	"github.com/dshills/stoutlist/internal/stout"
)

// EnvPrefix is the prefix of recognized environment variables.
const EnvPrefix = "STOUT_"

// Errors returned by configuration loading.
var (
	// ErrUnsupportedFormat indicates a config file extension that is neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrValidationFailed indicates a setting with an unusable value.
	ErrValidationFailed = errors.New("validation failed")
)

// Config holds every stoutlist setting.
type Config struct {
	List   ListConfig   `toml:"list" yaml:"list"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	Script ScriptConfig `toml:"script" yaml:"script"`
	Viewer ViewerConfig `toml:"viewer" yaml:"viewer"`
}

// ListConfig configures new lists.
type ListConfig struct {
	// Capacity is the number of elements per node; positive and even.
	Capacity int `toml:"capacity" yaml:"capacity"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// ScriptConfig configures the Lua runtime.
type ScriptConfig struct {
	// CallStackSize bounds Lua call depth; zero uses the runtime default.
	CallStackSize int      `toml:"call_stack_size" yaml:"call_stack_size"`
	Timeout       Duration `toml:"timeout" yaml:"timeout"`
}

// ViewerConfig configures the terminal viewer.
type ViewerConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme" yaml:"theme"`
}

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		List: ListConfig{Capacity: stout.DefaultCapacity},
		Log:  LogConfig{Level: "info", Prefix: "stoutlist"},
		Script: ScriptConfig{
			CallStackSize: 256,
			Timeout:       Duration(5 * time.Second),
		},
		Viewer: ViewerConfig{Theme: "dark"},
	}
}

// Load returns the defaults overlaid with the file at path (if path is not
// empty) and then with the environment. A missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := Decode(path, data, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode unmarshals data into cfg, choosing the format from the extension of name.
// Fields absent from data keep their current values.
func Decode(name string, data []byte, cfg *Config) error {
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	if err != nil {
		return &ParseError{Path: name, Err: err}
	}
	return nil
}

// ApplyEnv overlays STOUT_CAPACITY, STOUT_LOG_LEVEL, STOUT_LOG_PREFIX,
// STOUT_SCRIPT_TIMEOUT, STOUT_SCRIPT_CALL_STACK_SIZE and STOUT_VIEWER_THEME.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "CAPACITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Path: "list.capacity", Message: fmt.Sprintf("%q is not an integer", v)}
		}
		c.List.Capacity = n
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_PREFIX"); ok {
		c.Log.Prefix = v
	}
	if v, ok := lookup(EnvPrefix + "SCRIPT_TIMEOUT"); ok {
		if err := c.Script.Timeout.UnmarshalText([]byte(v)); err != nil {
			return &ValidationError{Path: "script.timeout", Message: err.Error()}
		}
	}
	if v, ok := lookup(EnvPrefix + "SCRIPT_CALL_STACK_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Path: "script.call_stack_size", Message: fmt.Sprintf("%q is not an integer", v)}
		}
		c.Script.CallStackSize = n
	}
	if v, ok := lookup(EnvPrefix + "VIEWER_THEME"); ok {
		c.Viewer.Theme = v
	}
	return nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.List.Capacity <= 0 || c.List.Capacity%2 != 0 {
		return &ValidationError{Path: "list.capacity", Message: fmt.Sprintf("%d must be positive and even", c.List.Capacity)}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log.level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	if c.Script.CallStackSize < 0 {
		return &ValidationError{Path: "script.call_stack_size", Message: "must not be negative"}
	}
	if c.Script.Timeout < 0 {
		return &ValidationError{Path: "script.timeout", Message: "must not be negative"}
	}
	switch c.Viewer.Theme {
	case "dark", "light":
	default:
		return &ValidationError{Path: "viewer.theme", Message: fmt.Sprintf("unknown theme %q", c.Viewer.Theme)}
	}
	return nil
}

// Logger builds a logger writing to w from the log settings.
func (c Config) Logger(w io.Writer) *logging.Logger {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.Log.Level)
	lc.Prefix = c.Log.Prefix
	lc.Output = w
	return logging.New(lc)
}
