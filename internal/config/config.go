package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dshills/zing/internal/config/loader"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "ZING_"

// Config holds the merged settings of all layers.
// It is safe for concurrent use.
type Config struct {
	mu sync.RWMutex

	// data is the merged file and environment layers; defaults are
	// applied by the section accessors.
	data map[string]any

	// Source file, if one was loaded.
	path string

	// Options
	fs        loader.FileSystem
	envPrefix string
	environ   func() []string

	// configErrors stores type mismatches found while reading settings.
	configErrors map[string]error
}

// Option configures a Config instance.
type Option func(*Config)

// WithFileSystem sets the file system config files are read from.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithEnviron replaces the environment source, os.Environ by default.
func WithEnviron(environ func() []string) Option {
	return func(c *Config) {
		c.environ = environ
	}
}

// New creates a Config holding only the built-in defaults.
func New(opts ...Option) *Config {
	c := &Config{
		data:         make(map[string]any),
		fs:           loader.DefaultFS(),
		envPrefix:    DefaultEnvPrefix,
		environ:      os.Environ,
		configErrors: make(map[string]error),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the config file at path (TOML or YAML by extension), applies
// environment overrides and validates the result. An empty path or a
// missing file leaves the defaults in place.
func Load(path string, opts ...Option) (*Config, error) {
	c := New(opts...)

	if path != "" {
		path = expandHome(path)
		l, err := loader.ForPath(c.fs, path)
		if err != nil {
			return nil, err
		}
		data, err := l.Load()
		if err != nil {
			return nil, err
		}
		if data != nil {
			c.path = path
			c.data = loader.DeepMerge(c.data, data)
		}
	}

	if c.envPrefix != "" {
		env := loader.NewEnvLoader(c.envPrefix)
		env.SetEnviron(c.environ)
		data, err := env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		c.data = loader.DeepMerge(c.data, data)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultPath returns the user config file location,
// $XDG_CONFIG_HOME/zing/config.toml or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "zing", "config.toml")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Path returns the loaded config file path, or "" if none was found.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Get returns the raw value at a dotted path from the file and
// environment layers. Defaults are not included.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Lookup(c.data, path)
}

// Set stores a value at a dotted path, overriding every layer.
func (c *Config) Set(path string, value any) error {
	if path == "" || strings.Contains(path, "..") {
		return fmt.Errorf("%w: %q", ErrSettingNotFound, path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = loader.DeepMerge(c.data, nestedValue(path, value))
	delete(c.configErrors, path)
	return nil
}

func nestedValue(path string, value any) map[string]any {
	parts := strings.Split(path, ".")
	root := map[string]any{parts[len(parts)-1]: value}
	for i := len(parts) - 2; i >= 0; i-- {
		root = map[string]any{parts[i]: root}
	}
	return root
}

// Validate checks every setting against its allowed range. Type
// mismatches are reported too. The result joins one error per problem.
func (c *Config) Validate() error {
	editor := c.Editor()
	buf := c.Buffer()
	logging := c.Logging()

	var errs []error
	check := func(ok bool, path, msg string, value any) {
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
		}
	}

	check(editor.Theme == ThemeDark || editor.Theme == ThemeLight,
		"editor.theme", "must be \"dark\" or \"light\"", editor.Theme)
	check(editor.FontSize >= MinFontSize && editor.FontSize <= MaxFontSize,
		"editor.fontSize", fmt.Sprintf("must be between %g and %g", MinFontSize, MaxFontSize), editor.FontSize)
	check(editor.LineSpacing > 0 && editor.LineSpacing <= 4,
		"editor.lineSpacing", "must be in (0, 4]", editor.LineSpacing)
	check(editor.TabSize >= 1 && editor.TabSize <= 16,
		"editor.tabSize", "must be between 1 and 16", editor.TabSize)
	check(buf.MaxUndoEntries >= 0,
		"buffer.maxUndoEntries", "must not be negative", buf.MaxUndoEntries)
	check(buf.ReloadDebounce >= 0,
		"buffer.reloadDebounce", "must not be negative", buf.ReloadDebounce)
	check(validLogLevel(logging.Level),
		"logging.level", "must be one of debug, info, warn, error", logging.Level)

	for _, err := range c.ConfigErrors() {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// ConfigErrors returns the type mismatches recorded while reading
// settings, sorted by path.
func (c *Config) ConfigErrors() []error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	paths := make([]string, 0, len(c.configErrors))
	for p := range c.configErrors {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	errs := make([]error, len(paths))
	for i, p := range paths {
		errs[i] = c.configErrors[p]
	}
	return errs
}

func (c *Config) recordConfigError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configErrors[path] = err
}

// lookup returns the raw value at path.
func (c *Config) lookup(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Lookup(c.data, path)
}

func (c *Config) getStringOr(path string, defaultValue string) string {
	val, ok := c.lookup(path)
	if !ok {
		return defaultValue
	}
	s, ok := val.(string)
	if !ok {
		c.recordConfigError(path, &TypeError{Path: path, Expected: "string", Actual: typeName(val)})
		return defaultValue
	}
	return s
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	val, ok := c.lookup(path)
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	}
	c.recordConfigError(path, &TypeError{Path: path, Expected: "int", Actual: typeName(val)})
	return defaultValue
}

func (c *Config) getFloatOr(path string, defaultValue float64) float64 {
	val, ok := c.lookup(path)
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	c.recordConfigError(path, &TypeError{Path: path, Expected: "float64", Actual: typeName(val)})
	return defaultValue
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	val, ok := c.lookup(path)
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case bool:
		return v
	case int64:
		if v == 0 || v == 1 {
			return v == 1
		}
	case int:
		if v == 0 || v == 1 {
			return v == 1
		}
	}
	c.recordConfigError(path, &TypeError{Path: path, Expected: "bool", Actual: typeName(val)})
	return defaultValue
}

// getDurationOr accepts a duration, a duration string such as "250ms",
// or an integer number of milliseconds.
func (c *Config) getDurationOr(path string, defaultValue time.Duration) time.Duration {
	val, ok := c.lookup(path)
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	}
	c.recordConfigError(path, &TypeError{Path: path, Expected: "duration", Actual: typeName(val)})
	return defaultValue
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
