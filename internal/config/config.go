package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/glint/internal/config/loader"
	"github.com/dshills/glint/internal/config/watcher"
	"github.com/dshills/glint/internal/emitter"
	"github.com/dshills/glint/internal/highlight"
	"github.com/dshills/glint/internal/logging"
)

// Config holds the merged settings.
type Config struct {
	mu sync.RWMutex

	// Merged view of defaults, file, environment and overrides.
	data map[string]any

	// Values set with Set. They survive reloads.
	overrides map[string]any

	path    string
	fs      loader.FileSystem
	environ []string
	logger  *logging.Logger

	watcher  *watcher.Watcher
	handlers []func(*Config)

	// configErrors records type problems found by the section accessors.
	configErrors map[string]error
}

// Option configures a Config.
type Option func(*Config)

// WithFile sets the TOML file to load. Without it only defaults,
// environment and overrides apply.
func WithFile(path string) Option {
	return func(c *Config) { c.path = path }
}

// WithFileSystem reads the config file from fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(c *Config) { c.fs = fsys }
}

// WithEnviron reads GLINT_ variables from a fixed KEY=VALUE list instead
// of the process environment.
func WithEnviron(environ []string) Option {
	return func(c *Config) { c.environ = environ }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) { c.logger = l }
}

// New creates a Config holding only the defaults. Call Load to read the
// file and environment.
func New(opts ...Option) *Config {
	c := &Config{
		data:      defaultConfig(),
		overrides: make(map[string]any),
		fs:        loader.DefaultFS(),
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("config")
	return c
}

// Path returns the config file path, which may be empty.
func (c *Config) Path() string {
	return c.path
}

// Load reads every source and replaces the merged settings. A missing
// config file is not an error.
func (c *Config) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	merged := defaultConfig()

	fileData, err := loader.NewTOMLLoaderWithFS(c.fs, c.path).Load()
	if err != nil {
		return fmt.Errorf("loading %s: %w", c.path, err)
	}
	merged = loader.DeepMerge(merged, fileData)

	env := loader.NewEnvLoader(loader.Prefix)
	if c.environ != nil {
		env = loader.NewEnvLoaderFrom(loader.Prefix, c.environ)
	}
	envData, err := env.Load()
	if err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}
	merged = loader.DeepMerge(merged, envData)

	c.mu.Lock()
	merged = loader.DeepMerge(merged, loader.Clone(c.overrides))
	c.data = merged
	c.configErrors = nil
	c.mu.Unlock()

	if fileData == nil && c.path != "" {
		c.logger.Debug("config file %s not found, using defaults", c.path)
	}
	return nil
}

// OnReload registers fn to run after the watcher reloads the settings.
func (c *Config) OnReload(fn func(*Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
}

// Watch reloads the settings whenever the config file changes. It is a
// no-op without a config file.
func (c *Config) Watch(debounce time.Duration) error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		return nil
	}

	w, err := watcher.New(watcher.WithDebounce(debounce), watcher.WithLogger(c.logger))
	if err != nil {
		return err
	}
	if err := w.Watch(c.path); err != nil {
		_ = w.Close()
		return err
	}
	w.OnChange(c.handleFileChange)
	w.Start()
	c.watcher = w
	return nil
}

func (c *Config) handleFileChange(event watcher.Event) {
	if err := c.Load(context.Background()); err != nil {
		c.logger.WithError(err).Warn("reloading %s after %s", event.Path, event.Op)
		return
	}
	c.logger.Info("reloaded %s", event.Path)

	c.mu.RLock()
	handlers := append(([]func(*Config))(nil), c.handlers...)
	c.mu.RUnlock()
	for _, fn := range handlers {
		fn(c)
	}
}

// Close stops watching.
func (c *Config) Close() {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if w != nil {
		_ = w.Close()
	}
}

// Get returns the value at a dotted path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getPath(c.data, path)
}

// Set overrides the value at a dotted path. Overrides win over every
// other source and survive reloads.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := setPath(c.data, path, value); err != nil {
		return err
	}
	return setPath(c.overrides, path, value)
}

// Merged returns a copy of the merged settings.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.data)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Want: "string", Got: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Want: "int", Got: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Want: "bool", Got: typeName(v)}
	}
	return b, nil
}

// GetDuration returns a duration given as a string ("250ms") or as an
// integer number of milliseconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case int64:
		return time.Duration(val) * time.Millisecond, nil
	case int:
		return time.Duration(val) * time.Millisecond, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Want: "duration", Got: fmt.Sprintf("%q", val)}
		}
		return d, nil
	default:
		return 0, &TypeError{Path: path, Want: "duration", Got: typeName(v)}
	}
}

// GetStringSlice returns a string slice at the given path. A single
// string is split on commas.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	v, ok := c.Get(path)
	if !ok {
		return nil, ErrSettingNotFound
	}

	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...), nil
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Path: path, Want: "[]string", Got: typeName(v)}
			}
			result[i] = s
		}
		return result, nil
	case string:
		var result []string
		for _, s := range strings.Split(val, ",") {
			if s = strings.TrimSpace(s); s != "" {
				result = append(result, s)
			}
		}
		return result, nil
	default:
		return nil, &TypeError{Path: path, Want: "[]string", Got: typeName(v)}
	}
}

// GetStringMap returns a table of strings at the given path.
func (c *Config) GetStringMap(path string) (map[string]string, error) {
	v, ok := c.Get(path)
	if !ok {
		return nil, ErrSettingNotFound
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &TypeError{Path: path, Want: "map", Got: typeName(v)}
	}
	result := make(map[string]string, len(m))
	for k, item := range m {
		s, ok := item.(string)
		if !ok {
			return nil, &TypeError{Path: path + "." + k, Want: "string", Got: typeName(item)}
		}
		result[k] = s
	}
	return result, nil
}

// defaultConfig returns the built-in settings.
func defaultConfig() map[string]any {
	return map[string]any{
		"highlight": map[string]any{
			"classPrefix":           emitter.DefaultClassPrefix,
			"ignoreUnescapedHTML":   false,
			"throwUnescapedHTML":    false,
			"safeMode":              true,
			"maxIterations":         int64(highlight.DefaultMaxIterations),
			"iterationRatio":        int64(highlight.DefaultIterationRatio),
			"noHighlightPattern":    highlight.DefaultNoHighlightPattern,
			"languageDetectPattern": highlight.DefaultLanguageDetectPattern,
		},
		"grammars": map[string]any{
			"watch":    false,
			"debounce": "100ms",
		},
		"plugins": map[string]any{
			"timeout": "1s",
		},
		"logging": map[string]any{
			"level": "info",
		},
		"theme": map[string]any{
			"name": "default",
		},
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}

	current := any(m)
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrInvalidPath
	}

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s is not a table", ErrInvalidPath, part)
		}
		current = nextMap
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// splitPath splits a dot-separated path, dropping empty segments.
func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// isNotFound reports whether err only means the setting is absent.
func isNotFound(err error) bool {
	return errors.Is(err, ErrSettingNotFound)
}
