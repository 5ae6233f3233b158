package config

import (
	"time"

	"github.com/dshills/glint/internal/highlight"
	"github.com/dshills/glint/internal/logging"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration. Use Config.Set()
// to update configuration values.

// HighlightConfig holds the engine options.
type HighlightConfig struct {
	ClassPrefix           string
	IgnoreUnescapedHTML   bool
	ThrowUnescapedHTML    bool
	Languages             []string
	SafeMode              bool
	MaxIterations         int
	IterationRatio        int
	NoHighlightPattern    string
	LanguageDetectPattern string
}

// Options converts the section into highlighter options.
func (h HighlightConfig) Options() []highlight.Option {
	opts := []highlight.Option{
		highlight.WithClassPrefix(h.ClassPrefix),
		highlight.WithIgnoreUnescapedHTML(h.IgnoreUnescapedHTML),
		highlight.WithThrowUnescapedHTML(h.ThrowUnescapedHTML),
		highlight.WithSafeMode(h.SafeMode),
		highlight.WithIterationLimits(h.MaxIterations, h.IterationRatio),
		highlight.WithNoHighlightPattern(h.NoHighlightPattern),
		highlight.WithLanguageDetectPattern(h.LanguageDetectPattern),
	}
	if len(h.Languages) > 0 {
		opts = append(opts, highlight.WithLanguages(h.Languages...))
	}
	return opts
}

// GrammarsConfig lists grammar directories loaded in addition to the
// bundled grammars.
type GrammarsConfig struct {
	Dirs []string

	// Watch re-registers a language when its grammar file changes.
	Watch    bool
	Debounce time.Duration
}

// PluginsConfig lists Lua hook scripts.
type PluginsConfig struct {
	Lua []string

	// Timeout bounds a single hook call.
	Timeout time.Duration
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string
}

// LogLevel parses Level.
func (l LoggingConfig) LogLevel() logging.LogLevel {
	return logging.ParseLogLevel(l.Level)
}

// ThemeConfig selects terminal colors.
type ThemeConfig struct {
	Name string

	// Scopes maps a scope name to a style such as "blue bold".
	Scopes map[string]string
}

// Highlight returns the highlight section.
func (c *Config) Highlight() HighlightConfig {
	def := highlight.DefaultOptions()
	return HighlightConfig{
		ClassPrefix:           c.getStringOr("highlight.classPrefix", def.ClassPrefix),
		IgnoreUnescapedHTML:   c.getBoolOr("highlight.ignoreUnescapedHTML", def.IgnoreUnescapedHTML),
		ThrowUnescapedHTML:    c.getBoolOr("highlight.throwUnescapedHTML", def.ThrowUnescapedHTML),
		Languages:             c.getStringSliceOr("highlight.languages", nil),
		SafeMode:              c.getBoolOr("highlight.safeMode", def.SafeMode),
		MaxIterations:         c.getIntOr("highlight.maxIterations", def.MaxIterations),
		IterationRatio:        c.getIntOr("highlight.iterationRatio", def.IterationRatio),
		NoHighlightPattern:    c.getStringOr("highlight.noHighlightPattern", def.NoHighlightPattern),
		LanguageDetectPattern: c.getStringOr("highlight.languageDetectPattern", def.LanguageDetectPattern),
	}
}

// Grammars returns the grammars section.
func (c *Config) Grammars() GrammarsConfig {
	return GrammarsConfig{
		Dirs:     c.getStringSliceOr("grammars.dirs", nil),
		Watch:    c.getBoolOr("grammars.watch", false),
		Debounce: c.getDurationOr("grammars.debounce", 100*time.Millisecond),
	}
}

// Plugins returns the plugins section.
func (c *Config) Plugins() PluginsConfig {
	return PluginsConfig{
		Lua:     c.getStringSliceOr("plugins.lua", nil),
		Timeout: c.getDurationOr("plugins.timeout", time.Second),
	}
}

// Logging returns the logging section.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level: c.getStringOr("logging.level", "info"),
	}
}

// Theme returns the theme section.
func (c *Config) Theme() ThemeConfig {
	return ThemeConfig{
		Name:   c.getStringOr("theme.name", "default"),
		Scopes: c.getStringMapOr("theme.scopes"),
	}
}

// These methods only return the default for ErrSettingNotFound.
// Type errors also return the default but are recorded for ConfigErrors.

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		c.noteError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	v, err := c.GetInt(path)
	if err != nil {
		c.noteError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		c.noteError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getDurationOr(path string, defaultValue time.Duration) time.Duration {
	v, err := c.GetDuration(path)
	if err != nil {
		c.noteError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getStringSliceOr(path string, defaultValue []string) []string {
	v, err := c.GetStringSlice(path)
	if err != nil {
		c.noteError(path, err)
		return append([]string(nil), defaultValue...)
	}
	return v
}

func (c *Config) getStringMapOr(path string) map[string]string {
	v, err := c.GetStringMap(path)
	if err != nil {
		c.noteError(path, err)
		return map[string]string{}
	}
	return v
}

// noteError records the first problem seen for each path.
func (c *Config) noteError(path string, err error) {
	if isNotFound(err) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	if _, exists := c.configErrors[path]; !exists {
		c.configErrors[path] = err
	}
}

// ConfigErrors returns the type problems found since the last Load.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.configErrors == nil {
		return nil
	}
	result := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		result[k] = v
	}
	return result
}
