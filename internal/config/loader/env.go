package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// Prefix starts every environment variable the loader reads.
const Prefix = "GLINT_"

// EnvLoader loads configuration from prefixed environment variables.
//
// Mapped variables go to their configured path. Any other prefixed
// variable maps by name: GLINT_HIGHLIGHT_MAX_ITERATIONS becomes
// highlight.maxIterations.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader reads the process environment.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: DefaultEnvMapping(),
		environ: os.Environ,
	}
}

// NewEnvLoaderFrom reads variables from a fixed KEY=VALUE list.
func NewEnvLoaderFrom(prefix string, environ []string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.environ = func() []string { return environ }
	return l
}

// DefaultEnvMapping returns the short variable names.
func DefaultEnvMapping() map[string]string {
	return map[string]string{
		"GLINT_LOG_LEVEL":    "logging.level",
		"GLINT_THEME":        "theme.name",
		"GLINT_CLASS_PREFIX": "highlight.classPrefix",
		"GLINT_LANGUAGES":    "highlight.languages",
		"GLINT_SAFE_MODE":    "highlight.safeMode",
		"GLINT_GRAMMARS":     "grammars.dirs",
		"GLINT_PLUGINS":      "plugins.lua",
	}
}

// AddMapping maps envVar to a configuration path.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// Load implements Loader. An empty value is a value, not unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, ParseValue(value))
	}
	return config, nil
}

// envToPath converts GLINT_SECTION_SOME_KEY to section.someKey. A name
// without a key part yields "".
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}
	var key strings.Builder
	for i, part := range parts[1:] {
		if part == "" {
			continue
		}
		part = strings.ToLower(part)
		if i > 0 {
			part = strings.ToUpper(part[:1]) + part[1:]
		}
		key.WriteString(part)
	}
	if key.Len() == 0 {
		return ""
	}
	return strings.ToLower(parts[0]) + "." + key.String()
}

// ParseValue converts an environment string to a bool, int64, float64,
// JSON array or object, or leaves it a string.
func ParseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}

// setByPath stores value at a dotted path, creating maps on the way.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
