package highlight

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/glint/internal/compiler"
	"github.com/dshills/glint/internal/grammar"
	"github.com/dshills/glint/internal/logging"
	"github.com/dshills/glint/internal/regex"
)

// LanguageFn builds a language definition.
type LanguageFn func() (*grammar.Language, error)

// Static returns a LanguageFn producing def.
func Static(def *grammar.Language) LanguageFn {
	return func() (*grammar.Language, error) { return def, nil }
}

// entry is one registered language. The definition is a private copy; it
// is compiled once, on first use.
type entry struct {
	name string
	def  *grammar.Language

	once     sync.Once
	compiled *compiler.Language
	err      error
}

// Highlighter holds registered languages, options and plugins.
type Highlighter struct {
	mu        sync.RWMutex
	languages map[string]*entry
	aliases   map[string]string
	options   Options
	plugins   []registeredPlugin
	patterns  map[string]*regex.Regexp

	deprecations *Deprecations
}

// New returns a Highlighter with no languages.
func New(opts ...Option) *Highlighter {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
	return &Highlighter{
		languages:    make(map[string]*entry),
		aliases:      make(map[string]string),
		options:      o,
		patterns:     make(map[string]*regex.Regexp),
		deprecations: NewDeprecations(o.Logger),
	}
}

// Configure changes options.
func (h *Highlighter) Configure(opts ...Option) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, opt := range opts {
		opt(&h.options)
	}
	if h.options.Logger == nil {
		h.options.Logger = logging.Default()
	}
	h.deprecations.SetLogger(h.options.Logger)
}

// Options returns a copy of the current options.
func (h *Highlighter) Options() Options {
	h.mu.RLock()
	defer h.mu.RUnlock()
	o := h.options
	o.Languages = append([]string(nil), o.Languages...)
	return o
}

func (h *Highlighter) logger() *logging.Logger {
	return h.Options().Logger.WithComponent("highlight")
}

// Deprecations returns the one-shot deprecation warning registry.
func (h *Highlighter) Deprecations() *Deprecations {
	return h.deprecations
}

// plaintextLanguage stands in for a language whose factory failed.
func plaintextLanguage(name string) *grammar.Language {
	return &grammar.Language{Name: name, DisableAutodetect: true}
}

// RegisterLanguage registers a language under name. The name and the
// definition's aliases are matched case-insensitively.
//
// If fn fails, safe mode logs the error and registers a plain-text
// language under the name instead; debug mode returns the error.
func (h *Highlighter) RegisterLanguage(name string, fn LanguageFn) error {
	key := strings.ToLower(name)
	def, err := fn()
	if err == nil && def == nil {
		err = fmt.Errorf("language %q: factory returned no definition", name)
	}
	if err != nil {
		if !h.Options().SafeMode {
			return fmt.Errorf("registering language %q: %w", name, err)
		}
		h.logger().WithError(err).Error("Language definition for '%s' could not be registered.", name)
		def = plaintextLanguage(name)
	}

	def = def.Clone()
	if def.Name == "" {
		def.Name = name
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.languages[key]; ok {
		return fmt.Errorf("%w: %q", ErrLanguageExists, name)
	}
	h.languages[key] = &entry{name: key, def: def}
	for _, alias := range def.Aliases {
		h.aliases[strings.ToLower(alias)] = key
	}
	return nil
}

// UnregisterLanguage removes a language and the aliases pointing at it.
func (h *Highlighter) UnregisterLanguage(name string) {
	key := strings.ToLower(name)
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.languages, key)
	for alias, target := range h.aliases {
		if target == key {
			delete(h.aliases, alias)
		}
	}
}

// RegisterAliases makes every alias refer to languageName.
func (h *Highlighter) RegisterAliases(aliases []string, languageName string) {
	key := strings.ToLower(languageName)
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, alias := range aliases {
		h.aliases[strings.ToLower(alias)] = key
	}
}

// ListLanguages returns the registered names, sorted.
func (h *Highlighter) ListLanguages() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.languages))
	for name := range h.languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Highlighter) lookup(name string) (*entry, bool) {
	key := strings.ToLower(name)
	h.mu.RLock()
	defer h.mu.RUnlock()
	if e, ok := h.languages[key]; ok {
		return e, true
	}
	if target, ok := h.aliases[key]; ok {
		e, ok := h.languages[target]
		return e, ok
	}
	return nil, false
}

// GetLanguage returns a copy of the definition registered under name or
// one of its aliases.
func (h *Highlighter) GetLanguage(name string) (*grammar.Language, bool) {
	e, ok := h.lookup(name)
	if !ok {
		return nil, false
	}
	return e.def.Clone(), true
}

// AutoDetection reports whether the language takes part in auto-detection.
func (h *Highlighter) AutoDetection(name string) bool {
	e, ok := h.lookup(name)
	return ok && !e.def.DisableAutodetect
}

// compiled returns the compiled form of a language, compiling it on first
// use.
func (h *Highlighter) compiled(e *entry) (*compiler.Language, error) {
	e.once.Do(func() {
		e.compiled, e.err = compiler.Compile(e.def, compiler.Options{
			Deprecated: func(feature, msg string) {
				h.deprecations.Warn(feature, msg)
			},
		})
	})
	return e.compiled, e.err
}

// Compile compiles the named language now instead of on first use.
func (h *Highlighter) Compile(name string) error {
	e, ok := h.lookup(name)
	if !ok {
		return unknownLanguage(name)
	}
	_, err := h.compiled(e)
	return err
}

// pattern compiles a case-insensitive option pattern, caching the result.
func (h *Highlighter) pattern(src string) (*regex.Regexp, error) {
	h.mu.RLock()
	re, ok := h.patterns[src]
	h.mu.RUnlock()
	if ok {
		return re, nil
	}
	re, err := regex.Compile(src, regex.Flags{CaseInsensitive: true})
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.patterns[src] = re
	h.mu.Unlock()
	return re, nil
}
