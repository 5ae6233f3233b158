package highlight

import (
	"github.com/dshills/glint/internal/emitter"
	"github.com/dshills/glint/internal/logging"
)

// Default option values.
const (
	DefaultMaxIterations  = 100000
	DefaultIterationRatio = 3

	DefaultNoHighlightPattern    = `^(no-?highlight)$`
	DefaultLanguageDetectPattern = `\blang(?:uage)?-([\w-]+)\b`
)

// Options configures a Highlighter.
type Options struct {
	// ClassPrefix is prepended to every scope class in rendered markup.
	ClassPrefix string

	// IgnoreUnescapedHTML silences the warning HighlightBlock logs when a
	// block already contains markup.
	IgnoreUnescapedHTML bool

	// ThrowUnescapedHTML makes HighlightBlock fail on such blocks.
	ThrowUnescapedHTML bool

	// Languages restricts auto-detection when no candidates are given.
	Languages []string

	// SafeMode converts unexpected scan failures into plain-text results
	// and tolerates broken language factories. With it off, every failure
	// is returned to the caller.
	SafeMode bool

	// MaxIterations and IterationRatio bound the scan loop: a scan fails
	// once it has run more than MaxIterations iterations and more than
	// IterationRatio iterations per character consumed.
	MaxIterations  int
	IterationRatio int

	// NoHighlightPattern matches class names that disable highlighting of
	// a block. Case-insensitive.
	NoHighlightPattern string

	// LanguageDetectPattern extracts a language name from a block's class
	// attribute in its first group. Case-insensitive.
	LanguageDetectPattern string

	// Logger receives warnings and errors.
	Logger *logging.Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		ClassPrefix:           emitter.DefaultClassPrefix,
		SafeMode:              true,
		MaxIterations:         DefaultMaxIterations,
		IterationRatio:        DefaultIterationRatio,
		NoHighlightPattern:    DefaultNoHighlightPattern,
		LanguageDetectPattern: DefaultLanguageDetectPattern,
	}
}

// Option changes one setting.
type Option func(*Options)

// WithClassPrefix sets the class prefix.
func WithClassPrefix(prefix string) Option {
	return func(o *Options) { o.ClassPrefix = prefix }
}

// WithLanguages restricts the default auto-detection candidates.
func WithLanguages(names ...string) Option {
	return func(o *Options) { o.Languages = append([]string(nil), names...) }
}

// WithSafeMode switches safe mode on or off. Off is debug mode.
func WithSafeMode(on bool) Option {
	return func(o *Options) { o.SafeMode = on }
}

// WithIgnoreUnescapedHTML silences the unescaped markup warning.
func WithIgnoreUnescapedHTML(on bool) Option {
	return func(o *Options) { o.IgnoreUnescapedHTML = on }
}

// WithThrowUnescapedHTML makes unescaped markup an error.
func WithThrowUnescapedHTML(on bool) Option {
	return func(o *Options) { o.ThrowUnescapedHTML = on }
}

// WithIterationLimits sets the runaway guard thresholds.
func WithIterationLimits(max, ratio int) Option {
	return func(o *Options) {
		o.MaxIterations = max
		o.IterationRatio = ratio
	}
}

// WithNoHighlightPattern sets the pattern of classes that disable
// highlighting.
func WithNoHighlightPattern(pattern string) Option {
	return func(o *Options) { o.NoHighlightPattern = pattern }
}

// WithLanguageDetectPattern sets the pattern extracting a language from a
// class attribute.
func WithLanguageDetectPattern(pattern string) Option {
	return func(o *Options) { o.LanguageDetectPattern = pattern }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
