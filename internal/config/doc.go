// Package config loads glint's settings.
//
// Settings come from three sources, later ones overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  4. Overrides (flags)       │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment (GLINT_*)   │
//	├─────────────────────────────┤
//	│  2. Config file (TOML)      │  ← --config, includes resolved
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sections
//
//	[highlight]  classPrefix, ignoreUnescapedHTML, throwUnescapedHTML,
//	             languages, safeMode, maxIterations, iterationRatio,
//	             noHighlightPattern, languageDetectPattern
//	[grammars]   dirs, watch, debounce
//	[plugins]    lua, timeout
//	[logging]    level
//	[theme]      name, scopes (scope = "color [bold] [italic] [underline]")
//
// # Sub-packages
//
//   - loader: TOML and environment loading, deep merge
//   - watcher: fsnotify-based change notification
//
// # Basic Usage
//
//	cfg := config.New(config.WithFile("glint.toml"))
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	h := highlight.New(cfg.Highlight().Options()...)
//
// Section accessors return snapshots. Values of the wrong type fall back
// to the default and are reported by ConfigErrors.
package config
