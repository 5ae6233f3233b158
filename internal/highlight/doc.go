// Package highlight is the highlighting engine: a registry of languages,
// the scan loop that runs a compiled grammar over text, auto-detection and
// the hooks around each call.
//
// A Highlighter is safe for concurrent use. Languages are registered as
// factories, stored as private copies and compiled on first use; the
// compiled form is shared by every later call. Each call owns its mode
// stack, scope tree and counters.
//
// All positions are rune offsets into the highlighted text.
package highlight
