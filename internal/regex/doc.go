// Package regex provides the regular expression layer of the highlighter.
//
// Grammar patterns are written in the ECMAScript dialect: they rely on
// lookahead, back-references, word boundaries and multiline anchors, none of
// which the standard library's RE2 engine supports. Patterns are therefore
// compiled with regexp2 in ECMAScript mode and matched against rune slices so
// that every position handed around the engine is a rune offset.
//
// The package also carries the small composition helpers grammars use to
// build pattern sources out of fragments (Concat, Lookahead, Either, ...)
// and Join, which merges several fragments into one alternation while
// renumbering their back-references.
package regex
