// Package grammar defines the declarative data model consumed by the
// highlighting engine.
//
// A Language is a root Mode plus naming and matching options. A Mode
// describes one lexical construct: how it begins and ends, which modes may
// appear inside it, which words are keywords while it is active and which
// scope the matched text receives.
//
// Definitions are plain values. The compiler never mutates them; a grammar
// that reuses one Mode in several places shares the pointer and gets one
// compiled node per use. A mode refers to itself through the Self child
// rather than through a pointer cycle.
//
// Grammars can be written in Go, usually starting from the constructors in
// common.go, or decoded from YAML with ParseYAML.
package grammar
