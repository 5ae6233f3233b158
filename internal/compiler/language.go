package compiler

import (
	"github.com/dshills/glint/internal/grammar"
	"github.com/dshills/glint/internal/matcher"
	"github.com/dshills/glint/internal/regex"
)

// ModeID indexes Language.Modes.
type ModeID int

// NoMode marks an absent mode reference.
const NoMode ModeID = -1

// Keyword is one entry of a compiled keyword table.
type Keyword struct {
	Category string
	Weight   int
}

// GroupScope scopes one group of a multi-fragment match. An empty Scope
// means the group text is scanned for keywords.
type GroupScope struct {
	Group int
	Scope string
}

// Scope describes how a begin or end lexeme is emitted.
type Scope struct {
	// Wrap scopes the whole lexeme.
	Wrap string
	// Groups is set for multi-fragment patterns, ordered by group.
	Groups []GroupScope
}

// IsZero reports whether the lexeme gets no dedicated scope.
func (s Scope) IsZero() bool {
	return s.Wrap == "" && s.Groups == nil
}

// Mode is a compiled grammar node. It is immutable.
type Mode struct {
	ID ModeID

	// Parent is the mode this node was compiled under, NoMode for the root.
	// A mode reused under several parents keeps its first parent.
	Parent ModeID

	// Path names the modes from the root to this one, for diagnostics.
	Path []string

	Scope      string
	BeginScope Scope
	EndScope   Scope

	// Begin is the source of the pattern that starts the mode.
	Begin string

	// EndRe matches the mode's own end, nil when the mode only ends with
	// its parent.
	EndRe *regex.Regexp

	// Terminator is the end pattern merged into the matcher: the mode's end
	// plus, for EndsWithParent, the parent's terminator.
	Terminator string

	Illegal string

	Keywords  map[string]Keyword
	KeywordRe *regex.Regexp

	Relevance int

	// Matcher holds the begin rules of the children (valued by child ID),
	// then the terminator, then the illegal pattern.
	Matcher *matcher.Set[ModeID]

	Starts ModeID

	SubLanguage *grammar.SubLanguage

	ExcludeBegin   bool
	ExcludeEnd     bool
	ReturnBegin    bool
	ReturnEnd      bool
	Skip           bool
	EndsParent     bool
	EndsWithParent bool

	// GuardDot ignores a begin match preceded by ".".
	GuardDot bool

	OnBegin grammar.MatchHook
	OnEnd   grammar.MatchHook
}

// Language is a compiled grammar. Modes[0] is the root. It is immutable
// and safe for concurrent use.
type Language struct {
	Name             string
	CaseInsensitive  bool
	ClassNameAliases map[string]string
	Modes            []*Mode
}

// Root returns the root mode.
func (l *Language) Root() *Mode {
	return l.Modes[0]
}

// Mode returns the mode with the given ID.
func (l *Language) Mode(id ModeID) *Mode {
	return l.Modes[id]
}

// Alias applies ClassNameAliases to a scope.
func (l *Language) Alias(scope string) string {
	if a, ok := l.ClassNameAliases[scope]; ok {
		return a
	}
	return scope
}
