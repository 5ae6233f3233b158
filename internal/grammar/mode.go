package grammar

import (
	"strings"

	"github.com/dshills/glint/internal/regex"
)

// Pattern is a regex source. It is either a single source or an ordered
// list of fragments that are matched in sequence, each fragment becoming
// one numbered group for multi-scope emission.
//
// For Mode.Illegal the fragments are alternatives instead.
type Pattern struct {
	Source string
	Parts  []string
}

// Re returns a single-source pattern.
func Re(src string) Pattern {
	return Pattern{Source: src}
}

// Seq returns a multi-fragment pattern.
func Seq(parts ...string) Pattern {
	return Pattern{Parts: parts}
}

// IsZero reports whether the pattern is unset.
func (p Pattern) IsZero() bool {
	return p.Source == "" && len(p.Parts) == 0
}

// IsMulti reports whether the pattern is a fragment list.
func (p Pattern) IsMulti() bool {
	return len(p.Parts) > 0
}

func (p Pattern) String() string {
	if p.IsMulti() {
		return "[" + strings.Join(p.Parts, ", ") + "]"
	}
	return p.Source
}

func (p Pattern) clone() Pattern {
	if p.Parts != nil {
		p.Parts = append([]string(nil), p.Parts...)
	}
	return p
}

// ScopeSpec labels the text matched by a begin or end pattern.
//
// Wrap scopes the whole lexeme. Groups maps fragment numbers (1-based, in
// the order of a multi-fragment Pattern) to scopes; fragments without an
// entry are scanned for keywords instead.
type ScopeSpec struct {
	Wrap   string
	Groups map[int]string
}

// IsZero reports whether no scope is set.
func (s ScopeSpec) IsZero() bool {
	return s.Wrap == "" && s.Groups == nil
}

func (s ScopeSpec) clone() ScopeSpec {
	if s.Groups != nil {
		g := make(map[int]string, len(s.Groups))
		for k, v := range s.Groups {
			g[k] = v
		}
		s.Groups = g
	}
	return s
}

// Keywords is a keyword table.
//
// Categories maps a category name to its entries. An entry is either a
// word or "word|weight". Categories starting with "_" add relevance but are
// not highlighted. Pattern overrides the identifier pattern used to find
// candidate words (default `\w+`).
//
// A word listed in several categories belongs to the last one in Order.
// Categories missing from Order are applied before it, sorted by name.
type Keywords struct {
	Pattern    string
	Categories map[string][]string
	Order      []string
}

// KeywordList builds a table with a single "keyword" category from a
// space-separated list.
func KeywordList(words string) *Keywords {
	return &Keywords{
		Categories: map[string][]string{"keyword": strings.Fields(words)},
		Order:      []string{"keyword"},
	}
}

func (k *Keywords) clone() *Keywords {
	if k == nil {
		return nil
	}
	out := &Keywords{
		Pattern:    k.Pattern,
		Categories: make(map[string][]string, len(k.Categories)),
		Order:      append([]string(nil), k.Order...),
	}
	for cat, words := range k.Categories {
		out.Categories[cat] = append([]string(nil), words...)
	}
	return out
}

// SubLanguage names the language used to highlight a mode's content.
// With Name set the content is highlighted as that language. Otherwise it
// is auto-detected among Candidates, or among every registered language
// when Candidates is empty.
type SubLanguage struct {
	Name       string
	Candidates []string
}

// Child is an entry of Mode.Contains: either a *Mode or Self.
type Child interface {
	child()
}

func (*Mode) child() {}

type selfRef struct{}

func (selfRef) child() {}

// Self refers to the mode whose Contains lists it.
var Self Child = selfRef{}

// IsSelf reports whether c is the Self reference.
func IsSelf(c Child) bool {
	_, ok := c.(selfRef)
	return ok
}

// Mode is one node of a grammar.
type Mode struct {
	// Scope names the scope of the whole mode, e.g. "string" or "title.class".
	Scope string

	// ClassName is the legacy name of Scope.
	//
	// Deprecated: use Scope.
	ClassName string

	Begin Pattern
	End   Pattern

	// Match is shorthand for a mode consisting of its begin pattern only.
	Match Pattern

	// BeginKeywords is shorthand for a begin pattern matching any of the
	// space-separated words, which also become the mode's keywords.
	BeginKeywords string

	// BeforeMatch must match right before Begin for the mode to start; the
	// text it matches stays in the parent mode.
	BeforeMatch string

	BeginScope ScopeSpec
	EndScope   ScopeSpec

	Keywords *Keywords

	// Relevance is added to the score when the mode ends. Nil means the
	// default of 1 (0 for BeginKeywords modes).
	Relevance *int

	Illegal Pattern

	Contains []Child
	Variants []*Mode
	Starts   *Mode

	SubLanguage *SubLanguage

	ExcludeBegin   bool
	ExcludeEnd     bool
	ReturnBegin    bool
	ReturnEnd      bool
	Skip           bool
	EndsParent     bool
	EndsWithParent bool

	OnBegin MatchHook
	OnEnd   MatchHook
}

// Relevance returns a pointer to n for use in Mode.Relevance.
func Relevance(n int) *int {
	return &n
}

// Language is a complete grammar.
type Language struct {
	Mode

	Name    string
	Aliases []string

	CaseInsensitive bool
	UnicodeRegex    bool

	// ClassNameAliases remaps scopes when they are emitted.
	ClassNameAliases map[string]string

	// DisableAutodetect excludes the language from auto-detection.
	DisableAutodetect bool

	// SupersetOf names a language this one contains; on equal relevance the
	// other language wins auto-detection.
	SupersetOf string

	// Extensions run on a normalized copy of every mode before it is compiled.
	Extensions []Extension
}

// Extension adjusts a mode during compilation. Parent is nil for the
// language root.
type Extension func(mode, parent *Mode)

// Flags returns the regex flags shared by every pattern of the language.
func (l *Language) Flags() regex.Flags {
	return regex.Flags{CaseInsensitive: l.CaseInsensitive, Unicode: l.UnicodeRegex}
}

// Inherit returns a shallow copy of base with every field that is set in
// override replaced. Variants of the result are cleared. Boolean flags can
// only be switched on by the override.
func Inherit(base, override *Mode) *Mode {
	out := *base
	out.Variants = nil
	if override == nil {
		return &out
	}
	o := override
	if o.Scope != "" {
		out.Scope = o.Scope
	}
	if o.ClassName != "" {
		out.ClassName = o.ClassName
	}
	if !o.Begin.IsZero() {
		out.Begin = o.Begin
	}
	if !o.End.IsZero() {
		out.End = o.End
	}
	if !o.Match.IsZero() {
		out.Match = o.Match
	}
	if o.BeginKeywords != "" {
		out.BeginKeywords = o.BeginKeywords
	}
	if o.BeforeMatch != "" {
		out.BeforeMatch = o.BeforeMatch
	}
	if !o.BeginScope.IsZero() {
		out.BeginScope = o.BeginScope
	}
	if !o.EndScope.IsZero() {
		out.EndScope = o.EndScope
	}
	if o.Keywords != nil {
		out.Keywords = o.Keywords
	}
	if o.Relevance != nil {
		out.Relevance = o.Relevance
	}
	if !o.Illegal.IsZero() {
		out.Illegal = o.Illegal
	}
	if o.Contains != nil {
		out.Contains = o.Contains
	}
	if o.Starts != nil {
		out.Starts = o.Starts
	}
	if o.SubLanguage != nil {
		out.SubLanguage = o.SubLanguage
	}
	out.ExcludeBegin = out.ExcludeBegin || o.ExcludeBegin
	out.ExcludeEnd = out.ExcludeEnd || o.ExcludeEnd
	out.ReturnBegin = out.ReturnBegin || o.ReturnBegin
	out.ReturnEnd = out.ReturnEnd || o.ReturnEnd
	out.Skip = out.Skip || o.Skip
	out.EndsParent = out.EndsParent || o.EndsParent
	out.EndsWithParent = out.EndsWithParent || o.EndsWithParent
	if o.OnBegin != nil {
		out.OnBegin = o.OnBegin
	}
	if o.OnEnd != nil {
		out.OnEnd = o.OnEnd
	}
	return &out
}
