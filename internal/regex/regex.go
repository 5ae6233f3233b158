package regex

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Flags selects compile options shared by every pattern of a language.
type Flags struct {
	// CaseInsensitive compiles patterns with the "i" flag.
	CaseInsensitive bool

	// Unicode compiles patterns with the "u" flag.
	Unicode bool
}

func (f Flags) options() regexp2.RegexOptions {
	opt := regexp2.RegexOptions(regexp2.ECMAScript | regexp2.Multiline)
	if f.CaseInsensitive {
		opt |= regexp2.IgnoreCase
	}
	if f.Unicode {
		opt |= regexp2.Unicode
	}
	return opt
}

// Regexp is a compiled pattern.
// It is immutable and safe for concurrent use.
type Regexp struct {
	re  *regexp2.Regexp
	src string
}

// Group is one capture group of a match.
type Group struct {
	// Text is the captured text, empty when the group did not participate.
	Text string

	// Matched reports whether the group participated in the match.
	Matched bool
}

// Match is the result of a successful search.
type Match struct {
	// Index is the rune offset of the match in the searched text.
	Index int

	// Length is the match length in runes.
	Length int

	// Groups holds every capture group; Groups[0] is the whole match.
	Groups []Group
}

// Text returns the matched text.
func (m *Match) Text() string {
	return m.Groups[0].Text
}

// End returns the rune offset just past the match.
func (m *Match) End() int {
	return m.Index + m.Length
}

// Compile compiles src with the given flags.
func Compile(src string, flags Flags) (*Regexp, error) {
	re, err := regexp2.Compile(src, flags.options())
	if err != nil {
		return nil, &SyntaxError{Source: src, Err: err}
	}
	return &Regexp{re: re, src: src}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string, flags Flags) *Regexp {
	re, err := Compile(src, flags)
	if err != nil {
		panic(err)
	}
	return re
}

// Source returns the pattern source.
func (r *Regexp) Source() string {
	return r.src
}

// NumGroups returns the number of capture groups, not counting the whole match.
func (r *Regexp) NumGroups() int {
	return len(r.re.GetGroupNumbers()) - 1
}

// FindAt returns the leftmost match in text at or after start, or nil.
func (r *Regexp) FindAt(text []rune, start int) (*Match, error) {
	if start < 0 {
		start = 0
	}
	if start > len(text) {
		return nil, nil
	}
	m, err := r.re.FindRunesMatchStartingAt(text, start)
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", r.src, err)
	}
	if m == nil {
		return nil, nil
	}
	return convert(m), nil
}

// MatchAt reports the match of r beginning exactly at start, or nil.
// The search sees text from start onwards only, so anchors and word
// boundaries behave as if the text began at start.
func (r *Regexp) MatchAt(text []rune, start int) (*Match, error) {
	if start > len(text) {
		return nil, nil
	}
	m, err := r.FindAt(text[start:], 0)
	if err != nil || m == nil || m.Index != 0 {
		return nil, err
	}
	m.Index = start
	return m, nil
}

func convert(m *regexp2.Match) *Match {
	groups := m.Groups()
	out := &Match{
		Index:  m.Index,
		Length: m.Length,
		Groups: make([]Group, len(groups)),
	}
	for i := range groups {
		g := &groups[i]
		if len(g.Captures) == 0 {
			continue
		}
		out.Groups[i] = Group{Text: g.String(), Matched: true}
	}
	return out
}

// CountGroups returns the number of capture groups in src.
func CountGroups(src string) (int, error) {
	re, err := Compile(src+"|", Flags{})
	if err != nil {
		return 0, err
	}
	return re.NumGroups(), nil
}

// SyntaxError reports a pattern that failed to compile.
type SyntaxError struct {
	Source string
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Source, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
