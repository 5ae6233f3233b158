// Package matcher merges the patterns that may fire inside one mode into a
// single alternation and scans text with it.
//
// Every rule becomes one capture group of the merged pattern, so the first
// participating group tells which rule fired. A Set is immutable and may be
// shared; a Resumable carries the scan position of one activation and lets
// the caller retry the same position while skipping rules it rejected.
package matcher

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/glint/internal/regex"
)

// Kind classifies a rule.
type Kind int

const (
	// Begin rules start a child mode.
	Begin Kind = iota
	// End is the terminator of the active mode.
	End
	// Illegal patterns must not appear while the mode is active.
	Illegal
)

func (k Kind) String() string {
	switch k {
	case Begin:
		return "begin"
	case End:
		return "end"
	case Illegal:
		return "illegal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ErrRuleOrder is returned when a begin rule follows an end or illegal rule.
var ErrRuleOrder = errors.New("begin rules must precede end and illegal rules")

// Rule is one pattern of a mode with its payload.
type Rule[T any] struct {
	Kind    Kind
	Pattern string
	Value   T

	groups int
}

// Match is a successful scan.
type Match[T any] struct {
	// Index is the rune offset of the lexeme.
	Index int

	// Length is the lexeme length in runes.
	Length int

	// Groups are relative to the rule: Groups[0] is the lexeme and
	// Groups[1:] are the rule's own capture groups.
	Groups []regex.Group

	// Rule is the rule that fired.
	Rule *Rule[T]

	// Position is the index of Rule in the set.
	Position int
}

// Lexeme returns the matched text.
func (m *Match[T]) Lexeme() string {
	return m.Groups[0].Text
}

// End returns the rune offset just past the lexeme.
func (m *Match[T]) End() int {
	return m.Index + m.Length
}

// Set is the ordered rule list of a mode.
type Set[T any] struct {
	rules []Rule[T]
	begin int
	flags regex.Flags

	mu   sync.Mutex
	subs map[int]*multi
}

// NewSet validates and compiles rules. Begin rules must come first.
func NewSet[T any](rules []Rule[T], flags regex.Flags) (*Set[T], error) {
	s := &Set[T]{
		rules: append([]Rule[T](nil), rules...),
		flags: flags,
		subs:  make(map[int]*multi),
	}
	seenOther := false
	for i := range s.rules {
		r := &s.rules[i]
		switch {
		case r.Kind == Begin && seenOther:
			return nil, ErrRuleOrder
		case r.Kind == Begin:
			s.begin++
		default:
			seenOther = true
		}
		n, err := regex.CountGroups(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%s rule %d: %w", r.Kind, i, err)
		}
		r.groups = n
	}
	if _, err := s.matcher(0); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of rules.
func (s *Set[T]) Len() int {
	return len(s.rules)
}

// Rule returns rule i.
func (s *Set[T]) Rule(i int) *Rule[T] {
	return &s.rules[i]
}

// Source returns the merged pattern covering every rule.
func (s *Set[T]) Source() string {
	m, _ := s.matcher(0)
	if m == nil || m.re == nil {
		return ""
	}
	return m.re.Source()
}

// multi is the merged pattern of the rules from start onwards.
type multi struct {
	re    *regex.Regexp
	start int
	// ruleAt maps a top-level group number to its absolute rule index.
	ruleAt map[int]int
}

func (s *Set[T]) matcher(start int) (*multi, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.subs[start]; ok {
		return m, nil
	}

	m := &multi{start: start, ruleAt: make(map[int]int)}
	if start < len(s.rules) {
		patterns := make([]string, 0, len(s.rules)-start)
		group := 1
		for i := start; i < len(s.rules); i++ {
			m.ruleAt[group] = i
			patterns = append(patterns, s.rules[i].Pattern)
			group += s.rules[i].groups + 1
		}
		re, err := regex.Compile(regex.Join(patterns, "|"), s.flags)
		if err != nil {
			return nil, err
		}
		m.re = re
	}
	s.subs[start] = m
	return m, nil
}

func (s *Set[T]) exec(m *multi, text []rune, at int) (*Match[T], error) {
	if m.re == nil {
		return nil, nil
	}
	res, err := m.re.FindAt(text, at)
	if err != nil || res == nil {
		return nil, err
	}
	for g := 1; g < len(res.Groups); g++ {
		if !res.Groups[g].Matched {
			continue
		}
		idx, ok := m.ruleAt[g]
		if !ok {
			break
		}
		rule := &s.rules[idx]
		return &Match[T]{
			Index:    res.Index,
			Length:   res.Length,
			Groups:   res.Groups[g : g+rule.groups+1],
			Rule:     rule,
			Position: idx,
		}, nil
	}
	return nil, fmt.Errorf("merged pattern matched at %d without a rule group", res.Index)
}

// Resumable returns a fresh scanner over the set.
func (s *Set[T]) Resumable() *Resumable[T] {
	return &Resumable[T]{set: s}
}

// Resumable scans text with a Set. It is not safe for concurrent use.
type Resumable[T any] struct {
	set *Set[T]

	// LastIndex is where the next Exec starts searching.
	LastIndex int

	regexIndex int
}

// ConsiderAll makes the next Exec test every rule.
func (r *Resumable[T]) ConsiderAll() {
	r.regexIndex = 0
}

// Resuming reports whether the next Exec skips the rules up to and
// including the last one that fired.
func (r *Resumable[T]) Resuming() bool {
	return r.regexIndex != 0
}

// Exec returns the next match at or after LastIndex, or nil.
//
// While resuming, only the rules after the last one that fired are tried at
// LastIndex; if none of them matches exactly there, every rule is tried
// from the following position.
func (r *Resumable[T]) Exec(text []rune) (*Match[T], error) {
	m, err := r.set.matcher(r.regexIndex)
	if err != nil {
		return nil, err
	}
	res, err := r.set.exec(m, text, r.LastIndex)
	if err != nil {
		return nil, err
	}
	if r.Resuming() && (res == nil || res.Index != r.LastIndex) {
		full, err := r.set.matcher(0)
		if err != nil {
			return nil, err
		}
		if res, err = r.set.exec(full, text, r.LastIndex+1); err != nil {
			return nil, err
		}
	}
	if res != nil {
		r.regexIndex = res.Position + 1
		if r.regexIndex == r.set.begin {
			r.ConsiderAll()
		}
	}
	return res, nil
}
