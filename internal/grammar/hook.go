package grammar

import "github.com/dshills/glint/internal/regex"

// Decision is the outcome of a match hook.
type Decision int

const (
	// Accept keeps the match.
	Accept Decision = iota

	// Ignore discards the match; scanning continues as if the pattern had
	// not matched at this position.
	Ignore

	// Abort stops highlighting with an error.
	Abort
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Ignore:
		return "ignore"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// MatchInfo describes a begin or end match offered to a hook.
type MatchInfo struct {
	// Index is the rune offset of the match in Input.
	Index int

	// Groups are the capture groups of the matching pattern; Groups[0] is
	// the lexeme.
	Groups []regex.Group

	// Input is the whole text being highlighted.
	Input []rune
}

// Lexeme returns the matched text.
func (m *MatchInfo) Lexeme() string {
	if len(m.Groups) == 0 {
		return ""
	}
	return m.Groups[0].Text
}

// Group returns the text of group i, or "" if it did not participate.
func (m *MatchInfo) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i].Text
}

// MatchHook inspects a match before it takes effect. Data is private to one
// activation of the mode: the map passed to OnBegin is the one later passed
// to OnEnd of the same activation.
type MatchHook func(m *MatchInfo, data map[string]any) Decision
