package regex

import (
	"regexp"
	"strconv"
	"strings"
)

// Concat joins pattern fragments without any grouping.
func Concat(parts ...string) string {
	return strings.Join(parts, "")
}

// Lookahead wraps src in a positive lookahead.
func Lookahead(src string) string {
	return Concat("(?=", src, ")")
}

// AnyNumberOfTimes matches src zero or more times.
func AnyNumberOfTimes(src string) string {
	return Concat("(?:", src, ")*")
}

// Optional matches src zero or one time.
func Optional(src string) string {
	return Concat("(?:", src, ")?")
}

// Either builds a non-capturing alternation of the given patterns.
func Either(alternatives ...string) string {
	return "(?:" + strings.Join(alternatives, "|") + ")"
}

// EitherCapture builds a capturing alternation of the given patterns.
func EitherCapture(alternatives ...string) string {
	return "(" + strings.Join(alternatives, "|") + ")"
}

// Escape quotes every regex metacharacter in s.
func Escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\^$.|?*+()[]{}-/`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// groupToken finds the tokens of a pattern source that matter for group
// numbering: character classes (skipped whole), group openings, numeric
// back-references and any other escape.
var groupToken = regexp.MustCompile(`\[(?:[^\\\]]|\\.)*\]|\(\??|\\([1-9][0-9]*)|\\.`)

// Join wraps every fragment in its own capture group and joins them with sep.
//
// Back-references inside a fragment refer to that fragment's own groups; Join
// shifts them by the number of groups opened before the fragment so they keep
// pointing at the same group in the combined pattern.
func Join(fragments []string, sep string) string {
	opened := 0
	out := make([]string, len(fragments))
	for i, frag := range fragments {
		opened++
		offset := opened
		var b strings.Builder
		rest := frag
		for len(rest) > 0 {
			loc := groupToken.FindStringSubmatchIndex(rest)
			if loc == nil {
				b.WriteString(rest)
				break
			}
			b.WriteString(rest[:loc[0]])
			tok := rest[loc[0]:loc[1]]
			switch {
			case tok[0] == '\\' && loc[2] >= 0:
				n, _ := strconv.Atoi(rest[loc[2]:loc[3]])
				b.WriteString(`\` + strconv.Itoa(n+offset))
			default:
				b.WriteString(tok)
				if tok == "(" {
					opened++
				}
			}
			rest = rest[loc[1]:]
		}
		out[i] = "(" + b.String() + ")"
	}
	return strings.Join(out, sep)
}
