package grammar

import (
	"github.com/dshills/glint/internal/regex"
)

// Pattern sources shared by many grammars.
const (
	MatchNothingRE    = `\b\B`
	IdentRE           = `[a-zA-Z]\w*`
	UnderscoreIdentRE = `[a-zA-Z_]\w*`
	NumberRE          = `\b\d+(\.\d+)?`
	CNumberRE         = `(-?)(\b0[xX][a-fA-F0-9]+|(\b\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?)`
	BinaryNumberRE    = `\b(0b[01]+)`
	REStartersRE      = `!|!=|!==|%|%=|&|&&|&=|\*|\*=|\+|\+=|,|-|-=|/=|/|:|;|<<|<<=|<=|<|===|==|=|>>>=|>>=|>=|>>>|>>|>|\?|\[|\{|\(|\^|\^=|\||\|=|\|\||~`
)

var commonPatterns = map[string]string{
	"MATCH_NOTHING_RE":    MatchNothingRE,
	"IDENT_RE":            IdentRE,
	"UNDERSCORE_IDENT_RE": UnderscoreIdentRE,
	"NUMBER_RE":           NumberRE,
	"C_NUMBER_RE":         CNumberRE,
	"BINARY_NUMBER_RE":    BinaryNumberRE,
	"RE_STARTERS_RE":      REStartersRE,
}

// CommonPattern returns a shared pattern source by its conventional name,
// e.g. "C_NUMBER_RE".
func CommonPattern(name string) (string, bool) {
	src, ok := commonPatterns[name]
	return src, ok
}

var commonModes = map[string]func() *Mode{
	"BACKSLASH_ESCAPE":      BackslashEscape,
	"APOS_STRING_MODE":      AposStringMode,
	"QUOTE_STRING_MODE":     QuoteStringMode,
	"PHRASAL_WORDS_MODE":    PhrasalWordsMode,
	"C_LINE_COMMENT_MODE":   CLineCommentMode,
	"C_BLOCK_COMMENT_MODE":  CBlockCommentMode,
	"HASH_COMMENT_MODE":     HashCommentMode,
	"NUMBER_MODE":           NumberMode,
	"C_NUMBER_MODE":         CNumberMode,
	"BINARY_NUMBER_MODE":    BinaryNumberMode,
	"REGEXP_MODE":           RegexpMode,
	"TITLE_MODE":            TitleMode,
	"UNDERSCORE_TITLE_MODE": UnderscoreTitleMode,
	"METHOD_GUARD":          MethodGuard,
	"SHEBANG":               func() *Mode { return Shebang("") },
}

// CommonMode returns a fresh copy of a shared mode by its conventional
// name, e.g. "C_LINE_COMMENT_MODE".
func CommonMode(name string) (*Mode, bool) {
	fn, ok := commonModes[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// BackslashEscape matches a backslash and the character after it.
func BackslashEscape() *Mode {
	return &Mode{Begin: Re(`\\[\s\S]`), Relevance: Relevance(0)}
}

// AposStringMode is a single-quoted string with backslash escapes.
func AposStringMode() *Mode {
	return &Mode{
		Scope:    "string",
		Begin:    Re(`'`),
		End:      Re(`'`),
		Illegal:  Re(`\n`),
		Contains: []Child{BackslashEscape()},
	}
}

// QuoteStringMode is a double-quoted string with backslash escapes.
func QuoteStringMode() *Mode {
	return &Mode{
		Scope:    "string",
		Begin:    Re(`"`),
		End:      Re(`"`),
		Illegal:  Re(`\n`),
		Contains: []Child{BackslashEscape()},
	}
}

// PhrasalWordsMode skips common English words inside comments.
func PhrasalWordsMode() *Mode {
	return &Mode{
		Begin: Re(`\b(a|an|the|are|I'm|isn't|don't|doesn't|won't|but|just|should|pretty|simply|enough|gonna|going|wtf|so|such|will|you|your|they|like|more)\b`),
	}
}

// Comment builds a comment mode from begin to end. Fields set in opts
// override the defaults. Doc tags such as "TODO:" are scoped "doctag", and
// runs of English words are consumed so they are not taken for code.
func Comment(begin, end string, opts *Mode) *Mode {
	m := Inherit(&Mode{Scope: "comment", Begin: Re(begin), End: Re(end)}, opts)
	m.Contains = append(append([]Child(nil), m.Contains...),
		&Mode{
			Scope:        "doctag",
			Begin:        Re(`[ ]*(?=(TODO|FIXME|NOTE|BUG|OPTIMIZE|HACK|XXX):)`),
			End:          Re(`(TODO|FIXME|NOTE|BUG|OPTIMIZE|HACK|XXX):`),
			ExcludeBegin: true,
			Relevance:    Relevance(0),
		},
		&Mode{
			Begin: Re(regex.Concat(`[ ]+`, "(", englishWord, `[.]?[:]?([.][ ]|[ ])`, "){3}")),
		},
	)
	return m
}

var englishWord = regex.Either(
	"I", "a", "is", "so", "us", "to", "at", "if", "in", "it", "on",
	`[A-Za-z]+['](d|ve|re|ll|t|s|n)`,
	`[A-Za-z]+[-][a-z]+`,
	`[A-Za-z][a-z]{2,}`,
)

// CLineCommentMode is a // comment running to the end of the line.
func CLineCommentMode() *Mode { return Comment(`//`, `$`, nil) }

// CBlockCommentMode is a /* */ comment.
func CBlockCommentMode() *Mode { return Comment(`/\*`, `\*/`, nil) }

// HashCommentMode is a # comment running to the end of the line.
func HashCommentMode() *Mode { return Comment(`#`, `$`, nil) }

func NumberMode() *Mode {
	return &Mode{Scope: "number", Begin: Re(NumberRE), Relevance: Relevance(0)}
}

func CNumberMode() *Mode {
	return &Mode{Scope: "number", Begin: Re(CNumberRE), Relevance: Relevance(0)}
}

func BinaryNumberMode() *Mode {
	return &Mode{Scope: "number", Begin: Re(BinaryNumberRE), Relevance: Relevance(0)}
}

// RegexpMode is a /regex/flags literal.
func RegexpMode() *Mode {
	return &Mode{
		Scope: "regexp",
		Begin: Re(`\/(?=[^/\n]*\/)`),
		End:   Re(`\/[gimuy]*`),
		Contains: []Child{
			BackslashEscape(),
			&Mode{
				Begin:     Re(`\[`),
				End:       Re(`\]`),
				Relevance: Relevance(0),
				Contains:  []Child{BackslashEscape()},
			},
		},
	}
}

func TitleMode() *Mode {
	return &Mode{Scope: "title", Begin: Re(IdentRE), Relevance: Relevance(0)}
}

func UnderscoreTitleMode() *Mode {
	return &Mode{Scope: "title", Begin: Re(UnderscoreIdentRE), Relevance: Relevance(0)}
}

// MethodGuard consumes ".name" so the name is not taken for a keyword.
func MethodGuard() *Mode {
	return &Mode{Begin: Re(`\.\s*` + UnderscoreIdentRE), Relevance: Relevance(0)}
}

// Shebang matches a "#!" interpreter line at the very start of the input.
// A non-empty binary restricts it to that interpreter.
func Shebang(binary string) *Mode {
	begin := `^#![ ]*\/`
	if binary != "" {
		begin = regex.Concat(begin, `.*\b`, binary, `\b.*`)
	}
	return &Mode{
		Scope:     "meta",
		Begin:     Re(begin),
		End:       Re(`$`),
		Relevance: Relevance(0),
		OnBegin: func(m *MatchInfo, _ map[string]any) Decision {
			if m.Index != 0 {
				return Ignore
			}
			return Accept
		},
	}
}

const beginMatchKey = "_beginMatch"

// EndSameAsBegin makes m end only where its end pattern captures, in group
// 1, the same text its begin pattern captured in group 1. It returns m.
func EndSameAsBegin(m *Mode) *Mode {
	m.OnBegin = func(info *MatchInfo, data map[string]any) Decision {
		data[beginMatchKey] = info.Group(1)
		return Accept
	}
	m.OnEnd = func(info *MatchInfo, data map[string]any) Decision {
		if data[beginMatchKey] != info.Group(1) {
			return Ignore
		}
		return Accept
	}
	return m
}
