package highlight

import (
	"testing"

	"github.com/dshills/glint/internal/grammar"
	"github.com/dshills/glint/internal/logging"
)

// newTestHighlighter returns a quiet Highlighter with the given languages.
func newTestHighlighter(t *testing.T, langs map[string]*grammar.Language, opts ...Option) *Highlighter {
	t.Helper()
	h := New(append([]Option{WithLogger(logging.Null())}, opts...)...)
	for name, def := range langs {
		if err := h.RegisterLanguage(name, Static(def)); err != nil {
			t.Fatalf("RegisterLanguage(%q): %v", name, err)
		}
	}
	return h
}

// miniLanguage has strings, line comments, numbers and a few keywords.
func miniLanguage() *grammar.Language {
	return &grammar.Language{
		Name:    "Mini",
		Aliases: []string{"mn"},
		Mode: grammar.Mode{
			Keywords: &grammar.Keywords{Categories: map[string][]string{
				"keyword": {"if", "else", "foo|5"},
				"_hidden": {"zzz|2"},
			}},
			Illegal: grammar.Re(`@`),
			Contains: []grammar.Child{
				grammar.QuoteStringMode(),
				grammar.CLineCommentMode(),
				grammar.NumberMode(),
			},
		},
	}
}

func mustHighlight(t *testing.T, h *Highlighter, lang, code string) *Result {
	t.Helper()
	res, err := h.Highlight(code, HighlightOptions{Language: lang})
	if err != nil {
		t.Fatalf("Highlight(%q): %v", code, err)
	}
	return res
}
