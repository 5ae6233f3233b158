package highlight

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/glint/internal/grammar"
)

func templateLanguage(sub *grammar.SubLanguage, relevance int) *grammar.Language {
	return &grammar.Language{Mode: grammar.Mode{Contains: []grammar.Child{
		&grammar.Mode{
			Begin:        grammar.Re(`<%`),
			End:          grammar.Re(`%>`),
			ExcludeBegin: true,
			ExcludeEnd:   true,
			SubLanguage:  sub,
			Relevance:    grammar.Relevance(relevance),
		},
	}}}
}

func innerLanguage() *grammar.Language {
	return &grammar.Language{Mode: grammar.Mode{
		Keywords: grammar.KeywordList("echo"),
		Contains: []grammar.Child{
			&grammar.Mode{Scope: "string", Begin: grammar.Re(`"`), End: grammar.Re(`"`)},
		},
	}}
}

func TestSubLanguage_ContinuesAcrossChunks(t *testing.T) {
	h := newTestHighlighter(t, map[string]*grammar.Language{
		"tpl":   templateLanguage(&grammar.SubLanguage{Name: "inner"}, 0),
		"inner": innerLanguage(),
	})

	res := mustHighlight(t, h, "tpl", `<%"ab%>x<%cd"%>`)
	want := `&lt;%<span class="language-inner"><span class="hljs-string">&quot;ab</span></span>%&gt;x` +
		`&lt;%<span class="language-inner"><span class="hljs-string">cd&quot;</span></span>%&gt;`
	if diff := cmp.Diff(want, res.Value); diff != "" {
		t.Errorf("Value mismatch (-want +got):\n%s", diff)
	}
}

func TestSubLanguage_Relevance(t *testing.T) {
	tests := []struct {
		name      string
		relevance int
		want      int
	}{
		{name: "scoring mode adds embedded relevance", relevance: 1, want: 2},
		{name: "zero relevance mode ignores it", relevance: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHighlighter(t, map[string]*grammar.Language{
				"tpl":   templateLanguage(&grammar.SubLanguage{Name: "inner"}, tt.relevance),
				"inner": innerLanguage(),
			})
			res := mustHighlight(t, h, "tpl", `<% echo "x" %>`)
			if res.Relevance != tt.want {
				t.Errorf("Relevance = %d, want %d", res.Relevance, tt.want)
			}
		})
	}
}

func TestSubLanguage_UnknownIsPlainText(t *testing.T) {
	h := newTestHighlighter(t, map[string]*grammar.Language{
		"tpl": templateLanguage(&grammar.SubLanguage{Name: "missing"}, 0),
	})

	res := mustHighlight(t, h, "tpl", `<% echo %>`)
	if res.Value != "&lt;% echo %&gt;" {
		t.Errorf("Value = %q", res.Value)
	}
}

func TestSubLanguage_AutoDetected(t *testing.T) {
	h := newTestHighlighter(t, map[string]*grammar.Language{
		"tpl":   templateLanguage(&grammar.SubLanguage{Candidates: []string{"inner", "other"}}, 0),
		"inner": innerLanguage(),
		"other": wordLanguage("alpha"),
	})

	res := mustHighlight(t, h, "tpl", `<%alpha%>`)
	want := `&lt;%<span class="language-other"><span class="hljs-keyword">alpha</span></span>%&gt;`
	if diff := cmp.Diff(want, res.Value); diff != "" {
		t.Errorf("Value mismatch (-want +got):\n%s", diff)
	}

	res = mustHighlight(t, h, "tpl", `<%zzz%>`)
	if res.Value != "&lt;%zzz%&gt;" {
		t.Errorf("undetected text should be spliced unscoped, got %q", res.Value)
	}
}
