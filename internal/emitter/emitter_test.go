package emitter

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTreeBuilding(t *testing.T) {
	tr := New()
	tr.AddText("x = ")
	tr.OpenNode("string")
	tr.AddText(`"a`)
	tr.AddText(`"`)
	tr.CloseNode()
	tr.AddText("; ")
	tr.AddKeyword("if", "keyword")
	tr.AddKeyword("", "keyword")
	tr.CloseNode() // root stays open
	tr.Finalize()

	want := &Node{Children: []Item{
		Text("x = "),
		&Node{Scope: "string", Children: []Item{Text(`"a"`)}},
		Text("; "),
		&Node{Scope: "keyword", Children: []Item{Text("if")}},
	}}
	if diff := cmp.Diff(want, tr.Root()); diff != "" {
		t.Errorf("tree (-want +got):\n%s", diff)
	}
}

func TestFinalizeClosesOpenNodes(t *testing.T) {
	tr := New()
	tr.OpenNode("a")
	tr.OpenNode("b")
	if tr.Depth() != 3 {
		t.Fatalf("Depth() = %d, want 3", tr.Depth())
	}
	tr.Finalize()
	if tr.Depth() != 1 || tr.Top() != tr.Root() {
		t.Errorf("Finalize left nodes open")
	}
}

func TestScopeClass(t *testing.T) {
	tests := []struct {
		scope string
		want  string
	}{
		{"keyword", "hljs-keyword"},
		{"title.class", "hljs-title class_"},
		{"title.class.inherited", "hljs-title class_ inherited__"},
		{"language:xml", "language-xml"},
	}
	for _, tt := range tests {
		if got := ScopeClass(tt.scope, DefaultClassPrefix); got != tt.want {
			t.Errorf("ScopeClass(%q) = %q, want %q", tt.scope, got, tt.want)
		}
	}
	if got := ScopeClass("string", "x-"); got != "x-string" {
		t.Errorf("custom prefix: got %q", got)
	}
}

func TestEscapeHTML(t *testing.T) {
	in := `<a href="x">&'</a>`
	want := `&lt;a href=&quot;x&quot;&gt;&amp;&#x27;&lt;/a&gt;`
	if got := EscapeHTML(in); got != want {
		t.Errorf("EscapeHTML = %q, want %q", got, want)
	}
	if got := UnescapeHTML(want); got != in {
		t.Errorf("UnescapeHTML = %q, want %q", got, in)
	}
}

func sampleTree() *TokenTree {
	tr := New()
	tr.AddText("a < b ")
	tr.OpenNode("title.function")
	tr.AddText(`"q"`)
	tr.OpenNode("subst")
	tr.AddText("&")
	tr.CloseNode()
	tr.CloseNode()

	sub := New()
	sub.AddKeyword("true", "literal")
	sub.Finalize()
	tr.AddSublanguage(sub, "json")

	plain := New()
	plain.AddText(" tail'")
	tr.AddSublanguage(plain, "")
	tr.Finalize()
	return tr
}

func TestHTML(t *testing.T) {
	tr := sampleTree()
	want := `a &lt; b <span class="hljs-title function_">&quot;q&quot;<span class="hljs-subst">&amp;</span></span>` +
		`<span class="language-json"><span class="hljs-literal">true</span></span> tail&#x27;`
	got := tr.HTML(DefaultClassPrefix)
	if got != want {
		t.Errorf("HTML:\n got %s\nwant %s", got, want)
	}
	if again := tr.HTML(DefaultClassPrefix); again != got {
		t.Errorf("rendering is not deterministic")
	}
}

var tagRe = regexp.MustCompile(`</?span[^>]*>`)

func TestHTMLPreservesContent(t *testing.T) {
	tr := sampleTree()
	stripped := UnescapeHTML(tagRe.ReplaceAllString(tr.HTML(DefaultClassPrefix), ""))
	if want := `a < b "q"&true tail'`; stripped != want {
		t.Errorf("content = %q, want %q", stripped, want)
	}
	if tr.PlainText() != stripped {
		t.Errorf("PlainText() = %q", tr.PlainText())
	}
}

func TestMarshalJSON(t *testing.T) {
	tr := New()
	tr.AddText("x ")
	tr.AddKeyword("if", "keyword")
	tr.Finalize()

	data, err := json.Marshal(tr)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"children":["x ",{"scope":"keyword","children":["if"]}]}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
