package languages

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/glint/internal/highlight"
	"github.com/dshills/glint/internal/logging"
)

func newHighlighter(t *testing.T, opts ...highlight.Option) *highlight.Highlighter {
	t.Helper()
	return highlight.New(append([]highlight.Option{highlight.WithLogger(logging.Null())}, opts...)...)
}

func TestNames(t *testing.T) {
	if diff := cmp.Diff([]string{"bash", "flix", "json"}, Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestBundledGrammarsCompile(t *testing.T) {
	h := newHighlighter(t, highlight.WithSafeMode(false))
	if err := RegisterAll(h); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	for _, name := range Names() {
		if err := h.Compile(name); err != nil {
			t.Errorf("Compile(%q): %v", name, err)
		}
	}
}

func TestLoad(t *testing.T) {
	def, err := Load("Flix")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if def.Name != "Flix" {
		t.Errorf("Name = %q", def.Name)
	}
	if _, err := Load("cobol"); !errors.Is(err, highlight.ErrUnknownLanguage) {
		t.Errorf("err = %v, want ErrUnknownLanguage", err)
	}
}

func TestFlix(t *testing.T) {
	h := newHighlighter(t)
	if err := RegisterAll(h); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	res, err := h.Highlight(`def main(): Unit \ IO = println("Hello")`, highlight.HighlightOptions{Language: "flix"})
	if err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	for _, want := range []string{
		`<span class="hljs-title function_"><span class="hljs-keyword">def</span> <span class="hljs-title">main</span></span>(`,
		`<span class="hljs-type">Unit</span>`,
		`<span class="hljs-built_in">println</span>`,
		`<span class="hljs-string">&quot;Hello&quot;</span>`,
	} {
		if !strings.Contains(res.Value, want) {
			t.Errorf("Value %q lacks %q", res.Value, want)
		}
	}
}

func TestDetect(t *testing.T) {
	h := newHighlighter(t)
	if err := RegisterAll(h); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	tests := []struct {
		code string
		want string
	}{
		{code: `{"a": 1, "b": [true, null]}`, want: "json"},
		{code: "#!/bin/bash\necho $HOME", want: "bash"},
		{code: "def area(r: Float64): Float64 = r * r\nenum Shape { case Circle }", want: "flix"},
	}
	for _, tt := range tests {
		res, err := h.HighlightAuto(tt.code, nil)
		if err != nil {
			t.Fatalf("HighlightAuto(%q): %v", tt.code, err)
		}
		if res.Language != tt.want {
			t.Errorf("HighlightAuto(%q) = %q, want %q", tt.code, res.Language, tt.want)
		}
		if got := res.Tree.PlainText(); got != tt.code {
			t.Errorf("PlainText() = %q, want %q", got, tt.code)
		}
	}
}

const miniGrammar = `
name: Mini
keywords: alpha beta
`

func TestLoadDir(t *testing.T) {
	fsys := fstest.MapFS{
		"g/mini.yaml":    {Data: []byte(miniGrammar)},
		"g/notes.txt":    {Data: []byte("not a grammar")},
		"g/.hidden.yaml": {Data: []byte(miniGrammar)},
	}
	h := newHighlighter(t)

	names, err := LoadDir(h, fsys, "g")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if diff := cmp.Diff([]string{"mini"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	res, err := h.Highlight("alpha x", highlight.HighlightOptions{Language: "mini"})
	if err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	if res.Value != `<span class="hljs-keyword">alpha</span> x` {
		t.Errorf("Value = %q", res.Value)
	}

	if _, err := LoadDir(h, fsys, "missing"); err == nil {
		t.Error("LoadDir on a missing directory should fail")
	}
}

func TestReload(t *testing.T) {
	fsys := fstest.MapFS{"g/mini.yaml": {Data: []byte(miniGrammar)}}
	h := newHighlighter(t)
	if _, err := LoadDir(h, fsys, "g"); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	fsys["g/mini.yaml"] = &fstest.MapFile{Data: []byte("name: Mini\nkeywords: gamma\n")}
	name, err := Reload(h, fsys, "g/mini.yaml")
	if err != nil || name != "mini" {
		t.Fatalf("Reload = %q, %v", name, err)
	}
	res, err := h.Highlight("alpha gamma", highlight.HighlightOptions{Language: "mini"})
	if err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	if res.Value != `alpha <span class="hljs-keyword">gamma</span>` {
		t.Errorf("Value = %q", res.Value)
	}

	delete(fsys, "g/mini.yaml")
	if _, err := Reload(h, fsys, "g/mini.yaml"); err != nil {
		t.Fatalf("Reload after delete: %v", err)
	}
	if _, ok := h.GetLanguage("mini"); ok {
		t.Error("deleted grammar should be unregistered")
	}

	if _, err := Reload(h, fsys, "g/readme.md"); err == nil {
		t.Error("Reload of a non-grammar file should fail")
	}
}

func TestReload_BrokenGrammar(t *testing.T) {
	fsys := fstest.MapFS{"g/mini.yaml": {Data: []byte("name: [unclosed\n")}}

	debug := newHighlighter(t, highlight.WithSafeMode(false))
	if _, err := Reload(debug, fsys, "g/mini.yaml"); err == nil {
		t.Error("debug mode should report the broken grammar")
	}

	safe := newHighlighter(t)
	if _, err := Reload(safe, fsys, "g/mini.yaml"); err != nil {
		t.Fatalf("safe mode: %v", err)
	}
	res, err := safe.Highlight("a<b", highlight.HighlightOptions{Language: "mini"})
	if err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	if res.Value != "a&lt;b" {
		t.Errorf("Value = %q", res.Value)
	}
}
