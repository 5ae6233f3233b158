package highlight

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/glint/internal/grammar"
)

func TestPlugins_RunInOrder(t *testing.T) {
	h := newTestHighlighter(t, map[string]*grammar.Language{"mini": miniLanguage()})

	var calls []string
	h.AddPlugin(Plugin{
		Name: "first",
		BeforeHighlight: func(ctx *BeforeHighlightContext) error {
			calls = append(calls, "first:before")
			ctx.Code = strings.ToLower(ctx.Code)
			return nil
		},
	})
	h.AddPlugin(Plugin{
		Name: "second",
		BeforeHighlight: func(ctx *BeforeHighlightContext) error {
			calls = append(calls, "second:before")
			return nil
		},
		AfterHighlight: func(res *Result) error {
			calls = append(calls, "second:after")
			res.Value = "<pre>" + res.Value + "</pre>"
			return nil
		},
	})

	res := mustHighlight(t, h, "mini", "IF")
	if res.Value != `<pre><span class="hljs-keyword">if</span></pre>` {
		t.Errorf("Value = %q", res.Value)
	}
	if res.Code != "if" {
		t.Errorf("Code = %q, want the rewritten code", res.Code)
	}
	want := []string{"first:before", "second:before", "second:after"}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestPlugins_ResultShortCircuits(t *testing.T) {
	h := newTestHighlighter(t, nil)
	h.AddPlugin(Plugin{BeforeHighlight: func(ctx *BeforeHighlightContext) error {
		ctx.Result = &Result{Language: "canned", Value: "done"}
		return nil
	}})

	res, err := h.Highlight("x", HighlightOptions{Language: "unregistered"})
	if err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	if res.Language != "canned" || res.Value != "done" {
		t.Errorf("got %+v", res)
	}
}

func TestPlugins_Remove(t *testing.T) {
	h := newTestHighlighter(t, map[string]*grammar.Language{"mini": miniLanguage()})
	called := 0
	id := h.AddPlugin(Plugin{AfterHighlight: func(*Result) error { called++; return nil }})

	mustHighlight(t, h, "mini", "x")
	if !h.RemovePlugin(id) {
		t.Fatal("RemovePlugin should find the plugin")
	}
	if h.RemovePlugin(id) {
		t.Error("RemovePlugin should fail the second time")
	}
	mustHighlight(t, h, "mini", "x")
	if called != 1 {
		t.Errorf("called = %d, want 1", called)
	}
}

func TestPlugins_Failure(t *testing.T) {
	boom := errors.New("boom")
	failing := Plugin{Name: "bad", AfterHighlight: func(*Result) error { return boom }}

	safe := newTestHighlighter(t, map[string]*grammar.Language{"mini": miniLanguage()})
	safe.AddPlugin(failing)
	if _, err := safe.Highlight("x", HighlightOptions{Language: "mini"}); err != nil {
		t.Errorf("safe mode: err = %v, want nil", err)
	}

	debug := newTestHighlighter(t, map[string]*grammar.Language{"mini": miniLanguage()}, WithSafeMode(false))
	debug.AddPlugin(failing)
	if _, err := debug.Highlight("x", HighlightOptions{Language: "mini"}); !errors.Is(err, boom) {
		t.Errorf("debug mode: err = %v, want boom", err)
	}
}
