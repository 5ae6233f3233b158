package terminal

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"
)

func TestStyleForFallsBackToParent(t *testing.T) {
	th := NewTheme("t", tcell.StyleDefault)
	title := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	class := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	th.Set("title", title)
	th.Set("title.class", class)

	tests := []struct {
		scope string
		want  tcell.Style
		ok    bool
	}{
		{"title", title, true},
		{"title.class", class, true},
		{"title.class.inherited", class, true},
		{"title.function", title, true},
		{"string", tcell.StyleDefault, false},
		{"", tcell.StyleDefault, false},
	}
	for _, tt := range tests {
		got, ok := th.StyleFor(tt.scope)
		if ok != tt.ok || got != tt.want {
			t.Errorf("StyleFor(%q) = %v, %v; want %v, %v", tt.scope, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseStyle(t *testing.T) {
	base := tcell.StyleDefault
	tests := []struct {
		spec string
		want tcell.Style
	}{
		{"", base},
		{"red", base.Foreground(tcell.ColorRed)},
		{"Red bold", base.Foreground(tcell.ColorRed).Bold(true)},
		{"italic underline", base.Italic(true).Underline(true)},
		{"dim reverse", base.Dim(true).Reverse(true)},
		{"white on Navy", base.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)},
		{"#ff8800", base.Foreground(tcell.NewHexColor(0xff8800))},
		{"default on default", base.Foreground(tcell.ColorDefault).Background(tcell.ColorDefault)},
	}
	for _, tt := range tests {
		got, err := ParseStyle(base, tt.spec)
		if err != nil {
			t.Errorf("ParseStyle(%q): %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStyle(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestParseStyleErrors(t *testing.T) {
	for _, spec := range []string{"nocolor", "red on", "bold on mauvish"} {
		if _, err := ParseStyle(tcell.StyleDefault, spec); err == nil {
			t.Errorf("ParseStyle(%q) succeeded", spec)
		}
	}
}

func TestLoadTheme(t *testing.T) {
	th, err := LoadTheme("Default", map[string]string{
		"keyword":  "red",
		"title.fn": "blue bold",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := th.StyleFor("keyword"); got != th.Base.Foreground(tcell.ColorRed) {
		t.Errorf("keyword override not applied: %v", got)
	}
	if got, _ := th.StyleFor("title.fn"); got != th.Base.Foreground(tcell.ColorBlue).Bold(true) {
		t.Errorf("title.fn = %v", got)
	}

	// Overrides must not leak into later loads.
	fresh := DefaultTheme()
	if a, _ := fresh.StyleFor("keyword"); a == th.Base.Foreground(tcell.ColorRed) {
		t.Error("override leaked into the built-in theme")
	}
}

func TestLoadThemeErrors(t *testing.T) {
	if _, err := LoadTheme("solarized", nil); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("unknown theme: err = %v", err)
	}
	if _, err := LoadTheme("mono", map[string]string{"keyword": "bogus"}); err == nil {
		t.Error("bad override accepted")
	}
}

func TestThemeNames(t *testing.T) {
	if diff := cmp.Diff([]string{"default", "mono"}, ThemeNames()); diff != "" {
		t.Errorf("ThemeNames mismatch (-want +got):\n%s", diff)
	}
}

func TestThemeClone(t *testing.T) {
	th := MonoTheme()
	c := th.Clone()
	c.Set("number", th.Base.Bold(true))
	if _, ok := th.StyleFor("number"); ok {
		t.Error("clone shares scope map with original")
	}
	if diff := cmp.Diff(th.Scopes(), []string{"comment", "keyword", "meta", "string", "title"}); diff != "" {
		t.Errorf("Scopes mismatch (-got +want):\n%s", diff)
	}
}
