package highlight

import (
	"testing"

	"github.com/dshills/glint/internal/grammar"
)

func wordLanguage(words string) *grammar.Language {
	return &grammar.Language{Mode: grammar.Mode{Keywords: grammar.KeywordList(words)}}
}

func TestHighlightAuto_PicksMostRelevant(t *testing.T) {
	h := newTestHighlighter(t, map[string]*grammar.Language{
		"mini":  miniLanguage(),
		"other": wordLanguage("alpha beta"),
	})

	res, err := h.HighlightAuto(`if x "s" else foo`, nil)
	if err != nil {
		t.Fatalf("HighlightAuto: %v", err)
	}
	if res.Language != "mini" {
		t.Errorf("Language = %q, want mini", res.Language)
	}
	if res.SecondBest == nil {
		t.Fatal("SecondBest should be set")
	}
	if res.SecondBest.Relevance > res.Relevance {
		t.Errorf("SecondBest relevance %d exceeds best %d", res.SecondBest.Relevance, res.Relevance)
	}
}

func TestHighlightAuto_PlainTextWhenNothingScores(t *testing.T) {
	h := newTestHighlighter(t, map[string]*grammar.Language{"other": wordLanguage("alpha")})

	res, err := h.HighlightAuto("<nothing here>", nil)
	if err != nil {
		t.Fatalf("HighlightAuto: %v", err)
	}
	if res.Language != "" {
		t.Errorf("Language = %q, want plain text", res.Language)
	}
	if res.Value != "&lt;nothing here&gt;" {
		t.Errorf("Value = %q", res.Value)
	}
	if res.Relevance != 0 {
		t.Errorf("Relevance = %d, want 0", res.Relevance)
	}
}

func TestHighlightAuto_SupersetTieBreak(t *testing.T) {
	sup := wordLanguage("alpha")
	sup.SupersetOf = "base"
	h := newTestHighlighter(t, map[string]*grammar.Language{
		"base":  wordLanguage("alpha"),
		"super": sup,
	})

	for _, candidates := range [][]string{{"super", "base"}, {"base", "super"}} {
		res, err := h.HighlightAuto("alpha", candidates)
		if err != nil {
			t.Fatalf("HighlightAuto(%v): %v", candidates, err)
		}
		if res.Language != "base" {
			t.Errorf("candidates %v: Language = %q, want base", candidates, res.Language)
		}
		if res.SecondBest == nil || res.SecondBest.Language != "super" {
			t.Errorf("candidates %v: SecondBest = %+v, want super", candidates, res.SecondBest)
		}
	}
}

func TestHighlightAuto_SkipsUnknownAndDisabled(t *testing.T) {
	hidden := wordLanguage("alpha")
	hidden.DisableAutodetect = true
	h := newTestHighlighter(t, map[string]*grammar.Language{
		"hidden": hidden,
		"other":  wordLanguage("beta"),
	})

	res, err := h.HighlightAuto("alpha alpha", []string{"hidden", "missing", "other"})
	if err != nil {
		t.Fatalf("HighlightAuto: %v", err)
	}
	if res.Language != "" {
		t.Errorf("Language = %q, want plain text", res.Language)
	}
	if !h.AutoDetection("other") || h.AutoDetection("hidden") || h.AutoDetection("missing") {
		t.Error("AutoDetection reports the wrong languages")
	}
}

func TestHighlightAuto_LanguagesOption(t *testing.T) {
	h := newTestHighlighter(t, map[string]*grammar.Language{
		"a": wordLanguage("alpha"),
		"b": wordLanguage("alpha beta"),
	}, WithLanguages("a"))

	res, err := h.HighlightAuto("alpha beta", nil)
	if err != nil {
		t.Fatalf("HighlightAuto: %v", err)
	}
	if res.Language != "a" {
		t.Errorf("Language = %q, want a", res.Language)
	}
}

func TestHighlightAuto_IllegalCandidateIsIsolated(t *testing.T) {
	h := newTestHighlighter(t, map[string]*grammar.Language{
		"mini":  miniLanguage(),
		"other": wordLanguage("alpha"),
	})

	res, err := h.HighlightAuto("if alpha @", nil)
	if err != nil {
		t.Fatalf("HighlightAuto: %v", err)
	}
	if res.Language != "other" {
		t.Errorf("Language = %q, want other", res.Language)
	}
}
