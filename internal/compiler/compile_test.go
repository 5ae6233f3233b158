package compiler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/glint/internal/grammar"
	"github.com/dshills/glint/internal/matcher"
)

func mustCompile(t *testing.T, lang *grammar.Language) *Language {
	t.Helper()
	c, err := Compile(lang, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return c
}

// childIDs returns the modes a mode may begin, in matcher order.
func childIDs(m *Mode) []ModeID {
	var ids []ModeID
	for i := 0; i < m.Matcher.Len(); i++ {
		if r := m.Matcher.Rule(i); r.Kind == matcher.Begin {
			ids = append(ids, r.Value)
		}
	}
	return ids
}

func TestCompileBasic(t *testing.T) {
	str := &grammar.Mode{Scope: "string", Begin: grammar.Re(`"`), End: grammar.Re(`"`)}
	lang := mustCompile(t, &grammar.Language{
		Name: "mini",
		Mode: grammar.Mode{
			Contains: []grammar.Child{str, &grammar.Mode{Scope: "comment", Begin: grammar.Re(`//`), End: grammar.Re(`$`)}},
		},
	})

	root := lang.Root()
	if got := len(lang.Modes); got != 3 {
		t.Fatalf("len(Modes) = %d, want 3", got)
	}
	if root.Terminator != "" || root.EndRe != nil {
		t.Errorf("root should have no terminator")
	}
	if got, want := root.Matcher.Source(), `(")|(//)`; got != want {
		t.Errorf("root matcher = %q, want %q", got, want)
	}

	s := lang.Mode(childIDs(root)[0])
	if s.Scope != "string" || s.Relevance != 1 || s.Terminator != `"` || s.Parent != 0 {
		t.Errorf("unexpected string mode: %+v", s)
	}
	if got, want := s.Matcher.Source(), `(")`; got != want {
		t.Errorf("string matcher = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"string"}, s.Path); diff != "" {
		t.Errorf("path (-want +got):\n%s", diff)
	}
}

func TestCompileDefaults(t *testing.T) {
	lang := mustCompile(t, &grammar.Language{
		Name: "defaults",
		Mode: grammar.Mode{Contains: []grammar.Child{&grammar.Mode{Scope: "x"}}},
	})
	m := lang.Mode(1)
	if m.Begin != emptyMatch || m.Terminator != emptyMatch || m.EndRe == nil {
		t.Errorf("missing begin/end should match the empty string: %+v", m)
	}
}

func TestEndsWithParentTerminator(t *testing.T) {
	inner := &grammar.Mode{Begin: grammar.Re("a"), End: grammar.Re("x"), EndsWithParent: true}
	bare := &grammar.Mode{Begin: grammar.Re("b"), EndsWithParent: true}
	lang := mustCompile(t, &grammar.Language{
		Name: "ewp",
		Mode: grammar.Mode{Contains: []grammar.Child{
			&grammar.Mode{Begin: grammar.Re("{"), End: grammar.Re("}"), Contains: []grammar.Child{inner, bare}},
		}},
	})
	block := lang.Mode(childIDs(lang.Root())[0])
	ids := childIDs(block)
	if got := lang.Mode(ids[0]).Terminator; got != "x|}" {
		t.Errorf("terminator = %q, want %q", got, "x|}")
	}
	b := lang.Mode(ids[1])
	if b.Terminator != "}" || b.EndRe != nil {
		t.Errorf("bare mode terminator = %q endRe=%v", b.Terminator, b.EndRe)
	}
}

func TestSelfReference(t *testing.T) {
	block := &grammar.Mode{Scope: "block", Begin: grammar.Re(`\(`), End: grammar.Re(`\)`)}
	block.Contains = []grammar.Child{grammar.Self}
	lang := mustCompile(t, &grammar.Language{Name: "s", Mode: grammar.Mode{Contains: []grammar.Child{block}}})

	id := childIDs(lang.Root())[0]
	if diff := cmp.Diff([]ModeID{id}, childIDs(lang.Mode(id))); diff != "" {
		t.Errorf("self should resolve to the mode itself (-want +got):\n%s", diff)
	}
}

func TestPointerCycleIsBounded(t *testing.T) {
	a := &grammar.Mode{Scope: "a", Begin: grammar.Re("a"), End: grammar.Re("z")}
	b := &grammar.Mode{Scope: "b", Begin: grammar.Re("b"), End: grammar.Re("z"), EndsWithParent: true}
	a.Contains = []grammar.Child{b}
	b.Contains = []grammar.Child{a}

	lang := mustCompile(t, &grammar.Language{Name: "cycle", Mode: grammar.Mode{Contains: []grammar.Child{a}}})
	if got := len(lang.Modes); got != 3 {
		t.Errorf("len(Modes) = %d, want 3", got)
	}
}

func TestSharedDefinitionCompilesOnce(t *testing.T) {
	num := &grammar.Mode{Scope: "number", Begin: grammar.Re(`\d+`)}
	lang := mustCompile(t, &grammar.Language{
		Name: "shared",
		Mode: grammar.Mode{Contains: []grammar.Child{
			num,
			&grammar.Mode{Begin: grammar.Re(`\[`), End: grammar.Re(`\]`), Contains: []grammar.Child{num}},
		}},
	})
	root := childIDs(lang.Root())
	inner := childIDs(lang.Mode(root[1]))
	if root[0] != inner[0] {
		t.Errorf("shared definition compiled twice: %d and %d", root[0], inner[0])
	}
}

func TestVariants(t *testing.T) {
	lit := &grammar.Mode{
		Scope:    "literal",
		Variants: []*grammar.Mode{{Begin: grammar.Re(`\?\?\?`)}, {Begin: grammar.Re(`\?`), Relevance: grammar.Relevance(0)}},
	}
	lang := mustCompile(t, &grammar.Language{Name: "v", Mode: grammar.Mode{Contains: []grammar.Child{lit}}})
	ids := childIDs(lang.Root())
	if len(ids) != 2 {
		t.Fatalf("variants expanded to %d modes, want 2", len(ids))
	}
	a, b := lang.Mode(ids[0]), lang.Mode(ids[1])
	if a.Scope != "literal" || a.Begin != `\?\?\?` || a.Relevance != 1 {
		t.Errorf("first variant = %+v", a)
	}
	if b.Begin != `\?` || b.Relevance != 0 {
		t.Errorf("second variant = %+v", b)
	}
}

func TestBeginKeywords(t *testing.T) {
	lang := mustCompile(t, &grammar.Language{
		Name: "bk",
		Mode: grammar.Mode{Contains: []grammar.Child{
			&grammar.Mode{Scope: "class", BeginKeywords: "class enum", End: grammar.Re(`\{`)},
		}},
	})
	m := lang.Mode(1)
	if m.Begin != `\b(class|enum)(?!\.)(?=\b|\s)` {
		t.Errorf("begin = %q", m.Begin)
	}
	if !m.GuardDot || m.Relevance != 0 {
		t.Errorf("guard=%v relevance=%d", m.GuardDot, m.Relevance)
	}
	if diff := cmp.Diff(map[string]Keyword{"class": {"keyword", 1}, "enum": {"keyword", 1}}, m.Keywords); diff != "" {
		t.Errorf("keywords (-want +got):\n%s", diff)
	}
}

func TestBeforeMatch(t *testing.T) {
	kw := grammar.KeywordList("x")
	def := &grammar.Mode{Scope: "title", BeforeMatch: `def\s+`, Begin: grammar.Re(`\w+`), Keywords: kw}
	lang := mustCompile(t, &grammar.Language{Name: "bm", Mode: grammar.Mode{Contains: []grammar.Child{def}}})

	outer := lang.Mode(childIDs(lang.Root())[0])
	if outer.Begin != `def\s+(?=\w+)` || outer.Relevance != 0 || outer.Scope != "" {
		t.Errorf("outer = %+v", outer)
	}
	if outer.Keywords == nil {
		t.Errorf("outer should keep the keywords")
	}
	wrapper := lang.Mode(outer.Starts)
	if wrapper.Relevance != 0 {
		t.Errorf("wrapper relevance = %d", wrapper.Relevance)
	}
	inner := lang.Mode(childIDs(wrapper)[0])
	if inner.Scope != "title" || inner.Begin != `\w+` || !inner.EndsParent {
		t.Errorf("inner = %+v", inner)
	}
	if def.BeforeMatch != `def\s+` || def.EndsParent {
		t.Errorf("definition was modified")
	}
}

func TestMultiScope(t *testing.T) {
	lang := mustCompile(t, &grammar.Language{
		Name: "multi",
		Mode: grammar.Mode{Contains: []grammar.Child{
			&grammar.Mode{
				Begin:      grammar.Seq(`(a)`, `(b)\1`),
				BeginScope: grammar.ScopeSpec{Groups: map[int]string{1: "keyword", 2: "title"}},
				End:        grammar.Seq(`;`, `\s*`),
				EndScope:   grammar.ScopeSpec{Groups: map[int]string{1: "punctuation"}},
			},
		}},
	})
	m := lang.Mode(1)
	if m.Begin != `((a))((b)\4)` {
		t.Errorf("begin = %q", m.Begin)
	}
	if diff := cmp.Diff([]GroupScope{{1, "keyword"}, {3, "title"}}, m.BeginScope.Groups); diff != "" {
		t.Errorf("begin groups (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]GroupScope{{1, "punctuation"}, {2, ""}}, m.EndScope.Groups); diff != "" {
		t.Errorf("end groups (-want +got):\n%s", diff)
	}
}

func TestKeywordTable(t *testing.T) {
	lang := mustCompile(t, &grammar.Language{
		Name:            "kw",
		CaseInsensitive: true,
		Mode: grammar.Mode{Keywords: &grammar.Keywords{
			Pattern: `[a-z]+!?`,
			Categories: map[string][]string{
				"keyword":  {"FOO|5", "bar", "of", "list|2"},
				"_hidden":  {"zed"},
				"operator": {"|>"},
			},
		}},
	})
	want := map[string]Keyword{
		"foo":  {"keyword", 5},
		"bar":  {"keyword", 1},
		"of":   {"keyword", 0},
		"list": {"keyword", 2},
		"zed":  {"_hidden", 1},
		"|>":   {"operator", 1},
	}
	root := lang.Root()
	if diff := cmp.Diff(want, root.Keywords); diff != "" {
		t.Errorf("keywords (-want +got):\n%s", diff)
	}
	if root.KeywordRe == nil || root.KeywordRe.Source() != `[a-z]+!?` {
		t.Errorf("keyword pattern not compiled")
	}
}

func TestKeywordLastCategoryWins(t *testing.T) {
	tests := []struct {
		name  string
		order []string
		want  string
	}{
		{"declared order", []string{"type", "built_in"}, "built_in"},
		{"reversed", []string{"built_in", "type"}, "type"},
		{"undeclared sorted first", []string{"built_in"}, "built_in"},
		{"no order", nil, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang := mustCompile(t, &grammar.Language{
				Name: "kw",
				Mode: grammar.Mode{Keywords: &grammar.Keywords{
					Categories: map[string][]string{
						"built_in": {"string"},
						"type":     {"string"},
					},
					Order: tt.order,
				}},
			})
			if got := lang.Root().Keywords["string"].Category; got != tt.want {
				t.Errorf("category = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassNameDeprecated(t *testing.T) {
	var calls int
	lang, err := Compile(&grammar.Language{
		Name: "legacy",
		Mode: grammar.Mode{Contains: []grammar.Child{&grammar.Mode{ClassName: "string", Begin: grammar.Re(`'`), End: grammar.Re(`'`)}}},
	}, Options{Deprecated: func(feature, msg string) { calls++ }})
	if err != nil {
		t.Fatal(err)
	}
	if lang.Mode(1).Scope != "string" {
		t.Errorf("className not mapped to scope")
	}
	if calls != 1 {
		t.Errorf("deprecation reported %d times, want 1", calls)
	}
}

func TestMatchShorthand(t *testing.T) {
	def := &grammar.Mode{Scope: "meta", Match: grammar.Re(`@\w+`)}
	lang := mustCompile(t, &grammar.Language{Name: "m", Mode: grammar.Mode{Contains: []grammar.Child{def}}})
	m := lang.Mode(1)
	if m.Begin != `@\w+` || m.Terminator != emptyMatch {
		t.Errorf("match shorthand = begin %q end %q", m.Begin, m.Terminator)
	}
	if def.Begin.Source != "" {
		t.Errorf("definition was modified")
	}
}

func TestCompileErrors(t *testing.T) {
	child := func(m *grammar.Mode) *grammar.Language {
		return &grammar.Language{Name: "bad", Mode: grammar.Mode{Contains: []grammar.Child{m}}}
	}
	tests := []struct {
		name string
		lang *grammar.Language
	}{
		{"match with begin", child(&grammar.Mode{Match: grammar.Re("a"), Begin: grammar.Re("b")})},
		{"beforeMatch with starts", child(&grammar.Mode{BeforeMatch: "a", Begin: grammar.Re("b"), Starts: &grammar.Mode{}})},
		{"multi begin with excludeBegin", child(&grammar.Mode{
			Begin: grammar.Seq("a", "b"), ExcludeBegin: true,
			BeginScope: grammar.ScopeSpec{Groups: map[int]string{1: "x"}},
		})},
		{"multi begin without groups", child(&grammar.Mode{Begin: grammar.Seq("a", "b"), BeginScope: grammar.ScopeSpec{Wrap: "x"}})},
		{"multi end with returnEnd", child(&grammar.Mode{
			Begin: grammar.Re("a"), End: grammar.Seq("a", "b"), ReturnEnd: true,
			EndScope: grammar.ScopeSpec{Groups: map[int]string{1: "x"}},
		})},
		{"multi end without groups", child(&grammar.Mode{Begin: grammar.Re("a"), End: grammar.Seq("a", "b")})},
		{"top level self", &grammar.Language{Name: "bad", Mode: grammar.Mode{Contains: []grammar.Child{grammar.Self}}}},
		{"invalid begin", child(&grammar.Mode{Begin: grammar.Re("(")})},
		{"invalid illegal", child(&grammar.Mode{Begin: grammar.Re("a"), Illegal: grammar.Re("[")})},
		{"negative weight", &grammar.Language{Name: "bad", Mode: grammar.Mode{Keywords: &grammar.Keywords{
			Categories: map[string][]string{"keyword": {"x|-1"}},
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.lang, Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrGrammar) {
				t.Errorf("error %v does not wrap ErrGrammar", err)
			}
		})
	}
}
