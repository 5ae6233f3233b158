package emitter

import (
	"strings"
)

// DefaultClassPrefix is prepended to every scope class.
const DefaultClassPrefix = "hljs-"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// EscapeHTML escapes the five characters reserved in markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var htmlUnescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#x27;", "'",
)

// UnescapeHTML reverses EscapeHTML.
func UnescapeHTML(s string) string {
	return htmlUnescaper.Replace(s)
}

// ScopeClass returns the class attribute value for a scope.
//
// Embedded languages map to "language-NAME". A dotted scope becomes one
// class per segment, each segment after the first suffixed with one more
// underscore than the previous: "title.class.inherited" gives
// "hljs-title class_ inherited__".
func ScopeClass(scope, prefix string) string {
	if strings.HasPrefix(scope, LanguagePrefix) {
		return "language-" + strings.TrimPrefix(scope, LanguagePrefix)
	}
	if !strings.Contains(scope, ".") {
		return prefix + scope
	}
	pieces := strings.Split(scope, ".")
	classes := make([]string, len(pieces))
	classes[0] = prefix + pieces[0]
	for i, p := range pieces[1:] {
		classes[i+1] = p + strings.Repeat("_", i+1)
	}
	return strings.Join(classes, " ")
}

// HTMLRenderer renders a tree as nested <span> elements.
type HTMLRenderer struct {
	prefix string
	b      strings.Builder
}

// NewHTMLRenderer returns a renderer using the given class prefix.
func NewHTMLRenderer(classPrefix string) *HTMLRenderer {
	return &HTMLRenderer{prefix: classPrefix}
}

func (r *HTMLRenderer) AddText(text string) {
	r.b.WriteString(EscapeHTML(text))
}

func (r *HTMLRenderer) OpenNode(n *Node) {
	if n.Scope == "" {
		return
	}
	r.b.WriteString(`<span class="`)
	r.b.WriteString(ScopeClass(n.Scope, r.prefix))
	r.b.WriteString(`">`)
}

func (r *HTMLRenderer) CloseNode(n *Node) {
	if n.Scope == "" {
		return
	}
	r.b.WriteString("</span>")
}

// Value returns the markup rendered so far.
func (r *HTMLRenderer) Value() string {
	return r.b.String()
}

// HTML renders the tree with the given class prefix.
func (t *TokenTree) HTML(classPrefix string) string {
	r := NewHTMLRenderer(classPrefix)
	t.Walk(r)
	return r.Value()
}
