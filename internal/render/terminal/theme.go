package terminal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ErrUnknownTheme is returned for a theme name with no built-in theme.
var ErrUnknownTheme = errors.New("unknown theme")

// Theme maps scopes to styles.
type Theme struct {
	Name string

	// Base styles unscoped text and fills empty cells.
	Base tcell.Style

	// Status styles the pager's status line.
	Status tcell.Style

	scopes map[string]tcell.Style
}

// NewTheme returns a theme with no scope styles.
func NewTheme(name string, base tcell.Style) *Theme {
	return &Theme{
		Name:   name,
		Base:   base,
		Status: base.Reverse(true),
		scopes: make(map[string]tcell.Style),
	}
}

// Set styles a scope.
func (t *Theme) Set(scope string, style tcell.Style) {
	t.scopes[scope] = style
}

// Scopes lists the styled scopes in order.
func (t *Theme) Scopes() []string {
	names := make([]string, 0, len(t.scopes))
	for s := range t.scopes {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// StyleFor returns the style of scope, trying its dotted parents in turn.
// It reports false when neither the scope nor a parent is styled.
func (t *Theme) StyleFor(scope string) (tcell.Style, bool) {
	for scope != "" {
		if style, ok := t.scopes[scope]; ok {
			return style, true
		}
		i := strings.LastIndexByte(scope, '.')
		if i < 0 {
			break
		}
		scope = scope[:i]
	}
	return t.Base, false
}

// Clone returns an independent copy.
func (t *Theme) Clone() *Theme {
	c := NewTheme(t.Name, t.Base)
	c.Status = t.Status
	for k, v := range t.scopes {
		c.scopes[k] = v
	}
	return c
}

// ParseStyle applies a style spec to base. A spec is a space-separated
// list of a foreground color, the attributes bold, italic, underline,
// dim and reverse, and optionally "on" followed by a background color.
// Colors are names known to tcell or #rrggbb.
func ParseStyle(base tcell.Style, spec string) (tcell.Style, error) {
	style := base
	fields := strings.Fields(spec)
	for i := 0; i < len(fields); i++ {
		f := strings.ToLower(fields[i])
		switch f {
		case "bold":
			style = style.Bold(true)
		case "italic":
			style = style.Italic(true)
		case "underline":
			style = style.Underline(true)
		case "dim":
			style = style.Dim(true)
		case "reverse":
			style = style.Reverse(true)
		case "on":
			if i+1 >= len(fields) {
				return base, fmt.Errorf("style %q: missing background after on", spec)
			}
			i++
			c, err := parseColor(fields[i])
			if err != nil {
				return base, fmt.Errorf("style %q: %w", spec, err)
			}
			style = style.Background(c)
		default:
			c, err := parseColor(f)
			if err != nil {
				return base, fmt.Errorf("style %q: %w", spec, err)
			}
			style = style.Foreground(c)
		}
	}
	return style, nil
}

func parseColor(name string) (tcell.Color, error) {
	if strings.EqualFold(name, "default") {
		return tcell.ColorDefault, nil
	}
	c := tcell.GetColor(strings.ToLower(name))
	if c == tcell.ColorDefault {
		return c, fmt.Errorf("unknown color %q", name)
	}
	return c, nil
}

var builtinThemes = map[string]func() *Theme{
	"default": DefaultTheme,
	"mono":    MonoTheme,
}

// ThemeNames lists the built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(builtinThemes))
	for n := range builtinThemes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadTheme returns the built-in theme name with the scope specs in
// overrides applied on top.
func LoadTheme(name string, overrides map[string]string) (*Theme, error) {
	build, ok := builtinThemes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	t := build()

	scopes := make([]string, 0, len(overrides))
	for s := range overrides {
		scopes = append(scopes, s)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		style, err := ParseStyle(t.Base, overrides[scope])
		if err != nil {
			return nil, fmt.Errorf("theme scope %s: %w", scope, err)
		}
		t.Set(scope, style)
	}
	return t, nil
}

// DefaultTheme colors the common highlight scopes on the terminal's
// default background.
func DefaultTheme() *Theme {
	t := NewTheme("default", tcell.StyleDefault)
	fg := func(c tcell.Color) tcell.Style { return t.Base.Foreground(c) }

	t.Set("keyword", fg(tcell.ColorMediumPurple).Bold(true))
	t.Set("built_in", fg(tcell.ColorTeal))
	t.Set("type", fg(tcell.ColorDarkCyan))
	t.Set("literal", fg(tcell.ColorDodgerBlue))
	t.Set("number", fg(tcell.ColorDarkOrange))
	t.Set("operator", fg(tcell.ColorSilver))
	t.Set("punctuation", fg(tcell.ColorGray))
	t.Set("string", fg(tcell.ColorGreen))
	t.Set("regexp", fg(tcell.ColorOlive))
	t.Set("symbol", fg(tcell.ColorFuchsia))
	t.Set("subst", fg(tcell.ColorSilver))
	t.Set("char.escape", fg(tcell.ColorGold))
	t.Set("comment", fg(tcell.ColorGray).Italic(true))
	t.Set("doctag", fg(tcell.ColorGray).Bold(true))
	t.Set("meta", fg(tcell.ColorSteelBlue))
	t.Set("title", fg(tcell.ColorGoldenrod))
	t.Set("title.class", fg(tcell.ColorDarkCyan).Bold(true))
	t.Set("params", fg(tcell.ColorSilver))
	t.Set("variable", fg(tcell.ColorLightCoral))
	t.Set("attr", fg(tcell.ColorCornflowerBlue))
	t.Set("attribute", fg(tcell.ColorCornflowerBlue))
	t.Set("tag", fg(tcell.ColorIndianRed))
	t.Set("name", fg(tcell.ColorIndianRed))
	t.Set("section", fg(tcell.ColorGoldenrod).Bold(true))
	t.Set("emphasis", t.Base.Italic(true))
	t.Set("strong", t.Base.Bold(true))
	t.Set("addition", fg(tcell.ColorGreen))
	t.Set("deletion", fg(tcell.ColorRed))
	return t
}

// MonoTheme uses attributes only.
func MonoTheme() *Theme {
	t := NewTheme("mono", tcell.StyleDefault)
	t.Set("keyword", t.Base.Bold(true))
	t.Set("title", t.Base.Bold(true))
	t.Set("comment", t.Base.Dim(true))
	t.Set("string", t.Base.Italic(true))
	t.Set("meta", t.Base.Underline(true))
	return t
}
