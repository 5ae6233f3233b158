package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/glint/internal/emitter"
)

// DefaultTabWidth is the tab stop interval.
const DefaultTabWidth = 4

// Cell is one screen cell. Width is 1 or 2; Comb holds combining runes
// drawn with Rune.
type Cell struct {
	Rune  rune
	Comb  []rune
	Style tcell.Style
	Width int
}

// Line is a row of cells.
type Line []Cell

// Width returns the number of columns the line occupies.
func (l Line) Width() int {
	w := 0
	for _, c := range l {
		w += c.Width
	}
	return w
}

// Painter turns scope trees into styled lines.
type Painter struct {
	theme    *Theme
	tabWidth int
}

// NewPainter returns a painter using theme.
func NewPainter(theme *Theme) *Painter {
	return &Painter{theme: theme, tabWidth: DefaultTabWidth}
}

// SetTabWidth changes the tab stop interval.
func (p *Painter) SetTabWidth(n int) {
	if n > 0 {
		p.tabWidth = n
	}
}

// Theme returns the painter's theme.
func (p *Painter) Theme() *Theme {
	return p.theme
}

// Layout splits the tree into lines of styled cells. Scopes without a
// style of their own inherit the style of the enclosing scope.
func (p *Painter) Layout(tree *emitter.TokenTree) []Line {
	l := &layout{
		painter: p,
		styles:  []tcell.Style{p.theme.Base},
		lines:   []Line{nil},
	}
	tree.Walk(l)
	return l.lines
}

type layout struct {
	painter *Painter
	styles  []tcell.Style
	lines   []Line
	col     int
}

func (l *layout) OpenNode(n *emitter.Node) {
	style := l.styles[len(l.styles)-1]
	if s, ok := l.painter.theme.StyleFor(n.Scope); ok {
		style = s
	}
	l.styles = append(l.styles, style)
}

func (l *layout) CloseNode(*emitter.Node) {
	l.styles = l.styles[:len(l.styles)-1]
}

func (l *layout) AddText(text string) {
	style := l.styles[len(l.styles)-1]
	for _, r := range text {
		switch r {
		case '\n':
			l.lines = append(l.lines, nil)
			l.col = 0
		case '\r':
		case '\t':
			n := l.painter.tabWidth - l.col%l.painter.tabWidth
			for i := 0; i < n; i++ {
				l.put(Cell{Rune: ' ', Style: style, Width: 1})
			}
		default:
			w := runewidth.RuneWidth(r)
			if w == 0 {
				l.combine(r)
				continue
			}
			l.put(Cell{Rune: r, Style: style, Width: w})
		}
	}
}

func (l *layout) put(c Cell) {
	last := len(l.lines) - 1
	l.lines[last] = append(l.lines[last], c)
	l.col += c.Width
}

// combine attaches a zero-width rune to the previous cell. At the start
// of a line there is nothing to attach to and the rune is dropped.
func (l *layout) combine(r rune) {
	line := l.lines[len(l.lines)-1]
	if len(line) == 0 {
		return
	}
	prev := &line[len(line)-1]
	prev.Comb = append(prev.Comb, r)
}

// Viewport is the screen region a Draw call fills and the scroll offset
// of the text inside it.
type Viewport struct {
	X, Y          int
	Width, Height int
	Row, Col      int
}

// Draw paints lines into the viewport, filling cells past the text with
// base. A wide rune cut by either edge is replaced by a space.
func Draw(s tcell.Screen, lines []Line, vp Viewport, base tcell.Style) {
	for y := 0; y < vp.Height; y++ {
		var line Line
		if row := vp.Row + y; row >= 0 && row < len(lines) {
			line = lines[row]
		}
		drawLine(s, line, vp, vp.Y+y, base)
	}
}

func drawLine(s tcell.Screen, line Line, vp Viewport, screenY int, base tcell.Style) {
	x := 0 // column within the text
	for _, c := range line {
		start, end := x-vp.Col, x-vp.Col+c.Width
		x += c.Width
		if end <= 0 {
			continue
		}
		if start >= vp.Width {
			break
		}
		if start < 0 || end > vp.Width {
			for col := max(start, 0); col < min(end, vp.Width); col++ {
				s.SetContent(vp.X+col, screenY, ' ', nil, c.Style)
			}
			continue
		}
		s.SetContent(vp.X+start, screenY, c.Rune, c.Comb, c.Style)
	}
	for col := max(x-vp.Col, 0); col < vp.Width; col++ {
		s.SetContent(vp.X+col, screenY, ' ', nil, base)
	}
}

// DrawString writes text at x, y clipped to width, padding with style.
func DrawString(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > width {
			break
		}
		s.SetContent(x+col, y, r, nil, style)
		col += w
	}
	for ; col < width; col++ {
		s.SetContent(x+col, y, ' ', nil, style)
	}
}
