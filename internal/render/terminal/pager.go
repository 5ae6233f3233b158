package terminal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/glint/internal/highlight"
	"github.com/dshills/glint/internal/logging"
)

// LoadFunc produces the result a pager shows. It is called on start and
// on every reload.
type LoadFunc func() (*highlight.Result, error)

type (
	reloadRequest struct{}
	quitRequest   struct{}
)

// Pager is a scrollable full-screen view of a highlighted result.
// The last screen row holds the status line.
type Pager struct {
	screen  tcell.Screen
	painter *Painter
	load    LoadFunc
	title   string
	logger  *logging.Logger

	mu       sync.Mutex
	lines    []Line
	width    int // widest line
	language string
	err      error
	row, col int
}

// PagerOption configures a Pager.
type PagerOption func(*Pager)

// WithTitle sets the name shown in the status line.
func WithTitle(title string) PagerOption {
	return func(p *Pager) { p.title = title }
}

// WithPagerLogger sets the logger for load failures.
func WithPagerLogger(l *logging.Logger) PagerOption {
	return func(p *Pager) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPager returns a pager drawing on screen. The screen must be
// initialized by the caller, who also finalizes it.
func NewPager(screen tcell.Screen, painter *Painter, load LoadFunc, opts ...PagerOption) *Pager {
	p := &Pager{
		screen:  screen,
		painter: painter,
		load:    load,
		logger:  logging.Null(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Refresh calls the load function and lays the result out again,
// keeping the scroll position where it still fits. A failed load keeps
// the previous text and shows the error in the status line.
func (p *Pager) Refresh() error {
	res, err := p.load()
	if err == nil && (res == nil || res.Tree == nil) {
		err = errors.New("no result to show")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.err = err
	if err != nil {
		p.logger.WithError(err).Warn("reload of %s failed", p.title)
		return err
	}
	p.lines = p.painter.Layout(res.Tree)
	p.language = res.Language
	p.width = 0
	for _, l := range p.lines {
		p.width = max(p.width, l.Width())
	}
	p.clamp()
	return nil
}

// Reload asks a running pager to refresh. It is safe to call from any
// goroutine.
func (p *Pager) Reload() {
	_ = p.screen.PostEvent(tcell.NewEventInterrupt(reloadRequest{}))
}

// Run draws the pager and handles events until the user quits or ctx is
// done.
func (p *Pager) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.screen.PostEvent(tcell.NewEventInterrupt(quitRequest{}))
		case <-stop:
		}
	}()

	_ = p.Refresh()
	p.Draw()
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if p.HandleEvent(ev) {
			return ctx.Err()
		}
		p.Draw()
	}
}

// HandleEvent applies one event and reports whether the pager should
// quit.
func (p *Pager) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		p.screen.Sync()
		p.mu.Lock()
		p.clamp()
		p.mu.Unlock()
	case *tcell.EventInterrupt:
		switch ev.Data().(type) {
		case quitRequest:
			return true
		case reloadRequest:
			_ = p.Refresh()
		}
	case *tcell.EventKey:
		return p.handleKey(ev)
	}
	return false
}

func (p *Pager) handleKey(ev *tcell.EventKey) bool {
	_, h := p.textSize()
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		p.scroll(-1, 0)
	case tcell.KeyDown, tcell.KeyEnter:
		p.scroll(1, 0)
	case tcell.KeyLeft:
		p.scroll(0, -1)
	case tcell.KeyRight:
		p.scroll(0, 1)
	case tcell.KeyPgUp:
		p.scroll(-h, 0)
	case tcell.KeyPgDn:
		p.scroll(h, 0)
	case tcell.KeyHome:
		p.scrollTo(0)
	case tcell.KeyEnd:
		p.scrollTo(-1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'k':
			p.scroll(-1, 0)
		case 'j':
			p.scroll(1, 0)
		case 'h':
			p.scroll(0, -1)
		case 'l':
			p.scroll(0, 1)
		case ' ':
			p.scroll(h, 0)
		case 'b':
			p.scroll(-h, 0)
		case 'g':
			p.scrollTo(0)
		case 'G':
			p.scrollTo(-1)
		case 'r':
			_ = p.Refresh()
		}
	}
	return false
}

// Position returns the first visible line and column.
func (p *Pager) Position() (row, col int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.row, p.col
}

func (p *Pager) scroll(rows, cols int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.row += rows
	p.col += cols
	p.clamp()
}

// scrollTo moves to the first line, or the last page for a negative row.
func (p *Pager) scrollTo(row int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if row < 0 {
		row = len(p.lines)
	}
	p.row = row
	p.clamp()
}

// textSize is the screen area above the status line.
func (p *Pager) textSize() (int, int) {
	w, h := p.screen.Size()
	return w, max(h-1, 0)
}

// clamp keeps the scroll offsets inside the text. Callers hold p.mu.
func (p *Pager) clamp() {
	w, h := p.textSize()
	p.row = min(p.row, max(len(p.lines)-h, 0))
	p.col = min(p.col, max(p.width-w, 0))
	p.row = max(p.row, 0)
	p.col = max(p.col, 0)
}

// Draw paints the text and status line and shows the screen.
func (p *Pager) Draw() {
	p.mu.Lock()
	defer p.mu.Unlock()

	theme := p.painter.Theme()
	w, h := p.textSize()
	Draw(p.screen, p.lines, Viewport{Width: w, Height: h, Row: p.row, Col: p.col}, theme.Base)
	if _, sh := p.screen.Size(); sh > 0 {
		DrawString(p.screen, 0, h, w, p.status(h), theme.Status)
	}
	p.screen.Show()
}

// status formats the status line. Callers hold p.mu.
func (p *Pager) status(height int) string {
	lang := p.language
	if lang == "" {
		lang = "plaintext"
	}
	last := min(p.row+height, len(p.lines))
	s := fmt.Sprintf(" %s | %s | line %d/%d", p.title, lang, last, len(p.lines))
	if p.err != nil {
		s += " | " + p.err.Error()
	}
	return s
}
