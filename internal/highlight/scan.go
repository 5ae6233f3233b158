package highlight

import (
	"strings"

	"github.com/dshills/glint/internal/compiler"
	"github.com/dshills/glint/internal/emitter"
	"github.com/dshills/glint/internal/grammar"
	"github.com/dshills/glint/internal/matcher"
)

// frame is one active mode on the scanner's stack.
type frame struct {
	mode   *compiler.Mode
	parent *frame
	// data is the scratch map shared by the begin and end hooks of this
	// activation; nil when the mode has no hooks.
	data    map[string]any
	matcher *matcher.Resumable[compiler.ModeID]
}

func newFrame(mode *compiler.Mode, parent *frame) *frame {
	f := &frame{mode: mode, parent: parent, matcher: mode.Matcher.Resumable()}
	if mode.OnBegin != nil || mode.OnEnd != nil {
		f.data = make(map[string]any)
	}
	return f
}

func (f *frame) name() string {
	if f.mode.Scope == "" {
		return "<unnamed>"
	}
	return f.mode.Scope
}

type lastMatch struct {
	valid bool
	kind  matcher.Kind
	index int
}

// scanner is the state of one highlight run.
type scanner struct {
	h              *Highlighter
	opts           Options
	lang           *compiler.Language
	text           []rune
	ignoreIllegals bool

	tree *emitter.TokenTree
	top  *frame

	// buf holds text not yet emitted; it is flushed through the keyword
	// matcher or a sublanguage.
	buf strings.Builder

	index       int
	relevance   int
	iterations  int
	keywordHits map[string]int
	last        lastMatch

	// resume retries the current position with the rules after the one
	// just rejected.
	resume bool

	// continuations holds, per fixed sublanguage, where its previous chunk
	// ended.
	continuations map[string]*frame
}

func newScanner(h *Highlighter, opts Options, lang *compiler.Language, code string, ignoreIllegals bool, continuation *frame) *scanner {
	s := &scanner{
		h:              h,
		opts:           opts,
		lang:           lang,
		text:           []rune(code),
		ignoreIllegals: ignoreIllegals,
		tree:           emitter.New(),
		keywordHits:    make(map[string]int),
		continuations:  make(map[string]*frame),
	}
	if continuation != nil {
		s.top = continuation
		s.reopenScopes()
	} else {
		s.top = newFrame(lang.Root(), nil)
	}
	return s
}

// reopenScopes opens the scopes of a continued mode stack, outermost first.
func (s *scanner) reopenScopes() {
	var scopes []string
	for f := s.top; f.parent != nil; f = f.parent {
		if f.mode.Scope != "" {
			scopes = append(scopes, f.mode.Scope)
		}
	}
	for i := len(scopes) - 1; i >= 0; i-- {
		s.tree.OpenNode(s.lang.Alias(scopes[i]))
	}
}

func (s *scanner) run() (*Result, error) {
	if err := s.scan(); err != nil {
		return nil, err
	}
	s.tree.Finalize()
	return &Result{
		Language:  s.lang.Name,
		Relevance: s.relevance,
		Value:     s.tree.HTML(s.opts.ClassPrefix),
		Code:      string(s.text),
		Tree:      s.tree,
		top:       s.top,
	}, nil
}

func (s *scanner) scan() error {
	s.top.matcher.ConsiderAll()
	for {
		s.iterations++
		if s.resume {
			s.resume = false
		} else {
			s.top.matcher.ConsiderAll()
		}
		s.top.matcher.LastIndex = s.index

		m, err := s.top.matcher.Exec(s.text)
		if err != nil {
			return s.modeError(s.index, err)
		}
		if m == nil {
			break
		}
		if s.iterations > s.opts.MaxIterations && s.iterations > s.opts.IterationRatio*m.Index {
			return &RunawayError{Language: s.lang.Name, Iterations: s.iterations, Index: m.Index}
		}

		n, err := s.processLexeme(string(s.text[s.index:m.Index]), m)
		if err != nil {
			return err
		}
		s.index = m.Index + n
		if s.index > len(s.text) {
			s.index = len(s.text)
			break
		}
	}
	s.buf.WriteString(string(s.text[s.index:]))
	return s.processBuffer()
}

// modeError reports err in the active mode at rune offset at.
func (s *scanner) modeError(at int, err error) error {
	return &ModeError{Language: s.lang.Name, Mode: s.top.name(), Index: at, Err: err}
}

// processLexeme handles one match and returns how many runes of the
// lexeme it consumed.
func (s *scanner) processLexeme(before string, m *matcher.Match[compiler.ModeID]) (int, error) {
	s.buf.WriteString(before)
	lexeme := m.Lexeme()

	// A zero-width begin followed by a zero-width end at the same spot
	// would loop forever; consume one character instead.
	if s.last.valid && s.last.kind == matcher.Begin && m.Rule.Kind == matcher.End &&
		s.last.index == m.Index && lexeme == "" {
		if m.Index < len(s.text) {
			s.buf.WriteRune(s.text[m.Index])
		}
		if !s.opts.SafeMode {
			return 0, s.modeError(m.Index, ErrZeroWidthMatch)
		}
		return 1, nil
	}
	s.last = lastMatch{valid: true, kind: m.Rule.Kind, index: m.Index}

	switch m.Rule.Kind {
	case matcher.Begin:
		return s.doBeginMatch(m)
	case matcher.Illegal:
		return 0, s.illegal(m)
	case matcher.End:
		n, ended, err := s.doEndMatch(m)
		if err != nil || ended {
			return n, err
		}
	}

	// An end pattern matched but no mode accepted it; keep the text.
	s.buf.WriteString(lexeme)
	return m.Length, nil
}

func (s *scanner) illegal(m *matcher.Match[compiler.ModeID]) error {
	from := m.Index - contextRadius
	if from < 0 {
		from = 0
	}
	to := m.Index + contextRadius
	if to > len(s.text) {
		to = len(s.text)
	}
	return &IllegalLexemeError{
		Language: s.lang.Name,
		Mode:     s.top.name(),
		Lexeme:   m.Lexeme(),
		Index:    m.Index,
		Context:  string(s.text[from:to]),
	}
}

func (s *scanner) matchInfo(m *matcher.Match[compiler.ModeID]) *grammar.MatchInfo {
	return &grammar.MatchInfo{Index: m.Index, Groups: m.Groups, Input: s.text}
}

func (s *scanner) doBeginMatch(m *matcher.Match[compiler.ModeID]) (int, error) {
	lexeme := m.Lexeme()
	mode := s.lang.Mode(m.Rule.Value)
	next := newFrame(mode, s.top)

	if mode.GuardDot && m.Index > 0 && s.text[m.Index-1] == '.' {
		return s.doIgnore(m), nil
	}
	if mode.OnBegin != nil {
		switch mode.OnBegin(s.matchInfo(m), next.data) {
		case grammar.Ignore:
			return s.doIgnore(m), nil
		case grammar.Abort:
			return 0, s.modeError(m.Index, ErrHookAborted)
		}
	}

	if mode.Skip {
		s.buf.WriteString(lexeme)
	} else {
		if mode.ExcludeBegin {
			s.buf.WriteString(lexeme)
		}
		if err := s.processBuffer(); err != nil {
			return 0, err
		}
		if !mode.ReturnBegin && !mode.ExcludeBegin {
			s.buf.WriteString(lexeme)
		}
	}
	if err := s.startNewMode(next, m); err != nil {
		return 0, err
	}
	if mode.ReturnBegin {
		return 0, nil
	}
	return m.Length, nil
}

// doIgnore rejects a begin match. When the matcher has no further rule to
// try at this position the first character is kept as text.
func (s *scanner) doIgnore(m *matcher.Match[compiler.ModeID]) int {
	if !s.top.matcher.Resuming() {
		if m.Index < len(s.text) {
			s.buf.WriteRune(s.text[m.Index])
		}
		return 1
	}
	s.resume = true
	return 0
}

// startNewMode opens the scope of f and pushes it.
func (s *scanner) startNewMode(f *frame, m *matcher.Match[compiler.ModeID]) error {
	mode := f.mode
	if mode.Scope != "" {
		s.tree.OpenNode(s.lang.Alias(mode.Scope))
	}
	switch {
	case mode.BeginScope.Wrap != "":
		s.tree.AddKeyword(s.buf.String(), s.lang.Alias(mode.BeginScope.Wrap))
		s.buf.Reset()
	case mode.BeginScope.Groups != nil:
		if err := s.emitGroups(mode.BeginScope.Groups, m); err != nil {
			return err
		}
		s.buf.Reset()
	}
	s.top = f
	return nil
}

// emitGroups emits the groups of a multi-fragment match, scanning
// unscoped groups for keywords.
func (s *scanner) emitGroups(groups []compiler.GroupScope, m *matcher.Match[compiler.ModeID]) error {
	for _, g := range groups {
		if g.Group >= len(m.Groups) {
			continue
		}
		text := m.Groups[g.Group].Text
		if g.Scope != "" {
			s.tree.AddKeyword(text, s.lang.Alias(g.Scope))
			continue
		}
		s.buf.Reset()
		s.buf.WriteString(text)
		if err := s.processKeywords(); err != nil {
			return err
		}
		s.buf.Reset()
	}
	return nil
}

// doEndMatch closes the modes ended by m. It reports false when no mode
// accepts the match.
func (s *scanner) doEndMatch(m *matcher.Match[compiler.ModeID]) (int, bool, error) {
	lexeme := m.Lexeme()
	endFrame, err := s.endOfMode(s.top, m)
	if err != nil || endFrame == nil {
		return 0, false, err
	}

	origin := s.top.mode
	switch {
	case origin.EndScope.Wrap != "":
		if err := s.processBuffer(); err != nil {
			return 0, false, err
		}
		s.tree.AddKeyword(lexeme, s.lang.Alias(origin.EndScope.Wrap))
	case origin.EndScope.Groups != nil:
		if err := s.processBuffer(); err != nil {
			return 0, false, err
		}
		if err := s.emitGroups(origin.EndScope.Groups, m); err != nil {
			return 0, false, err
		}
	case origin.Skip:
		s.buf.WriteString(lexeme)
	default:
		if !origin.ReturnEnd && !origin.ExcludeEnd {
			s.buf.WriteString(lexeme)
		}
		if err := s.processBuffer(); err != nil {
			return 0, false, err
		}
		if origin.ExcludeEnd {
			s.buf.WriteString(lexeme)
		}
	}

	for {
		if s.top.mode.Scope != "" {
			s.tree.CloseNode()
		}
		if !s.top.mode.Skip && s.top.mode.SubLanguage == nil {
			s.relevance += s.top.mode.Relevance
		}
		s.top = s.top.parent
		if s.top == endFrame.parent {
			break
		}
	}

	if endFrame.mode.Starts != compiler.NoMode {
		starts := s.lang.Mode(endFrame.mode.Starts)
		if err := s.startNewMode(newFrame(starts, s.top), m); err != nil {
			return 0, false, err
		}
	}
	if origin.ReturnEnd {
		return 0, true, nil
	}
	return m.Length, true, nil
}

// endOfMode finds the frame an end match closes: f itself when its end
// pattern matches at the lexeme, an ancestor when f ends its parent, or
// what its parent would close when f ends with its parent.
func (s *scanner) endOfMode(f *frame, m *matcher.Match[compiler.ModeID]) (*frame, error) {
	if f.parent == nil {
		return nil, nil
	}
	if f.mode.EndRe != nil {
		res, err := f.mode.EndRe.MatchAt(s.text, m.Index)
		if err != nil {
			return nil, s.modeError(m.Index, err)
		}
		matched := res != nil
		if matched && f.mode.OnEnd != nil {
			info := &grammar.MatchInfo{Index: m.Index, Groups: res.Groups, Input: s.text}
			switch f.mode.OnEnd(info, f.data) {
			case grammar.Ignore:
				matched = false
			case grammar.Abort:
				return nil, s.modeError(m.Index, ErrHookAborted)
			}
		}
		if matched {
			for f.mode.EndsParent && f.parent.parent != nil {
				f = f.parent
			}
			return f, nil
		}
	}
	if f.mode.EndsWithParent {
		return s.endOfMode(f.parent, m)
	}
	return nil, nil
}

func (s *scanner) processBuffer() error {
	var err error
	if s.top.mode.SubLanguage != nil {
		err = s.processSubLanguage()
	} else {
		err = s.processKeywords()
	}
	s.buf.Reset()
	return err
}
