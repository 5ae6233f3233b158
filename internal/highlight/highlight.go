package highlight

import (
	"errors"

	"github.com/dshills/glint/internal/compiler"
)

// HighlightOptions selects how Highlight treats the text.
type HighlightOptions struct {
	// Language is the name or alias of the language.
	Language string

	// IgnoreIllegals turns a forbidden lexeme into an Illegal result
	// instead of an error.
	IgnoreIllegals bool
}

// Highlight highlights code as the given language, running the plugin
// hooks around the call.
//
// A lexeme forbidden by the grammar fails the call with an
// *IllegalLexemeError unless IgnoreIllegals is set, in which case the
// result has Illegal set and holds the escaped text. Unknown languages,
// grammar defects and runaway scans always fail.
func (h *Highlighter) Highlight(code string, opts HighlightOptions) (*Result, error) {
	ctx := &BeforeHighlightContext{Code: code, Language: opts.Language}
	if err := h.fireBefore(ctx); err != nil {
		return nil, err
	}

	res := ctx.Result
	if res == nil {
		var err error
		if res, err = h.highlight(ctx.Language, ctx.Code, opts.IgnoreIllegals, nil); err != nil {
			return nil, err
		}
	}
	res.Code = ctx.Code

	if err := h.fireAfter(res); err != nil {
		return nil, err
	}
	return res, nil
}

// highlight runs one scan. Continuation, when set, is the mode stack a
// previous chunk of the same sublanguage ended in.
func (h *Highlighter) highlight(name, code string, ignoreIllegals bool, continuation *frame) (*Result, error) {
	e, ok := h.lookup(name)
	if !ok {
		h.logger().Error("Could not find the language '%s', did you forget to load/include a language module?", name)
		return nil, unknownLanguage(name)
	}
	lang, err := h.compiled(e)
	if err != nil {
		return nil, err
	}
	opts := h.Options()

	s := newScanner(h, opts, lang, code, ignoreIllegals, continuation)
	res, err := s.run()
	if err == nil {
		res.Language = e.name
		return res, nil
	}

	var illegal *IllegalLexemeError
	var runaway *RunawayError
	var grammarErr *compiler.GrammarError
	switch {
	case errors.As(err, &illegal):
		if !ignoreIllegals {
			return nil, err
		}
		res := plainResult(e.name, code)
		res.Illegal = true
		res.Err = err
		return res, nil
	case errors.As(err, &runaway), errors.As(err, &grammarErr), errors.Is(err, ErrUnknownLanguage):
		return nil, err
	case opts.SafeMode:
		h.logger().WithField("language", e.name).WithError(err).Error("highlighting failed, falling back to plain text")
		res := plainResult(e.name, code)
		res.Err = err
		return res, nil
	default:
		return nil, err
	}
}
