package highlight

import (
	"errors"
	"sort"

	"github.com/dshills/glint/internal/compiler"
)

// HighlightAuto highlights code as each candidate language and returns the
// most relevant result, with the runner-up in SecondBest. Plain text is
// always a candidate; it wins when no language scores.
//
// Without candidates the Languages option is used, and without that every
// registered language. Unknown names and languages excluded from
// auto-detection are skipped.
func (h *Highlighter) HighlightAuto(code string, candidates []string) (*Result, error) {
	ctx := &BeforeHighlightContext{Code: code}
	if err := h.fireBefore(ctx); err != nil {
		return nil, err
	}

	res := ctx.Result
	if res == nil {
		var err error
		if ctx.Language != "" {
			res, err = h.highlight(ctx.Language, ctx.Code, false, nil)
		} else {
			res, err = h.highlightAuto(ctx.Code, candidates)
		}
		if err != nil {
			return nil, err
		}
	}
	res.Code = ctx.Code

	if err := h.fireAfter(res); err != nil {
		return nil, err
	}
	return res, nil
}

type scored struct {
	res      *Result
	superset string
}

func (h *Highlighter) highlightAuto(code string, candidates []string) (*Result, error) {
	if len(candidates) == 0 {
		candidates = h.Options().Languages
	}
	if len(candidates) == 0 {
		candidates = h.ListLanguages()
	}

	results := []scored{{res: plainResult("", code)}}
	seen := make(map[string]bool)
	for _, name := range candidates {
		e, ok := h.lookup(name)
		if !ok || e.def.DisableAutodetect || seen[e.name] {
			continue
		}
		seen[e.name] = true

		res, err := h.candidate(e, code)
		if err != nil {
			return nil, err
		}
		sc := scored{res: res}
		if sup, ok := h.lookup(e.def.SupersetOf); ok {
			sc.superset = sup.name
		}
		results = append(results, sc)
	}

	// A language scoring the same as a superset of it wins.
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.res.Relevance != b.res.Relevance {
			return a.res.Relevance > b.res.Relevance
		}
		return a.res.Language != "" && b.superset == a.res.Language
	})

	best := results[0].res
	if len(results) > 1 {
		best.SecondBest = results[1].res
	}
	return best, nil
}

// candidate scores one language for auto-detection. Failures other than
// grammar defects are kept on a zero-relevance result so one broken
// grammar does not end the sweep.
func (h *Highlighter) candidate(e *entry, code string) (*Result, error) {
	res, err := h.highlight(e.name, code, false, nil)
	if err == nil {
		return res, nil
	}

	var grammarErr *compiler.GrammarError
	if errors.As(err, &grammarErr) {
		return nil, err
	}
	res = plainResult(e.name, code)
	res.Err = err
	var illegal *IllegalLexemeError
	if errors.As(err, &illegal) {
		res.Illegal = true
	} else {
		h.logger().WithField("language", e.name).WithError(err).Warn("auto-detection candidate failed")
	}
	return res, nil
}
