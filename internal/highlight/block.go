package highlight

import (
	"strings"
)

// markupPattern finds an element, comment or declaration in block text.
const markupPattern = `<[a-z!/?]`

// HighlightBlock highlights the text of a code block whose class attribute
// is classAttr. The language comes from a lang-xxx or language-xxx class,
// or from any class naming a registered language; without one the text is
// auto-detected. A no-highlight class, or a lang- class naming an unknown
// language, leaves the block alone and returns nil.
//
// Text that already contains markup is logged unless IgnoreUnescapedHTML
// is set, and fails with an *HTMLInjectionError when ThrowUnescapedHTML is.
func (h *Highlighter) HighlightBlock(classAttr, code string) (*Result, error) {
	language, err := h.blockLanguage(classAttr)
	if err != nil {
		return nil, err
	}
	skip, err := h.noHighlight(language)
	if err != nil || skip {
		return nil, err
	}

	markup, err := h.pattern(markupPattern)
	if err != nil {
		return nil, err
	}
	found, err := markup.FindAt([]rune(code), 0)
	if err != nil {
		return nil, err
	}
	if found != nil {
		opts := h.Options()
		if !opts.IgnoreUnescapedHTML {
			h.logger().Warn("One of your code blocks includes unescaped HTML. This is a potentially serious security risk.")
		}
		if opts.ThrowUnescapedHTML {
			return nil, &HTMLInjectionError{HTML: code}
		}
	}

	if language == "" {
		return h.HighlightAuto(code, nil)
	}
	return h.Highlight(code, HighlightOptions{Language: language, IgnoreIllegals: true})
}

// blockLanguage picks the language named by a block's classes, "" when
// none does.
func (h *Highlighter) blockLanguage(classAttr string) (string, error) {
	opts := h.Options()
	detect, err := h.pattern(opts.LanguageDetectPattern)
	if err != nil {
		return "", err
	}
	m, err := detect.FindAt([]rune(classAttr), 0)
	if err != nil {
		return "", err
	}
	if m != nil && len(m.Groups) > 1 && m.Groups[1].Matched {
		name := m.Groups[1].Text
		if _, ok := h.lookup(name); ok {
			return name, nil
		}
		h.logger().Warn("Could not find the language '%s', did you forget to load/include a language module?", name)
		h.logger().Warn("Falling back to no-highlight mode for this block.")
		return "no-highlight", nil
	}

	for _, class := range strings.Fields(classAttr) {
		skip, err := h.noHighlight(class)
		if err != nil {
			return "", err
		}
		if _, ok := h.lookup(class); ok || skip {
			return class, nil
		}
	}
	return "", nil
}

func (h *Highlighter) noHighlight(class string) (bool, error) {
	if class == "" {
		return false, nil
	}
	re, err := h.pattern(h.Options().NoHighlightPattern)
	if err != nil {
		return false, err
	}
	m, err := re.FindAt([]rune(class), 0)
	return m != nil, err
}
