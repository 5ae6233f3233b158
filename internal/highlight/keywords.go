package highlight

import (
	"strings"
)

// maxKeywordHits caps how many occurrences of one keyword add relevance.
const maxKeywordHits = 7

// processKeywords emits the buffer, scoping the words found in the active
// mode's keyword table.
func (s *scanner) processKeywords() error {
	mode := s.top.mode
	text := s.buf.String()
	if mode.KeywordRe == nil || len(mode.Keywords) == 0 {
		s.tree.AddText(text)
		return nil
	}

	runes := []rune(text)
	var pending strings.Builder
	last := 0
	for at := 0; at <= len(runes); {
		m, err := mode.KeywordRe.FindAt(runes, at)
		if err != nil {
			return s.modeError(s.index, err)
		}
		if m == nil {
			break
		}
		if m.Length == 0 {
			at = m.Index + 1
			continue
		}
		pending.WriteString(string(runes[last:m.Index]))
		lexeme := m.Text()
		word := lexeme
		if s.lang.CaseInsensitive {
			word = strings.ToLower(word)
		}
		if kw, ok := mode.Keywords[word]; ok {
			s.tree.AddText(pending.String())
			pending.Reset()
			s.keywordHits[word]++
			if s.keywordHits[word] <= maxKeywordHits {
				s.relevance += kw.Weight
			}
			if strings.HasPrefix(kw.Category, "_") {
				// Scores without being scoped.
				pending.WriteString(lexeme)
			} else {
				s.tree.AddKeyword(lexeme, s.lang.Alias(kw.Category))
			}
		} else {
			pending.WriteString(lexeme)
		}
		last = m.End()
		at = last
	}
	pending.WriteString(string(runes[last:]))
	s.tree.AddText(pending.String())
	return nil
}
