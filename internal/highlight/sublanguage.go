package highlight

// processSubLanguage highlights the buffer as the active mode's embedded
// language and splices the result into the tree.
func (s *scanner) processSubLanguage() error {
	text := s.buf.String()
	if text == "" {
		return nil
	}
	sub := s.top.mode.SubLanguage

	var res *Result
	if sub.Name != "" {
		if _, ok := s.h.lookup(sub.Name); !ok {
			s.tree.AddText(text)
			return nil
		}
		var err error
		res, err = s.h.highlight(sub.Name, text, true, s.continuations[sub.Name])
		if err != nil {
			return err
		}
		s.continuations[sub.Name] = res.top
	} else {
		var err error
		res, err = s.h.highlightAuto(text, sub.Candidates)
		if err != nil {
			return err
		}
	}

	// Embedded text only counts when the mode itself scores.
	if s.top.mode.Relevance > 0 {
		s.relevance += res.Relevance
	}
	s.tree.AddSublanguage(res.Tree, res.Language)
	return nil
}
