package grammar

// Clone returns a deep copy of the language. Modes shared between several
// places stay shared in the copy; hooks and extensions are reused as is.
func (l *Language) Clone() *Language {
	if l == nil {
		return nil
	}
	c := newCloner()
	out := *l
	out.Mode = *c.mode(&l.Mode)
	out.Aliases = append([]string(nil), l.Aliases...)
	if l.ClassNameAliases != nil {
		out.ClassNameAliases = make(map[string]string, len(l.ClassNameAliases))
		for k, v := range l.ClassNameAliases {
			out.ClassNameAliases[k] = v
		}
	}
	out.Extensions = append([]Extension(nil), l.Extensions...)
	return &out
}

// Clone returns a deep copy of the mode, preserving shared sub-modes.
func (m *Mode) Clone() *Mode {
	return newCloner().mode(m)
}

type cloner struct {
	seen map[*Mode]*Mode
}

func newCloner() *cloner {
	return &cloner{seen: make(map[*Mode]*Mode)}
}

func (c *cloner) mode(m *Mode) *Mode {
	if m == nil {
		return nil
	}
	if done, ok := c.seen[m]; ok {
		return done
	}
	out := new(Mode)
	c.seen[m] = out
	*out = *m

	out.Begin = m.Begin.clone()
	out.End = m.End.clone()
	out.Match = m.Match.clone()
	out.Illegal = m.Illegal.clone()
	out.BeginScope = m.BeginScope.clone()
	out.EndScope = m.EndScope.clone()
	out.Keywords = m.Keywords.clone()
	if m.Relevance != nil {
		out.Relevance = Relevance(*m.Relevance)
	}
	if m.Contains != nil {
		out.Contains = make([]Child, len(m.Contains))
		for i, ch := range m.Contains {
			if sub, ok := ch.(*Mode); ok {
				out.Contains[i] = c.mode(sub)
			} else {
				out.Contains[i] = ch
			}
		}
	}
	if m.Variants != nil {
		out.Variants = make([]*Mode, len(m.Variants))
		for i, v := range m.Variants {
			out.Variants[i] = c.mode(v)
		}
	}
	out.Starts = c.mode(m.Starts)
	if m.SubLanguage != nil {
		out.SubLanguage = &SubLanguage{
			Name:       m.SubLanguage.Name,
			Candidates: append([]string(nil), m.SubLanguage.Candidates...),
		}
	}
	return out
}
