package grammar

import "github.com/dshills/glint/internal/regex"

func groups(texts ...string) []regex.Group {
	out := make([]regex.Group, len(texts))
	for i, s := range texts {
		out[i] = regex.Group{Text: s, Matched: true}
	}
	return out
}
