package highlight

import (
	"github.com/dshills/glint/internal/emitter"
)

// Result is the outcome of a highlight call.
type Result struct {
	// Language is the registered name of the language used. It is empty
	// when auto-detection settled on plain text.
	Language string

	// Relevance scores how well the text fits the language.
	Relevance int

	// Value is the rendered markup.
	Value string

	// Illegal is set when the text contained a lexeme the grammar forbids;
	// Value is then the escaped text.
	Illegal bool

	// SecondBest is the runner-up of auto-detection.
	SecondBest *Result

	// Err is the failure a safe-mode scan recovered from, or the cause of
	// an Illegal result.
	Err error

	// Code is the highlighted text.
	Code string

	// Tree is the scope tree Value was rendered from.
	Tree *emitter.TokenTree

	// top is the mode stack at the end of the scan, used to continue a
	// sublanguage in its next chunk.
	top *frame
}

// plainResult renders code without any scope.
func plainResult(language, code string) *Result {
	tree := emitter.New()
	tree.AddText(code)
	tree.Finalize()
	return &Result{
		Language: language,
		Value:    emitter.EscapeHTML(code),
		Code:     code,
		Tree:     tree,
	}
}
