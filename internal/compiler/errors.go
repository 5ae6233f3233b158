package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGrammar is the sentinel wrapped by every GrammarError.
var ErrGrammar = errors.New("invalid grammar")

// GrammarError reports a defect in a language definition.
type GrammarError struct {
	Language string
	// Path lists the modes from the root to the offending one.
	Path    []string
	Message string
	Err     error
}

func (e *GrammarError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "language %s", e.Language)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, ", mode %s", strings.Join(e.Path, " > "))
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *GrammarError) Unwrap() error {
	return e.Err
}

func (e *GrammarError) Is(target error) bool {
	return target == ErrGrammar
}
