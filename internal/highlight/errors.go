package highlight

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUnknownLanguage is returned when a language name is not registered.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrLanguageExists is returned when registering a taken name.
	ErrLanguageExists = errors.New("language already registered")

	// ErrIllegalLexeme is wrapped by IllegalLexemeError.
	ErrIllegalLexeme = errors.New("illegal lexeme")

	// ErrPotentialInfiniteLoop is wrapped by RunawayError.
	ErrPotentialInfiniteLoop = errors.New("potential infinite loop, way more iterations than matches")

	// ErrZeroWidthMatch is returned in debug mode when a begin and an end
	// pattern both match the empty string at the same position.
	ErrZeroWidthMatch = errors.New("0 width match regex")

	// ErrHookAborted is returned when a begin or end hook aborts.
	ErrHookAborted = errors.New("match hook aborted highlighting")

	// ErrUnescapedHTML is wrapped by HTMLInjectionError.
	ErrUnescapedHTML = errors.New("code block includes unescaped HTML")
)

// contextRadius is the number of characters kept on each side of an
// illegal lexeme.
const contextRadius = 100

// IllegalLexemeError reports text forbidden by the active mode.
type IllegalLexemeError struct {
	Language string
	Mode     string
	Lexeme   string
	// Index is the rune offset of the lexeme.
	Index int
	// Context is the text around the lexeme.
	Context string
}

func (e *IllegalLexemeError) Error() string {
	return fmt.Sprintf("illegal lexeme %q for mode %q of language %s at %d", e.Lexeme, e.Mode, e.Language, e.Index)
}

func (e *IllegalLexemeError) Unwrap() error {
	return ErrIllegalLexeme
}

// RunawayError reports a scan that stopped making progress.
type RunawayError struct {
	Language   string
	Iterations int
	Index      int
}

func (e *RunawayError) Error() string {
	return fmt.Sprintf("%v (language %s, %d iterations at %d)", ErrPotentialInfiniteLoop, e.Language, e.Iterations, e.Index)
}

func (e *RunawayError) Unwrap() error {
	return ErrPotentialInfiniteLoop
}

// ModeError attaches the language and mode to a scan failure.
type ModeError struct {
	Language string
	Mode     string
	Index    int
	Err      error
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("language %s, mode %q at %d: %v", e.Language, e.Mode, e.Index, e.Err)
}

func (e *ModeError) Unwrap() error {
	return e.Err
}

// HTMLInjectionError reports a code block that already contains markup.
type HTMLInjectionError struct {
	HTML string
}

func (e *HTMLInjectionError) Error() string {
	return ErrUnescapedHTML.Error()
}

func (e *HTMLInjectionError) Unwrap() error {
	return ErrUnescapedHTML
}

func unknownLanguage(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
}
