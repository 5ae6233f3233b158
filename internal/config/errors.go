package config

import (
	"errors"
	"fmt"
)

var (
	// ErrSettingNotFound is returned by getters for a path with no value.
	ErrSettingNotFound = errors.New("config: no such setting")

	// ErrTypeMismatch is matched by every *TypeError.
	ErrTypeMismatch = errors.New("config: wrong setting type")

	// ErrInvalidPath is returned by Set for an empty path segment or a
	// path running through a non-table value.
	ErrInvalidPath = errors.New("config: invalid setting path")
)

// TypeError reports a setting whose value cannot be read as the type a
// getter or section accessor wants, such as highlight.safeMode = "maybe".
type TypeError struct {
	Path string
	Want string
	Got  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("config: %s is %s, want %s", e.Path, e.Got, e.Want)
}

func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
