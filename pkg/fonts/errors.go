package fonts

import (
	"errors"
	"fmt"
)

// ErrNoGurmukhiFont is returned by Resolve when no Gurmukhi font can be found.
var ErrNoGurmukhiFont = errors.New("no Gurmukhi font available")

// FontLoadError reports a font path that is missing or cannot be parsed.
type FontLoadError struct {
	Path string
	Err  error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("load font %q: %v", e.Path, e.Err)
}

func (e *FontLoadError) Unwrap() error { return e.Err }
