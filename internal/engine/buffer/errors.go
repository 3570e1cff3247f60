package buffer

import (
	"errors"
	"fmt"
)

// Errors returned by buffer operations.
var (
	// ErrOutOfBounds is returned when a position or range falls outside the
	// buffer. The buffer is left unchanged.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrNoAssociatedPath is returned by Save and Reload on a buffer that
	// has never been loaded from or saved to a file.
	ErrNoAssociatedPath = errors.New("no file path associated with this buffer")

	// ErrIO matches every *IOError via errors.Is.
	ErrIO = errors.New("i/o error")
)

// IOError reports a failed read, decode or write of a buffer's file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func outOfBounds(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrOutOfBounds}, args...)...)
}
