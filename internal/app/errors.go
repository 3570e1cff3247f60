package app

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrLastTab is returned when closing the only open tab.
	ErrLastTab = errors.New("cannot close the last tab")

	// ErrTabNotFound indicates no tab has the given ID.
	ErrTabNotFound = errors.New("tab not found")

	// ErrUnsavedChanges indicates a tab has modifications that would be lost.
	ErrUnsavedChanges = errors.New("unsaved changes")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// OperationError records which file operation failed and on what.
type OperationError struct {
	Op     string // "open", "save", "reload", ...
	Target string // file path or tab title
	Err    error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
