package history

import (
	"strings"
	"sync"
	"time"
)

// entry is one undo unit: operations applied in order, reverted in reverse.
type entry struct {
	ops       []Operation
	timestamp time.Time
}

func (e entry) description() string {
	if len(e.ops) == 1 {
		return e.ops[0].Description()
	}
	parts := make([]string, len(e.ops))
	for i, op := range e.ops {
		parts[i] = op.Description()
	}
	return strings.Join(parts, "; ")
}

// History manages the undo and redo stacks of one buffer.
//
// Recording a new entry is the only transition that clears the redo stack.
// Undo and redo move entries between the stacks unchanged.
type History struct {
	mu sync.Mutex

	undoStack []entry
	redoStack []entry

	// maxEntries bounds the undo stack; 0 means unbounded.
	maxEntries int
}

// New creates a history. maxEntries bounds the undo stack, dropping the
// oldest entries first; zero or negative means unbounded.
func New(maxEntries int) *History {
	return &History{maxEntries: max(maxEntries, 0)}
}

// Record pushes ops as a single undo unit and clears the redo stack.
// The operations must be listed in the order they were applied.
// Recording nothing is a no-op.
func (h *History) Record(ops ...Operation) {
	if len(ops) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = append(h.undoStack, entry{
		ops:       append([]Operation(nil), ops...),
		timestamp: time.Now(),
	})
	h.redoStack = nil
	h.trimLocked()
}

func (h *History) trimLocked() {
	if h.maxEntries > 0 && len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = append([]entry(nil), h.undoStack[excess:]...)
	}
}

// Undo reverts the most recent entry through t and moves it to the redo
// stack. It reports whether anything was replayed; an empty undo stack is
// not an error. If the replay fails both stacks are left as they were.
func (h *History) Undo(t Target) (bool, error) {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return false, nil
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	if err := revert(e.ops, t); err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, e)
		h.mu.Unlock()
		return false, err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, e)
	h.mu.Unlock()
	return true, nil
}

// Redo re-applies the most recently undone entry through t and moves it
// back to the undo stack. Semantics mirror Undo.
func (h *History) Redo(t Target) (bool, error) {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return false, nil
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	if err := apply(e.ops, t); err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, e)
		h.mu.Unlock()
		return false, err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, e)
	h.mu.Unlock()
	return true, nil
}

// apply replays ops in order. On failure the steps already taken are
// reverted so the target is left as it was.
func apply(ops []Operation, t Target) error {
	for i, op := range ops {
		if err := op.Apply(t); err != nil {
			_ = revert(ops[:i], t)
			return err
		}
	}
	return nil
}

// revert reverts ops in reverse order, rolling back on failure.
func revert(ops []Operation, t Target) error {
	for i := len(ops) - 1; i >= 0; i-- {
		if err := ops[i].Revert(t); err != nil {
			_ = apply(ops[i+1:], t)
			return err
		}
	}
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// UndoInfo returns info about available undo entries, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infoOf(h.undoStack)
}

// RedoInfo returns info about available redo entries, oldest first.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infoOf(h.redoStack)
}

func infoOf(stack []entry) []OperationInfo {
	result := make([]OperationInfo, len(stack))
	for i, e := range stack {
		result[i] = OperationInfo{
			Description: e.description(),
			Timestamp:   e.timestamp,
		}
	}
	return result
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max(n, 0)
	h.trimLocked()
}

// MaxEntries returns the maximum number of undo entries; 0 means unbounded.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
