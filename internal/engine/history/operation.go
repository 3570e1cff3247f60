package history

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Target is the surface a History replays operations against.
// Replay entry points apply an edit without recording it, so undo and redo
// never feed back into the history they are walking.
type Target interface {
	// ReplayInsert inserts text before the character at pos.
	ReplayInsert(pos int, text string) error

	// ReplayRemove removes the characters in [start, end).
	ReplayRemove(start, end int) error
}

// Operation is a single undoable edit. It is implemented only by Insert and
// Delete.
type Operation interface {
	// Apply performs the edit against t.
	Apply(t Target) error

	// Revert performs the inverse edit against t.
	Revert(t Target) error

	// Description returns a short human-readable summary.
	Description() string

	isOperation()
}

// Insert records that Text was inserted at character Position.
type Insert struct {
	Position int
	Text     string
}

// Apply re-inserts the text.
func (op Insert) Apply(t Target) error {
	return t.ReplayInsert(op.Position, op.Text)
}

// Revert removes the inserted text.
func (op Insert) Revert(t Target) error {
	return t.ReplayRemove(op.Position, op.Position+utf8.RuneCountInString(op.Text))
}

// Description implements Operation.
func (op Insert) Description() string {
	return fmt.Sprintf("insert %d chars at %d", utf8.RuneCountInString(op.Text), op.Position)
}

func (Insert) isOperation() {}

// Delete records that the characters [Start, End) were removed.
// Text holds the removed characters, captured before deletion.
type Delete struct {
	Start int
	End   int
	Text  string
}

// Apply removes the range again.
func (op Delete) Apply(t Target) error {
	return t.ReplayRemove(op.Start, op.End)
}

// Revert restores the removed text.
func (op Delete) Revert(t Target) error {
	return t.ReplayInsert(op.Start, op.Text)
}

// Description implements Operation.
func (op Delete) Description() string {
	return fmt.Sprintf("delete [%d, %d)", op.Start, op.End)
}

func (Delete) isOperation() {}

// OperationInfo provides read-only info about a recorded operation.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}
