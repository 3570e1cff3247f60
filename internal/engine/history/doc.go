// Package history provides linear undo/redo for a text buffer.
//
// # Operations
//
// An Operation is one of two recorded edits, both in character offsets:
//   - Insert{Position, Text}: Text was inserted before Position
//   - Delete{Start, End, Text}: [Start, End) was removed; Text is what was there
//
// # Stacks
//
// History keeps an undo stack and a redo stack:
//
//	h := history.New(0) // unbounded
//	h.Record(history.Insert{Position: 0, Text: "hi"})
//
//	h.Undo(target) // reverts through target, moves the entry to redo
//	h.Redo(target) // re-applies it, moves it back to undo
//
// Record clears the redo stack; nothing else does. Undo and redo on an empty
// stack succeed without doing anything.
//
// Several operations may be recorded as one entry, for example a whole
// document replacement recorded as a Delete of the old text followed by an
// Insert of the new text. Undo reverts the entry's operations in reverse
// order; redo applies them in order.
//
// # Replay
//
// Undo and redo apply edits through a Target, whose ReplayInsert and
// ReplayRemove methods mutate the document without recording. A failed replay
// returns the error and leaves both stacks untouched.
package history
