// Package buffer provides TextBuffer, the editable document at the core of
// the editor. Text lives in a rope, so edits and index conversions stay
// logarithmic in the document size.
//
// All positions are character indices: counts of Unicode scalar values, not
// bytes. Lines are split on '\n' only; a document always has at least one
// line, and a trailing newline starts a final empty line.
//
// Basic usage:
//
//	buf := buffer.NewFromString("Hello")
//	_ = buf.Insert(5, ", world!")   // "Hello, world!"
//	_ = buf.Remove(0, 7)            // "world!"
//	_ = buf.Undo()                  // "Hello, world!"
//
//	line, col, _ := buf.CharToLineCol(3)
//
// Errors:
//
// Every index argument is checked. An invalid one returns an error matching
// ErrOutOfBounds and leaves the buffer untouched; nothing is clamped.
// Failed file operations return an *IOError, which matches ErrIO.
//
// History:
//
// Insert, Remove and UpdateContent record an undo entry and clear the redo
// stack. Undo and Redo replay entries without recording them, and are
// no-ops when their stack is empty.
//
// Thread Safety:
//
// All TextBuffer methods are safe for concurrent use. Reads take a read
// lock and mutations an exclusive one. Snapshot returns an immutable view
// for reading without holding any lock.
package buffer
