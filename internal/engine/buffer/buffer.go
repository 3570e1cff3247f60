package buffer

import (
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dshills/zing/internal/engine/history"
	"github.com/dshills/zing/internal/engine/rope"
	"github.com/dshills/zing/internal/project/vfs"
)

// TextBuffer is an editable document: rope-backed text addressed by
// character index, a linear undo/redo history and an optional file path.
//
// All methods are safe for concurrent use, but the buffer is designed for a
// single writer; every mutation takes an exclusive lock.
type TextBuffer struct {
	mu       sync.RWMutex
	rope     rope.Rope
	history  *history.History
	modified bool
	path     string
	revision RevisionID
	encoding vfs.Encoding
	fs       vfs.VFS
}

// New creates an empty, unmodified buffer with no associated path.
func New(opts ...Option) *TextBuffer {
	b := &TextBuffer{
		rope:     rope.New(),
		history:  history.New(0),
		revision: NewRevisionID(),
		encoding: vfs.EncodingUTF8,
		fs:       vfs.NewOSFS(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewFromString creates an unmodified buffer holding text, with empty
// history and no associated path.
func NewFromString(text string, opts ...Option) *TextBuffer {
	b := New(opts...)
	b.rope = rope.FromString(sanitize(text))
	return b
}

// sanitize replaces invalid UTF-8 so that every stored string is text.
func sanitize(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// Read Operations

// LenChars returns the number of characters (Unicode scalar values).
func (b *TextBuffer) LenChars() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int(b.rope.CharCount())
}

// LenLines returns the number of lines: newlines + 1, never less than 1.
func (b *TextBuffer) LenLines() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int(b.rope.LineCount())
}

// IsEmpty returns true if the buffer holds no characters.
func (b *TextBuffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.IsEmpty()
}

// Text returns the full buffer content as a string.
func (b *TextBuffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.String()
}

// WriteTo writes the buffer content to w.
func (b *TextBuffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.RLock()
	r := b.rope
	b.mu.RUnlock()
	return r.WriteTo(w)
}

// Slice returns the characters in [start, end).
func (b *TextBuffer) Slice(start, end int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkRange(start, end); err != nil {
		return "", err
	}
	return b.rope.SliceChars(rope.CharOffset(start), rope.CharOffset(end)), nil
}

// Line returns the text of line idx without its line terminator.
func (b *TextBuffer) Line(idx int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkLine(idx); err != nil {
		return "", err
	}
	return b.rope.LineText(uint32(idx)), nil
}

// LineWithEnding returns the text of line idx including its trailing
// newline, if it has one.
func (b *TextBuffer) LineWithEnding(idx int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkLine(idx); err != nil {
		return "", err
	}
	start := b.rope.LineStartOffset(uint32(idx))
	end := b.rope.LineStartOffset(uint32(idx) + 1)
	return b.rope.Slice(start, end), nil
}

// LineLen returns the number of characters on line idx, counting its
// trailing newline if it has one. This is the largest column
// LineColToChar accepts for the line.
func (b *TextBuffer) LineLen(idx int) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkLine(idx); err != nil {
		return 0, err
	}
	return int(b.rope.LineLenChars(uint32(idx))), nil
}

// CharToLineCol converts a character index to a 0-indexed line and column.
// idx may equal LenChars(), the position after the last character.
func (b *TextBuffer) CharToLineCol(idx int) (line, col int, err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if idx < 0 || idx > int(b.rope.CharCount()) {
		return 0, 0, outOfBounds("char index %d, length %d", idx, b.rope.CharCount())
	}
	p := b.rope.CharToPoint(rope.CharOffset(idx))
	return int(p.Line), int(p.Column), nil
}

// Position is CharToLineCol returning a Position.
func (b *TextBuffer) Position(idx int) (Position, error) {
	line, col, err := b.CharToLineCol(idx)
	return Position{Line: line, Column: col}, err
}

// LineColToChar converts a line and column to a character index. col may
// be at most the line's length including its newline.
func (b *TextBuffer) LineColToChar(line, col int) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkLine(line); err != nil {
		return 0, err
	}
	lineLen := int(b.rope.LineLenChars(uint32(line)))
	if col < 0 || col > lineLen {
		return 0, outOfBounds("column %d, line %d has %d chars", col, line, lineLen)
	}
	return int(b.rope.LineStartChar(uint32(line))) + col, nil
}

// IsModified reports whether the buffer changed since it was created,
// loaded or saved.
func (b *TextBuffer) IsModified() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.modified
}

// FilePath returns the associated file path and whether there is one.
func (b *TextBuffer) FilePath() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path, b.path != ""
}

// Encoding returns the encoding the buffer is saved in.
func (b *TextBuffer) Encoding() vfs.Encoding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.encoding
}

// Revision returns the current revision ID. Every mutation, including
// undo and redo, produces a new one.
func (b *TextBuffer) Revision() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Snapshot returns a read-only view of the current content. It shares
// storage with the buffer and is unaffected by later edits.
func (b *TextBuffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{
		rope:     b.rope,
		revision: b.revision,
	}
}

// Write Operations

// Insert inserts text before the character at pos. pos may equal
// LenChars() to append. The edit is recorded and clears the redo stack.
func (b *TextBuffer) Insert(pos int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	text = sanitize(text)
	if err := b.insertLocked(pos, text); err != nil {
		return err
	}
	b.history.Record(history.Insert{Position: pos, Text: text})
	return nil
}

// Remove deletes the characters in [start, end). The removed text is
// recorded so undo can restore it; the redo stack is cleared.
func (b *TextBuffer) Remove(start, end int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkRange(start, end); err != nil {
		return err
	}
	removed := b.rope.SliceChars(rope.CharOffset(start), rope.CharOffset(end))
	if err := b.removeLocked(start, end); err != nil {
		return err
	}
	b.history.Record(history.Delete{Start: start, End: end, Text: removed})
	return nil
}

// UpdateContent replaces the whole document. When text differs from the
// current content the replacement is recorded as one undo entry, so undo
// restores the previous document and redo re-applies text. The buffer is
// marked modified either way.
func (b *TextBuffer) UpdateContent(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.replaceLocked(rope.FromString(sanitize(text)))
	b.modified = true
}

// replaceLocked swaps in next, recording [Delete old, Insert new] as one
// entry when the content differs.
func (b *TextBuffer) replaceLocked(next rope.Rope) {
	if !b.rope.Equals(next) {
		var ops []history.Operation
		if !b.rope.IsEmpty() {
			ops = append(ops, history.Delete{Start: 0, End: int(b.rope.CharCount()), Text: b.rope.String()})
		}
		if !next.IsEmpty() {
			ops = append(ops, history.Insert{Position: 0, Text: next.String()})
		}
		b.history.Record(ops...)
	}

	b.rope = next
	b.revision = NewRevisionID()
}

// Undo reverts the most recent edit. With nothing to undo it returns nil
// and changes nothing.
func (b *TextBuffer) Undo() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.history.Undo(replayer{b})
	return err
}

// Redo re-applies the most recently undone edit. With nothing to redo it
// returns nil and changes nothing.
func (b *TextBuffer) Redo() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.history.Redo(replayer{b})
	return err
}

// CanUndo returns true if undo is available.
func (b *TextBuffer) CanUndo() bool {
	return b.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (b *TextBuffer) CanRedo() bool {
	return b.history.CanRedo()
}

// UndoCount returns the number of undo entries.
func (b *TextBuffer) UndoCount() int {
	return b.history.UndoCount()
}

// RedoCount returns the number of redo entries.
func (b *TextBuffer) RedoCount() int {
	return b.history.RedoCount()
}

// UndoHistory describes the undo entries, oldest first.
func (b *TextBuffer) UndoHistory() []history.OperationInfo {
	return b.history.UndoInfo()
}

// RedoHistory describes the redo entries, oldest first. The last one is
// what Redo re-applies next.
func (b *TextBuffer) RedoHistory() []history.OperationInfo {
	return b.history.RedoInfo()
}

// UndoLimit returns the undo depth bound; 0 means unbounded.
func (b *TextBuffer) UndoLimit() int {
	return b.history.MaxEntries()
}

// insertLocked splices text in without recording it.
func (b *TextBuffer) insertLocked(pos int, text string) error {
	if pos < 0 || pos > int(b.rope.CharCount()) {
		return outOfBounds("insert at %d, length %d", pos, b.rope.CharCount())
	}
	b.rope = b.rope.InsertChars(rope.CharOffset(pos), text)
	b.modified = true
	b.revision = NewRevisionID()
	return nil
}

// removeLocked deletes [start, end) without recording it.
func (b *TextBuffer) removeLocked(start, end int) error {
	if err := b.checkRange(start, end); err != nil {
		return err
	}
	b.rope = b.rope.DeleteChars(rope.CharOffset(start), rope.CharOffset(end))
	b.modified = true
	b.revision = NewRevisionID()
	return nil
}

func (b *TextBuffer) checkRange(start, end int) error {
	n := int(b.rope.CharCount())
	if start < 0 || start > end || end > n {
		return outOfBounds("range [%d, %d), length %d", start, end, n)
	}
	return nil
}

func (b *TextBuffer) checkLine(idx int) error {
	n := int(b.rope.LineCount())
	if idx < 0 || idx >= n {
		return outOfBounds("line %d, buffer has %d lines", idx, n)
	}
	return nil
}

// replayer is the history.Target for a buffer whose lock is already held.
// It applies edits without recording them.
type replayer struct {
	b *TextBuffer
}

func (r replayer) ReplayInsert(pos int, text string) error {
	return r.b.insertLocked(pos, text)
}

func (r replayer) ReplayRemove(start, end int) error {
	return r.b.removeLocked(start, end)
}
