package app

import (
	"fmt"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/rivo/uniseg"

	"github.com/dshills/zing/internal/engine/buffer"
	"github.com/dshills/zing/internal/project/vfs"
)

// Tab is one open document in a session. Reads may go straight to the
// buffer; mutations go through Edit so a tab has a single writer.
type Tab struct {
	id       uuid.UUID
	untitled int // 1-based number for titles of unsaved tabs
	tabSize  int
	fs       vfs.VFS

	mu  sync.Mutex
	buf *buffer.TextBuffer
}

func newTab(buf *buffer.TextBuffer, untitled, tabSize int, fsys vfs.VFS) *Tab {
	return &Tab{
		id:       uuid.New(),
		untitled: untitled,
		tabSize:  tabSize,
		fs:       fsys,
		buf:      buf,
	}
}

// ID returns the tab's unique identifier.
func (t *Tab) ID() uuid.UUID {
	return t.id
}

// Title returns the file name, or "Untitled" ("Untitled-N" after the
// first) for a tab with no file.
func (t *Tab) Title() string {
	if path, ok := t.buf.FilePath(); ok {
		return t.fs.Base(path)
	}
	if t.untitled <= 1 {
		return "Untitled"
	}
	return fmt.Sprintf("Untitled-%d", t.untitled)
}

// DisplayTitle is Title with a trailing "*" when there are unsaved edits.
func (t *Tab) DisplayTitle() string {
	if t.buf.IsModified() {
		return t.Title() + "*"
	}
	return t.Title()
}

// Path returns the associated file path and whether there is one.
func (t *Tab) Path() (string, bool) {
	return t.buf.FilePath()
}

// IsModified reports whether the tab has unsaved edits.
func (t *Tab) IsModified() bool {
	return t.buf.IsModified()
}

// Buffer returns the tab's buffer for reading.
func (t *Tab) Buffer() *buffer.TextBuffer {
	return t.buf
}

// Edit runs fn with exclusive write access to the buffer.
func (t *Tab) Edit(fn func(b *buffer.TextBuffer) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.buf)
}

// View runs fn on a snapshot of the current content.
func (t *Tab) View(fn func(s *buffer.Snapshot)) {
	fn(t.buf.Snapshot())
}

// WordCount counts runs of non-space characters in the current content.
func (t *Tab) WordCount() int {
	n := 0
	t.View(func(s *buffer.Snapshot) {
		inWord := false
		for it := s.Runes(); it.Next(); {
			space := unicode.IsSpace(it.Rune())
			if !space && !inWord {
				n++
			}
			inWord = !space
		}
	})
	return n
}

// CursorStatus describes a cursor position for a status bar.
type CursorStatus struct {
	Line          int // 0-indexed
	Column        int // 0-indexed, in characters
	DisplayColumn int // 0-indexed, in terminal cells
	Lines         int
	Chars         int
}

// String formats the position the way editors show it, 1-indexed.
func (c CursorStatus) String() string {
	return fmt.Sprintf("Ln %d, Col %d", c.Line+1, c.DisplayColumn+1)
}

// CursorStatus reports the line, column and display column of char
// index idx. Wide characters count two cells; tabs advance to the next
// tab stop.
func (t *Tab) CursorStatus(idx int) (CursorStatus, error) {
	b := t.buf
	line, col, err := b.CharToLineCol(idx)
	if err != nil {
		return CursorStatus{}, err
	}
	text, err := b.Line(line)
	if err != nil {
		return CursorStatus{}, err
	}

	prefix := []rune(text)
	if col < len(prefix) {
		prefix = prefix[:col]
	}

	return CursorStatus{
		Line:          line,
		Column:        col,
		DisplayColumn: displayWidth(string(prefix), t.tabSize),
		Lines:         b.LenLines(),
		Chars:         b.LenChars(),
	}, nil
}

// displayWidth returns the terminal width of s, expanding tabs to
// multiples of tabSize.
func displayWidth(s string, tabSize int) int {
	if tabSize < 1 {
		tabSize = 1
	}
	width := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if g.Str() == "\t" {
			width += tabSize - width%tabSize
			continue
		}
		width += g.Width()
	}
	return width
}

// DiffOnDisk returns a unified diff from the file on disk to the buffer
// content. It is empty when they match.
func (t *Tab) DiffOnDisk() (string, error) {
	path, ok := t.buf.FilePath()
	if !ok {
		return "", NewOperationError("diff", t.Title(), buffer.ErrNoAssociatedPath)
	}

	data, err := t.fs.ReadFile(path)
	if err != nil {
		return "", NewOperationError("diff", path, err)
	}
	disk, _, err := vfs.Decode(data)
	if err != nil {
		return "", NewOperationError("diff", path, err)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(disk),
		B:        difflib.SplitLines(t.buf.Text()),
		FromFile: path,
		ToFile:   path + " (buffer)",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}
