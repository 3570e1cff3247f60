package buffer

import (
	"io"

	"github.com/dshills/zing/internal/engine/rope"
)

// Snapshot provides a read-only view of a buffer at a specific point in time.
// It is safe for concurrent access and will not change even if the original
// buffer is modified.
type Snapshot struct {
	rope     rope.Rope
	revision RevisionID
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return s.rope.String()
}

// WriteTo writes the snapshot content to w.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	return s.rope.WriteTo(w)
}

// LenChars returns the number of characters.
func (s *Snapshot) LenChars() int {
	return int(s.rope.CharCount())
}

// LenLines returns the number of lines.
func (s *Snapshot) LenLines() int {
	return int(s.rope.LineCount())
}

// IsEmpty returns true if the snapshot holds no text.
func (s *Snapshot) IsEmpty() bool {
	return s.rope.IsEmpty()
}

// Line returns the text of line idx without its newline, or "" past the end.
func (s *Snapshot) Line(idx int) string {
	if idx < 0 {
		return ""
	}
	return s.rope.LineText(uint32(idx))
}

// Slice returns the characters in [start, end), clamped to the snapshot.
func (s *Snapshot) Slice(start, end int) string {
	n := s.LenChars()
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	return s.rope.SliceChars(rope.CharOffset(start), rope.CharOffset(end))
}

// Revision returns the revision the snapshot was taken at.
func (s *Snapshot) Revision() RevisionID {
	return s.revision
}

// Lines returns an iterator over the snapshot's lines.
func (s *Snapshot) Lines() *rope.LineIterator {
	return s.rope.Lines()
}

// Runes returns an iterator over the snapshot's characters.
func (s *Snapshot) Runes() *rope.RuneIterator {
	return s.rope.Runes()
}
