package rope

import (
	"io"
	"strings"
)

// Rope is an immutable rope data structure for efficient text storage.
// Operations return new Rope values; the original is never modified.
// This enables cheap snapshots and thread-safe concurrent read access.
type Rope struct {
	root *Node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeafNode()}
}

// FromString creates a rope from a string.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return buildFromChunks(splitIntoChunks(s))
}

// FromReader creates a rope from an io.Reader.
func FromReader(r io.Reader) (Rope, error) {
	var builder Builder
	if _, err := builder.ReadFrom(r); err != nil {
		return Rope{}, err
	}
	return builder.Build(), nil
}

// buildFromChunks builds a balanced rope from a slice of chunks.
func buildFromChunks(chunks []Chunk) Rope {
	if len(chunks) == 0 {
		return New()
	}

	var nodes []*Node
	for i := 0; i < len(chunks); i += MaxChunksPerLeaf {
		end := min(i+MaxChunksPerLeaf, len(chunks))
		leafChunks := make([]Chunk, end-i)
		copy(leafChunks, chunks[i:end])
		nodes = append(nodes, newLeafNodeWithChunks(leafChunks))
	}

	for len(nodes) > 1 {
		var parents []*Node
		for i := 0; i < len(nodes); i += MaxChildren {
			end := min(i+MaxChildren, len(nodes))
			children := make([]*Node, end-i)
			copy(children, nodes[i:end])
			parents = append(parents, newInternalNode(children))
		}
		nodes = parents
	}

	return Rope{root: nodes[0]}
}

// Len returns the total byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.Len()
}

// CharCount returns the number of Unicode scalar values.
func (r Rope) CharCount() CharOffset {
	if r.root == nil {
		return 0
	}
	return r.root.summary.Chars
}

// LineCount returns the number of lines (newlines + 1).
// An empty rope has one line.
func (r Rope) LineCount() uint32 {
	if r.root == nil {
		return 1
	}
	return r.root.LineCount()
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// String returns the full text as a string.
// Use sparingly for large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}

	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.appendTo(&sb)
	return sb.String()
}

// WriteTo writes the rope's text to w chunk by chunk.
func (r Rope) WriteTo(w io.Writer) (int64, error) {
	var total int64
	it := r.Chunks()
	for it.Next() {
		n, err := io.WriteString(w, it.Chunk().String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Summary returns the aggregated metrics for the entire rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return TextSummary{Flags: FlagASCII}
	}
	return r.root.summary
}

// Slice returns the text in the byte range [start, end).
func (r Rope) Slice(start, end ByteOffset) string {
	if r.root == nil || start >= end {
		return ""
	}
	return r.root.textInRange(start, end)
}

// SliceChars returns the text in the character range [start, end).
func (r Rope) SliceChars(start, end CharOffset) string {
	if start >= end {
		return ""
	}
	return r.Slice(r.CharToByte(start), r.CharToByte(end))
}

// CharToByte converts a character offset to a byte offset.
// Offsets past the end are clamped to Len().
func (r Rope) CharToByte(c CharOffset) ByteOffset {
	if r.root == nil || c == 0 {
		return 0
	}
	if r.root.summary.IsASCII() {
		return ByteOffset(min(uint64(c), uint64(r.Len())))
	}
	return r.root.byteOfChar(c)
}

// ByteToChar converts a byte offset to a character offset.
// The offset should fall on a character boundary; offsets past the end are
// clamped to CharCount().
func (r Rope) ByteToChar(b ByteOffset) CharOffset {
	if r.root == nil || b == 0 {
		return 0
	}
	if r.root.summary.IsASCII() {
		return CharOffset(min(uint64(b), uint64(r.Len())))
	}
	return r.root.prefixSummary(b).Chars
}

// Insert inserts text at the given byte offset.
// Returns a new rope; original is unchanged.
func (r Rope) Insert(offset ByteOffset, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if r.root == nil || r.Len() == 0 {
		return FromString(text)
	}
	if offset == 0 {
		return FromString(text).Concat(r)
	}
	if offset >= r.Len() {
		return r.Concat(FromString(text))
	}

	left, right := r.Split(offset)
	return left.Concat(FromString(text)).Concat(right)
}

// InsertChars inserts text before the character at pos.
func (r Rope) InsertChars(pos CharOffset, text string) Rope {
	return r.Insert(r.CharToByte(pos), text)
}

// Delete removes text in the byte range [start, end).
// Returns a new rope; original is unchanged.
func (r Rope) Delete(start, end ByteOffset) Rope {
	if r.root == nil || start >= end {
		return r
	}

	ropeLen := r.Len()
	if start >= ropeLen {
		return r
	}
	end = min(end, ropeLen)

	if start == 0 && end == ropeLen {
		return New()
	}
	if start == 0 {
		_, right := r.Split(end)
		return right
	}
	if end == ropeLen {
		left, _ := r.Split(start)
		return left
	}

	left, temp := r.Split(start)
	_, right := temp.Split(end - start)
	return left.Concat(right)
}

// DeleteChars removes the characters in [start, end).
func (r Rope) DeleteChars(start, end CharOffset) Rope {
	if start >= end {
		return r
	}
	return r.Delete(r.CharToByte(start), r.CharToByte(end))
}

// Split splits the rope at offset, returning two ropes.
// Left rope contains [0, offset), right contains [offset, end).
func (r Rope) Split(offset ByteOffset) (Rope, Rope) {
	if r.root == nil || offset == 0 {
		return New(), r
	}
	if offset >= r.Len() {
		return r, New()
	}

	leftRoot, rightRoot := r.root.split(offset)
	return Rope{root: leftRoot}, Rope{root: rightRoot}
}

// Concat concatenates two ropes.
// Returns a new rope; originals are unchanged.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil || r.Len() == 0 {
		return other
	}
	if other.root == nil || other.Len() == 0 {
		return r
	}
	return Rope{root: concat(r.root, other.root)}
}

// LineStartOffset returns the byte offset of the start of the given line.
// Lines are 0-indexed. Lines past the end map to Len().
func (r Rope) LineStartOffset(line uint32) ByteOffset {
	if r.root == nil || line == 0 {
		return 0
	}
	if line >= r.LineCount() {
		return r.Len()
	}
	return r.root.lineStart(line)
}

// LineEndOffset returns the byte offset of the end of the given line
// (not including the newline character).
func (r Rope) LineEndOffset(line uint32) ByteOffset {
	if r.root == nil {
		return 0
	}

	lineCount := r.LineCount()
	if line >= lineCount-1 {
		return r.Len()
	}
	return r.root.lineStart(line+1) - 1
}

// LineText returns the text of the given line (not including newline).
func (r Rope) LineText(line uint32) string {
	if line >= r.LineCount() {
		return ""
	}
	return r.Slice(r.LineStartOffset(line), r.LineEndOffset(line))
}

// LineStartChar returns the character offset of the start of the given line.
func (r Rope) LineStartChar(line uint32) CharOffset {
	return r.ByteToChar(r.LineStartOffset(line))
}

// LineLenChars returns the number of characters on the given line,
// including its terminating newline if it has one.
func (r Rope) LineLenChars(line uint32) CharOffset {
	if line >= r.LineCount() {
		return 0
	}
	return r.LineStartChar(line+1) - r.LineStartChar(line)
}

// CharToPoint converts a character offset to a line/column position.
// Offsets past the end map to the end of the last line.
func (r Rope) CharToPoint(c CharOffset) Point {
	if r.root == nil || c == 0 {
		return Point{}
	}

	c = min(c, r.CharCount())
	prefix := r.root.prefixSummary(r.CharToByte(c))
	line := prefix.Lines
	return Point{
		Line:   line,
		Column: uint32(c - r.LineStartChar(line)),
	}
}

// Equals returns true if two ropes contain the same text.
// Chunk boundaries may differ between the two; only content is compared.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.root == other.root {
		return true
	}

	it1, it2 := r.Chunks(), other.Chunks()
	var a, b string
	for {
		if len(a) == 0 {
			if !it1.Next() {
				break
			}
			a = it1.Chunk().String()
		}
		if len(b) == 0 {
			if !it2.Next() {
				return false
			}
			b = it2.Chunk().String()
		}

		n := min(len(a), len(b))
		if a[:n] != b[:n] {
			return false
		}
		a, b = a[n:], b[n:]
	}
	return len(b) == 0 && !it2.Next()
}
