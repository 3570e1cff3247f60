package buffer

import (
	"fmt"
	"sync/atomic"
)

// Position is a line/column location. Both are 0-indexed and the column
// counts characters (Unicode scalar values).
type Position struct {
	Line   int
	Column int
}

// String returns a 1-indexed "line:col" form for display.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Compare returns -1 if p is before other, 0 if equal, 1 if after.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	default:
		return 0
	}
}

// RevisionID uniquely identifies a buffer revision.
// Each modification to the buffer creates a new revision.
type RevisionID uint64

// revisionCounter is used to generate unique revision IDs.
var revisionCounter atomic.Uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(revisionCounter.Add(1))
}
