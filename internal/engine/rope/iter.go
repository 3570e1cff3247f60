package rope

import "unicode/utf8"

// chunkIterFrame represents a position in the tree traversal for chunk iteration.
type chunkIterFrame struct {
	node     *Node
	childIdx int        // Next child index to visit (for internal nodes)
	chunkIdx int        // Next chunk index to visit (for leaf nodes)
	offset   ByteOffset // Absolute byte offset at start of this node
}

// ChunkIterator iterates over chunks in a rope.
type ChunkIterator struct {
	rope       Rope
	stack      []chunkIterFrame
	started    bool
	chunk      Chunk
	chunkStart ByteOffset
}

// Chunks returns an iterator over all chunks in the rope.
func (r Rope) Chunks() *ChunkIterator {
	return &ChunkIterator{
		rope:  r,
		stack: make([]chunkIterFrame, 0, 16),
	}
}

// Next advances to the next chunk.
// Returns true if there is a chunk, false if iteration is complete.
func (it *ChunkIterator) Next() bool {
	if !it.started {
		it.started = true
		if it.rope.root == nil {
			return false
		}
		// Initialize stack with root
		it.stack = append(it.stack, chunkIterFrame{
			node:     it.rope.root,
			childIdx: 0,
			chunkIdx: 0,
			offset:   0,
		})
		return it.findNextChunk()
	}

	// Advance to next chunk by incrementing chunkIdx in current leaf
	if len(it.stack) > 0 {
		frame := &it.stack[len(it.stack)-1]
		if frame.node.IsLeaf() {
			frame.chunkIdx++
		}
	}
	return it.findNextChunk()
}

// findNextChunk finds the next available chunk.
func (it *ChunkIterator) findNextChunk() bool {
	for len(it.stack) > 0 {
		frame := &it.stack[len(it.stack)-1]
		node := frame.node

		if node.IsLeaf() {
			if frame.chunkIdx < len(node.chunks) {
				// Calculate offset of this chunk within the leaf
				chunkOffset := frame.offset
				for i := 0; i < frame.chunkIdx; i++ {
					chunkOffset += ByteOffset(node.chunks[i].Len())
				}
				it.chunk = node.chunks[frame.chunkIdx]
				it.chunkStart = chunkOffset
				return true
			}
			// Done with this leaf, pop
			it.stack = it.stack[:len(it.stack)-1]
			// After popping, increment parent's childIdx
			if len(it.stack) > 0 {
				it.stack[len(it.stack)-1].childIdx++
			}
			continue
		}

		// Internal node - descend to next unvisited child
		if frame.childIdx < len(node.children) {
			// Calculate offset at start of this child
			childOffset := frame.offset
			for i := 0; i < frame.childIdx; i++ {
				childOffset += node.childSummaries[i].Bytes
			}

			child := node.children[frame.childIdx]
			it.stack = append(it.stack, chunkIterFrame{
				node:     child,
				childIdx: 0,
				chunkIdx: 0,
				offset:   childOffset,
			})
			continue
		}

		// Done with this internal node, pop
		it.stack = it.stack[:len(it.stack)-1]
		// After popping, increment parent's childIdx
		if len(it.stack) > 0 {
			it.stack[len(it.stack)-1].childIdx++
		}
	}

	return false
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() Chunk {
	return it.chunk
}

// Offset returns the byte offset of the start of the current chunk.
func (it *ChunkIterator) Offset() ByteOffset {
	return it.chunkStart
}

// LineIterator iterates over lines in a rope.
type LineIterator struct {
	rope    Rope
	lineNum uint32
	started bool
	start   ByteOffset
	end     ByteOffset
}

// Lines returns an iterator over all lines in the rope.
// An empty rope yields exactly one empty line.
func (r Rope) Lines() *LineIterator {
	return &LineIterator{rope: r}
}

// Next advances to the next line.
func (it *LineIterator) Next() bool {
	if it.started {
		it.lineNum++
	}
	it.started = true

	if it.lineNum >= it.rope.LineCount() {
		return false
	}
	it.start = it.rope.LineStartOffset(it.lineNum)
	it.end = it.rope.LineEndOffset(it.lineNum)
	return true
}

// Text returns the current line's text without its newline.
func (it *LineIterator) Text() string {
	return it.rope.Slice(it.start, it.end)
}

// Line returns the current 0-indexed line number.
func (it *LineIterator) Line() uint32 {
	return it.lineNum
}

// StartOffset returns the byte offset of the start of the current line.
func (it *LineIterator) StartOffset() ByteOffset {
	return it.start
}

// EndOffset returns the byte offset of the end of the current line,
// excluding the newline.
func (it *LineIterator) EndOffset() ByteOffset {
	return it.end
}

// RuneIterator iterates over the characters of a rope.
type RuneIterator struct {
	chunks *ChunkIterator
	text   string
	pos    int
	base   ByteOffset
	r      rune
	size   int
	offset ByteOffset
	index  CharOffset
	count  CharOffset
}

// Runes returns an iterator over all characters in the rope.
func (r Rope) Runes() *RuneIterator {
	return &RuneIterator{chunks: r.Chunks()}
}

// Next advances to the next character.
func (it *RuneIterator) Next() bool {
	for it.pos >= len(it.text) {
		if !it.chunks.Next() {
			return false
		}
		it.text = it.chunks.Chunk().String()
		it.base = it.chunks.Offset()
		it.pos = 0
	}

	it.r, it.size = utf8.DecodeRuneInString(it.text[it.pos:])
	it.offset = it.base + ByteOffset(it.pos)
	it.index = it.count
	it.count++
	it.pos += it.size
	return true
}

// Rune returns the current character.
func (it *RuneIterator) Rune() rune {
	return it.r
}

// Size returns the UTF-8 byte length of the current character.
func (it *RuneIterator) Size() int {
	return it.size
}

// Offset returns the byte offset of the current character.
func (it *RuneIterator) Offset() ByteOffset {
	return it.offset
}

// Index returns the character offset of the current character.
func (it *RuneIterator) Index() CharOffset {
	return it.index
}
