package rope

import "strings"

// Tree structure constants
const (
	// MinChildren is the minimum children per internal node (except root).
	MinChildren = 4

	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8

	// MaxChunksPerLeaf is the maximum chunks in a leaf node.
	MaxChunksPerLeaf = 4
)

// Node represents a node in the rope B+ tree.
// Leaf nodes (height == 0) contain text chunks.
// Internal nodes (height > 0) contain child node references.
type Node struct {
	height  uint8
	summary TextSummary

	// Internal node fields (height > 0)
	children       []*Node
	childSummaries []TextSummary

	// Leaf node fields (height == 0)
	chunks []Chunk
}

func newLeafNode() *Node {
	return &Node{
		height: 0,
		chunks: make([]Chunk, 0, MaxChunksPerLeaf),
	}
}

func newLeafNodeWithChunks(chunks []Chunk) *Node {
	n := &Node{
		height: 0,
		chunks: chunks,
	}
	n.recomputeSummary()
	return n
}

func newInternalNode(children []*Node) *Node {
	if len(children) == 0 {
		return newLeafNode()
	}

	height := children[0].height + 1
	summaries := make([]TextSummary, len(children))
	var total TextSummary

	for i, child := range children {
		summaries[i] = child.summary
		total = total.Add(child.summary)
	}

	return &Node{
		height:         height,
		summary:        total,
		children:       children,
		childSummaries: summaries,
	}
}

// IsLeaf returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.height == 0
}

// Len returns the byte length of text in this subtree.
func (n *Node) Len() ByteOffset {
	return n.summary.Bytes
}

// LineCount returns the number of lines in this subtree.
func (n *Node) LineCount() uint32 {
	return n.summary.Lines + 1
}

func (n *Node) recomputeSummary() {
	n.summary = TextSummary{Flags: FlagASCII}
	if n.IsLeaf() {
		for _, chunk := range n.chunks {
			n.summary = n.summary.Add(chunk.Summary())
		}
		return
	}

	n.childSummaries = make([]TextSummary, len(n.children))
	for i, child := range n.children {
		n.childSummaries[i] = child.summary
		n.summary = n.summary.Add(child.summary)
	}
}

// clone creates a shallow copy of the node.
func (n *Node) clone() *Node {
	if n.IsLeaf() {
		chunks := make([]Chunk, len(n.chunks))
		copy(chunks, n.chunks)
		return &Node{
			height:  0,
			summary: n.summary,
			chunks:  chunks,
		}
	}

	children := make([]*Node, len(n.children))
	copy(children, n.children)
	summaries := make([]TextSummary, len(n.childSummaries))
	copy(summaries, n.childSummaries)

	return &Node{
		height:         n.height,
		summary:        n.summary,
		children:       children,
		childSummaries: summaries,
	}
}

func (n *Node) appendTo(sb *strings.Builder) {
	if n.IsLeaf() {
		for _, chunk := range n.chunks {
			sb.WriteString(chunk.String())
		}
		return
	}

	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// textInRange extracts text in the byte range [start, end).
func (n *Node) textInRange(start, end ByteOffset) string {
	if start >= end || start >= n.Len() {
		return ""
	}
	if end > n.Len() {
		end = n.Len()
	}

	var sb strings.Builder
	sb.Grow(int(end - start))
	n.appendRange(&sb, start, end)
	return sb.String()
}

func (n *Node) appendRange(sb *strings.Builder, start, end ByteOffset) {
	if start >= end {
		return
	}

	if n.IsLeaf() {
		offset := ByteOffset(0)
		for _, chunk := range n.chunks {
			chunkLen := ByteOffset(chunk.Len())
			chunkEnd := offset + chunkLen

			if chunkEnd <= start {
				offset = chunkEnd
				continue
			}
			if offset >= end {
				break
			}

			sliceStart := 0
			if start > offset {
				sliceStart = int(start - offset)
			}
			sliceEnd := chunk.Len()
			if end < chunkEnd {
				sliceEnd = int(end - offset)
			}

			sb.WriteString(chunk.String()[sliceStart:sliceEnd])
			offset = chunkEnd
		}
		return
	}

	offset := ByteOffset(0)
	for i, child := range n.children {
		childLen := n.childSummaries[i].Bytes
		childEnd := offset + childLen

		if childEnd <= start {
			offset = childEnd
			continue
		}
		if offset >= end {
			break
		}

		childStart := ByteOffset(0)
		if start > offset {
			childStart = start - offset
		}
		childEndAdj := childLen
		if end < childEnd {
			childEndAdj = end - offset
		}

		child.appendRange(sb, childStart, childEndAdj)
		offset = childEnd
	}
}

// split splits the node at the given byte offset.
// Returns two nodes: left contains [0, offset), right contains [offset, end).
func (n *Node) split(offset ByteOffset) (*Node, *Node) {
	if offset <= 0 {
		return newLeafNode(), n.clone()
	}
	if offset >= n.Len() {
		return n.clone(), newLeafNode()
	}

	if n.IsLeaf() {
		return n.splitLeaf(offset)
	}
	return n.splitInternal(offset)
}

func (n *Node) splitLeaf(offset ByteOffset) (*Node, *Node) {
	var leftChunks, rightChunks []Chunk
	currentOffset := ByteOffset(0)

	for _, chunk := range n.chunks {
		chunkLen := ByteOffset(chunk.Len())

		switch {
		case currentOffset+chunkLen <= offset:
			leftChunks = append(leftChunks, chunk)
		case currentOffset >= offset:
			rightChunks = append(rightChunks, chunk)
		default:
			left, right := chunk.Split(int(offset - currentOffset))
			if !left.IsEmpty() {
				leftChunks = append(leftChunks, left)
			}
			if !right.IsEmpty() {
				rightChunks = append(rightChunks, right)
			}
		}
		currentOffset += chunkLen
	}

	return newLeafNodeWithChunks(leftChunks), newLeafNodeWithChunks(rightChunks)
}

func (n *Node) splitInternal(offset ByteOffset) (*Node, *Node) {
	var leftChildren, rightChildren []*Node
	currentOffset := ByteOffset(0)

	for i, child := range n.children {
		childLen := n.childSummaries[i].Bytes

		switch {
		case currentOffset+childLen <= offset:
			leftChildren = append(leftChildren, child)
		case currentOffset >= offset:
			rightChildren = append(rightChildren, child)
		default:
			leftChild, rightChild := child.split(offset - currentOffset)
			if leftChild.Len() > 0 {
				leftChildren = append(leftChildren, leftChild)
			}
			if rightChild.Len() > 0 {
				rightChildren = append(rightChildren, rightChild)
			}
		}
		currentOffset += childLen
	}

	return buildNodeFromChildren(leftChildren), buildNodeFromChildren(rightChildren)
}

// buildNodeFromChildren creates a balanced tree from a list of sibling nodes.
// Siblings may differ in height after a split; shorter ones are raised so
// every internal node keeps children of uniform height.
func buildNodeFromChildren(children []*Node) *Node {
	if len(children) == 0 {
		return newLeafNode()
	}
	if len(children) == 1 {
		return children[0]
	}

	var height uint8
	for _, child := range children {
		if child.height > height {
			height = child.height
		}
	}
	for i, child := range children {
		for child.height < height {
			child = newInternalNode([]*Node{child})
		}
		children[i] = child
	}

	if len(children) <= MaxChildren {
		return newInternalNode(children)
	}

	var parents []*Node
	for i := 0; i < len(children); i += MaxChildren {
		end := min(i+MaxChildren, len(children))
		group := make([]*Node, end-i)
		copy(group, children[i:end])
		parents = append(parents, newInternalNode(group))
	}

	return buildNodeFromChildren(parents)
}

// concat concatenates two nodes. The chunks meeting at the seam are
// coalesced so repeated small edits do not fragment the leaves.
func concat(left, right *Node) *Node {
	if left == nil || left.Len() == 0 {
		if right == nil {
			return newLeafNode()
		}
		return right
	}
	if right == nil || right.Len() == 0 {
		return left
	}

	switch {
	case left.IsLeaf() && right.IsLeaf():
		return concatLeaves(left, right)

	case left.height > right.height:
		last := len(left.children) - 1
		merged := concat(left.children[last], right)
		children := make([]*Node, 0, len(left.children)+MaxChildren)
		children = append(children, left.children[:last]...)
		children = append(children, spliceChild(merged, left.height-1)...)
		return joinChildren(children)

	case left.height < right.height:
		merged := concat(left, right.children[0])
		children := make([]*Node, 0, len(right.children)+MaxChildren)
		children = append(children, spliceChild(merged, right.height-1)...)
		children = append(children, right.children[1:]...)
		return joinChildren(children)

	default:
		last := len(left.children) - 1
		merged := concat(left.children[last], right.children[0])
		children := make([]*Node, 0, len(left.children)+len(right.children)+MaxChildren)
		children = append(children, left.children[:last]...)
		children = append(children, spliceChild(merged, left.height-1)...)
		children = append(children, right.children[1:]...)
		return joinChildren(children)
	}
}

// spliceChild returns the nodes that replace a child of the given height.
// A concat may grow one level, in which case its children are spliced in.
func spliceChild(n *Node, height uint8) []*Node {
	if n.height == height {
		return []*Node{n}
	}
	return n.children
}

// joinChildren builds a node over siblings of equal height, adding a level
// when there are more than MaxChildren of them.
func joinChildren(children []*Node) *Node {
	if len(children) <= MaxChildren {
		return newInternalNode(children)
	}

	groups := (len(children) + MaxChildren - 1) / MaxChildren
	size := (len(children) + groups - 1) / groups
	parents := make([]*Node, 0, groups)
	for i := 0; i < len(children); i += size {
		end := min(i+size, len(children))
		group := make([]*Node, end-i)
		copy(group, children[i:end])
		parents = append(parents, newInternalNode(group))
	}
	return joinChildren(parents)
}

// concatLeaves concatenates two leaf nodes, merging the chunks at the seam.
func concatLeaves(left, right *Node) *Node {
	chunks := make([]Chunk, 0, len(left.chunks)+len(right.chunks))
	chunks = append(chunks, left.chunks[:len(left.chunks)-1]...)
	chunks = append(chunks, left.chunks[len(left.chunks)-1].Append(right.chunks[0])...)
	chunks = append(chunks, right.chunks[1:]...)

	if len(chunks) <= MaxChunksPerLeaf {
		return newLeafNodeWithChunks(chunks)
	}

	var leaves []*Node
	for i := 0; i < len(chunks); i += MaxChunksPerLeaf {
		end := min(i+MaxChunksPerLeaf, len(chunks))
		group := make([]Chunk, end-i)
		copy(group, chunks[i:end])
		leaves = append(leaves, newLeafNodeWithChunks(group))
	}
	return joinChildren(leaves)
}

// byteOfChar returns the byte offset of the c-th character in this subtree.
// c is clamped to the subtree's character count.
func (n *Node) byteOfChar(c CharOffset) ByteOffset {
	if c >= n.summary.Chars {
		return n.summary.Bytes
	}

	var bytes ByteOffset
	node := n
	for !node.IsLeaf() {
		descended := false
		for i, cs := range node.childSummaries {
			if c < cs.Chars {
				node = node.children[i]
				descended = true
				break
			}
			c -= cs.Chars
			bytes += cs.Bytes
		}
		if !descended {
			return bytes
		}
	}

	for _, chunk := range node.chunks {
		cs := chunk.Summary()
		if c < cs.Chars {
			return bytes + ByteOffset(chunk.charToByte(c))
		}
		c -= cs.Chars
		bytes += cs.Bytes
	}
	return bytes
}

// prefixSummary returns the summary of the text in [0, offset).
func (n *Node) prefixSummary(offset ByteOffset) TextSummary {
	if offset >= n.summary.Bytes {
		return n.summary
	}

	acc := TextSummary{Flags: FlagASCII}
	node := n
	for !node.IsLeaf() {
		descended := false
		for i, cs := range node.childSummaries {
			if offset < cs.Bytes {
				node = node.children[i]
				descended = true
				break
			}
			acc = acc.Add(cs)
			offset -= cs.Bytes
		}
		if !descended {
			return acc
		}
	}

	for _, chunk := range node.chunks {
		cs := chunk.Summary()
		if offset < cs.Bytes {
			return acc.Add(ComputeSummary(chunk.String()[:offset]))
		}
		acc = acc.Add(cs)
		offset -= cs.Bytes
	}
	return acc
}

// lineStart returns the byte offset just past the line-th newline of this
// subtree, or the subtree length if there are fewer newlines.
func (n *Node) lineStart(line uint32) ByteOffset {
	if line == 0 {
		return 0
	}
	if line > n.summary.Lines {
		return n.summary.Bytes
	}

	var bytes ByteOffset
	node := n
	for !node.IsLeaf() {
		descended := false
		for i, cs := range node.childSummaries {
			if line <= cs.Lines {
				node = node.children[i]
				descended = true
				break
			}
			line -= cs.Lines
			bytes += cs.Bytes
		}
		if !descended {
			return bytes
		}
	}

	for _, chunk := range node.chunks {
		cs := chunk.Summary()
		if line <= cs.Lines {
			return bytes + ByteOffset(FindNthNewline(chunk.String(), line)+1)
		}
		line -= cs.Lines
		bytes += cs.Bytes
	}
	return bytes
}
