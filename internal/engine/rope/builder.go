package rope

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Builder provides efficient incremental construction of a rope.
// It buffers writes and builds the rope structure when Build() is called.
type Builder struct {
	chunks []Chunk
	buffer strings.Builder
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) {
	if len(s) == 0 {
		return
	}

	b.buffer.WriteString(s)

	if b.buffer.Len() >= MaxChunkSize*2 {
		b.flushBuffer(false)
	}
}

// flushBuffer converts the buffer contents to chunks. Unless final is set,
// an incomplete trailing UTF-8 sequence stays buffered so that a multi-byte
// character split across writes never straddles two chunks.
func (b *Builder) flushBuffer(final bool) {
	if b.buffer.Len() == 0 {
		return
	}

	s := b.buffer.String()
	tail := ""
	if !final {
		cut := incompleteSuffix(s)
		s, tail = s[:len(s)-cut], s[len(s)-cut:]
	}

	b.buffer.Reset()
	b.buffer.WriteString(tail)
	b.chunks = append(b.chunks, splitIntoChunks(s)...)
}

// incompleteSuffix returns the length of a truncated UTF-8 sequence at the
// end of s, or 0 if s ends on a character boundary.
func incompleteSuffix(s string) int {
	for i := 1; i <= utf8.UTFMax && i <= len(s); i++ {
		c := s[len(s)-i]
		if !isUTF8Start(c) {
			continue
		}
		if c < utf8.RuneSelf {
			return 0
		}
		if !utf8.FullRuneInString(s[len(s)-i:]) {
			return i
		}
		return 0
	}
	return 0
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.chunks = b.chunks[:0]
	b.buffer.Reset()
}

// Build creates the rope from accumulated data.
// After calling Build, the builder is reset.
func (b *Builder) Build() Rope {
	b.flushBuffer(true)

	if len(b.chunks) == 0 {
		b.Reset()
		return New()
	}

	chunks := make([]Chunk, len(b.chunks))
	copy(chunks, b.chunks)
	b.Reset()

	return buildFromChunks(chunks)
}

// ReadFrom appends everything r yields. Reads may split UTF-8 sequences;
// the builder reassembles them.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64

	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

