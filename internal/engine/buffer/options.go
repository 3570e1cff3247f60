package buffer

import "github.com/dshills/zing/internal/project/vfs"

// Option is a functional option for configuring a TextBuffer.
type Option func(*TextBuffer)

// WithFS sets the file system used by Load, Save, SaveTo and Reload.
// The default is the OS file system.
func WithFS(fsys vfs.VFS) Option {
	return func(b *TextBuffer) {
		if fsys != nil {
			b.fs = fsys
		}
	}
}

// WithMaxUndoEntries bounds the undo stack. Zero, the default, keeps every
// entry.
func WithMaxUndoEntries(n int) Option {
	return func(b *TextBuffer) {
		b.history.SetMaxEntries(n)
	}
}

// WithEncoding sets the encoding used when saving. Loading a file replaces
// it with the file's detected encoding.
func WithEncoding(enc vfs.Encoding) Option {
	return func(b *TextBuffer) {
		b.encoding = enc
	}
}
