package buffer

import (
	"github.com/dshills/zing/internal/engine/rope"
	"github.com/dshills/zing/internal/project/vfs"
)

const defaultFileMode = 0o644

// Load reads and decodes the file at path into a new, unmodified buffer
// associated with that path. The file's encoding is detected from its byte
// order mark and kept for Save.
func Load(path string, opts ...Option) (*TextBuffer, error) {
	b := New(opts...)

	r, enc, err := b.readFile(path)
	if err != nil {
		return nil, err
	}

	b.rope = r
	b.path = path
	b.encoding = enc
	return b, nil
}

// Save writes the buffer to its associated path. The buffer stays
// modified if it was edited while the write was in progress.
func (b *TextBuffer) Save() error {
	path, ok := b.FilePath()
	if !ok {
		return ErrNoAssociatedPath
	}
	return b.SaveTo(path)
}

// SaveTo writes the buffer to path and makes path the associated path.
// The file is replaced atomically; on failure the previous path and
// modified flag are kept.
func (b *TextBuffer) SaveTo(path string) error {
	b.mu.RLock()
	snap := &Snapshot{rope: b.rope, revision: b.revision}
	enc := b.encoding
	fsys := b.fs
	b.mu.RUnlock()

	data, err := vfs.Encode(snap.Text(), enc)
	if err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}
	if err := vfs.WriteFileAtomic(fsys, path, data, defaultFileMode); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	b.mu.Lock()
	b.path = path
	if b.revision == snap.revision {
		b.modified = false
	}
	b.mu.Unlock()
	return nil
}

// Reload replaces the content with the current file contents. The change
// is recorded as one undo entry and the buffer is left unmodified.
func (b *TextBuffer) Reload() error {
	path, ok := b.FilePath()
	if !ok {
		return ErrNoAssociatedPath
	}

	r, enc, err := b.readFile(path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.replaceLocked(r)
	b.modified = false
	b.encoding = enc
	return nil
}

func (b *TextBuffer) readFile(path string) (rope.Rope, vfs.Encoding, error) {
	data, err := b.fs.ReadFile(path)
	if err != nil {
		return rope.Rope{}, "", &IOError{Op: "read", Path: path, Err: err}
	}
	text, enc, err := vfs.NewReader(data)
	if err != nil {
		return rope.Rope{}, "", &IOError{Op: "decode", Path: path, Err: err}
	}
	r, err := rope.FromReader(text)
	if err != nil {
		return rope.Rope{}, "", &IOError{Op: "decode", Path: path, Err: err}
	}
	return r, enc, nil
}
