package vfs

import (
	"io/fs"
	"maps"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"
)

// POSIX errors shared with OSFS so callers can match either implementation.
var (
	errIsDir    = syscall.EISDIR
	errNotDir   = syscall.ENOTDIR
	errNotEmpty = syscall.ENOTEMPTY
)

// MemFS is an in-memory VFS for tests. Paths are slash separated and rooted
// at "/". Faults registered with Fail make writes and renames to a path
// return an error, which exercises save failures without touching disk.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
	faults  map[string]error
	now     func() time.Time
}

type memEntry struct {
	dir     bool
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

var _ VFS = (*MemFS)(nil)

// NewMemFS returns an empty file system containing only the root directory.
func NewMemFS() *MemFS {
	m := &MemFS{
		entries: make(map[string]*memEntry),
		faults:  make(map[string]error),
		now:     time.Now,
	}
	m.entries["/"] = &memEntry{dir: true, mode: fs.ModeDir | 0o755, modTime: m.now()}
	return m
}

// Fail makes every later WriteFile to p, and every Rename onto p, return
// err. A nil err clears the fault.
func (m *MemFS) Fail(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if err == nil {
		delete(m.faults, p)
		return
	}
	m.faults[p] = err
}

func (m *MemFS) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = clean(p)
	e, ok := m.entries[p]
	switch {
	case !ok:
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	case e.dir:
		return nil, &fs.PathError{Op: "read", Path: p, Err: errIsDir}
	}
	return slices.Clone(e.data), nil
}

func (m *MemFS) Stat(p string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = clean(p)
	e, ok := m.entries[p]
	if !ok {
		return FileInfo{}, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return NewFileInfo(p, path.Base(p), int64(len(e.data)), e.mode, e.modTime, e.dir), nil
}

// WriteFile replaces the file at p. The parent directory must exist.
func (m *MemFS) WriteFile(p string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = clean(p)
	if err := m.faults[p]; err != nil {
		return &fs.PathError{Op: "write", Path: p, Err: err}
	}
	if e, ok := m.entries[p]; ok && e.dir {
		return &fs.PathError{Op: "write", Path: p, Err: errIsDir}
	}
	if err := m.checkParent(p); err != nil {
		return &fs.PathError{Op: "write", Path: p, Err: err}
	}
	m.entries[p] = &memEntry{data: slices.Clone(data), mode: perm.Perm(), modTime: m.now()}
	return nil
}

// checkParent reports whether the directory holding p exists. Callers hold mu.
func (m *MemFS) checkParent(p string) error {
	parent, ok := m.entries[path.Dir(p)]
	switch {
	case !ok:
		return fs.ErrNotExist
	case !parent.dir:
		return errNotDir
	}
	return nil
}

func (m *MemFS) MkdirAll(p string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = clean(p)
	cur := ""
	for part := range strings.SplitSeq(strings.TrimPrefix(p, "/"), "/") {
		if part == "" {
			continue
		}
		cur += "/" + part
		if e, ok := m.entries[cur]; ok {
			if !e.dir {
				return &fs.PathError{Op: "mkdir", Path: cur, Err: errNotDir}
			}
			continue
		}
		m.entries[cur] = &memEntry{dir: true, mode: fs.ModeDir | perm.Perm(), modTime: m.now()}
	}
	return nil
}

// Remove deletes a file or an empty directory.
func (m *MemFS) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = clean(p)
	e, ok := m.entries[p]
	if !ok {
		return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
	}
	if e.dir && m.hasChildren(p) {
		return &fs.PathError{Op: "remove", Path: p, Err: errNotEmpty}
	}
	delete(m.entries, p)
	return nil
}

func (m *MemFS) hasChildren(dir string) bool {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	for p := range m.entries {
		if p != dir && strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Rename moves a file, or a directory together with everything under it.
// An existing file at newPath is replaced.
func (m *MemFS) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldPath, newPath = clean(oldPath), clean(newPath)
	if err := m.faults[newPath]; err != nil {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: err}
	}
	e, ok := m.entries[oldPath]
	if !ok {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrNotExist}
	}
	if err := m.checkParent(newPath); err != nil {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: err}
	}
	if dst, ok := m.entries[newPath]; ok && dst.dir != e.dir {
		err := errIsDir
		if e.dir {
			err = errNotDir
		}
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: err}
	}

	delete(m.entries, oldPath)
	m.entries[newPath] = e
	if !e.dir {
		return nil
	}
	prefix := oldPath + "/"
	for _, p := range slices.Collect(maps.Keys(m.entries)) {
		if rest, ok := strings.CutPrefix(p, prefix); ok {
			m.entries[newPath+"/"+rest] = m.entries[p]
			delete(m.entries, p)
		}
	}
	return nil
}

func (m *MemFS) Abs(p string) (string, error) { return clean(p), nil }

func (m *MemFS) Dir(p string) string { return path.Dir(clean(p)) }

func (m *MemFS) Base(p string) string { return path.Base(p) }

func (m *MemFS) Join(elem ...string) string { return clean(path.Join(elem...)) }

func (m *MemFS) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[clean(p)]
	return ok
}

// IsDir reports whether p is a directory.
func (m *MemFS) IsDir(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[clean(p)]
	return ok && e.dir
}

// AddFile writes content to p, creating parent directories as needed.
func (m *MemFS) AddFile(p, content string) error {
	if err := m.MkdirAll(m.Dir(p), 0o755); err != nil {
		return err
	}
	return m.WriteFile(p, []byte(content), 0o644)
}

// Files lists every regular file, sorted.
func (m *MemFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var files []string
	for p, e := range m.entries {
		if !e.dir {
			files = append(files, p)
		}
	}
	slices.Sort(files)
	return files
}

func clean(p string) string {
	return path.Clean("/" + p)
}
