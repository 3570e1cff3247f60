// Package vfs provides a virtual file system abstraction.
//
// The VFS interface allows swapping the underlying file system implementation,
// so buffers can be loaded and saved against the OS or an in-memory store.
package vfs

import (
	"io/fs"
	"time"
)

// VFS is the file system surface buffers and sessions need: whole-file
// reads and writes, the rename used by atomic saves, and path helpers.
// Paths are whatever the implementation accepts; MemFS uses slash paths
// rooted at "/".
type VFS interface {
	ReadFile(path string) ([]byte, error)
	// WriteFile creates or truncates path. The parent directory must exist.
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Stat(path string) (FileInfo, error)
	// Rename replaces newPath if it exists.
	Rename(oldPath, newPath string) error
	Remove(path string) error
	MkdirAll(path string, perm fs.FileMode) error

	Abs(path string) (string, error)
	Dir(path string) string
	Join(elem ...string) string
	Base(path string) string
	Exists(path string) bool
}

// FileInfo describes a file or directory.
type FileInfo struct {
	path    string
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

// NewFileInfo creates a new FileInfo.
func NewFileInfo(path, name string, size int64, mode fs.FileMode, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{
		path:    path,
		name:    name,
		size:    size,
		mode:    mode,
		modTime: modTime,
		isDir:   isDir,
	}
}

// Path returns the full path.
func (fi FileInfo) Path() string { return fi.path }

// Name returns the base name.
func (fi FileInfo) Name() string { return fi.name }

// Size returns the file size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// Mode returns the file mode.
func (fi FileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true if this is a directory.
func (fi FileInfo) IsDir() bool { return fi.isDir }

// WriteFileAtomic writes data to a sibling temporary file and renames it over
// path, so readers never observe a partially written file. The existing
// file's permissions are kept; new files get perm.
func WriteFileAtomic(fsys VFS, path string, data []byte, perm fs.FileMode) error {
	if info, err := fsys.Stat(path); err == nil {
		if info.IsDir() {
			return &fs.PathError{Op: "write", Path: path, Err: errIsDir}
		}
		perm = info.Mode().Perm()
	}

	tmp := TempPath(fsys, path)
	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return nil
}

// TempPath returns the hidden sibling WriteFileAtomic writes before
// renaming it over path.
func TempPath(fsys VFS, path string) string {
	return fsys.Join(fsys.Dir(path), "."+fsys.Base(path)+".zing-tmp")
}
