// Package watcher reports external changes to files open in the editor.
//
// Files are watched through their parent directory, so editors that save by
// writing a temporary file and renaming it over the original are still seen.
// Rapid changes to the same file are coalesced into one event.
package watcher

import (
	"errors"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
	ErrIsDirectory     = errors.New("path is a directory")
	ErrWatchLimit      = errors.New("maximum watch limit reached")
)

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates the file was created (or renamed into place).
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
	// OpChmod indicates file permissions were changed.
	OpChmod
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Changed reports whether the file's content may differ after op.
func (op Op) Changed() bool {
	return op&(OpCreate|OpWrite) != 0
}

// Gone reports whether the file may no longer exist after op.
func (op Op) Gone() bool {
	return op&(OpRemove|OpRename) != 0 && op&OpCreate == 0
}

// Event represents a change to a watched file.
type Event struct {
	// Path is the absolute path of the file, as passed to Add.
	Path string

	// Op is the union of the operations seen within the debounce window.
	Op Op

	// Timestamp is when the last coalesced operation occurred.
	Timestamp time.Time
}

// Stats provides watcher status information.
type Stats struct {
	WatchedFiles  int
	WatchedDirs   int
	PendingEvents int
	TotalEvents   int64
	Errors        int64
	LastError     error
	StartTime     time.Time
}

// Watcher monitors individual files for external changes.
type Watcher interface {
	// Add starts watching a file. Returns ErrAlreadyWatching if the file
	// is already watched.
	Add(path string) error

	// Remove stops watching a file. Returns ErrNotWatching if it isn't.
	Remove(path string) error

	// Events returns the channel of debounced change events.
	// The channel is closed when the watcher is closed.
	Events() <-chan Event

	// Errors returns the channel of watcher errors.
	// The channel is closed when the watcher is closed.
	Errors() <-chan error

	// Close stops the watcher and releases resources.
	Close() error
}

// Config holds watcher configuration options.
type Config struct {
	// DebounceDelay is how long a file must be quiet before its event is
	// delivered. Default: 100ms
	DebounceDelay time.Duration

	// BufferSize is the size of the event and error channels.
	// Default: 100
	BufferSize int

	// MaxWatches is the maximum number of files to watch.
	// 0 means unlimited.
	MaxWatches int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
		BufferSize:    100,
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithDebounceDelay sets the debounce delay.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Config) {
		c.DebounceDelay = d
	}
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// WithMaxWatches sets the maximum number of watched files.
func WithMaxWatches(n int) Option {
	return func(c *Config) {
		c.MaxWatches = n
	}
}
