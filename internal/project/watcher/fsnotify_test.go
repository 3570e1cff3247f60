package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T, opts ...Option) *FSNotifyWatcher {
	t.Helper()
	w, err := NewFSNotifyWatcher(append([]Option{WithDebounceDelay(20 * time.Millisecond)}, opts...)...)
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// waitFor returns the first event for path matching op, failing on timeout.
func waitFor(t *testing.T, w *FSNotifyWatcher, path string, op Op) Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e := <-w.Events():
			if e.Path == path && e.Op&op != 0 {
				return e
			}
		case <-timeout:
			t.Fatalf("timeout waiting for %v on %s", op, path)
			return Event{}
		}
	}
}

func TestFSNotifyWatcher_AddRemove(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	if err := w.Add(a); err != nil {
		t.Fatalf("Add error = %v", err)
	}
	if err := w.Add(b); err != nil {
		t.Fatalf("Add error = %v", err)
	}
	if err := w.Add(a); !errors.Is(err, ErrAlreadyWatching) {
		t.Errorf("Add again error = %v, want ErrAlreadyWatching", err)
	}
	if !w.IsWatching(a) {
		t.Error("should be watching a")
	}

	stats := w.Stats()
	if stats.WatchedFiles != 2 || stats.WatchedDirs != 1 {
		t.Errorf("stats = %+v, want 2 files in 1 dir", stats)
	}
	if got := w.WatchedPaths(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("WatchedPaths = %v", got)
	}

	if err := w.Remove(a); err != nil {
		t.Fatalf("Remove error = %v", err)
	}
	if w.IsWatching(a) {
		t.Error("should not be watching a after Remove")
	}
	if err := w.Remove(a); !errors.Is(err, ErrNotWatching) {
		t.Errorf("Remove again error = %v, want ErrNotWatching", err)
	}
	if err := w.Remove(b); err != nil {
		t.Fatal(err)
	}
	if w.Stats().WatchedDirs != 0 {
		t.Error("directory watch should be released with its last file")
	}
}

func TestFSNotifyWatcher_AddInvalid(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()

	if err := w.Add(filepath.Join(dir, "missing.txt")); !errors.Is(err, ErrPathNotExist) {
		t.Errorf("Add missing error = %v, want ErrPathNotExist", err)
	}
	if err := w.Add(dir); !errors.Is(err, ErrIsDirectory) {
		t.Errorf("Add dir error = %v, want ErrIsDirectory", err)
	}
}

func TestFSNotifyWatcher_MaxWatches(t *testing.T) {
	w := newTestWatcher(t, WithMaxWatches(1))
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	if err := w.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(b); err == nil {
		t.Error("expected watch limit error")
	}
}

func TestFSNotifyWatcher_WriteEvent(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	other := filepath.Join(dir, "other.txt")
	writeFile(t, path, "v1")

	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}

	// Unwatched siblings are filtered out.
	writeFile(t, other, "noise")
	writeFile(t, path, "v2")

	e := waitFor(t, w, path, OpWrite|OpCreate)
	if !e.Op.Changed() {
		t.Errorf("op = %v, want a content change", e.Op)
	}
}

func TestFSNotifyWatcher_RenameOverTarget(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	writeFile(t, path, "v1")

	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}

	tmp := filepath.Join(dir, ".doc.txt.tmp")
	writeFile(t, tmp, "v2")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	e := waitFor(t, w, path, OpCreate)
	if e.Op.Gone() {
		t.Errorf("op = %v, file was replaced, not removed", e.Op)
	}
}

func TestFSNotifyWatcher_RemoveEvent(t *testing.T) {
	w := newTestWatcher(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, path, "v1")

	if err := w.Add(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	e := waitFor(t, w, path, OpRemove)
	if !e.Op.Gone() {
		t.Errorf("op = %v, want Gone", e.Op)
	}
}

func TestFSNotifyWatcher_Close(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}

	if _, ok := <-w.Events(); ok {
		t.Error("events channel should be closed")
	}
	if _, ok := <-w.Errors(); ok {
		t.Error("errors channel should be closed")
	}

	path := filepath.Join(t.TempDir(), "x.txt")
	writeFile(t, path, "x")
	if err := w.Add(path); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Add after Close error = %v, want ErrWatcherClosed", err)
	}
}
