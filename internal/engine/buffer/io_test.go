package buffer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/zing/internal/project/vfs"
)

func TestLoad(t *testing.T) {
	mem := vfs.NewMemFS()
	if err := mem.AddFile("/docs/a.txt", "Line 1\nLine 2"); err != nil {
		t.Fatal(err)
	}

	b, err := Load("/docs/a.txt", WithFS(mem))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b.Text() != "Line 1\nLine 2" {
		t.Errorf("text = %q", b.Text())
	}
	if b.IsModified() || b.CanUndo() || b.CanRedo() {
		t.Error("loaded buffer should be unmodified with empty history")
	}
	if path, ok := b.FilePath(); !ok || path != "/docs/a.txt" {
		t.Errorf("FilePath = %q, %v", path, ok)
	}
	if b.Encoding() != vfs.EncodingUTF8 {
		t.Errorf("Encoding = %q", b.Encoding())
	}
}

func TestLoadErrors(t *testing.T) {
	mem := vfs.NewMemFS()
	if err := mem.AddFile("/bad.bin", "ok\xff\xfe\xfd"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		path  string
		cause error
	}{
		{"missing", "/missing.txt", fs.ErrNotExist},
		{"invalid utf-8", "/bad.bin", vfs.ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Load(tt.path, WithFS(mem))
			if b != nil {
				t.Error("failed Load should not return a buffer")
			}
			if !errors.Is(err, ErrIO) {
				t.Errorf("error %v is not ErrIO", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("error %v does not wrap %v", err, tt.cause)
			}
			var ioErr *IOError
			if !errors.As(err, &ioErr) || ioErr.Path != tt.path {
				t.Errorf("expected *IOError for %s, got %v", tt.path, err)
			}
		})
	}
}

func TestSaveWithoutPath(t *testing.T) {
	b := NewFromString("text")
	_ = b.Insert(0, "x")

	if err := b.Save(); !errors.Is(err, ErrNoAssociatedPath) {
		t.Fatalf("Save = %v, want ErrNoAssociatedPath", err)
	}
	if !b.IsModified() {
		t.Error("failed save should keep the modified flag")
	}
	if err := b.Reload(); !errors.Is(err, ErrNoAssociatedPath) {
		t.Errorf("Reload = %v, want ErrNoAssociatedPath", err)
	}
}

func TestSaveTo(t *testing.T) {
	mem := vfs.NewMemFS()
	if err := mem.MkdirAll("/out", 0o755); err != nil {
		t.Fatal(err)
	}

	b := New(WithFS(mem))
	_ = b.Insert(0, "saved text")

	if err := b.SaveTo("/out/file.txt"); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	if b.IsModified() {
		t.Error("SaveTo should clear modified")
	}
	if path, _ := b.FilePath(); path != "/out/file.txt" {
		t.Errorf("FilePath = %q", path)
	}

	data, err := mem.ReadFile("/out/file.txt")
	if err != nil || string(data) != "saved text" {
		t.Errorf("file = %q, %v", data, err)
	}
	if mem.Exists("/out/.file.txt.zing-tmp") {
		t.Error("temporary file left behind")
	}

	// Save goes to the associated path.
	_ = b.Insert(0, ">> ")
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}
	data, _ = mem.ReadFile("/out/file.txt")
	if string(data) != ">> saved text" {
		t.Errorf("after Save file = %q", data)
	}
	if b.CanUndo() != true {
		t.Error("saving must not clear history")
	}
}

func TestSaveToFailureKeepsState(t *testing.T) {
	mem := vfs.NewMemFS()
	b := New(WithFS(mem))
	_ = b.Insert(0, "x")

	err := b.SaveTo("/no/such/dir/file.txt")
	if !errors.Is(err, ErrIO) {
		t.Fatalf("SaveTo = %v, want ErrIO", err)
	}
	if !b.IsModified() {
		t.Error("failed save should keep the modified flag")
	}
	if _, ok := b.FilePath(); ok {
		t.Error("failed save should not set the path")
	}
}

func TestSaveWriteFault(t *testing.T) {
	mem := vfs.NewMemFS()
	if err := mem.AddFile("/f.txt", "disk"); err != nil {
		t.Fatal(err)
	}
	b, err := Load("/f.txt", WithFS(mem))
	if err != nil {
		t.Fatal(err)
	}
	_ = b.Insert(0, "new ")

	full := errors.New("no space left on device")
	mem.Fail("/f.txt", full)
	err = b.Save()
	if !errors.Is(err, ErrIO) || !errors.Is(err, full) {
		t.Fatalf("Save = %v, want ErrIO wrapping the fault", err)
	}
	if !b.IsModified() {
		t.Error("failed save should keep the modified flag")
	}
	if data, _ := mem.ReadFile("/f.txt"); string(data) != "disk" {
		t.Errorf("file changed by failed save: %q", data)
	}

	mem.Fail("/f.txt", nil)
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}
	if b.IsModified() {
		t.Error("successful save should clear the modified flag")
	}
}

func TestSaveRoundTripOS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("héllo\nwörld\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Insert(b.LenChars(), "end"); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "héllo\nwörld\nend" {
		t.Errorf("file = %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600 kept", info.Mode().Perm())
	}
}

func TestEncodingPreserved(t *testing.T) {
	mem := vfs.NewMemFS()
	// "hi" in UTF-16LE with BOM.
	if err := mem.AddFile("/u16.txt", "\xff\xfeh\x00i\x00"); err != nil {
		t.Fatal(err)
	}

	b, err := Load("/u16.txt", WithFS(mem))
	if err != nil {
		t.Fatal(err)
	}
	if b.Text() != "hi" || b.Encoding() != vfs.EncodingUTF16LE {
		t.Fatalf("text=%q encoding=%q", b.Text(), b.Encoding())
	}

	_ = b.Insert(2, "!")
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}
	data, _ := mem.ReadFile("/u16.txt")
	if string(data) != "\xff\xfeh\x00i\x00!\x00" {
		t.Errorf("saved bytes = %q", data)
	}
}

func TestReload(t *testing.T) {
	mem := vfs.NewMemFS()
	if err := mem.AddFile("/r.txt", "version 1"); err != nil {
		t.Fatal(err)
	}
	b, err := Load("/r.txt", WithFS(mem))
	if err != nil {
		t.Fatal(err)
	}

	if err := mem.WriteFile("/r.txt", []byte("version 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := b.Reload(); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "version 2" || b.IsModified() {
		t.Errorf("text=%q modified=%v", b.Text(), b.IsModified())
	}

	// The reload is undoable.
	if err := b.Undo(); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "version 1" {
		t.Errorf("undo after reload = %q", b.Text())
	}
}
