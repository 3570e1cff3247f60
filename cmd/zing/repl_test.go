package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dshills/zing/internal/app"
	"github.com/dshills/zing/internal/project/vfs"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer, *vfs.MemFS) {
	t.Helper()
	mem := vfs.NewMemFS()
	s := app.NewSession(app.WithFS(mem))
	t.Cleanup(func() { _ = s.Close() })
	var out bytes.Buffer
	return NewREPL(s, strings.NewReader(""), &out, ""), &out, mem
}

func TestREPL_Commands(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
		cmd   string
		want  string
	}{
		{"help", nil, "help", "insert <pos> <text>"},
		{"unknown", nil, "frobnicate", `unknown command "frobnicate"`},
		{"insert raw text", []string{"insert 0 two words"}, "print", "two words\n"},
		{"insert quoted", []string{`insert 0 "a\tb"`}, "slice 0 3", `"a\tb"`},
		{"insert bad quote", nil, `insert 0 "open`, "bad quoted text"},
		{"insert bad position", nil, "insert x y", `bad position "x"`},
		{"insert out of bounds", nil, "insert 5 x", "out of bounds"},
		{"remove usage", nil, "remove 1", "usage: remove <start> <end>"},
		{"line", []string{`insert 0 "a\nb"`}, "line 1", `"b"`},
		{"line out of bounds", nil, "line 3", "out of bounds"},
		{"index", []string{`insert 0 "ab\ncd"`}, "index 1 1", "4\n"},
		{"pos wide", []string{"insert 0 日本"}, "pos 1", "line 0, col 1 (Ln 1, Col 3)"},
		{"undo nothing", nil, "undo", ""},
		{"status without path", []string{"insert 0 x"}, "status", "path:     (none)"},
		{"status", []string{"insert 0 x"}, "status", "modified: true"},
		{"status words", []string{`insert 0 "one two\n three"`}, "status", "words:    3"},
		{"history empty", nil, "history", "undo (limit unbounded):\n  (none)\nredo:\n  (none)\n"},
		{"print lines", []string{`insert 0 "a\n\nb"`}, "print", "a\n\nb\n"},
		{"diff without path", nil, "diff", "no file path associated"},
		{"close last tab", nil, "close", "cannot close the last tab"},
		{"new tab", nil, "new", "tab 2: Untitled-2"},
		{"tab bad index", nil, "tab 9", "tab not found: 9"},
		{"open missing", nil, "open /nope.txt", "error: open /nope.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out, _ := newTestREPL(t)
			for _, line := range tt.setup {
				r.Handle(line)
			}
			out.Reset()

			if !r.Handle(tt.cmd) {
				t.Fatalf("%q should not end the session", tt.cmd)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("%q printed %q, want %q", tt.cmd, out.String(), tt.want)
			}
		})
	}
}

func TestREPL_Tabs(t *testing.T) {
	r, out, mem := newTestREPL(t)
	if err := mem.AddFile("/a.txt", "alpha\n"); err != nil {
		t.Fatal(err)
	}

	r.Handle("open /a.txt")
	if !strings.Contains(out.String(), "tab 1: a.txt (2 lines)") {
		t.Fatalf("open output = %q", out.String())
	}

	r.Handle("new")
	r.Handle("insert 0 scratch")
	out.Reset()
	r.Handle("tabs")
	if out.String() != "  1 a.txt\n> 2 Untitled-2*\n" {
		t.Errorf("tabs = %q", out.String())
	}

	out.Reset()
	r.Handle("close")
	if !strings.Contains(out.String(), "unsaved changes") {
		t.Errorf("close of modified tab = %q", out.String())
	}
	r.Handle("close!")

	out.Reset()
	r.Handle("tabs")
	if out.String() != "> 1 a.txt\n" {
		t.Errorf("tabs after close = %q", out.String())
	}

	out.Reset()
	r.Handle("tab next")
	if out.String() != "tab 1: a.txt\n" {
		t.Errorf("tab next = %q", out.String())
	}
}

func TestREPL_DiffAndReload(t *testing.T) {
	r, out, mem := newTestREPL(t)
	if err := mem.AddFile("/d.txt", "same\nold\n"); err != nil {
		t.Fatal(err)
	}
	r.Handle("open /d.txt")

	out.Reset()
	r.Handle("diff")
	if out.String() != "no differences\n" {
		t.Errorf("diff = %q", out.String())
	}

	r.Handle("remove 5 8")
	r.Handle("insert 5 new")
	out.Reset()
	r.Handle("diff")
	if !strings.Contains(out.String(), "-old\n+new\n") {
		t.Errorf("diff = %q", out.String())
	}

	r.Handle("reload")
	out.Reset()
	r.Handle("print")
	if out.String() != "same\nold\n\n" {
		t.Errorf("after reload = %q", out.String())
	}
}

func TestREPL_Stats(t *testing.T) {
	r, out, mem := newTestREPL(t)
	if err := mem.AddFile("/s.txt", "x"); err != nil {
		t.Fatal(err)
	}
	r.Handle("open /s.txt")

	out.Reset()
	r.Handle("stats")
	if !strings.Contains(out.String(), "open     count=1 errors=0") {
		t.Errorf("stats = %q", out.String())
	}
}

func TestREPL_Quit(t *testing.T) {
	r, out, _ := newTestREPL(t)

	if r.Handle("quit") {
		t.Error("quit with nothing modified should end the session")
	}

	r.Handle("insert 0 x")
	if !r.Handle("quit") {
		t.Error("quit with unsaved changes should be refused")
	}
	if !strings.Contains(out.String(), "use quit! to discard") {
		t.Errorf("output = %q", out.String())
	}
	if r.Handle("quit!") {
		t.Error("quit! should end the session")
	}
}

func TestREPL_RunStopsOnCancel(t *testing.T) {
	mem := vfs.NewMemFS()
	s := app.NewSession(app.WithFS(mem))
	defer s.Close()

	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader that never returns would block; an empty one ends on EOF.
	// Either way Run must return once ctx is done.
	NewREPL(s, strings.NewReader("print\n"), &out, "zing> ").Run(ctx)
}

func TestREPL_History(t *testing.T) {
	r, out, _ := newTestREPL(t)
	r.Handle("insert 0 ab")
	r.Handle("insert 2 c")
	r.Handle("remove 0 1")
	r.Handle("undo")

	out.Reset()
	r.Handle("history")
	got := out.String()

	undo, redo, ok := strings.Cut(got, "redo:\n")
	if !ok {
		t.Fatalf("history = %q", got)
	}
	first := strings.Index(undo, "insert 1 chars at 2")
	second := strings.Index(undo, "insert 2 chars at 0")
	if first < 0 || second < 0 || first > second {
		t.Errorf("undo entries should be listed newest first:\n%s", undo)
	}
	if !strings.Contains(redo, "delete [0, 1)") {
		t.Errorf("redo entries = %q", redo)
	}
}
