package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dshills/zing/internal/app"
	"github.com/dshills/zing/internal/engine/buffer"
	"github.com/dshills/zing/internal/engine/history"
	"github.com/dshills/zing/internal/project/vfs"
)

// REPL reads line commands and applies them to the active tab.
type REPL struct {
	session *app.Session
	in      io.Reader
	prompt  string

	mu  sync.Mutex
	out io.Writer
}

// NewREPL creates a REPL over session. An empty prompt disables it.
func NewREPL(session *app.Session, in io.Reader, out io.Writer, prompt string) *REPL {
	return &REPL{session: session, in: in, out: out, prompt: prompt}
}

func (r *REPL) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

// Run processes commands until quit, end of input or ctx is done.
func (r *REPL) Run(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.in)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if r.prompt != "" {
			r.printf("%s", r.prompt)
		}
		select {
		case <-ctx.Done():
			r.printf("\n")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !r.Handle(line) {
				return
			}
		}
	}
}

// Report prints background file results until the session closes the
// channel.
func (r *REPL) Report() {
	for res := range r.session.Results() {
		r.printResult(res)
	}
}

func (r *REPL) printResult(res app.FileResult) {
	if res.Err != nil {
		r.printf("error: %v\n", res.Err)
		return
	}
	switch res.Op {
	case app.OpOpen:
		r.printf("opened %s\n", res.Path)
	case app.OpSave:
		r.printf("saved %s\n", res.Path)
	case app.OpReload:
		r.printf("reloaded %s (changed on disk)\n", res.Path)
	case app.OpConflict:
		r.printf("warning: %s changed on disk; you have unsaved edits (use diff, reload or save)\n", res.Path)
	case app.OpRemoved:
		r.printf("warning: %s was removed from disk\n", res.Path)
	}
}

// Handle runs one command line and reports whether to keep going.
func (r *REPL) Handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch strings.ToLower(cmd) {
	case "help", "?":
		r.printf("%s", helpText)
	case "quit", "exit", "q":
		if n := len(r.session.Modified()); n > 0 {
			r.printf("%d tab(s) have unsaved changes; use quit! to discard them\n", n)
			return true
		}
		return false
	case "quit!", "q!":
		return false
	case "new":
		t := r.session.NewTab()
		r.printf("tab %d: %s\n", r.session.ActiveIndex()+1, t.Title())
	case "open":
		err = r.cmdOpen(rest)
	case "close", "close!":
		err = r.session.CloseTab(r.session.Active().ID(), cmd == "close!")
	case "tabs":
		r.cmdTabs()
	case "tab":
		err = r.cmdTab(rest)
	case "insert", "i":
		err = r.cmdInsert(rest)
	case "remove", "rm":
		err = r.cmdRemove(rest)
	case "slice":
		err = r.cmdSlice(rest)
	case "line":
		err = r.cmdLine(rest)
	case "pos":
		err = r.cmdPos(rest)
	case "index":
		err = r.cmdIndex(rest)
	case "undo", "u":
		err = r.edit(func(b *buffer.TextBuffer) error { return b.Undo() })
	case "redo":
		err = r.edit(func(b *buffer.TextBuffer) error { return b.Redo() })
	case "save", "w":
		err = r.session.SaveAsync(r.session.Active())
	case "saveas":
		if rest == "" {
			return r.usage("saveas <path>")
		}
		err = r.session.SaveAsAsync(r.session.Active(), rest)
	case "reload":
		err = r.edit(func(b *buffer.TextBuffer) error { return b.Reload() })
	case "status":
		r.cmdStatus()
	case "stats":
		r.cmdStats()
	case "diff":
		err = r.cmdDiff()
	case "history", "hist":
		r.cmdHistory()
	case "print", "p":
		r.session.Active().View(func(s *buffer.Snapshot) {
			for it := s.Lines(); it.Next(); {
				r.printf("%s\n", it.Text())
			}
		})
	default:
		r.printf("unknown command %q; type help for a list\n", cmd)
	}

	if err != nil {
		r.printf("error: %v\n", err)
	}
	return true
}

func (r *REPL) usage(u string) bool {
	r.printf("usage: %s\n", u)
	return true
}

func (r *REPL) edit(fn func(b *buffer.TextBuffer) error) error {
	return r.session.Active().Edit(fn)
}

func (r *REPL) cmdOpen(path string) error {
	if path == "" {
		r.usage("open <path>")
		return nil
	}
	t, err := r.session.Open(path)
	if err != nil {
		return err
	}
	r.printf("tab %d: %s (%d lines)\n", r.session.ActiveIndex()+1, t.Title(), t.Buffer().LenLines())
	return nil
}

func (r *REPL) cmdTabs() {
	active := r.session.ActiveIndex()
	for i, t := range r.session.Tabs() {
		marker := " "
		if i == active {
			marker = ">"
		}
		r.printf("%s %d %s\n", marker, i+1, t.DisplayTitle())
	}
}

func (r *REPL) cmdTab(arg string) error {
	switch arg {
	case "next", "n":
		r.session.Next()
	case "prev", "p":
		r.session.Previous()
	default:
		n, err := strconv.Atoi(arg)
		if err != nil {
			r.usage("tab <n>|next|prev")
			return nil
		}
		tabs := r.session.Tabs()
		if n < 1 || n > len(tabs) {
			return fmt.Errorf("%w: %d", app.ErrTabNotFound, n)
		}
		if err := r.session.SetActive(tabs[n-1].ID()); err != nil {
			return err
		}
	}
	r.printf("tab %d: %s\n", r.session.ActiveIndex()+1, r.session.Active().DisplayTitle())
	return nil
}

func (r *REPL) cmdInsert(args string) error {
	posArg, text, ok := strings.Cut(args, " ")
	if !ok {
		r.usage("insert <pos> <text>  (quote text to use escapes like \\n)")
		return nil
	}
	pos, err := strconv.Atoi(posArg)
	if err != nil {
		return fmt.Errorf("bad position %q", posArg)
	}
	text, err = unquote(text)
	if err != nil {
		return err
	}
	return r.edit(func(b *buffer.TextBuffer) error { return b.Insert(pos, text) })
}

func (r *REPL) cmdRemove(args string) error {
	nums, err := ints(args, 2)
	if err != nil {
		r.usage("remove <start> <end>")
		return nil
	}
	return r.edit(func(b *buffer.TextBuffer) error { return b.Remove(nums[0], nums[1]) })
}

func (r *REPL) cmdSlice(args string) error {
	nums, err := ints(args, 2)
	if err != nil {
		r.usage("slice <start> <end>")
		return nil
	}
	s, err := r.session.Active().Buffer().Slice(nums[0], nums[1])
	if err != nil {
		return err
	}
	r.printf("%q\n", s)
	return nil
}

func (r *REPL) cmdLine(args string) error {
	nums, err := ints(args, 1)
	if err != nil {
		r.usage("line <n>")
		return nil
	}
	s, err := r.session.Active().Buffer().Line(nums[0])
	if err != nil {
		return err
	}
	r.printf("%q\n", s)
	return nil
}

func (r *REPL) cmdPos(args string) error {
	nums, err := ints(args, 1)
	if err != nil {
		r.usage("pos <char index>")
		return nil
	}
	st, err := r.session.Active().CursorStatus(nums[0])
	if err != nil {
		return err
	}
	r.printf("line %d, col %d (%s)\n", st.Line, st.Column, st)
	return nil
}

func (r *REPL) cmdIndex(args string) error {
	nums, err := ints(args, 2)
	if err != nil {
		r.usage("index <line> <col>")
		return nil
	}
	idx, err := r.session.Active().Buffer().LineColToChar(nums[0], nums[1])
	if err != nil {
		return err
	}
	r.printf("%d\n", idx)
	return nil
}

func (r *REPL) cmdStatus() {
	t := r.session.Active()
	b := t.Buffer()
	path, ok := t.Path()
	if !ok {
		path = "(none)"
	}
	r.printf("tab:      %d %s\n", r.session.ActiveIndex()+1, t.DisplayTitle())
	r.printf("path:     %s\n", path)
	r.printf("chars:    %d\n", b.LenChars())
	r.printf("lines:    %d\n", b.LenLines())
	r.printf("words:    %d\n", t.WordCount())
	r.printf("modified: %v\n", b.IsModified())
	r.printf("encoding: %s\n", b.Encoding())
	r.printf("endings:  %s\n", vfs.DetectLineEnding(b.Text()))
	r.printf("undo:     %d\n", b.UndoCount())
	r.printf("redo:     %d\n", b.RedoCount())
}

func (r *REPL) cmdHistory() {
	b := r.session.Active().Buffer()
	limit := "unbounded"
	if n := b.UndoLimit(); n > 0 {
		limit = strconv.Itoa(n)
	}

	r.printf("undo (limit %s):\n", limit)
	r.printEntries(b.UndoHistory())
	r.printf("redo:\n")
	r.printEntries(b.RedoHistory())
}

// printEntries lists entries newest first, the order undo and redo walk them.
func (r *REPL) printEntries(entries []history.OperationInfo) {
	if len(entries) == 0 {
		r.printf("  (none)\n")
		return
	}
	for i, e := range slices.Backward(entries) {
		r.printf("  %d %s  %s\n", i+1, e.Timestamp.Format(time.TimeOnly), e.Description)
	}
}

func (r *REPL) cmdStats() {
	snap := r.session.Metrics().Snapshot()
	ops := make([]app.Op, 0, len(snap.Ops))
	for op := range snap.Ops {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	for _, op := range ops {
		s := snap.Ops[op]
		r.printf("%-8s count=%d errors=%d avg=%v max=%v\n", op, s.Count, s.Errors, s.Avg, s.Max)
	}
	r.printf("uptime   %v\n", snap.Uptime.Round(time.Millisecond))
}

func (r *REPL) cmdDiff() error {
	diff, err := r.session.Active().DiffOnDisk()
	if err != nil {
		return err
	}
	if diff == "" {
		r.printf("no differences\n")
		return nil
	}
	r.printf("%s", diff)
	return nil
}

// unquote interprets a Go-quoted string and returns other text as is.
func unquote(s string) (string, error) {
	if len(s) >= 2 && s[0] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return "", fmt.Errorf("bad quoted text: %w", err)
		}
		return u, nil
	}
	return s, nil
}

var errArgs = errors.New("wrong number of arguments")

func ints(args string, n int) ([]int, error) {
	fields := strings.Fields(args)
	if len(fields) != n {
		return nil, errArgs
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

const helpText = `Commands (positions are 0-indexed character offsets):

TABS
  new                     Open an empty tab
  open <path>             Open a file in a tab
  close, close!           Close the active tab (! discards changes)
  tabs                    List tabs
  tab <n>|next|prev       Switch tabs

EDITING
  insert <pos> <text>     Insert text; quote it for escapes: insert 0 "a\nb"
  remove <start> <end>    Remove characters in [start, end)
  undo, redo              Step through history
  history                 List undo and redo entries, newest first
  reload                  Replace the buffer with the file on disk (undoable)

QUERIES
  slice <start> <end>     Show characters in [start, end)
  line <n>                Show line n
  pos <index>             Line and column of a character index
  index <line> <col>      Character index of a line and column
  print                   Show the whole buffer
  status                  Show buffer details
  stats                   Show file operation counters
  diff                    Diff the file on disk against the buffer

FILES
  save                    Save to the associated path
  saveas <path>           Save to path and associate it

  help                    Show this help
  quit, quit!             Exit (! discards unsaved changes)
`
