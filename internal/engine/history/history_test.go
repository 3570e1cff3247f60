package history

import (
	"errors"
	"testing"
)

var errBounds = errors.New("out of bounds")

// runeDoc is a minimal Target over a rune slice.
type runeDoc struct {
	text  []rune
	calls int
}

func (d *runeDoc) ReplayInsert(pos int, text string) error {
	d.calls++
	if pos < 0 || pos > len(d.text) {
		return errBounds
	}
	ins := []rune(text)
	out := make([]rune, 0, len(d.text)+len(ins))
	out = append(out, d.text[:pos]...)
	out = append(out, ins...)
	d.text = append(out, d.text[pos:]...)
	return nil
}

func (d *runeDoc) ReplayRemove(start, end int) error {
	d.calls++
	if start < 0 || start > end || end > len(d.text) {
		return errBounds
	}
	d.text = append(d.text[:start:start], d.text[end:]...)
	return nil
}

// edit applies op to the doc and records it, the way a buffer would.
func edit(t *testing.T, h *History, d *runeDoc, op Operation) {
	t.Helper()
	if err := op.Apply(d); err != nil {
		t.Fatalf("apply %s: %v", op.Description(), err)
	}
	h.Record(op)
}

func TestOperationInverse(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		op      Operation
		after   string
	}{
		{"insert", "hello", Insert{Position: 5, Text: " world"}, "hello world"},
		{"insert multibyte", "ab", Insert{Position: 1, Text: "世界"}, "a世界b"},
		{"delete", "hello world", Delete{Start: 0, End: 6, Text: "hello "}, "world"},
		{"delete multibyte", "a世界b", Delete{Start: 1, End: 3, Text: "世界"}, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &runeDoc{text: []rune(tt.initial)}
			if err := tt.op.Apply(d); err != nil {
				t.Fatal(err)
			}
			if string(d.text) != tt.after {
				t.Fatalf("after Apply = %q, want %q", string(d.text), tt.after)
			}
			if err := tt.op.Revert(d); err != nil {
				t.Fatal(err)
			}
			if string(d.text) != tt.initial {
				t.Errorf("after Revert = %q, want %q", string(d.text), tt.initial)
			}
		})
	}
}

func TestUndoRedoEmpty(t *testing.T) {
	h := New(0)
	d := &runeDoc{}

	did, err := h.Undo(d)
	if did || err != nil {
		t.Errorf("Undo on empty = %v, %v", did, err)
	}
	did, err = h.Redo(d)
	if did || err != nil {
		t.Errorf("Redo on empty = %v, %v", did, err)
	}
	if d.calls != 0 {
		t.Error("empty undo/redo touched the target")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New(0)
	d := &runeDoc{}

	edit(t, h, d, Insert{Position: 0, Text: "Hello"})
	edit(t, h, d, Insert{Position: 5, Text: ", world!"})
	edit(t, h, d, Delete{Start: 0, End: 7, Text: "Hello, "})

	states := []string{"world!", "Hello, world!", "Hello", ""}
	if string(d.text) != states[0] {
		t.Fatalf("text = %q", string(d.text))
	}

	for i := 1; i < len(states); i++ {
		if _, err := h.Undo(d); err != nil {
			t.Fatal(err)
		}
		if string(d.text) != states[i] {
			t.Errorf("after %d undos = %q, want %q", i, string(d.text), states[i])
		}
	}
	if h.CanUndo() || h.RedoCount() != 3 {
		t.Errorf("CanUndo=%v RedoCount=%d", h.CanUndo(), h.RedoCount())
	}

	for i := len(states) - 2; i >= 0; i-- {
		if _, err := h.Redo(d); err != nil {
			t.Fatal(err)
		}
		if string(d.text) != states[i] {
			t.Errorf("redo = %q, want %q", string(d.text), states[i])
		}
	}
	if h.CanRedo() || h.UndoCount() != 3 {
		t.Errorf("CanRedo=%v UndoCount=%d", h.CanRedo(), h.UndoCount())
	}
}

func TestRecordClearsRedo(t *testing.T) {
	h := New(0)
	d := &runeDoc{}

	edit(t, h, d, Insert{Position: 0, Text: "abc"})
	if _, err := h.Undo(d); err != nil {
		t.Fatal(err)
	}
	if !h.CanRedo() {
		t.Fatal("expected redo after undo")
	}

	edit(t, h, d, Insert{Position: 0, Text: "x"})
	if h.CanRedo() {
		t.Error("Record should clear the redo stack")
	}
	if did, _ := h.Redo(d); did {
		t.Error("Redo after new edit should be a no-op")
	}
}

func TestUndoDoesNotClearRedo(t *testing.T) {
	h := New(0)
	d := &runeDoc{}
	edit(t, h, d, Insert{Position: 0, Text: "a"})
	edit(t, h, d, Insert{Position: 1, Text: "b"})

	_, _ = h.Undo(d)
	_, _ = h.Undo(d)
	_, _ = h.Redo(d)
	if h.RedoCount() != 1 || h.UndoCount() != 1 {
		t.Errorf("undo=%d redo=%d, want 1 and 1", h.UndoCount(), h.RedoCount())
	}
}

func TestFailedReplayRestoresStacks(t *testing.T) {
	h := New(0)
	h.Record(Insert{Position: 10, Text: "zz"})
	d := &runeDoc{text: []rune("short")}

	did, err := h.Undo(d)
	if !errors.Is(err, errBounds) || did {
		t.Fatalf("Undo = %v, %v; want bounds error", did, err)
	}
	if h.UndoCount() != 1 || h.RedoCount() != 0 {
		t.Errorf("stacks changed: undo=%d redo=%d", h.UndoCount(), h.RedoCount())
	}

	h2 := New(0)
	d2 := &runeDoc{text: []rune("abc")}
	edit(t, h2, d2, Delete{Start: 0, End: 3, Text: "abc"})
	_, _ = h2.Undo(d2)
	d2.text = nil

	if _, err := h2.Redo(d2); !errors.Is(err, errBounds) {
		t.Fatalf("Redo error = %v, want bounds error", err)
	}
	if h2.UndoCount() != 0 || h2.RedoCount() != 1 {
		t.Errorf("stacks changed: undo=%d redo=%d", h2.UndoCount(), h2.RedoCount())
	}
}

func TestMaxEntries(t *testing.T) {
	h := New(3)
	d := &runeDoc{}
	for i := range 5 {
		edit(t, h, d, Insert{Position: i, Text: "x"})
	}
	if h.UndoCount() != 3 {
		t.Errorf("UndoCount = %d, want 3", h.UndoCount())
	}

	if info := h.UndoInfo(); info[0].Description != "insert 1 chars at 2" {
		t.Errorf("oldest kept entry = %q", info[0].Description)
	}

	h.SetMaxEntries(1)
	if h.UndoCount() != 1 || h.MaxEntries() != 1 {
		t.Errorf("after SetMaxEntries(1): count=%d max=%d", h.UndoCount(), h.MaxEntries())
	}

	if New(-1).MaxEntries() != 0 {
		t.Error("negative max should mean unbounded")
	}
}

func TestUndoRedoInfo(t *testing.T) {
	h := New(0)
	h.Record(Insert{Position: 0, Text: "ab"})
	h.Record(Delete{Start: 0, End: 1, Text: "a"})

	info := h.UndoInfo()
	if len(info) != 2 {
		t.Fatalf("UndoInfo len = %d", len(info))
	}
	if info[0].Description != "insert 2 chars at 0" || info[1].Description != "delete [0, 1)" {
		t.Errorf("descriptions = %q, %q", info[0].Description, info[1].Description)
	}
	if info[0].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if len(h.RedoInfo()) != 0 {
		t.Error("RedoInfo should be empty")
	}

	d := &runeDoc{text: []rune("b")}
	if _, err := h.Undo(d); err != nil {
		t.Fatal(err)
	}
	redo := h.RedoInfo()
	if len(redo) != 1 || redo[0].Description != "delete [0, 1)" {
		t.Errorf("RedoInfo = %+v", redo)
	}
	if len(h.UndoInfo()) != 1 {
		t.Errorf("UndoInfo after undo = %+v", h.UndoInfo())
	}
}

func TestGroupedEntry(t *testing.T) {
	h := New(0)
	d := &runeDoc{text: []rune("old text")}

	// Replace the whole document as one undo unit.
	if err := d.ReplayRemove(0, 8); err != nil {
		t.Fatal(err)
	}
	if err := d.ReplayInsert(0, "new"); err != nil {
		t.Fatal(err)
	}
	h.Record(Delete{Start: 0, End: 8, Text: "old text"}, Insert{Position: 0, Text: "new"})

	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount = %d, want 1", h.UndoCount())
	}
	if _, err := h.Undo(d); err != nil {
		t.Fatal(err)
	}
	if string(d.text) != "old text" {
		t.Errorf("after undo = %q", string(d.text))
	}
	if _, err := h.Redo(d); err != nil {
		t.Fatal(err)
	}
	if string(d.text) != "new" {
		t.Errorf("after redo = %q", string(d.text))
	}

	info := h.UndoInfo()
	if len(info) != 1 || info[0].Description != "delete [0, 8); insert 3 chars at 0" {
		t.Errorf("UndoInfo = %+v", info)
	}
}

func TestGroupedEntryRollsBackOnFailure(t *testing.T) {
	h := New(0)
	// The second step cannot be reverted against this document.
	h.Record(Insert{Position: 0, Text: "ab"}, Insert{Position: 50, Text: "c"})
	d := &runeDoc{text: []rune("abcd")}

	if _, err := h.Undo(d); !errors.Is(err, errBounds) {
		t.Fatalf("Undo error = %v", err)
	}
	if string(d.text) != "abcd" {
		t.Errorf("document changed to %q", string(d.text))
	}
	if h.UndoCount() != 1 {
		t.Errorf("UndoCount = %d, want 1", h.UndoCount())
	}

	h.Record()
	if h.UndoCount() != 1 {
		t.Error("recording nothing should not create an entry")
	}
}
