package watcher

import (
	"sync"
	"testing"
	"time"
)

// collector records delivered events.
type collector struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func newCollector() *collector {
	return &collector{ch: make(chan Event, 100)}
}

func (c *collector) fire(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	c.ch <- e
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) wait(t *testing.T) Event {
	t.Helper()
	select {
	case e := <-c.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	d := newDebouncer(0, func(Event) {})
	if d.delay != 100*time.Millisecond {
		t.Errorf("delay = %v, want 100ms", d.delay)
	}
}

func TestDebouncer_SingleEvent(t *testing.T) {
	c := newCollector()
	d := newDebouncer(20*time.Millisecond, c.fire)

	d.add(Event{Path: "/a.txt", Op: OpWrite, Timestamp: time.Now()})
	if d.pendingCount() != 1 {
		t.Errorf("pendingCount = %d, want 1", d.pendingCount())
	}

	e := c.wait(t)
	if e.Path != "/a.txt" || e.Op != OpWrite {
		t.Errorf("event = %+v", e)
	}
	if d.pendingCount() != 0 {
		t.Errorf("pendingCount after fire = %d", d.pendingCount())
	}
}

func TestDebouncer_Coalescing(t *testing.T) {
	c := newCollector()
	d := newDebouncer(50*time.Millisecond, c.fire)

	d.add(Event{Path: "/a.txt", Op: OpRename})
	d.add(Event{Path: "/a.txt", Op: OpCreate})
	d.add(Event{Path: "/a.txt", Op: OpWrite})

	e := c.wait(t)
	if !e.Op.Has(OpRename) || !e.Op.Has(OpCreate) || !e.Op.Has(OpWrite) {
		t.Errorf("ops not merged: %v", e.Op)
	}

	time.Sleep(100 * time.Millisecond)
	if c.count() != 1 {
		t.Errorf("delivered %d events, want 1", c.count())
	}
}

func TestDebouncer_DifferentPaths(t *testing.T) {
	c := newCollector()
	d := newDebouncer(20*time.Millisecond, c.fire)

	d.add(Event{Path: "/a.txt", Op: OpWrite})
	d.add(Event{Path: "/b.txt", Op: OpWrite})

	seen := map[string]bool{}
	seen[c.wait(t).Path] = true
	seen[c.wait(t).Path] = true
	if !seen["/a.txt"] || !seen["/b.txt"] {
		t.Errorf("seen = %v", seen)
	}
}

func TestDebouncer_FlushAndDrop(t *testing.T) {
	c := newCollector()
	d := newDebouncer(time.Hour, c.fire)

	d.add(Event{Path: "/a.txt", Op: OpWrite})
	d.add(Event{Path: "/b.txt", Op: OpWrite})
	d.drop("/b.txt")
	d.flush()

	if c.count() != 1 {
		t.Fatalf("delivered %d events, want 1", c.count())
	}
	if e := c.wait(t); e.Path != "/a.txt" {
		t.Errorf("flushed %q", e.Path)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	c := newCollector()
	d := newDebouncer(10*time.Millisecond, c.fire)

	d.add(Event{Path: "/a.txt", Op: OpWrite})
	d.stop()
	d.add(Event{Path: "/b.txt", Op: OpWrite})

	time.Sleep(50 * time.Millisecond)
	if c.count() != 0 {
		t.Errorf("delivered %d events after stop", c.count())
	}
	if d.pendingCount() != 0 {
		t.Errorf("pendingCount = %d", d.pendingCount())
	}
}
