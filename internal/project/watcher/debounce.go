package watcher

import (
	"sync"
	"time"
)

// debouncer coalesces events per path. An event is delivered once its path
// has been quiet for the delay; operations seen meanwhile are merged.
type debouncer struct {
	delay time.Duration
	fire  func(Event)

	mu      sync.Mutex
	pending map[string]*pendingEvent
	stopped bool
}

// pendingEvent tracks a debounced event.
type pendingEvent struct {
	event Event
	timer *time.Timer
}

func newDebouncer(delay time.Duration, fire func(Event)) *debouncer {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &debouncer{
		delay:   delay,
		fire:    fire,
		pending: make(map[string]*pendingEvent),
	}
}

// add schedules event, merging it into a pending event for the same path
// and restarting that path's timer.
func (d *debouncer) add(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if p, exists := d.pending[event.Path]; exists {
		p.event.Op |= event.Op
		p.event.Timestamp = event.Timestamp
		p.timer.Reset(d.delay)
		return
	}

	path := event.Path
	d.pending[path] = &pendingEvent{
		event: event,
		timer: time.AfterFunc(d.delay, func() { d.release(path) }),
	}
}

// release delivers the pending event for path, if any.
func (d *debouncer) release(path string) {
	d.mu.Lock()
	p, exists := d.pending[path]
	if !exists || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	event := p.event
	d.mu.Unlock()

	d.fire(event)
}

// drop discards any pending event for path.
func (d *debouncer) drop(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, exists := d.pending[path]; exists {
		p.timer.Stop()
		delete(d.pending, path)
	}
}

// flush delivers every pending event immediately.
func (d *debouncer) flush() {
	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for path, p := range d.pending {
		p.timer.Stop()
		paths = append(paths, path)
	}
	d.mu.Unlock()

	for _, path := range paths {
		d.release(path)
	}
}

// stop cancels all pending events. Later adds are ignored.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}

func (d *debouncer) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
