package app

import (
	"errors"
	"io/fs"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/zing/internal/config"
	"github.com/dshills/zing/internal/engine/buffer"
	"github.com/dshills/zing/internal/project/vfs"
	"github.com/dshills/zing/internal/project/watcher"
)

// Op identifies what a FileResult reports.
type Op int

const (
	// OpOpen is the completion of OpenAsync.
	OpOpen Op = iota
	// OpSave is the completion of SaveAsync or SaveAsAsync.
	OpSave
	// OpReload means an unmodified tab was reloaded after an external change.
	OpReload
	// OpConflict means the file changed on disk while the tab had unsaved edits.
	OpConflict
	// OpRemoved means the file was deleted or renamed away.
	OpRemoved
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpOpen:
		return "open"
	case OpSave:
		return "save"
	case OpReload:
		return "reload"
	case OpConflict:
		return "conflict"
	case OpRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// FileResult reports the outcome of background file work.
type FileResult struct {
	Op    Op
	TabID uuid.UUID
	Path  string
	Err   error
}

// Session is an ordered set of tabs, one buffer each, with exactly one
// active tab. There is always at least one tab.
type Session struct {
	mu       sync.RWMutex
	tabs     []*Tab
	active   int
	untitled int
	watched  map[string]int
	closed   bool

	fs      vfs.VFS
	logger  *Logger
	metrics *Metrics
	watcher watcher.Watcher
	maxUndo int
	tabSize int

	results chan FileResult
	done    chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

// WithFS sets the file system tabs load from and save to.
func WithFS(fsys vfs.VFS) Option {
	return func(s *Session) {
		s.fs = fsys
	}
}

// WithLogger sets the session logger.
func WithLogger(l *Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithWatcher enables external change detection. The session owns the
// watcher and closes it on Close.
func WithWatcher(w watcher.Watcher) Option {
	return func(s *Session) {
		s.watcher = w
	}
}

// WithMaxUndoEntries bounds the undo history of every buffer. Zero means
// unbounded.
func WithMaxUndoEntries(n int) Option {
	return func(s *Session) {
		s.maxUndo = n
	}
}

// WithTabSize sets the tab stop width used for display columns.
func WithTabSize(n int) Option {
	return func(s *Session) {
		s.tabSize = n
	}
}

// WithResultBuffer sets the capacity of the Results channel.
func WithResultBuffer(n int) Option {
	return func(s *Session) {
		s.results = make(chan FileResult, n)
	}
}

// NewSession creates a session holding one untitled tab.
func NewSession(opts ...Option) *Session {
	s := &Session{
		watched: make(map[string]int),
		fs:      vfs.NewOSFS(),
		logger:  NullLogger,
		metrics: NewMetrics(),
		tabSize: 4,
		results: make(chan FileResult, 16),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("session")

	s.tabs = []*Tab{s.newUntitledLocked()}

	if s.watcher != nil {
		s.wg.Go(s.watchLoop)
	}
	return s
}

// NewSessionFromConfig creates a session with the buffer and editor
// settings of cfg, watching open files when cfg enables it.
func NewSessionFromConfig(cfg *config.Config, logger *Logger, opts ...Option) (*Session, error) {
	bufCfg := cfg.Buffer()
	base := []Option{
		WithLogger(logger),
		WithMaxUndoEntries(bufCfg.MaxUndoEntries),
		WithTabSize(cfg.Editor().TabSize),
	}
	if bufCfg.WatchExternalChanges {
		w, err := watcher.NewFSNotifyWatcher(watcher.WithDebounceDelay(bufCfg.ReloadDebounce))
		if err != nil {
			return nil, NewOperationError("watch", "", err)
		}
		base = append(base, WithWatcher(w))
	}
	return NewSession(append(base, opts...)...), nil
}

func (s *Session) bufferOptions() []buffer.Option {
	return []buffer.Option{buffer.WithFS(s.fs), buffer.WithMaxUndoEntries(s.maxUndo)}
}

func (s *Session) newUntitledLocked() *Tab {
	s.untitled++
	return newTab(buffer.New(s.bufferOptions()...), s.untitled, s.tabSize, s.fs)
}

// Metrics returns the session's file operation counters.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Results returns the channel background operations report on. It is
// closed by Close.
func (s *Session) Results() <-chan FileResult {
	return s.results
}

// Tabs

// NewTab appends an empty untitled tab and makes it active.
func (s *Session) NewTab() *Tab {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.newUntitledLocked()
	s.tabs = append(s.tabs, t)
	s.active = len(s.tabs) - 1
	return t
}

// CloseTab closes the tab with the given ID. A modified tab is only
// closed when force is set. The last tab cannot be closed.
func (s *Session) CloseTab(id uuid.UUID, force bool) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrTabNotFound
	}
	if len(s.tabs) == 1 {
		s.mu.Unlock()
		return ErrLastTab
	}
	t := s.tabs[idx]
	if t.IsModified() && !force {
		s.mu.Unlock()
		return NewOperationError("close", t.Title(), ErrUnsavedChanges)
	}

	s.tabs = slices.Delete(s.tabs, idx, idx+1)
	switch {
	case idx < s.active:
		s.active--
	case s.active >= len(s.tabs):
		s.active = len(s.tabs) - 1
	}
	path, hasPath := t.Path()
	s.mu.Unlock()

	if hasPath {
		s.unwatch(path)
	}
	s.logger.Debug("closed tab %s", t.Title())
	return nil
}

// Active returns the active tab.
func (s *Session) Active() *Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tabs[s.active]
}

// ActiveIndex returns the position of the active tab.
func (s *Session) ActiveIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive makes the tab with the given ID active.
func (s *Session) SetActive(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return ErrTabNotFound
	}
	s.active = idx
	return nil
}

// Next activates the following tab, wrapping around, and returns it.
func (s *Session) Next() *Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = (s.active + 1) % len(s.tabs)
	return s.tabs[s.active]
}

// Previous activates the preceding tab, wrapping around, and returns it.
func (s *Session) Previous() *Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = (s.active - 1 + len(s.tabs)) % len(s.tabs)
	return s.tabs[s.active]
}

// Tabs returns the tabs in display order.
func (s *Session) Tabs() []*Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tabs)
}

// Find returns the tab with the given ID.
func (s *Session) Find(id uuid.UUID) (*Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.tabs[idx], true
	}
	return nil, false
}

// FindPath returns the tab showing path.
func (s *Session) FindPath(path string) (*Tab, bool) {
	abs, err := s.fs.Abs(path)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.findPathLocked(abs)
	return t, t != nil
}

// Modified returns the tabs with unsaved edits.
func (s *Session) Modified() []*Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Tab
	for _, t := range s.tabs {
		if t.IsModified() {
			out = append(out, t)
		}
	}
	return out
}

func (s *Session) indexLocked(id uuid.UUID) int {
	return slices.IndexFunc(s.tabs, func(t *Tab) bool { return t.id == id })
}

func (s *Session) findPathLocked(abs string) *Tab {
	for _, t := range s.tabs {
		if p, ok := t.Path(); ok && p == abs {
			return t
		}
	}
	return nil
}

// Files

// Open loads path into a new active tab. A tab already showing the file
// is activated instead. A pristine untitled active tab is replaced.
func (s *Session) Open(path string) (*Tab, error) {
	abs, err := s.fs.Abs(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	if t, ok := s.activateIfOpen(abs); ok {
		return t, nil
	}

	timer := StartTimer()
	buf, err := buffer.Load(abs, s.bufferOptions()...)
	s.metrics.Record(OpOpen, timer.Elapsed(), err)
	if err != nil {
		s.logger.Warn("open failed: %v", err)
		return nil, NewOperationError("open", path, err)
	}

	s.mu.Lock()
	if t := s.findPathLocked(abs); t != nil {
		// Opened concurrently; keep the first.
		s.active = s.indexLocked(t.id)
		s.mu.Unlock()
		return t, nil
	}
	t := newTab(buf, 0, s.tabSize, s.fs)
	if cur := s.tabs[s.active]; isPristine(cur) {
		s.tabs[s.active] = t
	} else {
		s.tabs = append(s.tabs, t)
		s.active = len(s.tabs) - 1
	}
	s.mu.Unlock()

	s.watch(abs)
	s.logger.WithField("chars", buf.LenChars()).Info("opened %s", abs)
	return t, nil
}

func (s *Session) activateIfOpen(abs string) (*Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findPathLocked(abs)
	if t == nil {
		return nil, false
	}
	s.active = s.indexLocked(t.id)
	return t, true
}

func isPristine(t *Tab) bool {
	_, hasPath := t.Path()
	return !hasPath && !t.IsModified() && t.buf.IsEmpty() && !t.buf.CanUndo()
}

// Save writes tab to its associated path.
func (s *Session) Save(t *Tab) error {
	path, ok := t.Path()
	if !ok {
		return NewOperationError("save", t.Title(), buffer.ErrNoAssociatedPath)
	}
	timer := StartTimer()
	err := t.buf.Save()
	s.metrics.Record(OpSave, timer.Elapsed(), err)
	if err != nil {
		s.logger.Warn("save failed: %v", err)
		return NewOperationError("save", path, err)
	}
	s.logger.Info("saved %s", path)
	return nil
}

// SaveAs writes tab to path and associates it with the tab.
func (s *Session) SaveAs(t *Tab, path string) error {
	abs, err := s.fs.Abs(path)
	if err != nil {
		return NewOperationError("save", path, err)
	}
	old, hadPath := t.Path()

	timer := StartTimer()
	err = t.buf.SaveTo(abs)
	s.metrics.Record(OpSave, timer.Elapsed(), err)
	if err != nil {
		s.logger.Warn("save failed: %v", err)
		return NewOperationError("save", path, err)
	}

	if !hadPath || old != abs {
		if hadPath {
			s.unwatch(old)
		}
		s.watch(abs)
	}
	s.logger.Info("saved %s", abs)
	return nil
}

// OpenAsync opens path in the background and reports OpOpen on Results.
func (s *Session) OpenAsync(path string) error {
	return s.spawn(func() {
		r := FileResult{Op: OpOpen, Path: path}
		t, err := s.Open(path)
		if t != nil {
			r.TabID = t.id
			r.Path, _ = t.Path()
		}
		r.Err = err
		s.report(r)
	})
}

// SaveAsync saves tab in the background and reports OpSave on Results.
func (s *Session) SaveAsync(t *Tab) error {
	return s.spawn(func() {
		path, _ := t.Path()
		s.report(FileResult{Op: OpSave, TabID: t.id, Path: path, Err: s.Save(t)})
	})
}

// SaveAsAsync saves tab to path in the background and reports OpSave on
// Results.
func (s *Session) SaveAsAsync(t *Tab, path string) error {
	return s.spawn(func() {
		err := s.SaveAs(t, path)
		if p, ok := t.Path(); ok && err == nil {
			path = p
		}
		s.report(FileResult{Op: OpSave, TabID: t.id, Path: path, Err: err})
	})
}

func (s *Session) spawn(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.wg.Go(fn)
	return nil
}

// report delivers r. Once the session is closing, r is dropped if the
// channel is full.
func (s *Session) report(r FileResult) {
	select {
	case s.results <- r:
		return
	default:
	}
	select {
	case s.results <- r:
	case <-s.done:
	}
}

// Close stops watching and waits for background work, then closes the
// Results channel. Buffered results stay readable.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
	}
	s.wg.Wait()
	close(s.results)
	return err
}

// External changes

// watch and unwatch keep one watch per path however many tabs show it.
func (s *Session) watch(abs string) {
	if s.watcher == nil {
		return
	}
	s.mu.Lock()
	s.watched[abs]++
	first := s.watched[abs] == 1
	s.mu.Unlock()

	if first {
		if err := s.watcher.Add(abs); err != nil && !errors.Is(err, watcher.ErrAlreadyWatching) {
			s.logger.Warn("watch %s: %v", abs, err)
		}
	}
}

func (s *Session) unwatch(abs string) {
	if s.watcher == nil {
		return
	}
	s.mu.Lock()
	s.watched[abs]--
	last := s.watched[abs] <= 0
	if last {
		delete(s.watched, abs)
	}
	s.mu.Unlock()

	if last {
		if err := s.watcher.Remove(abs); err != nil && !errors.Is(err, watcher.ErrNotWatching) {
			s.logger.Warn("unwatch %s: %v", abs, err)
		}
	}
}

func (s *Session) watchLoop() {
	events := s.watcher.Events()
	errs := s.watcher.Errors()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.reconcile(ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn("watcher: %v", err)
		case <-s.done:
			return
		}
	}
}

// reconcile brings the tab showing ev.Path in line with the disk and
// reports what it did.
func (s *Session) reconcile(ev watcher.Event) {
	timer := StartTimer()
	r, ok := s.reconcileTab(ev)
	if !ok {
		return
	}
	s.metrics.Record(r.Op, timer.Elapsed(), r.Err)

	switch {
	case r.Err != nil:
		s.logger.Warn("%v", r.Err)
	case r.Op == OpRemoved:
		s.logger.Warn("%s was removed", r.Path)
	case r.Op == OpConflict:
		s.logger.Warn("%s changed on disk with unsaved edits", r.Path)
	default:
		s.logger.Info("reloaded %s", r.Path)
	}
	s.report(r)
}

// reconcileTab ignores content equal to the buffer, such as our own save.
// Unmodified tabs are reloaded; modified tabs are left alone and reported
// as conflicts.
func (s *Session) reconcileTab(ev watcher.Event) (FileResult, bool) {
	s.mu.RLock()
	t := s.findPathLocked(ev.Path)
	s.mu.RUnlock()
	if t == nil {
		return FileResult{}, false
	}

	r := FileResult{Op: OpReload, TabID: t.id, Path: ev.Path}
	if ev.Op.Gone() {
		r.Op = OpRemoved
		return r, true
	}
	if !ev.Op.Changed() {
		return r, false
	}

	data, err := s.fs.ReadFile(ev.Path)
	if errors.Is(err, fs.ErrNotExist) {
		r.Op = OpRemoved
		return r, true
	}
	var disk string
	if err == nil {
		disk, _, err = vfs.Decode(data)
	}
	if err != nil {
		r.Err = NewOperationError("reload", ev.Path, err)
		return r, true
	}

	changed := true
	err = t.Edit(func(b *buffer.TextBuffer) error {
		if b.Text() == disk {
			changed = false
			return nil
		}
		if b.IsModified() {
			r.Op = OpConflict
			return nil
		}
		return b.Reload()
	})
	if err != nil {
		r.Err = NewOperationError("reload", ev.Path, err)
	}
	return r, changed
}
