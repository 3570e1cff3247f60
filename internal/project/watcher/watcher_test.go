package watcher

import (
	"testing"
	"time"
)

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
		{Op(0), "UNKNOWN"},
		{OpCreate | OpWrite, "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestOp_Has(t *testing.T) {
	tests := []struct {
		op     Op
		check  Op
		expect bool
	}{
		{OpCreate, OpCreate, true},
		{OpCreate, OpWrite, false},
		{OpCreate | OpWrite, OpCreate, true},
		{OpCreate | OpWrite, OpWrite, true},
		{OpCreate | OpWrite, OpRemove, false},
		{OpCreate | OpWrite | OpRemove, OpRemove, true},
	}

	for _, tt := range tests {
		if got := tt.op.Has(tt.check); got != tt.expect {
			t.Errorf("Op(%d).Has(%d) = %v, want %v", tt.op, tt.check, got, tt.expect)
		}
	}
}

func TestOp_ChangedGone(t *testing.T) {
	tests := []struct {
		name    string
		op      Op
		changed bool
		gone    bool
	}{
		{"write", OpWrite, true, false},
		{"chmod", OpChmod, false, false},
		{"remove", OpRemove, false, true},
		{"rename away", OpRename, false, true},
		{"atomic save", OpRename | OpCreate, true, false},
		{"recreated", OpRemove | OpCreate | OpWrite, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Changed(); got != tt.changed {
				t.Errorf("Changed() = %v, want %v", got, tt.changed)
			}
			if got := tt.op.Gone(); got != tt.gone {
				t.Errorf("Gone() = %v, want %v", got, tt.gone)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.DebounceDelay != 100*time.Millisecond {
		t.Errorf("DebounceDelay = %v, want %v", config.DebounceDelay, 100*time.Millisecond)
	}
	if config.BufferSize != 100 {
		t.Errorf("BufferSize = %d, want %d", config.BufferSize, 100)
	}
	if config.MaxWatches != 0 {
		t.Errorf("MaxWatches = %d, want 0", config.MaxWatches)
	}
}

func TestWatcherOptions(t *testing.T) {
	config := DefaultConfig()

	WithDebounceDelay(500 * time.Millisecond)(&config)
	if config.DebounceDelay != 500*time.Millisecond {
		t.Errorf("DebounceDelay = %v, want %v", config.DebounceDelay, 500*time.Millisecond)
	}

	WithBufferSize(200)(&config)
	if config.BufferSize != 200 {
		t.Errorf("BufferSize = %d, want %d", config.BufferSize, 200)
	}

	WithMaxWatches(1000)(&config)
	if config.MaxWatches != 1000 {
		t.Errorf("MaxWatches = %d, want 1000", config.MaxWatches)
	}
}
