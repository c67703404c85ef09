package log

import (
	"context"
	"strings"
	"sync"

	"cdr.dev/slog"
)

// Recorder is a slog.Sink that keeps every entry in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []slog.SinkEntry
}

var _ slog.Sink = (*Recorder)(nil)

func (r *Recorder) LogEntry(_ context.Context, e slog.SinkEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *Recorder) Sync() {}

func (r *Recorder) Entries() []slog.SinkEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]slog.SinkEntry(nil), r.entries...)
}

// Count returns how many entries were logged at exactly level.
func (r *Recorder) Count(level slog.Level) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Find returns the entries at level whose message contains substr.
func (r *Recorder) Find(level slog.Level, substr string) []slog.SinkEntry {
	var found []slog.SinkEntry
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			found = append(found, e)
		}
	}
	return found
}

// Field returns the value of the named field of e.
func Field(e slog.SinkEntry, name string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}
