package events

import (
	"sync"
)

// Entry is one recorded bus event.
type Entry struct {
	Kind      string `json:"kind" example:"link_state" doc:"Event kind"`
	Detail    string `json:"detail" example:"connecting -> connected" doc:"Human-readable event detail"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Recorder subscribes to every bus event type and keeps the most recent
// entries in a fixed ring for the status API. Oldest entries are evicted
// once the ring is full.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	count   int

	unsubs []func()
}

// NewRecorder creates a recorder of the given capacity subscribed to bus.
func NewRecorder(bus *Bus, capacity int) *Recorder {
	if capacity < 1 {
		capacity = 1
	}
	r := &Recorder{entries: make([]Entry, capacity)}
	r.unsubs = append(r.unsubs,
		bus.Subscribe(func(e LinkStateChangedEvent) {
			r.add(Entry{Kind: "link_state", Detail: e.From + " -> " + e.To, Timestamp: e.Timestamp})
		}),
		bus.Subscribe(func(e CommandResultEvent) {
			r.add(Entry{Kind: "command", Detail: e.Status + ": " + e.Message, Timestamp: e.Timestamp})
		}),
		bus.Subscribe(func(e TelemetryDroppedEvent) {
			r.add(Entry{Kind: "telemetry_dropped", Detail: "sample lost to lock contention", Timestamp: e.Timestamp})
		}),
		bus.Subscribe(func(e SessionLostEvent) {
			r.add(Entry{Kind: "session_lost", Detail: e.Reason, Timestamp: e.Timestamp})
		}),
	)
	return r
}

func (r *Recorder) add(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = entry
	r.next = (r.next + 1) % len(r.entries)
	if r.count < len(r.entries) {
		r.count++
	}
}

// Recent returns the recorded entries, newest first.
func (r *Recorder) Recent() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, r.count)
	for i := 1; i <= r.count; i++ {
		idx := (r.next - i + len(r.entries)) % len(r.entries)
		out = append(out, r.entries[idx])
	}
	return out
}

// Close detaches the recorder from the bus.
func (r *Recorder) Close() {
	for _, unsub := range r.unsubs {
		unsub()
	}
}
