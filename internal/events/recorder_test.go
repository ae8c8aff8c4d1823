package events

import (
	"fmt"
	"testing"
	"time"
)

// waitForEntries polls the recorder until it holds want entries. Dispatch
// is asynchronous, so recording is eventually consistent.
func waitForEntries(t *testing.T, r *Recorder, want int) []Entry {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if got := r.Recent(); len(got) >= want {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("recorder never reached %d entries, have %d", want, len(r.Recent()))
	return nil
}

func TestRecorder_RecordsAllEventKinds(t *testing.T) {
	bus := New()
	recorder := NewRecorder(bus, 8)
	defer recorder.Close()

	bus.Publish(LinkStateChangedEvent{From: "connecting", To: "connected"})
	bus.Publish(CommandResultEvent{Status: "ok", Message: "Camera parameters updated"})
	bus.Publish(TelemetryDroppedEvent{})
	bus.Publish(SessionLostEvent{Reason: "connection closed"})

	entries := waitForEntries(t, recorder, 4)

	kinds := make(map[string]bool)
	for _, e := range entries {
		kinds[e.Kind] = true
	}
	for _, want := range []string{"link_state", "command", "telemetry_dropped", "session_lost"} {
		if !kinds[want] {
			t.Errorf("kind %q not recorded, entries = %+v", want, entries)
		}
	}
}

func TestRecorder_NewestFirst(t *testing.T) {
	bus := New()
	recorder := NewRecorder(bus, 8)
	defer recorder.Close()

	bus.Publish(SessionLostEvent{Reason: "first"})
	waitForEntries(t, recorder, 1)
	bus.Publish(SessionLostEvent{Reason: "second"})
	entries := waitForEntries(t, recorder, 2)

	if entries[0].Detail != "second" || entries[1].Detail != "first" {
		t.Errorf("entries not newest first: %+v", entries)
	}
}

func TestRecorder_EvictsOldestAtCapacity(t *testing.T) {
	bus := New()
	recorder := NewRecorder(bus, 2)
	defer recorder.Close()

	for i := 1; i <= 3; i++ {
		bus.Publish(SessionLostEvent{Reason: fmt.Sprintf("loss %d", i)})
		waitForEntries(t, recorder, min(i, 2))
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		entries := recorder.Recent()
		if len(entries) == 2 && entries[0].Detail == "loss 3" {
			if entries[1].Detail != "loss 2" {
				t.Errorf("entries = %+v", entries)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("eviction never observed, entries = %+v", recorder.Recent())
}

func TestRecorder_CloseStopsRecording(t *testing.T) {
	bus := New()
	recorder := NewRecorder(bus, 8)

	bus.Publish(SessionLostEvent{Reason: "before close"})
	waitForEntries(t, recorder, 1)

	recorder.Close()
	bus.Publish(SessionLostEvent{Reason: "after close"})

	time.Sleep(50 * time.Millisecond)
	for _, e := range recorder.Recent() {
		if e.Detail == "after close" {
			t.Errorf("entry recorded after Close: %+v", e)
		}
	}
}
