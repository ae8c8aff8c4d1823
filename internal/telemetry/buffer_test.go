package telemetry

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDrainEmptyBufferReturnsNil(t *testing.T) {
	b := NewBuffer()
	if rec := b.DrainAndTransform(); rec != nil {
		t.Errorf("DrainAndTransform on empty buffer = %+v, want nil", rec)
	}
}

func TestWriteThenDrainOnce(t *testing.T) {
	b := NewBuffer()
	raw := []byte{3, 4, 3, 4, 3, 4}
	if !b.Write(raw, 1234, -60) {
		t.Fatal("Write dropped without contention")
	}

	rec := b.DrainAndTransform()
	if rec == nil {
		t.Fatal("DrainAndTransform returned nil after Write")
	}
	if rec.Timestamp != 1234 || rec.RSSI != -60 || rec.Len != len(raw) {
		t.Errorf("record header = %+v", rec)
	}
	if len(rec.Amplitudes) != len(raw)/2 {
		t.Errorf("amplitude count = %d, want %d", len(rec.Amplitudes), len(raw)/2)
	}

	// Slot is drained; a second drain yields nothing
	if rec := b.DrainAndTransform(); rec != nil {
		t.Errorf("second DrainAndTransform = %+v, want nil", rec)
	}
}

func TestAmplitudeComputation(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want []int
	}{
		{"3-4-5 triangle", []byte{3, 4}, []int{5}},
		{"negative components", []byte{0xfd, 0xfc}, []int{5}}, // int8 -3, -4
		{"zero pair", []byte{0, 0}, []int{0}},
		{"rounding up", []byte{1, 1}, []int{1}}, // sqrt(2) rounds to 1
		{"odd trailing byte ignored", []byte{3, 4, 9}, []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := amplitudes(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("amplitude[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWriteTruncatesOversizedSample(t *testing.T) {
	b := NewBuffer()
	raw := make([]byte, Capacity+64)
	if !b.Write(raw, 1, -50) {
		t.Fatal("Write dropped")
	}
	rec := b.DrainAndTransform()
	if rec == nil {
		t.Fatal("no record")
	}
	if rec.Len != Capacity {
		t.Errorf("Len = %d, want %d", rec.Len, Capacity)
	}
}

func TestWriteDropsUnderContention(t *testing.T) {
	b := NewBuffer()

	// Hold the slot lock from "the consumer side"
	b.acquire()
	defer b.release()

	start := time.Now()
	stored := b.Write([]byte{1, 2}, 1, -50)
	elapsed := time.Since(start)

	if stored {
		t.Error("Write succeeded while lock held")
	}
	if elapsed < writeLockTimeout {
		t.Errorf("Write returned after %v, before timeout %v", elapsed, writeLockTimeout)
	}
	if elapsed > writeLockTimeout+200*time.Millisecond {
		t.Errorf("Write blocked %v, far past the timeout bound", elapsed)
	}
}

func TestLatestWriteWins(t *testing.T) {
	b := NewBuffer()
	b.Write([]byte{1, 1}, 1, -40)
	b.Write([]byte{3, 4}, 2, -50)

	rec := b.DrainAndTransform()
	if rec == nil {
		t.Fatal("no record")
	}
	if rec.Timestamp != 2 || rec.Amplitudes[0] != 5 {
		t.Errorf("record = %+v, want latest sample", rec)
	}
}

func TestRecordMarshal(t *testing.T) {
	rec := &Record{Timestamp: 99, RSSI: -61, Len: 4, Amplitudes: []int{5, 5}}
	data, err := rec.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["type"] != "csi" {
		t.Errorf("type = %v, want csi", decoded["type"])
	}
	if decoded["rssi"] != float64(-61) {
		t.Errorf("rssi = %v", decoded["rssi"])
	}
	if amps, ok := decoded["amplitudes"].([]any); !ok || len(amps) != 2 {
		t.Errorf("amplitudes = %v", decoded["amplitudes"])
	}
}
