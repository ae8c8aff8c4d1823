// Package telemetry holds the CSI capture buffer shared between the Wi-Fi
// driver callback and the periodic sender, and the derived-amplitude record
// that goes on the wire.
package telemetry

import (
	"math"
	"time"
)

// Capacity is the fixed raw sample buffer size in bytes (I/Q interleaved).
const Capacity = 512

// writeLockTimeout bounds how long the capture callback may wait for the
// slot. Past it the sample is dropped; the producer context must never
// stall on the consumer.
const writeLockTimeout = 10 * time.Millisecond

// Record is one drained, transformed telemetry reading.
type Record struct {
	Timestamp  uint64
	RSSI       int
	Len        int
	Amplitudes []int
}

// Buffer is a single-slot sample holder with an asymmetric lock policy:
// the producer side (Write) try-acquires with a short timeout and drops on
// contention, the consumer side (DrainAndTransform) blocks. The slot is
// guarded by a one-permit channel semaphore so both acquisition modes are
// visible at the call sites.
type Buffer struct {
	sem chan struct{}

	raw       [Capacity]byte
	length    int
	timestamp uint64
	rssi      int
}

// NewBuffer creates an empty capture buffer.
func NewBuffer() *Buffer {
	return &Buffer{sem: make(chan struct{}, 1)}
}

// Write stores one raw sample from the capture callback. Returns false when
// the slot lock could not be acquired within the producer timeout and the
// sample was dropped. Raw data longer than Capacity is truncated.
func (b *Buffer) Write(raw []byte, timestamp uint64, rssi int) bool {
	if !b.tryAcquire(writeLockTimeout) {
		return false
	}
	defer b.release()

	n := copy(b.raw[:], raw)
	b.length = n
	b.timestamp = timestamp
	b.rssi = rssi
	return true
}

// DrainAndTransform empties the slot and returns the derived record, or nil
// when nothing was written since the last drain. Blocks on the slot lock;
// the sender side has no latency contract.
func (b *Buffer) DrainAndTransform() *Record {
	b.acquire()
	defer b.release()

	if b.length == 0 {
		return nil
	}

	rec := &Record{
		Timestamp:  b.timestamp,
		RSSI:       b.rssi,
		Len:        b.length,
		Amplitudes: amplitudes(b.raw[:b.length]),
	}
	b.length = 0
	return rec
}

// amplitudes computes per-pair magnitudes over interleaved I/Q bytes:
// round(sqrt(I²+Q²)). A trailing unpaired byte is ignored.
func amplitudes(raw []byte) []int {
	out := make([]int, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		re := float64(int8(raw[i]))
		im := float64(int8(raw[i+1]))
		out = append(out, int(math.Round(math.Sqrt(re*re+im*im))))
	}
	return out
}

// tryAcquire is the producer-side lock: bounded wait, false on timeout.
func (b *Buffer) tryAcquire(timeout time.Duration) bool {
	select {
	case b.sem <- struct{}{}:
		return true
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case b.sem <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// acquire is the consumer-side lock: blocks until the slot is free.
func (b *Buffer) acquire() {
	b.sem <- struct{}{}
}

func (b *Buffer) release() {
	<-b.sem
}
