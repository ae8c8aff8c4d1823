package telemetry

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Feeder produces CSI samples into the capture buffer until its context
// ends. The real producer is the Wi-Fi driver callback path.
type Feeder interface {
	Run(ctx context.Context)
}

// SimFeeder stands in for the Wi-Fi driver's CSI callback on hosts without
// one: it writes synthetic I/Q samples into the buffer at a fixed rate.
type SimFeeder struct {
	buffer   *Buffer
	interval time.Duration
	rssiBase int
	onDrop   func()
	logger   *slog.Logger
}

// NewSimFeeder creates a feeder writing into buffer every interval.
// onDrop, if non-nil, is called for each sample lost to lock contention.
func NewSimFeeder(buffer *Buffer, interval time.Duration, onDrop func(), logger *slog.Logger) *SimFeeder {
	return &SimFeeder{
		buffer:   buffer,
		interval: interval,
		rssiBase: -55,
		onDrop:   onDrop,
		logger:   logger,
	}
}

// Run generates samples until the context is cancelled. It runs in its own
// goroutine, concurrent with the scheduler's drain side.
func (f *SimFeeder) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Info("CSI sim feeder started", "interval", f.interval)
	for {
		select {
		case <-ctx.Done():
			f.logger.Info("CSI sim feeder stopped")
			return
		case <-ticker.C:
			raw := make([]byte, 128)
			for i := range raw {
				raw[i] = byte(rand.Intn(21) - 10)
			}
			ts := uint64(time.Now().UnixMilli())
			rssi := f.rssiBase + rand.Intn(11) - 5
			if !f.buffer.Write(raw, ts, rssi) {
				f.logger.Debug("CSI sample dropped under contention")
				if f.onDrop != nil {
					f.onDrop()
				}
			}
		}
	}
}
