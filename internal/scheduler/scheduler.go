// Package scheduler runs the cooperative streaming loop: it paces frame
// capture+send and telemetry drain+send against wall-clock intervals,
// gated on link readiness. One goroutine, no terminal state in normal
// operation.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/smazurov/csinode/internal/camera"
	"github.com/smazurov/csinode/internal/metrics"
	"github.com/smazurov/csinode/internal/netlink"
	"github.com/smazurov/csinode/internal/telemetry"
)

// Loop pacing. The tick matches the firmware's ~20 FPS streaming cadence;
// while the link is down the loop only sleeps, at a slower rate.
const (
	defaultTick              = 50 * time.Millisecond
	defaultDisconnectedSleep = 100 * time.Millisecond
	defaultTelemetryInterval = 500 * time.Millisecond
)

// Transport is the send surface the scheduler needs.
type Transport interface {
	IsConnected() bool
	SendText(payload []byte) error
	SendBinary(payload []byte) error
}

// Scheduler owns the streaming loop. All collaborators are injected; the
// scheduler holds no global state.
type Scheduler struct {
	linkState func() netlink.State
	link      Transport
	frames    camera.FrameSource
	buffer    *telemetry.Buffer
	logger    *slog.Logger

	tick              time.Duration
	disconnectedSleep time.Duration
	telemetryInterval time.Duration

	lastTelemetry time.Time
}

// New creates a scheduler with the default pacing.
func New(
	linkState func() netlink.State,
	link Transport,
	frames camera.FrameSource,
	buffer *telemetry.Buffer,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		linkState:         linkState,
		link:              link,
		frames:            frames,
		buffer:            buffer,
		logger:            logger,
		tick:              defaultTick,
		disconnectedSleep: defaultDisconnectedSleep,
		telemetryInterval: defaultTelemetryInterval,
	}
}

// Run executes the loop until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Stream scheduler started", "tick", s.tick, "telemetry_interval", s.telemetryInterval)
	s.lastTelemetry = time.Now()

	for {
		if ctx.Err() != nil {
			s.logger.Info("Stream scheduler stopped")
			return
		}

		// No work of any kind while the link is down.
		if s.linkState() != netlink.StateConnected || !s.link.IsConnected() {
			if !sleepCtx(ctx, s.disconnectedSleep) {
				s.logger.Info("Stream scheduler stopped")
				return
			}
			continue
		}

		s.streamFrame()
		s.maybeSendTelemetry()

		if !sleepCtx(ctx, s.tick) {
			s.logger.Info("Stream scheduler stopped")
			return
		}
	}
}

// streamFrame acquires one capture unit, sends it as binary, and releases
// it regardless of the send outcome.
func (s *Scheduler) streamFrame() {
	frame, err := s.frames.Acquire()
	if err != nil {
		if errors.Is(err, camera.ErrNoFrame) {
			s.logger.Warn("No camera frame available")
		} else {
			s.logger.Warn("Frame acquisition failed", "error", err)
		}
		return
	}
	defer s.frames.Release(frame)

	if err := s.link.SendBinary(frame.Data); err != nil {
		s.logger.Error("Failed to send frame", "error", err)
		metrics.IncrementSendErrors("frame")
		return
	}
	metrics.IncrementFramesSent(len(frame.Data))
}

// maybeSendTelemetry drains the capture buffer once the telemetry interval
// has elapsed. The last-sent timestamp advances whether or not a record was
// available, keeping the pacing independent of data availability.
func (s *Scheduler) maybeSendTelemetry() {
	if time.Since(s.lastTelemetry) < s.telemetryInterval {
		return
	}
	s.lastTelemetry = time.Now()

	record := s.buffer.DrainAndTransform()
	if record == nil {
		return
	}

	payload, err := record.Marshal()
	if err != nil {
		s.logger.Error("Failed to encode telemetry record", "error", err)
		metrics.IncrementTelemetryDropped("encode")
		return
	}
	if err := s.link.SendText(payload); err != nil {
		s.logger.Error("Failed to send telemetry record", "error", err)
		metrics.IncrementSendErrors("telemetry")
		return
	}
	metrics.IncrementTelemetrySent()
}

// sleepCtx sleeps d unless the context ends first; returns false on cancel.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
