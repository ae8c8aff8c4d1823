// Package netlink supervises the lower network link independent of the
// application transport session: it drives association, tracks link state,
// and re-associates on loss without backoff.
package netlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/csinode/internal/events"
	"github.com/smazurov/csinode/internal/metrics"
)

// ErrLinkTimeout is returned when the link never reaches Connected within
// the startup budget. Fatal to startup.
var ErrLinkTimeout = errors.New("link layer did not reach connected state in time")

// startTimeout bounds the blocking wait in Start.
const startTimeout = 10 * time.Second

// State is the link layer state.
type State int32

// Link states. Transitions only Disconnected->Connecting->Connected, and
// Connected->Connecting on loss.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// EventKind identifies an associator lifecycle event.
type EventKind int

// Associator event kinds.
const (
	EventAddrAcquired EventKind = iota
	EventLinkLost
	EventAssociationFailed
)

// Event is one lifecycle notification from the associator.
type Event struct {
	Kind   EventKind
	Addr   string
	Reason string
}

// Associator is the lower network layer: it owns actual association and
// reports lifecycle transitions on its event channel.
type Associator interface {
	// Associate triggers (re)association. Unbounded retries are the
	// supervisor's job; one call requests one attempt.
	Associate() error
	// Events delivers lifecycle events until Close.
	Events() <-chan Event
	Close() error
}

// Supervisor owns LinkState. Start blocks the caller until the link is up
// or the startup budget expires; after that the state is only observed by
// polling State().
type Supervisor struct {
	assoc        Associator
	bus          *events.Bus
	logger       *slog.Logger
	startTimeout time.Duration

	mu    sync.RWMutex
	state State
	ready chan struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSupervisor creates a supervisor over the given associator.
func NewSupervisor(assoc Associator, bus *events.Bus, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		assoc:        assoc,
		bus:          bus,
		logger:       logger,
		startTimeout: startTimeout,
		state:        StateDisconnected,
		ready:        make(chan struct{}),
	}
}

// Start begins supervision: it transitions to Connecting, issues the first
// association, and blocks up to the startup budget for connectivity.
// On any failure all partial registrations are unwound before returning.
func (s *Supervisor) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	s.setState(StateConnecting)
	go s.eventLoop(loopCtx)

	if err := s.assoc.Associate(); err != nil {
		s.teardown()
		return fmt.Errorf("initial association failed: %w", err)
	}

	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	timer := time.NewTimer(s.startTimeout)
	defer timer.Stop()
	select {
	case <-ready:
		s.logger.Info("Link layer connected")
		return nil
	case <-timer.C:
		s.teardown()
		return ErrLinkTimeout
	case <-ctx.Done():
		s.teardown()
		return ctx.Err()
	}
}

// State returns the current link state. Read by the scheduler's gate.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Stop ends supervision and closes the associator.
func (s *Supervisor) Stop() {
	s.teardown()
}

func (s *Supervisor) teardown() {
	if s.cancel != nil {
		s.cancel()
	}
	_ = s.assoc.Close()
	if s.done != nil {
		<-s.done
	}
	s.setState(StateDisconnected)
}

// eventLoop owns all state mutation after Start.
func (s *Supervisor) eventLoop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.assoc.Events():
			if !ok {
				return
			}
			s.handleEvent(ev)
		}
	}
}

func (s *Supervisor) handleEvent(ev Event) {
	switch ev.Kind {
	case EventAddrAcquired:
		s.logger.Info("Link address acquired", "addr", ev.Addr)
		s.setState(StateConnected)
		s.signalReady()

	case EventLinkLost, EventAssociationFailed:
		s.logger.Warn("Link lost, re-associating", "reason", ev.Reason)
		s.clearReady()
		s.setState(StateConnecting)
		if err := s.assoc.Associate(); err != nil {
			// Next lifecycle event triggers the retry; no backoff.
			s.logger.Warn("Re-association request failed", "error", err)
		}
	}
}

func (s *Supervisor) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	if prev == next {
		return
	}
	metrics.SetLinkState(int(next))
	if s.bus != nil {
		s.bus.Publish(events.LinkStateChangedEvent{
			From:      prev.String(),
			To:        next.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (s *Supervisor) signalReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.ready:
		// already signalled
	default:
		close(s.ready)
	}
}

func (s *Supervisor) clearReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.ready:
		s.ready = make(chan struct{})
	default:
	}
}
