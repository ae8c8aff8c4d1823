// Package transport wraps the single persistent WebSocket session to the
// collector. The session carries binary frame payloads and text control
// traffic in both directions; inbound traffic is surfaced as events on one
// channel consumed by a single dispatcher.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Send errors. Sends fail fast when no session is up; a send that reaches
// the stack but fails reports ErrTransmitFailed.
var (
	ErrNotConnected   = errors.New("transport session not connected")
	ErrTransmitFailed = errors.New("transport send failed")
	ErrAlreadyStarted = errors.New("transport session already started")
)

// Opcode distinguishes payload kinds on the wire.
type Opcode int

// Payload opcodes.
const (
	OpText Opcode = iota
	OpBinary
)

// EventKind identifies a link event.
type EventKind int

// Link event kinds.
const (
	EventConnected EventKind = iota
	EventDisconnected
	EventError
	EventData
)

// Event is one asynchronous link notification. Data events carry the
// payload; Error events carry the diagnostic code and error.
type Event struct {
	Kind    EventKind
	Payload []byte
	Opcode  Opcode
	Final   bool
	Code    int
	Err     error
}

const handshakeTimeout = 10 * time.Second

// Link is the transport session. It is created once after the network
// supervisor reports connectivity and never recreated; a session lost
// mid-stream stays lost and sends fail fast from then on.
type Link struct {
	url    string
	logger *slog.Logger

	writeMu   sync.Mutex
	conn      *websocket.Conn
	connected atomic.Bool
	started   atomic.Bool

	events chan Event
}

// NewLink creates an unconnected session handle for the collector URL.
func NewLink(url string, logger *slog.Logger) *Link {
	return &Link{
		url:    url,
		logger: logger,
		events: make(chan Event, 16),
	}
}

// Connect dials the collector and starts the read pump. It may be called
// once per Link.
func (l *Link) Connect(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		l.started.Store(false)
		return fmt.Errorf("failed to dial collector %s: %w", l.url, err)
	}

	l.conn = conn
	l.connected.Store(true)
	l.events <- Event{Kind: EventConnected}
	go l.readPump()

	l.logger.Info("Transport session established", "url", l.url)
	return nil
}

// IsConnected reports whether the session is currently up.
func (l *Link) IsConnected() bool {
	return l.connected.Load()
}

// Events returns the inbound event channel. It is closed when the session
// ends.
func (l *Link) Events() <-chan Event {
	return l.events
}

// SendText sends a text payload. Fails fast with ErrNotConnected when the
// session is absent or down; otherwise blocks until the stack accepts the
// buffer.
func (l *Link) SendText(payload []byte) error {
	return l.send(websocket.TextMessage, payload)
}

// SendBinary sends a binary payload with the same contract as SendText.
func (l *Link) SendBinary(payload []byte) error {
	return l.send(websocket.BinaryMessage, payload)
}

func (l *Link) send(messageType int, payload []byte) error {
	if l.conn == nil || !l.connected.Load() {
		return ErrNotConnected
	}

	l.writeMu.Lock()
	err := l.conn.WriteMessage(messageType, payload)
	l.writeMu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: %s", ErrTransmitFailed, err)
	}
	return nil
}

// Close tears the session down. Sends fail fast afterwards.
func (l *Link) Close() error {
	l.connected.Store(false)
	if l.conn != nil {
		return l.conn.Close()
	}
	return nil
}

// readPump is the single reader: it turns inbound frames into Data events
// and reports the session end exactly once.
func (l *Link) readPump() {
	defer close(l.events)

	for {
		messageType, payload, err := l.conn.ReadMessage()
		if err != nil {
			l.connected.Store(false)
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				l.events <- Event{Kind: EventDisconnected, Code: closeErr.Code}
			} else {
				l.events <- Event{Kind: EventError, Err: err}
				l.events <- Event{Kind: EventDisconnected}
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			l.events <- Event{Kind: EventData, Payload: payload, Opcode: OpText, Final: true}
		case websocket.BinaryMessage:
			l.events <- Event{Kind: EventData, Payload: payload, Opcode: OpBinary, Final: true}
		}
	}
}
