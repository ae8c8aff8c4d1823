package events

// Event type constants for kelindar/event.
const (
	TypeLinkStateChanged uint32 = iota + 1
	TypeCommandResult
	TypeTelemetryDropped
	TypeSessionLost
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LinkStateChangedEvent fires on every network supervisor transition.
type LinkStateChangedEvent struct {
	From      string `json:"from" example:"connecting" doc:"Previous link state"`
	To        string `json:"to" example:"connected" doc:"New link state"`
	Timestamp string `json:"timestamp" example:"2026-08-29T10:30:00Z" doc:"Transition timestamp"`
}

// Type returns the event type identifier for LinkStateChangedEvent.
func (e LinkStateChangedEvent) Type() uint32 { return TypeLinkStateChanged }

// CommandResultEvent fires after each inbound command is processed.
type CommandResultEvent struct {
	Status    string `json:"status" example:"ok" doc:"Acknowledgement status: ok or error"`
	Message   string `json:"message" example:"Camera parameters updated" doc:"Acknowledgement message"`
	Timestamp string `json:"timestamp" example:"2026-08-29T10:30:00Z" doc:"Processing timestamp"`
}

// Type returns the event type identifier for CommandResultEvent.
func (e CommandResultEvent) Type() uint32 { return TypeCommandResult }

// TelemetryDroppedEvent fires when the capture callback loses a sample to
// lock contention.
type TelemetryDroppedEvent struct {
	Timestamp string `json:"timestamp" doc:"Drop timestamp"`
}

// Type returns the event type identifier for TelemetryDroppedEvent.
func (e TelemetryDroppedEvent) Type() uint32 { return TypeTelemetryDropped }

// SessionLostEvent fires when the transport session drops after its initial
// connect. The session is not recreated; this event is the operator signal.
type SessionLostEvent struct {
	Reason    string `json:"reason" doc:"Disconnect reason"`
	Timestamp string `json:"timestamp" doc:"Disconnect timestamp"`
}

// Type returns the event type identifier for SessionLostEvent.
func (e SessionLostEvent) Type() uint32 { return TypeSessionLost }
