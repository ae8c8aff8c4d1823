package netlink

import (
	"log/slog"
	"net"
	"time"
)

// pollInterval is how often the interface associator re-checks operstate.
const pollInterval = 500 * time.Millisecond

// IfaceAssociator reports link lifecycle by polling a named network
// interface for up+address. On Linux the OS owns actual Wi-Fi association;
// Associate only forces an immediate re-check.
type IfaceAssociator struct {
	iface  string
	logger *slog.Logger

	events chan Event
	kick   chan struct{}
	stop   chan struct{}
}

// NewIfaceAssociator creates an associator watching the named interface.
func NewIfaceAssociator(iface string, logger *slog.Logger) *IfaceAssociator {
	a := &IfaceAssociator{
		iface:  iface,
		logger: logger,
		events: make(chan Event, 8),
		kick:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	go a.poll()
	return a
}

// Associate requests an immediate connectivity check.
func (a *IfaceAssociator) Associate() error {
	select {
	case a.kick <- struct{}{}:
	default:
	}
	return nil
}

// Events returns the lifecycle event channel.
func (a *IfaceAssociator) Events() <-chan Event {
	return a.events
}

// Close stops the poller and closes the event channel.
func (a *IfaceAssociator) Close() error {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
	return nil
}

func (a *IfaceAssociator) poll() {
	defer close(a.events)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	up := false
	for {
		select {
		case <-a.stop:
			return
		case <-a.kick:
		case <-ticker.C:
		}

		addr, ok := a.check()
		switch {
		case ok && !up:
			up = true
			a.send(Event{Kind: EventAddrAcquired, Addr: addr})
		case !ok && up:
			up = false
			a.send(Event{Kind: EventLinkLost, Reason: "interface lost address"})
		}
	}
}

// check reports whether the interface is up with a global unicast address.
func (a *IfaceAssociator) check() (string, bool) {
	ifi, err := net.InterfaceByName(a.iface)
	if err != nil {
		return "", false
	}
	if ifi.Flags&net.FlagUp == 0 {
		return "", false
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return "", false
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLinkLocalUnicast() || ipNet.IP.IsLoopback() {
			continue
		}
		return ipNet.IP.String(), true
	}
	return "", false
}

func (a *IfaceAssociator) send(ev Event) {
	select {
	case a.events <- ev:
	case <-a.stop:
	}
}
