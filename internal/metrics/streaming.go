// Package metrics exposes Prometheus counters and gauges for the streaming
// supervisor. Everything registers via promauto on the default registry and
// is served by the status API at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "csinode",
		Subsystem: "stream",
		Name:      "frames_sent_total",
		Help:      "Camera frames sent over the transport session",
	})

	frameBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "csinode",
		Subsystem: "stream",
		Name:      "frame_bytes_total",
		Help:      "Total frame payload bytes sent",
	})

	sendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csinode",
		Subsystem: "stream",
		Name:      "send_errors_total",
		Help:      "Transport send failures by payload kind",
	}, []string{"kind"})

	telemetrySent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "csinode",
		Subsystem: "telemetry",
		Name:      "records_sent_total",
		Help:      "CSI telemetry records sent over the transport session",
	})

	telemetryDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csinode",
		Subsystem: "telemetry",
		Name:      "samples_dropped_total",
		Help:      "CSI samples dropped before send",
	}, []string{"reason"})

	commandsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csinode",
		Subsystem: "command",
		Name:      "processed_total",
		Help:      "Inbound commands processed by acknowledgement status",
	}, []string{"status"})

	linkState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "csinode",
		Subsystem: "netlink",
		Name:      "link_state",
		Help:      "Network link state (0=disconnected, 1=connecting, 2=connected)",
	})
)

// IncrementFramesSent records one sent frame of the given size.
func IncrementFramesSent(size int) {
	framesSent.Inc()
	frameBytes.Add(float64(size))
}

// IncrementSendErrors records a transport send failure for a payload kind.
func IncrementSendErrors(kind string) {
	sendErrors.WithLabelValues(kind).Inc()
}

// IncrementTelemetrySent records one sent telemetry record.
func IncrementTelemetrySent() {
	telemetrySent.Inc()
}

// IncrementTelemetryDropped records a dropped CSI sample.
func IncrementTelemetryDropped(reason string) {
	telemetryDropped.WithLabelValues(reason).Inc()
}

// IncrementCommandsProcessed records one processed command by ack status.
func IncrementCommandsProcessed(status string) {
	commandsProcessed.WithLabelValues(status).Inc()
}

// SetLinkState publishes the supervisor's current state.
func SetLinkState(state int) {
	linkState.Set(float64(state))
}
