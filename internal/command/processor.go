// Package command validates inbound JSON camera commands and applies them
// to the sensor. Validation is strictly sequential and fail-fast; fields
// validated before the first violation stay applied, because each setter is
// independently irreversible at the sensor level.
package command

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/smazurov/csinode/internal/camera"
	"github.com/smazurov/csinode/internal/events"
	"github.com/smazurov/csinode/internal/metrics"
)

// Recognized keys, iterated in this fixed order.
var fieldOrder = []string{"brightness", "contrast", "saturation", "quality"}

// Ack is the only outbound control-plane schema.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FieldResult tags the outcome of one recognized field in a command.
type FieldResult struct {
	Field   string
	Applied bool
	Value   int
}

// TextSender is the transport surface the processor needs for acks.
type TextSender interface {
	SendText(payload []byte) error
}

// SensorResolver returns the current sensor handle, nil when the camera is
// unavailable.
type SensorResolver func() camera.Sensor

// Processor handles one inbound text payload at a time. The dispatcher
// guarantees Handle never runs concurrently with itself.
type Processor struct {
	resolve SensorResolver
	sender  TextSender
	bus     *events.Bus
	logger  *slog.Logger
}

// NewProcessor creates a command processor.
func NewProcessor(resolve SensorResolver, sender TextSender, bus *events.Bus, logger *slog.Logger) *Processor {
	return &Processor{
		resolve: resolve,
		sender:  sender,
		bus:     bus,
		logger:  logger,
	}
}

// Handle processes one raw text payload and acknowledges it over the
// transport. Send failures are logged, never escalated; applied parameter
// changes are not undone by an acknowledgement failure.
func (p *Processor) Handle(payload []byte) {
	ack, results := p.process(payload)

	status := ack.Status
	metrics.IncrementCommandsProcessed(status)
	if p.bus != nil {
		p.bus.Publish(events.CommandResultEvent{
			Status:    ack.Status,
			Message:   ack.Message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}

	for _, r := range results {
		if r.Applied {
			p.logger.Info("Camera parameter applied", "field", r.Field, "value", r.Value)
		}
	}

	data, err := json.Marshal(ack)
	if err != nil {
		p.logger.Error("Failed to encode acknowledgement", "error", err)
		return
	}
	if err := p.sender.SendText(data); err != nil {
		p.logger.Warn("Failed to deliver acknowledgement", "status", status, "error", err)
	}
}

// process runs the validation pipeline and returns the ack plus per-field
// results. Fail-fast: the first violation stops iteration, leaving earlier
// fields applied.
func (p *Processor) process(payload []byte) (Ack, []FieldResult) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		p.logger.Warn("Invalid JSON payload from collector")
		return errorAck("Invalid JSON payload"), nil
	}

	sensor := p.resolve()
	if sensor == nil {
		p.logger.Error("Camera sensor unavailable")
		return errorAck("Camera sensor unavailable"), nil
	}

	// Well-formed JSON that is not an object (array, string, number,
	// null) parses fine and simply carries no recognized fields.
	fields, _ := doc.(map[string]any)

	var results []FieldResult
	for _, field := range fieldOrder {
		raw, present := fields[field]
		if !present {
			continue
		}
		num, ok := raw.(float64)
		if !ok {
			p.logger.Warn("Invalid type for command field", "field", field)
			return errorAck(fmt.Sprintf("Field '%s' must be numeric", field)), results
		}
		results = append(results, FieldResult{
			Field:   field,
			Applied: true,
			Value:   applyField(sensor, field, int(num)),
		})
	}

	if len(results) == 0 {
		p.logger.Warn("Command without recognized camera fields")
		return errorAck("No supported camera fields in JSON payload"), nil
	}
	return Ack{Status: "ok", Message: "Camera parameters updated"}, results
}

func applyField(sensor camera.Sensor, field string, value int) int {
	switch field {
	case "brightness":
		return sensor.SetBrightness(value)
	case "contrast":
		return sensor.SetContrast(value)
	case "saturation":
		return sensor.SetSaturation(value)
	default:
		return sensor.SetQuality(value)
	}
}

func errorAck(message string) Ack {
	return Ack{Status: "error", Message: message}
}
