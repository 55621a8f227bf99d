package events

import (
	"fmt"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) TickCompleted(batch []models.OutputRecord) {
	event := models.NewEvent(models.EventTypeTickCompleted, "", "Tick completed").
		WithData(batch)
	p.publish(event)
}

func (p *Publisher) StatusChanged(unitID string, from, to models.Status) {
	msg := fmt.Sprintf("Status changed: %s -> %s", from, to)
	event := models.NewEvent(models.EventTypeStatusChanged, unitID, msg).
		WithData(map[string]interface{}{
			"from": from,
			"to":   to,
		})
	p.publish(event)
}

func (p *Publisher) WarningRaised(rec models.OutputRecord) {
	msg := fmt.Sprintf("Warning raised: %s (%s)", rec.Warning, rec.EventType)
	event := models.NewEvent(models.EventTypeWarningRaised, rec.UnitID, msg).
		WithData(rec)

	if rec.Warning == models.SeverityHigh {
		event.WithSeverity(models.SeverityCritical)
	} else {
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) WarningCleared(unitID string) {
	event := models.NewEvent(models.EventTypeWarningCleared, unitID, "Warning cleared")
	p.publish(event)
}

func (p *Publisher) AIAlert(rec models.OutputRecord) {
	msg := "AI alert: " + rec.AIReason
	event := models.NewEvent(models.EventTypeAIAlert, rec.UnitID, msg).
		WithSeverity(models.SeverityWarning).
		WithData(rec)
	p.publish(event)
}

func (p *Publisher) SnapshotSaved(count int) {
	msg := fmt.Sprintf("Snapshot saved (%d records)", count)
	event := models.NewEvent(models.EventTypeSnapshotSaved, "", msg)
	p.publish(event)
}

func (p *Publisher) Error(unitID string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, unitID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
