package models

import "time"

type BusEventType string

const (
	EventTypeTickCompleted  BusEventType = "tick_completed"
	EventTypeStatusChanged  BusEventType = "status_changed"
	EventTypeWarningRaised  BusEventType = "warning_raised"
	EventTypeWarningCleared BusEventType = "warning_cleared"
	EventTypeAIAlert        BusEventType = "ai_alert"
	EventTypeSnapshotSaved  BusEventType = "snapshot_saved"
	EventTypeError          BusEventType = "error"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Event represents an internal system event
type Event struct {
	ID        string        `json:"id"`
	Type      BusEventType  `json:"type"`
	Severity  EventSeverity `json:"severity"`
	UnitID    string        `json:"unit_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Message   string        `json:"message"`
	Data      interface{}   `json:"data,omitempty"`
	TraceID   string        `json:"trace_id,omitempty"`
}

func NewEvent(eventType BusEventType, unitID, message string) *Event {
	return &Event{
		ID:        NewUUID(),
		Type:      eventType,
		Severity:  SeverityInfo,
		UnitID:    unitID,
		Timestamp: time.Now(),
		Message:   message,
	}
}

func (e *Event) WithSeverity(severity EventSeverity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

func (e *Event) WithTraceID(traceID string) *Event {
	e.TraceID = traceID
	return e
}
