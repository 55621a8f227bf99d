package events

import (
	"context"
	"encoding/json"

	"github.com/fleetsight/compressor-telemetry/internal/logger"
	"github.com/fleetsight/compressor-telemetry/pkg/database"
	"github.com/fleetsight/compressor-telemetry/pkg/database/queries"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

type EventLogger struct {
	repo      *queries.EventsRepository
	eventChan <-chan *models.Event
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewEventLogger(db *database.DB, eventChan <-chan *models.Event) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventLogger{
		repo:      queries.NewEventsRepository(db.DB),
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (l *EventLogger) Start() {
	go l.run()
}

func (l *EventLogger) Stop() {
	l.cancel()
}

func (l *EventLogger) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	// Log to structured logger
	entry := logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"unit_id":    event.UnitID,
		"severity":   event.Severity,
		"trace_id":   event.TraceID,
	})

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	// Persist unit-scoped events to database
	switch event.Type {
	case models.EventTypeStatusChanged, models.EventTypeWarningRaised,
		models.EventTypeWarningCleared, models.EventTypeAIAlert:
		l.persistUnitEvent(event)
	}
}

func (l *EventLogger) persistUnitEvent(event *models.Event) {
	err := l.repo.Insert(l.ctx, &queries.UnitEvent{
		Time:      event.Timestamp,
		UnitID:    event.UnitID,
		EventType: string(event.Type),
		Severity:  string(event.Severity),
		Message:   event.Message,
	})

	if err != nil {
		logger.Errorf("Failed to persist unit event: %v", err)
	}
}

func (l *EventLogger) LogToJSON(event *models.Event) string {
	data, _ := json.Marshal(event)
	return string(data)
}
