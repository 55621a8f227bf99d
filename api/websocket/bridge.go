package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fleetsight/compressor-telemetry/internal/logger"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// EventBridge bridges orchestrator events to WebSocket clients
type EventBridge struct {
	hub        *Hub
	eventsChan <-chan *models.Event
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewEventBridge creates a new bridge between orchestrator events and WebSocket
func NewEventBridge(hub *Hub, eventsChan <-chan *models.Event) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{
		hub:        hub,
		eventsChan: eventsChan,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening for events and forwarding to WebSocket clients
func (b *EventBridge) Start() {
	go b.run()
	logger.Info("WebSocket event bridge started")
}

// Stop stops the event bridge
func (b *EventBridge) Stop() {
	b.cancel()
	logger.Info("WebSocket event bridge stopped")
}

func (b *EventBridge) run() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventsChan:
			if !ok {
				logger.Info("Event channel closed, stopping bridge")
				return
			}
			b.forwardEvent(event)
		}
	}
}

func (b *EventBridge) forwardEvent(event *models.Event) {
	// Tick batches go to everyone; unit-scoped events only to subscribers.
	if event.Type == models.EventTypeTickCompleted {
		if batch, ok := event.Data.([]models.OutputRecord); ok {
			BroadcastTick(b.hub, batch)
		}
		return
	}

	wsMessage := b.convertToWSMessage(event)
	if wsMessage == nil {
		return
	}

	data, err := json.Marshal(wsMessage)
	if err != nil {
		logger.Errorf("Failed to marshal WebSocket message: %v", err)
		return
	}

	b.hub.BroadcastToUnit(event.UnitID, data)
}

// WebSocketEvent is the message format sent to WebSocket clients
type WebSocketEvent struct {
	Type      string      `json:"type"`
	UnitID    string      `json:"unit_id"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func (b *EventBridge) convertToWSMessage(event *models.Event) *WebSocketEvent {
	// Map internal event types to WebSocket message types
	wsType := mapEventType(event.Type)
	if wsType == "" {
		return nil // Skip events we don't want to broadcast
	}

	return &WebSocketEvent{
		Type:      wsType,
		UnitID:    event.UnitID,
		Timestamp: event.Timestamp,
		Severity:  string(event.Severity),
		Message:   event.Message,
		Data:      event.Data,
	}
}

func mapEventType(eventType models.BusEventType) string {
	switch eventType {
	case models.EventTypeStatusChanged:
		return "status_change"
	case models.EventTypeWarningRaised:
		return "warning"
	case models.EventTypeWarningCleared:
		return "warning_cleared"
	case models.EventTypeAIAlert:
		return "alert"
	case models.EventTypeError:
		return "error"
	default:
		// Skip snapshot_saved and other internal events
		return ""
	}
}
