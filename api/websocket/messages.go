package websocket

import (
	"encoding/json"
	"time"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

type MessageType string

const (
	MessageTypeTick         MessageType = "tick"
	MessageTypeReading      MessageType = "reading"
	MessageTypeStatusChange MessageType = "status_change"
	MessageTypeAlert        MessageType = "alert"
)

type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	UnitID    string      `json:"unit_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewMessage(msgType MessageType, unitID string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      msgType,
		UnitID:    unitID,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}

type AlertData struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// BroadcastTick sends the full batch to every connected client.
func BroadcastTick(hub *Hub, batch []models.OutputRecord) {
	msg := NewMessage(MessageTypeTick, "", batch)
	hub.Broadcast(msg.JSON())
}

// BroadcastReading sends one unit's record to its subscribers.
func BroadcastReading(hub *Hub, rec models.OutputRecord) {
	msg := NewMessage(MessageTypeReading, rec.UnitID, rec)
	hub.BroadcastToUnit(rec.UnitID, msg.JSON())
}

func BroadcastAlert(hub *Hub, unitID string, severity, message string) {
	data := AlertData{
		Severity: severity,
		Message:  message,
	}
	msg := NewMessage(MessageTypeAlert, unitID, data)
	hub.BroadcastToUnit(unitID, msg.JSON())
}
