package models

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusOffline  Status = "offline"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusOffline:
		return true
	}
	return false
}

type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityNormal Severity = "normal"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities for comparisons (none < normal < medium < high).
func (s Severity) Rank() int {
	switch s {
	case SeverityNormal:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

type EventType string

const (
	EventNone        EventType = "none"
	EventOverheating EventType = "overheating"
	EventVibration   EventType = "vibration"
	EventPressure    EventType = "pressure"
	EventLowFlow     EventType = "low_flow"
)

type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricVibration   Metric = "vibration"
	MetricPressure    Metric = "pressure"
	MetricFlow        Metric = "flow"
)

// AllMetrics returns the four sensor metrics in their canonical order.
func AllMetrics() []Metric {
	return []Metric{MetricTemperature, MetricVibration, MetricPressure, MetricFlow}
}

// Event produces the warning event type a metric maps to when it degrades.
func (m Metric) Event() EventType {
	switch m {
	case MetricTemperature:
		return EventOverheating
	case MetricVibration:
		return EventVibration
	case MetricPressure:
		return EventPressure
	case MetricFlow:
		return EventLowFlow
	default:
		return EventNone
	}
}

// Readings holds one set of sensor values for a unit.
type Readings struct {
	Temperature float64 `json:"temperature"`
	Vibration   float64 `json:"vibration"`
	Pressure    float64 `json:"pressure"`
	Flow        float64 `json:"flow"`
}

// Get returns the value for a metric.
func (r Readings) Get(m Metric) float64 {
	switch m {
	case MetricTemperature:
		return r.Temperature
	case MetricVibration:
		return r.Vibration
	case MetricPressure:
		return r.Pressure
	default:
		return r.Flow
	}
}

// Set stores a value for a metric.
func (r *Readings) Set(m Metric, v float64) {
	switch m {
	case MetricTemperature:
		r.Temperature = v
	case MetricVibration:
		r.Vibration = v
	case MetricPressure:
		r.Pressure = v
	case MetricFlow:
		r.Flow = v
	}
}

// Insights carries the audience-specific messages attached to a record.
type Insights struct {
	Message     string `json:"message"`
	Manager     string `json:"manager"`
	Engineer    string `json:"engineer"`
	Maintenance string `json:"maintenance"`
}

// OutputRecord is the per-unit result of one evaluation tick. Readings are
// null for offline units.
type OutputRecord struct {
	UnitID    string    `json:"unit_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`

	Temperature *float64 `json:"temperature"`
	Vibration   *float64 `json:"vibration"`
	Pressure    *float64 `json:"pressure"`
	Flow        *float64 `json:"flow"`

	Warning   Severity  `json:"warning"`
	EventType EventType `json:"event_type"`
	RiskScore float64   `json:"risk_score"`

	AIAlert  bool   `json:"ai_alert"`
	AIReason string `json:"ai_reason,omitempty"`

	Insights Insights `json:"insights"`

	// Predictive diagnostics, only populated when the service is configured
	// to expose them so the default schema stays stable for consumers.
	PredictiveScore    *float64  `json:"predictive_score,omitempty"`
	PredictedEvent     EventType `json:"predicted_event,omitempty"`
	MinutesToThreshold *float64  `json:"minutes_to_threshold,omitempty"`
}

// SetReadings fills the four nullable reading fields from a Readings value.
func (o *OutputRecord) SetReadings(r Readings) {
	t, v, p, f := r.Temperature, r.Vibration, r.Pressure, r.Flow
	o.Temperature = &t
	o.Vibration = &v
	o.Pressure = &p
	o.Flow = &f
}
