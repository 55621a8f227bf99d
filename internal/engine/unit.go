package engine

import (
	"time"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// WarningState is the currently locked warning for a unit, persisted across
// ticks to implement hysteresis.
type WarningState struct {
	Severity  models.Severity
	Event     models.EventType
	StartedAt time.Time
}

// Sample is one history entry used by the predictive path.
type Sample struct {
	Time     time.Time
	Readings models.Readings
}

// Unit is the per-compressor memory record. It is owned by the engine and
// mutated only during Tick; tests may construct one directly and feed it
// through the evaluation steps.
type Unit struct {
	ID   string
	Name string

	// Pinned forces a unit to a fixed status; pinned units never pass
	// through the transition machine.
	Pinned models.Status

	Status     models.Status
	LastChange time.Time

	Readings     models.Readings
	Trend        models.Readings
	Bias         models.Readings
	BiasLastFlip time.Time

	Warning WarningState
	History []Sample
}

// UnitSpec declares one unit of the fleet.
type UnitSpec struct {
	ID     string
	Name   string
	Pinned models.Status
}

// NewUnit builds a unit at its status baseline with a normal warning state.
func NewUnit(spec UnitSpec, params Params) *Unit {
	status := models.StatusActive
	if spec.Pinned.Valid() {
		status = spec.Pinned
	}

	u := &Unit{
		ID:      spec.ID,
		Name:    spec.Name,
		Pinned:  spec.Pinned,
		Status:  status,
		Warning: WarningState{Severity: models.SeverityNormal, Event: models.EventNone},
	}

	if status != models.StatusOffline {
		u.Readings = params.Tuning(status).Baseline
	}

	return u
}

// FixedInactive reports whether the unit is the pinned reference inactive
// unit, which is capped at medium severity and a low risk ceiling.
func (u *Unit) FixedInactive() bool {
	return u.Pinned == models.StatusInactive
}

func (u *Unit) recordSample(now time.Time, maxLen int) {
	u.History = append(u.History, Sample{Time: now, Readings: u.Readings})
	if maxLen > 0 && len(u.History) > maxLen {
		u.History = u.History[len(u.History)-maxLen:]
	}
}
