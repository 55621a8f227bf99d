package engine

import (
	"time"

	"github.com/fleetsight/compressor-telemetry/internal/logger"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// TransitionStatus advances the unit's status machine by one tick. Pinned
// units never transition; free units only transition after their state's
// minimum dwell has elapsed, and then via a single uniform draw against the
// configured rates.
func (e *Engine) TransitionStatus(u *Unit, now time.Time) {
	if u.Pinned.Valid() {
		return
	}

	if u.LastChange.IsZero() {
		u.LastChange = now
		return
	}

	rates := e.params.Rates(u.Status)
	if now.Sub(u.LastChange) < rates.Dwell {
		return
	}

	next := e.drawNextStatus(u.Status, rates)
	if next == u.Status {
		return
	}

	logger.WithUnit(u.ID).Infof("Status transition: %s -> %s", u.Status, next)

	if next != models.StatusOffline {
		// Re-seat the readings near the new status baseline so drift does
		// not spend minutes crossing between envelopes.
		u.Readings = e.params.Tuning(next).Baseline
		u.Trend = models.Readings{}
		u.Bias = models.Readings{}
		u.BiasLastFlip = now
	}

	u.Status = next
	u.LastChange = now
	u.Warning = WarningState{Severity: models.SeverityNormal, Event: models.EventNone, StartedAt: now}
	u.History = nil
}

func (e *Engine) drawNextStatus(current models.Status, rates TransitionRates) models.Status {
	r := e.rng.Float64()

	switch current {
	case models.StatusActive:
		if r < rates.ToOffline {
			return models.StatusOffline
		}
		if r < rates.ToOffline+rates.ToInactive {
			return models.StatusInactive
		}
	case models.StatusInactive:
		if r < rates.ToOffline {
			return models.StatusOffline
		}
		if r < rates.ToOffline+rates.ToActive {
			return models.StatusActive
		}
	case models.StatusOffline:
		if r < rates.ToInactive {
			return models.StatusInactive
		}
	}

	return current
}
