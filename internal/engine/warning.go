package engine

import (
	"time"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

type metricScore struct {
	Metric   models.Metric
	Severity models.Severity
	Score    float64
}

// ScoreMetric maps one reading to a severity and a normalized [0,1] score
// against that metric's thresholds for the given status. Temperature and
// vibration degrade upward; pressure and flow degrade downward. Inactive
// units score against the standby bands, not the load thresholds.
func (e *Engine) ScoreMetric(status models.Status, m models.Metric, value float64) (models.Severity, float64) {
	t := e.params.Thresholds[m]
	if status == models.StatusInactive {
		t = e.params.InactiveThresholds[m]
	}

	if HigherIsWorse(m) {
		score := clamp01((value - t.Medium) / (t.High - t.Medium))
		switch {
		case value >= t.High:
			return models.SeverityHigh, score
		case value >= t.Medium:
			return models.SeverityMedium, score
		default:
			return models.SeverityNormal, score
		}
	}

	score := clamp01((t.Medium - value) / (t.Medium - t.High))
	switch {
	case value <= t.High:
		return models.SeverityHigh, score
	case value <= t.Medium:
		return models.SeverityMedium, score
	default:
		return models.SeverityNormal, score
	}
}

// EvaluateWarning runs the warning pipeline for one unit: high override,
// lock-window hysteresis, medium evaluation, optional predictive
// escalation, then the post-evaluation sanity checks. It updates and
// returns the unit's locked warning state alongside any prediction made.
func (e *Engine) EvaluateWarning(u *Unit, now time.Time) (WarningState, *Prediction) {
	scores := make([]metricScore, 0, 4)
	for _, m := range models.AllMetrics() {
		sev, score := e.ScoreMetric(u.Status, m, u.Readings.Get(m))
		scores = append(scores, metricScore{Metric: m, Severity: sev, Score: score})
	}

	next, held, pred := e.decideWarning(u, scores, now)

	// Sanity checks, on fresh decisions only. A warning held by the lock
	// window already passed them when it fired; re-checking it against
	// current readings would collapse a locked high the moment the readings
	// dip back in range. A fresh high on an active unit must be backed by at
	// least one clearly abnormal reading, else it is capped at medium; the
	// fixed reference inactive unit is always capped at medium.
	if !held && next.Severity == models.SeverityHigh {
		if u.Status == models.StatusActive && !e.clearlyAbnormal(u.Readings) {
			next.Severity = models.SeverityMedium
		}
		if u.FixedInactive() {
			next.Severity = models.SeverityMedium
		}
	}

	u.Warning = next
	return next, pred
}

func (e *Engine) decideWarning(u *Unit, scores []metricScore, now time.Time) (WarningState, bool, *Prediction) {
	// High override always wins, lock state included. Inactive units never
	// report high.
	if u.Status == models.StatusActive {
		if best, ok := pickWorst(scores, models.SeverityHigh, 0); ok {
			return WarningState{
				Severity:  models.SeverityHigh,
				Event:     best.Metric.Event(),
				StartedAt: now,
			}, false, nil
		}
	}

	// Lock window: a non-normal warning holds until the window elapses.
	if u.Warning.Severity.Rank() > models.SeverityNormal.Rank() &&
		now.Sub(u.Warning.StartedAt) < e.params.LockWindow {
		return u.Warning, true, nil
	}

	floor := 0.0
	if u.Status == models.StatusInactive {
		floor = e.params.InactiveMediumFloor
	}

	next := WarningState{Severity: models.SeverityNormal, Event: models.EventNone}
	if best, ok := pickWorst(scores, models.SeverityMedium, floor); ok {
		next.Severity = models.SeverityMedium
		next.Event = best.Metric.Event()
	}

	var pred *Prediction
	if e.predictive && u.Status == models.StatusActive {
		pred = e.Predict(u.History)
		next = e.applyPrediction(next, pred)
	}

	if next.Severity == u.Warning.Severity && next.Event == u.Warning.Event {
		next.StartedAt = u.Warning.StartedAt
	} else {
		next.StartedAt = now
	}

	return next, false, pred
}

// applyPrediction escalates a threshold decision using the velocity-based
// urgency score, and may override the event type when the predicted metric
// disagrees with the current-value pick.
func (e *Engine) applyPrediction(next WarningState, pred *Prediction) WarningState {
	if pred == nil {
		return next
	}

	switch {
	case pred.Score >= e.params.PredictHighScore:
		next.Severity = models.SeverityHigh
		next.Event = pred.Event
	case pred.Score >= e.params.PredictMediumScore:
		if next.Severity.Rank() < models.SeverityMedium.Rank() {
			next.Severity = models.SeverityMedium
		}
		next.Event = pred.Event
	case next.Severity.Rank() > models.SeverityNormal.Rank() &&
		pred.Event != models.EventNone &&
		pred.Event != next.Event &&
		pred.TopUrgency >= e.params.PredictOverrideFloor:
		next.Event = pred.Event
	}

	return next
}

func (e *Engine) clearlyAbnormal(r models.Readings) bool {
	for m, bound := range e.params.AbnormalBounds {
		v := r.Get(m)
		if HigherIsWorse(m) {
			if v >= bound {
				return true
			}
		} else if v <= bound {
			return true
		}
	}
	return false
}

// pickWorst returns the highest-scoring metric at or above the wanted
// severity with a score strictly above floor (and above zero).
func pickWorst(scores []metricScore, want models.Severity, floor float64) (metricScore, bool) {
	var best metricScore
	found := false
	for _, s := range scores {
		if s.Severity.Rank() < want.Rank() || s.Score <= 0 || s.Score <= floor {
			continue
		}
		if !found || s.Score > best.Score {
			best = s
			found = true
		}
	}
	return best, found
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
