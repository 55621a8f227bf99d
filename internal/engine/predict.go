package engine

import (
	"math"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// Prediction is the velocity-based estimate of an imminent threshold
// breach, combined across metrics into a single [0,1] score.
type Prediction struct {
	Score      float64
	Event      models.EventType
	TopMetric  models.Metric
	TopUrgency float64
	// Minutes until the top metric reaches its medium threshold at the
	// current velocity; zero when already past it.
	MinutesToThreshold float64
}

// Predict computes per-metric velocities from the last two history samples,
// maps time-to-medium-threshold to an urgency in [0,1] against the fixed
// horizon, and combines the urgencies with fixed weights. Returns nil when
// fewer than two samples exist.
func (e *Engine) Predict(history []Sample) *Prediction {
	if len(history) < 2 {
		return nil
	}

	last := history[len(history)-1]
	prev := history[len(history)-2]
	dt := last.Time.Sub(prev.Time).Seconds()
	if dt <= 0 {
		return nil
	}

	horizon := e.params.PredictHorizon.Seconds()
	pred := &Prediction{Event: models.EventNone}

	for _, m := range models.AllMetrics() {
		velocity := (last.Readings.Get(m) - prev.Readings.Get(m)) / dt
		tts := e.timeToMedium(m, last.Readings.Get(m), velocity)

		urgency := 0.0
		if !math.IsInf(tts, 1) {
			urgency = 1 - math.Min(tts/horizon, 1)
		}

		pred.Score += e.params.PredictWeights[m] * urgency

		if urgency > pred.TopUrgency {
			pred.TopUrgency = urgency
			pred.TopMetric = m
			pred.MinutesToThreshold = tts / 60
		}
	}

	if pred.TopUrgency > e.params.PredictNoiseFloor {
		pred.Event = pred.TopMetric.Event()
	}

	return pred
}

// timeToMedium estimates seconds until a metric crosses its medium
// threshold at constant velocity: zero if already past it, +Inf when moving
// away from it.
func (e *Engine) timeToMedium(m models.Metric, value, velocity float64) float64 {
	t := e.params.Thresholds[m]

	if HigherIsWorse(m) {
		if value >= t.Medium {
			return 0
		}
		if velocity <= 0 {
			return math.Inf(1)
		}
		return (t.Medium - value) / velocity
	}

	if value <= t.Medium {
		return 0
	}
	if velocity >= 0 {
		return math.Inf(1)
	}
	return (value - t.Medium) / -velocity
}
