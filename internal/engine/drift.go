package engine

import (
	"time"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// AdvanceReadings evolves one unit's readings by a single tick: smoothed
// random trend, slow bias, cross-metric coupling, mean reversion toward the
// status baseline, and a final clamp to the status envelope. Offline units
// are left untouched.
func (e *Engine) AdvanceReadings(u *Unit, now time.Time) {
	if u.Status == models.StatusOffline {
		return
	}

	tuning := e.params.Tuning(u.Status)

	if u.BiasLastFlip.IsZero() {
		u.BiasLastFlip = now
	}
	if now.Sub(u.BiasLastFlip) >= e.params.BiasInterval {
		e.rerollBias(u, tuning)
		u.BiasLastFlip = now
	}

	for _, m := range models.AllMetrics() {
		trend := u.Trend.Get(m)*e.params.TrendDecay + e.uniform()*tuning.TrendScale.Get(m)
		u.Trend.Set(m, trend)
		u.Readings.Set(m, u.Readings.Get(m)+trend+u.Bias.Get(m))
	}

	// Heat raises vibration; flow loss drops pressure.
	u.Readings.Vibration += u.Trend.Temperature * e.params.HeatVibrationFactor
	u.Readings.Pressure += u.Trend.Flow * e.params.FlowPressureFactor

	for _, m := range models.AllMetrics() {
		v := u.Readings.Get(m)
		v += (tuning.Baseline.Get(m) - v) * tuning.PullRate
		u.Readings.Set(m, tuning.Envelope(m).Clamp(v))
	}
}

func (e *Engine) rerollBias(u *Unit, tuning StatusTuning) {
	for _, m := range models.AllMetrics() {
		u.Bias.Set(m, e.uniform()*tuning.TrendScale.Get(m)*tuning.BiasFactor)
	}
}

// uniform draws from [-0.5, 0.5).
func (e *Engine) uniform() float64 {
	return e.rng.Float64() - 0.5
}
