package engine

import (
	"math"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// Risk converts readings and the current warning severity into a numeric
// score, rounded to two decimals. Active units score weighted positive
// deviations from baseline plus a severity bonus; inactive units draw from
// a status-dependent random range (idle telemetry is too sparse for a
// deviation model); offline units always score zero.
func (e *Engine) Risk(u *Unit, warning models.Severity) float64 {
	var risk float64

	switch u.Status {
	case models.StatusOffline:
		return 0

	case models.StatusInactive:
		r := e.params.InactiveRiskNormal
		if warning.Rank() >= models.SeverityMedium.Rank() {
			r = e.params.InactiveRiskElevated
		}
		risk = r.Min + e.rng.Float64()*(r.Max-r.Min)

	default:
		risk, _ = e.riskDeviations(u.Readings)
		switch warning {
		case models.SeverityMedium:
			risk += e.params.RiskMediumBonus
		case models.SeverityHigh:
			risk += e.params.RiskHighBonus
		}
		if risk > 1 {
			risk = 1
		}
	}

	if u.FixedInactive() && risk > e.params.FixedInactiveRiskCap {
		risk = e.params.FixedInactiveRiskCap
	}

	return round2(risk)
}

// riskDeviations returns the weighted deviation sum for an active unit and
// the per-metric contributions, used to name the dominant deviation when an
// alert upgrades a normal warning.
func (e *Engine) riskDeviations(r models.Readings) (float64, map[models.Metric]float64) {
	baseline := e.params.Active.Baseline
	contrib := make(map[models.Metric]float64, 4)

	var total float64
	for _, m := range models.AllMetrics() {
		dev := r.Get(m) - baseline.Get(m)
		if !HigherIsWorse(m) {
			dev = -dev
		}
		if dev < 0 {
			dev = 0
		}
		c := e.params.RiskWeights[m] * clamp01(dev/e.params.RiskSpans[m])
		contrib[m] = c
		total += c
	}

	return total, contrib
}

// DominantDeviation names the metric contributing most to the deviation
// risk of an active unit.
func (e *Engine) DominantDeviation(r models.Readings) models.Metric {
	_, contrib := e.riskDeviations(r)

	best := models.MetricTemperature
	for _, m := range models.AllMetrics() {
		if contrib[m] > contrib[best] {
			best = m
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
