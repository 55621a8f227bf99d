package engine

import (
	"fmt"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// aiAlert layers a boolean + explanation on top of the warning decision.
// It does not run a separate model; it combines risk score, warning state
// and (when enabled) the predictive score.
func (e *Engine) aiAlert(u *Unit, warn WarningState, risk float64, pred *Prediction) (bool, string) {
	switch u.Status {
	case models.StatusOffline:
		return false, ""

	case models.StatusInactive:
		if warn.Severity == models.SeverityMedium &&
			(warn.Event == models.EventVibration || warn.Event == models.EventPressure) &&
			risk >= e.params.InactiveAlertMinRisk {
			return true, fmt.Sprintf("idle-state early warning: %s", eventLabel(warn.Event))
		}
		return false, "no alert"
	}

	if e.predictive && pred != nil && pred.Score >= e.params.PredictAlertScore {
		return true, fmt.Sprintf("predictive: %s approaching threshold in ~%.0f min",
			metricLabel(pred.TopMetric), pred.MinutesToThreshold)
	}

	if risk >= e.params.AlertHighRisk {
		return true, "high combined risk"
	}

	if risk >= e.params.AlertEmergingRisk && warn.Severity == models.SeverityMedium {
		return true, "emerging pattern"
	}

	if warn.Severity.Rank() > models.SeverityNormal.Rank() && warn.Event != models.EventNone {
		return true, fmt.Sprintf("confirmed deviation: %s", eventLabel(warn.Event))
	}

	return false, ""
}

func metricLabel(m models.Metric) string {
	switch m {
	case models.MetricTemperature:
		return "temperature"
	case models.MetricVibration:
		return "vibration"
	case models.MetricPressure:
		return "pressure"
	default:
		return "flow"
	}
}
