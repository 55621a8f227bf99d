package engine

import (
	"fmt"
	"strings"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// ComposeInsights derives the four audience-specific messages for a record.
// Branch selection follows a fixed priority order; each branch interpolates
// the event type and, for active units, a trailing observations clause built
// from the soft advisory bands.
func (e *Engine) ComposeInsights(status models.Status, warn models.Severity, event models.EventType, alert bool, readings models.Readings) models.Insights {
	obs := ""
	if status == models.StatusActive {
		obs = e.observations(readings)
	}

	switch {
	case status == models.StatusOffline:
		return models.Insights{
			Message:     "Unit offline. No telemetry is being received.",
			Manager:     "Unit is offline and excluded from production figures.",
			Engineer:    "No sensor data; verify power and communications if the stop is unplanned.",
			Maintenance: "No action required unless this downtime is unscheduled.",
		}

	case status == models.StatusInactive && warn.Rank() <= models.SeverityNormal.Rank():
		return models.Insights{
			Message:     "Unit idle. Standby readings are nominal.",
			Manager:     "Unit is in standby; no production impact.",
			Engineer:    "Idle-state telemetry within expected standby bands.",
			Maintenance: "Good window for planned inspection while the unit is idle.",
		}

	case status == models.StatusInactive && warn == models.SeverityMedium:
		return models.Insights{
			Message:     fmt.Sprintf("Idle unit showing %s above standby band.", eventLabel(event)),
			Manager:     "Standby unit flagged for attention; restart may need review.",
			Engineer:    fmt.Sprintf("Investigate %s signature before returning the unit to service.", eventLabel(event)),
			Maintenance: "Inspect before restart; idle-state deviation detected.",
		}

	case alert && event == models.EventNone:
		return models.Insights{
			Message:     withObservations("AI flagged an emerging deviation before any threshold crossing.", obs),
			Manager:     "Early AI detection; no threshold breached yet. Monitor for confirmation.",
			Engineer:    "Combined deviation pattern is elevated while individual readings remain in range.",
			Maintenance: "No immediate work order; recheck on the next inspection round.",
		}

	case warn.Rank() <= models.SeverityNormal.Rank():
		return models.Insights{
			Message:     withObservations("All parameters within normal range.", obs),
			Manager:     "Unit operating normally.",
			Engineer:    withObservations("Telemetry nominal across all four channels.", obs),
			Maintenance: "No action required.",
		}

	case warn == models.SeverityMedium:
		return models.Insights{
			Message:     withObservations(fmt.Sprintf("Warning: %s detected.", eventLabel(event)), obs),
			Manager:     fmt.Sprintf("Unit flagged for %s; production impact unlikely if addressed promptly.", eventLabel(event)),
			Engineer:    fmt.Sprintf("Review %s trend against recent load changes.", eventLabel(event)),
			Maintenance: fmt.Sprintf("Schedule a check for %s within the current shift.", eventLabel(event)),
		}

	case warn == models.SeverityHigh:
		return models.Insights{
			Message:     fmt.Sprintf("ALERT: critical %s. Immediate attention required.", eventLabel(event)),
			Manager:     fmt.Sprintf("Critical %s on this unit; production risk if not addressed now.", eventLabel(event)),
			Engineer:    fmt.Sprintf("Critical %s; correlate with pressure/flow channels and prepare for shutdown if it persists.", eventLabel(event)),
			Maintenance: fmt.Sprintf("Dispatch now: critical %s.", eventLabel(event)),
		}
	}

	return models.Insights{
		Message:     "Telemetry state unrecognized; treating as attention required.",
		Manager:     "Unit state requires review.",
		Engineer:    "Evaluator returned an unexpected combination; inspect raw readings.",
		Maintenance: "Manual check recommended.",
	}
}

// observations builds the advisory clause from the soft bands, surfacing
// early qualitative notes even while the warning is still normal.
func (e *Engine) observations(r models.Readings) string {
	var notes []string

	if r.Temperature >= e.params.AdvisoryBands[models.MetricTemperature] {
		notes = append(notes, "temperature slightly elevated")
	}
	if r.Vibration >= e.params.AdvisoryBands[models.MetricVibration] {
		notes = append(notes, "vibration above usual band")
	}
	if r.Pressure <= e.params.AdvisoryBands[models.MetricPressure] {
		notes = append(notes, "pressure trending low")
	}
	if r.Flow <= e.params.AdvisoryBands[models.MetricFlow] {
		notes = append(notes, "flow slightly reduced")
	}

	return strings.Join(notes, "; ")
}

func withObservations(msg, obs string) string {
	if obs == "" {
		return msg
	}
	return msg + " Observations: " + obs + "."
}

func eventLabel(event models.EventType) string {
	switch event {
	case models.EventOverheating:
		return "overheating"
	case models.EventVibration:
		return "excess vibration"
	case models.EventPressure:
		return "low pressure"
	case models.EventLowFlow:
		return "low flow"
	default:
		return "deviation"
	}
}
