package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

func TestComposeInsights_Offline(t *testing.T) {
	e := newWarningEngine(false)

	in := e.ComposeInsights(models.StatusOffline, models.SeverityNone, models.EventNone, false, models.Readings{})

	assert.Contains(t, in.Message, "offline")
	assert.NotEmpty(t, in.Manager)
	assert.NotEmpty(t, in.Engineer)
	assert.NotEmpty(t, in.Maintenance)
}

func TestComposeInsights_InactiveNormal(t *testing.T) {
	e := newWarningEngine(false)

	in := e.ComposeInsights(models.StatusInactive, models.SeverityNormal, models.EventNone, false, models.Readings{})

	assert.Contains(t, in.Message, "idle")
	assert.Contains(t, in.Maintenance, "inspection")
}

func TestComposeInsights_InactiveMedium(t *testing.T) {
	e := newWarningEngine(false)

	in := e.ComposeInsights(models.StatusInactive, models.SeverityMedium, models.EventVibration, true, models.Readings{})

	assert.Contains(t, in.Message, "excess vibration")
	assert.Contains(t, in.Maintenance, "before restart")
}

func TestComposeInsights_EarlyAIDetection(t *testing.T) {
	e := newWarningEngine(false)

	// Alert with no confirmed event takes priority over the plain normal
	// branch for active units.
	in := e.ComposeInsights(models.StatusActive, models.SeverityNormal, models.EventNone, true, e.params.Active.Baseline)

	assert.Contains(t, in.Message, "AI flagged")
}

func TestComposeInsights_NormalWithObservations(t *testing.T) {
	e := newWarningEngine(false)

	readings := e.params.Active.Baseline
	readings.Temperature = 84.0 // past the 83.5 advisory band

	in := e.ComposeInsights(models.StatusActive, models.SeverityNormal, models.EventNone, false, readings)

	assert.Contains(t, in.Message, "within normal range")
	assert.Contains(t, in.Message, "temperature slightly elevated")
}

func TestComposeInsights_NormalWithoutObservations(t *testing.T) {
	e := newWarningEngine(false)

	in := e.ComposeInsights(models.StatusActive, models.SeverityNormal, models.EventNone, false, e.params.Active.Baseline)

	assert.NotContains(t, in.Message, "Observations")
}

func TestComposeInsights_MediumNamesEvent(t *testing.T) {
	e := newWarningEngine(false)

	in := e.ComposeInsights(models.StatusActive, models.SeverityMedium, models.EventLowFlow, false, e.params.Active.Baseline)

	assert.Contains(t, in.Message, "low flow")
	assert.Contains(t, in.Maintenance, "low flow")
}

func TestComposeInsights_HighIsCritical(t *testing.T) {
	e := newWarningEngine(false)

	in := e.ComposeInsights(models.StatusActive, models.SeverityHigh, models.EventOverheating, true, e.params.Active.Baseline)

	assert.Contains(t, in.Message, "ALERT")
	assert.Contains(t, in.Message, "overheating")
	assert.Contains(t, in.Maintenance, "Dispatch now")
}

func TestComposeInsights_ObservationsActiveOnly(t *testing.T) {
	e := newWarningEngine(false)

	// Idle readings would trip the active advisory bands (low flow, low
	// pressure) but must not produce observation clauses.
	in := e.ComposeInsights(models.StatusInactive, models.SeverityNormal, models.EventNone, false, e.params.Inactive.Baseline)

	assert.NotContains(t, in.Message, "Observations")
}
