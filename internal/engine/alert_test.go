package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

func TestAIAlert_OfflineNeverFires(t *testing.T) {
	e := New(Config{
		Seed:  17,
		Units: []UnitSpec{{ID: "U1", Name: "Unit 1", Pinned: models.StatusOffline}},
	})
	u, _ := e.Unit("U1")

	alert, reason := e.aiAlert(u, WarningState{Severity: models.SeverityNone}, 0, nil)

	assert.False(t, alert)
	assert.Empty(t, reason)
}

func TestAIAlert_InactiveEarlyWarning(t *testing.T) {
	e := newWarningEngine(false)
	u := activeTestUnit(t, e)
	u.Status = models.StatusInactive

	warn := WarningState{Severity: models.SeverityMedium, Event: models.EventVibration}
	alert, reason := e.aiAlert(u, warn, 0.20, nil)

	assert.True(t, alert)
	assert.Contains(t, reason, "idle-state early warning")
}

func TestAIAlert_InactiveWrongEventNoAlert(t *testing.T) {
	e := newWarningEngine(false)
	u := activeTestUnit(t, e)
	u.Status = models.StatusInactive

	warn := WarningState{Severity: models.SeverityMedium, Event: models.EventOverheating}
	alert, reason := e.aiAlert(u, warn, 0.20, nil)

	assert.False(t, alert)
	assert.Equal(t, "no alert", reason)
}

func TestAIAlert_InactiveLowRiskNoAlert(t *testing.T) {
	e := newWarningEngine(false)
	u := activeTestUnit(t, e)
	u.Status = models.StatusInactive

	warn := WarningState{Severity: models.SeverityMedium, Event: models.EventVibration}
	alert, _ := e.aiAlert(u, warn, 0.05, nil)

	assert.False(t, alert)
}

func TestAIAlert_ActiveHighRisk(t *testing.T) {
	e := newWarningEngine(false)
	u := activeTestUnit(t, e)

	alert, reason := e.aiAlert(u, WarningState{Severity: models.SeverityNormal}, 0.80, nil)

	assert.True(t, alert)
	assert.Equal(t, "high combined risk", reason)
}

func TestAIAlert_ActiveEmergingPattern(t *testing.T) {
	e := newWarningEngine(false)
	u := activeTestUnit(t, e)

	warn := WarningState{Severity: models.SeverityMedium, Event: models.EventLowFlow}
	alert, reason := e.aiAlert(u, warn, 0.50, nil)

	assert.True(t, alert)
	assert.Equal(t, "emerging pattern", reason)
}

func TestAIAlert_ActiveConfirmedDeviation(t *testing.T) {
	e := newWarningEngine(false)
	u := activeTestUnit(t, e)

	warn := WarningState{Severity: models.SeverityMedium, Event: models.EventVibration}
	alert, reason := e.aiAlert(u, warn, 0.20, nil)

	assert.True(t, alert)
	assert.Contains(t, reason, "confirmed deviation")
}

func TestAIAlert_PredictiveLeadTime(t *testing.T) {
	e := newWarningEngine(true)
	u := activeTestUnit(t, e)

	pred := &Prediction{
		Score:              0.9,
		Event:              models.EventOverheating,
		TopMetric:          models.MetricTemperature,
		TopUrgency:         0.95,
		MinutesToThreshold: 3.2,
	}

	alert, reason := e.aiAlert(u, WarningState{Severity: models.SeverityMedium, Event: models.EventOverheating}, 0.30, pred)

	assert.True(t, alert)
	assert.Contains(t, reason, "predictive")
	assert.Contains(t, reason, "temperature")
}

func TestAIAlert_ActiveNominalNoAlert(t *testing.T) {
	e := newWarningEngine(false)
	u := activeTestUnit(t, e)

	alert, reason := e.aiAlert(u, WarningState{Severity: models.SeverityNormal}, 0.10, nil)

	assert.False(t, alert)
	assert.Empty(t, reason)
}

func TestAIAlert_TimeSensitiveReasonFormat(t *testing.T) {
	e := newWarningEngine(true)
	u := activeTestUnit(t, e)

	pred := &Prediction{
		Score:              0.85,
		TopMetric:          models.MetricFlow,
		MinutesToThreshold: 12.7,
	}

	_, reason := e.aiAlert(u, WarningState{Severity: models.SeverityNormal}, 0.2, pred)
	assert.Equal(t, "predictive: flow approaching threshold in ~13 min", reason)
}
