package engine

import (
	"time"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// Range is an inclusive [Min,Max] bound for one metric.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Threshold holds the medium and high cutoffs for one metric. For
// temperature and vibration higher is worse (High > Medium); for pressure
// and flow lower is worse (High < Medium).
type Threshold struct {
	Medium float64
	High   float64
}

// StatusTuning groups the drift parameters that differ between active and
// inactive units.
type StatusTuning struct {
	Baseline   models.Readings
	TrendScale models.Readings
	ClampMin   models.Readings
	ClampMax   models.Readings
	PullRate   float64
	BiasFactor float64
}

func (t StatusTuning) Envelope(m models.Metric) Range {
	return Range{Min: t.ClampMin.Get(m), Max: t.ClampMax.Get(m)}
}

// TransitionRates defines the status machine for one current state: the
// minimum dwell before any transition is considered and the per-target
// probabilities of a single uniform draw (remainder = stay).
type TransitionRates struct {
	Dwell      time.Duration
	ToActive   float64
	ToInactive float64
	ToOffline  float64
}

// Params is the full tuning table for the telemetry engine. Historical
// tuning variants are expressed as presets over this one structure.
type Params struct {
	Active   StatusTuning
	Inactive StatusTuning

	TrendDecay           float64
	HeatVibrationFactor  float64 // vibration += trend.temperature * factor
	FlowPressureFactor   float64 // pressure += trend.flow * factor (negative)
	BiasInterval         time.Duration

	ActiveRates   TransitionRates
	InactiveRates TransitionRates
	OfflineRates  TransitionRates

	Thresholds map[models.Metric]Threshold
	// Standby bands for inactive units. Idle low flow is expected, so the
	// flow entry sits below the envelope and never fires.
	InactiveThresholds map[models.Metric]Threshold
	AbnormalBounds     map[models.Metric]float64 // stricter than Thresholds.High
	LockWindow     time.Duration
	// Minimum per-metric score for an inactive unit to report medium,
	// suppressing noise-triggered warnings on idle telemetry.
	InactiveMediumFloor float64

	RiskWeights        map[models.Metric]float64
	RiskSpans          map[models.Metric]float64
	RiskMediumBonus    float64
	RiskHighBonus      float64
	InactiveRiskNormal   Range
	InactiveRiskElevated Range
	FixedInactiveRiskCap float64

	AlertHighRisk        float64
	AlertEmergingRisk    float64
	InactiveAlertMinRisk float64
	PredictAlertScore    float64

	PredictHorizon       time.Duration
	PredictWeights       map[models.Metric]float64
	PredictNoiseFloor    float64
	PredictHighScore     float64
	PredictMediumScore   float64
	PredictOverrideFloor float64
	HistoryLength        int

	// Soft advisory bands for observation clauses, tighter than the hard
	// warning thresholds.
	AdvisoryBands map[models.Metric]float64
}

// DefaultParams returns the tuned production preset.
func DefaultParams() Params {
	return Params{
		Active: StatusTuning{
			Baseline:   models.Readings{Temperature: 82.5, Vibration: 2.8, Pressure: 6.5, Flow: 100},
			TrendScale: models.Readings{Temperature: 0.10, Vibration: 0.06, Pressure: 0.04, Flow: 0.90},
			ClampMin:   models.Readings{Temperature: 80, Vibration: 1.5, Pressure: 5.5, Flow: 80},
			ClampMax:   models.Readings{Temperature: 86, Vibration: 4.5, Pressure: 7.5, Flow: 120},
			PullRate:   0.06,
			BiasFactor: 0.5,
		},
		Inactive: StatusTuning{
			Baseline:   models.Readings{Temperature: 30, Vibration: 0.3, Pressure: 1.0, Flow: 5},
			TrendScale: models.Readings{Temperature: 0.03, Vibration: 0.02, Pressure: 0.012, Flow: 0.25},
			ClampMin:   models.Readings{Temperature: 24, Vibration: 0.05, Pressure: 0.4, Flow: 0},
			ClampMax:   models.Readings{Temperature: 38, Vibration: 0.9, Pressure: 2.2, Flow: 14},
			PullRate:   0.12,
			BiasFactor: 0.25,
		},

		TrendDecay:          0.85,
		HeatVibrationFactor: 0.30,
		FlowPressureFactor:  -0.02,
		BiasInterval:        2 * time.Minute,

		ActiveRates:   TransitionRates{Dwell: 25 * time.Minute, ToInactive: 0.004, ToOffline: 0.001},
		InactiveRates: TransitionRates{Dwell: 8 * time.Minute, ToActive: 0.085, ToOffline: 0.015},
		OfflineRates:  TransitionRates{Dwell: 45 * time.Minute, ToInactive: 0.03},

		Thresholds: map[models.Metric]Threshold{
			models.MetricTemperature: {Medium: 84.0, High: 85.5},
			models.MetricVibration:   {Medium: 3.8, High: 4.3},
			models.MetricPressure:    {Medium: 6.0, High: 5.7},
			models.MetricFlow:        {Medium: 88, High: 83},
		},
		InactiveThresholds: map[models.Metric]Threshold{
			models.MetricTemperature: {Medium: 35, High: 37},
			models.MetricVibration:   {Medium: 0.7, High: 0.85},
			models.MetricPressure:    {Medium: 0.55, High: 0.42},
			models.MetricFlow:        {Medium: -1, High: -2},
		},
		AbnormalBounds: map[models.Metric]float64{
			models.MetricTemperature: 85.8,
			models.MetricVibration:   4.4,
			models.MetricPressure:    5.6,
			models.MetricFlow:        81.5,
		},
		LockWindow:          20 * time.Second,
		InactiveMediumFloor: 0.15,

		RiskWeights: map[models.Metric]float64{
			models.MetricTemperature: 0.30,
			models.MetricVibration:   0.28,
			models.MetricPressure:    0.22,
			models.MetricFlow:        0.20,
		},
		RiskSpans: map[models.Metric]float64{
			models.MetricTemperature: 3.5,
			models.MetricVibration:   1.7,
			models.MetricPressure:    1.0,
			models.MetricFlow:        20,
		},
		RiskMediumBonus:      0.15,
		RiskHighBonus:        0.35,
		InactiveRiskNormal:   Range{Min: 0.02, Max: 0.10},
		InactiveRiskElevated: Range{Min: 0.15, Max: 0.35},
		FixedInactiveRiskCap: 0.25,

		AlertHighRisk:        0.75,
		AlertEmergingRisk:    0.45,
		InactiveAlertMinRisk: 0.12,
		PredictAlertScore:    0.80,

		PredictHorizon: 20 * time.Minute,
		PredictWeights: map[models.Metric]float64{
			models.MetricTemperature: 0.40,
			models.MetricVibration:   0.30,
			models.MetricFlow:        0.20,
			models.MetricPressure:    0.10,
		},
		PredictNoiseFloor:    0.05,
		PredictHighScore:     0.85,
		PredictMediumScore:   0.55,
		PredictOverrideFloor: 0.30,
		HistoryLength:        10,

		AdvisoryBands: map[models.Metric]float64{
			models.MetricTemperature: 83.5,
			models.MetricVibration:   3.4,
			models.MetricPressure:    6.2,
			models.MetricFlow:        92,
		},
	}
}

// Tuning returns the drift tuning for a status. Offline units do not drift;
// callers must not ask for offline tuning.
func (p Params) Tuning(status models.Status) StatusTuning {
	if status == models.StatusInactive {
		return p.Inactive
	}
	return p.Active
}

// Rates returns the transition table for a status.
func (p Params) Rates(status models.Status) TransitionRates {
	switch status {
	case models.StatusInactive:
		return p.InactiveRates
	case models.StatusOffline:
		return p.OfflineRates
	default:
		return p.ActiveRates
	}
}

// HigherIsWorse reports the degradation direction for a metric.
func HigherIsWorse(m models.Metric) bool {
	return m == models.MetricTemperature || m == models.MetricVibration
}
