package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// Config configures a fleet engine.
type Config struct {
	Params Params
	Units  []UnitSpec
	// Seed fixes the pseudo-random source; zero seeds from the wall clock.
	Seed             int64
	Predictive       bool
	ExposePredictive bool
}

// Engine owns the fleet's unit memory and evolves it one tick at a time.
// All randomness flows through a single explicit source so that runs with a
// fixed seed and fixed tick times reproduce identical output sequences.
type Engine struct {
	params           Params
	rng              *rand.Rand
	units            []*Unit
	byID             map[string]*Unit
	predictive       bool
	exposePredictive bool
}

// DefaultFleet returns the six simulated compressors. Two are pinned as
// fixed reference units: one permanently inactive, one permanently offline.
func DefaultFleet() []UnitSpec {
	return []UnitSpec{
		{ID: "CMP-001", Name: "Compressor 1"},
		{ID: "CMP-002", Name: "Compressor 2"},
		{ID: "CMP-003", Name: "Compressor 3"},
		{ID: "CMP-004", Name: "Compressor 4"},
		{ID: "CMP-005", Name: "Compressor 5", Pinned: models.StatusInactive},
		{ID: "CMP-006", Name: "Compressor 6", Pinned: models.StatusOffline},
	}
}

func New(cfg Config) *Engine {
	if cfg.Params.TrendDecay == 0 {
		cfg.Params = DefaultParams()
	}
	if len(cfg.Units) == 0 {
		cfg.Units = DefaultFleet()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		params:           cfg.Params,
		rng:              rand.New(rand.NewSource(seed)),
		units:            make([]*Unit, 0, len(cfg.Units)),
		byID:             make(map[string]*Unit, len(cfg.Units)),
		predictive:       cfg.Predictive,
		exposePredictive: cfg.ExposePredictive,
	}

	for _, spec := range cfg.Units {
		u := NewUnit(spec, e.params)
		e.units = append(e.units, u)
		e.byID[u.ID] = u
	}

	return e
}

// Params returns the engine's tuning table.
func (e *Engine) Params() Params {
	return e.params
}

// Unit returns a unit's memory record by id.
func (e *Engine) Unit(id string) (*Unit, bool) {
	u, ok := e.byID[id]
	return u, ok
}

// Tick evaluates every unit in fleet order and returns the batch of output
// records for this tick. Tick is not safe for concurrent use; the
// orchestrator drives it from a single loop.
func (e *Engine) Tick(now time.Time) []models.OutputRecord {
	batch := make([]models.OutputRecord, 0, len(e.units))
	for _, u := range e.units {
		batch = append(batch, e.Evaluate(u, now))
	}
	return batch
}

// Evaluate runs the full per-unit pipeline for one tick: status transition,
// drift, warning evaluation, risk scoring, AI alerting and insight
// composition.
func (e *Engine) Evaluate(u *Unit, now time.Time) models.OutputRecord {
	e.TransitionStatus(u, now)

	if u.Status == models.StatusOffline {
		return models.OutputRecord{
			UnitID:    u.ID,
			Name:      u.Name,
			Timestamp: now,
			Status:    models.StatusOffline,
			Warning:   models.SeverityNone,
			EventType: models.EventNone,
			RiskScore: 0,
			Insights:  e.ComposeInsights(models.StatusOffline, models.SeverityNone, models.EventNone, false, models.Readings{}),
		}
	}

	e.AdvanceReadings(u, now)
	u.recordSample(now, e.params.HistoryLength)

	warn, pred := e.EvaluateWarning(u, now)
	risk := e.Risk(u, warn.Severity)
	alert, reason := e.aiAlert(u, warn, risk, pred)

	// When the AI layer fires on an otherwise-normal active unit, the
	// warning is upgraded to medium and the reason names the deviation
	// contributing most to the risk score.
	if alert && u.Status == models.StatusActive && warn.Severity == models.SeverityNormal {
		warn.Severity = models.SeverityMedium
		warn.StartedAt = now
		u.Warning = warn
		reason = fmt.Sprintf("%s deviation driving combined risk", metricLabel(e.DominantDeviation(u.Readings)))
	}

	rec := models.OutputRecord{
		UnitID:    u.ID,
		Name:      u.Name,
		Timestamp: now,
		Status:    u.Status,
		Warning:   warn.Severity,
		EventType: warn.Event,
		RiskScore: risk,
		AIAlert:   alert,
		AIReason:  reason,
		Insights:  e.ComposeInsights(u.Status, warn.Severity, warn.Event, alert, u.Readings),
	}
	rec.SetReadings(rounded(u.Readings))

	if e.exposePredictive && pred != nil {
		score := round2(pred.Score)
		minutes := round2(pred.MinutesToThreshold)
		rec.PredictiveScore = &score
		rec.PredictedEvent = pred.Event
		rec.MinutesToThreshold = &minutes
	}

	return rec
}

func rounded(r models.Readings) models.Readings {
	return models.Readings{
		Temperature: round2(r.Temperature),
		Vibration:   round2(r.Vibration),
		Pressure:    round2(r.Pressure),
		Flow:        round2(r.Flow),
	}
}
