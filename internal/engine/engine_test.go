package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

func TestEngine_DefaultFleetShape(t *testing.T) {
	e := New(Config{Seed: 1})

	batch := e.Tick(time.Unix(1700000000, 0))

	require.Len(t, batch, 6)

	ids := make([]string, 0, len(batch))
	for _, rec := range batch {
		ids = append(ids, rec.UnitID)
	}
	assert.Equal(t, []string{"CMP-001", "CMP-002", "CMP-003", "CMP-004", "CMP-005", "CMP-006"}, ids)
}

func TestEngine_DeterministicWithFixedSeed(t *testing.T) {
	a := New(Config{Seed: 12345, Predictive: true})
	b := New(Config{Seed: 12345, Predictive: true})

	now := time.Unix(1700000000, 0)
	for i := 0; i < 50; i++ {
		now = now.Add(2 * time.Second)
		assert.Equal(t, a.Tick(now), b.Tick(now), "tick %d diverged", i)
	}
}

func TestEngine_DifferentSeedsDiverge(t *testing.T) {
	a := New(Config{Seed: 1})
	b := New(Config{Seed: 2})

	now := time.Unix(1700000000, 0)
	diverged := false
	for i := 0; i < 20 && !diverged; i++ {
		now = now.Add(2 * time.Second)
		batchA, batchB := a.Tick(now), b.Tick(now)
		for j := range batchA {
			if batchA[j].Temperature != nil && batchB[j].Temperature != nil &&
				*batchA[j].Temperature != *batchB[j].Temperature {
				diverged = true
			}
		}
	}
	assert.True(t, diverged)
}

func TestEngine_OfflineRecord(t *testing.T) {
	e := New(Config{Seed: 1})

	batch := e.Tick(time.Unix(1700000000, 0))
	offline := batch[5]

	require.Equal(t, models.StatusOffline, offline.Status)
	assert.Nil(t, offline.Temperature)
	assert.Nil(t, offline.Vibration)
	assert.Nil(t, offline.Pressure)
	assert.Nil(t, offline.Flow)
	assert.Zero(t, offline.RiskScore)
	assert.Equal(t, models.SeverityNone, offline.Warning)
	assert.False(t, offline.AIAlert)
	assert.Contains(t, offline.Insights.Message, "offline")
}

func TestEngine_FirstTickSteadyState(t *testing.T) {
	e := New(Config{Seed: 1, Predictive: true})

	batch := e.Tick(time.Unix(1700000000, 0))

	for _, rec := range batch {
		if rec.Status == models.StatusOffline {
			continue
		}
		assert.Equal(t, models.SeverityNormal, rec.Warning, "unit %s", rec.UnitID)
		assert.False(t, rec.AIAlert, "unit %s", rec.UnitID)
		assert.Equal(t, models.EventNone, rec.EventType, "unit %s", rec.UnitID)
	}
}

func TestEngine_ReadingsRoundedToTwoDecimals(t *testing.T) {
	e := New(Config{Seed: 9})

	now := time.Unix(1700000000, 0)
	for i := 0; i < 10; i++ {
		now = now.Add(2 * time.Second)
		for _, rec := range e.Tick(now) {
			for _, v := range []*float64{rec.Temperature, rec.Vibration, rec.Pressure, rec.Flow} {
				if v == nil {
					continue
				}
				assert.InDelta(t, math.Round(*v*100)/100, *v, 1e-9)
			}
		}
	}
}

func TestEngine_RiskScoreBounds(t *testing.T) {
	e := New(Config{Seed: 21, Predictive: true})

	now := time.Unix(1700000000, 0)
	for i := 0; i < 200; i++ {
		now = now.Add(2 * time.Second)
		for _, rec := range e.Tick(now) {
			assert.GreaterOrEqual(t, rec.RiskScore, 0.0)
			assert.LessOrEqual(t, rec.RiskScore, 1.0)
		}
	}
}

func TestEngine_FixedInactiveInvariants(t *testing.T) {
	e := New(Config{Seed: 33, Predictive: true})

	now := time.Unix(1700000000, 0)
	for i := 0; i < 500; i++ {
		now = now.Add(2 * time.Second)
		batch := e.Tick(now)

		fixed := batch[4]
		require.Equal(t, "CMP-005", fixed.UnitID)
		assert.Equal(t, models.StatusInactive, fixed.Status)
		assert.NotEqual(t, models.SeverityHigh, fixed.Warning)
		assert.LessOrEqual(t, fixed.RiskScore, e.params.FixedInactiveRiskCap)
	}
}

func TestEngine_EnvelopeInvariantOverSession(t *testing.T) {
	e := New(Config{Seed: 77, Predictive: true})

	now := time.Unix(1700000000, 0)
	for i := 0; i < 500; i++ {
		now = now.Add(2 * time.Second)
		for _, rec := range e.Tick(now) {
			if rec.Status == models.StatusOffline {
				continue
			}

			tuning := e.params.Tuning(rec.Status)
			readings := models.Readings{
				Temperature: *rec.Temperature,
				Vibration:   *rec.Vibration,
				Pressure:    *rec.Pressure,
				Flow:        *rec.Flow,
			}
			for _, m := range models.AllMetrics() {
				// Rounding the output may nudge a clamped value past the
				// envelope edge by at most half a cent.
				env := tuning.Envelope(m)
				v := readings.Get(m)
				assert.GreaterOrEqual(t, v, env.Min-0.005, "unit %s %s", rec.UnitID, m)
				assert.LessOrEqual(t, v, env.Max+0.005, "unit %s %s", rec.UnitID, m)
			}
		}
	}
}

func TestEngine_PredictiveFieldsHiddenByDefault(t *testing.T) {
	e := New(Config{Seed: 3, Predictive: true})

	now := time.Unix(1700000000, 0)
	for i := 0; i < 5; i++ {
		now = now.Add(2 * time.Second)
		for _, rec := range e.Tick(now) {
			assert.Nil(t, rec.PredictiveScore)
			assert.Nil(t, rec.MinutesToThreshold)
		}
	}
}

func TestEngine_PredictiveFieldsExposed(t *testing.T) {
	e := New(Config{Seed: 3, Predictive: true, ExposePredictive: true})

	now := time.Unix(1700000000, 0)
	first := e.Tick(now)
	for _, rec := range first {
		assert.Nil(t, rec.PredictiveScore, "no history yet on the first tick")
	}

	second := e.Tick(now.Add(2 * time.Second))
	for _, rec := range second {
		if rec.Status != models.StatusActive {
			continue
		}
		require.NotNil(t, rec.PredictiveScore, "unit %s", rec.UnitID)
		assert.GreaterOrEqual(t, *rec.PredictiveScore, 0.0)
		assert.LessOrEqual(t, *rec.PredictiveScore, 1.0)
	}
}

func TestEngine_UnknownUnit(t *testing.T) {
	e := New(Config{Seed: 1})

	_, ok := e.Unit("CMP-999")
	assert.False(t, ok)
}

func TestEngine_CustomFleet(t *testing.T) {
	e := New(Config{
		Seed: 1,
		Units: []UnitSpec{
			{ID: "A", Name: "Alpha"},
			{ID: "B", Name: "Beta", Pinned: models.StatusOffline},
		},
	})

	batch := e.Tick(time.Unix(1700000000, 0))

	require.Len(t, batch, 2)
	assert.Equal(t, "Alpha", batch[0].Name)
	assert.Equal(t, models.StatusOffline, batch[1].Status)
}
