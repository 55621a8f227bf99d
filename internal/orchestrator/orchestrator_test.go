package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsight/compressor-telemetry/internal/engine"
	"github.com/fleetsight/compressor-telemetry/internal/sink"
	"github.com/fleetsight/compressor-telemetry/pkg/config"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Telemetry: config.TelemetryConfig{
			TickInterval:      2 * time.Second,
			SnapshotInterval:  10 * time.Second,
			InactivityTimeout: 5 * time.Minute,
		},
		Events: config.EventsConfig{BufferSize: 16},
	}
}

// newTestOrchestrator wires an orchestrator over a memory sink without
// starting the loop, so tests can drive ticks directly.
func newTestOrchestrator(t *testing.T) (*Orchestrator, *sink.MemorySink) {
	t.Helper()

	ms := sink.NewMemorySink()
	eng := engine.New(engine.Config{Seed: 42, Predictive: true})

	o := New(testConfig(), eng, ms, nil)
	o.ctx = context.Background()
	return o, ms
}

func TestTick_UpdatesCacheAndPushes(t *testing.T) {
	o, ms := newTestOrchestrator(t)

	now := time.Unix(1700000000, 0)
	o.tick(now)

	cached := o.Latest()
	require.Len(t, cached, 6)
	assert.Equal(t, now, cached[0].Timestamp)

	rec, err := o.Unit("CMP-001")
	require.NoError(t, err)
	assert.Equal(t, "CMP-001", rec.UnitID)

	assert.Len(t, ms.Latest(), 6)
}

func TestUnit_NotFound(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.tick(time.Unix(1700000000, 0))

	_, err := o.Unit("CMP-999")
	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestTick_SkippedOnFlagReadFailure(t *testing.T) {
	o, ms := newTestOrchestrator(t)
	ms.FailFlagRead = true

	o.tick(time.Unix(1700000000, 0))

	assert.Empty(t, o.Latest())
	assert.Empty(t, ms.Latest())
}

func TestTick_SkippedWhenPaused(t *testing.T) {
	o, ms := newTestOrchestrator(t)
	require.NoError(t, ms.SetRunFlag(context.Background(), false))

	o.tick(time.Unix(1700000000, 0))

	assert.Empty(t, o.Latest())
}

func TestTick_CacheSurvivesPushFailure(t *testing.T) {
	o, ms := newTestOrchestrator(t)

	first := time.Unix(1700000000, 0)
	o.tick(first)

	ms.FailWrites = true
	second := first.Add(2 * time.Second)
	o.tick(second)

	// Consumers keep reading the freshest evaluated state even when the
	// store is down.
	cached := o.Latest()
	require.Len(t, cached, 6)
	assert.Equal(t, second, cached[0].Timestamp)

	stored := ms.Latest()
	require.Len(t, stored, 6)
	assert.Equal(t, first, stored[0].Timestamp)
}

func TestTick_PausesAfterInactivity(t *testing.T) {
	o, ms := newTestOrchestrator(t)

	now := time.Unix(1700000000, 0)
	ms.SetLastActivity(now.Add(-time.Hour))

	o.tick(now)

	running, err := ms.RunFlag(context.Background())
	require.NoError(t, err)
	assert.False(t, running)
	assert.Empty(t, o.Latest())
}

func TestWake_RearmsGenerator(t *testing.T) {
	o, ms := newTestOrchestrator(t)

	now := time.Unix(1700000000, 0)
	ms.SetLastActivity(now.Add(-time.Hour))
	o.tick(now)
	require.Empty(t, o.Latest())

	require.NoError(t, o.Wake(context.Background()))

	running, err := ms.RunFlag(context.Background())
	require.NoError(t, err)
	assert.True(t, running)

	o.tick(now.Add(2 * time.Second))
	assert.Len(t, o.Latest(), 6)
}

func TestTick_SnapshotCadence(t *testing.T) {
	o, ms := newTestOrchestrator(t)

	start := time.Unix(1700000000, 0)
	o.tick(start)
	assert.Equal(t, 1, ms.SnapshotCount(), "first tick seeds a snapshot")

	o.tick(start.Add(2 * time.Second))
	o.tick(start.Add(4 * time.Second))
	assert.Equal(t, 1, ms.SnapshotCount(), "inside the snapshot interval")

	o.tick(start.Add(12 * time.Second))
	assert.Equal(t, 2, ms.SnapshotCount())
}

func TestTick_SnapshotRetriesAfterFailure(t *testing.T) {
	o, ms := newTestOrchestrator(t)

	start := time.Unix(1700000000, 0)
	ms.FailWrites = true
	o.tick(start)
	assert.Zero(t, ms.SnapshotCount())

	// The cadence clock only advances on success, so the next tick tries
	// again immediately.
	ms.FailWrites = false
	o.tick(start.Add(2 * time.Second))
	assert.Equal(t, 1, ms.SnapshotCount())
}

func TestTick_ZeroIntervalFallsBackToDefault(t *testing.T) {
	o, ms := newTestOrchestrator(t)
	o.config.Telemetry.TickInterval = 0

	// The per-tick context deadline must use the defaulted interval, not a
	// zero timeout that would expire every sink call immediately.
	o.tick(time.Unix(1700000000, 0))

	assert.Len(t, o.Latest(), 6)
	assert.Len(t, ms.Latest(), 6)
}

func TestTick_PublishesTickCompleted(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ch := o.SubscribeEvents(models.EventTypeTickCompleted)

	o.tick(time.Unix(1700000000, 0))

	select {
	case ev := <-ch:
		assert.Equal(t, models.EventTypeTickCompleted, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no tick_completed event received")
	}
}

func TestStartStop(t *testing.T) {
	ms := sink.NewMemorySink()
	eng := engine.New(engine.Config{Seed: 7})

	cfg := testConfig()
	cfg.Telemetry.TickInterval = 20 * time.Millisecond

	o := New(cfg, eng, ms, nil)
	require.NoError(t, o.Start())
	assert.True(t, o.IsRunning())

	require.Eventually(t, func() bool {
		return len(ms.Latest()) == 6
	}, 2*time.Second, 10*time.Millisecond)

	o.Stop()
	assert.False(t, o.IsRunning())

	// Shutdown leaves the store paused.
	running, err := ms.RunFlag(context.Background())
	require.NoError(t, err)
	assert.False(t, running)
}

func TestStart_Idempotent(t *testing.T) {
	ms := sink.NewMemorySink()
	eng := engine.New(engine.Config{Seed: 7})

	cfg := testConfig()
	cfg.Telemetry.TickInterval = 20 * time.Millisecond

	o := New(cfg, eng, ms, nil)
	require.NoError(t, o.Start())
	require.NoError(t, o.Start())
	o.Stop()
	o.Stop()
}
