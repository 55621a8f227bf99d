package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsight/compressor-telemetry/internal/resilience"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

var errStore = errors.New("store unavailable")

// flakySink fails the first failCount write calls, then succeeds.
type flakySink struct {
	*MemorySink
	failCount int
	calls     int
}

func newFlakySink(failCount int) *flakySink {
	return &flakySink{MemorySink: NewMemorySink(), failCount: failCount}
}

func (s *flakySink) PushLatest(ctx context.Context, batch []models.OutputRecord) error {
	s.calls++
	if s.calls <= s.failCount {
		return errStore
	}
	return s.MemorySink.PushLatest(ctx, batch)
}

func testBatch() []models.OutputRecord {
	return []models.OutputRecord{{UnitID: "CMP-001", Status: models.StatusActive}}
}

func TestResilientSink_RetriesUntilSuccess(t *testing.T) {
	flaky := newFlakySink(2)
	rs := NewResilientSink(ResilientSinkConfig{
		Sink:          flaky,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})

	err := rs.PushLatest(context.Background(), testBatch())
	require.NoError(t, err)
	assert.Equal(t, 3, flaky.calls)
	assert.Len(t, flaky.Latest(), 1)
}

func TestResilientSink_ExhaustedRetriesReturnLastError(t *testing.T) {
	flaky := newFlakySink(10)
	rs := NewResilientSink(ResilientSinkConfig{
		Sink:          flaky,
		MaxFailures:   5,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})

	err := rs.PushLatest(context.Background(), testBatch())
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, 3, flaky.calls, "one retry budget per breaker attempt")
}

func TestResilientSink_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	flaky := newFlakySink(1000)
	rs := NewResilientSink(ResilientSinkConfig{
		Sink:          flaky,
		MaxFailures:   2,
		Timeout:       time.Minute,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	})

	ctx := context.Background()
	_ = rs.PushLatest(ctx, testBatch())
	_ = rs.PushLatest(ctx, testBatch())
	require.Equal(t, resilience.StateOpen, rs.CircuitState())

	before := flaky.calls
	err := rs.PushLatest(ctx, testBatch())
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, flaky.calls, "open circuit must not touch the store")

	rs.ResetCircuit()
	assert.Equal(t, resilience.StateClosed, rs.CircuitState())
}

func TestResilientSink_ControlReadsBypassBreaker(t *testing.T) {
	flaky := newFlakySink(1000)
	rs := NewResilientSink(ResilientSinkConfig{
		Sink:          flaky,
		MaxFailures:   1,
		Timeout:       time.Minute,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	})

	ctx := context.Background()
	_ = rs.PushLatest(ctx, testBatch())
	require.Equal(t, resilience.StateOpen, rs.CircuitState())

	// Flag and activity traffic still reaches the store while writes are
	// shed.
	running, err := rs.RunFlag(ctx)
	require.NoError(t, err)
	assert.True(t, running)

	require.NoError(t, rs.SetRunFlag(ctx, false))
	require.NoError(t, rs.TouchActivity(ctx))
	_, err = rs.LastActivity(ctx)
	require.NoError(t, err)
}

func TestResilientSink_CanceledContextStopsRetrying(t *testing.T) {
	flaky := newFlakySink(1000)
	rs := NewResilientSink(ResilientSinkConfig{
		Sink:          flaky,
		RetryAttempts: 3,
		RetryDelay:    time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rs.PushLatest(ctx, testBatch())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemorySink_RoundTrip(t *testing.T) {
	ms := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, ms.PushLatest(ctx, testBatch()))
	assert.Len(t, ms.Latest(), 1)

	require.NoError(t, ms.AppendSnapshot(ctx, testBatch()))
	require.NoError(t, ms.AppendSnapshot(ctx, testBatch()))
	assert.Equal(t, 2, ms.SnapshotCount())

	running, err := ms.RunFlag(ctx)
	require.NoError(t, err)
	assert.True(t, running, "sink starts armed")

	require.NoError(t, ms.SetRunFlag(ctx, false))
	running, err = ms.RunFlag(ctx)
	require.NoError(t, err)
	assert.False(t, running)
}

func TestMemorySink_ClosedRejectsWrites(t *testing.T) {
	ms := NewMemorySink()
	require.NoError(t, ms.Close())

	err := ms.PushLatest(context.Background(), testBatch())
	assert.ErrorIs(t, err, ErrSinkClosed)
	assert.ErrorIs(t, ms.HealthCheck(context.Background()), ErrSinkClosed)
}

func TestMemorySink_FailureInjection(t *testing.T) {
	ms := NewMemorySink()
	ms.FailWrites = true

	assert.Error(t, ms.PushLatest(context.Background(), testBatch()))

	ms.FailFlagRead = true
	_, err := ms.RunFlag(context.Background())
	assert.Error(t, err)
}
