package sink

import (
	"context"
	"time"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// Sink is the push-side persistence boundary for the generator loop. The
// orchestrator only ever writes through it; read traffic is served from the
// in-memory cache.
type Sink interface {
	// PushLatest replaces the stored latest batch.
	PushLatest(ctx context.Context, batch []models.OutputRecord) error

	// AppendSnapshot appends the batch to the history log.
	AppendSnapshot(ctx context.Context, batch []models.OutputRecord) error

	// RunFlag reports whether the generator should evaluate ticks.
	RunFlag(ctx context.Context) (bool, error)

	// SetRunFlag arms or pauses the generator.
	SetRunFlag(ctx context.Context, running bool) error

	// LastActivity returns the most recent consumer activity timestamp.
	LastActivity(ctx context.Context) (time.Time, error)

	// TouchActivity records consumer activity now.
	TouchActivity(ctx context.Context) error

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	Close() error
}
