package sink

import (
	"context"
	"time"

	"github.com/fleetsight/compressor-telemetry/pkg/database"
	"github.com/fleetsight/compressor-telemetry/pkg/database/queries"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// PostgresSink persists batches through the telemetry repositories.
type PostgresSink struct {
	db        *database.DB
	telemetry *queries.TelemetryRepository
	control   *queries.ControlRepository
}

func NewPostgresSink(db *database.DB) *PostgresSink {
	return &PostgresSink{
		db:        db,
		telemetry: queries.NewTelemetryRepository(db.DB),
		control:   queries.NewControlRepository(db.DB),
	}
}

func (s *PostgresSink) PushLatest(ctx context.Context, batch []models.OutputRecord) error {
	return s.telemetry.UpsertLatest(ctx, batch)
}

func (s *PostgresSink) AppendSnapshot(ctx context.Context, batch []models.OutputRecord) error {
	return s.telemetry.InsertSnapshot(ctx, batch)
}

func (s *PostgresSink) RunFlag(ctx context.Context) (bool, error) {
	return s.control.RunFlag(ctx)
}

func (s *PostgresSink) SetRunFlag(ctx context.Context, running bool) error {
	return s.control.SetRunFlag(ctx, running)
}

func (s *PostgresSink) LastActivity(ctx context.Context) (time.Time, error) {
	return s.control.LastActivity(ctx)
}

func (s *PostgresSink) TouchActivity(ctx context.Context) error {
	return s.control.TouchActivity(ctx)
}

func (s *PostgresSink) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
