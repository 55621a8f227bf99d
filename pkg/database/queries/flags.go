package queries

import (
	"context"
	"database/sql"
	"time"
)

type ControlRepository struct {
	db *sql.DB
}

func NewControlRepository(db *sql.DB) *ControlRepository {
	return &ControlRepository{db: db}
}

// RunFlag reads the generator run flag. A missing control row is treated as
// corruption and self-healed back to the running state.
func (r *ControlRepository) RunFlag(ctx context.Context) (bool, error) {
	var flag bool
	err := r.db.QueryRowContext(ctx,
		`SELECT run_flag FROM telemetry_control WHERE id = 1`,
	).Scan(&flag)

	if err == sql.ErrNoRows {
		if err := r.heal(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return flag, nil
}

func (r *ControlRepository) SetRunFlag(ctx context.Context, running bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO telemetry_control (id, run_flag, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET run_flag = EXCLUDED.run_flag, updated_at = NOW()`, running)
	return err
}

// LastActivity returns the most recent consumer activity timestamp.
func (r *ControlRepository) LastActivity(ctx context.Context) (time.Time, error) {
	var ts time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT last_activity FROM telemetry_control WHERE id = 1`,
	).Scan(&ts)

	if err == sql.ErrNoRows {
		if err := r.heal(ctx); err != nil {
			return time.Time{}, err
		}
		return time.Now(), nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return ts, nil
}

func (r *ControlRepository) TouchActivity(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO telemetry_control (id, last_activity, updated_at)
		VALUES (1, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET last_activity = NOW(), updated_at = NOW()`)
	return err
}

func (r *ControlRepository) heal(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO telemetry_control (id, run_flag, last_activity)
		VALUES (1, TRUE, NOW())
		ON CONFLICT (id) DO NOTHING`)
	return err
}
