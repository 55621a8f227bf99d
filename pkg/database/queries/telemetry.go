package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

type TelemetryRepository struct {
	db *sql.DB
}

func NewTelemetryRepository(db *sql.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// UpsertLatest replaces the stored latest record for every unit in the batch
// inside a single transaction.
func (r *TelemetryRepository) UpsertLatest(ctx context.Context, batch []models.OutputRecord) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO latest_readings (unit_id, record, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (unit_id) DO UPDATE
		SET record = EXCLUDED.record, updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range batch {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record for %s: %w", rec.UnitID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.UnitID, payload, rec.Timestamp); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// InsertSnapshot appends one history row per record in the batch.
func (r *TelemetryRepository) InsertSnapshot(ctx context.Context, batch []models.OutputRecord) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO readings_history
			(time, unit_id, status, warning, event_type, temperature, vibration, pressure, flow, risk_score, ai_alert)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range batch {
		_, err := stmt.ExecContext(ctx,
			rec.Timestamp, rec.UnitID, rec.Status, rec.Warning, rec.EventType,
			rec.Temperature, rec.Vibration, rec.Pressure, rec.Flow,
			rec.RiskScore, rec.AIAlert,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetLatest loads the stored latest record for one unit; nil when absent.
func (r *TelemetryRepository) GetLatest(ctx context.Context, unitID string) (*models.OutputRecord, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT record FROM latest_readings WHERE unit_id = $1`, unitID,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec models.OutputRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record for %s: %w", unitID, err)
	}
	return &rec, nil
}
