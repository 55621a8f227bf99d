package queries

import (
	"context"
	"database/sql"
	"time"
)

type UnitEvent struct {
	ID        int64     `json:"id"`
	Time      time.Time `json:"time"`
	UnitID    string    `json:"unit_id"`
	EventType string    `json:"event_type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
}

type EventsRepository struct {
	db *sql.DB
}

func NewEventsRepository(db *sql.DB) *EventsRepository {
	return &EventsRepository{db: db}
}

func (r *EventsRepository) Insert(ctx context.Context, e *UnitEvent) error {
	query := `
		INSERT INTO unit_events (time, unit_id, event_type, severity, message)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, e.Time, e.UnitID, e.EventType, e.Severity, e.Message)
	return err
}

func (r *EventsRepository) GetRecent(ctx context.Context, unitID string, limit int) ([]UnitEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, time, unit_id, event_type, severity, message
		FROM unit_events
		WHERE unit_id = $1
		ORDER BY time DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, unitID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []UnitEvent
	for rows.Next() {
		var e UnitEvent
		if err := rows.Scan(&e.ID, &e.Time, &e.UnitID, &e.EventType, &e.Severity, &e.Message); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
