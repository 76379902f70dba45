package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campusdining/dininghours/internal/core/domain"
)

// HoursRepo implements storage.HoursRepository using PostgreSQL.
type HoursRepo struct {
	db *DB
}

// NewHoursRepo creates a new PostgreSQL hours repository.
func NewHoursRepo(db *DB) *HoursRepo {
	return &HoursRepo{db: db}
}

// ReplaceDay deletes and reinserts the slot set for (locationID, serviceDate)
// in one transaction. Delete-then-insert keeps re-ingestion idempotent and
// guarantees stale slots never survive a schedule change.
func (r *HoursRepo) ReplaceDay(
	ctx context.Context,
	locationID, serviceDate string,
	slots []domain.TimeSlot,
) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM dining_location_hours WHERE dining_location_id = $1 AND service_date = $2`,
		locationID, serviceDate,
	)
	if err != nil {
		return fmt.Errorf("failed to clear day %s/%s: %w", locationID, serviceDate, err)
	}

	insert := `
		INSERT INTO dining_location_hours (dining_location_id, service_date, slot, is_closed, opens_at, closes_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, slot := range slots {
		_, err := stmt.ExecContext(ctx,
			locationID,
			serviceDate,
			slot.Slot,
			slot.IsClosed,
			slot.OpensAt,
			slot.ClosesAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert slot %d for %s/%s: %w",
				slot.Slot, locationID, serviceDate, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit day %s/%s: %w", locationID, serviceDate, err)
	}
	return nil
}

// GetDay retrieves the slot set for (locationID, serviceDate) ordered by slot.
func (r *HoursRepo) GetDay(
	ctx context.Context,
	locationID, serviceDate string,
) ([]domain.TimeSlot, error) {
	// Dates and times come back as text so the driver doesn't coerce them
	// into time.Time values that would need a date component.
	query := `
		SELECT dining_location_id,
		       to_char(service_date, 'YYYY-MM-DD') AS service_date,
		       slot, is_closed,
		       to_char(opens_at, 'HH24:MI:SS') AS opens_at,
		       to_char(closes_at, 'HH24:MI:SS') AS closes_at
		FROM dining_location_hours
		WHERE dining_location_id = $1 AND service_date = $2
		ORDER BY slot
	`

	rows, err := r.db.QueryxContext(ctx, query, locationID, serviceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query day %s/%s: %w", locationID, serviceDate, err)
	}
	defer rows.Close()

	var slots []domain.TimeSlot
	for rows.Next() {
		var row struct {
			LocationID  string         `db:"dining_location_id"`
			ServiceDate string         `db:"service_date"`
			Slot        int            `db:"slot"`
			IsClosed    bool           `db:"is_closed"`
			OpensAt     sql.NullString `db:"opens_at"`
			ClosesAt    sql.NullString `db:"closes_at"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan slot row: %w", err)
		}

		slot := domain.TimeSlot{
			LocationID:  row.LocationID,
			ServiceDate: row.ServiceDate,
			Slot:        row.Slot,
			IsClosed:    row.IsClosed,
		}
		if row.OpensAt.Valid {
			slot.OpensAt = &row.OpensAt.String
		}
		if row.ClosesAt.Valid {
			slot.ClosesAt = &row.ClosesAt.String
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}
