package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campusdining/dininghours/internal/core/domain"
	"github.com/campusdining/dininghours/internal/infra/storage"
)

// LocationRepo implements storage.LocationRepository using PostgreSQL.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new PostgreSQL location repository.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// Upsert inserts the location identity row if absent. An existing row is left
// untouched so re-ingestion never mutates identity data.
func (r *LocationRepo) Upsert(ctx context.Context, loc *domain.DiningLocation) error {
	query := `
		INSERT INTO dining_location (id, name, is_building, pay_with_meal_swipe, pay_with_retail_swipe, building_id, building_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		loc.ID,
		loc.Name,
		loc.IsBuilding,
		loc.PayWithMealSwipe,
		loc.PayWithRetailSwipe,
		loc.BuildingID,
		loc.BuildingName,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert location %s: %w", loc.ID, err)
	}
	return nil
}

// GetByID retrieves identity fields for a location.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*domain.DiningLocation, error) {
	query := `
		SELECT id, name, is_building, pay_with_meal_swipe, pay_with_retail_swipe, building_id, building_name
		FROM dining_location
		WHERE id = $1
	`

	var row struct {
		ID                 string         `db:"id"`
		Name               string         `db:"name"`
		IsBuilding         sql.NullBool   `db:"is_building"`
		PayWithMealSwipe   sql.NullBool   `db:"pay_with_meal_swipe"`
		PayWithRetailSwipe sql.NullBool   `db:"pay_with_retail_swipe"`
		BuildingID         sql.NullString `db:"building_id"`
		BuildingName       sql.NullString `db:"building_name"`
	}

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to get location %s: %w", id, err)
	}

	loc := &domain.DiningLocation{
		ID:                 row.ID,
		Name:               row.Name,
		IsBuilding:         row.IsBuilding.Bool,
		PayWithMealSwipe:   row.PayWithMealSwipe.Bool,
		PayWithRetailSwipe: row.PayWithRetailSwipe.Bool,
	}
	if row.BuildingID.Valid {
		loc.BuildingID = &row.BuildingID.String
	}
	if row.BuildingName.Valid {
		loc.BuildingName = &row.BuildingName.String
	}
	return loc, nil
}
