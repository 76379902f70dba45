package storage

import (
	"context"
	"errors"

	"github.com/campusdining/dininghours/internal/core/domain"
)

var (
	// ErrLocationNotFound is returned when a location identity row doesn't exist
	ErrLocationNotFound = errors.New("location not found")
)

// LocationRepository handles dining-location identity rows.
type LocationRepository interface {
	// Upsert inserts the identity row if absent; an existing row is left
	// untouched.
	Upsert(ctx context.Context, loc *domain.DiningLocation) error

	// GetByID retrieves identity fields for a location (Week is not loaded).
	GetByID(ctx context.Context, id string) (*domain.DiningLocation, error)
}

// HoursRepository handles normalized per-day time slots.
type HoursRepository interface {
	// ReplaceDay atomically replaces the slot set for (locationID, serviceDate)
	// with the given slots. The delete and inserts share one transaction.
	ReplaceDay(ctx context.Context, locationID, serviceDate string, slots []domain.TimeSlot) error

	// GetDay retrieves the slot set for (locationID, serviceDate) ordered by
	// slot index.
	GetDay(ctx context.Context, locationID, serviceDate string) ([]domain.TimeSlot, error)
}
