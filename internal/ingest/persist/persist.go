// Package persist normalizes validated dining locations into per-day time
// slots and writes them through the storage repositories.
package persist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campusdining/dininghours/internal/core/domain"
	"github.com/campusdining/dininghours/internal/infra/storage"
	"github.com/campusdining/dininghours/internal/ingest/metrics"
)

// FailureReporter is the operational side channel for records that failed
// validation. Implementations must tolerate partial identity (empty id/name).
type FailureReporter interface {
	ReportFailedLocation(ctx context.Context, runID string, stub *domain.FailedLocation) error
}

// Writer is the storage stage of the pipeline.
type Writer struct {
	locations storage.LocationRepository
	hours     storage.HoursRepository
	reporter  FailureReporter // optional
}

// NewWriter creates a writer. reporter may be nil.
func NewWriter(
	locations storage.LocationRepository,
	hours storage.HoursRepository,
	reporter FailureReporter,
) *Writer {
	return &Writer{locations: locations, hours: hours, reporter: reporter}
}

// Persist writes every validated location and reports every failed stub.
// Fault isolation: one failed day only loses that day's slots, one failed
// location only loses that location; everything else commits.
func (w *Writer) Persist(ctx context.Context, runID string, records []domain.Record) {
	for _, rec := range records {
		if !rec.Valid() {
			w.reportFailure(ctx, runID, rec.Failed)
			continue
		}
		w.persistLocation(ctx, rec.Location)
	}
}

func (w *Writer) persistLocation(ctx context.Context, loc *domain.DiningLocation) {
	if err := w.locations.Upsert(ctx, loc); err != nil {
		slog.Error("Failed to upsert location identity", "id", loc.ID, "error", err)
		return
	}

	for _, day := range loc.Week {
		// The validator already enforces the date shape; this guards against
		// writers being fed unvalidated weeks.
		if !domain.IsCalendarDate(day.Date) {
			slog.Warn("Skipping day with malformed date", "id", loc.ID, "date", day.Date)
			continue
		}

		slots := BuildDaySlots(loc.ID, day)
		if err := w.hours.ReplaceDay(ctx, loc.ID, day.Date, slots); err != nil {
			metrics.DayWriteErrors.Inc()
			slog.Error("Failed to replace day slots",
				"id", loc.ID, "date", day.Date, "error", err)
			continue
		}
		metrics.DaysReplaced.Inc()
	}

	metrics.LocationsIngested.Inc()
}

func (w *Writer) reportFailure(ctx context.Context, runID string, stub *domain.FailedLocation) {
	slog.Warn("Location not persisted, failed validation",
		"run_id", runID, "id", stub.ID, "name", stub.Name)
	if w.reporter == nil {
		return
	}
	if err := w.reporter.ReportFailedLocation(ctx, runID, stub); err != nil {
		slog.Error("Failed to report failed location", "run_id", runID, "error", err)
	}
}

// BuildDaySlots converts one day into its normalized slot rows. Slot indices
// follow input order from 0 with no gaps. A closed day, or any day without
// intervals, becomes exactly one closed marker row so every ingested
// (location, date) pair always has at least one row.
func BuildDaySlots(locationID string, day domain.Day) []domain.TimeSlot {
	if day.Status == domain.DayStatusClosed || len(day.Hours) == 0 {
		return []domain.TimeSlot{{
			LocationID:  locationID,
			ServiceDate: day.Date,
			Slot:        0,
			IsClosed:    true,
		}}
	}

	slots := make([]domain.TimeSlot, 0, len(day.Hours))
	for i, h := range day.Hours {
		opens := wallClock(h.StartHour, h.StartMinutes)
		closes := wallClock(h.EndHour, h.EndMinutes)
		slots = append(slots, domain.TimeSlot{
			LocationID:  locationID,
			ServiceDate: day.Date,
			Slot:        i,
			OpensAt:     &opens,
			ClosesAt:    &closes,
		})
	}
	return slots
}

func wallClock(hour, minutes int) string {
	return fmt.Sprintf("%02d:%02d:00", hour, minutes)
}
