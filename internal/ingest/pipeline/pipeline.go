// Package pipeline wires retrieval, parsing and persistence into the single
// ingest operation callers invoke per target date.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campusdining/dininghours/internal/core/domain"
	"github.com/campusdining/dininghours/internal/ingest/metrics"
	"github.com/campusdining/dininghours/internal/ingest/parse"
	"github.com/campusdining/dininghours/internal/ingest/persist"
)

// ingestLockTTL bounds how long a crashed run can keep a date locked.
const ingestLockTTL = 10 * time.Minute

// Fetcher retrieves the raw weekly-schedule payload for a date.
type Fetcher interface {
	Retrieve(ctx context.Context, date string) ([]byte, *domain.Error)
}

// Locker is the optional per-date ingestion lock (Redis-backed in prod).
type Locker interface {
	AcquireIngestLock(ctx context.Context, date string, ttl time.Duration) (bool, error)
	ReleaseIngestLock(ctx context.Context, date string) error
}

// Ingestor runs the retrieval → parse → persist pipeline.
type Ingestor struct {
	fetcher Fetcher
	writer  *persist.Writer
	locker  Locker // optional
}

// New creates an ingestor. locker may be nil, in which case concurrent runs
// for the same date race with last-writer-wins semantics.
func New(fetcher Fetcher, writer *persist.Writer, locker Locker) *Ingestor {
	return &Ingestor{fetcher: fetcher, writer: writer, locker: locker}
}

// Ingest retrieves, validates and persists the schedule for one target date.
// The returned Result carries either the partitioned batch (including failed
// stubs for degraded records) or a single classified failure; nothing is
// thrown past this boundary and a failed call leaves the date safe to retry.
func (i *Ingestor) Ingest(ctx context.Context, date string) domain.Result {
	if !domain.IsCalendarDate(date) {
		metrics.IngestRuns.WithLabelValues(string(domain.ErrValidation)).Inc()
		return domain.FailResult(&domain.Error{
			Kind:    domain.ErrValidation,
			Message: fmt.Sprintf("invalid target date %q, expected YYYY-MM-DD", date),
		})
	}

	runID := uuid.NewString()
	log := slog.With("run_id", runID, "date", date)

	if i.locker != nil {
		acquired, err := i.locker.AcquireIngestLock(ctx, date, ingestLockTTL)
		if err != nil {
			// The lock is best-effort; a broken Redis must not stop ingestion.
			log.Warn("Ingest lock unavailable, proceeding unlocked", "error", err)
		} else if !acquired {
			log.Warn("Ingest already in progress for date, skipping")
			metrics.IngestRuns.WithLabelValues(string(domain.ErrValidation)).Inc()
			return domain.FailResult(&domain.Error{
				Kind:    domain.ErrValidation,
				Message: fmt.Sprintf("ingestion for %s already in progress", date),
			})
		} else {
			defer func() {
				if err := i.locker.ReleaseIngestLock(ctx, date); err != nil {
					log.Warn("Failed to release ingest lock", "error", err)
				}
			}()
		}
	}

	log.Info("Starting ingest")

	payload, ferr := i.fetcher.Retrieve(ctx, date)
	if ferr != nil {
		metrics.IngestRuns.WithLabelValues(string(ferr.Kind)).Inc()
		log.Error("Retrieval failed", "kind", ferr.Kind, "error", ferr.Message)
		return domain.FailResult(ferr)
	}

	result := parse.Parse(payload)
	if !result.OK {
		metrics.IngestRuns.WithLabelValues(string(result.Err.Kind)).Inc()
		log.Error("Parse failed", "kind", result.Err.Kind, "error", result.Err.Message)
		return result
	}

	i.writer.Persist(ctx, runID, result.Data)

	valid, failed := 0, 0
	for _, rec := range result.Data {
		if rec.Valid() {
			valid++
		} else {
			failed++
		}
	}

	metrics.IngestRuns.WithLabelValues("ok").Inc()
	log.Info("Ingest complete", "locations", valid, "failed", failed)
	return result
}
