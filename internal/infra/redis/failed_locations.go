package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusdining/dininghours/internal/core/domain"
)

const failedLocationTTL = 7 * 24 * time.Hour

// FailedLocationReport is one queue entry: a salvaged stub plus the ingest
// run that produced it.
type FailedLocationReport struct {
	RunID      string `json:"run_id"`
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	ReportedAt int64  `json:"reported_at"`
}

// FailedLocationQueue keeps recently rejected records visible to operators.
// Entries expire after a week; the queue is advisory and never read by the
// pipeline itself.
type FailedLocationQueue struct {
	rdb *redis.Client
}

// NewFailedLocationQueue creates a Redis-backed failed-location queue.
func NewFailedLocationQueue(client *Client) *FailedLocationQueue {
	return &FailedLocationQueue{rdb: client.rdb}
}

func (q *FailedLocationQueue) queueKey() string {
	return "dininghours:failed_locations"
}

func (q *FailedLocationQueue) entryKey(runID, id string) string {
	return fmt.Sprintf("dininghours:failed_location:%s:%s", runID, id)
}

// ReportFailedLocation records one rejected record for operational review.
func (q *FailedLocationQueue) ReportFailedLocation(
	ctx context.Context,
	runID string,
	stub *domain.FailedLocation,
) error {
	report := FailedLocationReport{
		RunID:      runID,
		ID:         stub.ID,
		Name:       stub.Name,
		ReportedAt: time.Now().Unix(),
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	key := q.entryKey(runID, stub.ID)
	if err := q.rdb.Set(ctx, key, data, failedLocationTTL).Err(); err != nil {
		return fmt.Errorf("failed to set report: %w", err)
	}

	if err := q.rdb.ZAdd(ctx, q.queueKey(), redis.Z{
		Score:  float64(report.ReportedAt),
		Member: key,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to queue: %w", err)
	}

	return nil
}

// GetAll retrieves every queued report, oldest first. Reports whose entry has
// expired are skipped.
func (q *FailedLocationQueue) GetAll(ctx context.Context) ([]*FailedLocationReport, error) {
	keys, err := q.rdb.ZRange(ctx, q.queueKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}

	reports := make([]*FailedLocationReport, 0, len(keys))
	for _, key := range keys {
		data, err := q.rdb.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get report: %w", err)
		}

		var report FailedLocationReport
		if err := json.Unmarshal(data, &report); err != nil {
			continue
		}
		reports = append(reports, &report)
	}

	return reports, nil
}

// Count returns the number of queued reports.
func (q *FailedLocationQueue) Count(ctx context.Context) (int, error) {
	count, err := q.rdb.ZCard(ctx, q.queueKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}
	return int(count), nil
}

// Clear drops the queue and its entries.
func (q *FailedLocationQueue) Clear(ctx context.Context) error {
	keys, err := q.rdb.ZRange(ctx, q.queueKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("zrange failed: %w", err)
	}
	if len(keys) > 0 {
		if err := q.rdb.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}
	}
	return q.rdb.Del(ctx, q.queueKey()).Err()
}
