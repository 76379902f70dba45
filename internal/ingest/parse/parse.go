// Package parse turns a raw upstream payload into a partitioned batch of
// dining locations. Individual malformed records degrade to salvaged stubs;
// only a structurally broken payload fails the batch.
package parse

import (
	"encoding/json"
	"log/slog"

	"github.com/campusdining/dininghours/internal/core/domain"
	"github.com/campusdining/dininghours/internal/ingest/metrics"
)

// MalformedPayloadMessage reports a payload without a usable theLocations list.
const MalformedPayloadMessage = "invalid response structure: missing or malformed theLocations field"

// Parse partitions the upstream payload into validated locations and failed
// stubs, preserving input order. It fails only when theLocations is missing,
// not a list, or empty; one bad element never aborts the batch.
func Parse(payload []byte) domain.Result {
	var envelope struct {
		TheLocations *[]json.RawMessage `json:"theLocations"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil ||
		envelope.TheLocations == nil || len(*envelope.TheLocations) == 0 {
		return domain.FailResult(domain.UpstreamError(MalformedPayloadMessage))
	}

	records := make([]domain.Record, 0, len(*envelope.TheLocations))
	for _, raw := range *envelope.TheLocations {
		loc, err := ValidateLocation(raw)
		if err == nil {
			records = append(records, domain.ValidRecord(loc))
			continue
		}

		stub := salvageIdentity(raw)
		slog.Warn("Location failed validation",
			"id", stub.ID, "name", stub.Name, "error", err)
		metrics.LocationsFailed.Inc()
		records = append(records, domain.FailedRecord(stub))
	}

	return domain.OKResult(records)
}

// salvageIdentity pulls id and name out of a rejected record when they are
// present as plain strings, so the failure stays attributable.
func salvageIdentity(raw json.RawMessage) *domain.FailedLocation {
	var loose struct {
		ID   any `json:"id"`
		Name any `json:"name"`
	}
	stub := &domain.FailedLocation{}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return stub
	}
	if id, ok := loose.ID.(string); ok {
		stub.ID = id
	}
	if name, ok := loose.Name.(string); ok {
		stub.Name = name
	}
	return stub
}
