// Package audit records cache invalidation attempts as an append-only event
// log. Events are created once per mutation-triggered invalidation attempt
// and never mutated or deleted.
package audit

import (
	"context"
	"time"
)

// Status classifies an invalidation attempt. PARTIAL and SKIPPED are reserved
// for coordination paths that do not exist yet (for example partial success
// across cache shards); the current coordinator only emits SUCCESS and
// FAILED.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusPartial Status = "PARTIAL"
	StatusSkipped Status = "SKIPPED"
)

// Event is one invalidation attempt. CacheVersion is nil when the record was
// absent from the cache before the attempt.
type Event struct {
	ID            string    `json:"id"`
	RecordID      string    `json:"recordId"`
	RecordVersion int64     `json:"recordVersion"`
	CacheVersion  *int64    `json:"cacheVersion"`
	Status        Status    `json:"status"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

// DefaultRecentLimit is how many events ListRecent returns when the caller
// does not say otherwise.
const DefaultRecentLimit = 10

// Log is the append-only event store contract.
type Log interface {
	Append(ctx context.Context, event *Event) error
	ListAll(ctx context.Context) ([]*Event, error)
	ListRecent(ctx context.Context, n int) ([]*Event, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
}
