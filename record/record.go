// Package record holds the authoritative side of the drift model: versioned
// records whose version increments by exactly one on every successful update.
package record

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Record is an authoritative versioned value. Version starts at 1 and only
// the store's Update operation increments it.
type Record struct {
	ID          string    `json:"id"`
	Value       string    `json:"value"`
	Version     int64     `json:"version"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Clone returns a copy so callers cannot mutate stored state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// Store is the authoritative record contract. Implementations must provide
// atomic per-record read-modify-write for version increments.
type Store interface {
	Create(ctx context.Context, value string) (*Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, id, value string) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Record, error)
}
