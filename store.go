package driftwatch

import "context"

// EntryStore is the backend contract for cached entries. Implementations must
// provide atomic per-key visibility: a Get never observes a partially written
// entry. No cross-key transaction guarantee is required.
type EntryStore interface {
	Driver() Driver
	Get(ctx context.Context, id string) (*Entry, bool, error)
	Put(ctx context.Context, id string, entry *Entry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) (map[string]*Entry, error)
	Flush(ctx context.Context) (int, error)
}
