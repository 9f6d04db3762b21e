package driftwatch

import "time"

// Entry is a cached snapshot of a record. Version is copied at cache time and
// never incremented in place; replacing an entry requires a fresh Put.
type Entry struct {
	ID        string    `json:"id"`
	Value     string    `json:"value"`
	Version   int64     `json:"version"`
	CachedAt  time.Time `json:"cachedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the entry's TTL has elapsed.
func (e *Entry) Expired() bool {
	return e.ExpiredAt(time.Now())
}

// ExpiredAt reports whether the entry's TTL has elapsed as of now.
func (e *Entry) ExpiredAt(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// StaleAgainst reports whether the entry lags behind the authoritative
// version. An entry is never stale against a version it already matches.
func (e *Entry) StaleAgainst(version int64) bool {
	return e.Version < version
}

// Clone returns a copy so callers cannot mutate stored state.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}
