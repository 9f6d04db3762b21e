package driftwatch_test

import (
	"time"

	"github.com/goforj/driftwatch"
)

func testEntry(id string, version int64) *driftwatch.Entry {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &driftwatch.Entry{
		ID:        id,
		Value:     "value",
		Version:   version,
		CachedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}
