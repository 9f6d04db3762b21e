package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLog is an in-process event log.
type MemoryLog struct {
	mu     sync.RWMutex
	events []*Event
}

var _ Log = (*MemoryLog)(nil)

// NewMemoryLog returns an empty in-process log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) Append(_ context.Context, event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored := *event
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}
	l.events = append(l.events, &stored)
	return nil
}

func (l *MemoryLog) ListAll(_ context.Context) ([]*Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Event, 0, len(l.events))
	for _, e := range l.events {
		clone := *e
		out = append(out, &clone)
	}
	return out, nil
}

func (l *MemoryLog) ListRecent(_ context.Context, n int) ([]*Event, error) {
	if n <= 0 {
		n = DefaultRecentLimit
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Event, 0, len(l.events))
	for _, e := range l.events {
		clone := *e
		out = append(out, &clone)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (l *MemoryLog) CountByStatus(_ context.Context, status Status) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var count int64
	for _, e := range l.events {
		if e.Status == status {
			count++
		}
	}
	return count, nil
}
