package driftwatch

import (
	"context"
	"sync"
	"time"
)

// Engine is the volatile cache side of the drift model. It owns TTL
// assignment, simulated network latency, and probabilistic invalidation loss;
// entry storage is delegated to an EntryStore.
//
// The engine is a long-lived component: construct one per process and pass it
// by reference to collaborators.
type Engine struct {
	store      EntryStore
	defaultTTL time.Duration
	delay      time.Duration
	decide     FailureDecider
	observer   Observer

	mu          sync.RWMutex
	failureRate float64
}

// Stats is a point-in-time snapshot of engine configuration and occupancy.
// ExpiredEntries counts entries past their TTL that no read has evicted yet.
type Stats struct {
	Driver            Driver  `json:"driver"`
	TotalEntries      int     `json:"totalEntries"`
	ExpiredEntries    int     `json:"expiredEntries"`
	FailureRate       float64 `json:"failureRate"`
	NetworkDelayMs    int64   `json:"networkDelayMs"`
	DefaultTTLSeconds int64   `json:"defaultTtlSeconds"`
}

// NewEngine builds a cache engine around a store. Without options it uses the
// defaults the simulation is tuned for: 300s TTL, 100ms delay, 0.2 failure
// rate, random failure decisions.
func NewEngine(store EntryStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:       store,
		defaultTTL:  DefaultTTL,
		delay:       DefaultNetworkDelay,
		failureRate: DefaultFailureRate,
		decide:      RandomDecider(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Driver reports the backing store driver.
func (e *Engine) Driver() Driver {
	return e.store.Driver()
}

// Store returns the underlying entry store.
func (e *Engine) Store() EntryStore {
	return e.store
}

// Get returns the cached entry for id. An entry past its TTL is removed as
// part of the read and treated as a miss.
func (e *Engine) Get(ctx context.Context, id string) (*Entry, bool, error) {
	start := time.Now()
	e.simulateNetworkDelay()

	entry, ok, err := e.store.Get(ctx, id)
	if err != nil || !ok {
		e.observe(ctx, "get", id, false, err, start)
		return nil, false, err
	}
	if entry.Expired() {
		// Lazy expiry: the read evicts.
		if delErr := e.store.Delete(ctx, id); delErr != nil {
			e.observe(ctx, "get", id, false, delErr, start)
			return nil, false, delErr
		}
		e.observe(ctx, "get", id, false, nil, start)
		return nil, false, nil
	}
	e.observe(ctx, "get", id, true, nil, start)
	return entry, true, nil
}

// Put caches value at the given version, replacing any prior entry wholesale.
// Last-writer-wins: there is deliberately no compare-and-swap on version,
// since invalidation races are what the analyzer must detect, not prevent.
func (e *Engine) Put(ctx context.Context, id, value string, version int64) (*Entry, error) {
	start := time.Now()
	e.simulateNetworkDelay()

	now := time.Now()
	entry := &Entry{
		ID:        id,
		Value:     value,
		Version:   version,
		CachedAt:  now,
		ExpiresAt: now.Add(e.defaultTTL),
	}
	if err := e.store.Put(ctx, id, entry); err != nil {
		e.observe(ctx, "put", id, false, err, start)
		return nil, err
	}
	e.observe(ctx, "put", id, true, nil, start)
	return entry.Clone(), nil
}

// Invalidate removes the entry for id. With probability equal to the
// configured failure rate the attempt is reported as failed and the entry is
// left untouched. Removing an absent key is success: already invalidated is
// not a failure.
func (e *Engine) Invalidate(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	e.simulateNetworkDelay()

	if e.decide(e.FailureRate()) {
		e.observe(ctx, "invalidate", id, false, nil, start)
		return false, nil
	}
	if err := e.store.Delete(ctx, id); err != nil {
		e.observe(ctx, "invalidate", id, false, err, start)
		return false, err
	}
	e.observe(ctx, "invalidate", id, true, nil, start)
	return true, nil
}

// Clear removes every entry and returns the count removed. As an
// administrative operation it bypasses failure simulation.
func (e *Engine) Clear(ctx context.Context) (int, error) {
	start := time.Now()
	e.simulateNetworkDelay()

	removed, err := e.store.Flush(ctx)
	e.observe(ctx, "clear", "", err == nil, err, start)
	return removed, err
}

// Contains reports whether a live (non-expired) entry exists for id.
func (e *Engine) Contains(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	e.simulateNetworkDelay()

	entry, ok, err := e.store.Get(ctx, id)
	if err != nil || !ok {
		e.observe(ctx, "contains", id, false, err, start)
		return false, err
	}
	live := !entry.Expired()
	e.observe(ctx, "contains", id, live, nil, start)
	return live, nil
}

// List returns a point-in-time copy of all entries, expired ones included.
// The snapshot does not reflect later mutations.
func (e *Engine) List(ctx context.Context) (map[string]*Entry, error) {
	start := time.Now()
	e.simulateNetworkDelay()

	entries, err := e.store.List(ctx)
	e.observe(ctx, "list", "", err == nil, err, start)
	return entries, err
}

// Stats reports engine configuration and occupancy.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	entries, err := e.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := time.Now()
	expired := 0
	for _, entry := range entries {
		if entry.ExpiredAt(now) {
			expired++
		}
	}
	return Stats{
		Driver:            e.Driver(),
		TotalEntries:      len(entries),
		ExpiredEntries:    expired,
		FailureRate:       e.FailureRate(),
		NetworkDelayMs:    e.delay.Milliseconds(),
		DefaultTTLSeconds: int64(e.defaultTTL.Seconds()),
	}, nil
}

// FailureRate returns the current invalidation failure probability.
func (e *Engine) FailureRate() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.failureRate
}

// SetFailureRate clamps rate into [0,1] and applies it to subsequent
// invalidations. It returns the clamped value.
func (e *Engine) SetFailureRate(rate float64) float64 {
	clamped := clampRate(rate)
	e.mu.Lock()
	e.failureRate = clamped
	e.mu.Unlock()
	return clamped
}

// DefaultTTL returns the TTL applied to new entries.
func (e *Engine) DefaultTTL() time.Duration {
	return e.defaultTTL
}

// NetworkDelay returns the simulated per-operation round-trip delay.
func (e *Engine) NetworkDelay() time.Duration {
	return e.delay
}

// simulateNetworkDelay blocks for the configured delay. The delay always runs
// to completion once entered; there is no cancellation or coalescing, so
// concurrent callers each pay their own round trip.
func (e *Engine) simulateNetworkDelay() {
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
}

func (e *Engine) observe(ctx context.Context, op, id string, hit bool, err error, start time.Time) {
	if e.observer == nil {
		return
	}
	e.observer.OnCacheOp(ctx, op, id, hit, err, time.Since(start), e.Driver())
}
