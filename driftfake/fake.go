// Package driftfake provides a deterministic in-memory cache engine plus
// assertion helpers for tests. Delay is disabled and failure is controlled
// by the caller, so tests stay fast and reproducible.
package driftfake

import (
	"context"
	"sync"
	"testing"

	"github.com/goforj/driftwatch"
)

// Op identifies a store operation for assertions.
type Op string

const (
	OpGet    Op = "get"
	OpPut    Op = "put"
	OpDelete Op = "delete"
	OpList   Op = "list"
	OpFlush  Op = "flush"
)

// Fake exposes a deterministic engine over an in-memory store plus call
// counting. It wraps the memory store so no external services are needed.
type Fake struct {
	engine *driftwatch.Engine
	counts map[Op]map[string]int
	mu     sync.Mutex
}

// New creates a Fake with network delay disabled and failure injection off.
// Extra options are applied after the deterministic defaults and may
// override them.
func New(opts ...driftwatch.EngineOption) *Fake {
	store := &countingStore{inner: driftwatch.NewMemoryStore()}
	f := &Fake{counts: make(map[Op]map[string]int)}
	store.onCount = f.record
	base := []driftwatch.EngineOption{
		driftwatch.WithNetworkDelay(0),
		driftwatch.WithFailureDecider(driftwatch.NeverFail()),
	}
	f.engine = driftwatch.NewEngine(store, append(base, opts...)...)
	return f
}

// Engine returns the engine to inject into code under test.
func (f *Fake) Engine() *driftwatch.Engine { return f.engine }

// Reset clears recorded counts.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts = make(map[Op]map[string]int)
}

// AssertCalled verifies id was touched by op the expected number of times.
func (f *Fake) AssertCalled(t *testing.T, op Op, id string, times int) {
	t.Helper()
	if got := f.Count(op, id); got != times {
		t.Fatalf("expected %s %q called %d times, got %d", op, id, times, got)
	}
}

// AssertNotCalled ensures id was never touched by op.
func (f *Fake) AssertNotCalled(t *testing.T, op Op, id string) {
	t.Helper()
	if got := f.Count(op, id); got != 0 {
		t.Fatalf("expected %s %q not called, got %d", op, id, got)
	}
}

// AssertTotal ensures the total call count for an op matches times.
func (f *Fake) AssertTotal(t *testing.T, op Op, times int) {
	t.Helper()
	if got := f.Total(op); got != times {
		t.Fatalf("expected %s total=%d, got %d", op, times, got)
	}
}

// Count returns calls for op+id.
func (f *Fake) Count(op Op, id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts[op] == nil {
		return 0
	}
	return f.counts[op][id]
}

// Total returns total calls for an op across ids.
func (f *Fake) Total(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int
	for _, v := range f.counts[op] {
		sum += v
	}
	return sum
}

func (f *Fake) record(op Op, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts[op] == nil {
		f.counts[op] = make(map[string]int)
	}
	f.counts[op][id]++
}

// countingStore wraps an EntryStore to record calls.
type countingStore struct {
	inner   driftwatch.EntryStore
	onCount func(Op, string)
}

func (s *countingStore) Driver() driftwatch.Driver { return s.inner.Driver() }

func (s *countingStore) Get(ctx context.Context, id string) (*driftwatch.Entry, bool, error) {
	s.bump(OpGet, id)
	return s.inner.Get(ctx, id)
}

func (s *countingStore) Put(ctx context.Context, id string, entry *driftwatch.Entry) error {
	s.bump(OpPut, id)
	return s.inner.Put(ctx, id, entry)
}

func (s *countingStore) Delete(ctx context.Context, id string) error {
	s.bump(OpDelete, id)
	return s.inner.Delete(ctx, id)
}

func (s *countingStore) List(ctx context.Context) (map[string]*driftwatch.Entry, error) {
	s.bump(OpList, "")
	return s.inner.List(ctx)
}

func (s *countingStore) Flush(ctx context.Context) (int, error) {
	s.bump(OpFlush, "")
	return s.inner.Flush(ctx)
}

func (s *countingStore) bump(op Op, id string) {
	if s.onCount != nil {
		s.onCount(op, id)
	}
}
