package driftwatch

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestEngine(opts ...EngineOption) *Engine {
	base := []EngineOption{
		WithNetworkDelay(0),
		WithFailureDecider(NeverFail()),
	}
	return NewEngine(NewMemoryStore(), append(base, opts...)...)
}

func seedExpired(t *testing.T, store EntryStore, id string) {
	t.Helper()
	now := time.Now()
	err := store.Put(context.Background(), id, &Entry{
		ID:        id,
		Value:     "stale",
		Version:   1,
		CachedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("seed expired entry: %v", err)
	}
}

func TestEnginePutGet(t *testing.T) {
	e := newTestEngine(WithDefaultTTL(time.Minute))
	ctx := context.Background()

	put, err := e.Put(ctx, "r1", "hello", 3)
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if put.Version != 3 || put.Value != "hello" {
		t.Fatalf("unexpected put entry: %+v", put)
	}
	if got := put.ExpiresAt.Sub(put.CachedAt); got != time.Minute {
		t.Fatalf("expected ttl of 1m, got %s", got)
	}

	got, ok, err := e.Get(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("expected hit: ok=%v err=%v", ok, err)
	}
	if got.Value != "hello" || got.Version != 3 {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

func TestEngineGetMiss(t *testing.T) {
	e := newTestEngine()
	if _, ok, err := e.Get(context.Background(), "nope"); err != nil || ok {
		t.Fatalf("expected miss: ok=%v err=%v", ok, err)
	}
}

func TestEnginePutOverwrites(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	if _, err := e.Put(ctx, "r1", "old", 1); err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	if _, err := e.Put(ctx, "r1", "new", 2); err != nil {
		t.Fatalf("second put failed: %v", err)
	}
	got, ok, err := e.Get(ctx, "r1")
	if err != nil || !ok || got.Version != 2 || got.Value != "new" {
		t.Fatalf("expected overwrite to win: ok=%v err=%v entry=%+v", ok, err, got)
	}
}

func TestEngineLazyExpiry(t *testing.T) {
	store := NewMemoryStore()
	e := NewEngine(store, WithNetworkDelay(0), WithFailureDecider(NeverFail()))
	ctx := context.Background()
	seedExpired(t, store, "old")

	// The read itself evicts.
	if _, ok, err := e.Get(ctx, "old"); err != nil || ok {
		t.Fatalf("expected expired entry to miss: ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.Get(ctx, "old"); err != nil || ok {
		t.Fatalf("expected expired entry evicted from store: ok=%v err=%v", ok, err)
	}
}

func TestEngineContains(t *testing.T) {
	store := NewMemoryStore()
	e := NewEngine(store, WithNetworkDelay(0), WithFailureDecider(NeverFail()))
	ctx := context.Background()

	if _, err := e.Put(ctx, "live", "v", 1); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	seedExpired(t, store, "dead")

	if ok, err := e.Contains(ctx, "live"); err != nil || !ok {
		t.Fatalf("expected live entry present: ok=%v err=%v", ok, err)
	}
	if ok, err := e.Contains(ctx, "dead"); err != nil || ok {
		t.Fatalf("expected expired entry reported absent: ok=%v err=%v", ok, err)
	}
	if ok, err := e.Contains(ctx, "never"); err != nil || ok {
		t.Fatalf("expected unknown id absent: ok=%v err=%v", ok, err)
	}
}

func TestEngineInvalidateForcedFailure(t *testing.T) {
	e := newTestEngine(WithFailureDecider(AlwaysFail()))
	ctx := context.Background()
	if _, err := e.Put(ctx, "r1", "v", 1); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	ok, err := e.Invalidate(ctx, "r1")
	if err != nil {
		t.Fatalf("invalidate errored: %v", err)
	}
	if ok {
		t.Fatalf("expected invalidation to fail")
	}
	// The entry must be left untouched on a simulated failure.
	if got, ok, err := e.Get(ctx, "r1"); err != nil || !ok || got.Version != 1 {
		t.Fatalf("expected entry to survive failed invalidation: ok=%v err=%v", ok, err)
	}
}

func TestEngineInvalidateSequence(t *testing.T) {
	e := newTestEngine(WithFailureDecider(SequenceDecider(true, false)))
	ctx := context.Background()
	if _, err := e.Put(ctx, "r1", "v", 1); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if ok, err := e.Invalidate(ctx, "r1"); err != nil || ok {
		t.Fatalf("expected first attempt to fail: ok=%v err=%v", ok, err)
	}
	if ok, err := e.Invalidate(ctx, "r1"); err != nil || !ok {
		t.Fatalf("expected second attempt to succeed: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := e.Get(ctx, "r1"); ok {
		t.Fatalf("expected entry gone after successful invalidation")
	}
}

func TestEngineInvalidateAbsentIsSuccess(t *testing.T) {
	e := newTestEngine()
	if ok, err := e.Invalidate(context.Background(), "ghost"); err != nil || !ok {
		t.Fatalf("expected absent-key invalidation to succeed: ok=%v err=%v", ok, err)
	}
}

func TestEngineClearBypassesFailure(t *testing.T) {
	e := newTestEngine(WithFailureDecider(AlwaysFail()))
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := e.Put(ctx, id, "v", 1); err != nil {
			t.Fatalf("put %s failed: %v", id, err)
		}
	}

	removed, err := e.Clear(ctx)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	entries, err := e.List(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty cache after clear: len=%d err=%v", len(entries), err)
	}
}

func TestEngineListIncludesExpired(t *testing.T) {
	store := NewMemoryStore()
	e := NewEngine(store, WithNetworkDelay(0), WithFailureDecider(NeverFail()))
	ctx := context.Background()

	if _, err := e.Put(ctx, "live", "v", 1); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	seedExpired(t, store, "dead")

	entries, err := e.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected expired entries in listing, got %d entries", len(entries))
	}
}

func TestEngineStats(t *testing.T) {
	store := NewMemoryStore()
	e := NewEngine(store,
		WithNetworkDelay(0),
		WithFailureDecider(NeverFail()),
		WithDefaultTTL(2*time.Minute),
		WithFailureRate(0.5),
	)
	ctx := context.Background()

	if _, err := e.Put(ctx, "live", "v", 1); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	seedExpired(t, store, "dead")

	stats, err := e.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Driver != DriverMemory {
		t.Fatalf("expected memory driver, got %s", stats.Driver)
	}
	if stats.TotalEntries != 2 || stats.ExpiredEntries != 1 {
		t.Fatalf("unexpected occupancy: %+v", stats)
	}
	if stats.FailureRate != 0.5 {
		t.Fatalf("expected failure rate 0.5, got %v", stats.FailureRate)
	}
	if stats.NetworkDelayMs != 0 || stats.DefaultTTLSeconds != 120 {
		t.Fatalf("unexpected config snapshot: %+v", stats)
	}
}

func TestEngineSetFailureRateClamps(t *testing.T) {
	e := newTestEngine()
	if got := e.SetFailureRate(1.5); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	if got := e.SetFailureRate(-0.3); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := e.SetFailureRate(0.25); got != 0.25 {
		t.Fatalf("expected 0.25 applied, got %v", got)
	}
	if got := e.FailureRate(); got != 0.25 {
		t.Fatalf("expected FailureRate to read 0.25, got %v", got)
	}
}

func TestEngineNetworkDelayApplies(t *testing.T) {
	e := newTestEngine(WithNetworkDelay(30 * time.Millisecond))
	start := time.Now()
	if _, _, err := e.Get(context.Background(), "x"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("expected at least 30ms of simulated latency, got %s", elapsed)
	}
}

func TestEngineConcurrentSmoke(t *testing.T) {
	e := newTestEngine(WithFailureDecider(NeverFail()))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%4))
			for j := 0; j < 50; j++ {
				if _, err := e.Put(ctx, id, "v", int64(j)); err != nil {
					t.Errorf("put failed: %v", err)
					return
				}
				if _, _, err := e.Get(ctx, id); err != nil {
					t.Errorf("get failed: %v", err)
					return
				}
				if _, err := e.Invalidate(ctx, id); err != nil {
					t.Errorf("invalidate failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
