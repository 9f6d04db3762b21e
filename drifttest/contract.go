// Package drifttest provides a backend-agnostic contract suite for EntryStore
// implementations. Driver packages and integration tests run the same checks
// so every backend agrees on miss, overwrite, delete, list, and flush
// semantics.
package drifttest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goforj/driftwatch"
)

// Options configures shared store contract checks.
type Options struct {
	// CaseName is used to namespace ids. Defaults to t.Name().
	CaseName string
	// NullSemantics enables relaxed expectations for the null store.
	NullSemantics bool
	// SkipCloneCheck disables the "get returns a cloned entry" assertion.
	SkipCloneCheck bool
	// SkipFlush disables the flush assertion for drivers where it is expensive or unavailable.
	SkipFlush bool
}

// RunStoreContract runs a backend-agnostic entry store contract suite.
func RunStoreContract(t *testing.T, store driftwatch.EntryStore, opts Options) {
	t.Helper()

	caseName := opts.CaseName
	if caseName == "" {
		caseName = t.Name()
	}

	ctx := context.Background()
	id := func(s string) string {
		return sanitize(caseName) + "-" + s
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	entry := func(eid string, version int64) *driftwatch.Entry {
		return &driftwatch.Entry{
			ID:        eid,
			Value:     "value",
			Version:   version,
			CachedAt:  now,
			ExpiresAt: now.Add(time.Hour),
		}
	}

	// Put/Get round-trip.
	if err := store.Put(ctx, id("alpha"), entry(id("alpha"), 1)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, ok, err := store.Get(ctx, id("alpha"))
	if err != nil {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if opts.NullSemantics {
		if ok {
			t.Fatalf("expected miss for null semantics")
		}
	} else {
		if !ok || got.Version != 1 {
			t.Fatalf("unexpected get result: ok=%v entry=%+v", ok, got)
		}
		if !opts.SkipCloneCheck {
			got.Value = "tampered"
			got2, ok2, err2 := store.Get(ctx, id("alpha"))
			if err2 != nil || !ok2 || got2.Value == "tampered" {
				t.Fatalf("expected stored entry unchanged, got ok=%v entry=%+v err=%v", ok2, got2, err2)
			}
		}
	}

	// Put overwrites in place.
	if err := store.Put(ctx, id("alpha"), entry(id("alpha"), 2)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, ok, err = store.Get(ctx, id("alpha"))
	if err != nil {
		t.Fatalf("get after overwrite failed: %v", err)
	}
	if !opts.NullSemantics && (!ok || got.Version != 2) {
		t.Fatalf("expected version 2 after overwrite, got ok=%v entry=%+v", ok, got)
	}

	// Miss for an unknown id.
	if _, ok, err := store.Get(ctx, id("missing")); err != nil || ok {
		t.Fatalf("expected miss for unknown id; ok=%v err=%v", ok, err)
	}

	// Delete removes; deleting an absent id is not an error.
	if err := store.Put(ctx, id("gone"), entry(id("gone"), 1)); err != nil {
		t.Fatalf("put gone failed: %v", err)
	}
	if err := store.Delete(ctx, id("gone")); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, err := store.Get(ctx, id("gone")); err != nil || ok {
		t.Fatalf("expected id deleted; ok=%v err=%v", ok, err)
	}
	if err := store.Delete(ctx, id("never-existed")); err != nil {
		t.Fatalf("delete of absent id failed: %v", err)
	}

	// List sees current entries keyed by id.
	if err := store.Put(ctx, id("l1"), entry(id("l1"), 1)); err != nil {
		t.Fatalf("put l1 failed: %v", err)
	}
	if err := store.Put(ctx, id("l2"), entry(id("l2"), 1)); err != nil {
		t.Fatalf("put l2 failed: %v", err)
	}
	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if opts.NullSemantics {
		if len(all) != 0 {
			t.Fatalf("expected null-like list to be empty, got %d entries", len(all))
		}
	} else {
		if _, found := all[id("l1")]; !found {
			t.Fatalf("expected list to contain %q, got %d entries", id("l1"), len(all))
		}
		if _, found := all[id("l2")]; !found {
			t.Fatalf("expected list to contain %q, got %d entries", id("l2"), len(all))
		}
	}

	// Flush empties the store and reports a count.
	if !opts.SkipFlush {
		if err := store.Put(ctx, id("flush"), entry(id("flush"), 1)); err != nil {
			t.Fatalf("put flush failed: %v", err)
		}
		removed, err := store.Flush(ctx)
		if err != nil {
			t.Fatalf("flush failed: %v", err)
		}
		if !opts.NullSemantics && removed < 1 {
			t.Fatalf("expected flush to report at least one removal, got %d", removed)
		}
		if _, ok, err := store.Get(ctx, id("flush")); err != nil || ok {
			t.Fatalf("expected flush to clear id; ok=%v err=%v", ok, err)
		}
		if all, err := store.List(ctx); err != nil || len(all) != 0 {
			t.Fatalf("expected empty list after flush; len=%d err=%v", len(all), err)
		}
	}
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
