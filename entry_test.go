package driftwatch

import (
	"testing"
	"time"
)

func TestEntryExpiry(t *testing.T) {
	now := time.Now()
	live := &Entry{ID: "a", ExpiresAt: now.Add(time.Minute)}
	dead := &Entry{ID: "b", ExpiresAt: now.Add(-time.Minute)}

	if live.Expired() {
		t.Fatalf("expected live entry not expired")
	}
	if !dead.Expired() {
		t.Fatalf("expected past-deadline entry expired")
	}
	if live.ExpiredAt(now.Add(2 * time.Minute)) != true {
		t.Fatalf("expected entry expired relative to later clock")
	}
}

func TestEntryStaleAgainst(t *testing.T) {
	e := &Entry{Version: 3}
	if e.StaleAgainst(3) {
		t.Fatalf("equal versions are not stale")
	}
	if !e.StaleAgainst(4) {
		t.Fatalf("older cache version is stale")
	}
	// A cache ahead of the database is not treated as stale.
	if e.StaleAgainst(2) {
		t.Fatalf("newer cache version is not stale")
	}
}

func TestEntryClone(t *testing.T) {
	orig := &Entry{ID: "a", Value: "v", Version: 1}
	clone := orig.Clone()
	clone.Value = "mutated"
	if orig.Value != "v" {
		t.Fatalf("clone mutation leaked into original")
	}
	var nilEntry *Entry
	if nilEntry.Clone() != nil {
		t.Fatalf("expected nil clone of nil entry")
	}
}
