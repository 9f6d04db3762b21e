package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/goforj/driftwatch"
	"github.com/goforj/driftwatch/record"
)

type fixture struct {
	records *record.MemoryStore
	engine  *driftwatch.Engine
	a       *Analyzer
}

func newFixture(t *testing.T, store driftwatch.EntryStore) *fixture {
	t.Helper()
	if store == nil {
		store = driftwatch.NewMemoryStore()
	}
	engine := driftwatch.NewEngine(store,
		driftwatch.WithNetworkDelay(0),
		driftwatch.WithFailureDecider(driftwatch.NeverFail()),
	)
	records := record.NewMemoryStore()
	return &fixture{
		records: records,
		engine:  engine,
		a:       New(records, engine, nil),
	}
}

// seed creates a record and optionally caches it, then applies updates
// without invalidation so the cached version lags by the given amount.
func (f *fixture) seed(t *testing.T, cached bool, driftBy int) *record.Record {
	t.Helper()
	ctx := context.Background()
	rec, err := f.records.Create(ctx, "v")
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if cached {
		if _, err := f.engine.Put(ctx, rec.ID, rec.Value, rec.Version); err != nil {
			t.Fatalf("prime cache: %v", err)
		}
	}
	for i := 0; i < driftBy; i++ {
		if rec, err = f.records.Update(ctx, rec.ID, "v"); err != nil {
			t.Fatalf("update record: %v", err)
		}
	}
	return rec
}

func TestAnalyzeDriftEmptyUniverse(t *testing.T) {
	f := newFixture(t, nil)
	report, err := f.a.AnalyzeDrift(context.Background(), false)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if report.TotalRecords != 0 || report.DriftScore != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if report.Verdict != VerdictHealthy {
		t.Fatalf("empty universe is healthy, got %s", report.Verdict)
	}
	if report.StaleDetails == nil || len(report.StaleDetails) != 0 {
		t.Fatalf("expected empty (non-nil) details, got %v", report.StaleDetails)
	}
}

func TestAnalyzeDriftDetectsStaleness(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.seed(t, true, 0)
	stale := f.seed(t, true, 2)
	f.seed(t, false, 1) // uncached records are not stale

	report, err := f.a.AnalyzeDrift(ctx, false)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if report.TotalRecords != 3 || report.CachedRecords != 2 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if report.StaleRecords != 1 {
		t.Fatalf("expected 1 stale record, got %d", report.StaleRecords)
	}
	if len(report.StaleDetails) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(report.StaleDetails))
	}
	d := report.StaleDetails[0]
	if d.RecordID != stale.ID || d.RecordVersion != 3 || d.CacheVersion != 1 || d.VersionDrift != 2 {
		t.Fatalf("unexpected detail: %+v", d)
	}
	if d.AutoFixed {
		t.Fatalf("auto-fix was not requested")
	}

	// 1 of 3 stale: 33.33, inside the RISK band.
	if report.DriftScore < 33.3 || report.DriftScore > 33.4 {
		t.Fatalf("unexpected drift score %v", report.DriftScore)
	}
	if report.Verdict != VerdictRisk {
		t.Fatalf("expected RISK verdict, got %s", report.Verdict)
	}
	if report.GeneratedAt.IsZero() {
		t.Fatalf("expected GeneratedAt set")
	}
}

func TestAnalyzeDriftCountsOrphanedEntries(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// Entry without a backing record, as left behind by a failed
	// delete-path invalidation.
	if _, err := f.engine.Put(ctx, "orphan", "v", 1); err != nil {
		t.Fatalf("put orphan: %v", err)
	}
	f.seed(t, true, 0)

	report, err := f.a.AnalyzeDrift(ctx, false)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if report.TotalRecords != 1 || report.CachedRecords != 2 {
		t.Fatalf("expected orphan counted in cache size: %+v", report)
	}
	if report.StaleRecords != 0 {
		t.Fatalf("orphans are not staleness: %+v", report)
	}
}

func TestAnalyzeDriftAutoFix(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	stale := f.seed(t, true, 3)

	report, err := f.a.AnalyzeDrift(ctx, true)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if report.StaleRecords != 1 || report.AutoFixedCount != 1 {
		t.Fatalf("expected one auto-fixed record, got %+v", report)
	}
	if !report.StaleDetails[0].AutoFixed {
		t.Fatalf("expected detail marked auto-fixed")
	}

	// The healed entry carries the authoritative version.
	entry, ok, err := f.engine.Get(ctx, stale.ID)
	if err != nil || !ok || entry.Version != 4 {
		t.Fatalf("expected healed entry at version 4: ok=%v err=%v entry=%+v", ok, err, entry)
	}

	// A second pass finds nothing to fix.
	report, err = f.a.AnalyzeDrift(ctx, true)
	if err != nil {
		t.Fatalf("second analyze failed: %v", err)
	}
	if report.StaleRecords != 0 || report.AutoFixedCount != 0 {
		t.Fatalf("expected clean second pass, got %+v", report)
	}
}

// putRejectingStore fails writes for one id so auto-fix failure paths can be
// exercised deterministically.
type putRejectingStore struct {
	driftwatch.EntryStore
	rejectID string
}

func (s *putRejectingStore) Put(ctx context.Context, id string, entry *driftwatch.Entry) error {
	if id == s.rejectID {
		return errors.New("backend write rejected")
	}
	return s.EntryStore.Put(ctx, id, entry)
}

func TestAnalyzeDriftAutoFixFailureContinues(t *testing.T) {
	inner := driftwatch.NewMemoryStore()
	wrapped := &putRejectingStore{EntryStore: inner}
	f := newFixture(t, wrapped)
	ctx := context.Background()

	broken := f.seed(t, true, 1)
	f.seed(t, true, 1)
	wrapped.rejectID = broken.ID

	report, err := f.a.AnalyzeDrift(ctx, true)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if report.StaleRecords != 2 {
		t.Fatalf("expected both stale records found, got %d", report.StaleRecords)
	}
	// One fix fails, the other still lands: partial failure never aborts.
	if report.AutoFixedCount != 1 {
		t.Fatalf("expected 1 auto-fixed, got %d", report.AutoFixedCount)
	}
	for _, d := range report.StaleDetails {
		if d.RecordID == broken.ID && d.AutoFixed {
			t.Fatalf("expected rejected record not marked fixed")
		}
		if d.RecordID != broken.ID && !d.AutoFixed {
			t.Fatalf("expected healthy record marked fixed")
		}
	}
}

func TestIsRecordStale(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	stale := f.seed(t, true, 1)
	fresh := f.seed(t, true, 0)
	uncached := f.seed(t, false, 2)

	if got, err := f.a.IsRecordStale(ctx, stale.ID); err != nil || !got {
		t.Fatalf("expected stale: got=%v err=%v", got, err)
	}
	if got, err := f.a.IsRecordStale(ctx, fresh.ID); err != nil || got {
		t.Fatalf("expected fresh: got=%v err=%v", got, err)
	}
	if got, err := f.a.IsRecordStale(ctx, uncached.ID); err != nil || got {
		t.Fatalf("a cache miss is not staleness: got=%v err=%v", got, err)
	}
	if got, err := f.a.IsRecordStale(ctx, "no-such-record"); err != nil || got {
		t.Fatalf("an unknown record is not staleness: got=%v err=%v", got, err)
	}
}

func TestForceRefresh(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec := f.seed(t, true, 2)
	entry, err := f.a.ForceRefresh(ctx, rec.ID)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if entry.Version != rec.Version {
		t.Fatalf("expected refreshed entry at version %d, got %d", rec.Version, entry.Version)
	}

	// Refreshing an already-fresh entry is allowed.
	if _, err := f.a.ForceRefresh(ctx, rec.ID); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}

	if _, err := f.a.ForceRefresh(ctx, "ghost"); !errors.Is(err, record.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuickSummary(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.seed(t, true, 1)
	f.seed(t, true, 0)

	summary, err := f.a.QuickSummary(ctx)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalRecords != 2 || summary.StaleRecords != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.DriftScore != 50 || summary.Verdict != VerdictRisk {
		t.Fatalf("unexpected score/verdict: %+v", summary)
	}
}

func TestDriftLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, err := f.records.Create(ctx, "v1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.engine.Put(ctx, rec.ID, rec.Value, rec.Version); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if stale, _ := f.a.IsRecordStale(ctx, rec.ID); stale {
		t.Fatalf("freshly cached record must not be stale")
	}

	// Update without invalidation: the cache silently falls behind.
	if _, err := f.records.Update(ctx, rec.ID, "v2"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if stale, _ := f.a.IsRecordStale(ctx, rec.ID); !stale {
		t.Fatalf("expected staleness after missed invalidation")
	}
	report, err := f.a.AnalyzeDrift(ctx, false)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if report.DriftScore != 100 || report.Verdict != VerdictCritical {
		t.Fatalf("1-record universe fully stale must be CRITICAL, got %+v", report)
	}

	// Heal, then verify the system reports clean.
	report, err = f.a.AnalyzeDrift(ctx, true)
	if err != nil {
		t.Fatalf("healing analyze failed: %v", err)
	}
	if report.AutoFixedCount != 1 {
		t.Fatalf("expected 1 auto-fix, got %d", report.AutoFixedCount)
	}
	if stale, _ := f.a.IsRecordStale(ctx, rec.ID); stale {
		t.Fatalf("expected record fresh after auto-fix")
	}
}

func TestVerdictBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Verdict
	}{
		{0, VerdictHealthy},
		{10, VerdictHealthy},
		{10.5, VerdictMinorDrift},
		{30, VerdictMinorDrift},
		{30.5, VerdictRisk},
		{60, VerdictRisk},
		{60.5, VerdictCritical},
		{100, VerdictCritical},
	}
	for _, tc := range cases {
		if got := VerdictForScore(tc.score); got != tc.want {
			t.Fatalf("VerdictForScore(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestDriftScore(t *testing.T) {
	if got := driftScore(0, 0); got != 0 {
		t.Fatalf("empty universe must score 0, got %v", got)
	}
	if got := driftScore(1, 4); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	if got := driftScore(4, 4); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}
