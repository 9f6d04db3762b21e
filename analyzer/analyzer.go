// Package analyzer measures cache-database drift: it compares authoritative
// record versions against cached versions, scores the divergence, and can
// heal stale entries in passing.
package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goforj/driftwatch"
	"github.com/goforj/driftwatch/record"
)

// Analyzer is stateless: every call recomputes from fresh record and cache
// snapshots, so it can be shared freely across goroutines.
type Analyzer struct {
	records record.Store
	cache   *driftwatch.Engine
	logger  *slog.Logger
}

// New wires an analyzer. logger may be nil.
func New(records record.Store, cache *driftwatch.Engine, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{records: records, cache: cache, logger: logger}
}

// AnalyzeDrift walks every record, compares it against the cache, and returns
// a full report. With autoFix each stale entry is re-put from record state;
// an auto-fix failure is recorded on the detail and never aborts the scan.
//
// The record list and cache list are two unsynchronized snapshots, so the
// report may reflect skew against mutations racing the scan.
func (a *Analyzer) AnalyzeDrift(ctx context.Context, autoFix bool) (*Report, error) {
	a.logger.InfoContext(ctx, "starting consistency analysis", "autoFix", autoFix)

	records, err := a.records.List(ctx)
	if err != nil {
		return nil, err
	}
	cached, err := a.cache.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TotalRecords: int64(len(records)),
		// From the cache's own size, not the record intersection: entries for
		// deleted records still count.
		CachedRecords: int64(len(cached)),
		StaleDetails:  []StalenessDetail{},
	}

	for _, rec := range records {
		entry, ok, err := a.cache.Get(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Absent from cache: counted in total, excluded from staleness.
			continue
		}
		if !entry.StaleAgainst(rec.Version) {
			continue
		}
		report.StaleRecords++
		drift := rec.Version - entry.Version
		a.logger.WarnContext(ctx, "stale cache entry detected",
			"id", rec.ID, "recordVersion", rec.Version,
			"cacheVersion", entry.Version, "drift", drift)

		fixed := false
		if autoFix {
			fixed = a.autoFix(ctx, rec)
			if fixed {
				report.AutoFixedCount++
			}
		}
		report.StaleDetails = append(report.StaleDetails, StalenessDetail{
			RecordID:      rec.ID,
			RecordVersion: rec.Version,
			CacheVersion:  entry.Version,
			VersionDrift:  drift,
			AutoFixed:     fixed,
		})
	}

	report.DriftScore = driftScore(report.StaleRecords, report.TotalRecords)
	report.Verdict = VerdictForScore(report.DriftScore)
	report.GeneratedAt = time.Now().UTC()

	a.logger.InfoContext(ctx, "consistency analysis complete",
		"driftScore", report.DriftScore, "verdict", string(report.Verdict))
	return report, nil
}

// autoFix refreshes a stale cache entry from record state. Failures are
// reported as data; partial failure must not abort the batch.
func (a *Analyzer) autoFix(ctx context.Context, rec *record.Record) bool {
	if _, err := a.cache.Put(ctx, rec.ID, rec.Value, rec.Version); err != nil {
		a.logger.ErrorContext(ctx, "auto-fix failed", "id", rec.ID, "error", err)
		return false
	}
	a.logger.InfoContext(ctx, "auto-fix refreshed cache entry",
		"id", rec.ID, "version", rec.Version)
	return true
}

// IsRecordStale reports whether the cached entry for id lags the record.
// A missing record or a missing cache entry is not staleness; only a version
// mismatch is.
func (a *Analyzer) IsRecordStale(ctx context.Context, id string) (bool, error) {
	rec, err := a.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	entry, ok, err := a.cache.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return entry.StaleAgainst(rec.Version), nil
}

// ForceRefresh unconditionally re-caches a record, even when the cached copy
// is already fresh, and returns the fresh entry. It fails with
// record.ErrNotFound when the record is absent.
func (a *Analyzer) ForceRefresh(ctx context.Context, id string) (*driftwatch.Entry, error) {
	rec, err := a.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entry, err := a.cache.Put(ctx, rec.ID, rec.Value, rec.Version)
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "forced cache refresh", "id", id)
	return entry, nil
}

// QuickSummary computes totals and the drift score without building
// per-record details and without auto-fix. Intended for lightweight polling.
func (a *Analyzer) QuickSummary(ctx context.Context) (*Summary, error) {
	records, err := a.records.List(ctx)
	if err != nil {
		return nil, err
	}
	var stale int64
	for _, rec := range records {
		entry, ok, err := a.cache.Get(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		if ok && entry.StaleAgainst(rec.Version) {
			stale++
		}
	}
	total := int64(len(records))
	score := driftScore(stale, total)
	return &Summary{
		TotalRecords: total,
		StaleRecords: stale,
		DriftScore:   score,
		Verdict:      VerdictForScore(score),
	}, nil
}
