// Package coordinator ties record mutations to cache invalidation. Every
// update that requests invalidation produces exactly one audit event; the
// delete path invalidates unconditionally and is exempt from audit logging.
package coordinator

import (
	"context"
	"log/slog"

	"github.com/goforj/driftwatch"
	"github.com/goforj/driftwatch/audit"
	"github.com/goforj/driftwatch/record"
)

// Invalidation reasons recorded on audit events. The forced path is
// distinguished from the probabilistic one.
const (
	ReasonNormal    = "normal invalidation"
	ReasonFailed    = "invalidation failed"
	ReasonSimulated = "simulated failure"
)

// Coordinator mutates the record store and propagates invalidations to the
// cache engine, recording each attempt in the audit log.
type Coordinator struct {
	records record.Store
	cache   *driftwatch.Engine
	log     audit.Log
	logger  *slog.Logger
}

// New wires a coordinator. logger may be nil.
func New(records record.Store, cache *driftwatch.Engine, log audit.Log, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{records: records, cache: cache, log: log, logger: logger}
}

// Create adds a record at version 1, optionally priming the cache with it.
func (c *Coordinator) Create(ctx context.Context, value string, cacheImmediately bool) (*record.Record, error) {
	rec, err := c.records.Create(ctx, value)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "record created", "id", rec.ID, "version", rec.Version)

	if cacheImmediately {
		if _, err := c.cache.Put(ctx, rec.ID, rec.Value, rec.Version); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Get returns a record by id.
func (c *Coordinator) Get(ctx context.Context, id string) (*record.Record, error) {
	return c.records.Get(ctx, id)
}

// List returns all records.
func (c *Coordinator) List(ctx context.Context) ([]*record.Record, error) {
	return c.records.List(ctx)
}

// Update mutates a record, incrementing its version. When invalidateCache is
// false no cache interaction occurs and no event is logged; missed
// invalidations are precisely the drift the analyzer measures. When
// simulateFailure is set the attempt is treated as failed without consulting
// the engine's own probabilistic failure.
func (c *Coordinator) Update(ctx context.Context, id, value string, invalidateCache, simulateFailure bool) (*record.Record, error) {
	rec, err := c.records.Update(ctx, id, value)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "record updated", "id", rec.ID, "version", rec.Version)

	if invalidateCache {
		if err := c.handleInvalidation(ctx, rec, simulateFailure); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Delete removes a record and unconditionally invalidates its cache entry.
// The delete path does not log an audit event.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	if err := c.records.Delete(ctx, id); err != nil {
		return err
	}
	if ok, err := c.cache.Invalidate(ctx, id); err != nil || !ok {
		c.logger.WarnContext(ctx, "cache invalidation on delete did not succeed",
			"id", id, "error", err)
	}
	c.logger.InfoContext(ctx, "record deleted", "id", id)
	return nil
}

// handleInvalidation performs one invalidation attempt and appends exactly
// one audit event capturing its outcome.
func (c *Coordinator) handleInvalidation(ctx context.Context, rec *record.Record, simulateFailure bool) error {
	var cacheVersion *int64
	if entry, ok, err := c.cache.Get(ctx, rec.ID); err == nil && ok {
		v := entry.Version
		cacheVersion = &v
	}

	var success bool
	var reason string
	if simulateFailure {
		// Forced failure takes precedence over the probabilistic path.
		success = false
		reason = ReasonSimulated
		c.logger.WarnContext(ctx, "cache invalidation forced to fail", "id", rec.ID)
	} else {
		ok, err := c.cache.Invalidate(ctx, rec.ID)
		if err != nil {
			return err
		}
		success = ok
		if success {
			reason = ReasonNormal
		} else {
			reason = ReasonFailed
			c.logger.WarnContext(ctx, "cache invalidation failed", "id", rec.ID)
		}
	}

	status := audit.StatusFailed
	if success {
		status = audit.StatusSuccess
	}
	event := &audit.Event{
		RecordID:      rec.ID,
		RecordVersion: rec.Version,
		CacheVersion:  cacheVersion,
		Status:        status,
		Reason:        reason,
	}
	if err := c.log.Append(ctx, event); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "invalidation event logged",
		"id", rec.ID, "status", string(status))
	return nil
}
