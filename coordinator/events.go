package coordinator

import (
	"context"

	"github.com/goforj/driftwatch/audit"
)

// EventStats summarizes invalidation outcomes across the whole log.
type EventStats struct {
	TotalAttempts     int64   `json:"totalInvalidationAttempts"`
	Failed            int64   `json:"failedInvalidations"`
	Successful        int64   `json:"successfulInvalidations"`
	FailurePercentage float64 `json:"failurePercentage"`
}

// Events returns the full invalidation history, oldest first.
func (c *Coordinator) Events(ctx context.Context) ([]*audit.Event, error) {
	return c.log.ListAll(ctx)
}

// RecentEvents returns the n most recent events, newest first.
func (c *Coordinator) RecentEvents(ctx context.Context, n int) ([]*audit.Event, error) {
	return c.log.ListRecent(ctx, n)
}

// Stats aggregates invalidation attempt outcomes.
func (c *Coordinator) Stats(ctx context.Context) (EventStats, error) {
	all, err := c.log.ListAll(ctx)
	if err != nil {
		return EventStats{}, err
	}
	failed, err := c.log.CountByStatus(ctx, audit.StatusFailed)
	if err != nil {
		return EventStats{}, err
	}
	total := int64(len(all))
	stats := EventStats{
		TotalAttempts: total,
		Failed:        failed,
		Successful:    total - failed,
	}
	if total > 0 {
		stats.FailurePercentage = float64(failed) * 100.0 / float64(total)
	}
	return stats, nil
}
