package driftwatch

import (
	"context"
	"log/slog"
	"time"
)

// Observer receives events for engine operations after each completes.
type Observer interface {
	OnCacheOp(ctx context.Context, op string, id string, hit bool, err error, dur time.Duration, driver Driver)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, op string, id string, hit bool, err error, dur time.Duration, driver Driver)

// OnCacheOp implements Observer.
func (f ObserverFunc) OnCacheOp(ctx context.Context, op string, id string, hit bool, err error, dur time.Duration, driver Driver) {
	if f == nil {
		return
	}
	f(ctx, op, id, hit, err, dur, driver)
}

// NewLogObserver writes one debug line per engine operation. Errors are
// logged at warn.
func NewLogObserver(logger *slog.Logger) Observer {
	return ObserverFunc(func(ctx context.Context, op, id string, hit bool, err error, dur time.Duration, driver Driver) {
		if err != nil {
			logger.WarnContext(ctx, "cache op failed",
				"op", op, "id", id, "driver", string(driver), "error", err)
			return
		}
		logger.DebugContext(ctx, "cache op",
			"op", op, "id", id, "hit", hit, "driver", string(driver), "duration", dur)
	})
}
