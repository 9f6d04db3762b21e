package driftwatch

import (
	"math/rand/v2"
	"sync"
)

// FailureDecider decides whether a single invalidation attempt should be
// reported as failed, given the configured failure rate in [0,1]. Substituting
// a deterministic decider makes failure scenarios exactly reproducible.
type FailureDecider func(rate float64) bool

// RandomDecider fails with probability rate.
func RandomDecider() FailureDecider {
	return func(rate float64) bool {
		return rand.Float64() < rate
	}
}

// SequenceDecider replays a fixed outcome sequence, then always succeeds.
// Safe for concurrent use.
func SequenceDecider(outcomes ...bool) FailureDecider {
	var mu sync.Mutex
	i := 0
	return func(float64) bool {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(outcomes) {
			return false
		}
		out := outcomes[i]
		i++
		return out
	}
}

// NeverFail ignores the rate entirely.
func NeverFail() FailureDecider {
	return func(float64) bool { return false }
}

// AlwaysFail ignores the rate entirely.
func AlwaysFail() FailureDecider {
	return func(float64) bool { return true }
}

// clampRate silently corrects out-of-range failure rates rather than
// rejecting them.
func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
