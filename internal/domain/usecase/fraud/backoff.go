package fraud

import (
	"time"
)

// RetryPolicy describes bounded exponential backoff with jitter for event
// delivery. Delay is a pure function of the attempt number so the policy can
// be tested without real time passing.
type RetryPolicy struct {
	MaxAttempts  int           // Total attempts including the first
	BaseDelay    time.Duration // Delay before the first retry
	MaxDelay     time.Duration // Cap applied after exponentiation
	JitterFactor float64       // Fraction of the delay randomized, in [0, 1]
}

// DefaultRetryPolicy mirrors the delivery contract: 3 attempts, 500ms base,
// jittered exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		BaseDelay:    500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		JitterFactor: 0.75,
	}
}

// Delay returns how long to wait before the retry following the given attempt
// (attempt is 1-based: attempt 1 is the first failed try). rnd must return a
// value in [0, 1); it is injected so tests stay deterministic.
func (p RetryPolicy) Delay(attempt int, rnd func() float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.JitterFactor <= 0 || rnd == nil {
		return delay
	}

	// Spread the jittered fraction evenly around the nominal delay
	jitterRange := float64(delay) * p.JitterFactor
	jittered := float64(delay) - jitterRange/2 + rnd()*jitterRange
	if jittered < 0 {
		return 0
	}
	return time.Duration(jittered)
}
