package fraud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Delay(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts:  3,
		BaseDelay:    500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		JitterFactor: 0,
	}

	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{name: "first retry uses base delay", attempt: 1, expected: 500 * time.Millisecond},
		{name: "second retry doubles", attempt: 2, expected: 1 * time.Second},
		{name: "third retry doubles again", attempt: 3, expected: 2 * time.Second},
		{name: "fourth retry doubles again", attempt: 4, expected: 4 * time.Second},
		{name: "growth is capped at max delay", attempt: 10, expected: 5 * time.Second},
		{name: "attempt below one is clamped", attempt: 0, expected: 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.Delay(tt.attempt, nil))
		})
	}
}

func TestRetryPolicy_Delay_Jitter(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts:  3,
		BaseDelay:    500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		JitterFactor: 0.75,
	}

	t.Run("rnd at midpoint returns nominal delay", func(t *testing.T) {
		delay := policy.Delay(1, func() float64 { return 0.5 })
		assert.Equal(t, 500*time.Millisecond, delay)
	})

	t.Run("rnd at zero returns lower bound", func(t *testing.T) {
		delay := policy.Delay(1, func() float64 { return 0 })
		// 500ms minus half the 75% jitter range
		assert.Equal(t, 312500*time.Microsecond, delay)
	})

	t.Run("jittered delay stays inside the configured spread", func(t *testing.T) {
		for _, r := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
			delay := policy.Delay(2, func() float64 { return r })
			assert.GreaterOrEqual(t, delay, 625*time.Millisecond)
			assert.LessOrEqual(t, delay, 1375*time.Millisecond)
		}
	})

	t.Run("nil rnd disables jitter", func(t *testing.T) {
		assert.Equal(t, 1*time.Second, policy.Delay(2, nil))
	})
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, policy.BaseDelay)
	assert.Equal(t, 5*time.Second, policy.MaxDelay)
	assert.Equal(t, 0.75, policy.JitterFactor)
}
