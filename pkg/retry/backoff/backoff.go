// Package backoff provides delay schedules for retry.
package backoff

import (
	"math"
	"time"
)

// Strategy returns how long to wait before the next attempt. Attempts starts
// at 1.
type Strategy func(attempts uint) time.Duration

// Constant waits interval between every attempt.
func Constant(interval time.Duration) Strategy {
	return func(uint) time.Duration {
		return interval
	}
}

// Exponential grows the delay by base on every attempt, saturating at the
// largest representable duration.
//
// delay = baseDelay * base^(attempts - 1)
// Ex. Exponential(2*time.Second, 3) = 2s, 6s, 18s, 54s, ...
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		if attempts == 0 {
			attempts = 1
		}

		delay := float64(baseDelay) * math.Pow(base, float64(attempts-1))
		if math.IsNaN(delay) || delay >= math.MaxInt64 {
			return math.MaxInt64
		}
		if delay < 0 {
			return 0
		}
		return time.Duration(delay)
	}
}

// BinaryExponential doubles the delay on every attempt.
//
// Ex. BinaryExponential(25*time.Millisecond) = 25ms, 50ms, 100ms, 200ms, ...
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}
