package retry

import (
	"errors"
	"math/rand"
	"time"

	"github.com/code-payments/soltips-server/pkg/retry/backoff"
)

// Strategy decides whether action should run again after attempts tries ended
// with err. Strategies may sleep.
type Strategy func(attempts uint, err error) bool

// Limit allows at most maxAttempts executions in total.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors retries only errors matching one of errs via errors.Is.
func RetriableErrors(errs ...error) Strategy {
	return RetriableWhen(func(err error) bool {
		return isAny(err, errs)
	})
}

// NonRetriableErrors retries everything except errors matching one of errs.
func NonRetriableErrors(errs ...error) Strategy {
	return NonRetriableWhen(func(err error) bool {
		return isAny(err, errs)
	})
}

func RetriableWhen(predicate func(error) bool) Strategy {
	return func(_ uint, err error) bool {
		return predicate(err)
	}
}

func NonRetriableWhen(predicate func(error) bool) Strategy {
	return func(_ uint, err error) bool {
		return !predicate(err)
	}
}

// Backoff sleeps for the delay given by strategy, capped at maxBackoff, and
// always allows the retry.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return BackoffWithJitter(strategy, maxBackoff, 0)
}

// BackoffWithJitter is Backoff with the capped delay randomized by up to
// +/- jitter of itself. A 100ms delay with 0.1 jitter sleeps 90ms to 110ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := strategy(attempts)
		if delay > maxBackoff {
			delay = maxBackoff
		}
		if jitter > 0 {
			delay = time.Duration(float64(delay) * (1 + jitter*(2*rand.Float64()-1)))
		}

		sleeperImpl.Sleep(delay)
		return true
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type sleeper interface {
	Sleep(time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = realSleeper{}
