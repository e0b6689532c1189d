package retry

import (
	"context"
)

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries actions with a fixed set of strategies.
type Retrier interface {
	Retry(action Action) (uint, error)
	RetryContext(ctx context.Context, action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier using strategies. Without strategies, actions
// are retried in a tight loop until they succeed.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

func (r *retrier) RetryContext(ctx context.Context, action Action) (uint, error) {
	return RetryContext(ctx, action, r.strategies...)
}

// Retry runs action until it succeeds or one of the strategies vetoes another
// attempt, returning the number of attempts and the last error.
//
// Strategies are consulted in order, so strategies that sleep should come
// last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	var attempts uint
	for {
		attempts++

		err := action()
		if err == nil {
			return attempts, nil
		}

		if !shouldRetry(strategies, attempts, err) {
			return attempts, err
		}
	}
}

// RetryContext is Retry, except no further attempts are made once ctx is
// done. The last action error is returned in that case, or the context error
// if the action never ran.
func RetryContext(ctx context.Context, action Action, strategies ...Strategy) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	withContext := make([]Strategy, 0, len(strategies)+1)
	withContext = append(withContext, func(uint, error) bool {
		return ctx.Err() == nil
	})
	withContext = append(withContext, strategies...)

	return Retry(action, withContext...)
}

func shouldRetry(strategies []Strategy, attempts uint, err error) bool {
	for _, s := range strategies {
		if !s(attempts, err) {
			return false
		}
	}
	return true
}
