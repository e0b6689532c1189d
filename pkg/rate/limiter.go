// Package rate provides keyed rate limiting, such as per client limits on
// transaction submission.
package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter reports whether an operation for key may proceed now.
type Limiter interface {
	Allow(key string) (bool, error)
}

// NoLimiter allows every operation.
type NoLimiter struct{}

func (*NoLimiter) Allow(string) (bool, error) {
	return true, nil
}

type keyState struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type localRateLimiter struct {
	limit rate.Limit
	burst int

	// Keys idle for longer than idleTTL have a full bucket again and are
	// dropped, so the map tracks only recently active keys.
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time

	mu   sync.Mutex
	keys map[string]*keyState
}

// NewLocalRateLimiter returns an in memory Limiter allowing limit operations
// per second per key, with bursts of up to limit (at least one) operations.
func NewLocalRateLimiter(limit rate.Limit) Limiter {
	return newLocalRateLimiter(limit, time.Now)
}

func newLocalRateLimiter(limit rate.Limit, now func() time.Time) *localRateLimiter {
	burst := 1
	if limit >= 1 {
		burst = int(limit)
	}

	idleTTL := time.Minute
	if refill := time.Duration(float64(burst) / float64(limit) * float64(time.Second)); refill > idleTTL {
		idleTTL = refill
	}

	return &localRateLimiter{
		limit:     limit,
		burst:     burst,
		idleTTL:   idleTTL,
		lastSweep: now(),
		now:       now,
		keys:      make(map[string]*keyState),
	}
}

func (l *localRateLimiter) Allow(key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	state, ok := l.keys[key]
	if !ok {
		state = &keyState{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.keys[key] = state
	}
	state.lastSeen = now

	return state.limiter.AllowN(now, 1), nil
}

func (l *localRateLimiter) sweep(now time.Time) {
	for key, state := range l.keys {
		if now.Sub(state.lastSeen) >= l.idleTTL {
			delete(l.keys, key)
		}
	}
	l.lastSweep = now
}
