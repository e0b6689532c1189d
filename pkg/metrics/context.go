package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicContextKey is the context key holding the *newrelic.Application used
// to record custom metrics and events.
type NewRelicContextKey struct{}

// WithNewRelicApplication returns a copy of ctx carrying app.
func WithNewRelicApplication(ctx context.Context, app *newrelic.Application) context.Context {
	return context.WithValue(ctx, NewRelicContextKey{}, app)
}

// SetTransactionName renames the transaction in ctx, if any. It's used when a
// single endpoint multiplexes many logical methods.
func SetTransactionName(ctx context.Context, name string) {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return
	}

	txn.SetName(name)
}
