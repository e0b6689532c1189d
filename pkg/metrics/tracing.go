package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

// TraceMethodCall starts a segment named "<struct> <method>" on the
// transaction in ctx. The returned tracer is nil, and safe to use, when ctx
// carries no transaction.
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(structOrPackageName + " " + methodName),
	}
}

// MethodTracer is a segment of an existing transaction.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// AddAttribute adds a key-value pair to the segment
func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}

	t.seg.AddAttribute(key, value)
}

// OnError notices err on the transaction. Cancellations by the caller are
// not errors of the traced method.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil || errors.Is(err, context.Canceled) {
		return
	}

	t.txn.NoticeError(err)
}

// End completes the segment
func (t *MethodTracer) End() {
	if t == nil {
		return
	}

	t.seg.End()
}
