package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRelicHTTPMiddleware_Disabled(t *testing.T) {
	var called bool
	handler := NewRelicHTTPMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true

		// All helpers are no-ops without an application or transaction
		SetTransactionName(r.Context(), "rpc getSlot")
		RecordEvent(r.Context(), "Event", map[string]interface{}{"key": "value"})
		RecordCount(r.Context(), "Count", 1)

		tracer := TraceMethodCall(r.Context(), "test", "Method")
		tracer.AddAttribute("key", "value")
		tracer.OnError(context.Canceled)
		tracer.End()

		w.WriteHeader(http.StatusTeapot)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, recorder.Code)
}
