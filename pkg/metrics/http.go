package metrics

import (
	"net/http"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicHTTPMiddleware starts a New Relic transaction for every request and
// injects app into the request context. A nil app disables the middleware.
func NewRelicHTTPMiddleware(app *newrelic.Application) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if app == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			txn := app.StartTransaction(r.Method + " " + r.URL.Path)
			defer txn.End()

			txn.SetWebRequestHTTP(r)
			w = txn.SetWebResponse(w)

			ctx := WithNewRelicApplication(r.Context(), app)
			ctx = newrelic.NewContext(ctx, txn)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
