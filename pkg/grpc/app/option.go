package app

import (
	"net/http"

	"google.golang.org/grpc"
)

// Option customizes the servers started by Run.
type Option func(o *runOptions)

type runOptions struct {
	unaryInterceptors  []grpc.UnaryServerInterceptor
	streamInterceptors []grpc.StreamServerInterceptor
	httpMiddleware     []func(http.Handler) http.Handler
}

// WithUnaryServerInterceptor adds a unary interceptor that runs after the
// default recovery and logging interceptors.
func WithUnaryServerInterceptor(interceptor grpc.UnaryServerInterceptor) Option {
	return func(o *runOptions) {
		o.unaryInterceptors = append(o.unaryInterceptors, interceptor)
	}
}

func WithStreamServerInterceptor(interceptor grpc.StreamServerInterceptor) Option {
	return func(o *runOptions) {
		o.streamInterceptors = append(o.streamInterceptors, interceptor)
	}
}

// WithHTTPMiddleware wraps the App's HTTP handler outside of the New Relic
// middleware. Later middleware wraps earlier middleware.
func WithHTTPMiddleware(middleware func(http.Handler) http.Handler) Option {
	return func(o *runOptions) {
		o.httpMiddleware = append(o.httpMiddleware, middleware)
	}
}
