package app

import (
	"crypto/tls"
	"expvar"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_logrus "github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/code-payments/soltips-server/pkg/osutil"
)

const maxBallastCapacity = 0.5

// newGRPCServer builds a server with recovery and request logging ahead of
// any configured interceptors, and the standard health service registered.
func newGRPCServer(opts runOptions, tlsConfig *tls.Config) *grpc.Server {
	requestLog := logrus.StandardLogger().WithField("type", "grpc/request")

	unary := append([]grpc.UnaryServerInterceptor{
		grpc_recovery.UnaryServerInterceptor(),
		grpc_logrus.UnaryServerInterceptor(requestLog, grpc_logrus.WithDecider(logDecider)),
	}, opts.unaryInterceptors...)
	stream := append([]grpc.StreamServerInterceptor{
		grpc_recovery.StreamServerInterceptor(),
		grpc_logrus.StreamServerInterceptor(requestLog, grpc_logrus.WithDecider(logDecider)),
	}, opts.streamInterceptors...)

	serverOpts := []grpc.ServerOption{
		grpc_middleware.WithUnaryServerChain(unary...),
		grpc_middleware.WithStreamServerChain(stream...),
	}
	if tlsConfig != nil {
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsConfig)))
	}

	server := grpc.NewServer(serverOpts...)
	healthgrpc.RegisterHealthServer(server, health.NewServer())
	return server
}

// serveDebug serves pprof and expvar, restarting the listener on failure.
func serveDebug(config BaseConfig, log *logrus.Entry) {
	mux := http.NewServeMux()
	if config.EnableExpvar {
		mux.Handle("/debug/vars", expvar.Handler())
	}
	if config.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	for {
		if err := http.ListenAndServe(config.DebugListenAddress, mux); err != nil {
			log.WithError(err).Warn("debug http server failed, retrying in 5s")
		}
		time.Sleep(5 * time.Second)
	}
}

// allocateBallast reserves heap to raise the GC target on large hosts.
func allocateBallast(config BaseConfig) []byte {
	if !config.EnableBallast {
		return nil
	}
	return make([]byte, ballastSize(osutil.GetTotalMemory(), config.BallastCapacity))
}

func ballastSize(totalMemory uint64, capacity float32) uint64 {
	if capacity <= 0 {
		return 0
	}
	if capacity > maxBallastCapacity {
		capacity = maxBallastCapacity
	}
	return uint64(float64(capacity) * float64(totalMemory))
}

// scheduleRestart closes restartCh the first time schedule fires. The returned
// function stops the schedule.
func scheduleRestart(schedule string, restartCh chan struct{}) (func(), error) {
	var once sync.Once

	c := cron.New(cron.WithLocation(time.Local))
	if _, err := c.AddFunc(schedule, func() {
		once.Do(func() { close(restartCh) })
	}); err != nil {
		return nil, err
	}
	c.Start()

	return func() { c.Stop() }, nil
}
