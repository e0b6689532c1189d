package app

import (
	"context"
	"crypto/tls"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"

	metrics_util "github.com/code-payments/soltips-server/pkg/metrics"
)

// App is a long lived service. Run initializes it, serves its gRPC services
// and HTTP handler, and stops it once serving ends.
type App interface {
	// Init blocks until the App is ready to serve.
	Init(config Config, metricsProvider *newrelic.Application) error

	RegisterWithGRPC(server *grpc.Server)

	// HTTPHandler returns the handler served on the HTTP listen address, or
	// nil to disable the HTTP server.
	HTTPHandler() http.Handler

	// ShutdownChan is closed when the App wants the process to stop.
	ShutdownChan() <-chan struct{}

	// Stop releases the App's resources. It must be idempotent.
	Stop()
}

var configPath = flag.String("config", "config.yaml", "configuration file path")

// Run serves app until a signal, a server failure, a scheduled restart or the
// app itself ends the process, then shuts everything down within the grace
// period.
func Run(app App, options ...Option) error {
	flag.Parse()

	log := logrus.StandardLogger().WithField("type", "grpc/app")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	config, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := config.validate(); err != nil {
		return err
	}

	metricsProvider, err := newMetricsProvider(config)
	if err != nil {
		return errors.Wrap(err, "error connecting to new relic")
	}
	configureLogger(config, metricsProvider)

	// pprof and expvar register on the default mux at init. Only the debug
	// server should expose them.
	http.DefaultServeMux = http.NewServeMux()
	if config.EnablePprof || config.EnableExpvar {
		go serveDebug(config, log)
	}

	ballast := allocateBallast(config)

	restartCh := make(chan struct{})
	if config.EnableMemoryLeakCron {
		stopCron, err := scheduleRestart(config.MemoryLeakCronSchedule, restartCh)
		if err != nil {
			return errors.Wrap(err, "failed to initialize memory leak cron")
		}
		defer stopCron()
	}

	tlsConfig, err := loadTLSConfig(config)
	if err != nil {
		return err
	}

	grpcLis, err := net.Listen("tcp", config.GRPCListenAddress)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", config.GRPCListenAddress)
	}

	opts := runOptions{}
	for _, o := range options {
		o(&opts)
	}

	if err := app.Init(config.AppConfig, metricsProvider); err != nil {
		grpcLis.Close()
		return errors.Wrap(err, "failed to initialize application")
	}

	grpcServer := newGRPCServer(opts, tlsConfig)
	app.RegisterWithGRPC(grpcServer)

	grpcDoneCh := make(chan struct{})
	go func() {
		defer close(grpcDoneCh)
		if err := grpcServer.Serve(grpcLis); err != nil {
			log.WithError(err).Error("grpc serve stopped")
		}
	}()

	var httpServer *http.Server
	httpDoneCh := make(chan struct{})
	if handler := app.HTTPHandler(); handler != nil {
		handler = metrics_util.NewRelicHTTPMiddleware(metricsProvider)(handler)
		for _, middleware := range opts.httpMiddleware {
			handler = middleware(handler)
		}

		httpServer = &http.Server{
			Addr:              config.HTTPListenAddress,
			Handler:           handler,
			TLSConfig:         tlsConfig,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			defer close(httpDoneCh)
			if err := serveHTTP(httpServer); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("http serve stopped")
			}
		}()
	}

	select {
	case sig := <-signalCh:
		log.WithField("signal", sig.String()).Info("interrupt received, shutting down")
	case <-grpcDoneCh:
		log.Info("grpc server shutdown")
	case <-httpDoneCh:
		log.Info("http server shutdown")
	case <-restartCh:
		log.Info("shutdown to deal with memory leak")
	case <-app.ShutdownChan():
		log.Info("app shutdown")
	}

	stoppedCh := make(chan struct{})
	go func() {
		defer close(stoppedCh)

		if httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
			if err := httpServer.Shutdown(ctx); err != nil {
				log.WithError(err).Warn("http server failed to shutdown gracefully")
			}
			cancel()
		}
		grpcServer.GracefulStop()
		app.Stop()
	}()

	select {
	case <-stoppedCh:
		// Keeps the ballast reachable until shutdown.
		if len(ballast) > 0 {
			ballast[0] = 1
		}
		return nil
	case <-time.After(config.ShutdownGracePeriod):
		return errors.Errorf("failed to stop the application within %v", config.ShutdownGracePeriod)
	}
}

func newMetricsProvider(config BaseConfig) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	return newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
}

func configureLogger(config BaseConfig, metricsProvider *newrelic.Application) {
	var formatter logrus.Formatter = &logrus.JSONFormatter{}
	if metricsProvider != nil {
		formatter = metrics_util.NewCustomNewRelicLogFormatter(metricsProvider, formatter)
	}
	logrus.SetFormatter(formatter)
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
		return
	}
	logrus.SetLevel(level)
}

func serveHTTP(server *http.Server) error {
	if server.TLSConfig != nil {
		return server.ListenAndServeTLS("", "")
	}
	return server.ListenAndServe()
}

func loadTLSConfig(config BaseConfig) (*tls.Config, error) {
	if config.TLSCertificate == "" {
		return nil, nil
	}

	certPEM, err := LoadFile(config.TLSCertificate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tls certificate")
	}
	keyPEM, err := LoadFile(config.TLSKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tls key")
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, errors.Wrap(err, "invalid certificate/private key")
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}

// logDecider skips request logs for successful health checks.
func logDecider(fullMethodName string, err error) bool {
	if err != nil {
		return true
	}
	return fullMethodName != healthgrpc.Health_Check_FullMethodName && fullMethodName != healthgrpc.Health_Watch_FullMethodName
}
