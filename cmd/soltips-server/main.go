package main

import (
	"context"
	"database/sql"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	pg "github.com/code-payments/soltips-server/pkg/database/postgres"
	"github.com/code-payments/soltips-server/pkg/grpc/app"
	"github.com/code-payments/soltips-server/pkg/ledger"
	ledger_memory "github.com/code-payments/soltips-server/pkg/ledger/memory"
	ledger_postgres "github.com/code-payments/soltips-server/pkg/ledger/postgres"
	"github.com/code-payments/soltips-server/pkg/ledger/system"
	crowdfunding_program "github.com/code-payments/soltips-server/pkg/program/crowdfunding"
	"github.com/code-payments/soltips-server/pkg/rpc"
)

type server struct {
	log *logrus.Entry

	db     *sql.DB
	rpc    *rpc.Server
	stopMu sync.Mutex

	shutdownCh chan struct{}
}

// Init implements app.App.Init
func (s *server) Init(_ app.Config, _ *newrelic.Application) error {
	s.log = logrus.StandardLogger().WithField("type", "soltips-server")
	s.shutdownCh = make(chan struct{})

	conf := withEnvConfigs()
	ctx := context.Background()

	var store ledger.Store
	switch kind := conf.store.Get(ctx); kind {
	case storeMemory:
		s.log.Warn("using in memory ledger store, state will not survive restarts")
		store = ledger_memory.New()
	case storePostgres:
		db, err := pg.Open(&pg.Config{
			User:               conf.dbUser.Get(ctx),
			Password:           conf.dbPassword.Get(ctx),
			Host:               conf.dbHost.Get(ctx),
			Port:               int(conf.dbPort.Get(ctx)),
			DbName:             conf.dbName.Get(ctx),
			MaxOpenConnections: int(conf.dbMaxOpenConnections.Get(ctx)),
			MaxIdleConnections: int(conf.dbMaxIdleConnections.Get(ctx)),
			UseAwsIam:          conf.dbUseAwsIam.Get(ctx),
		})
		if err != nil {
			return errors.Wrap(err, "error connecting to database")
		}
		s.db = db
		store = ledger_postgres.New(db)
	default:
		return errors.Errorf("unsupported ledger store: %s", kind)
	}

	executor := ledger.NewExecutor(
		store,
		ledger.WithEnvConfigs(),
		system.New(),
		crowdfunding_program.New(crowdfunding_program.WithEnvConfigs()),
	)
	s.rpc = rpc.NewServer(executor, rpc.WithEnvConfigs())

	return nil
}

// RegisterWithGRPC implements app.App.RegisterWithGRPC. Only the health
// service is served over gRPC.
func (s *server) RegisterWithGRPC(_ *grpc.Server) {
}

// HTTPHandler implements app.App.HTTPHandler
func (s *server) HTTPHandler() http.Handler {
	return s.rpc.Handler()
}

// ShutdownChan implements app.App.ShutdownChan
func (s *server) ShutdownChan() <-chan struct{} {
	return s.shutdownCh
}

// Stop implements app.App.Stop
func (s *server) Stop() {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.WithError(err).Warn("failure closing database")
		}
		s.db = nil
	}
}

func main() {
	if err := app.Run(&server{}, app.WithHTTPMiddleware(middleware.Heartbeat("/healthz"))); err != nil {
		logrus.WithError(err).Fatal("error running service")
	}
}
