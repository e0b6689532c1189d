package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/metrics"
	rate_limit "github.com/code-payments/soltips-server/pkg/rate"
)

const (
	metricsStructName = "rpc.server"
)

type method struct {
	handler func(ctx context.Context, params []json.RawMessage) (interface{}, *Error)

	// isWrite methods change ledger state and are rate limited per client.
	isWrite bool
}

// Server serves a Solana compatible JSON-RPC API over the ledger.
type Server struct {
	log  *logrus.Entry
	conf *conf

	executor     *ledger.Executor
	writeLimiter rate_limit.Limiter

	methods map[string]method
}

func NewServer(executor *ledger.Executor, configProvider ConfigProvider) *Server {
	conf := configProvider()

	var writeLimiter rate_limit.Limiter = &rate_limit.NoLimiter{}
	if limit := conf.writeRateLimit.Get(context.Background()); limit > 0 {
		writeLimiter = rate_limit.NewLocalRateLimiter(rate.Limit(limit))
	}

	s := &Server{
		log:          logrus.StandardLogger().WithField("type", "rpc/server"),
		conf:         conf,
		executor:     executor,
		writeLimiter: writeLimiter,
	}

	s.methods = map[string]method{
		"getHealth":                         {handler: s.getHealth},
		"getSlot":                           {handler: s.getSlot},
		"getLatestBlockhash":                {handler: s.getLatestBlockhash},
		"getAccountInfo":                    {handler: s.getAccountInfo},
		"getMultipleAccounts":               {handler: s.getMultipleAccounts},
		"getProgramAccounts":                {handler: s.getProgramAccounts},
		"getBalance":                        {handler: s.getBalance},
		"getMinimumBalanceForRentExemption": {handler: s.getMinimumBalanceForRentExemption},
		"simulateTransaction":               {handler: s.simulateTransaction},
		"sendTransaction":                   {handler: s.sendTransaction, isWrite: true},
		"requestAirdrop":                    {handler: s.requestAirdrop, isWrite: true},
	}

	return s
}

// Handler returns the HTTP handler for the API. JSON-RPC requests are posted
// to the root path, and GET /health serves load balancer checks.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/", s.handle)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	client := clientAddress(r)
	log := s.log.WithFields(logrus.Fields{
		"request_id": uuid.New().String(),
		"client":     client,
	})

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(s.conf.maxRequestBytes.Get(r.Context()))))
	if err != nil {
		writeResponse(w, http.StatusRequestEntityTooLarge, nil, nil, newError(codeInvalidRequest, "failed to read request body"))
		return
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		writeResponse(w, http.StatusOK, nil, nil, newError(codeParseError, "invalid JSON payload"))
		return
	}
	if req.JSONRPC != jsonRPCVersion {
		writeResponse(w, http.StatusOK, req.ID, nil, newError(codeInvalidRequest, "unsupported jsonrpc version"))
		return
	}

	log = log.WithField("method", req.Method)

	m, ok := s.methods[req.Method]
	if !ok {
		writeResponse(w, http.StatusOK, req.ID, nil, newError(codeMethodNotFound, "Method not found"))
		return
	}

	if m.isWrite {
		allowed, err := s.writeLimiter.Allow(client)
		if err != nil {
			log.WithError(err).Warn("failure checking rate limit")
		} else if !allowed {
			log.Debug("rate limited")
			writeResponse(w, http.StatusTooManyRequests, req.ID, nil, newError(codeRateLimited, "Too many requests"))
			return
		}
	}

	metrics.SetTransactionName(r.Context(), "rpc "+req.Method)

	tracer := metrics.TraceMethodCall(r.Context(), metricsStructName, req.Method)
	defer tracer.End()

	ctx, cancel := context.WithTimeout(r.Context(), s.conf.requestTimeout.Get(r.Context()))
	defer cancel()

	result, rpcErr := m.handler(ctx, req.Params)
	if rpcErr != nil {
		if rpcErr.Code == codeInternalError {
			log.WithError(rpcErr).Warn("failure handling request")
			tracer.OnError(rpcErr)
		}
		writeResponse(w, http.StatusOK, req.ID, nil, rpcErr)
		return
	}

	writeResponse(w, http.StatusOK, req.ID, result, nil)
}

// clientAddress is the host of the peer address. Forwarding headers are
// client controlled and never consulted.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeResponse(w http.ResponseWriter, status int, id json.RawMessage, result interface{}, rpcErr *Error) {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}

	resp := response{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Result:  result,
		Error:   rpcErr,
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
