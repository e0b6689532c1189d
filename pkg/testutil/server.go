package testutil

import (
	"crypto/ed25519"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/ledger/memory"
	"github.com/code-payments/soltips-server/pkg/ledger/system"
	crowdfunding_program "github.com/code-payments/soltips-server/pkg/program/crowdfunding"
	"github.com/code-payments/soltips-server/pkg/retry"
	"github.com/code-payments/soltips-server/pkg/retry/backoff"
	"github.com/code-payments/soltips-server/pkg/rpc"
)

// LedgerServer is a local ledger running the system and crowdfunding programs
// behind a JSON-RPC endpoint, usable for testing with no external
// dependencies.
type LedgerServer struct {
	Executor     *ledger.Executor
	FeeCollector ed25519.PublicKey
	URL          string
	Client       rpc.Client
}

// NewLedgerServer starts a LedgerServer that is stopped when the test
// completes.
func NewLedgerServer(t *testing.T, opts ...ServerOption) *LedgerServer {
	o := serverOpts{
		store: memory.New(),
		ledgerOverrides: &ledger.TestOverrides{
			EnableAirdrops:     true,
			MaxAirdropLamports: 1_000_000_000_000,
		},
		rpcOverrides: &rpc.TestOverrides{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	feeCollector := GenerateSolanaKeys(t, 1)[0]

	executor := ledger.NewExecutor(
		o.store,
		ledger.WithTestOverrides(o.ledgerOverrides),
		system.New(),
		crowdfunding_program.New(crowdfunding_program.WithTestOverrides(&crowdfunding_program.TestOverrides{
			FeeCollector: feeCollector,
		})),
	)

	httpServer := httptest.NewServer(rpc.NewServer(executor, rpc.WithTestOverrides(o.rpcOverrides)).Handler())
	t.Cleanup(httpServer.Close)

	client := rpc.NewClient(httpServer.URL)

	// Verify we can call a RPC
	_, err := retry.Retry(
		client.GetHealth,
		retry.Limit(10),
		retry.Backoff(backoff.Constant(50*time.Millisecond), 50*time.Millisecond),
	)
	require.NoError(t, err)

	return &LedgerServer{
		Executor:     executor,
		FeeCollector: feeCollector,
		URL:          httpServer.URL,
		Client:       client,
	}
}

type serverOpts struct {
	store           ledger.Store
	ledgerOverrides *ledger.TestOverrides
	rpcOverrides    *rpc.TestOverrides
}

// ServerOption configures the settings when creating a test server.
type ServerOption func(o *serverOpts)

// WithStore backs the ledger with the provided store instead of memory.
func WithStore(store ledger.Store) ServerOption {
	return func(o *serverOpts) {
		o.store = store
	}
}

// WithLedgerOverrides replaces the default ledger configuration.
func WithLedgerOverrides(overrides *ledger.TestOverrides) ServerOption {
	return func(o *serverOpts) {
		o.ledgerOverrides = overrides
	}
}

// WithRPCOverrides replaces the default RPC server configuration.
func WithRPCOverrides(overrides *rpc.TestOverrides) ServerOption {
	return func(o *serverOpts) {
		o.rpcOverrides = overrides
	}
}
