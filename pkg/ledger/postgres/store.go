package postgres

import (
	"context"
	"crypto/ed25519"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/mr-tron/base58"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/metrics"
)

const (
	metricsStructName = "ledger.postgres.store"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres backed ledger.Store
func New(db *sql.DB) ledger.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Get implements ledger.Store.Get
func (s *store) Get(ctx context.Context, address ed25519.PublicKey) (*ledger.Account, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Get")
	defer tracer.End()

	m, err := dbGet(ctx, s.db, base58.Encode(address))
	if err != nil {
		if err != ledger.ErrAccountNotFound {
			tracer.OnError(err)
		}
		return nil, err
	}
	return fromModel(m)
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner ed25519.PublicKey, discriminator []byte) ([]*ledger.Account, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetAllByOwner")
	defer tracer.End()

	models, err := dbGetAllByOwner(ctx, s.db, base58.Encode(owner), discriminator)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	res := make([]*ledger.Account, len(models))
	for i, m := range models {
		res[i], err = fromModel(m)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Commit implements ledger.Store.Commit
func (s *store) Commit(ctx context.Context, accounts ...*ledger.Account) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Commit")
	defer tracer.End()

	seen := make(map[string]struct{})
	models := make([]*model, len(accounts))
	for i, account := range accounts {
		if _, ok := seen[string(account.Address)]; ok {
			return ledger.ErrStaleVersion
		}
		seen[string(account.Address)] = struct{}{}

		m, err := toModel(account)
		if err != nil {
			return err
		}
		models[i] = m
	}

	committedModels, err := dbCommitAll(ctx, s.db, models)
	if err != nil {
		if err != ledger.ErrAccountExists && err != ledger.ErrStaleVersion {
			tracer.OnError(err)
		}
		return err
	}

	for i, m := range committedModels {
		committed, err := fromModel(m)
		if err != nil {
			return err
		}
		committed.CopyTo(accounts[i])
	}

	return nil
}
