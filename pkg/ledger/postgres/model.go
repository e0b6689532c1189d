package postgres

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	pgutil "github.com/code-payments/soltips-server/pkg/database/postgres"
	"github.com/code-payments/soltips-server/pkg/ledger"
)

const (
	tableName = "soltips__core_account"

	allColumns = `id, address, lamports, owner, data, version, created_at, updated_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address  string `db:"address"`
	Lamports uint64 `db:"lamports"`
	Owner    string `db:"owner"`
	Data     []byte `db:"data"`

	Version uint64 `db:"version"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toModel(obj *ledger.Account) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &model{
		Address:   base58.Encode(obj.Address),
		Lamports:  obj.Lamports,
		Owner:     base58.Encode(obj.Owner),
		Data:      data,
		Version:   obj.Version,
		CreatedAt: obj.CreatedAt,
		UpdatedAt: obj.UpdatedAt,
	}, nil
}

func fromModel(obj *model) (*ledger.Account, error) {
	address, err := base58.Decode(obj.Address)
	if err != nil {
		return nil, errors.Wrap(err, "invalid address")
	}

	owner, err := base58.Decode(obj.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "invalid owner")
	}

	var data []byte
	if len(obj.Data) > 0 {
		data = obj.Data
	}

	return &ledger.Account{
		Address:   ed25519.PublicKey(address),
		Lamports:  obj.Lamports,
		Owner:     ed25519.PublicKey(owner),
		Data:      data,
		Version:   obj.Version,
		CreatedAt: obj.CreatedAt.UTC(),
		UpdatedAt: obj.UpdatedAt.UTC(),
	}, nil
}

// dbCommit inserts the account when it has never been committed, and
// otherwise updates it conditioned on the stored version. m is left untouched,
// and the stored row is returned.
func (m *model) dbCommit(ctx context.Context, tx *sqlx.Tx, now time.Time) (*model, error) {
	committed := &model{}

	if m.Version == 0 {
		query := `INSERT INTO ` + tableName + `
			(address, lamports, owner, data, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 1, $5, $5)
			RETURNING ` + allColumns

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Lamports,
			m.Owner,
			m.Data,
			now,
		).StructScan(committed)
		if err != nil {
			return nil, pgutil.CheckUniqueViolation(err, ledger.ErrAccountExists)
		}
		return committed, nil
	}

	query := `UPDATE ` + tableName + `
		SET lamports = $2, owner = $3, data = $4, version = version + 1, updated_at = $6
		WHERE address = $1 AND version = $5
		RETURNING ` + allColumns

	err := tx.QueryRowxContext(
		ctx,
		query,
		m.Address,
		m.Lamports,
		m.Owner,
		m.Data,
		m.Version,
		now,
	).StructScan(committed)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrStaleVersion)
	}
	return committed, nil
}

// dbCommitAll commits models in a single DB transaction and returns the stored
// rows. Every attempt starts from the unmodified models.
func dbCommitAll(ctx context.Context, db *sqlx.DB, models []*model) ([]*model, error) {
	now := time.Now().UTC()

	var res []*model
	err := pgutil.ExecuteRetryable(func() error {
		attempt := make([]*model, len(models))
		err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
			for i, m := range models {
				committed, err := m.dbCommit(ctx, tx, now)
				if err != nil {
					return err
				}
				attempt[i] = committed
			}
			return nil
		})
		if err != nil {
			return err
		}

		res = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	query := `SELECT ` + allColumns + ` FROM ` + tableName + `
		WHERE address = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string, discriminator []byte) ([]*model, error) {
	res := []*model{}

	var err error
	if len(discriminator) == 0 {
		query := `SELECT ` + allColumns + ` FROM ` + tableName + `
			WHERE owner = $1
			ORDER BY id ASC`

		err = db.SelectContext(ctx, &res, query, owner)
	} else {
		query := `SELECT ` + allColumns + ` FROM ` + tableName + `
			WHERE owner = $1 AND substring(data FROM 1 FOR octet_length($2::bytea)) = $2::bytea
			ORDER BY id ASC`

		err = db.SelectContext(ctx, &res, query, owner, discriminator)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
