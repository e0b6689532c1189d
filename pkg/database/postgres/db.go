package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"

	"github.com/code-payments/soltips-server/pkg/retry"
	"github.com/code-payments/soltips-server/pkg/retry/backoff"
)

const maxSerializationRetries = 5

// ExecuteRetryable runs fn, rerunning it while Postgres reports a
// serialization failure.
func ExecuteRetryable(fn func() error) error {
	_, err := retry.Retry(
		fn,
		retry.RetriableWhen(IsSerializationFailure),
		retry.Limit(maxSerializationRetries),
		retry.BackoffWithJitter(backoff.BinaryExponential(10*time.Millisecond), 250*time.Millisecond, 0.1),
	)
	return err
}

// ExecuteInTx runs fn within a new DB transaction. The transaction is
// committed when fn succeeds and rolled back otherwise.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	if isolation == sql.LevelDefault {
		isolation = sql.LevelReadCommitted // Postgres default
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: isolation,
	})
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		// Always rollback so sql.DB releases the connection.
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w", rollbackErr)
		}
		return err
	}
	return tx.Commit()
}

func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.SerializationFailure
}
