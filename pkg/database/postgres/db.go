package pg

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrAlreadyInTx = errors.New("already executing in existing db tx")
	ErrNotInTx     = errors.New("not executing in existing db tx")
)

type txContextKey struct{}

// txState is the transaction started by ExecuteTxWithinCtx, carried in the
// context so store calls made by fn join it
type txState struct {
	tx        *sqlx.Tx
	isolation sql.IsolationLevel
}

// IsInTx reports whether the context carries a transaction started by
// ExecuteTxWithinCtx.
func IsInTx(ctx context.Context) bool {
	_, ok := ctx.Value(txContextKey{}).(*txState)
	return ok
}

// ExecuteTxWithinCtx executes a DB transaction that's scoped to a call to fn.
// The transaction is passed along with the context, and is committed if fn
// succeeds, or rolled back otherwise.
func ExecuteTxWithinCtx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(context.Context) error) error {
	isolation = withPostgresDefault(isolation)

	if IsInTx(ctx) {
		return ErrAlreadyInTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}

	return finishTx(tx, fn(context.WithValue(ctx, txContextKey{}, &txState{
		tx:        tx,
		isolation: isolation,
	})))
}

// ExecuteInTx is meant for DB store implementations to execute an operation
// within the scope of a DB transaction. The transaction started by
// ExecuteTxWithinCtx is joined when there is one, in which case commit and
// rollback are left to it. Otherwise, a new transaction is scoped to fn.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	isolation = withPostgresDefault(isolation)

	existing, err := getTxFromCtx(ctx, isolation)
	if err == nil {
		return fn(existing)
	} else if err != ErrNotInTx {
		return err
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}
	return finishTx(tx, fn(tx))
}

func finishTx(tx *sqlx.Tx, err error) error {
	if err != nil {
		// A rollback is always required for sql.DB to release the connection
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(rollbackErr, "failed to rollback transaction")
		}
		return err
	}
	return tx.Commit()
}

func withPostgresDefault(isolation sql.IsolationLevel) sql.IsolationLevel {
	if isolation == sql.LevelDefault {
		return sql.LevelReadCommitted
	}
	return isolation
}

func getTxFromCtx(ctx context.Context, desiredIsolation sql.IsolationLevel) (*sqlx.Tx, error) {
	raw := ctx.Value(txContextKey{})
	if raw == nil {
		return nil, ErrNotInTx
	}

	state, ok := raw.(*txState)
	if !ok {
		return nil, errors.New("invalid type for tx")
	}

	if state.isolation < desiredIsolation {
		return nil, errors.Errorf("current tx isolation %s doesn't meet required %s", state.isolation, desiredIsolation)
	}
	return state.tx, nil
}
