package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/affiliate-market/pkg/code/data/account"
	pgutil "github.com/code-payments/affiliate-market/pkg/database/postgres"
)

const (
	tableName = "affiliatemarket__core_account"

	allFields = `id, address, owner, lamports, data_size, version, created_at, last_updated_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address string `db:"address"`
	Owner   string `db:"owner"`

	Lamports uint64 `db:"lamports"`
	DataSize uint64 `db:"data_size"`

	Version uint64 `db:"version"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *account.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Id: sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},

		Address: obj.Address,
		Owner:   obj.Owner,

		Lamports: obj.Lamports,
		DataSize: obj.DataSize,

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *account.Record {
	return &account.Record{
		Id: uint64(obj.Id.Int64),

		Address: obj.Address,
		Owner:   obj.Owner,

		Lamports: obj.Lamports,
		DataSize: obj.DataSize,

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbSave(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		if m.Version == 0 {
			query := `INSERT INTO ` + tableName + `
				(address, owner, lamports, data_size, version, created_at, last_updated_at)
				VALUES ($1, $2, $3, $4, 1, $5, $5)
				ON CONFLICT DO NOTHING
				RETURNING ` + allFields

			err := tx.QueryRowxContext(
				ctx,
				query,
				m.Address,
				m.Owner,
				m.Lamports,
				m.DataSize,
				now,
			).StructScan(m)
			return pgutil.CheckNoRows(err, account.ErrStaleVersion)
		}

		query := `UPDATE ` + tableName + `
			SET owner = $2, lamports = $3, data_size = $4, version = version + 1, last_updated_at = $6
			WHERE address = $1 AND version = $5
			RETURNING ` + allFields

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Owner,
			m.Lamports,
			m.DataSize,
			m.Version,
			now,
		).StructScan(m)
		return pgutil.CheckNoRows(err, account.ErrStaleVersion)
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allFields + ` FROM ` + tableName + `
			WHERE address = $1
			LIMIT 1`

		return tx.GetContext(ctx, res, query, address)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}
	return res, nil
}
