package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/affiliate-market/pkg/code/data/affiliate"
	pgutil "github.com/code-payments/affiliate-market/pkg/database/postgres"
)

const (
	tableName = "affiliatemarket__core_affiliatestats"

	allFields = `id, address, bump, campaign, affiliate, total_mints, total_earned, version, created_at, last_updated_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address string `db:"address"`
	Bump    uint   `db:"bump"`

	Campaign  string `db:"campaign"`
	Affiliate string `db:"affiliate"`

	TotalMints  uint64 `db:"total_mints"`
	TotalEarned uint64 `db:"total_earned"`

	Version uint64 `db:"version"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *affiliate.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Id: sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},

		Address: obj.Address,
		Bump:    uint(obj.Bump),

		Campaign:  obj.Campaign,
		Affiliate: obj.Affiliate,

		TotalMints:  obj.TotalMints,
		TotalEarned: obj.TotalEarned,

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *affiliate.Record {
	return &affiliate.Record{
		Id: uint64(obj.Id.Int64),

		Address: obj.Address,
		Bump:    uint8(obj.Bump),

		Campaign:  obj.Campaign,
		Affiliate: obj.Affiliate,

		TotalMints:  obj.TotalMints,
		TotalEarned: obj.TotalEarned,

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbInitializeIfAbsent(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		insertQuery := `INSERT INTO ` + tableName + `
			(address, bump, campaign, affiliate, total_mints, total_earned, version, created_at, last_updated_at)
			VALUES ($1, $2, $3, $4, 0, 0, 1, $5, $5)
			ON CONFLICT DO NOTHING
		`

		_, err := tx.ExecContext(
			ctx,
			insertQuery,
			m.Address,
			m.Bump,
			m.Campaign,
			m.Affiliate,
			time.Now().UTC(),
		)
		if err != nil {
			return err
		}

		selectQuery := `SELECT ` + allFields + ` FROM ` + tableName + `
			WHERE campaign = $1 AND affiliate = $2
			FOR UPDATE`
		return tx.GetContext(ctx, m, selectQuery, m.Campaign, m.Affiliate)
	})
}

func (m *model) dbUpdate(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `UPDATE ` + tableName + `
			SET total_mints = $3, total_earned = $4, version = version + 1, last_updated_at = $6
			WHERE campaign = $1 AND affiliate = $2 AND version = $5
			RETURNING ` + allFields

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Campaign,
			m.Affiliate,
			m.TotalMints,
			m.TotalEarned,
			m.Version,
			time.Now().UTC(),
		).StructScan(m)
		if !pgutil.IsNoRows(err) {
			return err
		}

		var exists bool
		existsQuery := `SELECT EXISTS (SELECT 1 FROM ` + tableName + ` WHERE campaign = $1 AND affiliate = $2)`
		if err := tx.GetContext(ctx, &exists, existsQuery, m.Campaign, m.Affiliate); err != nil {
			return err
		}
		if !exists {
			return affiliate.ErrStatsNotFound
		}
		return affiliate.ErrStaleVersion
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, campaign, affiliateAccount string) (*model, error) {
	res := &model{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allFields + ` FROM ` + tableName + `
			WHERE campaign = $1 AND affiliate = $2
			LIMIT 1`

		return tx.GetContext(ctx, res, query, campaign, affiliateAccount)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, affiliate.ErrStatsNotFound)
	}
	return res, nil
}

func dbGetAllByCampaign(ctx context.Context, db *sqlx.DB, campaign string) ([]*model, error) {
	var res []*model

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allFields + ` FROM ` + tableName + `
			WHERE campaign = $1
			ORDER BY id ASC`

		return tx.SelectContext(ctx, &res, query, campaign)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, affiliate.ErrStatsNotFound)
	}
	if len(res) == 0 {
		return nil, affiliate.ErrStatsNotFound
	}
	return res, nil
}
