package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/affiliate-market/pkg/code/data/token"
	pgutil "github.com/code-payments/affiliate-market/pkg/database/postgres"
	"github.com/code-payments/affiliate-market/pkg/pointer"
)

const (
	mintTableName         = "affiliatemarket__core_tokenmint"
	tokenAccountTableName = "affiliatemarket__core_tokenaccount"

	allMintFields         = `id, address, decimals, supply, mint_authority, freeze_authority, version, created_at, last_updated_at`
	allTokenAccountFields = `id, address, mint, owner, amount, version, created_at, last_updated_at`
)

type mintModel struct {
	Id sql.NullInt64 `db:"id"`

	Address string `db:"address"`

	Decimals uint   `db:"decimals"`
	Supply   uint64 `db:"supply"`

	MintAuthority   sql.NullString `db:"mint_authority"`
	FreezeAuthority sql.NullString `db:"freeze_authority"`

	Version uint64 `db:"version"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

type tokenAccountModel struct {
	Id sql.NullInt64 `db:"id"`

	Address string `db:"address"`
	Mint    string `db:"mint"`
	Owner   string `db:"owner"`

	Amount uint64 `db:"amount"`

	Version uint64 `db:"version"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toMintModel(obj *token.MintRecord) (*mintModel, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	var mintAuthority, freezeAuthority sql.NullString
	if obj.MintAuthority != nil {
		mintAuthority.Valid = true
		mintAuthority.String = *obj.MintAuthority
	}
	if obj.FreezeAuthority != nil {
		freezeAuthority.Valid = true
		freezeAuthority.String = *obj.FreezeAuthority
	}

	return &mintModel{
		Id: sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},

		Address: obj.Address,

		Decimals: uint(obj.Decimals),
		Supply:   obj.Supply,

		MintAuthority:   mintAuthority,
		FreezeAuthority: freezeAuthority,

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromMintModel(obj *mintModel) *token.MintRecord {
	return &token.MintRecord{
		Id: uint64(obj.Id.Int64),

		Address: obj.Address,

		Decimals: uint8(obj.Decimals),
		Supply:   obj.Supply,

		MintAuthority:   pointer.IfValid(obj.MintAuthority.Valid, obj.MintAuthority.String),
		FreezeAuthority: pointer.IfValid(obj.FreezeAuthority.Valid, obj.FreezeAuthority.String),

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func toTokenAccountModel(obj *token.AccountRecord) (*tokenAccountModel, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &tokenAccountModel{
		Id: sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},

		Address: obj.Address,
		Mint:    obj.Mint,
		Owner:   obj.Owner,

		Amount: obj.Amount,

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromTokenAccountModel(obj *tokenAccountModel) *token.AccountRecord {
	return &token.AccountRecord{
		Id: uint64(obj.Id.Int64),

		Address: obj.Address,
		Mint:    obj.Mint,
		Owner:   obj.Owner,

		Amount: obj.Amount,

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *mintModel) dbSave(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		if m.Version == 0 {
			query := `INSERT INTO ` + mintTableName + `
				(address, decimals, supply, mint_authority, freeze_authority, version, created_at, last_updated_at)
				VALUES ($1, $2, $3, $4, $5, 1, $6, $6)
				ON CONFLICT DO NOTHING
				RETURNING ` + allMintFields

			err := tx.QueryRowxContext(
				ctx,
				query,
				m.Address,
				m.Decimals,
				m.Supply,
				m.MintAuthority,
				m.FreezeAuthority,
				now,
			).StructScan(m)
			return pgutil.CheckNoRows(err, token.ErrStaleVersion)
		}

		query := `UPDATE ` + mintTableName + `
			SET supply = $2, mint_authority = $3, freeze_authority = $4, version = version + 1, last_updated_at = $6
			WHERE address = $1 AND version = $5
			RETURNING ` + allMintFields

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Supply,
			m.MintAuthority,
			m.FreezeAuthority,
			m.Version,
			now,
		).StructScan(m)
		return pgutil.CheckNoRows(err, token.ErrStaleVersion)
	})
}

func dbGetMint(ctx context.Context, db *sqlx.DB, address string) (*mintModel, error) {
	res := &mintModel{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allMintFields + ` FROM ` + mintTableName + `
			WHERE address = $1
			LIMIT 1`

		return tx.GetContext(ctx, res, query, address)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, token.ErrMintNotFound)
	}
	return res, nil
}

func (m *tokenAccountModel) dbSave(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		if m.Version == 0 {
			query := `INSERT INTO ` + tokenAccountTableName + `
				(address, mint, owner, amount, version, created_at, last_updated_at)
				VALUES ($1, $2, $3, $4, 1, $5, $5)
				ON CONFLICT DO NOTHING
				RETURNING ` + allTokenAccountFields

			err := tx.QueryRowxContext(
				ctx,
				query,
				m.Address,
				m.Mint,
				m.Owner,
				m.Amount,
				now,
			).StructScan(m)
			return pgutil.CheckNoRows(err, token.ErrStaleVersion)
		}

		query := `UPDATE ` + tokenAccountTableName + `
			SET amount = $2, version = version + 1, last_updated_at = $4
			WHERE address = $1 AND version = $3
			RETURNING ` + allTokenAccountFields

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Amount,
			m.Version,
			now,
		).StructScan(m)
		return pgutil.CheckNoRows(err, token.ErrStaleVersion)
	})
}

func dbGetTokenAccount(ctx context.Context, db *sqlx.DB, address string) (*tokenAccountModel, error) {
	res := &tokenAccountModel{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allTokenAccountFields + ` FROM ` + tokenAccountTableName + `
			WHERE address = $1
			LIMIT 1`

		return tx.GetContext(ctx, res, query, address)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, token.ErrTokenAccountNotFound)
	}
	return res, nil
}

func dbGetTokenAccountsByOwner(ctx context.Context, db *sqlx.DB, owner string) ([]*tokenAccountModel, error) {
	var res []*tokenAccountModel

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allTokenAccountFields + ` FROM ` + tokenAccountTableName + `
			WHERE owner = $1
			ORDER BY id ASC`

		return tx.SelectContext(ctx, &res, query, owner)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, token.ErrTokenAccountNotFound)
	}
	if len(res) == 0 {
		return nil, token.ErrTokenAccountNotFound
	}
	return res, nil
}
