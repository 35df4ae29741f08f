package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/affiliate-market/pkg/code/data/metadata"
	pgutil "github.com/code-payments/affiliate-market/pkg/database/postgres"
	"github.com/code-payments/affiliate-market/pkg/pointer"
)

const (
	metadataTableName = "affiliatemarket__core_tokenmetadata"
	editionTableName  = "affiliatemarket__core_mastereditions"

	allMetadataFields = `id, address, mint, update_authority, name, symbol, uri, seller_fee_basis_points, is_mutable, collection_mint, collection_verified, collection_size, version, created_at, last_updated_at`
	allEditionFields  = `id, address, mint, max_supply, supply, created_at`
)

type metadataModel struct {
	Id sql.NullInt64 `db:"id"`

	Address         string `db:"address"`
	Mint            string `db:"mint"`
	UpdateAuthority string `db:"update_authority"`

	Name                 string `db:"name"`
	Symbol               string `db:"symbol"`
	Uri                  string `db:"uri"`
	SellerFeeBasisPoints uint   `db:"seller_fee_basis_points"`
	IsMutable            bool   `db:"is_mutable"`

	CollectionMint     sql.NullString `db:"collection_mint"`
	CollectionVerified bool           `db:"collection_verified"`

	CollectionSize sql.NullInt64 `db:"collection_size"`

	Version uint64 `db:"version"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

type editionModel struct {
	Id sql.NullInt64 `db:"id"`

	Address string `db:"address"`
	Mint    string `db:"mint"`

	MaxSupply sql.NullInt64 `db:"max_supply"`
	Supply    uint64        `db:"supply"`

	CreatedAt time.Time `db:"created_at"`
}

func toMetadataModel(obj *metadata.Record) (*metadataModel, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	var collectionMint sql.NullString
	if obj.CollectionMint != nil {
		collectionMint.Valid = true
		collectionMint.String = *obj.CollectionMint
	}

	var collectionSize sql.NullInt64
	if obj.CollectionSize != nil {
		collectionSize.Valid = true
		collectionSize.Int64 = int64(*obj.CollectionSize)
	}

	return &metadataModel{
		Id: sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},

		Address:         obj.Address,
		Mint:            obj.Mint,
		UpdateAuthority: obj.UpdateAuthority,

		Name:                 obj.Name,
		Symbol:               obj.Symbol,
		Uri:                  obj.Uri,
		SellerFeeBasisPoints: uint(obj.SellerFeeBasisPoints),
		IsMutable:            obj.IsMutable,

		CollectionMint:     collectionMint,
		CollectionVerified: obj.CollectionVerified,

		CollectionSize: collectionSize,

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromMetadataModel(obj *metadataModel) *metadata.Record {
	return &metadata.Record{
		Id: uint64(obj.Id.Int64),

		Address:         obj.Address,
		Mint:            obj.Mint,
		UpdateAuthority: obj.UpdateAuthority,

		Name:                 obj.Name,
		Symbol:               obj.Symbol,
		Uri:                  obj.Uri,
		SellerFeeBasisPoints: uint16(obj.SellerFeeBasisPoints),
		IsMutable:            obj.IsMutable,

		CollectionMint:     pointer.IfValid(obj.CollectionMint.Valid, obj.CollectionMint.String),
		CollectionVerified: obj.CollectionVerified,

		CollectionSize: pointer.IfValid(obj.CollectionSize.Valid, uint64(obj.CollectionSize.Int64)),

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func toEditionModel(obj *metadata.EditionRecord) (*editionModel, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	var maxSupply sql.NullInt64
	if obj.MaxSupply != nil {
		maxSupply.Valid = true
		maxSupply.Int64 = int64(*obj.MaxSupply)
	}

	return &editionModel{
		Id: sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},

		Address: obj.Address,
		Mint:    obj.Mint,

		MaxSupply: maxSupply,
		Supply:    obj.Supply,

		CreatedAt: obj.CreatedAt,
	}, nil
}

func fromEditionModel(obj *editionModel) *metadata.EditionRecord {
	return &metadata.EditionRecord{
		Id: uint64(obj.Id.Int64),

		Address: obj.Address,
		Mint:    obj.Mint,

		MaxSupply: pointer.IfValid(obj.MaxSupply.Valid, uint64(obj.MaxSupply.Int64)),
		Supply:    obj.Supply,

		CreatedAt: obj.CreatedAt,
	}
}

func (m *metadataModel) dbSave(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()

		if m.Version == 0 {
			query := `INSERT INTO ` + metadataTableName + `
				(address, mint, update_authority, name, symbol, uri, seller_fee_basis_points, is_mutable, collection_mint, collection_verified, collection_size, version, created_at, last_updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12, $12)
				ON CONFLICT DO NOTHING
				RETURNING ` + allMetadataFields

			err := tx.QueryRowxContext(
				ctx,
				query,
				m.Address,
				m.Mint,
				m.UpdateAuthority,
				m.Name,
				m.Symbol,
				m.Uri,
				m.SellerFeeBasisPoints,
				m.IsMutable,
				m.CollectionMint,
				m.CollectionVerified,
				m.CollectionSize,
				now,
			).StructScan(m)
			return pgutil.CheckNoRows(err, metadata.ErrStaleVersion)
		}

		query := `UPDATE ` + metadataTableName + `
			SET update_authority = $2, name = $3, symbol = $4, uri = $5, seller_fee_basis_points = $6, is_mutable = $7, collection_mint = $8, collection_verified = $9, collection_size = $10, version = version + 1, last_updated_at = $12
			WHERE address = $1 AND version = $11
			RETURNING ` + allMetadataFields

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.UpdateAuthority,
			m.Name,
			m.Symbol,
			m.Uri,
			m.SellerFeeBasisPoints,
			m.IsMutable,
			m.CollectionMint,
			m.CollectionVerified,
			m.CollectionSize,
			m.Version,
			now,
		).StructScan(m)
		return pgutil.CheckNoRows(err, metadata.ErrStaleVersion)
	})
}

func dbGetMetadata(ctx context.Context, db *sqlx.DB, address string) (*metadataModel, error) {
	res := &metadataModel{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allMetadataFields + ` FROM ` + metadataTableName + `
			WHERE address = $1
			LIMIT 1`

		return tx.GetContext(ctx, res, query, address)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, metadata.ErrMetadataNotFound)
	}
	return res, nil
}

func (m *editionModel) dbPut(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + editionTableName + `
			(address, mint, max_supply, supply, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING
			RETURNING ` + allEditionFields

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Mint,
			m.MaxSupply,
			m.Supply,
			time.Now().UTC(),
		).StructScan(m)
		return pgutil.CheckNoRows(err, metadata.ErrEditionExists)
	})
}

func dbGetEdition(ctx context.Context, db *sqlx.DB, address string) (*editionModel, error) {
	res := &editionModel{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allEditionFields + ` FROM ` + editionTableName + `
			WHERE address = $1
			LIMIT 1`

		return tx.GetContext(ctx, res, query, address)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, metadata.ErrEditionNotFound)
	}
	return res, nil
}
