package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
	pgutil "github.com/code-payments/affiliate-market/pkg/database/postgres"
)

const (
	tableName = "affiliatemarket__core_campaign"

	allFields = `id, address, campaign_bump, creator, collection_mint, price, affiliate_fee_bps, minted, max_supply, mint_authority_bump, collection_authority_bump, version, created_at, last_updated_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address      string `db:"address"`
	CampaignBump uint   `db:"campaign_bump"`

	Creator        string `db:"creator"`
	CollectionMint string `db:"collection_mint"`

	Price           uint64 `db:"price"`
	AffiliateFeeBps uint   `db:"affiliate_fee_bps"`

	Minted    uint64 `db:"minted"`
	MaxSupply uint64 `db:"max_supply"`

	MintAuthorityBump       uint `db:"mint_authority_bump"`
	CollectionAuthorityBump uint `db:"collection_authority_bump"`

	Version uint64 `db:"version"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *campaign.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Id: sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},

		Address:      obj.Address,
		CampaignBump: uint(obj.CampaignBump),

		Creator:        obj.Creator,
		CollectionMint: obj.CollectionMint,

		Price:           obj.Price,
		AffiliateFeeBps: uint(obj.AffiliateFeeBps),

		Minted:    obj.Minted,
		MaxSupply: obj.MaxSupply,

		MintAuthorityBump:       uint(obj.MintAuthorityBump),
		CollectionAuthorityBump: uint(obj.CollectionAuthorityBump),

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *campaign.Record {
	return &campaign.Record{
		Id: uint64(obj.Id.Int64),

		Address:      obj.Address,
		CampaignBump: uint8(obj.CampaignBump),

		Creator:        obj.Creator,
		CollectionMint: obj.CollectionMint,

		Price:           obj.Price,
		AffiliateFeeBps: uint16(obj.AffiliateFeeBps),

		Minted:    obj.Minted,
		MaxSupply: obj.MaxSupply,

		MintAuthorityBump:       uint8(obj.MintAuthorityBump),
		CollectionAuthorityBump: uint8(obj.CollectionAuthorityBump),

		Version: obj.Version,

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbPut(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(address, campaign_bump, creator, collection_mint, price, affiliate_fee_bps, minted, max_supply, mint_authority_bump, collection_authority_bump, version, created_at, last_updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $11)
			RETURNING ` + allFields

		m.CreatedAt = time.Now()

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.CampaignBump,
			m.Creator,
			m.CollectionMint,
			m.Price,
			m.AffiliateFeeBps,
			m.Minted,
			m.MaxSupply,
			m.MintAuthorityBump,
			m.CollectionAuthorityBump,
			m.CreatedAt.UTC(),
		).StructScan(m)

		return pgutil.CheckUniqueViolation(err, campaign.ErrCampaignExists)
	})
}

func (m *model) dbUpdate(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `UPDATE ` + tableName + `
			SET minted = $2, version = version + 1, last_updated_at = $4
			WHERE address = $1 AND version = $3
			RETURNING ` + allFields

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Minted,
			m.Version,
			time.Now().UTC(),
		).StructScan(m)
		if !pgutil.IsNoRows(err) {
			return err
		}

		var exists bool
		existsQuery := `SELECT EXISTS (SELECT 1 FROM ` + tableName + ` WHERE address = $1)`
		if err := tx.GetContext(ctx, &exists, existsQuery, m.Address); err != nil {
			return err
		}
		if !exists {
			return campaign.ErrCampaignNotFound
		}
		return campaign.ErrStaleVersion
	})
}

func dbGetByAddress(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allFields + ` FROM ` + tableName + `
			WHERE address = $1
			LIMIT 1`

		return tx.GetContext(ctx, res, query, address)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, campaign.ErrCampaignNotFound)
	}
	return res, nil
}

func dbGetByCollectionMint(ctx context.Context, db *sqlx.DB, collectionMint string) (*model, error) {
	res := &model{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allFields + ` FROM ` + tableName + `
			WHERE collection_mint = $1
			LIMIT 1`

		return tx.GetContext(ctx, res, query, collectionMint)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, campaign.ErrCampaignNotFound)
	}
	return res, nil
}
