package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres campaign.Store
func New(db *sql.DB) campaign.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Put implements campaign.Store.Put
func (s *store) Put(ctx context.Context, record *campaign.Record) error {
	model, err := toModel(record)
	if err != nil {
		return err
	}

	if err := model.dbPut(ctx, s.db); err != nil {
		return err
	}

	res := fromModel(model)
	res.CopyTo(record)

	return nil
}

// Update implements campaign.Store.Update
func (s *store) Update(ctx context.Context, record *campaign.Record) error {
	model, err := toModel(record)
	if err != nil {
		return err
	}

	if err := model.dbUpdate(ctx, s.db); err != nil {
		return err
	}

	res := fromModel(model)
	res.CopyTo(record)

	return nil
}

// GetByAddress implements campaign.Store.GetByAddress
func (s *store) GetByAddress(ctx context.Context, address string) (*campaign.Record, error) {
	model, err := dbGetByAddress(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// GetByCollectionMint implements campaign.Store.GetByCollectionMint
func (s *store) GetByCollectionMint(ctx context.Context, collectionMint string) (*campaign.Record, error) {
	model, err := dbGetByCollectionMint(ctx, s.db, collectionMint)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}
