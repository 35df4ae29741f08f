package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/affiliate-market/pkg/code/data/affiliate"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres affiliate.Store
func New(db *sql.DB) affiliate.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// InitializeIfAbsent implements affiliate.Store.InitializeIfAbsent
func (s *store) InitializeIfAbsent(ctx context.Context, record *affiliate.Record) error {
	model, err := toModel(record)
	if err != nil {
		return err
	}

	if err := model.dbInitializeIfAbsent(ctx, s.db); err != nil {
		return err
	}

	res := fromModel(model)
	res.CopyTo(record)

	return nil
}

// Update implements affiliate.Store.Update
func (s *store) Update(ctx context.Context, record *affiliate.Record) error {
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

// Get implements affiliate.Store.Get
func (s *store) Get(ctx context.Context, campaign, affiliateAccount string) (*affiliate.Record, error) {
	model, err := dbGet(ctx, s.db, campaign, affiliateAccount)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// GetAllByCampaign implements affiliate.Store.GetAllByCampaign
func (s *store) GetAllByCampaign(ctx context.Context, campaign string) ([]*affiliate.Record, error) {
	models, err := dbGetAllByCampaign(ctx, s.db, campaign)
	if err != nil {
		return nil, err
	}

	res := make([]*affiliate.Record, len(models))
	for i, model := range models {
		res[i] = fromModel(model)
	}
	return res, nil
}
