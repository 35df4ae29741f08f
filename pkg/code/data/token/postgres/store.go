package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/affiliate-market/pkg/code/data/token"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres token.Store
func New(db *sql.DB) token.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// SaveMint implements token.Store.SaveMint
func (s *store) SaveMint(ctx context.Context, record *token.MintRecord) error {
	model, err := toMintModel(record)
	if err != nil {
		return err
	}

	if err := model.dbSave(ctx, s.db); err != nil {
		return err
	}

	res := fromMintModel(model)
	res.CopyTo(record)

	return nil
}

// GetMint implements token.Store.GetMint
func (s *store) GetMint(ctx context.Context, address string) (*token.MintRecord, error) {
	model, err := dbGetMint(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromMintModel(model), nil
}

// SaveTokenAccount implements token.Store.SaveTokenAccount
func (s *store) SaveTokenAccount(ctx context.Context, record *token.AccountRecord) error {
	model, err := toTokenAccountModel(record)
	if err != nil {
		return err
	}

	if err := model.dbSave(ctx, s.db); err != nil {
		return err
	}

	res := fromTokenAccountModel(model)
	res.CopyTo(record)

	return nil
}

// GetTokenAccount implements token.Store.GetTokenAccount
func (s *store) GetTokenAccount(ctx context.Context, address string) (*token.AccountRecord, error) {
	model, err := dbGetTokenAccount(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromTokenAccountModel(model), nil
}

// GetTokenAccountsByOwner implements token.Store.GetTokenAccountsByOwner
func (s *store) GetTokenAccountsByOwner(ctx context.Context, owner string) ([]*token.AccountRecord, error) {
	models, err := dbGetTokenAccountsByOwner(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}

	res := make([]*token.AccountRecord, len(models))
	for i, model := range models {
		res[i] = fromTokenAccountModel(model)
	}
	return res, nil
}
