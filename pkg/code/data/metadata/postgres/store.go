package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/affiliate-market/pkg/code/data/metadata"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres metadata.Store
func New(db *sql.DB) metadata.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// SaveMetadata implements metadata.Store.SaveMetadata
func (s *store) SaveMetadata(ctx context.Context, record *metadata.Record) error {
	model, err := toMetadataModel(record)
	if err != nil {
		return err
	}

	if err := model.dbSave(ctx, s.db); err != nil {
		return err
	}

	res := fromMetadataModel(model)
	res.CopyTo(record)

	return nil
}

// GetMetadata implements metadata.Store.GetMetadata
func (s *store) GetMetadata(ctx context.Context, address string) (*metadata.Record, error) {
	model, err := dbGetMetadata(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromMetadataModel(model), nil
}

// SaveEdition implements metadata.Store.SaveEdition
func (s *store) SaveEdition(ctx context.Context, record *metadata.EditionRecord) error {
	model, err := toEditionModel(record)
	if err != nil {
		return err
	}

	if err := model.dbPut(ctx, s.db); err != nil {
		return err
	}

	res := fromEditionModel(model)
	res.CopyTo(record)

	return nil
}

// GetEdition implements metadata.Store.GetEdition
func (s *store) GetEdition(ctx context.Context, address string) (*metadata.EditionRecord, error) {
	model, err := dbGetEdition(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromEditionModel(model), nil
}
