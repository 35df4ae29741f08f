package data

import (
	"context"

	pg "github.com/code-payments/affiliate-market/pkg/database/postgres"
)

// Provider is the entry point to all market state
type Provider interface {
	DatabaseData

	GetDatabaseDataProvider() DatabaseData

	// Close releases the database connection pool, if there is one
	Close() error
}

type provider struct {
	*DatabaseProvider
}

// NewDataProvider returns a Provider backed by postgres
func NewDataProvider(ctx context.Context, dbConfig *pg.Config, configProvider ConfigProvider) (Provider, error) {
	db, err := NewDatabaseProvider(ctx, dbConfig, configProvider)
	if err != nil {
		return nil, err
	}
	return &provider{db.(*DatabaseProvider)}, nil
}

// NewTestDataProvider returns a Provider backed by in memory stores
func NewTestDataProvider() Provider {
	return &provider{NewTestDatabaseProvider().(*DatabaseProvider)}
}

func (p *provider) GetDatabaseDataProvider() DatabaseData {
	return p.DatabaseProvider
}

func (p *provider) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
