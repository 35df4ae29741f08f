package data

import (
	"context"
	"database/sql"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	pg "github.com/code-payments/affiliate-market/pkg/database/postgres"

	"github.com/code-payments/affiliate-market/pkg/code/data/account"
	"github.com/code-payments/affiliate-market/pkg/code/data/affiliate"
	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
	"github.com/code-payments/affiliate-market/pkg/code/data/metadata"
	"github.com/code-payments/affiliate-market/pkg/code/data/token"

	account_memory_client "github.com/code-payments/affiliate-market/pkg/code/data/account/memory"
	affiliate_memory_client "github.com/code-payments/affiliate-market/pkg/code/data/affiliate/memory"
	campaign_memory_client "github.com/code-payments/affiliate-market/pkg/code/data/campaign/memory"
	metadata_memory_client "github.com/code-payments/affiliate-market/pkg/code/data/metadata/memory"
	token_memory_client "github.com/code-payments/affiliate-market/pkg/code/data/token/memory"

	account_postgres_client "github.com/code-payments/affiliate-market/pkg/code/data/account/postgres"
	affiliate_postgres_client "github.com/code-payments/affiliate-market/pkg/code/data/affiliate/postgres"
	campaign_postgres_client "github.com/code-payments/affiliate-market/pkg/code/data/campaign/postgres"
	metadata_postgres_client "github.com/code-payments/affiliate-market/pkg/code/data/metadata/postgres"
	token_postgres_client "github.com/code-payments/affiliate-market/pkg/code/data/token/postgres"
)

type DatabaseData interface {
	// Campaigns
	// --------------------------------------------------------------------------------
	CreateCampaign(ctx context.Context, record *campaign.Record) error
	UpdateCampaign(ctx context.Context, record *campaign.Record) error
	GetCampaignByAddress(ctx context.Context, address string) (*campaign.Record, error)
	GetCampaignByCollectionMint(ctx context.Context, collectionMint string) (*campaign.Record, error)

	// Affiliate Stats
	// --------------------------------------------------------------------------------
	InitializeAffiliateStatsIfAbsent(ctx context.Context, record *affiliate.Record) error
	UpdateAffiliateStats(ctx context.Context, record *affiliate.Record) error
	GetAffiliateStats(ctx context.Context, campaign, affiliate string) (*affiliate.Record, error)
	GetAllAffiliateStatsByCampaign(ctx context.Context, campaign string) ([]*affiliate.Record, error)

	// Accounts
	// --------------------------------------------------------------------------------
	SaveAccountInfo(ctx context.Context, record *account.Record) error
	GetAccountInfo(ctx context.Context, address string) (*account.Record, error)

	// Tokens
	// --------------------------------------------------------------------------------
	SaveTokenMint(ctx context.Context, record *token.MintRecord) error
	GetTokenMint(ctx context.Context, address string) (*token.MintRecord, error)
	SaveTokenAccount(ctx context.Context, record *token.AccountRecord) error
	GetTokenAccount(ctx context.Context, address string) (*token.AccountRecord, error)
	GetTokenAccountsByOwner(ctx context.Context, owner string) ([]*token.AccountRecord, error)

	// Token Metadata
	// --------------------------------------------------------------------------------
	SaveTokenMetadata(ctx context.Context, record *metadata.Record) error
	GetTokenMetadata(ctx context.Context, address string) (*metadata.Record, error)
	CreateMasterEdition(ctx context.Context, record *metadata.EditionRecord) error
	GetMasterEdition(ctx context.Context, address string) (*metadata.EditionRecord, error)

	// ExecuteInTx executes fn with a single DB transaction that is scoped to the call.
	// This enables more complex transactions that can span many calls across the provider.
	//
	// Without a database, calls are serialized and every in memory store is
	// restored to its prior state when fn fails.
	ExecuteInTx(ctx context.Context, isolation sql.IsolationLevel, fn func(ctx context.Context) error) error
}

type memoryTxContextKey struct{}

// snapshotter is implemented by the in memory stores
type snapshotter interface {
	Snapshot() func()
}

type DatabaseProvider struct {
	campaigns  campaign.Store
	affiliates affiliate.Store
	accounts   account.Store
	tokens     token.Store
	metadata   metadata.Store

	db   *sqlx.DB
	conf *conf

	memoryTxMu sync.Mutex
}

func NewDatabaseProvider(ctx context.Context, dbConfig *pg.Config, configProvider ConfigProvider) (DatabaseData, error) {
	conf := configProvider()

	var db *sql.DB
	var err error
	if conf.useAwsIamAuth.Get(ctx) {
		awsConfig, err := external.LoadDefaultAWSConfig()
		if err != nil {
			return nil, errors.Wrap(err, "error loading aws config")
		}

		db, err = pg.NewWithAwsIam(dbConfig, awsConfig)
		if err != nil {
			return nil, err
		}
	} else {
		db, err = pg.NewWithUsernameAndPassword(dbConfig)
		if err != nil {
			return nil, err
		}
	}

	return &DatabaseProvider{
		campaigns:  campaign_postgres_client.New(db),
		affiliates: affiliate_postgres_client.New(db),
		accounts:   account_postgres_client.New(db),
		tokens:     token_postgres_client.New(db),
		metadata:   metadata_postgres_client.New(db),

		db:   sqlx.NewDb(db, "pgx"),
		conf: conf,
	}, nil
}

func NewTestDatabaseProvider() DatabaseData {
	return &DatabaseProvider{
		campaigns:  campaign_memory_client.New(),
		affiliates: affiliate_memory_client.New(),
		accounts:   account_memory_client.New(),
		tokens:     token_memory_client.New(),
		metadata:   metadata_memory_client.New(),
	}
}

func (dp *DatabaseProvider) ExecuteInTx(ctx context.Context, isolation sql.IsolationLevel, fn func(ctx context.Context) error) error {
	if dp.db != nil {
		return withSerializationRetries(ctx, dp.conf, func() error {
			return pg.ExecuteTxWithinCtx(ctx, dp.db, isolation, fn)
		})
	}

	if ctx.Value(memoryTxContextKey{}) != nil {
		return pg.ErrAlreadyInTx
	}

	dp.memoryTxMu.Lock()
	defer dp.memoryTxMu.Unlock()

	var restores []func()
	for _, store := range []interface{}{dp.campaigns, dp.affiliates, dp.accounts, dp.tokens, dp.metadata} {
		if s, ok := store.(snapshotter); ok {
			restores = append(restores, s.Snapshot())
		}
	}

	err := fn(context.WithValue(ctx, memoryTxContextKey{}, struct{}{}))
	if err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// exclusive runs a write made outside of ExecuteInTx. In memory, it waits for
// any transaction in flight, so that a rollback never erases the write.
func (dp *DatabaseProvider) exclusive(ctx context.Context, fn func() error) error {
	if dp.db != nil || ctx.Value(memoryTxContextKey{}) != nil {
		return fn()
	}

	dp.memoryTxMu.Lock()
	defer dp.memoryTxMu.Unlock()
	return fn()
}

// withSerializationRetries reruns fn while it fails with a serialization
// failure, up to the configured number of retries
func withSerializationRetries(ctx context.Context, conf *conf, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = conf.serializationRetryDelay.Get(ctx)
	policy.MaxElapsedTime = 0

	return backoff.Retry(
		func() error {
			err := fn()
			if err != nil && !pg.IsSerializationFailure(err) {
				return backoff.Permanent(err)
			}
			return err
		},
		backoff.WithContext(backoff.WithMaxRetries(policy, conf.maxSerializationRetries.Get(ctx)), ctx),
	)
}

// Campaigns
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) CreateCampaign(ctx context.Context, record *campaign.Record) error {
	return dp.exclusive(ctx, func() error {
		return dp.campaigns.Put(ctx, record)
	})
}
func (dp *DatabaseProvider) UpdateCampaign(ctx context.Context, record *campaign.Record) error {
	return dp.exclusive(ctx, func() error {
		return dp.campaigns.Update(ctx, record)
	})
}
func (dp *DatabaseProvider) GetCampaignByAddress(ctx context.Context, address string) (*campaign.Record, error) {
	return dp.campaigns.GetByAddress(ctx, address)
}
func (dp *DatabaseProvider) GetCampaignByCollectionMint(ctx context.Context, collectionMint string) (*campaign.Record, error) {
	return dp.campaigns.GetByCollectionMint(ctx, collectionMint)
}

// Affiliate Stats
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) InitializeAffiliateStatsIfAbsent(ctx context.Context, record *affiliate.Record) error {
	return dp.exclusive(ctx, func() error {
		return dp.affiliates.InitializeIfAbsent(ctx, record)
	})
}
func (dp *DatabaseProvider) UpdateAffiliateStats(ctx context.Context, record *affiliate.Record) error {
	return dp.exclusive(ctx, func() error {
		return dp.affiliates.Update(ctx, record)
	})
}
func (dp *DatabaseProvider) GetAffiliateStats(ctx context.Context, campaign, affiliate string) (*affiliate.Record, error) {
	return dp.affiliates.Get(ctx, campaign, affiliate)
}
func (dp *DatabaseProvider) GetAllAffiliateStatsByCampaign(ctx context.Context, campaign string) ([]*affiliate.Record, error) {
	return dp.affiliates.GetAllByCampaign(ctx, campaign)
}

// Accounts
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) SaveAccountInfo(ctx context.Context, record *account.Record) error {
	return dp.exclusive(ctx, func() error {
		return dp.accounts.Save(ctx, record)
	})
}
func (dp *DatabaseProvider) GetAccountInfo(ctx context.Context, address string) (*account.Record, error) {
	return dp.accounts.Get(ctx, address)
}

// Tokens
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) SaveTokenMint(ctx context.Context, record *token.MintRecord) error {
	return dp.exclusive(ctx, func() error {
		return dp.tokens.SaveMint(ctx, record)
	})
}
func (dp *DatabaseProvider) GetTokenMint(ctx context.Context, address string) (*token.MintRecord, error) {
	return dp.tokens.GetMint(ctx, address)
}
func (dp *DatabaseProvider) SaveTokenAccount(ctx context.Context, record *token.AccountRecord) error {
	return dp.exclusive(ctx, func() error {
		return dp.tokens.SaveTokenAccount(ctx, record)
	})
}
func (dp *DatabaseProvider) GetTokenAccount(ctx context.Context, address string) (*token.AccountRecord, error) {
	return dp.tokens.GetTokenAccount(ctx, address)
}
func (dp *DatabaseProvider) GetTokenAccountsByOwner(ctx context.Context, owner string) ([]*token.AccountRecord, error) {
	return dp.tokens.GetTokenAccountsByOwner(ctx, owner)
}

// Token Metadata
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) SaveTokenMetadata(ctx context.Context, record *metadata.Record) error {
	return dp.exclusive(ctx, func() error {
		return dp.metadata.SaveMetadata(ctx, record)
	})
}
func (dp *DatabaseProvider) GetTokenMetadata(ctx context.Context, address string) (*metadata.Record, error) {
	return dp.metadata.GetMetadata(ctx, address)
}
func (dp *DatabaseProvider) CreateMasterEdition(ctx context.Context, record *metadata.EditionRecord) error {
	return dp.exclusive(ctx, func() error {
		return dp.metadata.SaveEdition(ctx, record)
	})
}
func (dp *DatabaseProvider) GetMasterEdition(ctx context.Context, address string) (*metadata.EditionRecord, error) {
	return dp.metadata.GetEdition(ctx, address)
}
