package postgres

import (
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
	"github.com/code-payments/affiliate-market/pkg/code/data/campaign/tests"

	postgrestest "github.com/code-payments/affiliate-market/pkg/database/postgres/test"

	_ "github.com/jackc/pgx/v4/stdlib"
)

const (
	// Used for testing ONLY, the table and migrations are external to this repository
	tableCreate = `
		CREATE TABLE affiliatemarket__core_campaign(
			id SERIAL NOT NULL PRIMARY KEY,

			address TEXT NOT NULL,
			campaign_bump INTEGER NOT NULL,

			creator TEXT NOT NULL,
			collection_mint TEXT NOT NULL,

			price BIGINT NOT NULL CHECK (price >= 0),
			affiliate_fee_bps INTEGER NOT NULL CHECK (affiliate_fee_bps >= 0 AND affiliate_fee_bps <= 10000),

			minted BIGINT NOT NULL CHECK (minted >= 0),
			max_supply BIGINT NOT NULL CHECK (max_supply >= 0),

			mint_authority_bump INTEGER NOT NULL,
			collection_authority_bump INTEGER NOT NULL,

			version BIGINT NOT NULL,

			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			last_updated_at TIMESTAMP WITH TIME ZONE NOT NULL,

			CONSTRAINT affiliatemarket__core_campaign__uniq__address UNIQUE (address),
			CONSTRAINT affiliatemarket__core_campaign__uniq__collection_mint UNIQUE (collection_mint),
			CONSTRAINT affiliatemarket__core_campaign__minted_within_supply CHECK (minted <= max_supply)
		);
	`

	// Used for testing ONLY, the table and migrations are external to this repository
	tableDestroy = `
		DROP TABLE affiliatemarket__core_campaign;
	`
)

var (
	schema = postgrestest.Schema{Create: tableCreate, Destroy: tableDestroy}

	testStore campaign.Store
	teardown  func()
)

func TestMain(m *testing.M) {
	log := logrus.StandardLogger()

	testPool, err := dockertest.NewPool("")
	if err != nil {
		log.WithError(err).Error("Error creating docker pool")
		os.Exit(1)
	}

	var cleanUpFunc func()
	db, cleanUpFunc, err := postgrestest.StartPostgresDB(testPool)
	if err != nil {
		log.WithError(err).Error("Error starting postgres image")
		os.Exit(1)
	}
	defer db.Close()

	if err := schema.Apply(db); err != nil {
		logrus.StandardLogger().WithError(err).Error("Error creating test tables")
		cleanUpFunc()
		os.Exit(1)
	}

	testStore = New(db)
	teardown = func() {
		if pc := recover(); pc != nil {
			cleanUpFunc()
			panic(pc)
		}

		if err := schema.Reset(db); err != nil {
			logrus.StandardLogger().WithError(err).Error("Error resetting test tables")
			cleanUpFunc()
			os.Exit(1)
		}
	}

	code := m.Run()
	cleanUpFunc()
	os.Exit(code)
}

func TestCampaignPostgresStore(t *testing.T) {
	tests.RunTests(t, testStore, teardown)
}
