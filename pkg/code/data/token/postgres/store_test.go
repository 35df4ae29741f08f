package postgres

import (
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/affiliate-market/pkg/code/data/token"
	"github.com/code-payments/affiliate-market/pkg/code/data/token/tests"

	postgrestest "github.com/code-payments/affiliate-market/pkg/database/postgres/test"

	_ "github.com/jackc/pgx/v4/stdlib"
)

const (
	// Used for testing ONLY, the table and migrations are external to this repository
	tableCreate = `
		CREATE TABLE affiliatemarket__core_tokenmint(
			id SERIAL NOT NULL PRIMARY KEY,

			address TEXT NOT NULL,

			decimals INTEGER NOT NULL,
			supply BIGINT NOT NULL CHECK (supply >= 0),

			mint_authority TEXT NULL,
			freeze_authority TEXT NULL,

			version BIGINT NOT NULL,

			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			last_updated_at TIMESTAMP WITH TIME ZONE NOT NULL,

			CONSTRAINT affiliatemarket__core_tokenmint__uniq__address UNIQUE (address)
		);

		CREATE TABLE affiliatemarket__core_tokenaccount(
			id SERIAL NOT NULL PRIMARY KEY,

			address TEXT NOT NULL,
			mint TEXT NOT NULL,
			owner TEXT NOT NULL,

			amount BIGINT NOT NULL CHECK (amount >= 0),

			version BIGINT NOT NULL,

			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			last_updated_at TIMESTAMP WITH TIME ZONE NOT NULL,

			CONSTRAINT affiliatemarket__core_tokenaccount__uniq__address UNIQUE (address)
		);
	`

	// Used for testing ONLY, the table and migrations are external to this repository
	tableDestroy = `
		DROP TABLE affiliatemarket__core_tokenmint;
		DROP TABLE affiliatemarket__core_tokenaccount;
	`
)

var (
	schema = postgrestest.Schema{Create: tableCreate, Destroy: tableDestroy}

	testStore token.Store
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

func TestTokenPostgresStore(t *testing.T) {
	tests.RunTests(t, testStore, teardown)
}
