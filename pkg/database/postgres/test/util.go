package test

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	_ "github.com/jackc/pgx/v4/stdlib" //nolint:revive
)

const (
	imageName = "postgres"
	imageTag  = "14.5"

	containerAutoKill = 120 * time.Second

	user     = "localtest"
	password = "localpassword"
	dbname   = "testdb"

	connectInterval    = 500 * time.Millisecond
	maxConnectAttempts = 50
)

// Schema is the DDL a store test applies to its database. Tables and
// migrations for real deployments live outside this repository.
type Schema struct {
	Create  string
	Destroy string
}

// Apply creates the schema's tables
func (s Schema) Apply(db *sql.DB) error {
	if _, err := db.Exec(s.Create); err != nil {
		return errors.Wrap(err, "error creating test tables")
	}
	return nil
}

// Reset drops and recreates the schema's tables, so every test case starts
// from an empty database
func (s Schema) Reset(db *sql.DB) error {
	if _, err := db.Exec(s.Destroy); err != nil {
		return errors.Wrap(err, "error dropping test tables")
	}
	return s.Apply(db)
}

// StartPostgresDB runs a throwaway postgres container and returns a client
// connected to it, once it accepts connections. closeFunc purges the
// container and is safe to call when an error is returned.
func StartPostgresDB(pool *dockertest.Pool) (db *sql.DB, closeFunc func(), err error) {
	closeFunc = func() {}

	log := logrus.StandardLogger().WithField("method", "StartPostgresDB")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: imageName,
		Tag:        imageTag,
		Env: []string{
			"listen_addresses = '*'",
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbname,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to start postgres")
	}

	closeFunc = func() {
		if err := pool.Purge(resource); err != nil {
			log.WithError(err).Warn("failed to cleanup postgres resource")
		}
	}

	_ = resource.Expire(uint(containerAutoKill.Seconds()))

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		user,
		password,
		resource.GetHostPort("5432/tcp"),
		dbname,
	)

	db, err = sql.Open("pgx", dsn)
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to open postgres client")
	}

	err = backoff.Retry(
		db.Ping,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(connectInterval), maxConnectAttempts),
	)
	if err != nil {
		db.Close()
		return nil, closeFunc, errors.Wrap(err, "timed out waiting for postgres container to become available")
	}

	return db, closeFunc, nil
}
