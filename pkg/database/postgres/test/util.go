// Package test runs throwaway postgres containers for store tests.
package test

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"

	_ "github.com/jackc/pgx/v4/stdlib" //nolint:revive

	"github.com/code-payments/soltips-server/pkg/retry"
	"github.com/code-payments/soltips-server/pkg/retry/backoff"
)

const (
	image    = "postgres"
	imageTag = "13.4"

	user     = "localtest"
	password = "localpassword"
	dbname   = "testdb"

	// Containers are killed after this even if the test binary never purges
	// them.
	containerTTL = 120 * time.Second
	startTimeout = 60 * time.Second
)

// StartPostgresDB runs a postgres container and returns a connected client.
// closeFunc purges the container and is always safe to call.
func StartPostgresDB(pool *dockertest.Pool) (db *sql.DB, closeFunc func(), err error) {
	closeFunc = func() {}

	resource, err := pool.RunWithOptions(
		&dockertest.RunOptions{
			Repository: image,
			Tag:        imageTag,
			Env: []string{
				"POSTGRES_USER=" + user,
				"POSTGRES_PASSWORD=" + password,
				"POSTGRES_DB=" + dbname,
			},
		},
		func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		},
	)
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to start postgres container")
	}

	purge := func() { _ = pool.Purge(resource) }
	_ = resource.Expire(uint(containerTTL.Seconds()))

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		user, password, resource.GetHostPort("5432/tcp"), dbname,
	)

	db, err = waitForDB(dsn)
	if err != nil {
		purge()
		return nil, closeFunc, err
	}
	return db, purge, nil
}

func waitForDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "invalid postgres dsn")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	_, err = retry.RetryContext(
		ctx,
		func() error { return db.PingContext(ctx) },
		retry.Backoff(backoff.Constant(500*time.Millisecond), time.Second),
	)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "timed out waiting for postgres container to become available")
	}
	return db, nil
}
