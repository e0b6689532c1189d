package postgres

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"database/sql"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/ledger/tests"

	postgrestest "github.com/code-payments/soltips-server/pkg/database/postgres/test"

	_ "github.com/jackc/pgx/v4/stdlib"
)

const (
	// Used for testing ONLY, the table and migrations are external to this repository
	tableCreate = `
		CREATE TABLE soltips__core_account(
			id SERIAL NOT NULL PRIMARY KEY,

			address TEXT NOT NULL UNIQUE,
			lamports BIGINT NOT NULL CHECK (lamports >= 0),
			owner TEXT NOT NULL,
			data BYTEA NOT NULL,

			version BIGINT NOT NULL CHECK (version > 0),

			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX soltips__core_account__owner ON soltips__core_account(owner);
	`

	// Used for testing ONLY, the table and migrations are external to this repository
	tableDestroy = `
		DROP TABLE soltips__core_account;
	`
)

var (
	testStore ledger.Store
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

	if err := createTestTables(db); err != nil {
		log.WithError(err).Error("Error creating test tables")
		cleanUpFunc()
		os.Exit(1)
	}

	testStore = New(db)
	teardown = func() {
		if pc := recover(); pc != nil {
			cleanUpFunc()
			panic(pc)
		}

		if err := resetTestTables(db); err != nil {
			log.WithError(err).Error("Error resetting test tables")
			cleanUpFunc()
			os.Exit(1)
		}
	}

	code := m.Run()
	cleanUpFunc()
	os.Exit(code)
}

func TestLedgerPostgresStore(t *testing.T) {
	tests.RunTests(t, testStore, teardown)
}

func TestCommitAll_FailedAttemptKeepsModels(t *testing.T) {
	defer teardown()

	ctx := context.Background()
	db := testStore.(*store).db

	existing := newTestModel(t, 10)
	_, err := dbCommitAll(ctx, db, []*model{existing})
	require.NoError(t, err)
	assert.Zero(t, existing.Version)

	fresh := newTestModel(t, 20)
	_, err = dbCommitAll(ctx, db, []*model{fresh, existing})
	assert.Equal(t, ledger.ErrAccountExists, err)
	assert.Zero(t, fresh.Version)

	// Rerunning the rolled back commit must take the insert path again
	committed, err := dbCommitAll(ctx, db, []*model{fresh})
	require.NoError(t, err)
	require.Len(t, committed, 1)
	assert.EqualValues(t, 1, committed[0].Version)
	assert.EqualValues(t, 20, committed[0].Lamports)
	assert.Zero(t, fresh.Version)

	updated := *committed[0]
	updated.Lamports = 30
	committed, err = dbCommitAll(ctx, db, []*model{&updated})
	require.NoError(t, err)
	assert.EqualValues(t, 2, committed[0].Version)
	assert.EqualValues(t, 30, committed[0].Lamports)
	assert.EqualValues(t, 1, updated.Version)

	_, err = dbCommitAll(ctx, db, []*model{&updated})
	assert.Equal(t, ledger.ErrStaleVersion, err)
}

func newTestModel(t *testing.T, lamports uint64) *model {
	address, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	m, err := toModel(&ledger.Account{
		Address:  address,
		Lamports: lamports,
		Owner:    ledger.SystemProgramID,
	})
	require.NoError(t, err)
	return m
}

func createTestTables(db *sql.DB) error {
	_, err := db.Exec(tableCreate)
	if err != nil {
		logrus.StandardLogger().WithError(err).Error("could not create test tables")
		return err
	}
	return nil
}

func resetTestTables(db *sql.DB) error {
	_, err := db.Exec(tableDestroy)
	if err != nil {
		logrus.StandardLogger().WithError(err).Error("could not drop test tables")
		return err
	}

	return createTestTables(db)
}
