package main

import (
	"github.com/code-payments/soltips-server/pkg/config"
	"github.com/code-payments/soltips-server/pkg/config/env"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"

	StoreConfigEnvName = "LEDGER_STORE"
	defaultStore       = storeMemory

	envDatabasePrefix = "DB_"

	DatabaseHostConfigEnvName = envDatabasePrefix + "HOST"
	defaultDatabaseHost       = "localhost"

	DatabasePortConfigEnvName = envDatabasePrefix + "PORT"
	defaultDatabasePort       = 5432

	DatabaseUserConfigEnvName = envDatabasePrefix + "USER"
	defaultDatabaseUser       = "soltips"

	DatabasePasswordConfigEnvName = envDatabasePrefix + "PASSWORD"
	defaultDatabasePassword       = ""

	DatabaseNameConfigEnvName = envDatabasePrefix + "NAME"
	defaultDatabaseName       = "soltips"

	DatabaseUseAwsIamConfigEnvName = envDatabasePrefix + "USE_AWS_IAM"
	defaultDatabaseUseAwsIam       = false

	DatabaseMaxOpenConnectionsConfigEnvName = envDatabasePrefix + "MAX_OPEN_CONNECTIONS"
	defaultDatabaseMaxOpenConnections       = 32

	DatabaseMaxIdleConnectionsConfigEnvName = envDatabasePrefix + "MAX_IDLE_CONNECTIONS"
	defaultDatabaseMaxIdleConnections       = 8
)

type conf struct {
	store config.String

	dbHost               config.String
	dbPort               config.Uint64
	dbUser               config.String
	dbPassword           config.String
	dbName               config.String
	dbUseAwsIam          config.Bool
	dbMaxOpenConnections config.Uint64
	dbMaxIdleConnections config.Uint64
}

func withEnvConfigs() *conf {
	return &conf{
		store: env.NewStringConfig(StoreConfigEnvName, defaultStore),

		dbHost:               env.NewStringConfig(DatabaseHostConfigEnvName, defaultDatabaseHost),
		dbPort:               env.NewUint64Config(DatabasePortConfigEnvName, defaultDatabasePort),
		dbUser:               env.NewStringConfig(DatabaseUserConfigEnvName, defaultDatabaseUser),
		dbPassword:           env.NewStringConfig(DatabasePasswordConfigEnvName, defaultDatabasePassword),
		dbName:               env.NewStringConfig(DatabaseNameConfigEnvName, defaultDatabaseName),
		dbUseAwsIam:          env.NewBoolConfig(DatabaseUseAwsIamConfigEnvName, defaultDatabaseUseAwsIam),
		dbMaxOpenConnections: env.NewUint64Config(DatabaseMaxOpenConnectionsConfigEnvName, defaultDatabaseMaxOpenConnections),
		dbMaxIdleConnections: env.NewUint64Config(DatabaseMaxIdleConnectionsConfigEnvName, defaultDatabaseMaxIdleConnections),
	}
}
