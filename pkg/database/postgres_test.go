package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "coach",
		Password: "secret",
		Name:     "coach_ledger",
		SSLMode:  "disable",
	})

	assert.Contains(t, dsn, "host=db port=5432 user=coach password=secret dbname=coach_ledger sslmode=disable")
	assert.Contains(t, dsn, "timezone=UTC")
	assert.Contains(t, dsn, "application_name=coach-ledger")
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)

	ups, downs := 0, 0
	for _, entry := range entries {
		switch {
		case strings.HasSuffix(entry.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(entry.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, 3, ups)
	assert.Equal(t, ups, downs)
}

func TestSubscriptionsMigrationLoadsPgcryptoFirst(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/000002_subscriptions.up.sql")
	require.NoError(t, err)
	sql := string(raw)

	extension := strings.Index(sql, "CREATE EXTENSION IF NOT EXISTS pgcrypto")
	require.GreaterOrEqual(t, extension, 0)
	assert.Less(t, extension, strings.Index(sql, "gen_random_uuid()"))
}
