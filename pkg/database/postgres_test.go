package database

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-scoring/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "scorer", Password: "p@ss word", Name: "sma_scoring"})
	assert.Equal(t, "postgres://scorer:p%40ss%20word@db:5432/sma_scoring?application_name=sma-adp-scoring&sslmode=disable", dsn)

	dsn = DSN(config.DatabaseConfig{Host: "db", Port: 6543, User: "u", Password: "p", Name: "n", SSLMode: "require"})
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "db:6543")
}

func TestConfigure(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	defer db.Close()

	Configure(db, config.DatabaseConfig{MaxOpenConns: 7})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

func TestEmbeddedMigrationsPaired(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
	assert.NotZero(t, ups)

	raw, err := migrationsFS.ReadFile("migrations/0001_scoring.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "UNIQUE (scheme_id, student_id)")
}
