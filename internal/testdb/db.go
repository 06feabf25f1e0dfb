package testdb

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/petdeck/internal/config"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// EnvTestDatabaseURL names the variable selecting a PostgreSQL test database.
const EnvTestDatabaseURL = "PETDECK_TEST_DB_URL"

// TestTimeout bounds setup work against the database.
const TestTimeout = 10 * time.Second

var memCounter atomic.Int64

// Config returns the database configuration used by Open.
func Config() config.DatabaseConfig {
	if url := os.Getenv(EnvTestDatabaseURL); url != "" {
		return config.DatabaseConfig{Driver: sqlstore.DriverPostgres, URL: url, MaxOpenConns: 4}
	}
	// A named shared-cache memory database survives pool reconnects but is
	// still private to this call.
	name := fmt.Sprintf("file:petdeck_test_%d?mode=memory&cache=shared&_loc=UTC", memCounter.Add(1))
	return config.DatabaseConfig{Driver: sqlstore.DriverSQLite, URL: name}
}

// Open returns a migrated database that is closed on cleanup.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlstore.Open(ctx, Config())
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db, logger.NewDiscard()), "failed to migrate test database")

	if db.DriverName() == sqlstore.DriverPostgres {
		resetTables(t, db)
	}
	return db
}

// Gateway returns a gateway over a fresh migrated database.
func Gateway(t *testing.T) *sqlstore.Gateway {
	t.Helper()
	return sqlstore.NewGateway(Open(t), logger.NewDiscard())
}

// resetTables empties every table so PostgreSQL runs start clean.
func resetTables(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE reminders, level_progress, daily_stats, revive, pets,
		attempts, session_state, sessions, item_progress, user_settings, users CASCADE`)
	require.NoError(t, err, "failed to reset tables")
}
