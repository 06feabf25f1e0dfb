package sqlstore

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/petdeck/internal/config"
	"github.com/phrazzld/petdeck/internal/store"
)

// Supported driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// Open connects to the configured database and verifies the connection.
// SQLite connections are limited to one writer with foreign keys enabled.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", MapError(err))
	}

	return db, nil
}

// Gateway implements store.Gateway on a sqlx connection pool.
type Gateway struct {
	db     *sqlx.DB
	logger *slog.Logger
	stores *store.Stores
}

// NewGateway creates a gateway. If logger is nil, a default logger will be used.
func NewGateway(db *sqlx.DB, logger *slog.Logger) *Gateway {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "sql_gateway"))
	return &Gateway{
		db:     db,
		logger: logger,
		stores: NewStores(db, logger),
	}
}

var _ store.Gateway = (*Gateway)(nil)

// DB exposes the underlying pool.
func (g *Gateway) DB() *sqlx.DB {
	return g.db
}

// Stores returns the bundle bound to the pool.
func (g *Gateway) Stores() *store.Stores {
	return g.stores
}

// RunInTx runs fn with stores bound to a new transaction.
func (g *Gateway) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *store.Stores) error) error {
	err := store.RunInTransaction(ctx, g.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, NewStores(tx, g.logger))
	})
	if err != nil {
		return MapError(err)
	}
	return nil
}

// NewStores binds every entity store to db.
func NewStores(db store.DBTX, logger *slog.Logger) *store.Stores {
	return &store.Stores{
		Users:     NewUserStore(db, logger),
		Settings:  NewSettingsStore(db, logger),
		Progress:  NewProgressStore(db, logger),
		Sessions:  NewSessionStore(db, logger),
		States:    NewSessionStateStore(db, logger),
		Attempts:  NewAttemptStore(db, logger),
		Pets:      NewPetStore(db, logger),
		Revivals:  NewRevivalStore(db, logger),
		Stats:     NewStatsStore(db, logger),
		Reminders: NewReminderStore(db, logger),
	}
}
