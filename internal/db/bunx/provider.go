package bunx

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite" // SQLite driver
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypePostgreSQL DatabaseType = "postgres"
	DatabaseTypeSQLite     DatabaseType = "sqlite"
)

// DefaultMaxConnections is the PostgreSQL pool size used when none is set.
const DefaultMaxConnections = 25

// DetectDatabaseType determines the database type from a DSN string
func DetectDatabaseType(dsn string) DatabaseType {
	for _, prefix := range []string{"postgres://", "postgresql://", "unix://"} {
		if strings.HasPrefix(dsn, prefix) {
			return DatabaseTypePostgreSQL
		}
	}
	// SQLite patterns: file:, :memory:, or plain file path
	return DatabaseTypeSQLite
}

type options struct {
	maxConnections int
	hooks          []bun.QueryHook
}

// Option configures NewDB.
type Option func(*options)

// WithMaxConnections sets the PostgreSQL pool size. SQLite always uses a
// single connection.
func WithMaxConnections(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConnections = n
		}
	}
}

// WithQueryHook installs a bun query hook, e.g. a metrics recorder.
func WithQueryHook(h bun.QueryHook) Option {
	return func(o *options) {
		if h != nil {
			o.hooks = append(o.hooks, h)
		}
	}
}

// NewDB creates a new Bun database instance for PostgreSQL or SQLite based on DSN
func NewDB(dsn string, opts ...Option) (*bun.DB, error) {
	o := options{maxConnections: DefaultMaxConnections}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		db  *bun.DB
		err error
	)
	switch DetectDatabaseType(dsn) {
	case DatabaseTypePostgreSQL:
		db, err = newPostgreSQLDB(dsn, o.maxConnections)
	case DatabaseTypeSQLite:
		db, err = newSQLiteDB(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type for DSN: %s", dsn)
	}
	if err != nil {
		return nil, err
	}

	for _, h := range o.hooks {
		db.AddQueryHook(h)
	}
	return db, nil
}

func newPostgreSQLDB(dsn string, maxConns int) (*bun.DB, error) {
	connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
	sqldb := sql.OpenDB(connector)

	sqldb.SetMaxOpenConns(maxConns)
	sqldb.SetMaxIdleConns(maxConns)

	db := bun.NewDB(sqldb, pgdialect.New())

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// newSQLiteDB creates a SQLite connection using modernc.org/sqlite driver
func newSQLiteDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Single writer connection. This also keeps a :memory: database alive for
	// the lifetime of the pool.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func Close(db *bun.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
