// Package store provides the database connection pool for the teams API.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/graaaaa/teamstats/internal/sqlq"
)

// Supported driver names, as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Options configures Open.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          *slog.Logger
}

// Store wraps a pooled database handle.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open opens the pool and verifies it with a ping.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if !ValidDriver(opts.Driver) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, opts.Driver)
	}

	db, err := sqlx.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{db: db, logger: logger.With("component", "store")}, nil
}

// ValidDriver reports whether name is a supported driver.
func ValidDriver(name string) bool {
	switch name {
	case DriverPostgres, DriverPgx, DriverSQLite:
		return true
	}
	return false
}

// PlaceholderFor returns the parameter style understood by driver.
func PlaceholderFor(driver string) sqlq.Placeholder {
	if driver == DriverSQLite {
		return sqlq.Question
	}
	return sqlq.Dollar
}

// Placeholder returns the parameter style of the open pool.
func (s *Store) Placeholder() sqlq.Placeholder {
	return PlaceholderFor(s.db.DriverName())
}

// Acquire takes one connection from the pool for exclusive use.
// The caller must call Release on the returned Conn.
func (s *Store) Acquire(ctx context.Context) (*Conn, error) {
	c, err := s.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Conn{conn: c, logger: s.logger}, nil
}

// Columns returns the column names of table, in table order.
func (s *Store) Columns(ctx context.Context, table string) ([]string, error) {
	stmt, err := sqlq.ColumnsStatement(table)
	if err != nil {
		return nil, err
	}

	conn, err := s.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.conn.QueryxContext(ctx, stmt.SQL)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	return cols, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InUse returns the number of connections currently checked out.
func (s *Store) InUse() int {
	return s.db.Stats().InUse
}

// DB exposes the underlying handle for setup code and tests.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the pool.
func (s *Store) Close() error {
	return s.db.Close()
}
