// Package postgres provides the pgx backed dialect.
//
// Importing the package registers the dialect under "postgres", "postgresql"
// and "pgsql".
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/compozy/modhost/engine/data/driver"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const defaultMaxConns = 20

// DB is the subset of *pgxpool.Pool the store uses. pgxmock pools satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type executor struct {
	q querier
}

func (e executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := e.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (e executor) Select(ctx context.Context, dst any, query string, args ...any) error {
	return pgxscan.Select(ctx, e.q, dst, query, args...)
}

func (e executor) Get(ctx context.Context, dst any, query string, args ...any) error {
	return pgxscan.Get(ctx, e.q, dst, query, args...)
}

// Store is a pgx pool behind the driver.Conn interface. It does not leak pgx
// types through its public API except for Pool.
type Store struct {
	executor
	db   DB
	pool *pgxpool.Pool
}

// NewStore wraps an existing DB, typically a mock in tests.
func NewStore(db DB) *Store {
	s := &Store{executor: executor{q: db}, db: db}
	if pool, ok := db.(*pgxpool.Pool); ok {
		s.pool = pool
	}
	return s
}

// Open parses dsn and creates a pool. pgxpool connects lazily, so no
// connection is made until the first statement.
func Open(ctx context.Context, dsn string, settings driver.PoolSettings) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	cfg.MaxConns = maxConns(settings.MaxOpenConns)
	cfg.MinConns = 0
	if settings.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = settings.ConnMaxLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	return NewStore(pool), nil
}

func maxConns(value int) int32 {
	switch {
	case value <= 0:
		return defaultMaxConns
	case value > math.MaxInt32:
		return math.MaxInt32
	}
	return int32(value)
}

// Pool returns the pgx pool, or nil when the store wraps a mock.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Begin(ctx context.Context) (driver.Tx, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{executor: executor{q: tx}, tx: tx}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

func (s *Store) Stats() driver.PoolStats {
	if s.pool == nil {
		return driver.PoolStats{}
	}
	st := s.pool.Stat()
	return driver.PoolStats{
		MaxOpen: int(st.MaxConns()),
		Open:    int(st.TotalConns()),
		InUse:   int(st.AcquiredConns()),
		Idle:    int(st.IdleConns()),
	}
}

// SQLDB opens a database/sql view of the pool for goose. release closes the
// view without closing the pool.
func (s *Store) SQLDB() (*sql.DB, func() error, error) {
	if s.pool == nil {
		return nil, nil, fmt.Errorf("postgres: no pool to expose")
	}
	db := stdlib.OpenDBFromPool(s.pool)
	return db, db.Close, nil
}

// Tx is an open pgx transaction.
type Tx struct {
	executor
	tx pgx.Tx
}

func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
