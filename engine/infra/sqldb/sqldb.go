// Package sqldb adapts a *database/sql pool to the driver interfaces. The
// sqlite, mysql and sqlserver dialects share it; postgres uses pgxpool.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/compozy/modhost/engine/data/driver"
	"github.com/georgysavva/scany/v2/sqlscan"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type executor struct {
	q querier
}

func (e executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (e executor) Select(ctx context.Context, dst any, query string, args ...any) error {
	return sqlscan.Select(ctx, e.q, dst, query, args...)
}

func (e executor) Get(ctx context.Context, dst any, query string, args ...any) error {
	return sqlscan.Get(ctx, e.q, dst, query, args...)
}

// Conn is a database/sql backed pool.
type Conn struct {
	executor
	db *sql.DB
}

// Open creates a pool for driverName without dialing it.
func Open(driverName, dsn string, pool driver.PoolSettings) (*Conn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driverName, err)
	}
	return Wrap(db, pool), nil
}

// Wrap adopts an existing *sql.DB and applies pool settings.
func Wrap(db *sql.DB, pool driver.PoolSettings) *Conn {
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return &Conn{executor: executor{q: db}, db: db}
}

// DB exposes the underlying handle.
func (c *Conn) DB() *sql.DB { return c.db }

func (c *Conn) Begin(ctx context.Context) (driver.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{executor: executor{q: tx}, tx: tx}, nil
}

func (c *Conn) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Conn) Close() error {
	return c.db.Close()
}

func (c *Conn) Stats() driver.PoolStats {
	s := c.db.Stats()
	return driver.PoolStats{
		MaxOpen: s.MaxOpenConnections,
		Open:    s.OpenConnections,
		InUse:   s.InUse,
		Idle:    s.Idle,
	}
}

// SQLDB returns the pool itself; release is a no-op since the pool stays
// owned by the Conn.
func (c *Conn) SQLDB() (*sql.DB, func() error, error) {
	return c.db, func() error { return nil }, nil
}

// Tx is an open database/sql transaction.
type Tx struct {
	executor
	tx *sql.Tx
}

func (t *Tx) Commit(context.Context) error {
	return t.tx.Commit()
}

func (t *Tx) Rollback(context.Context) error {
	return t.tx.Rollback()
}
