package monitoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/engine/infra/monitoring/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Statement operations recorded by DataMetrics.
const (
	OpExec     = "exec"
	OpSelect   = "select"
	OpGet      = "get"
	OpBegin    = "begin"
	OpCommit   = "commit"
	OpRollback = "rollback"
	OpPing     = "ping"
)

// DataMetrics records statement latency per connection and observes pool
// usage of every decorated connection.
type DataMetrics struct {
	duration     metric.Float64Histogram
	poolGauge    metric.Int64ObservableGauge
	registration metric.Registration
	mu           sync.RWMutex
	pools        map[string]driver.StatsProvider
}

// NewDataMetrics creates the instruments on meter.
func NewDataMetrics(meter metric.Meter) (*DataMetrics, error) {
	duration, err := meter.Float64Histogram(
		"modhost_data_query_duration_seconds",
		metric.WithDescription("Data store operation latency"),
		metric.WithExplicitBucketBoundaries(metrics.QueryDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query duration histogram: %w", err)
	}
	poolGauge, err := meter.Int64ObservableGauge(
		"modhost_data_pool_connections",
		metric.WithDescription("Connections of a data store pool by state"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool gauge: %w", err)
	}
	m := &DataMetrics{duration: duration, poolGauge: poolGauge, pools: map[string]driver.StatsProvider{}}
	m.registration, err = meter.RegisterCallback(m.observePools, poolGauge)
	if err != nil {
		return nil, fmt.Errorf("failed to register pool callback: %w", err)
	}
	return m, nil
}

// Decorate wraps conn so every operation is measured. It has the signature
// of data.ConnDecorator.
func (m *DataMetrics) Decorate(c data.Connection, conn driver.Conn) driver.Conn {
	if stats, ok := conn.(driver.StatsProvider); ok {
		m.mu.Lock()
		m.pools[c.Name] = stats
		m.mu.Unlock()
	}
	return &instrumentedConn{
		instrumentedExecutor: instrumentedExecutor{inner: conn, metrics: m, connection: c.Name},
		conn:                 conn,
	}
}

// Close stops observing pools.
func (m *DataMetrics) Close() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

func (m *DataMetrics) observePools(_ context.Context, o metric.Observer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.pools))
	for name := range m.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := m.pools[name].Stats()
		conn := attribute.String("connection", name)
		o.ObserveInt64(m.poolGauge, int64(st.Open), metric.WithAttributes(conn, attribute.String("state", "open")))
		o.ObserveInt64(m.poolGauge, int64(st.InUse), metric.WithAttributes(conn, attribute.String("state", "in_use")))
		o.ObserveInt64(m.poolGauge, int64(st.Idle), metric.WithAttributes(conn, attribute.String("state", "idle")))
	}
	return nil
}

func (m *DataMetrics) record(ctx context.Context, connection, op string, start time.Time, err error) {
	m.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("connection", connection),
		attribute.String("operation", op),
		attribute.String("outcome", outcome(err)),
	))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, core.ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}

type instrumentedExecutor struct {
	inner      driver.Executor
	metrics    *DataMetrics
	connection string
}

func (e instrumentedExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	start := time.Now()
	n, err := e.inner.Exec(ctx, query, args...)
	e.metrics.record(ctx, e.connection, OpExec, start, err)
	return n, err
}

func (e instrumentedExecutor) Select(ctx context.Context, dst any, query string, args ...any) error {
	start := time.Now()
	err := e.inner.Select(ctx, dst, query, args...)
	e.metrics.record(ctx, e.connection, OpSelect, start, err)
	return err
}

func (e instrumentedExecutor) Get(ctx context.Context, dst any, query string, args ...any) error {
	start := time.Now()
	err := e.inner.Get(ctx, dst, query, args...)
	e.metrics.record(ctx, e.connection, OpGet, start, err)
	return err
}

type instrumentedConn struct {
	instrumentedExecutor
	conn driver.Conn
}

func (c *instrumentedConn) Begin(ctx context.Context) (driver.Tx, error) {
	start := time.Now()
	tx, err := c.conn.Begin(ctx)
	c.metrics.record(ctx, c.connection, OpBegin, start, err)
	if err != nil {
		return nil, err
	}
	return &instrumentedTx{
		instrumentedExecutor: instrumentedExecutor{inner: tx, metrics: c.metrics, connection: c.connection},
		tx:                   tx,
	}, nil
}

func (c *instrumentedConn) Ping(ctx context.Context) error {
	start := time.Now()
	err := c.conn.Ping(ctx)
	c.metrics.record(ctx, c.connection, OpPing, start, err)
	return err
}

func (c *instrumentedConn) Close() error {
	c.metrics.mu.Lock()
	delete(c.metrics.pools, c.connection)
	c.metrics.mu.Unlock()
	return c.conn.Close()
}

// Stats forwards pool statistics when the wrapped pool reports them.
func (c *instrumentedConn) Stats() driver.PoolStats {
	if st, ok := c.conn.(driver.StatsProvider); ok {
		return st.Stats()
	}
	return driver.PoolStats{}
}

// SQLDB forwards to the wrapped pool so migrations keep working.
func (c *instrumentedConn) SQLDB() (*sql.DB, func() error, error) {
	if p, ok := c.conn.(driver.SQLDBProvider); ok {
		return p.SQLDB()
	}
	return nil, nil, fmt.Errorf("connection %s does not expose database/sql", c.connection)
}

// Unwrap returns the decorated pool.
func (c *instrumentedConn) Unwrap() driver.Conn { return c.conn }

type instrumentedTx struct {
	instrumentedExecutor
	tx driver.Tx
}

func (t *instrumentedTx) Commit(ctx context.Context) error {
	start := time.Now()
	err := t.tx.Commit(ctx)
	t.metrics.record(ctx, t.connection, OpCommit, start, err)
	return err
}

func (t *instrumentedTx) Rollback(ctx context.Context) error {
	start := time.Now()
	err := t.tx.Rollback(ctx)
	t.metrics.record(ctx, t.connection, OpRollback, start, err)
	return err
}
