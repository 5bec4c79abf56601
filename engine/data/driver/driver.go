// Package driver defines the capability interface every SQL dialect
// implements and the registry dialects are looked up from.
//
// Dialects are registered explicitly (usually from an init function of the
// dialect package) instead of being discovered by naming convention.
package driver

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/core"
)

// Executor runs statements. Select scans all rows into dst (a pointer to a
// slice); Get scans exactly one row into dst.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Select(ctx context.Context, dst any, query string, args ...any) error
	Get(ctx context.Context, dst any, query string, args ...any) error
}

// Tx is an open transaction.
type Tx interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is a process-wide connection pool for one configured connection.
type Conn interface {
	Executor
	Begin(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
	Close() error
}

// PoolStats is a driver-neutral snapshot of pool usage.
type PoolStats struct {
	MaxOpen int
	Open    int
	InUse   int
	Idle    int
}

// StatsProvider is implemented by pools that can report usage.
type StatsProvider interface {
	Stats() PoolStats
}

// SQLDBProvider is implemented by pools that can expose a *database/sql
// handle, e.g. for schema migrations.
type SQLDBProvider interface {
	SQLDB() (db *sql.DB, release func() error, err error)
}

// PoolSettings carries the pool tuning of a configured connection.
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Dialect is the capability interface of one SQL backend.
type Dialect interface {
	// Name is the canonical lowercase dialect name.
	Name() string
	// Placeholder is the bind parameter style.
	Placeholder() squirrel.PlaceholderFormat
	// Quote quotes an identifier.
	Quote(ident string) string
	// Paginate applies limit/offset. ordered reports whether the statement
	// already has an ORDER BY clause.
	Paginate(sb squirrel.SelectBuilder, limit, offset uint64, ordered bool) squirrel.SelectBuilder
	// Open creates the pool. Implementations must not dial eagerly.
	Open(ctx context.Context, dsn string, pool PoolSettings) (Conn, error)
	// IsUnavailable reports whether err means the store could not be reached.
	IsUnavailable(err error) bool
	// IsConflict reports whether err is a unique or primary key violation.
	IsConflict(err error) bool
	// MigrationDialect is the goose dialect name.
	MigrationDialect() string
}

var (
	registryMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

// Register makes a dialect available under its name and aliases.
// Registering a name twice panics, mirroring database/sql.Register.
func Register(d Dialect, aliases ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, name := range append([]string{d.Name()}, aliases...) {
		key := normalize(name)
		if _, dup := dialects[key]; dup {
			panic(fmt.Sprintf("driver: dialect %q registered twice", name))
		}
		dialects[key] = d
	}
}

// Lookup returns the dialect registered under name, case-insensitively.
func Lookup(name string) (Dialect, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := dialects[normalize(name)]
	if !ok {
		return nil, core.NewError(
			fmt.Errorf("dialect %q is not registered", name),
			core.CodeDialectNotSupported,
			map[string]any{"dialect": name},
		)
	}
	return d, nil
}

// Dialects lists canonical names of registered dialects.
func Dialects() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	seen := map[string]struct{}{}
	for _, d := range dialects {
		seen[d.Name()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Classify converts a driver error into the taxonomy. Connectivity failures
// become DataStoreUnavailable and key violations AlreadyExists; everything
// else is returned unchanged.
func Classify(d Dialect, err error) error {
	if err == nil || d == nil {
		return err
	}
	if core.CodeOf(err) != "" {
		return err
	}
	if d.IsUnavailable(err) {
		return core.NewError(err, core.CodeDataStoreUnavailable, map[string]any{"dialect": d.Name()})
	}
	if d.IsConflict(err) {
		return core.NewError(err, core.CodeAlreadyExists, map[string]any{"dialect": d.Name()})
	}
	return err
}
