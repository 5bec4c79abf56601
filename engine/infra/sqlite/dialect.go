package sqlite

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/engine/infra/sqldb"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Name is the canonical dialect name.
const Name = "sqlite"

func init() {
	driver.Register(Dialect{}, "sqlite3")
}

// Dialect implements driver.Dialect for SQLite.
type Dialect struct{}

func (Dialect) Name() string { return Name }

func (Dialect) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }

func (Dialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (Dialect) Paginate(sb squirrel.SelectBuilder, limit, offset uint64, _ bool) squirrel.SelectBuilder {
	sb = sb.Limit(limit)
	if offset > 0 {
		sb = sb.Offset(offset)
	}
	return sb
}

func (Dialect) Open(_ context.Context, dsn string, pool driver.PoolSettings) (driver.Conn, error) {
	return sqldb.Open("sqlite", buildDSN(dsn), pool)
}

func (Dialect) IsUnavailable(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
		return true
	}
	return false
}

func (Dialect) IsConflict(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func (Dialect) MigrationDialect() string { return "sqlite3" }
