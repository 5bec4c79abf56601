// Package sqlserver provides the microsoft/go-mssqldb backed dialect.
//
// Importing the package registers the dialect under "sqlserver" and "mssql".
package sqlserver

import (
	"context"
	sqldriver "database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/engine/infra/sqldb"
	mssql "github.com/microsoft/go-mssqldb"
)

// Name is the canonical dialect name.
const Name = "sqlserver"

// Server error numbers that mean the database cannot be reached.
const (
	errCannotOpenDatabase  = 4060
	errDatabaseUnavailable = 40613
	errUniqueConstraint    = 2627
	errUniqueIndex         = 2601
)

func init() {
	driver.Register(Dialect{}, "mssql")
}

// Dialect implements driver.Dialect for SQL Server.
type Dialect struct{}

func (Dialect) Name() string { return Name }

func (Dialect) Placeholder() squirrel.PlaceholderFormat { return squirrel.AtP }

func (Dialect) Quote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

// Paginate uses OFFSET/FETCH, which requires an ORDER BY clause.
func (Dialect) Paginate(sb squirrel.SelectBuilder, limit, offset uint64, ordered bool) squirrel.SelectBuilder {
	if !ordered {
		sb = sb.OrderBy("(SELECT NULL)")
	}
	return sb.Suffix("OFFSET ? ROWS FETCH NEXT ? ROWS ONLY", offset, limit)
}

func (Dialect) Open(_ context.Context, dsn string, pool driver.PoolSettings) (driver.Conn, error) {
	return sqldb.Open("sqlserver", dsn, pool)
}

func (Dialect) IsUnavailable(err error) bool {
	if errors.Is(err, sqldriver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == errCannotOpenDatabase || msErr.Number == errDatabaseUnavailable
	}
	return strings.Contains(err.Error(), "unable to open tcp connection")
}

func (Dialect) IsConflict(err error) bool {
	var msErr mssql.Error
	if !errors.As(err, &msErr) {
		return false
	}
	return msErr.Number == errUniqueConstraint || msErr.Number == errUniqueIndex
}

func (Dialect) MigrationDialect() string { return "mssql" }
