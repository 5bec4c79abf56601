// Package mysql provides the go-sql-driver/mysql backed dialect.
//
// Importing the package registers the dialect under "mysql" and "mariadb".
package mysql

import (
	"context"
	sqldriver "database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/engine/infra/sqldb"
	"github.com/go-sql-driver/mysql"
)

// Name is the canonical dialect name.
const Name = "mysql"

// errDuplicateEntry is ER_DUP_ENTRY.
const errDuplicateEntry = 1062

func init() {
	driver.Register(Dialect{}, "mariadb")
}

// Dialect implements driver.Dialect for MySQL.
type Dialect struct{}

func (Dialect) Name() string { return Name }

func (Dialect) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }

func (Dialect) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (Dialect) Paginate(sb squirrel.SelectBuilder, limit, offset uint64, _ bool) squirrel.SelectBuilder {
	sb = sb.Limit(limit)
	if offset > 0 {
		sb = sb.Offset(offset)
	}
	return sb
}

func (Dialect) Open(_ context.Context, dsn string, pool driver.PoolSettings) (driver.Conn, error) {
	normalized, err := buildDSN(dsn)
	if err != nil {
		return nil, err
	}
	return sqldb.Open("mysql", normalized, pool)
}

func (Dialect) IsUnavailable(err error) bool {
	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sqldriver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (Dialect) IsConflict(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDuplicateEntry
}

func (Dialect) MigrationDialect() string { return "mysql" }
