package postgres

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/jackc/pgx/v5/pgconn"
)

// Name is the canonical dialect name.
const Name = "postgres"

const uniqueViolation = "23505"

func init() {
	driver.Register(Dialect{}, "postgresql", "pgsql")
}

// Dialect implements driver.Dialect for PostgreSQL.
type Dialect struct{}

func (Dialect) Name() string { return Name }

func (Dialect) Placeholder() squirrel.PlaceholderFormat { return squirrel.Dollar }

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

func (Dialect) Open(ctx context.Context, dsn string, pool driver.PoolSettings) (driver.Conn, error) {
	return Open(ctx, dsn, pool)
}

func (Dialect) IsUnavailable(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (Dialect) IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (Dialect) MigrationDialect() string { return "postgres" }
