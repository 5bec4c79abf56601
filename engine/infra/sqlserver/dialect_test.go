package sqlserver

import (
	"context"
	"errors"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/data/driver"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	d := Dialect{}
	t.Run("Should be registered under its aliases", func(t *testing.T) {
		for _, name := range []string{"SqlServer", "mssql"} {
			got, err := driver.Lookup(name)
			require.NoError(t, err)
			assert.Equal(t, Name, got.Name())
		}
	})
	t.Run("Should quote identifiers with brackets", func(t *testing.T) {
		assert.Equal(t, "[key]", d.Quote("key"))
		assert.Equal(t, "[a]]b]", d.Quote("a]b"))
	})
	t.Run("Should use @p placeholders", func(t *testing.T) {
		sql, _, err := squirrel.Select("*").From("t").Where(squirrel.Eq{"a": 1}).
			PlaceholderFormat(d.Placeholder()).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM t WHERE a = @p1", sql)
	})
	t.Run("Should paginate with OFFSET FETCH after the sort", func(t *testing.T) {
		sb := squirrel.Select("*").From("t").Where(squirrel.Eq{"a": 1}).OrderBy("a DESC").PlaceholderFormat(squirrel.AtP)
		sql, args, err := d.Paginate(sb, 10, 20, true).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM t WHERE a = @p1 ORDER BY a DESC OFFSET @p2 ROWS FETCH NEXT @p3 ROWS ONLY", sql)
		assert.Equal(t, []any{1, uint64(20), uint64(10)}, args)
	})
	t.Run("Should add a neutral sort when unordered", func(t *testing.T) {
		sb := squirrel.Select("1").From("t").PlaceholderFormat(squirrel.AtP)
		sql, _, err := d.Paginate(sb, 1, 0, false).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT 1 FROM t ORDER BY (SELECT NULL) OFFSET @p1 ROWS FETCH NEXT @p2 ROWS ONLY", sql)
	})
	t.Run("Should classify connectivity errors", func(t *testing.T) {
		assert.True(t, d.IsUnavailable(mssql.Error{Number: errCannotOpenDatabase}))
		assert.True(t, d.IsUnavailable(errors.New("unable to open tcp connection with host 'x:1433'")))
		assert.False(t, d.IsUnavailable(mssql.Error{Number: 2627}))
	})
	t.Run("Should classify key violations as conflicts", func(t *testing.T) {
		assert.True(t, d.IsConflict(mssql.Error{Number: errUniqueConstraint}))
		assert.True(t, d.IsConflict(mssql.Error{Number: errUniqueIndex}))
		assert.False(t, d.IsConflict(mssql.Error{Number: errCannotOpenDatabase}))
	})
	t.Run("Should open without dialing", func(t *testing.T) {
		conn, err := d.Open(context.Background(), "server=127.0.0.1;port=1;database=admin;user id=sa;password=pw", driver.PoolSettings{})
		require.NoError(t, err)
		assert.NoError(t, conn.Close())
	})
}
