package sqldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/compozy/modhost/engine/data/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type note struct {
	ID   int64  `db:"id"`
	Body string `db:"body"`
}

func openTestConn(t *testing.T) *Conn {
	t.Helper()
	conn, err := Open("sqlite", filepath.Join(t.TempDir(), "notes.db"), driver.PoolSettings{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_, err = conn.Exec(context.Background(), `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL)`)
	require.NoError(t, err)
	return conn
}

func TestConn(t *testing.T) {
	ctx := context.Background()
	t.Run("Should not open connections before first use", func(t *testing.T) {
		conn, err := Open("sqlite", filepath.Join(t.TempDir(), "lazy.db"), driver.PoolSettings{MaxOpenConns: 2})
		require.NoError(t, err)
		defer conn.Close()
		stats := conn.Stats()
		assert.Equal(t, 0, stats.Open)
		assert.Equal(t, 2, stats.MaxOpen)
	})
	t.Run("Should exec select and get rows", func(t *testing.T) {
		conn := openTestConn(t)
		n, err := conn.Exec(ctx, `INSERT INTO notes (id, body) VALUES (?, ?), (?, ?)`, 1, "a", 2, "b")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		var all []note
		require.NoError(t, conn.Select(ctx, &all, `SELECT id, body FROM notes ORDER BY id`))
		assert.Equal(t, []note{{1, "a"}, {2, "b"}}, all)
		var one note
		require.NoError(t, conn.Get(ctx, &one, `SELECT id, body FROM notes WHERE id = ?`, 2))
		assert.Equal(t, "b", one.Body)
	})
	t.Run("Should discard rolled back writes", func(t *testing.T) {
		conn := openTestConn(t)
		tx, err := conn.Begin(ctx)
		require.NoError(t, err)
		_, err = tx.Exec(ctx, `INSERT INTO notes (id, body) VALUES (1, 'x')`)
		require.NoError(t, err)
		require.NoError(t, tx.Rollback(ctx))
		var count int64
		require.NoError(t, conn.Get(ctx, &count, `SELECT COUNT(*) FROM notes`))
		assert.Zero(t, count)
	})
	t.Run("Should expose the pool for migrations", func(t *testing.T) {
		conn := openTestConn(t)
		db, release, err := conn.SQLDB()
		require.NoError(t, err)
		assert.Same(t, conn.DB(), db)
		assert.NoError(t, release())
	})
}
