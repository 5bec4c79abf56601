package data_test

import (
	"context"
	"testing"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AuditRepository is only implemented for SQL Server.
type AuditRepository interface {
	Count(ctx context.Context) (int64, error)
}

func TestManifest_Validate(t *testing.T) {
	t.Run("Should reject two implementations for one dialect", func(t *testing.T) {
		m := data.NewManifest("blog")
		data.Provide(m, newSQLiteNotes, "sqlite")
		data.Provide(m, newSQLiteNotes, "SQLite3")
		assert.ErrorIs(t, m.Validate(), core.ErrAmbiguousBinding)
	})
	t.Run("Should list interfaces and their dialects", func(t *testing.T) {
		m := data.NewManifest("blog")
		data.Provide(m, newSQLiteNotes, "SQLite", "sqlserver")
		require.Len(t, m.Interfaces(), 1)
		assert.Equal(t, []string{"sqlite", "sqlserver"}, m.Dialects(m.Interfaces()[0]))
		assert.NoError(t, m.Validate())
	})
}

func TestRegistry_Bind(t *testing.T) {
	t.Run("Should bind implementations for the connection dialect", func(t *testing.T) {
		reg := data.NewRegistry(logger.NewForTests())
		require.NoError(t, reg.Register(newOptions(t, "blog")))
		m := data.NewManifest("blog")
		data.Provide(m, newSQLiteNotes, "sqlite3")
		data.Provide(m, func(*data.Context) AuditRepository { return nil }, "sqlserver")
		report, err := reg.Bind(m)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", report.Dialect)
		assert.Len(t, report.Bound, 1)
		assert.Len(t, report.Unbound, 1)
		bindings := reg.Binder().Bindings()
		require.Len(t, bindings, 1)
		assert.Equal(t, "blog", bindings[0].Module)
	})
	t.Run("Should reject an interface declared by two modules", func(t *testing.T) {
		reg := data.NewRegistry(logger.NewForTests())
		require.NoError(t, reg.Register(newOptions(t, "blog")))
		require.NoError(t, reg.Register(newOptions(t, "admin")))
		blog := data.NewManifest("blog")
		data.Provide(blog, newSQLiteNotes, "sqlite")
		_, err := reg.Bind(blog)
		require.NoError(t, err)
		admin := data.NewManifest("admin")
		data.Provide(admin, newSQLiteNotes, "sqlite")
		_, err = reg.Bind(admin)
		assert.ErrorIs(t, err, core.ErrAmbiguousBinding)
		bindings := reg.Binder().Bindings()
		require.Len(t, bindings, 1)
		assert.Equal(t, "blog", bindings[0].Module)
	})
	t.Run("Should fail for a module without a registered context", func(t *testing.T) {
		reg := data.NewRegistry(logger.NewForTests())
		_, err := reg.Bind(data.NewManifest("ghost"))
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})
	t.Run("Should reject registering a connection twice", func(t *testing.T) {
		reg := data.NewRegistry(logger.NewForTests())
		opts := newOptions(t, "blog")
		require.NoError(t, reg.Register(opts))
		assert.ErrorIs(t, reg.Register(opts), core.ErrConfiguration)
	})
}
