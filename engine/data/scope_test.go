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

func newBoundRegistry(t *testing.T) (*data.Registry, *data.Options) {
	t.Helper()
	reg := data.NewRegistry(logger.NewForTests())
	opts := newOptions(t, "Blog")
	require.NoError(t, reg.Register(opts))
	m := data.NewManifest("blog")
	data.Provide(m, newSQLiteNotes, "sqlite")
	data.Provide(m, func(*data.Context) AuditRepository { return nil }, "sqlserver")
	_, err := reg.Bind(m)
	require.NoError(t, err)
	return reg, opts
}

func TestScope(t *testing.T) {
	ctx := context.Background()
	t.Run("Should create exactly one context per module", func(t *testing.T) {
		reg, _ := newBoundRegistry(t)
		scope := reg.NewScope()
		defer scope.Close(ctx)
		assert.Empty(t, scope.Opened())
		first, err := scope.Context("blog")
		require.NoError(t, err)
		second, err := scope.Context("BLOG")
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, []string{"Blog"}, scope.Opened())
	})
	t.Run("Should give each scope its own context", func(t *testing.T) {
		reg, _ := newBoundRegistry(t)
		a, err := reg.NewScope().Context("blog")
		require.NoError(t, err)
		b, err := reg.NewScope().Context("blog")
		require.NoError(t, err)
		assert.NotSame(t, a, b)
		assert.Same(t, a.Options(), b.Options())
	})
	t.Run("Should return the same unit of work within a scope", func(t *testing.T) {
		reg, _ := newBoundRegistry(t)
		scope := reg.NewScope()
		u1, err := scope.UnitOfWork("blog")
		require.NoError(t, err)
		u2, err := scope.UnitOfWork("Blog")
		require.NoError(t, err)
		assert.Same(t, u1, u2)
	})
	t.Run("Should build repositories on the module context and cache them", func(t *testing.T) {
		reg, _ := newBoundRegistry(t)
		scope := reg.NewScope()
		repo, err := data.Resolve[NoteRepository](scope)
		require.NoError(t, err)
		again, err := data.Resolve[NoteRepository](scope)
		require.NoError(t, err)
		assert.Equal(t, repo, again)
		dc, err := scope.Context("blog")
		require.NoError(t, err)
		assert.Same(t, dc, repo.Context())
	})
	t.Run("Should share the transaction between repositories and the unit of work", func(t *testing.T) {
		reg, opts := newBoundRegistry(t)
		scope := reg.NewScope()
		uow, err := scope.UnitOfWork("blog")
		require.NoError(t, err)
		repo, err := data.Resolve[NoteRepository](scope)
		require.NoError(t, err)
		err = uow.Run(ctx, func(ctx context.Context) error {
			return repo.Add(ctx, &note{ID: core.MustNewID(), Body: "in tx"})
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), countNotes(t, opts))
	})
	t.Run("Should report unbound interfaces as context not found", func(t *testing.T) {
		reg, _ := newBoundRegistry(t)
		_, err := data.Resolve[AuditRepository](reg.NewScope())
		assert.ErrorIs(t, err, core.ErrContextNotFound)
		assert.ErrorContains(t, err, "binding not found")
	})
	t.Run("Should report unknown modules as context not found", func(t *testing.T) {
		reg, _ := newBoundRegistry(t)
		_, err := reg.NewScope().Context("admin")
		assert.ErrorIs(t, err, core.ErrContextNotFound)
		_, err = reg.NewScope().UnitOfWork("admin")
		assert.ErrorIs(t, err, core.ErrContextNotFound)
	})
	t.Run("Should roll back a dangling transaction on close", func(t *testing.T) {
		reg, opts := newBoundRegistry(t)
		scope := reg.NewScope()
		uow, err := scope.UnitOfWork("blog")
		require.NoError(t, err)
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, insertNote(ctx, uow.Context(), "dangling"))
		require.NoError(t, scope.Close(ctx))
		assert.Equal(t, data.RolledBack, uow.State())
		assert.Zero(t, countNotes(t, opts))
		_, err = scope.Context("blog")
		assert.ErrorIs(t, err, core.ErrInvalidState)
	})
}
