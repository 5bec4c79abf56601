package data_test

import (
	"context"
	"errors"
	"testing"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork(t *testing.T) {
	ctx := context.Background()
	t.Run("Should commit writes made inside the transaction", func(t *testing.T) {
		opts := newOptions(t, "blog")
		uow := data.NewUnitOfWork(data.NewContext(opts))
		require.NoError(t, uow.Begin(ctx))
		assert.Equal(t, data.InTransaction, uow.State())
		assert.True(t, uow.Context().InTransaction())
		require.NoError(t, insertNote(ctx, uow.Context(), "a"))
		require.NoError(t, uow.Commit(ctx))
		assert.Equal(t, data.Committed, uow.State())
		assert.False(t, uow.Context().InTransaction())
		assert.Equal(t, int64(1), countNotes(t, opts))
	})
	t.Run("Should discard writes on rollback", func(t *testing.T) {
		opts := newOptions(t, "blog")
		uow := data.NewUnitOfWork(data.NewContext(opts))
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, insertNote(ctx, uow.Context(), "a"))
		require.NoError(t, uow.Rollback(ctx))
		assert.Equal(t, data.RolledBack, uow.State())
		assert.Zero(t, countNotes(t, opts))
	})
	t.Run("Should reject a nested begin", func(t *testing.T) {
		opts := newOptions(t, "blog")
		uow := data.NewUnitOfWork(data.NewContext(opts))
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback(ctx)
		assert.ErrorIs(t, uow.Begin(ctx), core.ErrInvalidState)
		assert.Equal(t, data.InTransaction, uow.State())
	})
	t.Run("Should not be reusable after a terminal state", func(t *testing.T) {
		opts := newOptions(t, "blog")
		uow := data.NewUnitOfWork(data.NewContext(opts))
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.Commit(ctx))
		assert.ErrorIs(t, uow.Begin(ctx), core.ErrInvalidState)
	})
	t.Run("Should treat commit and rollback without a transaction as no-ops", func(t *testing.T) {
		opts := newOptions(t, "blog")
		uow := data.NewUnitOfWork(data.NewContext(opts))
		assert.NoError(t, uow.Commit(ctx))
		assert.NoError(t, uow.Rollback(ctx))
		assert.Equal(t, data.Idle, uow.State())
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.Rollback(ctx))
		assert.NoError(t, uow.Commit(ctx))
		assert.Equal(t, data.RolledBack, uow.State())
	})
	t.Run("Should autocommit writes after the transaction ended", func(t *testing.T) {
		opts := newOptions(t, "blog")
		uow := data.NewUnitOfWork(data.NewContext(opts))
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.Rollback(ctx))
		require.NoError(t, insertNote(ctx, uow.Context(), "after"))
		assert.Equal(t, int64(1), countNotes(t, opts))
	})
}

func TestUnitOfWork_Run(t *testing.T) {
	ctx := context.Background()
	t.Run("Should commit when the function succeeds", func(t *testing.T) {
		opts := newOptions(t, "blog")
		uow := data.NewUnitOfWork(data.NewContext(opts))
		err := uow.Run(ctx, func(ctx context.Context) error {
			return insertNote(ctx, uow.Context(), "a")
		})
		require.NoError(t, err)
		assert.Equal(t, data.Committed, uow.State())
		assert.Equal(t, int64(1), countNotes(t, opts))
	})
	t.Run("Should roll back and return the function error", func(t *testing.T) {
		opts := newOptions(t, "blog")
		uow := data.NewUnitOfWork(data.NewContext(opts))
		boom := errors.New("boom")
		err := uow.Run(ctx, func(ctx context.Context) error {
			require.NoError(t, insertNote(ctx, uow.Context(), "a"))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, data.RolledBack, uow.State())
		assert.Zero(t, countNotes(t, opts))
	})
	t.Run("Should roll back and re-raise panics", func(t *testing.T) {
		opts := newOptions(t, "blog")
		uow := data.NewUnitOfWork(data.NewContext(opts))
		assert.PanicsWithValue(t, "kaboom", func() {
			_ = uow.Run(ctx, func(ctx context.Context) error {
				require.NoError(t, insertNote(ctx, uow.Context(), "a"))
				panic("kaboom")
			})
		})
		assert.Equal(t, data.RolledBack, uow.State())
		assert.Zero(t, countNotes(t, opts))
	})
}

func TestState_String(t *testing.T) {
	t.Run("Should name every state", func(t *testing.T) {
		assert.Equal(t, "idle", data.Idle.String())
		assert.Equal(t, "in_transaction", data.InTransaction.String())
		assert.Equal(t, "committed", data.Committed.String())
		assert.Equal(t, "rolled_back", data.RolledBack.String())
	})
}
