package data_test

import (
	"context"
	"testing"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	account := core.MustNewID()
	ctx := data.WithAccount(context.Background(), account)
	newRepo := func(t *testing.T) data.Repository[note] {
		return data.NewRepository[note](data.NewContext(newOptions(t, "blog")))
	}
	t.Run("Should stamp creation time and account on add", func(t *testing.T) {
		repo := newRepo(t)
		n := &note{ID: core.MustNewID(), Body: "hello"}
		require.NoError(t, repo.Add(ctx, n))
		assert.False(t, n.CreatedAt.IsZero())
		assert.Equal(t, account, n.CreatedBy)
		got, err := repo.Get(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Body)
		assert.Equal(t, account, got.CreatedBy)
	})
	t.Run("Should assign a new ID when the key is empty", func(t *testing.T) {
		repo := newRepo(t)
		n := &note{Body: "generated"}
		require.NoError(t, repo.Add(ctx, n))
		require.False(t, n.ID.IsZero())
		_, err := core.ParseID(n.ID.String())
		assert.NoError(t, err)
		exists, err := repo.Exists(ctx, n.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})
	t.Run("Should stamp modification on update and keep creation stamps", func(t *testing.T) {
		repo := newRepo(t)
		n := &note{ID: core.MustNewID(), Body: "v1"}
		require.NoError(t, repo.Add(context.Background(), n))
		n.Body = "v2"
		n.CreatedBy = core.MustNewID()
		require.NoError(t, repo.Update(ctx, n))
		got, err := repo.Get(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Body)
		assert.True(t, got.CreatedBy.IsZero())
		require.NotNil(t, got.ModifiedAt)
		assert.Equal(t, account, got.ModifiedBy)
	})
	t.Run("Should hide soft deleted rows", func(t *testing.T) {
		repo := newRepo(t)
		n := &note{ID: core.MustNewID(), Body: "x"}
		require.NoError(t, repo.Add(ctx, n))
		require.NoError(t, repo.SoftDelete(ctx, n.ID))
		ok, err := repo.Exists(ctx, n.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
		count, err := repo.Find().IncludeDeleted().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
	})
	t.Run("Should report missing rows as not found", func(t *testing.T) {
		repo := newRepo(t)
		missing := core.MustNewID()
		_, err := repo.Get(ctx, missing)
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, missing), core.ErrNotFound)
		assert.ErrorIs(t, repo.Update(ctx, &note{ID: missing}), core.ErrNotFound)
	})
	t.Run("Should delete rows", func(t *testing.T) {
		repo := newRepo(t)
		n := &note{ID: core.MustNewID(), Body: "x"}
		require.NoError(t, repo.Add(ctx, n))
		require.NoError(t, repo.Delete(ctx, n.ID))
		ok, err := repo.Find().IncludeDeleted().Exists(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
