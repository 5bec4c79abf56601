package core_test

import (
	"testing"

	"github.com/compozy/modhost/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_IsZero(t *testing.T) {
	t.Run("Should return true for zero-value ID", func(t *testing.T) {
		var zeroID core.ID
		assert.True(t, zeroID.IsZero())
	})
	t.Run("Should return false for generated ID", func(t *testing.T) {
		assert.False(t, core.MustNewID().IsZero())
	})
}

func TestNewID(t *testing.T) {
	t.Run("Should generate unique parseable IDs", func(t *testing.T) {
		id1, err := core.NewID()
		require.NoError(t, err)
		id2 := core.MustNewID()
		assert.NotEqual(t, id1, id2)
		parsed, err := core.ParseID(id1.String())
		require.NoError(t, err)
		assert.Equal(t, id1, parsed)
	})
}

func TestParseID(t *testing.T) {
	t.Run("Should return error for empty string", func(t *testing.T) {
		id, err := core.ParseID("")
		assert.ErrorContains(t, err, "empty ID")
		assert.True(t, id.IsZero())
	})
	t.Run("Should return error for invalid format", func(t *testing.T) {
		_, err := core.ParseID("not-a-valid-ksuid")
		assert.ErrorContains(t, err, "invalid ID format")
	})
}

func TestID_SQL(t *testing.T) {
	t.Run("Should bind the zero ID as NULL", func(t *testing.T) {
		v, err := core.ID("").Value()
		require.NoError(t, err)
		assert.Nil(t, v)
		v, err = core.ID("abc").Value()
		require.NoError(t, err)
		assert.Equal(t, "abc", v)
	})
	t.Run("Should scan text, bytes and NULL", func(t *testing.T) {
		var id core.ID
		require.NoError(t, id.Scan("a"))
		assert.Equal(t, core.ID("a"), id)
		require.NoError(t, id.Scan([]byte("b")))
		assert.Equal(t, core.ID("b"), id)
		require.NoError(t, id.Scan(nil))
		assert.True(t, id.IsZero())
		assert.Error(t, id.Scan(42))
	})
}
