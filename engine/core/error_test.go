package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/compozy/modhost/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	t.Run("Should match sentinel by code", func(t *testing.T) {
		err := core.Errorf(core.CodeInvalidPaging, "page size must be positive, got %d", 0)
		assert.ErrorIs(t, err, core.ErrInvalidPaging)
		assert.NotErrorIs(t, err, core.ErrInvalidState)
	})
	t.Run("Should match through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("listing buttons: %w", core.Errorf(core.CodeQueryTranslation, "unknown column %q", "nope"))
		assert.ErrorIs(t, err, core.ErrQueryTranslation)
		assert.Equal(t, core.CodeQueryTranslation, core.CodeOf(err))
	})
	t.Run("Should keep the cause reachable", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := core.NewError(cause, core.CodeDataStoreUnavailable, nil)
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, core.ErrDataStoreUnavailable)
	})
}

func TestError_Error(t *testing.T) {
	t.Run("Should render details in key order", func(t *testing.T) {
		err := core.NewError(errors.New("no context"), core.CodeContextNotFound, map[string]any{
			"module":     "blog",
			"connection": "Blog",
		})
		assert.Equal(t, "no context (connection=Blog, module=blog)", err.Error())
	})
	t.Run("Should derive message from code when cause is nil", func(t *testing.T) {
		err := core.NewError(nil, core.CodeInvalidState, nil)
		assert.Equal(t, "invalid state error", err.Error())
	})
	t.Run("Should not mutate the receiver when adding details", func(t *testing.T) {
		base := core.NewError(errors.New("x"), core.CodeConfiguration, nil)
		withDetail := base.WithDetail("module", "admin")
		require.NotSame(t, base, withDetail)
		assert.Empty(t, base.Details)
		assert.Equal(t, "admin", withDetail.Details["module"])
	})
}
