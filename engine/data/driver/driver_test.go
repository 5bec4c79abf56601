package driver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errDown = errors.New("connection refused")
	errDup  = errors.New("duplicate key")
)

type fakeDialect struct{ name string }

func (d fakeDialect) Name() string                          { return d.name }
func (fakeDialect) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }
func (fakeDialect) Quote(ident string) string               { return ident }
func (fakeDialect) MigrationDialect() string                { return "fake" }
func (fakeDialect) IsUnavailable(err error) bool            { return errors.Is(err, errDown) }
func (fakeDialect) IsConflict(err error) bool               { return errors.Is(err, errDup) }

func (fakeDialect) Paginate(sb squirrel.SelectBuilder, limit, offset uint64, _ bool) squirrel.SelectBuilder {
	return sb.Limit(limit).Offset(offset)
}

func (fakeDialect) Open(context.Context, string, driver.PoolSettings) (driver.Conn, error) {
	return nil, errors.New("not supported")
}

func TestRegistry(t *testing.T) {
	driver.Register(fakeDialect{name: "fakedb"}, "FakeDatabase")

	t.Run("Should look dialects up by name and alias ignoring case", func(t *testing.T) {
		for _, name := range []string{"fakedb", "FAKEDB", " fakedatabase "} {
			d, err := driver.Lookup(name)
			require.NoError(t, err)
			assert.Equal(t, "fakedb", d.Name())
		}
		assert.Contains(t, driver.Dialects(), "fakedb")
	})
	t.Run("Should reject unknown dialects", func(t *testing.T) {
		_, err := driver.Lookup("oracle")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrDialectNotSupported)
	})
	t.Run("Should panic on duplicate registration", func(t *testing.T) {
		assert.Panics(t, func() { driver.Register(fakeDialect{name: "other"}, "fakedatabase") })
	})
}

func TestClassify(t *testing.T) {
	d := fakeDialect{name: "fake"}
	t.Run("Should map connectivity failures to DataStoreUnavailable", func(t *testing.T) {
		err := driver.Classify(d, errDown)
		assert.ErrorIs(t, err, core.ErrDataStoreUnavailable)
		assert.ErrorIs(t, err, errDown)
	})
	t.Run("Should map key violations to AlreadyExists", func(t *testing.T) {
		assert.ErrorIs(t, driver.Classify(d, errDup), core.ErrAlreadyExists)
	})
	t.Run("Should keep other and already classified errors", func(t *testing.T) {
		other := errors.New("syntax error")
		assert.Same(t, other, driver.Classify(d, other))
		classified := core.Errorf(core.CodeNotFound, "missing")
		assert.Same(t, classified, driver.Classify(d, classified))
		assert.NoError(t, driver.Classify(d, nil))
	})
}
