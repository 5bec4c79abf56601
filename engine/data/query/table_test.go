package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type audit struct {
	CreatedAt time.Time `db:"created_at"`
	CreatedBy string
}

type widget struct {
	audit
	ID       string `db:"id"`
	HTTPPort int
	Secret   string `db:"-"`
	Label    string `db:"label" query:"computed"`
	hidden   int
}

func (widget) TableName() string { return "widget" }

type stamped struct {
	ModifiedAt *time.Time `db:"modified_at"`
}

func (stamped) TableName() string { return "stamped" }

func TestTableOf(t *testing.T) {
	t.Run("Should map tags, snake case names and embedded structs", func(t *testing.T) {
		table := TableOf[widget]()
		assert.Equal(t, "widget", table.Name)
		assert.Equal(t, []string{"created_at", "created_by", "id", "http_port"}, table.Columns())
		assert.True(t, table.Has("http_port"))
		assert.False(t, table.Has("label"))
		assert.False(t, table.Has("secret"))
	})
	t.Run("Should cache metadata per type", func(t *testing.T) {
		assert.Same(t, TableOf[widget](), TableOf[widget]())
	})
	t.Run("Should read and write column values", func(t *testing.T) {
		table := TableOf[widget]()
		w := &widget{ID: "w1", hidden: 1}
		require.True(t, table.Set(w, "created_by", "admin"))
		require.True(t, table.Set(w, "http_port", int64(8080)))
		assert.False(t, table.Set(w, "created_at", "not a time"))
		assert.False(t, table.Set(*w, "id", "x"))
		v, ok := table.Value(w, "created_by")
		require.True(t, ok)
		assert.Equal(t, "admin", v)
		cols, vals, err := table.Values(w)
		require.NoError(t, err)
		assert.Len(t, vals, len(cols))
		assert.Equal(t, 8080, vals[3])
	})
	t.Run("Should allocate pointer fields on set", func(t *testing.T) {
		table := TableOf[stamped]()
		s := &stamped{}
		now := time.Now()
		require.True(t, table.Set(s, "modified_at", now))
		require.NotNil(t, s.ModifiedAt)
		assert.True(t, now.Equal(*s.ModifiedAt))
	})
	t.Run("Should reject entities of another table", func(t *testing.T) {
		_, _, err := TableOf[widget]().Values(&post{})
		assert.Error(t, err)
	})
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ID":        "id",
		"AccountID": "account_id",
		"HTTPPort":  "http_port",
		"ParentId":  "parent_id",
		"Name":      "name",
	}
	for in, want := range cases {
		t.Run("Should convert "+in, func(t *testing.T) {
			assert.Equal(t, want, snakeCase(in))
		})
	}
}
