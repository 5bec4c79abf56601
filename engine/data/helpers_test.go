package data_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	_ "github.com/compozy/modhost/engine/infra/sqlite"
	"github.com/compozy/modhost/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeModule struct {
	id     string
	noData bool
	tables []string
}

func (m fakeModule) ModuleID() string       { return m.id }
func (m fakeModule) HasData() bool          { return !m.noData }
func (m fakeModule) EntityTables() []string { return m.tables }

type note struct {
	ID         core.ID    `db:"id"`
	Body       string     `db:"body"`
	Deleted    bool       `db:"deleted"`
	CreatedAt  time.Time  `db:"created_at"`
	CreatedBy  core.ID    `db:"created_by"`
	ModifiedAt *time.Time `db:"modified_at"`
	ModifiedBy core.ID    `db:"modified_by"`
}

func (note) TableName() string { return "note" }

const noteSchema = `CREATE TABLE note (
	id TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	deleted BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	created_by TEXT NULL,
	modified_at DATETIME NULL,
	modified_by TEXT NULL
)`

// NoteRepository is the capability interface the binder tests bind.
type NoteRepository interface {
	Add(ctx context.Context, n *note) error
	Get(ctx context.Context, id any) (*note, error)
	Context() *data.Context
}

type sqliteNotes struct {
	data.Repository[note]
}

func newSQLiteNotes(dc *data.Context) NoteRepository {
	return sqliteNotes{Repository: data.NewRepository[note](dc)}
}

func newOptions(t *testing.T, module string) *data.Options {
	t.Helper()
	ctx := context.Background()
	f := data.NewFactory(logger.NewForTests())
	opts, err := f.Create(ctx, data.Connection{
		Name:             module,
		Dialect:          "sqlite",
		ConnectionString: filepath.Join(t.TempDir(), module+".db"),
	}, fakeModule{id: module, tables: []string{"note"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = opts.Close() })
	_, err = opts.Pool().Exec(ctx, noteSchema)
	require.NoError(t, err)
	return opts
}

func countNotes(t *testing.T, opts *data.Options) int64 {
	t.Helper()
	var n int64
	require.NoError(t, opts.Pool().Get(context.Background(), &n, `SELECT COUNT(*) FROM note`))
	return n
}

func insertNote(ctx context.Context, dc *data.Context, body string) error {
	_, err := dc.Executor().Exec(ctx, `INSERT INTO note (id, body, created_at) VALUES (?, ?, ?)`,
		core.MustNewID(), body, time.Now().UTC())
	return err
}
