// Package migrate applies the schema migrations a module embeds for its
// connection's dialect.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"unicode"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/pkg/logger"
	"github.com/pressly/goose/v3"
)

const defaultTableName = "goose_db_version"

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// TableName is the version table of module. Each module keeps its own so
// modules sharing a database do not see each other's versions.
func TableName(module string) string {
	var b strings.Builder
	b.WriteString("goose_")
	for _, r := range strings.ToLower(module) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteString("_version")
	return b.String()
}

// Up applies every pending migration in fsys (SQL files at its root) and
// returns the resulting version.
func Up(ctx context.Context, opts *data.Options, fsys fs.FS) (int64, error) {
	var version int64
	err := run(ctx, opts, fsys, func(db *sql.DB) error {
		if err := goose.UpContext(ctx, db, "."); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		v, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		version = v
		return nil
	})
	if err != nil {
		return 0, err
	}
	opts.Logger().Info("Migrations applied", "module", opts.Module(), "dialect", opts.Dialect().Name(), "version", version)
	return version, nil
}

// Version returns the applied version of the module, 0 when none.
func Version(ctx context.Context, opts *data.Options) (int64, error) {
	var version int64
	err := run(ctx, opts, nil, func(db *sql.DB) error {
		v, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

func run(ctx context.Context, opts *data.Options, fsys fs.FS, fn func(*sql.DB) error) error {
	provider, ok := opts.Pool().(driver.SQLDBProvider)
	if !ok {
		return core.Errorf(core.CodeConfiguration, "connection %s cannot run migrations", opts.Module())
	}
	db, release, err := provider.SQLDB()
	if err != nil {
		return fmt.Errorf("connection %s: %w", opts.Module(), err)
	}
	defer func() {
		if err := release(); err != nil {
			opts.Logger().Warn("Failed to release migration handle", "module", opts.Module(), "error", err)
		}
	}()

	gooseMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		goose.SetTableName(defaultTableName)
		gooseMu.Unlock()
	}()
	goose.SetLogger(gooseLogger{log: logger.FromContext(ctx).With("module", opts.Module())})
	goose.SetBaseFS(fsys)
	goose.SetTableName(TableName(opts.Module()))
	if err := goose.SetDialect(opts.Dialect().MigrationDialect()); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := fn(db); err != nil {
		return fmt.Errorf("connection %s: %w", opts.Module(), driver.Classify(opts.Dialect(), err))
	}
	return nil
}

// gooseLogger routes goose output to the structured logger.
type gooseLogger struct {
	log logger.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
