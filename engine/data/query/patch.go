package query

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/driver"
)

// Patch maps column names to new values for a partial update.
type Patch map[string]any

// Set starts a patch.
func Set(column string, value any) Patch {
	return Patch{column: value}
}

// Set adds a column to the patch.
func (p Patch) Set(column string, value any) Patch {
	p[column] = value
	return p
}

// Insert writes every persisted column of entity into T's table.
func Insert[T Entity](ctx context.Context, s Session, entity *T) error {
	table := TableOf[T]()
	if entity == nil {
		return core.Errorf(core.CodeQueryTranslation, "insert into %s: nil entity", table.Name)
	}
	cols, vals, err := table.Values(entity)
	if err != nil {
		return core.NewError(err, core.CodeQueryTranslation, nil)
	}
	d := s.Dialect()
	sql, args, err := toSQL(squirrel.Insert(d.Quote(table.Name)).
		Columns(quoteAll(d, cols)...).
		Values(vals...).
		PlaceholderFormat(d.Placeholder()))
	if err != nil {
		return err
	}
	if _, err := s.Executor().Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table.Name, driver.Classify(s.Dialect(), err))
	}
	return nil
}
