package data

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/query"
)

// Columns the base repository keys on or stamps when a table has them.
const (
	ColumnID         = "id"
	ColumnCreatedAt  = "created_at"
	ColumnCreatedBy  = "created_by"
	ColumnModifiedAt = "modified_at"
	ColumnModifiedBy = "modified_by"
	ColumnDeletedAt  = "deleted_at"
	ColumnDeletedBy  = "deleted_by"
)

// Repository implements the CRUD operations shared by every entity keyed
// by an "id" column. Module repositories embed it and add their queries.
type Repository[T query.Entity] struct {
	dc    *Context
	table *query.Table
}

func NewRepository[T query.Entity](dc *Context) Repository[T] {
	return Repository[T]{dc: dc, table: query.TableOf[T]()}
}

// Context is the data context the repository runs on.
func (r Repository[T]) Context() *Context { return r.dc }

// Find starts a query on T.
func (r Repository[T]) Find(preds ...query.Predicate) *query.Builder[T] {
	return query.Find[T](r.dc, preds...)
}

func (r Repository[T]) byID(id any) *query.Builder[T] {
	return r.Find(query.Eq(query.F(ColumnID), id))
}

// Add inserts e, stamping creation time and the acting account. A zero
// text key is filled with a new ID.
func (r Repository[T]) Add(ctx context.Context, e *T) error {
	if v, ok := r.table.Value(e, ColumnID); ok && isZero(v) {
		id, err := core.NewID()
		if err != nil {
			return err
		}
		r.table.Set(e, ColumnID, id)
	}
	if r.table.Has(ColumnCreatedAt) {
		if v, _ := r.table.Value(e, ColumnCreatedAt); isZero(v) {
			r.table.Set(e, ColumnCreatedAt, time.Now().UTC())
		}
	}
	if r.table.Has(ColumnCreatedBy) {
		if id, ok := r.dc.Accessor().AccountID(ctx); ok {
			r.table.Set(e, ColumnCreatedBy, id)
		}
	}
	return query.Insert(ctx, r.dc, e)
}

// Get returns the entity with id or a NOT_FOUND error.
func (r Repository[T]) Get(ctx context.Context, id any) (*T, error) {
	return r.byID(id).First(ctx)
}

func (r Repository[T]) Exists(ctx context.Context, id any) (bool, error) {
	return r.byID(id).Exists(ctx)
}

// GetAll returns every visible row.
func (r Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.Find().ToList(ctx)
}

// Update writes every persisted column of e except the key and creation
// stamps, stamping modification time and account.
func (r Repository[T]) Update(ctx context.Context, e *T) error {
	id, ok := r.table.Value(e, ColumnID)
	if !ok {
		return core.Errorf(core.CodeQueryTranslation, "%s has no %s column", r.table.Name, ColumnID)
	}
	if r.table.Has(ColumnModifiedAt) {
		r.table.Set(e, ColumnModifiedAt, time.Now().UTC())
	}
	if r.table.Has(ColumnModifiedBy) {
		if account, ok := r.dc.Accessor().AccountID(ctx); ok {
			r.table.Set(e, ColumnModifiedBy, account)
		}
	}
	cols, vals, err := r.table.Values(e)
	if err != nil {
		return core.NewError(err, core.CodeQueryTranslation, nil)
	}
	patch := query.Patch{}
	for i, col := range cols {
		switch col {
		case ColumnID, ColumnCreatedAt, ColumnCreatedBy:
			continue
		}
		patch[col] = vals[i]
	}
	n, err := r.byID(id).Update(ctx, patch)
	if err != nil {
		return err
	}
	return r.affected(n, id)
}

// Delete removes the row with id, soft deleted or not.
func (r Repository[T]) Delete(ctx context.Context, id any) error {
	n, err := r.byID(id).IncludeDeleted().Delete(ctx)
	if err != nil {
		return err
	}
	return r.affected(n, id)
}

// SoftDelete flags the row with id as deleted. The table must have a
// deleted column.
func (r Repository[T]) SoftDelete(ctx context.Context, id any) error {
	if !r.table.Has(query.SoftDeleteColumn) {
		return core.Errorf(core.CodeQueryTranslation, "%s does not support soft delete", r.table.Name)
	}
	patch := query.Set(query.SoftDeleteColumn, true)
	if r.table.Has(ColumnDeletedAt) {
		patch.Set(ColumnDeletedAt, time.Now().UTC())
	}
	if r.table.Has(ColumnDeletedBy) {
		if account, ok := r.dc.Accessor().AccountID(ctx); ok {
			patch.Set(ColumnDeletedBy, account)
		}
	}
	n, err := r.byID(id).Update(ctx, patch)
	if err != nil {
		return err
	}
	return r.affected(n, id)
}

func (r Repository[T]) affected(n int64, id any) error {
	if n == 0 {
		return core.NewError(
			fmt.Errorf("%s %v not found", r.table.Name, id),
			core.CodeNotFound,
			map[string]any{"table": r.table.Name},
		)
	}
	return nil
}

func isZero(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}
