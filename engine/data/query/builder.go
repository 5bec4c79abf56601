package query

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/pkg/logger"
)

// SoftDeleteColumn marks tables whose rows are hidden instead of deleted.
const SoftDeleteColumn = "deleted"

// Session is what a query runs against: the dialect to compile for and
// the executor (pool or open transaction) to run on.
type Session interface {
	Dialect() driver.Dialect
	Executor() driver.Executor
}

// Builder accumulates a query against one primary entity. Builder methods
// mutate and return the receiver; a builder is not safe for concurrent use.
type Builder[T Entity] struct {
	session        Session
	steps          []step
	filters        []Predicate
	selections     []Selection
	orders         []order
	includeDeleted bool
}

// Find starts a query on T. Non-nil predicates become the base filter.
func Find[T Entity](s Session, preds ...Predicate) *Builder[T] {
	b := &Builder[T]{
		session: s,
		steps:   []step{{table: TableOf[T](), kind: joinPrimary}},
	}
	for _, p := range preds {
		b.Where(p)
	}
	return b
}

// Where appends a filter. Filters are combined with AND in call order.
func (b *Builder[T]) Where(p Predicate) *Builder[T] {
	if p != nil {
		b.filters = append(b.filters, p)
	}
	return b
}

// WhereIf appends p only when cond is true.
func (b *Builder[T]) WhereIf(cond bool, p Predicate) *Builder[T] {
	if cond {
		return b.Where(p)
	}
	return b
}

// InnerJoin joins table; on may reference any entity up to and including
// the new one, whose position is the number of entities before it.
func (b *Builder[T]) InnerJoin(table *Table, on Predicate) *Builder[T] {
	b.steps = append(b.steps, step{table: table, kind: joinInner, on: on})
	return b
}

// LeftJoin is InnerJoin keeping primary rows without a match.
func (b *Builder[T]) LeftJoin(table *Table, on Predicate) *Builder[T] {
	b.steps = append(b.steps, step{table: table, kind: joinLeft, on: on})
	return b
}

// Select replaces the projection. Without it only the primary entity's
// columns are returned.
func (b *Builder[T]) Select(selections ...Selection) *Builder[T] {
	b.selections = append([]Selection(nil), selections...)
	return b
}

// OrderBy appends an ascending sort key. The first key is the primary sort.
func (b *Builder[T]) OrderBy(f Field) *Builder[T] {
	b.orders = append(b.orders, order{field: f})
	return b
}

// OrderByDescending appends a descending sort key.
func (b *Builder[T]) OrderByDescending(f Field) *Builder[T] {
	b.orders = append(b.orders, order{field: f, desc: true})
	return b
}

// IncludeDeleted disables the soft-delete filter.
func (b *Builder[T]) IncludeDeleted() *Builder[T] {
	b.includeDeleted = true
	return b
}

// HasOrder reports whether any sort key was added.
func (b *Builder[T]) HasOrder() bool {
	return len(b.orders) > 0
}

func (b *Builder[T]) compiler(qualified bool) *compiler {
	return &compiler{dialect: b.session.Dialect(), steps: b.steps, qualified: qualified}
}

func (b *Builder[T]) activeFilters() []Predicate {
	primary := b.steps[0].table
	if b.includeDeleted || !primary.Has(SoftDeleteColumn) {
		return b.filters
	}
	return append([]Predicate{Eq(F(SoftDeleteColumn), false)}, b.filters...)
}

func (b *Builder[T]) baseSelect(c *compiler, columns ...string) (squirrel.SelectBuilder, error) {
	sb := squirrel.Select(columns...).From(c.from()).PlaceholderFormat(c.dialect.Placeholder())
	var err error
	for pos := 1; pos < len(c.steps); pos++ {
		if sb, err = c.join(sb, pos); err != nil {
			return sb, err
		}
	}
	for _, p := range b.activeFilters() {
		s, err := c.predicate(p)
		if err != nil {
			return sb, err
		}
		sb = sb.Where(s)
	}
	return sb, nil
}

func (b *Builder[T]) projection(c *compiler) ([]string, error) {
	if len(b.selections) == 0 {
		return []string{alias(0) + ".*"}, nil
	}
	cols := make([]string, 0, len(b.selections))
	for _, s := range b.selections {
		col, err := c.selection(s)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (b *Builder[T]) applyOrders(c *compiler, sb squirrel.SelectBuilder, extra []order) (squirrel.SelectBuilder, bool, error) {
	all := append(append([]order(nil), extra...), b.orders...)
	for _, o := range all {
		clause, err := c.orderBy(o)
		if err != nil {
			return sb, false, err
		}
		sb = sb.OrderBy(clause)
	}
	return sb, len(all) > 0, nil
}

// selectStatement compiles the row query. limit 0 means unbounded.
func (b *Builder[T]) selectStatement(limit, offset uint64, extra []order) (string, []any, error) {
	c := b.compiler(true)
	cols, err := b.projection(c)
	if err != nil {
		return "", nil, err
	}
	sb, err := b.baseSelect(c, cols...)
	if err != nil {
		return "", nil, err
	}
	sb, ordered, err := b.applyOrders(c, sb, extra)
	if err != nil {
		return "", nil, err
	}
	if limit > 0 {
		sb = c.dialect.Paginate(sb, limit, offset, ordered)
	}
	return toSQL(sb)
}

func (b *Builder[T]) countStatement() (string, []any, error) {
	c := b.compiler(true)
	sb, err := b.baseSelect(c, "COUNT(*)")
	if err != nil {
		return "", nil, err
	}
	return toSQL(sb)
}

func toSQL(s squirrel.Sqlizer) (string, []any, error) {
	sql, args, err := s.ToSql()
	if err != nil {
		return "", nil, core.NewError(err, core.CodeQueryTranslation, nil)
	}
	return sql, args, nil
}

// SQL returns the compiled row query, mainly for diagnostics.
func (b *Builder[T]) SQL() (string, []any, error) {
	return b.selectStatement(0, 0, nil)
}

func (b *Builder[T]) fail(op string, err error) error {
	err = driver.Classify(b.session.Dialect(), err)
	return fmt.Errorf("%s %s: %w", op, b.steps[0].table.Name, err)
}

func (b *Builder[T]) debug(ctx context.Context, op, sql string) {
	logger.FromContext(ctx).Debug("Executing query", "op", op, "table", b.steps[0].table.Name, "sql", sql)
}

// ToList returns every matching row of the primary entity. The result is
// never nil.
func (b *Builder[T]) ToList(ctx context.Context) ([]T, error) {
	return selectRows[T](ctx, b, 0, 0, nil)
}

// First returns the first matching row or a NOT_FOUND error.
func (b *Builder[T]) First(ctx context.Context) (*T, error) {
	return FirstAs[T](ctx, b)
}

// Count returns the number of matching rows.
func (b *Builder[T]) Count(ctx context.Context) (uint64, error) {
	sql, args, err := b.countStatement()
	if err != nil {
		return 0, b.fail("count", err)
	}
	b.debug(ctx, "count", sql)
	var n int64
	if err := b.session.Executor().Get(ctx, &n, sql, args...); err != nil {
		return 0, b.fail("count", err)
	}
	if n < 0 {
		n = 0
	}
	return uint64(n), nil
}

// Exists reports whether any row matches.
func (b *Builder[T]) Exists(ctx context.Context) (bool, error) {
	c := b.compiler(true)
	sb, err := b.baseSelect(c, "1")
	if err != nil {
		return false, b.fail("exists", err)
	}
	sql, args, err := toSQL(c.dialect.Paginate(sb, 1, 0, false))
	if err != nil {
		return false, b.fail("exists", err)
	}
	b.debug(ctx, "exists", sql)
	var hits []int64
	if err := b.session.Executor().Select(ctx, &hits, sql, args...); err != nil {
		return false, b.fail("exists", err)
	}
	return len(hits) > 0, nil
}

// Paginate returns one page of rows and the total number of matches.
func (b *Builder[T]) Paginate(ctx context.Context, p Paging) (Page[T], error) {
	return paginate[T](ctx, b, p)
}

// Delete removes every matching row and returns the number affected.
// Joined queries cannot be deleted from.
func (b *Builder[T]) Delete(ctx context.Context) (int64, error) {
	if err := b.requireSingleEntity("delete"); err != nil {
		return 0, b.fail("delete", err)
	}
	c := b.compiler(false)
	db := squirrel.Delete(c.dialect.Quote(b.steps[0].table.Name)).PlaceholderFormat(c.dialect.Placeholder())
	for _, p := range b.activeFilters() {
		s, err := c.predicate(p)
		if err != nil {
			return 0, b.fail("delete", err)
		}
		db = db.Where(s)
	}
	sql, args, err := toSQL(db)
	if err != nil {
		return 0, b.fail("delete", err)
	}
	b.debug(ctx, "delete", sql)
	n, err := b.session.Executor().Exec(ctx, sql, args...)
	if err != nil {
		return 0, b.fail("delete", err)
	}
	return n, nil
}

// Update writes only the columns present in patch to every matching row
// and returns the number affected.
func (b *Builder[T]) Update(ctx context.Context, patch Patch) (int64, error) {
	if err := b.requireSingleEntity("update"); err != nil {
		return 0, b.fail("update", err)
	}
	if len(patch) == 0 {
		return 0, b.fail("update", core.Errorf(core.CodeQueryTranslation, "empty patch"))
	}
	c := b.compiler(false)
	table := b.steps[0].table
	set := make(map[string]any, len(patch))
	for col, val := range patch {
		if !table.Has(col) {
			return 0, b.fail("update", core.NewError(
				fmt.Errorf("patch column %q does not exist on %s", col, table.Name),
				core.CodeQueryTranslation,
				map[string]any{"column": col, "table": table.Name},
			))
		}
		set[c.dialect.Quote(col)] = val
	}
	ub := squirrel.Update(c.dialect.Quote(table.Name)).SetMap(set).PlaceholderFormat(c.dialect.Placeholder())
	for _, p := range b.activeFilters() {
		s, err := c.predicate(p)
		if err != nil {
			return 0, b.fail("update", err)
		}
		ub = ub.Where(s)
	}
	sql, args, err := toSQL(ub)
	if err != nil {
		return 0, b.fail("update", err)
	}
	b.debug(ctx, "update", sql)
	n, err := b.session.Executor().Exec(ctx, sql, args...)
	if err != nil {
		return 0, b.fail("update", err)
	}
	return n, nil
}

func (b *Builder[T]) requireSingleEntity(op string) error {
	if len(b.steps) > 1 {
		return core.Errorf(core.CodeQueryTranslation, "%s does not support joined entities", op)
	}
	return nil
}

// ListAs runs the query and scans rows into R, for use with Select.
func ListAs[R any, T Entity](ctx context.Context, b *Builder[T]) ([]R, error) {
	return selectRows[R](ctx, b, 0, 0, nil)
}

// FirstAs is First scanning the row into R.
func FirstAs[R any, T Entity](ctx context.Context, b *Builder[T]) (*R, error) {
	rows, err := selectRows[R](ctx, b, 1, 0, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.NewError(
			fmt.Errorf("no %s row matches", b.steps[0].table.Name),
			core.CodeNotFound,
			nil,
		)
	}
	return &rows[0], nil
}

// PaginateAs is Paginate scanning rows into R.
func PaginateAs[R any, T Entity](ctx context.Context, b *Builder[T], p Paging) (Page[R], error) {
	return paginate[R](ctx, b, p)
}

func selectRows[R any, T Entity](ctx context.Context, b *Builder[T], limit, offset uint64, extra []order) ([]R, error) {
	sql, args, err := b.selectStatement(limit, offset, extra)
	if err != nil {
		return nil, b.fail("select", err)
	}
	b.debug(ctx, "select", sql)
	var rows []R
	if err := b.session.Executor().Select(ctx, &rows, sql, args...); err != nil {
		return nil, b.fail("select", err)
	}
	if rows == nil {
		rows = []R{}
	}
	return rows, nil
}

func paginate[R any, T Entity](ctx context.Context, b *Builder[T], p Paging) (Page[R], error) {
	page, size, err := p.normalize()
	if err != nil {
		return Page[R]{}, b.fail("paginate", err)
	}
	c := b.compiler(true)
	extra := make([]order, 0, len(p.Sort))
	for _, s := range p.Sort {
		o := order{field: F(s.Column), desc: s.Desc}
		if _, err := c.orderBy(o); err != nil {
			return Page[R]{}, b.fail("paginate", err)
		}
		extra = append(extra, o)
	}
	total, err := b.Count(ctx)
	if err != nil {
		return Page[R]{}, err
	}
	result := Page[R]{Items: []R{}, TotalCount: total, Page: page, Size: size}
	hi, offset := bits.Mul64(uint64(page-1), uint64(size))
	if total == 0 || hi != 0 || offset >= total {
		return result, nil
	}
	items, err := selectRows[R](ctx, b, uint64(size), offset, extra)
	if err != nil {
		return Page[R]{}, err
	}
	result.Items = items
	return result, nil
}
