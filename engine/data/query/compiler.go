package query

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/driver"
)

type joinKind int

const (
	joinPrimary joinKind = iota
	joinInner
	joinLeft
)

// step is one entity of a query: the primary table or a join.
type step struct {
	table *Table
	kind  joinKind
	on    Predicate
}

// compiler renders fields and predicates for one statement. Unqualified
// compilers (UPDATE/DELETE) only accept primary entity references.
type compiler struct {
	dialect   driver.Dialect
	steps     []step
	qualified bool
}

func alias(pos int) string {
	return fmt.Sprintf("t%d", pos)
}

func (c *compiler) ref(f Field) (string, error) {
	if f.Pos < 0 || f.Pos >= len(c.steps) {
		return "", core.NewError(
			fmt.Errorf("field %q references entity %d but the query has %d", f.Column, f.Pos, len(c.steps)),
			core.CodeQueryTranslation,
			map[string]any{"column": f.Column, "position": f.Pos},
		)
	}
	if !c.qualified && f.Pos != 0 {
		return "", core.Errorf(core.CodeQueryTranslation, "field %q: only the primary entity can be referenced here", f.Column)
	}
	table := c.steps[f.Pos].table
	if !table.Has(f.Column) {
		return "", core.NewError(
			fmt.Errorf("column %q does not exist on %s", f.Column, table.Name),
			core.CodeQueryTranslation,
			map[string]any{"column": f.Column, "table": table.Name},
		)
	}
	if !c.qualified {
		return c.dialect.Quote(f.Column), nil
	}
	return alias(f.Pos) + "." + c.dialect.Quote(f.Column), nil
}

func (c *compiler) predicate(p Predicate) (squirrel.Sqlizer, error) {
	if p == nil {
		return nil, core.Errorf(core.CodeQueryTranslation, "missing predicate")
	}
	s, err := p.compile(c)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *compiler) selection(s Selection) (string, error) {
	if s.all {
		if s.field.Pos < 0 || s.field.Pos >= len(c.steps) {
			return "", core.Errorf(core.CodeQueryTranslation, "selection of entity %d but the query has %d", s.field.Pos, len(c.steps))
		}
		return alias(s.field.Pos) + ".*", nil
	}
	col, err := c.ref(s.field)
	if err != nil {
		return "", err
	}
	name := s.alias
	if name == "" {
		name = s.field.Column
	}
	return col + " AS " + c.dialect.Quote(name), nil
}

func (c *compiler) from() string {
	return c.dialect.Quote(c.steps[0].table.Name) + " AS " + alias(0)
}

func (c *compiler) join(sb squirrel.SelectBuilder, pos int) (squirrel.SelectBuilder, error) {
	st := c.steps[pos]
	if st.table == nil {
		return sb, core.Errorf(core.CodeQueryTranslation, "join %d has no table", pos)
	}
	if st.on == nil {
		return sb, core.Errorf(core.CodeQueryTranslation, "join of %s has no condition", st.table.Name)
	}
	on, err := c.predicate(st.on)
	if err != nil {
		return sb, err
	}
	sql, args, err := on.ToSql()
	if err != nil {
		return sb, core.NewError(err, core.CodeQueryTranslation, map[string]any{"join": st.table.Name})
	}
	clause := fmt.Sprintf("%s AS %s ON %s", c.dialect.Quote(st.table.Name), alias(pos), sql)
	if st.kind == joinLeft {
		return sb.LeftJoin(clause, args...), nil
	}
	return sb.InnerJoin(clause, args...), nil
}

// Selection is one projected column.
type Selection struct {
	field Field
	alias string
	all   bool
}

// All selects every column of the entity at pos.
func All(pos int) Selection { return Selection{field: Field{Pos: pos}, all: true} }

// Col selects one column under its own name.
func Col(f Field) Selection { return Selection{field: f} }

// As selects one column under alias.
func As(f Field, alias string) Selection { return Selection{field: f, alias: alias} }

type order struct {
	field Field
	desc  bool
}

func (c *compiler) orderBy(o order) (string, error) {
	col, err := c.ref(o.field)
	if err != nil {
		return "", err
	}
	if o.desc {
		return col + " DESC", nil
	}
	return col + " ASC", nil
}

func quoteAll(d driver.Dialect, cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = d.Quote(col)
	}
	return out
}
