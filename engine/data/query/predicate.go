package query

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/compozy/modhost/engine/core"
)

// Field references a column of the entity at position Pos of a query:
// 0 is the primary entity, 1 the first joined one, and so on.
type Field struct {
	Pos    int
	Column string
}

// F references a column of the primary entity.
func F(column string) Field { return Field{Column: column} }

// J references a column of the entity at position pos.
func J(pos int, column string) Field { return Field{Pos: pos, Column: column} }

// Predicate is a filter or join condition.
type Predicate interface {
	compile(c *compiler) (squirrel.Sqlizer, error)
}

type compareOp string

const (
	opEq  compareOp = "="
	opNe  compareOp = "<>"
	opGt  compareOp = ">"
	opGte compareOp = ">="
	opLt  compareOp = "<"
	opLte compareOp = "<="
)

type comparison struct {
	field Field
	op    compareOp
	value any
}

func (p comparison) compile(c *compiler) (squirrel.Sqlizer, error) {
	col, err := c.ref(p.field)
	if err != nil {
		return nil, err
	}
	switch p.op {
	case opEq:
		return squirrel.Eq{col: p.value}, nil
	case opNe:
		return squirrel.NotEq{col: p.value}, nil
	case opGt:
		return squirrel.Gt{col: p.value}, nil
	case opGte:
		return squirrel.GtOrEq{col: p.value}, nil
	case opLt:
		return squirrel.Lt{col: p.value}, nil
	case opLte:
		return squirrel.LtOrEq{col: p.value}, nil
	}
	return nil, core.Errorf(core.CodeQueryTranslation, "unsupported operator %q", p.op)
}

// Eq matches field = value. A nil value matches IS NULL and a slice value
// matches IN.
func Eq(f Field, value any) Predicate { return comparison{f, opEq, value} }

// Ne matches field <> value.
func Ne(f Field, value any) Predicate { return comparison{f, opNe, value} }

func Gt(f Field, value any) Predicate  { return comparison{f, opGt, value} }
func Gte(f Field, value any) Predicate { return comparison{f, opGte, value} }
func Lt(f Field, value any) Predicate  { return comparison{f, opLt, value} }
func Lte(f Field, value any) Predicate { return comparison{f, opLte, value} }

// In matches field against a set. An empty set matches nothing.
func In(f Field, values ...any) Predicate {
	return comparison{f, opEq, append([]any{}, values...)}
}

// IsNull matches NULL values.
func IsNull(f Field) Predicate { return comparison{f, opEq, nil} }

// likeEscape prefixes wildcards in literal LIKE input. '!' has no meaning
// in string literals of any supported dialect.
const likeEscape = '!'

var likeEscaper = strings.NewReplacer(
	string(likeEscape), string(likeEscape)+string(likeEscape),
	"%", string(likeEscape)+"%",
	"_", string(likeEscape)+"_",
	"[", string(likeEscape)+"[",
)

type like struct {
	field   Field
	pattern string
	escaped bool
}

func (p like) compile(c *compiler) (squirrel.Sqlizer, error) {
	col, err := c.ref(p.field)
	if err != nil {
		return nil, err
	}
	if p.escaped {
		return squirrel.Expr(col+" LIKE ? ESCAPE '"+string(likeEscape)+"'", p.pattern), nil
	}
	return squirrel.Like{col: p.pattern}, nil
}

// Like matches a LIKE pattern verbatim.
func Like(f Field, pattern string) Predicate { return like{field: f, pattern: pattern} }

// Contains matches values containing s. Wildcards in s match literally.
func Contains(f Field, s string) Predicate {
	return like{field: f, pattern: "%" + likeEscaper.Replace(s) + "%", escaped: true}
}

// StartsWith matches values beginning with s. Wildcards in s match literally.
func StartsWith(f Field, s string) Predicate {
	return like{field: f, pattern: likeEscaper.Replace(s) + "%", escaped: true}
}

type fieldComparison struct {
	left, right Field
	op          compareOp
}

func (p fieldComparison) compile(c *compiler) (squirrel.Sqlizer, error) {
	left, err := c.ref(p.left)
	if err != nil {
		return nil, err
	}
	right, err := c.ref(p.right)
	if err != nil {
		return nil, err
	}
	return squirrel.Expr(fmt.Sprintf("%s %s %s", left, p.op, right)), nil
}

// EqField compares two columns, typically in a join condition.
func EqField(left, right Field) Predicate { return fieldComparison{left, right, opEq} }

// NeField matches rows where two columns differ.
func NeField(left, right Field) Predicate { return fieldComparison{left, right, opNe} }

type conjunction struct {
	parts []Predicate
	or    bool
}

func (p conjunction) compile(c *compiler) (squirrel.Sqlizer, error) {
	parts := make([]squirrel.Sqlizer, 0, len(p.parts))
	for _, part := range p.parts {
		if part == nil {
			continue
		}
		s, err := part.compile(c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	if p.or {
		return squirrel.Or(parts), nil
	}
	return squirrel.And(parts), nil
}

// And joins predicates with AND; nil entries are skipped.
func And(preds ...Predicate) Predicate { return conjunction{parts: preds} }

// Or joins predicates with OR; nil entries are skipped.
func Or(preds ...Predicate) Predicate { return conjunction{parts: preds, or: true} }

type negation struct{ inner Predicate }

func (p negation) compile(c *compiler) (squirrel.Sqlizer, error) {
	s, err := c.predicate(p.inner)
	if err != nil {
		return nil, err
	}
	sql, args, err := s.ToSql()
	if err != nil {
		return nil, core.NewError(err, core.CodeQueryTranslation, nil)
	}
	return squirrel.Expr("NOT ("+sql+")", args...), nil
}

// Not negates p.
func Not(p Predicate) Predicate { return negation{p} }
