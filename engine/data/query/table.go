package query

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

const tableCacheSize = 512

// Entity is implemented by every struct mapped to a table.
type Entity interface {
	TableName() string
}

// Column describes one mapped struct field.
type Column struct {
	Name     string
	Computed bool
	index    []int
}

// Table is the mapping metadata of an entity type. Columns come from `db`
// struct tags (snake_case field name when absent); embedded structs are
// flattened. Fields tagged `query:"computed"` are scanned but never
// written and cannot be referenced by predicates.
type Table struct {
	Name    string
	typ     reflect.Type
	columns []Column
	byName  map[string]int
}

var tableCache, _ = lru.New[reflect.Type, *Table](tableCacheSize)

// TableOf returns the cached metadata of T.
func TableOf[T Entity]() *Table {
	var zero T
	typ := reflect.TypeOf(zero)
	if t, ok := tableCache.Get(typ); ok {
		return t
	}
	t := buildTable(typ, zero.TableName())
	tableCache.Add(typ, t)
	return t
}

func buildTable(typ reflect.Type, name string) *Table {
	t := &Table{Name: name, typ: typ, byName: map[string]int{}}
	collectColumns(typ, nil, t)
	return t
}

func collectColumns(typ reflect.Type, parent []int, t *Table) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		index := append(append([]int(nil), parent...), i)
		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			collectColumns(f.Type, index, t)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := tag
		if name == "" {
			name = snakeCase(f.Name)
		}
		opt := f.Tag.Get("query")
		if opt == "-" {
			continue
		}
		if _, dup := t.byName[name]; dup {
			continue
		}
		t.byName[name] = len(t.columns)
		t.columns = append(t.columns, Column{Name: name, Computed: opt == "computed", index: index})
	}
}

// Columns returns the persisted column names in declaration order.
func (t *Table) Columns() []string {
	out := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if !c.Computed {
			out = append(out, c.Name)
		}
	}
	return out
}

// Has reports whether name is a persisted column.
func (t *Table) Has(name string) bool {
	i, ok := t.byName[name]
	return ok && !t.columns[i].Computed
}

// Values returns persisted columns and their values for entity, which must
// be a T or *T of this table.
func (t *Table) Values(entity any) ([]string, []any, error) {
	v, err := t.structValue(entity)
	if err != nil {
		return nil, nil, err
	}
	cols := make([]string, 0, len(t.columns))
	vals := make([]any, 0, len(t.columns))
	for _, c := range t.columns {
		if c.Computed {
			continue
		}
		cols = append(cols, c.Name)
		vals = append(vals, v.FieldByIndex(c.index).Interface())
	}
	return cols, vals, nil
}

// Value returns the value of one column on entity.
func (t *Table) Value(entity any, column string) (any, bool) {
	i, ok := t.byName[column]
	if !ok {
		return nil, false
	}
	v, err := t.structValue(entity)
	if err != nil {
		return nil, false
	}
	return v.FieldByIndex(t.columns[i].index).Interface(), true
}

// Set assigns value to column on entity (a *T). It reports false when the
// column is unknown or the value type does not fit.
func (t *Table) Set(entity any, column string, value any) bool {
	i, ok := t.byName[column]
	if !ok {
		return false
	}
	rv := reflect.ValueOf(entity)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	field := rv.Elem().FieldByIndex(t.columns[i].index)
	val := reflect.ValueOf(value)
	if !field.CanSet() || !val.IsValid() {
		return false
	}
	switch {
	case val.Type().AssignableTo(field.Type()):
		field.Set(val)
	case val.Type().ConvertibleTo(field.Type()):
		field.Set(val.Convert(field.Type()))
	case field.Kind() == reflect.Pointer && val.Type().AssignableTo(field.Type().Elem()):
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(val)
		field.Set(ptr)
	default:
		return false
	}
	return true
}

func (t *Table) structValue(entity any) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("query: nil %s entity", t.Name)
		}
		v = v.Elem()
	}
	if v.Type() != t.typ {
		return reflect.Value{}, fmt.Errorf("query: %s is not an entity of table %s", v.Type(), t.Name)
	}
	return v, nil
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
