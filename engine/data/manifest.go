package data

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/driver"
)

type provision struct {
	iface   reflect.Type
	dialect string
	build   func(*Context) any
}

// Manifest is the explicit list of repository implementations a module
// ships, one entry per (interface, dialect).
type Manifest struct {
	module  string
	entries []provision
	order   []reflect.Type
}

// NewManifest starts an empty manifest for module.
func NewManifest(module string) *Manifest {
	return &Manifest{module: module}
}

func (m *Manifest) Module() string { return m.module }

// Provide registers factory as the implementation of the repository
// interface R for each dialect. Dialect names are matched the way the
// driver registry matches them, aliases included.
func Provide[R any](m *Manifest, factory func(*Context) R, dialects ...string) {
	iface := reflect.TypeFor[R]()
	if !m.declares(iface) {
		m.order = append(m.order, iface)
	}
	for _, d := range dialects {
		m.entries = append(m.entries, provision{
			iface:   iface,
			dialect: d,
			build:   func(c *Context) any { return factory(c) },
		})
	}
}

func (m *Manifest) declares(iface reflect.Type) bool {
	for _, t := range m.order {
		if t == iface {
			return true
		}
	}
	return false
}

// Interfaces lists declared repository interfaces in declaration order.
func (m *Manifest) Interfaces() []reflect.Type {
	return append([]reflect.Type(nil), m.order...)
}

// Dialects lists the dialects an interface is implemented for.
func (m *Manifest) Dialects(iface reflect.Type) []string {
	var out []string
	for _, e := range m.entries {
		if e.iface == iface {
			out = append(out, canonicalDialect(e.dialect))
		}
	}
	return out
}

// Validate rejects a manifest with two implementations of one interface for
// the same dialect.
func (m *Manifest) Validate() error {
	seen := map[string]struct{}{}
	for _, e := range m.entries {
		key := e.iface.String() + "|" + canonicalDialect(e.dialect)
		if _, dup := seen[key]; dup {
			return core.NewError(
				fmt.Errorf("%s has more than one implementation for dialect %s", e.iface, e.dialect),
				core.CodeAmbiguousBinding,
				map[string]any{"module": m.module, "interface": e.iface.String(), "dialect": e.dialect},
			)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (m *Manifest) lookup(iface reflect.Type, dialect string) (provision, bool) {
	for _, e := range m.entries {
		if e.iface == iface && canonicalDialect(e.dialect) == dialect {
			return e, true
		}
	}
	return provision{}, false
}

func canonicalDialect(name string) string {
	if d, err := driver.Lookup(name); err == nil {
		return d.Name()
	}
	return strings.ToLower(strings.TrimSpace(name))
}
