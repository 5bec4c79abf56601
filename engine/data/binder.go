package data

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/pkg/logger"
)

// Binding is a repository interface bound to the implementation of one
// module for the dialect of that module's connection.
type Binding struct {
	Interface reflect.Type
	Module    string
	Dialect   string
	build     func(*Context) any
}

// BindReport summarizes the outcome of binding one module.
type BindReport struct {
	Module  string
	Dialect string
	Bound   []string
	Unbound []string
}

// Binder keeps the process-wide interface bindings. It is written during
// startup and read concurrently afterwards.
type Binder struct {
	mu       sync.RWMutex
	owners   map[reflect.Type]string
	bindings map[reflect.Type]Binding
	log      logger.Logger
}

func NewBinder(log logger.Logger) *Binder {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Binder{
		owners:   map[reflect.Type]string{},
		bindings: map[reflect.Type]Binding{},
		log:      log,
	}
}

// Bind binds every interface of m that has an implementation for the
// dialect of opts. Interfaces without one stay unbound. The module is bound
// entirely or not at all.
func (b *Binder) Bind(opts *Options, m *Manifest) (BindReport, error) {
	report := BindReport{Module: m.Module(), Dialect: opts.Dialect().Name()}
	if !strings.EqualFold(m.Module(), opts.Module()) {
		return report, core.NewError(
			fmt.Errorf("manifest of module %q cannot bind connection %q", m.Module(), opts.Module()),
			core.CodeConfiguration,
			nil,
		)
	}
	if err := m.Validate(); err != nil {
		return report, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, iface := range m.Interfaces() {
		if owner, ok := b.owners[iface]; ok && !strings.EqualFold(owner, m.Module()) {
			return report, core.NewError(
				fmt.Errorf("%s is declared by modules %s and %s", iface, owner, m.Module()),
				core.CodeAmbiguousBinding,
				map[string]any{"interface": iface.String()},
			)
		}
	}
	pending := make([]Binding, 0, len(m.Interfaces()))
	for _, iface := range m.Interfaces() {
		p, ok := m.lookup(iface, report.Dialect)
		if !ok {
			report.Unbound = append(report.Unbound, iface.String())
			b.log.Warn("Repository has no implementation for dialect",
				"module", m.Module(), "interface", iface.String(), "dialect", report.Dialect)
			continue
		}
		pending = append(pending, Binding{Interface: iface, Module: opts.Module(), Dialect: report.Dialect, build: p.build})
		report.Bound = append(report.Bound, iface.String())
	}
	for _, iface := range m.Interfaces() {
		b.owners[iface] = m.Module()
	}
	for _, bd := range pending {
		b.bindings[bd.Interface] = bd
	}
	return report, nil
}

// Lookup returns the binding of iface.
func (b *Binder) Lookup(iface reflect.Type) (Binding, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bd, ok := b.bindings[iface]
	return bd, ok
}

// Bindings lists all bindings ordered by module then interface name.
func (b *Binder) Bindings() []Binding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Binding, 0, len(b.bindings))
	for _, bd := range b.bindings {
		out = append(out, bd)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].Interface.String() < out[j].Interface.String()
	})
	return out
}
