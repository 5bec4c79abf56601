package data

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/compozy/modhost/engine/core"
)

// Scope is the unit of request handling. It lazily creates exactly one
// Context and one UnitOfWork per module and caches the repositories it
// resolves. A Scope is not safe for concurrent use.
type Scope struct {
	reg      *Registry
	contexts map[string]*Context
	units    map[string]*UnitOfWork
	repos    map[reflect.Type]any
	opened   []string
	closed   bool
}

func newScope(reg *Registry) *Scope {
	return &Scope{
		reg:      reg,
		contexts: map[string]*Context{},
		units:    map[string]*UnitOfWork{},
		repos:    map[reflect.Type]any{},
	}
}

// Context returns the data context of module, creating it on first use.
func (s *Scope) Context(module string) (*Context, error) {
	if s.closed {
		return nil, core.Errorf(core.CodeInvalidState, "scope is closed")
	}
	key := strings.ToLower(module)
	if dc, ok := s.contexts[key]; ok {
		return dc, nil
	}
	opts, ok := s.reg.Options(module)
	if !ok {
		return nil, core.NewError(
			fmt.Errorf("no data context for module %q", module),
			core.CodeContextNotFound,
			map[string]any{"module": module},
		)
	}
	dc := newContext(opts)
	s.contexts[key] = dc
	s.units[key] = newUnitOfWork(dc)
	s.opened = append(s.opened, opts.Module())
	return dc, nil
}

// UnitOfWork returns the unit of work of module's context. Repeated calls
// in one scope return the same instance.
func (s *Scope) UnitOfWork(module string) (*UnitOfWork, error) {
	if _, err := s.Context(module); err != nil {
		return nil, err
	}
	return s.units[strings.ToLower(module)], nil
}

// Opened lists the modules whose context this scope has created.
func (s *Scope) Opened() []string {
	return append([]string(nil), s.opened...)
}

// Resolve returns the repository bound to interface R, built on the scope's
// context of the module that provides it.
func Resolve[R any](s *Scope) (R, error) {
	var zero R
	iface := reflect.TypeFor[R]()
	if cached, ok := s.repos[iface]; ok {
		return cached.(R), nil
	}
	bd, ok := s.reg.binder.Lookup(iface)
	if !ok {
		return zero, core.NewError(
			fmt.Errorf("binding not found: %s", iface),
			core.CodeContextNotFound,
			map[string]any{"interface": iface.String()},
		)
	}
	dc, err := s.Context(bd.Module)
	if err != nil {
		return zero, fmt.Errorf("resolve %s: %w", iface, err)
	}
	repo, ok := bd.build(dc).(R)
	if !ok {
		return zero, core.Errorf(core.CodeConfiguration, "factory for %s returned an unexpected type", iface)
	}
	s.repos[iface] = repo
	return repo, nil
}

// Close rolls back any transaction left open and ends the scope.
func (s *Scope) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, name := range s.opened {
		uow := s.units[strings.ToLower(name)]
		if uow.State() != InTransaction {
			continue
		}
		uow.Context().Logger().Warn("Rolling back transaction left open by scope")
		if err := uow.Rollback(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
