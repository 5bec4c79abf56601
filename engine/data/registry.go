package data

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/pkg/logger"
)

// Registry holds the Options of every configured connection and the
// repository bindings. It is populated at startup and read-only afterwards.
type Registry struct {
	mu      sync.RWMutex
	options map[string]*Options
	names   []string
	binder  *Binder
	log     logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Registry{options: map[string]*Options{}, binder: NewBinder(log), log: log}
}

// Register adds the context of opts and, with it, the unit of work every
// scope creates for that context.
func (r *Registry) Register(opts *Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(opts.Module())
	if _, dup := r.options[key]; dup {
		return core.NewError(
			fmt.Errorf("connection %q registered twice", opts.Module()),
			core.CodeConfiguration,
			map[string]any{"connection": opts.Module()},
		)
	}
	r.options[key] = opts
	r.names = append(r.names, opts.Module())
	return nil
}

// Bind binds the repositories of m against the registered connection of
// the same module.
func (r *Registry) Bind(m *Manifest) (BindReport, error) {
	opts, ok := r.Options(m.Module())
	if !ok {
		return BindReport{Module: m.Module()}, core.NewError(
			fmt.Errorf("no data context registered for module %q", m.Module()),
			core.CodeConfiguration,
			map[string]any{"module": m.Module()},
		)
	}
	return r.binder.Bind(opts, m)
}

// Options returns the options registered under a connection name.
func (r *Registry) Options(name string) (*Options, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	opts, ok := r.options[strings.ToLower(name)]
	return opts, ok
}

// Connections lists registered connection names in registration order.
func (r *Registry) Connections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

func (r *Registry) Binder() *Binder { return r.binder }

// NewScope starts a request scope.
func (r *Registry) NewScope() *Scope {
	return newScope(r)
}

// Close closes every pool.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var errs []error
	for _, name := range r.names {
		if err := r.options[strings.ToLower(name)].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
