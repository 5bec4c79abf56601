package data

import (
	"context"
	"fmt"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/pkg/logger"
)

// Module is the view of a registered module the Factory needs.
type Module interface {
	ModuleID() string
	// HasData reports whether the module ships a data partition.
	HasData() bool
	EntityTables() []string
}

// ConnDecorator wraps a freshly opened pool, e.g. with instrumentation.
type ConnDecorator func(c Connection, conn driver.Conn) driver.Conn

// Factory builds Options from connection descriptors.
type Factory struct {
	log        logger.Logger
	accessor   Accessor
	decorators []ConnDecorator
}

type FactoryOption func(*Factory)

// WithAccessor sets the request accessor injected into every Options.
func WithAccessor(a Accessor) FactoryOption {
	return func(f *Factory) { f.accessor = a }
}

// WithConnDecorator adds a pool decorator. Decorators run in order.
func WithConnDecorator(d ConnDecorator) FactoryOption {
	return func(f *Factory) { f.decorators = append(f.decorators, d) }
}

// NewFactory returns a Factory. A nil log uses the default logger.
func NewFactory(log logger.Logger, opts ...FactoryOption) *Factory {
	if log == nil {
		log = logger.GetDefault()
	}
	f := &Factory{log: log, accessor: ContextAccessor}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create resolves the dialect of c and opens its pool. mod is the module
// registered under c.Name, or nil when there is none. The pool is not
// pinged; reachability problems surface on first use.
func (f *Factory) Create(ctx context.Context, c Connection, mod Module) (*Options, error) {
	if mod == nil {
		return nil, core.NewError(
			fmt.Errorf("no module registered for connection %q", c.Name),
			core.CodeConfiguration,
			map[string]any{"connection": c.Name},
		)
	}
	if !mod.HasData() {
		return nil, core.NewError(
			fmt.Errorf("module %q has no data partition", mod.ModuleID()),
			core.CodeConfiguration,
			map[string]any{"connection": c.Name, "module": mod.ModuleID()},
		)
	}
	d, err := driver.Lookup(c.Dialect)
	if err != nil {
		return nil, fmt.Errorf("connection %s: %w", c.Name, err)
	}
	pool, err := d.Open(ctx, c.ConnectionString, c.Pool)
	if err != nil {
		return nil, core.NewError(err, core.CodeConfiguration, map[string]any{"connection": c.Name, "dialect": d.Name()})
	}
	c = c.clone()
	c.EntityTables = append([]string(nil), mod.EntityTables()...)
	for _, decorate := range f.decorators {
		pool = decorate(c, pool)
	}
	log := f.log.With("connection", c.Name, "dialect", d.Name())
	log.Info("Data context configured", "tables", len(c.EntityTables))
	return &Options{conn: c, dialect: d, pool: pool, log: log, accessor: f.accessor}, nil
}
