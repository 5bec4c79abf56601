// Package host bootstraps the data layer of the registered modules: it
// builds one data context per configured connection, registers its unit
// of work and binds the module's repositories for the connection dialect.
package host

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/engine/infra/migrate"
	"github.com/compozy/modhost/engine/infra/monitoring"
	"github.com/compozy/modhost/engine/module"
	"github.com/compozy/modhost/pkg/config"
	"github.com/compozy/modhost/pkg/logger"
)

// Host is the bootstrapped data layer. It is read-only once New returns.
type Host struct {
	cfg        *config.Config
	modules    *module.Registry
	data       *data.Registry
	monitoring *monitoring.Service
	accessor   data.Accessor
	reports    []data.BindReport
	skipped    map[string]error
}

type Option func(*Host)

// WithModules replaces module.Default.
func WithModules(reg *module.Registry) Option {
	return func(h *Host) { h.modules = reg }
}

// WithMonitoring instruments every connection pool with svc.
func WithMonitoring(svc *monitoring.Service) Option {
	return func(h *Host) { h.monitoring = svc }
}

// WithAccessor sets how repositories resolve the acting account.
func WithAccessor(a data.Accessor) Option {
	return func(h *Host) { h.accessor = a }
}

// New runs the startup sequence. With database.strict any module failure
// aborts it; otherwise the failing module is skipped and logged at Warn.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Host, error) {
	if cfg == nil {
		cfg = config.FromContext(ctx)
	}
	h := &Host{
		cfg:      cfg,
		modules:  module.Default,
		accessor: data.ContextAccessor,
		skipped:  map[string]error{},
	}
	for _, opt := range opts {
		opt(h)
	}
	log := logger.FromContext(ctx)
	h.data = data.NewRegistry(log)
	start := time.Now()
	if err := h.modules.Validate(); err != nil {
		return nil, fmt.Errorf("module registry: %w", err)
	}
	h.modules.Freeze()
	if err := h.configureModules(ctx); err != nil {
		return nil, err
	}
	if len(cfg.Database.Connections) == 0 {
		for _, d := range h.modules.All() {
			if d.HasData() {
				log.Warn("No database connections configured, module data layer disabled", "module", d.ID)
			}
		}
		return h, nil
	}
	if err := h.bootstrapData(ctx); err != nil {
		return nil, errors.Join(err, h.data.Close())
	}
	if cfg.Database.AutoMigrate {
		if _, err := h.Migrate(ctx); err != nil {
			return nil, errors.Join(err, h.data.Close())
		}
	}
	log.Info("Host started",
		"modules", h.modules.Len(),
		"contexts", len(h.data.Connections()),
		"bindings", len(h.data.Binder().Bindings()),
		"skipped", len(h.skipped),
		"duration", time.Since(start))
	return h, nil
}

func (h *Host) configureModules(ctx context.Context) error {
	for _, d := range h.modules.All() {
		if d.Initializer == nil {
			continue
		}
		if err := d.Initializer.ConfigureOptions(ctx, h.cfg); err != nil {
			wrapped := core.NewError(fmt.Errorf("configure module %s: %w", d.ID, err), core.CodeConfiguration,
				map[string]any{"module": d.ID})
			if err := h.fail(ctx, d.ID, wrapped); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Host) bootstrapData(ctx context.Context) error {
	log := logger.FromContext(ctx)
	fopts := []data.FactoryOption{data.WithAccessor(h.accessor)}
	if h.monitoring != nil {
		fopts = append(fopts, data.WithConnDecorator(h.monitoring.Data().Decorate))
	}
	factory := data.NewFactory(log, fopts...)
	connected := map[string]bool{}
	for _, cc := range h.cfg.Database.Connections {
		connected[strings.ToLower(cc.Name)] = true
		if _, skipped := h.skipped[strings.ToLower(cc.Name)]; skipped {
			continue
		}
		if err := h.bootstrapConnection(ctx, factory, cc); err != nil {
			if err := h.fail(ctx, cc.Name, err); err != nil {
				return err
			}
		}
	}
	for _, d := range h.modules.All() {
		if d.HasData() && !connected[strings.ToLower(d.ID)] {
			log.Warn("Module has no configured connection, repositories unavailable", "module", d.ID)
		}
	}
	return nil
}

// bootstrapConnection creates the context of one connection and binds the
// repositories of the module it belongs to. Nothing is registered unless
// every step succeeds.
func (h *Host) bootstrapConnection(ctx context.Context, factory *data.Factory, cc config.ConnectionConfig) error {
	d, ok := h.modules.Lookup(cc.Name)
	var mod data.Module
	if ok {
		mod = d
	}
	if _, dup := h.data.Options(cc.Name); dup {
		return core.Errorf(core.CodeConfiguration, "connection %q configured twice", cc.Name)
	}
	opts, err := factory.Create(ctx, toConnection(cc), mod)
	if err != nil {
		return err
	}
	manifest, err := d.Manifest(ctx)
	if err != nil {
		return errors.Join(fmt.Errorf("module %s services: %w", d.ID, err), opts.Close())
	}
	report, err := h.data.Binder().Bind(opts, manifest)
	if err != nil {
		return errors.Join(err, opts.Close())
	}
	if h.cfg.Database.Strict && len(report.Unbound) > 0 {
		err := core.NewError(
			fmt.Errorf("module %s has no %s implementation of %s", d.ID, report.Dialect, strings.Join(report.Unbound, ", ")),
			core.CodeDialectNotSupported,
			map[string]any{"module": d.ID, "dialect": report.Dialect},
		)
		return errors.Join(err, opts.Close())
	}
	if err := h.data.Register(opts); err != nil {
		return errors.Join(err, opts.Close())
	}
	h.reports = append(h.reports, report)
	opts.Logger().Info("Module repositories bound", "module", d.ID, "bound", len(report.Bound), "unbound", len(report.Unbound))
	return nil
}

func (h *Host) fail(ctx context.Context, name string, err error) error {
	if h.cfg.Database.Strict {
		return err
	}
	h.skipped[strings.ToLower(name)] = err
	logger.FromContext(ctx).Warn("Module skipped", "module", name, "error", err)
	return nil
}

func toConnection(cc config.ConnectionConfig) data.Connection {
	return data.Connection{
		Name:             cc.Name,
		Dialect:          cc.Dialect,
		ConnectionString: cc.ConnString,
		Pool: driver.PoolSettings{
			MaxOpenConns:    cc.MaxOpenConns,
			MaxIdleConns:    cc.MaxIdleConns,
			ConnMaxLifetime: cc.ConnMaxLifetime,
		},
	}
}

// Migrate applies the embedded migrations of every bound module and returns
// the resulting version per module.
func (h *Host) Migrate(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, name := range h.data.Connections() {
		opts, _ := h.data.Options(name)
		d, ok := h.modules.Lookup(name)
		if !ok {
			continue
		}
		fsys, ok := d.Migrations(opts.Dialect().Name())
		if !ok {
			opts.Logger().Warn("Module ships no migrations for dialect", "module", d.ID)
			continue
		}
		version, err := migrate.Up(ctx, opts, fsys)
		if err != nil {
			return out, err
		}
		out[d.ID] = version
	}
	return out, nil
}

// NewScope starts a request scope. The caller must Close it.
func (h *Host) NewScope() *data.Scope {
	return h.data.NewScope()
}

// Run executes fn in a new scope and closes it afterwards.
func (h *Host) Run(ctx context.Context, fn func(s *data.Scope) error) error {
	s := h.NewScope()
	err := fn(s)
	return errors.Join(err, s.Close(ctx))
}

func (h *Host) Config() *config.Config { return h.cfg }

func (h *Host) Modules() *module.Registry { return h.modules }

func (h *Host) Data() *data.Registry { return h.data }

// Reports returns the binding outcome of every bound module.
func (h *Host) Reports() []data.BindReport { return append([]data.BindReport(nil), h.reports...) }

// Skipped returns the modules or connections skipped at startup with the
// reason.
func (h *Host) Skipped() map[string]error {
	out := make(map[string]error, len(h.skipped))
	for k, v := range h.skipped {
		out[k] = v
	}
	return out
}

// Close closes every pool.
func (h *Host) Close() error {
	return h.data.Close()
}
