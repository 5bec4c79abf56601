// Package module holds the registry of feature modules linked into the
// host. A module describes its entities, its repository implementations per
// dialect, its migrations and an optional initializer; the host reads the
// registry at startup and never again mutates it.
package module

import (
	"context"
	"io/fs"
	"strings"

	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/query"
	"github.com/compozy/modhost/pkg/config"
)

// Domain is the domain partition: the entities the module persists.
type Domain struct {
	Entities []query.Entity
}

// Infrastructure is the data partition of a module.
type Infrastructure struct {
	// Repositories declares the module's repository implementations.
	Repositories func(m *data.Manifest)
	// Migrations maps a dialect name to goose SQL files at the root of the
	// filesystem.
	Migrations map[string]fs.FS
}

// Initializer is the optional startup hook of a module. The host calls it;
// it never calls back into the host.
type Initializer interface {
	// ConfigureOptions reads the module's own settings.
	ConfigureOptions(ctx context.Context, cfg *config.Config) error
	// ConfigureServices may add repository bindings to the manifest.
	ConfigureServices(ctx context.Context, m *data.Manifest) error
}

// Descriptor describes one module. Requires maps module IDs to semver
// constraints the registered versions must satisfy.
type Descriptor struct {
	ID             string
	Name           string
	Version        string
	Requires       map[string]string
	Domain         *Domain
	Infrastructure *Infrastructure
	// Web is the presentation partition. The data layer never touches it.
	Web         any
	Initializer Initializer
}

func (d *Descriptor) ModuleID() string { return d.ID }

// HasData reports whether the module has both a domain and a data partition.
func (d *Descriptor) HasData() bool {
	return d.Domain != nil && d.Infrastructure != nil && d.Infrastructure.Repositories != nil
}

// EntityTables lists the tables of the domain entities.
func (d *Descriptor) EntityTables() []string {
	if d.Domain == nil {
		return nil
	}
	out := make([]string, 0, len(d.Domain.Entities))
	for _, e := range d.Domain.Entities {
		out = append(out, e.TableName())
	}
	return out
}

// Manifest builds the repository manifest, letting the initializer add to it.
func (d *Descriptor) Manifest(ctx context.Context) (*data.Manifest, error) {
	m := data.NewManifest(d.ID)
	if d.Infrastructure != nil && d.Infrastructure.Repositories != nil {
		d.Infrastructure.Repositories(m)
	}
	if d.Initializer != nil {
		if err := d.Initializer.ConfigureServices(ctx, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Migrations returns the migration files for dialect, matched
// case-insensitively against the keys of Infrastructure.Migrations.
func (d *Descriptor) Migrations(dialect string) (fs.FS, bool) {
	if d.Infrastructure == nil {
		return nil, false
	}
	for name, fsys := range d.Infrastructure.Migrations {
		if strings.EqualFold(name, dialect) {
			return fsys, true
		}
	}
	return nil, false
}
