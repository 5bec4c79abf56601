// Package blog is the content module: post categories and tags.
package blog

import (
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/module"
	"github.com/compozy/modhost/modules/blog/domain"
	"github.com/compozy/modhost/modules/blog/migrations"
	"github.com/compozy/modhost/modules/blog/repository"
	"github.com/compozy/modhost/modules/blog/repository/sqlite"
	"github.com/compozy/modhost/modules/blog/repository/sqlserver"
)

const (
	ID      = "Blog"
	Version = "0.4.0"
)

func init() {
	module.Register(Descriptor())
}

// Descriptor describes the module. Each call carries its own options, so
// separate registries do not share settings.
func Descriptor() module.Descriptor {
	opts := repository.DefaultOptions()
	return module.Descriptor{
		ID:       ID,
		Name:     "Blog",
		Version:  Version,
		Requires: map[string]string{"Admin": "^1.0.0"},
		Domain:   &module.Domain{Entities: domain.Entities()},
		Infrastructure: &module.Infrastructure{
			Repositories: func(m *data.Manifest) { Repositories(m, &opts) },
			Migrations:   migrations.FS(),
		},
		Initializer: &initializer{opts: &opts},
	}
}

// Repositories declares the SQL Server and SQLite implementations.
func Repositories(m *data.Manifest, opts *repository.Options) {
	sqlserver.Provide(m, opts)
	sqlite.Provide(m, opts)
}
