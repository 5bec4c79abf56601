// Package admin is the account and permission module: accounts, roles,
// menu buttons and key/value settings.
package admin

import (
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/module"
	"github.com/compozy/modhost/modules/admin/domain"
	"github.com/compozy/modhost/modules/admin/migrations"
	"github.com/compozy/modhost/modules/admin/repository/mysql"
	"github.com/compozy/modhost/modules/admin/repository/postgres"
	"github.com/compozy/modhost/modules/admin/repository/sqlite"
	"github.com/compozy/modhost/modules/admin/repository/sqlserver"
)

const (
	ID      = "Admin"
	Version = "1.2.0"
)

func init() {
	module.Register(Descriptor())
}

// Descriptor describes the module for a module registry.
func Descriptor() module.Descriptor {
	return module.Descriptor{
		ID:      ID,
		Name:    "Administration",
		Version: Version,
		Domain:  &module.Domain{Entities: domain.Entities()},
		Infrastructure: &module.Infrastructure{
			Repositories: Repositories,
			Migrations:   migrations.FS(),
		},
	}
}

// Repositories declares the implementations of every supported dialect.
func Repositories(m *data.Manifest) {
	sqlserver.Provide(m)
	sqlite.Provide(m)
	mysql.Provide(m)
	postgres.Provide(m)
}
