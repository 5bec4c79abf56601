// Package postgres binds the admin repositories for PostgreSQL. The SQL Server
// implementations compile to PostgreSQL through the dialect, so they are reused
// as they are.
package postgres

import (
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/modules/admin/domain"
	"github.com/compozy/modhost/modules/admin/repository/sqlserver"
)

const Dialect = "postgres"

type AccountRepository struct{ *sqlserver.AccountRepository }

type AccountRoleRepository struct {
	*sqlserver.AccountRoleRepository
}

type RoleRepository struct{ *sqlserver.RoleRepository }

type RoleMenuButtonRepository struct {
	*sqlserver.RoleMenuButtonRepository
}

type MenuRepository struct{ *sqlserver.MenuRepository }

type ButtonRepository struct{ *sqlserver.ButtonRepository }

type ConfigRepository struct{ *sqlserver.ConfigRepository }

type AuditInfoRepository struct{ *sqlserver.AuditInfoRepository }

// Provide declares the PostgreSQL implementations on m.
func Provide(m *data.Manifest) {
	data.Provide(m, func(dc *data.Context) domain.AccountRepository {
		return &AccountRepository{sqlserver.NewAccountRepository(dc)}
	}, Dialect)
	data.Provide(m, func(dc *data.Context) domain.AccountRoleRepository {
		return &AccountRoleRepository{sqlserver.NewAccountRoleRepository(dc)}
	}, Dialect)
	data.Provide(m, func(dc *data.Context) domain.RoleRepository {
		return &RoleRepository{sqlserver.NewRoleRepository(dc)}
	}, Dialect)
	data.Provide(m, func(dc *data.Context) domain.RoleMenuButtonRepository {
		return &RoleMenuButtonRepository{sqlserver.NewRoleMenuButtonRepository(dc)}
	}, Dialect)
	data.Provide(m, func(dc *data.Context) domain.MenuRepository {
		return &MenuRepository{sqlserver.NewMenuRepository(dc)}
	}, Dialect)
	data.Provide(m, func(dc *data.Context) domain.ButtonRepository {
		return &ButtonRepository{sqlserver.NewButtonRepository(dc)}
	}, Dialect)
	data.Provide(m, func(dc *data.Context) domain.ConfigRepository {
		return &ConfigRepository{sqlserver.NewConfigRepository(dc)}
	}, Dialect)
	data.Provide(m, func(dc *data.Context) domain.AuditInfoRepository {
		return &AuditInfoRepository{sqlserver.NewAuditInfoRepository(dc)}
	}, Dialect)
}
