package sqlserver

import (
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/modules/admin/domain"
)

// Dialect is the dialect these implementations are bound for.
const Dialect = "sqlserver"

// Provide declares the SQL Server implementations on m.
func Provide(m *data.Manifest) {
	data.Provide(m, func(dc *data.Context) domain.AccountRepository { return NewAccountRepository(dc) }, Dialect)
	data.Provide(m, func(dc *data.Context) domain.AccountRoleRepository { return NewAccountRoleRepository(dc) }, Dialect)
	data.Provide(m, func(dc *data.Context) domain.RoleRepository { return NewRoleRepository(dc) }, Dialect)
	data.Provide(m, func(dc *data.Context) domain.RoleMenuButtonRepository {
		return NewRoleMenuButtonRepository(dc)
	}, Dialect)
	data.Provide(m, func(dc *data.Context) domain.MenuRepository { return NewMenuRepository(dc) }, Dialect)
	data.Provide(m, func(dc *data.Context) domain.ButtonRepository { return NewButtonRepository(dc) }, Dialect)
	data.Provide(m, func(dc *data.Context) domain.ConfigRepository { return NewConfigRepository(dc) }, Dialect)
	data.Provide(m, func(dc *data.Context) domain.AuditInfoRepository {
		return NewAuditInfoRepository(dc)
	}, Dialect)
}
