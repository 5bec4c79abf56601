package sqlserver

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/query"
	"github.com/compozy/modhost/modules/admin/domain"
)

type RoleRepository struct {
	data.Repository[domain.Role]
}

func NewRoleRepository(dc *data.Context) *RoleRepository {
	return &RoleRepository{Repository: data.NewRepository[domain.Role](dc)}
}

func (r *RoleRepository) ExistsName(ctx context.Context, name string, excludeID core.ID) (bool, error) {
	return r.Find(query.Eq(query.F("name"), name)).
		WhereIf(!excludeID.IsZero(), query.Ne(query.F("id"), excludeID)).
		Exists(ctx)
}

func (r *RoleRepository) Query(ctx context.Context, paging query.Paging, name string) (query.Page[domain.Role], error) {
	b := r.Find().WhereIf(name != "", query.Contains(query.F("name"), name))
	if len(paging.Sort) == 0 {
		b.OrderBy(query.F("name"))
	}
	return b.Paginate(ctx, paging)
}

type RoleMenuButtonRepository struct {
	data.Repository[domain.RoleMenuButton]
}

func NewRoleMenuButtonRepository(dc *data.Context) *RoleMenuButtonRepository {
	return &RoleMenuButtonRepository{Repository: data.NewRepository[domain.RoleMenuButton](dc)}
}

func (r *RoleMenuButtonRepository) DeleteByRole(ctx context.Context, roleID core.ID) (int64, error) {
	return r.Find(query.Eq(query.F("role_id"), roleID)).Delete(ctx)
}

func (r *RoleMenuButtonRepository) DeleteByMenu(ctx context.Context, menuID core.ID) (int64, error) {
	return r.Find(query.Eq(query.F("menu_id"), menuID)).Delete(ctx)
}
