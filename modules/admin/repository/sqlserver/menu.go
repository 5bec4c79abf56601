package sqlserver

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/query"
	"github.com/compozy/modhost/modules/admin/domain"
)

type MenuRepository struct {
	data.Repository[domain.Menu]
}

func NewMenuRepository(dc *data.Context) *MenuRepository {
	return &MenuRepository{Repository: data.NewRepository[domain.Menu](dc)}
}

// underParent matches the children of parentID, or root menus when it is
// zero since a zero ID is stored as NULL.
func underParent(parentID core.ID) query.Predicate {
	if parentID.IsZero() {
		return query.IsNull(query.F("parent_id"))
	}
	return query.Eq(query.F("parent_id"), parentID)
}

func (r *MenuRepository) ExistsNameByParentID(
	ctx context.Context,
	name string,
	excludeID, parentID core.ID,
) (bool, error) {
	return r.Find(query.Eq(query.F("name"), name), underParent(parentID)).
		WhereIf(!excludeID.IsZero(), query.Ne(query.F("id"), excludeID)).
		Exists(ctx)
}

func (r *MenuRepository) ExistsChild(ctx context.Context, id core.ID) (bool, error) {
	return r.Find(query.Eq(query.F("parent_id"), id)).Exists(ctx)
}

// Query pages the children of parentID ordered by sort, optionally filtered
// by name and route name.
func (r *MenuRepository) Query(
	ctx context.Context,
	paging query.Paging,
	name, routeName string,
	parentID core.ID,
) (query.Page[domain.Menu], error) {
	b := r.Find(underParent(parentID)).
		WhereIf(name != "", query.Contains(query.F("name"), name)).
		WhereIf(routeName != "", query.Contains(query.F("route_name"), routeName))
	if len(paging.Sort) == 0 {
		b.OrderBy(query.F("sort")).OrderBy(query.F("id"))
	}
	return b.Paginate(ctx, paging)
}
