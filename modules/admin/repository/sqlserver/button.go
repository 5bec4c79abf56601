package sqlserver

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/query"
	"github.com/compozy/modhost/modules/admin/domain"
)

type ButtonRepository struct {
	data.Repository[domain.Button]
}

func NewButtonRepository(dc *data.Context) *ButtonRepository {
	return &ButtonRepository{Repository: data.NewRepository[domain.Button](dc)}
}

// Query pages the buttons of a menu, optionally filtered by name, with the
// creator's account name.
func (r *ButtonRepository) Query(
	ctx context.Context,
	paging query.Paging,
	menuID core.ID,
	name string,
) (query.Page[domain.ButtonView], error) {
	b := r.Find(query.Eq(query.F("menu_id"), menuID)).
		WhereIf(name != "", query.Contains(query.F("name"), name)).
		LeftJoin(query.TableOf[domain.Account](), query.EqField(query.F("created_by"), query.J(1, "id"))).
		Select(query.All(0), query.As(query.J(1, "name"), "creator"))
	if len(paging.Sort) == 0 {
		b.OrderBy(query.F("code"))
	}
	return query.PaginateAs[domain.ButtonView](ctx, b, paging)
}

func (r *ButtonRepository) ExistsCode(ctx context.Context, code string, excludeID core.ID) (bool, error) {
	return r.Find(query.Eq(query.F("code"), code)).
		WhereIf(!excludeID.IsZero(), query.Ne(query.F("id"), excludeID)).
		Exists(ctx)
}

func (r *ButtonRepository) QueryByMenu(ctx context.Context, menuID core.ID) ([]domain.Button, error) {
	return r.Find(query.Eq(query.F("menu_id"), menuID)).OrderBy(query.F("code")).ToList(ctx)
}

func (r *ButtonRepository) QueryCodeByAccount(ctx context.Context, accountID core.ID) ([]string, error) {
	b := r.Find().
		InnerJoin(query.TableOf[domain.RoleMenuButton](), query.EqField(query.F("id"), query.J(1, "button_id"))).
		InnerJoin(query.TableOf[domain.AccountRole](), query.And(
			query.EqField(query.J(1, "role_id"), query.J(2, "role_id")),
			query.Eq(query.J(2, "account_id"), accountID),
		)).
		Select(query.Col(query.F("code"))).
		OrderBy(query.F("code"))
	return query.ListAs[string](ctx, b)
}

func (r *ButtonRepository) DeleteByMenu(ctx context.Context, menuID core.ID) (int64, error) {
	return r.Find(query.Eq(query.F("menu_id"), menuID)).Delete(ctx)
}

func (r *ButtonRepository) UpdateForSync(ctx context.Context, button *domain.Button) (bool, error) {
	n, err := r.Find(
		query.Eq(query.F("menu_id"), button.MenuID),
		query.Eq(query.F("code"), button.Code),
	).Update(ctx, query.Set("icon", button.Icon).Set("name", button.Name))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
