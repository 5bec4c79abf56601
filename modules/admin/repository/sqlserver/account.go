// Package sqlserver implements the admin repositories for SQL Server. The
// other dialect packages embed these implementations.
package sqlserver

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/query"
	"github.com/compozy/modhost/modules/admin/domain"
)

type AccountRepository struct {
	data.Repository[domain.Account]
}

func NewAccountRepository(dc *data.Context) *AccountRepository {
	return &AccountRepository{Repository: data.NewRepository[domain.Account](dc)}
}

func (r *AccountRepository) ExistsUserName(ctx context.Context, userName string, excludeID core.ID) (bool, error) {
	return r.Find(query.Eq(query.F("user_name"), userName)).
		WhereIf(!excludeID.IsZero(), query.Ne(query.F("id"), excludeID)).
		Exists(ctx)
}

func (r *AccountRepository) Query(ctx context.Context, q domain.AccountQuery) (query.Page[domain.Account], error) {
	b := r.Find().
		WhereIf(q.UserName != "", query.Contains(query.F("user_name"), q.UserName)).
		WhereIf(q.Name != "", query.Contains(query.F("name"), q.Name))
	if q.Status != nil {
		b.Where(query.Eq(query.F("status"), int(*q.Status)))
	}
	if len(q.Paging.Sort) == 0 {
		b.OrderBy(query.F("user_name"))
	}
	return b.Paginate(ctx, q.Paging)
}

type AccountRoleRepository struct {
	data.Repository[domain.AccountRole]
}

func NewAccountRoleRepository(dc *data.Context) *AccountRoleRepository {
	return &AccountRoleRepository{Repository: data.NewRepository[domain.AccountRole](dc)}
}

func (r *AccountRoleRepository) ExistsByRole(ctx context.Context, roleID core.ID) (bool, error) {
	return r.Find(query.Eq(query.F("role_id"), roleID)).Exists(ctx)
}

func (r *AccountRoleRepository) RolesOf(ctx context.Context, accountID core.ID) ([]core.ID, error) {
	b := r.Find(query.Eq(query.F("account_id"), accountID)).
		Select(query.Col(query.F("role_id"))).
		OrderBy(query.F("role_id"))
	return query.ListAs[core.ID](ctx, b)
}

func (r *AccountRoleRepository) DeleteByAccount(ctx context.Context, accountID core.ID) (int64, error) {
	return r.Find(query.Eq(query.F("account_id"), accountID)).Delete(ctx)
}
