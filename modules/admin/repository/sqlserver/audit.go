package sqlserver

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/query"
	"github.com/compozy/modhost/modules/admin/domain"
)

type AuditInfoRepository struct {
	data.Repository[domain.AuditInfo]
}

func NewAuditInfoRepository(dc *data.Context) *AuditInfoRepository {
	return &AuditInfoRepository{Repository: data.NewRepository[domain.AuditInfo](dc)}
}

func (r *AuditInfoRepository) withAccount(b *query.Builder[domain.AuditInfo]) *query.Builder[domain.AuditInfo] {
	return b.
		LeftJoin(query.TableOf[domain.Account](), query.EqField(query.F("account_id"), query.J(1, "id"))).
		Select(query.All(0), query.As(query.J(1, "name"), "account_name"))
}

// Query pages audit entries newest first.
func (r *AuditInfoRepository) Query(ctx context.Context, q domain.AuditInfoQuery) (query.Page[domain.AuditInfoView], error) {
	b := r.Find().
		WhereIf(!q.AccountID.IsZero(), query.Eq(query.F("account_id"), q.AccountID)).
		WhereIf(q.Area != "", query.Eq(query.F("area"), q.Area)).
		WhereIf(q.Controller != "", query.Eq(query.F("controller"), q.Controller)).
		WhereIf(q.Action != "", query.Eq(query.F("action"), q.Action))
	if q.Start != nil {
		b.Where(query.Gte(query.F("execution_time"), *q.Start))
	}
	if q.End != nil {
		b.Where(query.Lte(query.F("execution_time"), *q.End))
	}
	if len(q.Paging.Sort) == 0 {
		b.OrderByDescending(query.F("execution_time")).OrderBy(query.F("id"))
	}
	return query.PaginateAs[domain.AuditInfoView](ctx, r.withAccount(b), q.Paging)
}

func (r *AuditInfoRepository) Details(ctx context.Context, id core.ID) (*domain.AuditInfoView, error) {
	return query.FirstAs[domain.AuditInfoView](ctx, r.withAccount(r.Find(query.Eq(query.F("id"), id))))
}
