package sqlserver

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/query"
	"github.com/compozy/modhost/modules/blog/domain"
	"github.com/compozy/modhost/modules/blog/repository"
)

type TagRepository struct {
	data.Repository[domain.Tag]
	opts repository.Options
}

func NewTagRepository(dc *data.Context, opts repository.Options) *TagRepository {
	return &TagRepository{Repository: data.NewRepository[domain.Tag](dc), opts: opts}
}

func (r *TagRepository) ExistsName(ctx context.Context, name string, excludeID core.ID) (bool, error) {
	return r.Find(query.Eq(query.F("name"), name)).
		WhereIf(!excludeID.IsZero(), query.Ne(query.F("id"), excludeID)).
		Exists(ctx)
}

func (r *TagRepository) Query(ctx context.Context, paging query.Paging, name string) (query.Page[domain.Tag], error) {
	b := r.Find().WhereIf(name != "", query.Contains(query.F("name"), name))
	if len(paging.Sort) == 0 {
		b.OrderByDescending(query.F("created_at")).OrderBy(query.F("id"))
	}
	return b.Paginate(ctx, r.opts.Paging(paging))
}
