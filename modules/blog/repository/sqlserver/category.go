// Package sqlserver implements the blog repositories for SQL Server.
package sqlserver

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/query"
	"github.com/compozy/modhost/modules/blog/domain"
	"github.com/compozy/modhost/modules/blog/repository"
)

type CategoryRepository struct {
	data.Repository[domain.Category]
	opts repository.Options
}

func NewCategoryRepository(dc *data.Context, opts repository.Options) *CategoryRepository {
	return &CategoryRepository{Repository: data.NewRepository[domain.Category](dc), opts: opts}
}

func (r *CategoryRepository) ExistsName(ctx context.Context, name string, excludeID core.ID) (bool, error) {
	return r.Find(query.Eq(query.F("name"), name)).
		WhereIf(!excludeID.IsZero(), query.Ne(query.F("id"), excludeID)).
		Exists(ctx)
}

func (r *CategoryRepository) Query(
	ctx context.Context,
	paging query.Paging,
	name string,
) (query.Page[domain.CategoryView], error) {
	b := r.Find().
		WhereIf(name != "", query.Contains(query.F("name"), name)).
		LeftJoin(query.TableOf[domain.Category](), query.EqField(query.F("parent_id"), query.J(1, "id"))).
		Select(query.All(0), query.As(query.J(1, "name"), "parent_name"))
	if len(paging.Sort) == 0 {
		b.OrderBy(query.F("sort")).OrderBy(query.F("name"))
	}
	return query.PaginateAs[domain.CategoryView](ctx, b, r.opts.Paging(paging))
}
