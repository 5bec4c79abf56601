// Package sqlite binds the blog repositories for SQLite.
package sqlite

import (
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/modules/blog/domain"
	"github.com/compozy/modhost/modules/blog/repository"
	"github.com/compozy/modhost/modules/blog/repository/sqlserver"
)

const Dialect = "sqlite"

type (
	CategoryRepository struct{ *sqlserver.CategoryRepository }
	TagRepository      struct{ *sqlserver.TagRepository }
)

func Provide(m *data.Manifest, opts *repository.Options) {
	data.Provide(m, func(dc *data.Context) domain.CategoryRepository {
		return &CategoryRepository{sqlserver.NewCategoryRepository(dc, *opts)}
	}, Dialect)
	data.Provide(m, func(dc *data.Context) domain.TagRepository {
		return &TagRepository{sqlserver.NewTagRepository(dc, *opts)}
	}, Dialect)
}
