package sqlserver

import (
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/modules/blog/domain"
	"github.com/compozy/modhost/modules/blog/repository"
)

const Dialect = "sqlserver"

// Provide declares the SQL Server implementations on m. opts is read when
// a repository is built, after the module options are loaded.
func Provide(m *data.Manifest, opts *repository.Options) {
	data.Provide(m, func(dc *data.Context) domain.CategoryRepository {
		return NewCategoryRepository(dc, *opts)
	}, Dialect)
	data.Provide(m, func(dc *data.Context) domain.TagRepository {
		return NewTagRepository(dc, *opts)
	}, Dialect)
}
