package sqlserver

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/engine/data/query"
	"github.com/compozy/modhost/modules/admin/domain"
)

type ConfigRepository struct {
	data.Repository[domain.Config]
}

func NewConfigRepository(dc *data.Context) *ConfigRepository {
	return &ConfigRepository{Repository: data.NewRepository[domain.Config](dc)}
}

func (r *ConfigRepository) GetByKey(ctx context.Context, key string) (*domain.Config, error) {
	return r.Find(query.Eq(query.F("key"), key)).First(ctx)
}

func (r *ConfigRepository) ExistsKey(ctx context.Context, key string, excludeID core.ID) (bool, error) {
	return r.Find(query.Eq(query.F("key"), key)).
		WhereIf(!excludeID.IsZero(), query.Ne(query.F("id"), excludeID)).
		Exists(ctx)
}
