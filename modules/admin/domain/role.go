package domain

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/query"
)

// Role groups button permissions. Specified roles are reserved by the
// system and cannot be bound manually.
type Role struct {
	Entity
	SoftDelete
	Name      string `db:"name"         json:"name"`
	Remarks   string `db:"remarks"      json:"remarks"`
	Specified bool   `db:"is_specified" json:"is_specified"`
}

func (Role) TableName() string { return "role" }

type RoleRepository interface {
	Add(ctx context.Context, r *Role) error
	Get(ctx context.Context, id any) (*Role, error)
	Exists(ctx context.Context, id any) (bool, error)
	Update(ctx context.Context, r *Role) error
	SoftDelete(ctx context.Context, id any) error
	ExistsName(ctx context.Context, name string, excludeID core.ID) (bool, error)
	Query(ctx context.Context, paging query.Paging, name string) (query.Page[Role], error)
}
