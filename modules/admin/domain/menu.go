package domain

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/query"
)

type MenuType int

const (
	MenuNode MenuType = iota
	MenuRoute
	MenuLink
)

// Menu is a navigation entry. Root menus have a zero ParentID.
type Menu struct {
	Entity
	ParentID  core.ID  `db:"parent_id"  json:"parent_id"`
	Name      string   `db:"name"       json:"name"`
	Type      MenuType `db:"type"       json:"type"`
	RouteName string   `db:"route_name" json:"route_name"`
	Icon      string   `db:"icon"       json:"icon"`
	Sort      int      `db:"sort"       json:"sort"`
	Show      bool     `db:"show"       json:"show"`
	Remarks   string   `db:"remarks"    json:"remarks"`
}

func (Menu) TableName() string { return "menu" }

type MenuRepository interface {
	Add(ctx context.Context, m *Menu) error
	Get(ctx context.Context, id any) (*Menu, error)
	Update(ctx context.Context, m *Menu) error
	Delete(ctx context.Context, id any) error
	// ExistsNameByParentID reports whether a sibling under parentID already
	// uses name.
	ExistsNameByParentID(ctx context.Context, name string, excludeID, parentID core.ID) (bool, error)
	ExistsChild(ctx context.Context, id core.ID) (bool, error)
	Query(ctx context.Context, paging query.Paging, name, routeName string, parentID core.ID) (query.Page[Menu], error)
}
