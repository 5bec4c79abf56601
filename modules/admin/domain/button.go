package domain

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/query"
)

// Button is an action permission under a menu.
type Button struct {
	Entity
	MenuID  core.ID `db:"menu_id" json:"menu_id"`
	Name    string  `db:"name"    json:"name"`
	Code    string  `db:"code"    json:"code"`
	Icon    string  `db:"icon"    json:"icon"`
	Remarks string  `db:"remarks" json:"remarks"`
}

func (Button) TableName() string { return "button" }

// ButtonView is a button with the name of the account that created it.
type ButtonView struct {
	Button
	Creator *string `db:"creator" json:"creator"`
}

// RoleMenuButton grants a button of a menu to a role.
type RoleMenuButton struct {
	RoleID   core.ID `db:"role_id"   json:"role_id"`
	MenuID   core.ID `db:"menu_id"   json:"menu_id"`
	ButtonID core.ID `db:"button_id" json:"button_id"`
}

func (RoleMenuButton) TableName() string { return "role_menu_button" }

type ButtonRepository interface {
	Add(ctx context.Context, b *Button) error
	Get(ctx context.Context, id any) (*Button, error)
	Query(ctx context.Context, paging query.Paging, menuID core.ID, name string) (query.Page[ButtonView], error)
	// ExistsCode reports whether another button uses code.
	ExistsCode(ctx context.Context, code string, excludeID core.ID) (bool, error)
	QueryByMenu(ctx context.Context, menuID core.ID) ([]Button, error)
	// QueryCodeByAccount lists the button codes granted to an account
	// through its roles.
	QueryCodeByAccount(ctx context.Context, accountID core.ID) ([]string, error)
	DeleteByMenu(ctx context.Context, menuID core.ID) (int64, error)
	// UpdateForSync rewrites name and icon of the button matching menu and
	// code, leaving every other column untouched.
	UpdateForSync(ctx context.Context, b *Button) (bool, error)
}

type RoleMenuButtonRepository interface {
	Add(ctx context.Context, rmb *RoleMenuButton) error
	DeleteByRole(ctx context.Context, roleID core.ID) (int64, error)
	DeleteByMenu(ctx context.Context, menuID core.ID) (int64, error)
}
