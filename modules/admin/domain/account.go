package domain

import (
	"context"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/query"
)

type AccountStatus int

const (
	AccountInactive AccountStatus = iota
	AccountActive
	AccountLocked
)

type Account struct {
	Entity
	SoftDelete
	UserName string        `db:"user_name" json:"user_name"`
	Name     string        `db:"name"      json:"name"`
	Email    string        `db:"email"     json:"email"`
	Phone    string        `db:"phone"     json:"phone"`
	Status   AccountStatus `db:"status"    json:"status"`
}

func (Account) TableName() string { return "account" }

// AccountQuery filters the account list. Empty fields are ignored.
type AccountQuery struct {
	Paging   query.Paging
	UserName string
	Name     string
	Status   *AccountStatus
}

type AccountRepository interface {
	Add(ctx context.Context, a *Account) error
	Get(ctx context.Context, id any) (*Account, error)
	Update(ctx context.Context, a *Account) error
	SoftDelete(ctx context.Context, id any) error
	// ExistsUserName reports whether another account uses userName.
	ExistsUserName(ctx context.Context, userName string, excludeID core.ID) (bool, error)
	Query(ctx context.Context, q AccountQuery) (query.Page[Account], error)
}

// AccountRole links an account to a role.
type AccountRole struct {
	AccountID core.ID `db:"account_id" json:"account_id"`
	RoleID    core.ID `db:"role_id"    json:"role_id"`
}

func (AccountRole) TableName() string { return "account_role" }

type AccountRoleRepository interface {
	Add(ctx context.Context, ar *AccountRole) error
	ExistsByRole(ctx context.Context, roleID core.ID) (bool, error)
	RolesOf(ctx context.Context, accountID core.ID) ([]core.ID, error)
	DeleteByAccount(ctx context.Context, accountID core.ID) (int64, error)
}
