// Package domain holds the entities of the admin module and the repository
// interfaces its services depend on.
package domain

import (
	"time"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/query"
)

// Entity carries the key and audit stamps shared by admin tables.
type Entity struct {
	ID         core.ID    `db:"id"          json:"id"`
	CreatedAt  time.Time  `db:"created_at"  json:"created_at"`
	CreatedBy  core.ID    `db:"created_by"  json:"created_by,omitempty"`
	ModifiedAt *time.Time `db:"modified_at" json:"modified_at,omitempty"`
	ModifiedBy core.ID    `db:"modified_by" json:"modified_by,omitempty"`
}

// SoftDelete marks tables whose rows are flagged instead of removed.
type SoftDelete struct {
	Deleted   bool       `db:"deleted"    json:"-"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
	DeletedBy core.ID    `db:"deleted_by" json:"-"`
}

// Entities lists every table of the module.
func Entities() []query.Entity {
	return []query.Entity{
		Account{},
		Role{},
		AccountRole{},
		Menu{},
		Button{},
		RoleMenuButton{},
		Config{},
		AuditInfo{},
	}
}
