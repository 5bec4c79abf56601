// Package domain holds the blog entities and repository interfaces.
package domain

import (
	"context"
	"time"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/query"
)

type Entity struct {
	ID         core.ID    `db:"id"          json:"id"`
	CreatedAt  time.Time  `db:"created_at"  json:"created_at"`
	CreatedBy  core.ID    `db:"created_by"  json:"created_by,omitempty"`
	ModifiedAt *time.Time `db:"modified_at" json:"modified_at,omitempty"`
	ModifiedBy core.ID    `db:"modified_by" json:"modified_by,omitempty"`
}

// Category groups posts. Root categories have no parent.
type Category struct {
	Entity
	Name     string  `db:"name"      json:"name"`
	ParentID core.ID `db:"parent_id" json:"parent_id,omitempty"`
	Remarks  string  `db:"remarks"   json:"remarks"`
	Sort     int     `db:"sort"      json:"sort"`
}

func (Category) TableName() string { return "category" }

// CategoryView is a category with the name of its parent.
type CategoryView struct {
	Category
	ParentName *string `db:"parent_name" json:"parent_name,omitempty"`
}

type CategoryRepository interface {
	Add(ctx context.Context, c *Category) error
	Get(ctx context.Context, id any) (*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id any) error
	ExistsName(ctx context.Context, name string, excludeID core.ID) (bool, error)
	// Query pages categories ordered by sort then name unless paging sorts.
	Query(ctx context.Context, paging query.Paging, name string) (query.Page[CategoryView], error)
}

type Tag struct {
	Entity
	Name    string `db:"name"    json:"name"`
	Remarks string `db:"remarks" json:"remarks"`
}

func (Tag) TableName() string { return "tag" }

type TagRepository interface {
	Add(ctx context.Context, t *Tag) error
	Get(ctx context.Context, id any) (*Tag, error)
	Update(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id any) error
	ExistsName(ctx context.Context, name string, excludeID core.ID) (bool, error)
	// Query pages tags, newest first unless paging sorts.
	Query(ctx context.Context, paging query.Paging, name string) (query.Page[Tag], error)
}

func Entities() []query.Entity {
	return []query.Entity{Category{}, Tag{}}
}
