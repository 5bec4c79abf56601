package domain

import (
	"context"

	"github.com/compozy/modhost/engine/core"
)

// Config is a key/value setting edited from the admin UI.
type Config struct {
	Entity
	Key     string `db:"key"     json:"key"`
	Value   string `db:"value"   json:"value"`
	Remarks string `db:"remarks" json:"remarks"`
}

func (Config) TableName() string { return "config" }

type ConfigRepository interface {
	Add(ctx context.Context, c *Config) error
	Update(ctx context.Context, c *Config) error
	GetByKey(ctx context.Context, key string) (*Config, error)
	ExistsKey(ctx context.Context, key string, excludeID core.ID) (bool, error)
}
