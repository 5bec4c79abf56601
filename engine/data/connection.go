package data

import (
	"slices"

	"github.com/compozy/modhost/engine/data/driver"
)

// Connection describes one configured database connection. Name matches the
// ID of the module that owns it. EntityTables lists the tables declared by
// that module's domain and is filled in by the Factory.
type Connection struct {
	Name             string
	Dialect          string
	ConnectionString string
	Pool             driver.PoolSettings
	EntityTables     []string
}

func (c Connection) clone() Connection {
	c.EntityTables = slices.Clone(c.EntityTables)
	return c
}
