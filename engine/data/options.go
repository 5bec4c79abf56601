package data

import (
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/pkg/logger"
)

// Options is the process-wide state of one connection: the resolved
// dialect, the pool and the ambient services every Context of the
// connection shares. It is built once by the Factory and never mutated.
type Options struct {
	conn     Connection
	dialect  driver.Dialect
	pool     driver.Conn
	log      logger.Logger
	accessor Accessor
}

// Module is the ID of the module owning the connection.
func (o *Options) Module() string { return o.conn.Name }

// Connection returns a copy of the connection descriptor.
func (o *Options) Connection() Connection { return o.conn.clone() }

func (o *Options) Dialect() driver.Dialect { return o.dialect }

// Pool is the shared connection pool.
func (o *Options) Pool() driver.Conn { return o.pool }

func (o *Options) Logger() logger.Logger { return o.log }

func (o *Options) Accessor() Accessor { return o.accessor }

// Close closes the pool.
func (o *Options) Close() error { return o.pool.Close() }
