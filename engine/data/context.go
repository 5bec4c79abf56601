package data

import (
	"github.com/compozy/modhost/engine/data/driver"
	"github.com/compozy/modhost/pkg/logger"
)

// Context is the scoped handle repositories run on. While its unit of work
// is in a transaction every statement goes through that transaction;
// otherwise statements run on the pool in autocommit mode. A Context belongs
// to one scope and is not safe for concurrent use.
type Context struct {
	opts *Options
	tx   driver.Tx
}

func newContext(opts *Options) *Context {
	return &Context{opts: opts}
}

// NewContext returns a standalone Context over opts, for tools and tests
// that work outside a Scope.
func NewContext(opts *Options) *Context {
	return newContext(opts)
}

func (c *Context) Options() *Options { return c.opts }

func (c *Context) Dialect() driver.Dialect { return c.opts.dialect }

// Executor is the open transaction, or the pool when there is none.
func (c *Context) Executor() driver.Executor {
	if c.tx != nil {
		return c.tx
	}
	return c.opts.pool
}

func (c *Context) InTransaction() bool { return c.tx != nil }

func (c *Context) Logger() logger.Logger { return c.opts.log }

func (c *Context) Accessor() Accessor { return c.opts.accessor }
