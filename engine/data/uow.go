package data

import (
	"context"
	"fmt"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/driver"
)

// State is the lifecycle state of a UnitOfWork.
type State int

const (
	Idle State = iota
	InTransaction
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InTransaction:
		return "in_transaction"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) terminal() bool { return s == Committed || s == RolledBack }

// UnitOfWork demarcates one transaction on a Context. It is used once:
// after Commit or Rollback it cannot begin again.
type UnitOfWork struct {
	dc    *Context
	state State
}

func newUnitOfWork(dc *Context) *UnitOfWork {
	return &UnitOfWork{dc: dc}
}

// NewUnitOfWork returns a unit of work over a standalone Context.
func NewUnitOfWork(dc *Context) *UnitOfWork {
	return newUnitOfWork(dc)
}

func (u *UnitOfWork) State() State { return u.state }

// Context is the data context the unit of work controls.
func (u *UnitOfWork) Context() *Context { return u.dc }

func (u *UnitOfWork) invalid(op string) error {
	return core.NewError(
		fmt.Errorf("cannot %s a unit of work that is %s", op, u.state),
		core.CodeInvalidState,
		map[string]any{"connection": u.dc.opts.conn.Name, "state": u.state.String()},
	)
}

// Begin opens a transaction. It fails with INVALID_STATE unless the unit of
// work is idle.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.state != Idle {
		return u.invalid("begin")
	}
	tx, err := u.dc.opts.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", driver.Classify(u.dc.opts.dialect, err))
	}
	u.dc.tx = tx
	u.state = InTransaction
	u.dc.opts.log.Debug("Transaction started")
	return nil
}

// Commit commits the open transaction. Without one it does nothing. A failed
// commit leaves the unit of work rolled back.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.state != InTransaction {
		return nil
	}
	tx := u.detach()
	if err := tx.Commit(ctx); err != nil {
		u.state = RolledBack
		return fmt.Errorf("commit transaction: %w", driver.Classify(u.dc.opts.dialect, err))
	}
	u.state = Committed
	u.dc.opts.log.Debug("Transaction committed")
	return nil
}

// Rollback discards the open transaction. Without one it does nothing.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.state != InTransaction {
		return nil
	}
	tx := u.detach()
	u.state = RolledBack
	if err := tx.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback transaction: %w", driver.Classify(u.dc.opts.dialect, err))
	}
	u.dc.opts.log.Debug("Transaction rolled back")
	return nil
}

func (u *UnitOfWork) detach() driver.Tx {
	tx := u.dc.tx
	u.dc.tx = nil
	return tx
}

// Run executes fn inside a transaction. It commits when fn returns nil and
// rolls back when fn fails or panics; panics are re-raised after rollback.
func (u *UnitOfWork) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := u.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := u.Rollback(ctx); rbErr != nil {
				u.dc.opts.log.Error("Rollback after panic failed", "error", rbErr)
			}
			panic(p)
		}
	}()
	if err := fn(ctx); err != nil {
		if rbErr := u.Rollback(ctx); rbErr != nil {
			u.dc.opts.log.Error("Rollback failed", "error", rbErr)
		}
		return err
	}
	return u.Commit(ctx)
}
