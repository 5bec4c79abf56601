package data

import (
	"context"

	"github.com/compozy/modhost/engine/core"
)

// Accessor resolves the account acting on behalf of a request.
type Accessor interface {
	AccountID(ctx context.Context) (core.ID, bool)
}

// AccessorFunc adapts a function to Accessor.
type AccessorFunc func(ctx context.Context) (core.ID, bool)

func (f AccessorFunc) AccountID(ctx context.Context) (core.ID, bool) { return f(ctx) }

type accountKey struct{}

// WithAccount stores the acting account in ctx.
func WithAccount(ctx context.Context, id core.ID) context.Context {
	return context.WithValue(ctx, accountKey{}, id)
}

// AccountFromContext returns the account stored by WithAccount.
func AccountFromContext(ctx context.Context) (core.ID, bool) {
	id, ok := ctx.Value(accountKey{}).(core.ID)
	return id, ok && !id.IsZero()
}

// ContextAccessor reads the account stored by WithAccount.
var ContextAccessor Accessor = AccessorFunc(AccountFromContext)
