package contextutils

import (
	"context"

	"github.com/natours/natours-api/types"
)

// contextKey is the wrapper we use for the names of the keys we store in Contexts
type contextKey struct {
	name string
}

var contextKeyUser = &contextKey{"user"}

// WithContextUser adds the authenticated user to the context
func WithContextUser(ctx context.Context, user types.Record) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKeyUser, user)
}

// GetContextUser returns the user stored by the authentication middleware, or nil on public routes
func GetContextUser(ctx context.Context) types.Record {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.Value(contextKeyUser).(types.Record)
	return user
}

// GetContextUserID returns the identifier of the authenticated user, or "" on public routes
func GetContextUserID(ctx context.Context) string {
	id, _ := GetContextUser(ctx)[types.IDField].(string)
	return id
}
