// Package actor carries the authenticated caller through a request context.
// The auth middleware is the only writer; everything below it treats the
// actor as already verified.
package actor

import "context"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Actor struct {
	UserID string
	Email  string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type ctxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}

// LogFields returns zap-style key/value pairs describing the caller.
func LogFields(ctx context.Context) []interface{} {
	a, ok := FromContext(ctx)
	if !ok {
		return []interface{}{"actor", "anonymous"}
	}
	return []interface{}{"actor", a.UserID, "role", a.Role}
}
