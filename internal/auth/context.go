// Package auth carries the identity resolved by the upstream authentication
// collaborator. The core trusts these values; it never validates credentials.
package auth

import "context"

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

const RoleAdmin = "ADMIN"

func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func IsAdmin(ctx context.Context) bool {
	v, ok := ctx.Value(roleKey).(string)
	return ok && v == RoleAdmin
}
