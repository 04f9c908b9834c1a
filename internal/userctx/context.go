package userctx

import "context"

type contextKey string

const (
	userIDContextKey contextKey = "user_id"
	roleContextKey   contextKey = "role"
)

const (
	RoleAdmin        = "admin"
	RoleNutritionist = "nutritionist"
	RoleUser         = "user"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleNutritionist, RoleUser:
		return true
	}
	return false
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}

// WithIdentity stores both the user id and the role.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	return context.WithValue(WithUserID(ctx, userID), roleContextKey, role)
}

// GetRole returns the caller's role, RoleUser when none was stored.
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(roleContextKey).(string); ok && role != "" {
		return role
	}
	return RoleUser
}

// IsStaff reports whether the caller is an admin or a nutritionist.
func IsStaff(ctx context.Context) bool {
	role := GetRole(ctx)
	return role == RoleAdmin || role == RoleNutritionist
}
