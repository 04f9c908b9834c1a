package auth

import (
	"context"

	"github.com/fdg312/nutridesk/internal/userctx"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

// DefaultIdentity is injected when tokens are not required and none is sent.
var DefaultIdentity = Identity{UserID: "default", Role: userctx.RoleAdmin}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return userctx.WithIdentity(ctx, id.UserID, id.Role)
}

func GetUserID(ctx context.Context) (string, bool) {
	return userctx.GetUserID(ctx)
}
