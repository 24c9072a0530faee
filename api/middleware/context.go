package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/internal/tenant"
	"github.com/framewell/framewell-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID        contextKey = "user_id"
	ctxUserType      contextKey = "user_type"
	ctxRole          contextKey = "member_role"
	ctxStudioID      contextKey = "studio_id"
	ctxAccessTokenID contextKey = "access_token_id"
	ctxUserEmail     contextKey = "user_email"
)

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

func UserTypeFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserType)
}

func RoleFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRole)
}

func StudioIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxStudioID)
}

func AccessTokenIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxAccessTokenID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithStudioID injects the studio identifier into the context for downstream handlers.
func WithStudioID(ctx context.Context, studioID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStudioID, studioID)
}

// WithUserType injects the account type into the context.
func WithUserType(ctx context.Context, userType string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserType, userType)
}

// ActorFromContext rebuilds the tenancy actor the services authorize against.
// Missing or malformed values yield nil fields, which the guard rejects.
func ActorFromContext(ctx context.Context) tenant.Actor {
	actor := tenant.Actor{
		UserType: enums.UserType(UserTypeFromContext(ctx)),
	}
	if id, err := uuid.Parse(UserIDFromContext(ctx)); err == nil {
		actor.UserID = &id
	}
	if id, err := uuid.Parse(StudioIDFromContext(ctx)); err == nil {
		actor.ActiveStudioID = &id
	}
	return actor
}
