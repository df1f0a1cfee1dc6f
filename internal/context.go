package internal

import "context"

type ctxKey string

const principalKey ctxKey = "principal"

// Principal is the authenticated caller as read from the access token.
// Role here is the token's claim; authorization always uses the role
// reloaded by the scope resolver.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.UserID != ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return ContextWithPrincipal(ctx, Principal{UserID: userID})
}

// UserIDFromContext is empty when the request is unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.UserID
}
