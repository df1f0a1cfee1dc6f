package tenancy

import (
	"context"
	"net/http"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/transport"
	"github.com/frahmantamala/ldc-construction/pkg/logger"
)

// FilterCookieName holds the construction group a super admin is viewing.
const FilterCookieName = "cg_filter"

type scopeCtxKey struct{}

func ContextWithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, scope)
}

// ScopeFromContext is for the HTTP layer only. Services receive the scope
// as an argument.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeCtxKey{}).(*Scope)
	return scope, ok && scope != nil
}

// SelectedCG returns the cg_filter cookie value, "" when absent.
func SelectedCG(r *http.Request) string {
	c, err := r.Cookie(FilterCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

type ScopeResolver interface {
	Resolve(ctx context.Context, userID string) (*Scope, error)
}

type Middleware struct {
	*transport.BaseHandler
	resolver ScopeResolver
}

func NewMiddleware(base *transport.BaseHandler, resolver ScopeResolver) *Middleware {
	return &Middleware{BaseHandler: base, resolver: resolver}
}

// ResolveScope must run after authentication.
func (m *Middleware) ResolveScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := internal.UserIDFromContext(r.Context())
		scope, err := m.resolver.Resolve(r.Context(), userID)
		if err != nil {
			m.WriteAppError(w, internal.NewInternalError("failed to resolve scope", err))
			return
		}
		if scope == nil {
			m.WriteAppError(w, internal.ErrScopeUnavailable)
			return
		}

		ctx := ContextWithScope(r.Context(), scope)
		ctx = logger.With(ctx, "role", scope.Role.String(), "cg_id", scope.ConstructionGroupID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) RequireSuperAdmin(next http.Handler) http.Handler {
	return m.require(func(s *Scope) bool { return s.CanViewAllBranches }, internal.ErrSuperAdminOnly)(next)
}

func (m *Middleware) RequireCGManager(next http.Handler) http.Handler {
	return m.require(func(s *Scope) bool { return s.CanManageCG }, internal.ErrCGAccessDenied)(next)
}

func (m *Middleware) require(allowed func(*Scope) bool, denied *internal.AppError) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := ScopeFromContext(r.Context())
			if !ok {
				m.WriteAppError(w, internal.ErrScopeUnavailable)
				return
			}
			if !allowed(scope) {
				logger.From(r.Context()).WarnContext(r.Context(), "access denied: insufficient capability",
					"user_id", scope.UserID,
					"role", scope.Role.String(),
					"path", r.URL.Path)
				m.WriteAppError(w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
