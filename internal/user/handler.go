package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"github.com/frahmantamala/ldc-construction/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetCurrentUser(ctx context.Context, scope *tenancy.Scope) (*ProfileResponse, error)
	LinkVolunteer(ctx context.Context, scope *tenancy.Scope, targetUserID string, dto LinkVolunteerDTO) (*LinkVolunteerResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	scope, ok := tenancy.ScopeFromContext(r.Context())
	if !ok {
		h.Logger.Error("GetCurrentUser: scope not found in context")
		h.WriteAppError(w, internal.ErrScopeUnavailable)
		return
	}

	resp, err := h.Service.GetCurrentUser(r.Context(), scope)
	if err != nil {
		h.Logger.Error("GetCurrentUser: service failed", "user_id", scope.UserID, "error", err)
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// LinkVolunteer handles POST /users/{id}/link-volunteer
func (h *Handler) LinkVolunteer(w http.ResponseWriter, r *http.Request) {
	scope, ok := tenancy.ScopeFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrScopeUnavailable)
		return
	}

	var dto LinkVolunteerDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp, err := h.Service.LinkVolunteer(r.Context(), scope, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
