package hierarchy

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"github.com/frahmantamala/ldc-construction/internal/transport"
	"github.com/go-chi/chi"
)

const filterCookieMaxAge = 30 * 24 * time.Hour

type ServiceAPI interface {
	Hierarchy(ctx context.Context, scope *tenancy.Scope, level Level) (*HierarchyResponse, error)
	AccessibleConstructionGroups(ctx context.Context, scope *tenancy.Scope) ([]ConstructionGroup, error)
	GetConstructionGroup(ctx context.Context, scope *tenancy.Scope, id string) (*ConstructionGroupResponse, error)
	CreateConstructionGroup(ctx context.Context, scope *tenancy.Scope, dto CreateConstructionGroupDTO) (*ConstructionGroupResponse, bool, error)
	UpdateConstructionGroup(ctx context.Context, scope *tenancy.Scope, id string, dto UpdateConstructionGroupDTO) (*ConstructionGroupResponse, error)
	DeleteConstructionGroup(ctx context.Context, scope *tenancy.Scope, id string) (*ConstructionGroupResponse, error)
	SetFilter(ctx context.Context, scope *tenancy.Scope, previous string, dto CGFilterDTO) (string, error)
	Info(ctx context.Context, scope *tenancy.Scope, selected string) (*CGInfoResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service      ServiceAPI
	SecureCookie bool
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, secureCookie bool) *Handler {
	return &Handler{
		BaseHandler:  baseHandler,
		Service:      service,
		SecureCookie: secureCookie,
	}
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (*tenancy.Scope, bool) {
	scope, ok := tenancy.ScopeFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrScopeUnavailable)
		return nil, false
	}
	return scope, true
}

func (h *Handler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	level, valid := ParseLevel(r.URL.Query().Get("type"))
	if !valid {
		h.WriteAppError(w, internal.NewValidationError(
			"type must be one of branches, zones, regions, construction-groups, cgs, all",
			internal.ErrCodeInvalidLevel))
		return
	}

	resp, err := h.Service.Hierarchy(r.Context(), scope, level)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListAccessibleConstructionGroups(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	groups, err := h.Service.AccessibleConstructionGroups(r.Context(), scope)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ConstructionGroupsResponse{ConstructionGroups: groups})
}

func (h *Handler) GetConstructionGroup(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	resp, err := h.Service.GetConstructionGroup(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateConstructionGroup(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	var dto CreateConstructionGroupDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp, created, err := h.Service.CreateConstructionGroup(r.Context(), scope, dto)
	if err != nil {
		h.Logger.Error("CreateConstructionGroup: service error", "error", err, "user_id", scope.UserID, "code", dto.Code)
		h.WriteAppError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.WriteJSON(w, status, resp)
}

func (h *Handler) UpdateConstructionGroup(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	var dto UpdateConstructionGroupDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	resp, err := h.Service.UpdateConstructionGroup(r.Context(), scope, id, dto)
	if err != nil {
		h.Logger.Error("UpdateConstructionGroup: service error", "error", err, "user_id", scope.UserID, "cg_id", id)
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteConstructionGroup(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	resp, err := h.Service.DeleteConstructionGroup(r.Context(), scope, id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// SetCGFilter stores the super admin's construction group selection in
// the cg_filter cookie.
func (h *Handler) SetCGFilter(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	var dto CGFilterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	next, err := h.Service.SetFilter(r.Context(), scope, tenancy.SelectedCG(r), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	cookie := &http.Cookie{
		Name:     tenancy.FilterCookieName,
		Value:    next,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	resp := CGFilterResponse{Success: true, ConstructionGroupID: next}
	if next == "" {
		cookie.MaxAge = -1
		resp.Message = "CG filter cleared - showing all CGs"
	} else {
		cookie.MaxAge = int(filterCookieMaxAge.Seconds())
		resp.Message = "CG filter set successfully"
	}
	http.SetCookie(w, cookie)
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetCGInfo(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	info, err := h.Service.Info(r.Context(), scope, tenancy.SelectedCG(r))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, info)
}
