package volunteer

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"github.com/frahmantamala/ldc-construction/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, scope *tenancy.Scope, selected string, q ListQuery) (*ListResponse, error)
	Get(ctx context.Context, scope *tenancy.Scope, id string) (*Volunteer, error)
	Create(ctx context.Context, scope *tenancy.Scope, selected string, dto CreateVolunteerDTO) (*Volunteer, error)
	Transfer(ctx context.Context, scope *tenancy.Scope, id string, dto TransferDTO) (*TransferResponse, error)
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

func (h *Handler) ListVolunteers(w http.ResponseWriter, r *http.Request) {
	scope, ok := tenancy.ScopeFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrScopeUnavailable)
		return
	}

	q := ListQuery{Search: r.URL.Query().Get("search")}
	for name, dst := range map[string]*int{"page": &q.Page, "limit": &q.Limit} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.WriteAppError(w, internal.NewValidationFieldError(name, "must be a positive integer", internal.ErrCodeInvalidRequest))
			return
		}
		*dst = n
	}

	resp, err := h.Service.List(r.Context(), scope, tenancy.SelectedCG(r), q)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(resp.Total, 10))
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetVolunteer(w http.ResponseWriter, r *http.Request) {
	scope, ok := tenancy.ScopeFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrScopeUnavailable)
		return
	}

	v, err := h.Service.Get(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) CreateVolunteer(w http.ResponseWriter, r *http.Request) {
	scope, ok := tenancy.ScopeFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrScopeUnavailable)
		return
	}

	var dto CreateVolunteerDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	v, err := h.Service.Create(r.Context(), scope, tenancy.SelectedCG(r), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) TransferVolunteer(w http.ResponseWriter, r *http.Request) {
	scope, ok := tenancy.ScopeFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrScopeUnavailable)
		return
	}

	var dto TransferDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	resp, err := h.Service.Transfer(r.Context(), scope, id, dto)
	if err != nil {
		h.Logger.Warn("TransferVolunteer: service error", "error", err, "user_id", scope.UserID, "volunteer_id", id)
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
