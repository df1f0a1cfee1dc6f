package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"github.com/frahmantamala/ldc-construction/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, scope *tenancy.Scope, q Query) (*ListResponse, error)
	Export(ctx context.Context, scope *tenancy.Scope, q Query, format ExportFormat) (*ExportResult, error)
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

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	scope, ok := tenancy.ScopeFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrScopeUnavailable)
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp, err := h.Service.List(r.Context(), scope, q)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ExportAuditLogs(w http.ResponseWriter, r *http.Request) {
	scope, ok := tenancy.ScopeFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrScopeUnavailable)
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	format, err := ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	result, err := h.Service.Export(r.Context(), scope, q, format)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Count))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.Logger.Error("failed to write audit export", "error", err)
	}
}

func parseQuery(r *http.Request) (Query, error) {
	params := r.URL.Query()
	q := Query{
		UserID:              params.Get("userId"),
		ConstructionGroupID: params.Get("constructionGroupId"),
	}

	if s := params.Get("action"); s != "" {
		action, ok := ParseAction(s)
		if !ok {
			return q, internal.NewValidationFieldError("action", "unknown audit action: "+s, internal.ErrCodeInvalidFilter)
		}
		q.Action = action
	}
	if s := params.Get("resource"); s != "" {
		resource, ok := ParseResource(s)
		if !ok {
			return q, internal.NewValidationFieldError("resource", "unknown audit resource: "+s, internal.ErrCodeInvalidFilter)
		}
		q.Resource = resource
	}

	var err error
	if q.StartDate, err = ParseDate(params.Get("startDate"), false); err != nil {
		return q, internal.NewValidationFieldError("startDate", err.Error(), internal.ErrCodeInvalidFilter)
	}
	if q.EndDate, err = ParseDate(params.Get("endDate"), true); err != nil {
		return q, internal.NewValidationFieldError("endDate", err.Error(), internal.ErrCodeInvalidFilter)
	}

	if s := params.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 1 {
			return q, internal.NewValidationFieldError("page", "page must be a positive integer", internal.ErrCodeInvalidFilter)
		}
		q.Page = page
	}
	if s := params.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 {
			return q, internal.NewValidationFieldError("limit", "limit must be a positive integer", internal.ErrCodeInvalidFilter)
		}
		q.Limit = limit
	}
	return q, nil
}
