package audit

import (
	"context"
	"net/http"
	"strings"
)

// RequestMeta carries client attribution from the inbound request.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type metaCtxKey struct{}

func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaCtxKey{}, meta)
}

func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(metaCtxKey{}).(RequestMeta)
	return meta, ok
}

// ClientIP follows X-Forwarded-For (first hop), X-Real-IP, then
// CF-Connecting-IP. It does not fall back to RemoteAddr.
func ClientIP(h http.Header) string {
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(h.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return strings.TrimSpace(h.Get("CF-Connecting-IP"))
}

// CaptureRequestMeta stores the caller's IP and user agent for the
// recorder.
func CaptureRequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := RequestMeta{
			IPAddress: ClientIP(r.Header),
			UserAgent: r.Header.Get("User-Agent"),
		}
		next.ServeHTTP(w, r.WithContext(ContextWithRequestMeta(r.Context(), meta)))
	})
}
