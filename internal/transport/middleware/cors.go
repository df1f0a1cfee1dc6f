package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var devOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// CORS allows credentials so the browser sends the cg_filter cookie. With
// no configured origins only local development origins are accepted.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = devOrigins
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", TraceHeader},
		ExposedHeaders:   []string{TraceHeader, "X-Total-Count", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
