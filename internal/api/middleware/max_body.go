package middleware

import (
	"net/http"

	"github.com/inkstand-ai/inkstand/internal/api"
)

// MaxBodyBytes caps request body size at limit bytes. Requests declaring a
// larger Content-Length are rejected up front with 413; chunked bodies are
// capped by MaxBytesReader while the handler reads them.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
