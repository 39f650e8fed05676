package middleware

import (
	"net/http"

	"github.com/leavetime/leavetime/internal/api/models"
)

// DefaultMaxBodyBytes bounds estimate request bodies.
const DefaultMaxBodyBytes = 16 << 10

// MaxBodySize limits request bodies to limit bytes. A declared
// Content-Length over the limit is rejected with 413 up front; otherwise the
// body is wrapped so reads past the limit fail with *http.MaxBytesError.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				problem := models.NewPayloadTooLarge(GetRequestID(r.Context()), "request body too large")
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
