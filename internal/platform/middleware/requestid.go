package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"verdict/pkg/requestcontext"
)

// RequestID assigns every request a correlation ID: the caller's
// X-Request-ID when present, a fresh UUID otherwise. The ID is echoed back
// on the response so clients can correlate logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
