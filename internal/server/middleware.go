package server

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID tags every response with an X-Request-ID header, propagating the
// caller's ID when present and generating a UUID when it is not.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}
