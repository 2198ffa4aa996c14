package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"document-qa/internal/helper"
)

// RequestID keeps an incoming X-Request-ID or assigns a random UUID, and
// stores it where chi's GetReqID finds it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(chimiddleware.RequestIDHeader)
		if requestID == "" {
			id, err := helper.GenerateUUID()
			if err == nil {
				requestID = id
			}
		}
		if requestID != "" {
			w.Header().Set(chimiddleware.RequestIDHeader, requestID)
		}
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
