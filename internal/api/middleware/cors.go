package middleware

import (
	"net/http"

	"document-qa/pkg/response"
)

// CORS allows any origin. Preflight requests are answered here with 204.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			response.NoContent(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
