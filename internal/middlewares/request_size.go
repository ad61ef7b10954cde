package middlewares

import (
	"net/http"
	"strconv"
)

// RequestSizeLimitMiddleware rejects bodies larger than maxBytes. Requests
// with a known oversized Content-Length get an immediate 413; chunked bodies
// are capped by MaxBytesReader and fail at read time in the handler.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"error":"request body exceeds ` + strconv.FormatInt(maxBytes, 10) + ` bytes","code":"PAYLOAD_TOO_LARGE"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
