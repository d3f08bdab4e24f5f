package http

import (
	"net/http"

	"github.com/utafrali/storefront/pkg/httputil"
)

// sessionHeader carries the anonymous session identifier. Carts, wishlists,
// and login sessions are all scoped to it.
const sessionHeader = "X-Session-ID"

// RequireSession rejects requests that do not carry a session ID.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(sessionHeader) == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:    "INVALID_INPUT",
					Message: sessionHeader + " header is required",
				},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContentTypeJSON sets the JSON content type on every response.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func sessionID(r *http.Request) string {
	return r.Header.Get(sessionHeader)
}
