package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/httputil"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/middleware"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// cartIDKey is the context key for the shopper's cart ID.
const cartIDKey contextKey = "cart_id"

// CartIDFromHeader is middleware that reads the X-Cart-ID header, which the
// storefront generates once per browser and keeps in local storage, and stores
// its canonical form in the request context. Missing or malformed IDs are
// rejected with 400.
func CartIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(middleware.CartIDHeader)
		if raw == "" {
			// EventSource cannot set headers, so the stream endpoint also
			// accepts the ID as a query parameter.
			raw = r.URL.Query().Get("cart_id")
		}
		if raw == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-Cart-ID header is required"},
			})
			return
		}

		id, ok := httputil.ParseUUID(w, "cart id", raw)
		if !ok {
			return
		}

		ctx := context.WithValue(r.Context(), cartIDKey, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cartIDFromContext extracts the cart ID stored by CartIDFromHeader.
func cartIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(cartIDKey).(string)
	return id
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
