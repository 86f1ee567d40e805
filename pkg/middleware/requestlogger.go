package middleware

import (
	"log/slog"
	"net/http"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/logger"
)

// CartIDHeader identifies the shopper's cart. It stands in for the browser's
// local storage key, so there is no authentication behind it.
const CartIDHeader = "X-Cart-ID"

// RequestLogger builds a request-scoped logger enriched with correlation_id,
// cart_id, trace_id and span_id and stores it in context for
// logger.FromContext. Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if cartID := r.Header.Get(CartIDHeader); cartID != "" {
				ctx = logger.WithCartID(ctx, cartID)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
