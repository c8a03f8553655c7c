// Package requestid assigns each request a correlation identifier. Callers
// may supply one via the X-Correlation-ID header; otherwise a fresh UUID is
// generated. The identifier is echoed back on the response and placed in the
// request context for services and audit records.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"bre-gateway/pkg/requestcontext"
)

// Header is the correlation identifier header honored on requests and set on
// responses.
const Header = "X-Correlation-ID"

// Middleware ensures every request carries a correlation identifier.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
