package middleware

import (
	"context"
	"net/http"

	"github.com/gfranca/b3-ledger-backend/internal/api/response"
	"github.com/gfranca/b3-ledger-backend/internal/validation"
)

type contextKey string

const tenantKey contextKey = "tenantID"

// TenantHeader is the header that scopes every ledger request to a tenant.
const TenantHeader = "X-Tenant-ID"

// Tenant extracts and validates the tenant identifier header, rejecting
// requests without a well-formed tenant UUID before they reach a handler.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)

		if err := validation.ValidateTenantID(tenantID); err != nil {
			if verr, ok := err.(*validation.Error); ok {
				response.RespondValidationError(w, verr)
				return
			}
			response.RespondError(w, http.StatusBadRequest, "invalid tenant ID", err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), tenantKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantID returns the validated tenant identifier stored by the Tenant
// middleware. Empty when the middleware did not run.
func TenantID(ctx context.Context) string {
	tenantID, _ := ctx.Value(tenantKey).(string)
	return tenantID
}
