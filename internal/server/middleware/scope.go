package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequireManager rejects requests whose context carries no manager scope.
// Every ledger and notice query is filtered by that manager.
func RequireManager() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mid, ok := ManagerIDFromContext(r.Context())
			if !ok || mid == uuid.Nil {
				http.Error(w, `{"title":"Forbidden","status":403,"detail":"valid manager required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
