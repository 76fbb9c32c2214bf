package middleware

import (
	"net/http"

	"github.com/brightclass/backoffice/internal/http/response"
	"github.com/brightclass/backoffice/internal/observability"
	"github.com/brightclass/backoffice/internal/service"
)

// RequirePermission gates a route on the caller's role holding the named
// permission. Unknown roles are denied by the evaluator.
func RequirePermission(eval *service.PermissionEvaluator, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
				return
			}
			if !eval.HasPermission(principal.Role, permission) {
				observability.RecordPermissionCheck(r.Context(), principal.Role, "denied")
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permission", map[string]string{"required": permission})
				return
			}
			observability.RecordPermissionCheck(r.Context(), principal.Role, "granted")
			next.ServeHTTP(w, r)
		})
	}
}
