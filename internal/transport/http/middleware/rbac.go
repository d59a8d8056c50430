package middleware

import (
	"net/http"

	"payrolldocs/internal/domain/auth"
	"payrolldocs/internal/transport/http/api"
)

func roleOrDefault(role string) string {
	if role == "" {
		return auth.RoleOperator
	}
	return role
}

// RequirePermission rejects callers whose role lacks permission. The 403
// body names the missing permission.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !auth.Allowed(user.Role, permission) {
				api.FailWithDetails(w, http.StatusForbidden, "forbidden", "insufficient permissions",
					map[string]string{"permission": permission, "role": roleOrDefault(user.Role)}, GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
