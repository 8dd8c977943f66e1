package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/thanhldv/store-backoffice/internal/auth"
)

// RequirePermissions declares an endpoint's required-permission set and
// runs the authorization gate after the auth middleware has attached the
// caller's identity. Possessing any one of the listed permissions
// suffices. The 403 body echoes the required list only, never what the
// caller actually holds.
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := auth.IdentityFromContext(r.Context())

			err := auth.Authorize(identity, permissions...)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			if errors.Is(err, auth.ErrUnauthenticated) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			var denied *auth.PermissionDeniedError
			if errors.As(err, &denied) {
				slog.Warn("access denied: insufficient permissions",
					"user_id", identity.ID,
					"required_permissions", denied.Required)
				http.Error(w, denied.Error(), http.StatusForbidden)
				return
			}

			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
