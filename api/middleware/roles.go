package middleware

import (
	"context"
	"net/http"

	"github.com/Zymart/shopbot-backend/api/responses"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

// roleChecker resolves staff roles from storage. The authz service
// satisfies it.
type roleChecker interface {
	RoleOf(ctx context.Context, userID string) (enums.AdminRole, bool, error)
}

// RequireRole rejects requests whose authenticated user does not hold at
// least the given staff role. Roles come from the grants table, not from the
// token, so a revocation takes effect immediately.
func RequireRole(authz roleChecker, minimum enums.AdminRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}

			role, ok, err := authz.RoleOf(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !ok || !role.AtLeast(minimum) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required"))
				return
			}

			ctx := WithRole(r.Context(), string(role))
			if logg != nil {
				ctx = logg.WithField(ctx, "actor_role", string(role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
