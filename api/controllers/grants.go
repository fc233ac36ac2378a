package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Zymart/shopbot-backend/api/middleware"
	"github.com/Zymart/shopbot-backend/api/responses"
	"github.com/Zymart/shopbot-backend/api/validators"
	authzsvc "github.com/Zymart/shopbot-backend/internal/authz"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

// GrantRole gives a user a staff role. Granting owner is rejected by
// the service; there is exactly one owner and it comes from config.
func GrantRole(svc authzsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grantedBy := middleware.UserIDFromContext(r.Context())
		if grantedBy == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload grantRoleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseAdminRole(strings.TrimSpace(payload.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		grant, err := svc.Grant(r.Context(), strings.TrimSpace(payload.UserID), role, grantedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, grant)
	}
}

// RevokeRole removes a user's staff role, effective immediately.
func RevokeRole(svc authzsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		revokedBy := middleware.UserIDFromContext(r.Context())
		if revokedBy == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		userID := strings.TrimSpace(chi.URLParam(r, "userId"))
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user id required"))
			return
		}

		if err := svc.Revoke(r.Context(), userID, revokedBy); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusNoContent, nil)
	}
}

// ListGrants returns every active staff grant.
func ListGrants(svc authzsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grants, err := svc.ListGrants(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, grants)
	}
}

type grantRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}
