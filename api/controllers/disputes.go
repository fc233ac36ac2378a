package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Zymart/shopbot-backend/api/middleware"
	"github.com/Zymart/shopbot-backend/api/responses"
	"github.com/Zymart/shopbot-backend/api/validators"
	disputesvc "github.com/Zymart/shopbot-backend/internal/disputes"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

const disputeQueueLimit = 50

// ListOpenDisputes returns the staff queue, high priority first.
func ListOpenDisputes(svc disputesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", disputeQueueLimit, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		disputes, err := svc.ListOpen(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, disputes)
	}
}

// ResolveDispute settles a dispute in one party's favor. Final.
func ResolveDispute(svc disputesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID := middleware.UserIDFromContext(r.Context())
		if adminID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		raw := chi.URLParam(r, "disputeId")
		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dispute id"))
			return
		}

		var payload resolveDisputeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		outcome, err := enums.ParseDisputeResolution(strings.TrimSpace(payload.Outcome))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid outcome"))
			return
		}

		dispute, err := svc.Resolve(r.Context(), id, adminID, outcome, strings.TrimSpace(payload.Note))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dispute)
	}
}

type resolveDisputeRequest struct {
	Outcome string `json:"outcome" validate:"required"`
	Note    string `json:"note,omitempty"`
}
