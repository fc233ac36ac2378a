package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Zymart/shopbot-backend/api/middleware"
	"github.com/Zymart/shopbot-backend/api/responses"
	"github.com/Zymart/shopbot-backend/api/validators"
	reportsvc "github.com/Zymart/shopbot-backend/internal/reports"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

const reportQueueLimit = 50

// FileReport lets any authenticated user flag another user, optionally
// tied to a transaction they were part of.
func FileReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reporterID := middleware.UserIDFromContext(r.Context())
		if reporterID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload fileReportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var txID *uuid.UUID
		if payload.TransactionID != nil && *payload.TransactionID != "" {
			parsed, err := uuid.Parse(*payload.TransactionID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction id"))
				return
			}
			txID = &parsed
		}

		report, err := svc.File(r.Context(), reporterID, strings.TrimSpace(payload.ReportedID), txID, strings.TrimSpace(payload.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, report)
	}
}

// ListOpenReports returns the open report queue for staff review.
func ListOpenReports(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", reportQueueLimit, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reports, err := svc.ListOpen(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reports)
	}
}

// ReviewReport closes a report as reviewed with a staff note.
func ReviewReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return closeReport(logg, func(ctx context.Context, reportID uuid.UUID, adminID, note string) (*models.Report, error) {
		return svc.Review(ctx, reportID, adminID, note)
	})
}

// DismissReport closes a report as dismissed with a staff note.
func DismissReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return closeReport(logg, func(ctx context.Context, reportID uuid.UUID, adminID, note string) (*models.Report, error) {
		return svc.Dismiss(ctx, reportID, adminID, note)
	})
}

func closeReport(logg *logger.Logger, call func(ctx context.Context, reportID uuid.UUID, adminID, note string) (*models.Report, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID := middleware.UserIDFromContext(r.Context())
		if adminID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		raw := chi.URLParam(r, "reportId")
		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid report id"))
			return
		}

		var payload closeReportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := call(r.Context(), id, adminID, strings.TrimSpace(payload.Note))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

type fileReportRequest struct {
	ReportedID    string  `json:"reported_id" validate:"required"`
	TransactionID *string `json:"transaction_id,omitempty"`
	Reason        string  `json:"reason" validate:"required"`
}

type closeReportRequest struct {
	Note string `json:"note,omitempty"`
}
