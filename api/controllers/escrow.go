package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Zymart/shopbot-backend/api/middleware"
	"github.com/Zymart/shopbot-backend/api/responses"
	"github.com/Zymart/shopbot-backend/api/validators"
	escrowsvc "github.com/Zymart/shopbot-backend/internal/escrow"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

// StartPurchase claims one unit of a listing and opens the escrow flow for
// the acting buyer.
func StartPurchase(svc escrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID := middleware.UserIDFromContext(r.Context())
		if buyerID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload startPurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listingID, err := uuid.Parse(payload.ListingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id"))
			return
		}

		transaction, err := svc.Purchase(r.Context(), listingID, buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, transaction)
	}
}

type startPurchaseRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
}

// ConfirmPayment records that the buyer says payment went out.
func ConfirmPayment(svc escrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transactionAction(logg, func(r *http.Request, id uuid.UUID, userID string) (any, error) {
		return svc.ConfirmPayment(r.Context(), id, userID)
	})
}

// SubmitProof attaches the seller's delivery evidence.
func SubmitProof(svc escrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID := middleware.UserIDFromContext(r.Context())
		if sellerID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		id, err := transactionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitProofRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transaction, err := svc.SubmitProof(r.Context(), id, sellerID, strings.TrimSpace(payload.Description), payload.Links)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transaction)
	}
}

type submitProofRequest struct {
	Description string   `json:"description,omitempty"`
	Links       []string `json:"links,omitempty"`
}

// ConfirmDelivery settles the escrow in the seller's favor.
func ConfirmDelivery(svc escrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transactionAction(logg, func(r *http.Request, id uuid.UUID, userID string) (any, error) {
		return svc.ConfirmDelivery(r.Context(), id, userID)
	})
}

// OpenDispute freezes the transaction pending staff review.
func OpenDispute(svc escrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.UserIDFromContext(r.Context())
		if actorID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		id, err := transactionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload openDisputeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dispute, err := svc.OpenDispute(r.Context(), id, actorID, strings.TrimSpace(payload.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dispute)
	}
}

type openDisputeRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// CancelPurchase backs out of an unpaid transaction and returns the unit.
func CancelPurchase(svc escrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transactionAction(logg, func(r *http.Request, id uuid.UUID, userID string) (any, error) {
		return svc.CancelPending(r.Context(), id, userID)
	})
}

// RateTransaction records a post-completion rating for the counterparty.
func RateTransaction(svc escrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raterID := middleware.UserIDFromContext(r.Context())
		if raterID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		id, err := transactionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Rate(r.Context(), id, raterID, payload.Score, payload.Comment); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusNoContent, nil)
	}
}

type rateRequest struct {
	Score   int     `json:"score" validate:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

// ListActiveTransactions returns the acting user's open escrows.
func ListActiveTransactions(svc escrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		transactions, err := svc.ListActiveForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transactions)
	}
}

// EmergencyStopTransaction halts an open escrow on admin order.
func EmergencyStopTransaction(svc escrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID := middleware.UserIDFromContext(r.Context())
		if adminID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		id, err := transactionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload emergencyStopRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transaction, err := svc.EmergencyStop(r.Context(), id, adminID, strings.TrimSpace(payload.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transaction)
	}
}

type emergencyStopRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// transactionAction wraps the body-less transaction endpoints that differ
// only in the service call.
func transactionAction(logg *logger.Logger, call func(r *http.Request, id uuid.UUID, userID string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		id, err := transactionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := call(r, id, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func transactionIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "transactionId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction id")
	}
	return id, nil
}
