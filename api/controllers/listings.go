package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Zymart/shopbot-backend/api/middleware"
	"github.com/Zymart/shopbot-backend/api/responses"
	"github.com/Zymart/shopbot-backend/api/validators"
	listingsvc "github.com/Zymart/shopbot-backend/internal/listings"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
	"github.com/Zymart/shopbot-backend/pkg/logger"
	"github.com/Zymart/shopbot-backend/pkg/pagination"
)

const maxListingNameLen = 120

// CreateListing posts a new listing for the acting seller; it lands in the
// approval queue.
func CreateListing(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

type createListingRequest struct {
	ItemName     string  `json:"item_name" validate:"required"`
	Price        string  `json:"price" validate:"required"`
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	Description  string  `json:"description,omitempty"`
	DeliveryTime string  `json:"delivery_time,omitempty"`
	Category     *string `json:"category,omitempty"`
	ChannelID    *string `json:"channel_id,omitempty"`
	MessageID    *string `json:"message_id,omitempty"`
}

func (p createListingRequest) toCreateInput(sellerID string) (listingsvc.CreateListingInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
	if err != nil {
		return listingsvc.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}

	var category *enums.ListingCategory
	if p.Category != nil {
		parsed, err := enums.ParseListingCategory(strings.TrimSpace(*p.Category))
		if err != nil {
			return listingsvc.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		category = &parsed
	}

	return listingsvc.CreateListingInput{
		SellerID:     sellerID,
		ItemName:     validators.SanitizeString(p.ItemName, maxListingNameLen),
		Price:        price,
		Quantity:     p.Quantity,
		Description:  validators.SanitizeString(p.Description, 0),
		DeliveryTime: validators.SanitizeString(p.DeliveryTime, 0),
		Category:     category,
		ChannelID:    p.ChannelID,
		MessageID:    p.MessageID,
	}, nil
}

// BrowseListings pages through active listings with optional filters.
func BrowseListings(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := listingsvc.ListActiveInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
			Filters: listingsvc.ListingFilters{
				Query: validators.SanitizeString(r.URL.Query().Get("q"), maxListingNameLen),
			},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseListingCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			input.Filters.Category = &category
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("seller_id")); raw != "" {
			input.Filters.SellerID = &raw
		}
		if minPrice, ok, err := parseQueryDecimal(r, "price_min"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if ok {
			input.Filters.PriceMin = &minPrice
		}
		if maxPrice, ok, err := parseQueryDecimal(r, "price_max"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if ok {
			input.Filters.PriceMax = &maxPrice
		}

		page, err := svc.ListActive(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"listings":    page.Listings,
			"next_cursor": page.NextCursor,
		})
	}
}

// GetListing fetches one listing and counts the view.
func GetListing(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// Views are best effort; a failed bump never blocks the read.
		if err := svc.RecordView(r.Context(), id); err != nil && logg != nil {
			logg.Warn(r.Context(), "record view failed")
		}
		responses.WriteSuccess(w, listing)
	}
}

// RestockListing adds units to the acting seller's listing.
func RestockListing(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		id, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload restockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Restock(r.Context(), id, userID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

type restockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// ApproveListing moves a pending listing live.
func ApproveListing(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID := middleware.UserIDFromContext(r.Context())
		if adminID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		id, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Approve(r.Context(), id, adminID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// RejectListing declines a pending listing with a reason the seller sees.
func RejectListing(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID := middleware.UserIDFromContext(r.Context())
		if adminID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		id, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Reject(r.Context(), id, adminID, strings.TrimSpace(payload.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

type rejectListingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// MarkListingNeedsRepost flags a listing whose marketplace message was
// deleted out from under it. The gateway reports the deletion; repost is a
// seller action.
func MarkListingNeedsRepost(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkNeedsRepost(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusNoContent, nil)
	}
}

func listingIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "listingId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id")
	}
	return id, nil
}

func parseQueryDecimal(r *http.Request, key string) (decimal.Decimal, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return decimal.Decimal{}, false, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a decimal").WithDetails(map[string]any{"field": key})
	}
	return value, true, nil
}
