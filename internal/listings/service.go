package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/notify"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

// Service exposes the listing lifecycle: creation, moderation, stock moves,
// and browse reads.
type Service interface {
	Create(ctx context.Context, input CreateListingInput) (*models.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Approve(ctx context.Context, id uuid.UUID, adminID string) (*models.Listing, error)
	Reject(ctx context.Context, id uuid.UUID, adminID, reason string) (*models.Listing, error)
	Restock(ctx context.Context, id uuid.UUID, sellerID string, qty int) (*models.Listing, error)
	MarkNeedsRepost(ctx context.Context, id uuid.UUID) error
	RecordView(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context, input ListActiveInput) (*ListingListResult, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error)
}

// CreateListingInput holds the validated payload to create a listing.
type CreateListingInput struct {
	SellerID     string
	ItemName     string
	Price        decimal.Decimal
	Quantity     int
	Description  string
	DeliveryTime string
	Category     *enums.ListingCategory
	ChannelID    *string
	MessageID    *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event notify.Event) error
}

type service struct {
	repo       *Repository
	tx         txRunner
	events     eventEmitter
	classifier Classifier
}

// NewService constructs a listing service instance.
func NewService(repo *Repository, tx txRunner, events eventEmitter, classifier Classifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	return &service{repo: repo, tx: tx, events: events, classifier: classifier}, nil
}

// Create inserts a listing in pending_approval awaiting moderation.
func (s *service) Create(ctx context.Context, input CreateListingInput) (*models.Listing, error) {
	if strings.TrimSpace(input.SellerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	name := strings.TrimSpace(input.ItemName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	category := enums.ListingCategoryOther
	var tags []string
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
		}
		category = *input.Category
	} else {
		classified := s.classifier.Classify(name, input.Description)
		category = classified.Category
		tags = classified.Tags
	}

	listing := &models.Listing{
		ID:               uuid.New(),
		SellerID:         input.SellerID,
		ItemName:         name,
		Category:         category,
		Tags:             tags,
		Price:            input.Price,
		Quantity:         input.Quantity,
		OriginalQuantity: input.Quantity,
		Description:      strings.TrimSpace(input.Description),
		DeliveryTime:     strings.TrimSpace(input.DeliveryTime),
		Status:           enums.ListingStatusPendingApproval,
		ChannelID:        input.ChannelID,
		MessageID:        input.MessageID,
	}
	if _, err := s.repo.Create(ctx, listing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert listing")
	}
	return listing, nil
}

// Get loads a single listing.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}

// Approve moves a pending listing live and tells the seller.
func (s *service) Approve(ctx context.Context, id uuid.UUID, adminID string) (*models.Listing, error) {
	if strings.TrimSpace(adminID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		moved, err := txRepo.UpdateStatusIf(ctx, id, enums.ListingStatusActive,
			map[string]interface{}{"approved_by": adminID},
			enums.ListingStatusPendingApproval)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: approve listing")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not awaiting approval")
		}
		return s.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypeListingApproved,
			RecipientID: listing.SellerID,
			Actor:       adminID,
			Data: map[string]any{
				"listing_id": listing.ID,
				"item_name":  listing.ItemName,
			},
		})
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Reject declines a pending listing with a reason the seller can act on.
func (s *service) Reject(ctx context.Context, id uuid.UUID, adminID, reason string) (*models.Listing, error) {
	if strings.TrimSpace(adminID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		moved, err := txRepo.UpdateStatusIf(ctx, id, enums.ListingStatusRejected,
			map[string]interface{}{"rejected_reason": reason},
			enums.ListingStatusPendingApproval)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reject listing")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not awaiting approval")
		}
		return s.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypeListingRejected,
			RecipientID: listing.SellerID,
			Actor:       adminID,
			Data: map[string]any{
				"listing_id": listing.ID,
				"item_name":  listing.ItemName,
				"reason":     reason,
			},
		})
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Restock lets the owning seller top up stock on a non-terminal listing.
func (s *service) Restock(ctx context.Context, id uuid.UUID, sellerID string, qty int) (*models.Listing, error) {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to seller")
	}
	if listing.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is closed")
	}

	moved, err := s.repo.AddStock(ctx, id, qty)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is closed")
	}
	return s.Get(ctx, id)
}

// MarkNeedsRepost flags an active listing whose Discord message went missing.
// Calling it on a listing already flagged is a no-op.
func (s *service) MarkNeedsRepost(ctx context.Context, id uuid.UUID) error {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if listing.Status == enums.ListingStatusNeedsRepost {
		return nil
	}
	// The old Discord message is gone; drop the dangling reference with the
	// status flip.
	moved, err := s.repo.UpdateStatusIf(ctx, id, enums.ListingStatusNeedsRepost,
		map[string]interface{}{"message_id": nil},
		enums.ListingStatusActive, enums.ListingStatusSoldOut)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark needs repost")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "listing cannot be flagged for repost")
	}
	return nil
}

// RecordView bumps the listing's view counter.
func (s *service) RecordView(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record view")
	}
	return nil
}

// ListActive pages through the live marketplace.
func (s *service) ListActive(ctx context.Context, input ListActiveInput) (*ListingListResult, error) {
	if input.Filters.Category != nil && !input.Filters.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
	}
	return s.repo.ListActiveSummaries(ctx, listingListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
}

// ListBySeller returns all of one seller's listings.
func (s *service) ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	return s.repo.ListBySeller(ctx, sellerID)
}
