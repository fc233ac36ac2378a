package escrow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/listings"
	"github.com/Zymart/shopbot-backend/internal/notify"
	"github.com/Zymart/shopbot-backend/pkg/config"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

// Service drives the escrow handshake between buyer and seller. Every state
// move is a conditional update so two racing actors cannot both win.
type Service interface {
	Purchase(ctx context.Context, listingID uuid.UUID, buyerID string) (*models.Transaction, error)
	ConfirmPayment(ctx context.Context, transactionID uuid.UUID, buyerID string) (*models.Transaction, error)
	SubmitProof(ctx context.Context, transactionID uuid.UUID, sellerID, description string, links []string) (*models.Transaction, error)
	ConfirmDelivery(ctx context.Context, transactionID uuid.UUID, buyerID string) (*models.Transaction, error)
	OpenDispute(ctx context.Context, transactionID uuid.UUID, actorID, reason string) (*models.Dispute, error)
	SendReminder(ctx context.Context, transactionID uuid.UUID) error
	EmergencyStop(ctx context.Context, transactionID uuid.UUID, adminID, reason string) (*models.Transaction, error)
	CancelPending(ctx context.Context, transactionID uuid.UUID, actorID string) (*models.Transaction, error)
	Rate(ctx context.Context, transactionID uuid.UUID, raterID string, score int, comment *string) error
	Get(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)
	ListActiveForUser(ctx context.Context, userID string) ([]models.Transaction, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event notify.Event) error
}

type metricsCrediter interface {
	CreditCompletionTx(ctx context.Context, tx *gorm.DB, sellerID, buyerID string, amount decimal.Decimal, at time.Time) error
	RecordRatingTx(ctx context.Context, tx *gorm.DB, rating *models.UserRating) error
}

// ThreadOpener opens the private two-party channel for a fresh transaction.
// The engine only stores the returned reference.
type ThreadOpener interface {
	OpenThread(ctx context.Context, transactionID uuid.UUID, participantIDs []string) (string, error)
}

type listingLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type service struct {
	repo    *Repository
	tx      txRunner
	stock   listings.StockKeeper
	catalog listingLoader
	users   metricsCrediter
	events  eventEmitter
	threads ThreadOpener
	logg    *logger.Logger
	cfg     config.EscrowConfig
	now     func() time.Time
}

// Params collects the escrow service dependencies.
type Params struct {
	Repo    *Repository
	Tx      txRunner
	Stock   listings.StockKeeper
	Catalog listingLoader
	Users   metricsCrediter
	Events  eventEmitter
	Threads ThreadOpener
	Logger  *logger.Logger
	Config  config.EscrowConfig
	Now     func() time.Time
}

// NewService constructs the escrow engine. Threads and Logger are optional;
// everything else is required.
func NewService(p Params) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("escrow repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if p.Stock == nil {
		return nil, fmt.Errorf("stock keeper required")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("listing loader required")
	}
	if p.Users == nil {
		return nil, fmt.Errorf("user metrics service required")
	}
	if p.Events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if p.Logger == nil {
		p.Logger = logger.New(logger.Options{ServiceName: "escrow"})
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		repo:    p.Repo,
		tx:      p.Tx,
		stock:   p.Stock,
		catalog: p.Catalog,
		users:   p.Users,
		events:  p.Events,
		threads: p.Threads,
		logg:    p.Logger,
		cfg:     p.Config,
		now:     p.Now,
	}, nil
}

// Purchase claims one unit of an active listing and opens the escrow
// handshake. The stock decrement and the transaction insert share one
// database transaction, so a losing racer fails without a phantom record.
func (s *service) Purchase(ctx context.Context, listingID uuid.UUID, buyerID string) (*models.Transaction, error) {
	if strings.TrimSpace(buyerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	listing, err := s.catalog.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeSelfPurchase, "sellers cannot buy their own listing")
	}
	if listing.Status != enums.ListingStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not available")
	}

	transaction := &models.Transaction{
		ID:            uuid.New(),
		ListingID:     listing.ID,
		BuyerID:       buyerID,
		SellerID:      listing.SellerID,
		ItemName:      listing.ItemName,
		Price:         listing.Price,
		Status:        enums.TransactionStatusPendingPayment,
		EscrowStage:   enums.EscrowStageAwaitingPayment,
		RequiresProof: listing.Price.GreaterThan(s.cfg.ProofRequiredAbove),
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		claimed, err := s.stock.Decrement(ctx, tx, listing.ID, 1)
		if err != nil {
			return err
		}
		if !claimed {
			// The conditional update lost: either another buyer took the
			// last unit or the listing left active in between.
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "listing is out of stock")
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, transaction); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert transaction")
		}
		return s.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypePurchaseCreated,
			RecipientID: listing.SellerID,
			Actor:       buyerID,
			Data: map[string]any{
				"transaction_id": transaction.ID,
				"listing_id":     listing.ID,
				"item_name":      listing.ItemName,
				"price":          listing.Price,
				"requires_proof": transaction.RequiresProof,
			},
		})
	}); err != nil {
		return nil, err
	}

	if s.threads != nil {
		threadID, err := s.threads.OpenThread(ctx, transaction.ID, []string{buyerID, listing.SellerID})
		if err == nil && threadID != "" {
			if err := s.repo.SetThreadRef(ctx, transaction.ID, threadID); err == nil {
				transaction.ThreadID = &threadID
			}
		}
	}
	return transaction, nil
}

// staleConflict re-reads a transaction after a lost conditional update so the
// surfaced error describes the row as it is now, not as the caller loaded it.
func (s *service) staleConflict(ctx context.Context, transactionID uuid.UUID, fallback string) error {
	fresh, err := s.repo.FindByID(ctx, transactionID)
	if err != nil || fresh == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fallback)
	}
	if fresh.Status == enums.TransactionStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeAlreadyCompleted, "transaction is already completed")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("transaction is %s", fresh.Status))
}

// ConfirmPayment is the buyer's affirmation that payment was sent, moving the
// handshake to the delivery leg.
func (s *service) ConfirmPayment(ctx context.Context, transactionID uuid.UUID, buyerID string) (*models.Transaction, error) {
	transaction, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can confirm payment")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.WithTx(tx).UpdateStateIf(ctx, transactionID,
			enums.TransactionStatusPendingDelivery, enums.EscrowStageAwaitingDelivery, nil,
			enums.TransactionStatusPendingPayment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: confirm payment")
		}
		if !moved {
			return s.staleConflict(ctx, transactionID, "transaction is not awaiting payment")
		}
		return s.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypePaymentConfirmed,
			RecipientID: transaction.SellerID,
			Actor:       buyerID,
			Data: map[string]any{
				"transaction_id": transaction.ID,
				"item_name":      transaction.ItemName,
			},
		})
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, transactionID)
}

// SubmitProof stores the seller's delivery evidence on a high-value
// transaction.
func (s *service) SubmitProof(ctx context.Context, transactionID uuid.UUID, sellerID, description string, links []string) (*models.Transaction, error) {
	description = strings.TrimSpace(description)
	if description == "" && len(links) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof needs a description or links")
	}
	transaction, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can submit proof")
	}
	if !transaction.RequiresProof {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction does not require proof")
	}
	if transaction.EscrowStage != enums.EscrowStageAwaitingDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is not awaiting delivery")
	}

	proof := &models.ProofPayload{
		Description: description,
		Links:       links,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.WithTx(tx).MarkProofSubmitted(ctx, transactionID, proofJSON(proof), s.now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: submit proof")
		}
		if !moved {
			return s.staleConflict(ctx, transactionID, "transaction is not awaiting delivery")
		}
		return s.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypeProofSubmitted,
			RecipientID: transaction.BuyerID,
			Actor:       sellerID,
			Data: map[string]any{
				"transaction_id": transaction.ID,
				"item_name":      transaction.ItemName,
				"links":          links,
			},
		})
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, transactionID)
}

// ConfirmDelivery is the buyer's release: the only path that credits seller
// revenue and buyer spend. A second call fails instead of double-crediting.
func (s *service) ConfirmDelivery(ctx context.Context, transactionID uuid.UUID, buyerID string) (*models.Transaction, error) {
	transaction, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can confirm delivery")
	}
	if transaction.Status == enums.TransactionStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyCompleted, "transaction is already completed")
	}
	if transaction.Status != enums.TransactionStatusPendingDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is not awaiting delivery confirmation")
	}
	if transaction.RequiresProof && !transaction.ProofSubmitted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery proof is required first")
	}

	completedAt := s.now().UTC()
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		moved, err := txRepo.UpdateStateIf(ctx, transactionID,
			enums.TransactionStatusCompleted, enums.EscrowStageCompleted,
			map[string]interface{}{"completed_at": completedAt},
			enums.TransactionStatusPendingDelivery)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: complete transaction")
		}
		if !moved {
			return s.staleConflict(ctx, transactionID, "transaction is already completed")
		}

		if err := s.users.CreditCompletionTx(ctx, tx, transaction.SellerID, transaction.BuyerID, transaction.Price, completedAt); err != nil {
			return err
		}

		category := enums.ListingCategoryOther
		if listing, err := s.catalog.Get(ctx, transaction.ListingID); err == nil {
			category = listing.Category
		}
		if err := txRepo.CreatePricePoint(ctx, &models.PricePoint{
			ID:            uuid.New(),
			Category:      category,
			ItemName:      transaction.ItemName,
			Price:         transaction.Price,
			TransactionID: transaction.ID,
			RecordedAt:    completedAt,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record price point")
		}

		return s.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypeDeliveryConfirmed,
			RecipientID: transaction.SellerID,
			Actor:       buyerID,
			Data: map[string]any{
				"transaction_id": transaction.ID,
				"item_name":      transaction.ItemName,
				"price":          transaction.Price,
			},
		})
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, transactionID)
}

// OpenDispute freezes the transaction and files a dispute for admin review.
func (s *service) OpenDispute(ctx context.Context, transactionID uuid.UUID, actorID, reason string) (*models.Dispute, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute reason is required")
	}
	transaction, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if actorID != transaction.BuyerID && actorID != transaction.SellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only a transaction party can dispute")
	}
	if transaction.Status.IsTerminal() || transaction.Status == enums.TransactionStatusDisputed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction can no longer be disputed")
	}

	priority := enums.DisputePriorityNormal
	if transaction.Price.GreaterThan(s.cfg.HighPriorityAbove) {
		priority = enums.DisputePriorityHigh
	}
	now := s.now().UTC()
	dispute := &models.Dispute{
		ID:            uuid.New(),
		TransactionID: transaction.ID,
		ItemName:      transaction.ItemName,
		BuyerID:       transaction.BuyerID,
		SellerID:      transaction.SellerID,
		OpenedBy:      actorID,
		Reason:        reason,
		Priority:      priority,
		Status:        enums.DisputeStatusOpen,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		moved, err := txRepo.UpdateStateIf(ctx, transactionID,
			enums.TransactionStatusDisputed, enums.EscrowStageDisputed,
			map[string]interface{}{
				"disputed_at": now,
				"disputed_by": actorID,
			},
			enums.TransactionStatusPendingPayment, enums.TransactionStatusPendingDelivery)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: dispute transaction")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction can no longer be disputed")
		}
		if _, err := txRepo.CreateDispute(ctx, dispute); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert dispute")
		}
		return s.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypeDisputeOpened,
			RecipientID: otherParty(transaction, actorID),
			Actor:       actorID,
			Data: map[string]any{
				"dispute_id":     dispute.ID,
				"transaction_id": transaction.ID,
				"item_name":      transaction.ItemName,
				"priority":       priority,
				"reason":         reason,
			},
		})
	}); err != nil {
		return nil, err
	}
	return dispute, nil
}

// SendReminder nudges whichever party owes the next move. Stops at the
// reminder cap; beyond it the transaction waits for an admin.
func (s *service) SendReminder(ctx context.Context, transactionID uuid.UUID) error {
	transaction, err := s.Get(ctx, transactionID)
	if err != nil {
		return err
	}
	if transaction.Status.IsTerminal() || transaction.Status == enums.TransactionStatusDisputed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is no longer open")
	}
	if transaction.ReminderCount >= s.cfg.ReminderMaxCount {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "reminder cap reached")
	}

	now := s.now().UTC()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		bumped, err := s.repo.WithTx(tx).IncrementReminder(ctx, transactionID, s.cfg.ReminderMaxCount, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: bump reminder")
		}
		if !bumped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reminder cap reached")
		}
		return s.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypeReminderDue,
			RecipientID: reminderRecipient(transaction),
			Actor:       "system",
			Data: map[string]any{
				"transaction_id": transaction.ID,
				"item_name":      transaction.ItemName,
				"escrow_stage":   transaction.EscrowStage,
				"reminder_count": transaction.ReminderCount + 1,
			},
		})
	})
}

// EmergencyStop is the break-glass transition: it halts any open transaction
// with no further automatic moves. Caller must already hold admin rights.
func (s *service) EmergencyStop(ctx context.Context, transactionID uuid.UUID, adminID, reason string) (*models.Transaction, error) {
	transaction, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already settled")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.WithTx(tx).UpdateStateIf(ctx, transactionID,
			enums.TransactionStatusEmergencyStopped, transaction.EscrowStage, nil,
			enums.TransactionStatusPendingPayment,
			enums.TransactionStatusPendingDelivery,
			enums.TransactionStatusDisputed)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: emergency stop")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already settled")
		}
		for _, recipient := range []string{transaction.BuyerID, transaction.SellerID} {
			if err := s.events.Emit(ctx, tx, notify.Event{
				Type:        enums.NotificationTypeEmergencyStop,
				RecipientID: recipient,
				Actor:       adminID,
				Data: map[string]any{
					"transaction_id": transaction.ID,
					"item_name":      transaction.ItemName,
					"reason":         reason,
				},
			}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, transactionID)
}

// CancelPending abandons a transaction still waiting on payment and gives the
// claimed unit back to the listing.
func (s *service) CancelPending(ctx context.Context, transactionID uuid.UUID, actorID string) (*models.Transaction, error) {
	transaction, err := s.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if actorID != transaction.BuyerID && actorID != transaction.SellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only a transaction party can cancel")
	}
	if transaction.Status != enums.TransactionStatusPendingPayment {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only unpaid transactions can be cancelled")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.WithTx(tx).UpdateStateIf(ctx, transactionID,
			enums.TransactionStatusCancelled, transaction.EscrowStage, nil,
			enums.TransactionStatusPendingPayment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: cancel transaction")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only unpaid transactions can be cancelled")
		}
		restored, err := s.stock.Restore(ctx, tx, transaction.ListingID, 1)
		if err != nil {
			return err
		}
		if !restored {
			// The listing went terminal while the transaction sat unpaid;
			// the unit has nowhere to go back to.
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"transaction_id": transaction.ID,
				"listing_id":     transaction.ListingID,
			})
			s.logg.Warn(logCtx, "cancelled unit not restored, listing is terminal")
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, transactionID)
}

// Rate records a 1-5 score between the two parties of a completed
// transaction.
func (s *service) Rate(ctx context.Context, transactionID uuid.UUID, raterID string, score int, comment *string) error {
	transaction, err := s.Get(ctx, transactionID)
	if err != nil {
		return err
	}
	if raterID != transaction.BuyerID && raterID != transaction.SellerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only a transaction party can rate")
	}
	if transaction.Status != enums.TransactionStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only completed transactions can be rated")
	}

	rated := otherParty(transaction, raterID)
	rating := &models.UserRating{
		ID:            uuid.New(),
		TransactionID: transaction.ID,
		RaterID:       raterID,
		RatedID:       rated,
		Score:         score,
		Comment:       comment,
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.RecordRatingTx(ctx, tx, rating); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypeRatingReceived,
			RecipientID: rated,
			Actor:       raterID,
			Data: map[string]any{
				"transaction_id": transaction.ID,
				"score":          score,
			},
		})
	})
}

// Get loads a single transaction.
func (s *service) Get(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	transaction, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return transaction, nil
}

// ListActiveForUser returns the caller's open transactions.
func (s *service) ListActiveForUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.repo.ListActiveForUser(ctx, userID)
}

// proofJSON serializes the payload by hand: column updates via map skip the
// model's json serializer.
func proofJSON(proof *models.ProofPayload) string {
	raw, err := json.Marshal(proof)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func otherParty(transaction *models.Transaction, actorID string) string {
	if actorID == transaction.BuyerID {
		return transaction.SellerID
	}
	return transaction.BuyerID
}

// reminderRecipient picks whoever owes the next move in the handshake.
func reminderRecipient(transaction *models.Transaction) string {
	switch transaction.EscrowStage {
	case enums.EscrowStageAwaitingPayment:
		return transaction.BuyerID
	case enums.EscrowStageProofSubmitted:
		return transaction.BuyerID
	default:
		return transaction.SellerID
	}
}
