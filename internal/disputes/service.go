package disputes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/notify"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

// Service owns the admin side of a dispute: reading the queue and ruling on
// an open case. Opening disputes belongs to the escrow engine.
type Service interface {
	Resolve(ctx context.Context, disputeID uuid.UUID, adminID string, outcome enums.DisputeResolution, note string) (*models.Dispute, error)
	Get(ctx context.Context, disputeID uuid.UUID) (*models.Dispute, error)
	ListOpen(ctx context.Context, limit int) ([]models.Dispute, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event notify.Event) error
}

type metricsCrediter interface {
	CreditCompletionTx(ctx context.Context, tx *gorm.DB, sellerID, buyerID string, amount decimal.Decimal, at time.Time) error
	TouchActivityTx(ctx context.Context, tx *gorm.DB, userID string, at time.Time) error
}

type transactionLoader interface {
	Get(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)
}

type service struct {
	repo         *Repository
	tx           txRunner
	transactions transactionLoader
	users        metricsCrediter
	events       eventEmitter
	now          func() time.Time
}

// NewService constructs a dispute service instance.
func NewService(repo *Repository, tx txRunner, transactions transactionLoader, users metricsCrediter, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dispute repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if transactions == nil {
		return nil, fmt.Errorf("transaction loader required")
	}
	if users == nil {
		return nil, fmt.Errorf("user metrics service required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		transactions: transactions,
		users:        users,
		events:       events,
		now:          time.Now,
	}, nil
}

// Resolve closes an open dispute and settles its transaction. seller_favor
// rules the sale good and applies the completion bookkeeping; buyer_favor
// only refreshes activity since nothing was delivered. Resolution is final.
func (s *service) Resolve(ctx context.Context, disputeID uuid.UUID, adminID string, outcome enums.DisputeResolution, note string) (*models.Dispute, error) {
	if strings.TrimSpace(adminID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	if !outcome.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outcome must be buyer_favor or seller_favor")
	}

	dispute, err := s.Get(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if dispute.Status != enums.DisputeStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "dispute is already resolved")
	}

	transaction, err := s.transactions.Get(ctx, dispute.TransactionID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var notePtr *string
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		notePtr = &trimmed
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		closed, err := txRepo.MarkResolved(ctx, disputeID, adminID, outcome, notePtr, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve dispute")
		}
		if !closed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "dispute is already resolved")
		}

		settled, err := txRepo.SettleTransaction(ctx, dispute.TransactionID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: settle transaction")
		}
		if !settled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is no longer disputed")
		}

		switch outcome {
		case enums.DisputeResolutionSellerFavor:
			if err := s.users.CreditCompletionTx(ctx, tx, dispute.SellerID, dispute.BuyerID, transaction.Price, now); err != nil {
				return err
			}
		case enums.DisputeResolutionBuyerFavor:
			if err := s.users.TouchActivityTx(ctx, tx, dispute.BuyerID, now); err != nil {
				return err
			}
		}

		for _, recipient := range []string{dispute.BuyerID, dispute.SellerID} {
			if err := s.events.Emit(ctx, tx, notify.Event{
				Type:        enums.NotificationTypeDisputeResolved,
				RecipientID: recipient,
				Actor:       adminID,
				Data: map[string]any{
					"dispute_id":     dispute.ID,
					"transaction_id": dispute.TransactionID,
					"item_name":      dispute.ItemName,
					"outcome":        outcome,
					"note":           note,
				},
			}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, disputeID)
}

// Get loads a single dispute.
func (s *service) Get(ctx context.Context, disputeID uuid.UUID) (*models.Dispute, error) {
	dispute, err := s.repo.FindByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dispute not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dispute")
	}
	return dispute, nil
}

// ListOpen returns the admin review queue, high priority first.
func (s *service) ListOpen(ctx context.Context, limit int) ([]models.Dispute, error) {
	if limit <= 0 {
		limit = 25
	}
	return s.repo.ListOpen(ctx, limit)
}
