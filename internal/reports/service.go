package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/notify"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

// Service lets users flag each other for admin review.
type Service interface {
	File(ctx context.Context, reporterID, reportedID string, transactionID *uuid.UUID, reason string) (*models.Report, error)
	Review(ctx context.Context, reportID uuid.UUID, adminID, note string) (*models.Report, error)
	Dismiss(ctx context.Context, reportID uuid.UUID, adminID, note string) (*models.Report, error)
	Get(ctx context.Context, reportID uuid.UUID) (*models.Report, error)
	ListOpen(ctx context.Context, limit int) ([]models.Report, error)
	CountAgainst(ctx context.Context, userID string) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event notify.Event) error
}

type service struct {
	repo    *Repository
	tx      txRunner
	events  eventEmitter
	ownerID string
	now     func() time.Time
}

// NewService constructs a report service. ownerID receives the filed-report
// notifications.
func NewService(repo *Repository, tx txRunner, events eventEmitter, ownerID string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("report repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("owner id required")
	}
	return &service{repo: repo, tx: tx, events: events, ownerID: ownerID, now: time.Now}, nil
}

// File records a complaint and pings the owner.
func (s *service) File(ctx context.Context, reporterID, reportedID string, transactionID *uuid.UUID, reason string) (*models.Report, error) {
	if strings.TrimSpace(reporterID) == "" || strings.TrimSpace(reportedID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reporter and reported ids are required")
	}
	if reporterID == reportedID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users cannot report themselves")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report reason is required")
	}

	report := &models.Report{
		ID:            uuid.New(),
		ReporterID:    reporterID,
		ReportedID:    reportedID,
		TransactionID: transactionID,
		Reason:        reason,
		Status:        enums.ReportStatusOpen,
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, report); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert report")
		}
		return s.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypeReportFiled,
			RecipientID: s.ownerID,
			Actor:       reporterID,
			Data: map[string]any{
				"report_id":   report.ID,
				"reported_id": reportedID,
				"reason":      reason,
			},
		})
	}); err != nil {
		return nil, err
	}
	return report, nil
}

// Review closes a report as actionable.
func (s *service) Review(ctx context.Context, reportID uuid.UUID, adminID, note string) (*models.Report, error) {
	return s.close(ctx, reportID, adminID, note, enums.ReportStatusReviewed)
}

// Dismiss closes a report without action.
func (s *service) Dismiss(ctx context.Context, reportID uuid.UUID, adminID, note string) (*models.Report, error) {
	return s.close(ctx, reportID, adminID, note, enums.ReportStatusDismissed)
}

func (s *service) close(ctx context.Context, reportID uuid.UUID, adminID, note string, to enums.ReportStatus) (*models.Report, error) {
	if strings.TrimSpace(adminID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	var notePtr *string
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		notePtr = &trimmed
	}
	closed, err := s.repo.Close(ctx, reportID, to, adminID, notePtr, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: close report")
	}
	if !closed {
		if _, err := s.Get(ctx, reportID); err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "report is already closed")
	}
	return s.Get(ctx, reportID)
}

// Get loads a single report.
func (s *service) Get(ctx context.Context, reportID uuid.UUID) (*models.Report, error) {
	report, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load report")
	}
	return report, nil
}

// ListOpen returns the admin review queue.
func (s *service) ListOpen(ctx context.Context, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 25
	}
	return s.repo.ListOpen(ctx, limit)
}

// CountAgainst counts standing reports against a user.
func (s *service) CountAgainst(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.repo.CountAgainst(ctx, userID)
}
