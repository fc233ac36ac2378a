package users

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

// Service owns the user aggregate bookkeeping. Totals only move as a side
// effect of transaction completion, dispute resolution, and ratings.
type Service interface {
	Metrics(ctx context.Context, userID string) (*models.UserMetrics, error)
	CreditCompletionTx(ctx context.Context, tx *gorm.DB, sellerID, buyerID string, amount decimal.Decimal, at time.Time) error
	RecordRatingTx(ctx context.Context, tx *gorm.DB, rating *models.UserRating) error
	TouchActivityTx(ctx context.Context, tx *gorm.DB, userID string, at time.Time) error
	TopSellers(ctx context.Context, limit int) ([]models.UserMetrics, error)
}

type service struct {
	repo Repository
}

// NewService builds the user metrics service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Metrics(ctx context.Context, userID string) (*models.UserMetrics, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	metrics, err := s.repo.GetMetrics(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return s.repo.EnsureMetrics(ctx, userID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user metrics")
	}
	return metrics, nil
}

func (s *service) CreditCompletionTx(ctx context.Context, tx *gorm.DB, sellerID, buyerID string, amount decimal.Decimal, at time.Time) error {
	if sellerID == "" || buyerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller and buyer ids required")
	}
	repo := s.repo.WithTx(tx)
	if err := repo.ApplySale(ctx, sellerID, amount, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit seller")
	}
	if err := repo.ApplyPurchase(ctx, buyerID, amount, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit buyer")
	}
	return s.refreshBadges(ctx, repo, sellerID)
}

func (s *service) RecordRatingTx(ctx context.Context, tx *gorm.DB, rating *models.UserRating) error {
	if rating == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating required")
	}
	if rating.Score < 1 || rating.Score > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "score must be between 1 and 5")
	}
	repo := s.repo.WithTx(tx)
	if err := repo.InsertRating(ctx, rating); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "insert rating")
	}
	if err := repo.ApplyRatingTotals(ctx, rating.RatedID, rating.Score); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply rating totals")
	}
	return s.refreshBadges(ctx, repo, rating.RatedID)
}

func (s *service) TouchActivityTx(ctx context.Context, tx *gorm.DB, userID string, at time.Time) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := s.repo.WithTx(tx).TouchActivity(ctx, userID, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch activity")
	}
	return nil
}

func (s *service) TopSellers(ctx context.Context, limit int) ([]models.UserMetrics, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.repo.TopSellers(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load leaderboard")
	}
	return rows, nil
}

func (s *service) refreshBadges(ctx context.Context, repo Repository, userID string) error {
	metrics, err := repo.GetMetrics(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload metrics")
	}

	var want []string
	if badge := BadgeFor(metrics.TotalSales, metrics.AverageRating()); badge != "" {
		want = []string{badge}
	}
	if sameBadges(metrics.Badges, want) {
		return nil
	}
	if err := repo.SetBadges(ctx, userID, want); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update badges")
	}
	return nil
}

func sameBadges(current []string, want []string) bool {
	if len(current) != len(want) {
		return false
	}
	for i := range current {
		if current[i] != want[i] {
			return false
		}
	}
	return true
}
