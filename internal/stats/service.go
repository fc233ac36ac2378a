package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

// Service exposes marketplace analytics reads.
type Service interface {
	TrendReport(ctx context.Context) (*TrendReport, error)
	DailySeries(ctx context.Context, days int) ([]models.DailyStat, error)
}

// TrendReport is the rolling price summary shown per category.
type TrendReport struct {
	WindowDays  int             `json:"windowDays"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Categories  []CategoryTrend `json:"categories"`
}

const maxSeriesDays = 365

type service struct {
	repo       *Repository
	windowDays int
	now        func() time.Time
}

// NewService builds the analytics service. windowDays bounds the trend
// report's lookback.
func NewService(repo *Repository, windowDays int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	if windowDays <= 0 {
		windowDays = 7
	}
	return &service{repo: repo, windowDays: windowDays, now: time.Now}, nil
}

func (s *service) TrendReport(ctx context.Context) (*TrendReport, error) {
	now := s.now().UTC()
	since := now.AddDate(0, 0, -s.windowDays)
	trends, err := s.repo.CategoryTrends(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate price trends")
	}
	return &TrendReport{
		WindowDays:  s.windowDays,
		GeneratedAt: now,
		Categories:  trends,
	}, nil
}

func (s *service) DailySeries(ctx context.Context, days int) ([]models.DailyStat, error) {
	if days <= 0 || days > maxSeriesDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("days must be between 1 and %d", maxSeriesDays))
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	rows, err := s.repo.ListDays(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load daily stats")
	}
	return rows, nil
}
