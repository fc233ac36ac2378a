package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/escrow"
	"github.com/Zymart/shopbot-backend/internal/listings"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

// ReconcileJobParams configure the stock reconciliation scan.
type ReconcileJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Escrow      orphanReader
	RepoFactory stockRepoFactory
	Grace       time.Duration
}

type orphanReader interface {
	ListOrphanedDecrements(ctx context.Context, cutoff time.Time) ([]escrow.OrphanedDecrement, error)
}

type stockRepairer interface {
	RepairStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
}

type stockRepoFactory func(tx *gorm.DB) stockRepairer

func defaultStockRepo(tx *gorm.DB) stockRepairer {
	return listings.NewRepository(tx)
}

// NewReconcileJob builds the cron job that gives back units whose stock
// decrement never went through the escrow path (manual writes, partial
// restores). The grace period keeps in-flight changes out of the scan.
func NewReconcileJob(params ReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Escrow == nil {
		return nil, fmt.Errorf("escrow repository required")
	}
	if params.Grace <= 0 {
		return nil, fmt.Errorf("grace period required")
	}
	repoFactory := params.RepoFactory
	if repoFactory == nil {
		repoFactory = defaultStockRepo
	}
	return &reconcileJob{
		logg:        params.Logger,
		db:          params.DB,
		escrow:      params.Escrow,
		repoFactory: repoFactory,
		grace:       params.Grace,
		now:         time.Now,
	}, nil
}

type reconcileJob struct {
	logg        *logger.Logger
	db          txRunner
	escrow      orphanReader
	repoFactory stockRepoFactory
	grace       time.Duration
	now         func() time.Time
}

func (j *reconcileJob) Name() string { return "stock-reconcile" }

func (j *reconcileJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	orphans, err := j.escrow.ListOrphanedDecrements(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query orphaned decrements: %w", err)
	}
	restored := 0
	units := 0
	for _, orphan := range orphans {
		ok, err := j.restore(ctx, orphan)
		if err != nil {
			return err
		}
		if ok {
			restored++
			units += orphan.Missing
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"orphans": len(orphans), "restored": restored, "units": units})
	j.logg.Info(logCtx, "stock reconcile loop complete")
	return nil
}

func (j *reconcileJob) restore(ctx context.Context, orphan escrow.OrphanedDecrement) (bool, error) {
	if orphan.Missing <= 0 {
		return false, nil
	}
	var restored bool
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		ok, err := repo.RepairStock(ctx, orphan.ListingID, orphan.Missing)
		if err != nil {
			return err
		}
		restored = ok
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("restore stock for listing %s: %w", orphan.ListingID, err)
	}
	return restored, nil
}
