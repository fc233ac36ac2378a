package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Zymart/shopbot-backend/pkg/config"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

const reminderScanBatch = 200

// ReminderJobParams configure the stale transaction reminder scan.
type ReminderJobParams struct {
	Logger *logger.Logger
	Due    reminderDueReader
	Escrow reminderSender
	Config config.EscrowConfig
}

type reminderDueReader interface {
	ListReminderDue(ctx context.Context, cutoff time.Time, maxReminders, limit int) ([]models.Transaction, error)
}

type reminderSender interface {
	SendReminder(ctx context.Context, transactionID uuid.UUID) error
}

// NewReminderJob builds the cron job that nudges whichever party an open
// transaction is waiting on.
func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Due == nil {
		return nil, fmt.Errorf("reminder reader required")
	}
	if params.Escrow == nil {
		return nil, fmt.Errorf("escrow service required")
	}
	return &reminderJob{
		logg:   params.Logger,
		due:    params.Due,
		escrow: params.Escrow,
		cfg:    params.Config,
		now:    time.Now,
	}, nil
}

type reminderJob struct {
	logg   *logger.Logger
	due    reminderDueReader
	escrow reminderSender
	cfg    config.EscrowConfig
	now    func() time.Time
}

func (j *reminderJob) Name() string { return "escrow-reminder" }

func (j *reminderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.cfg.StaleAfter)
	due, err := j.due.ListReminderDue(ctx, cutoff, j.cfg.ReminderMaxCount, reminderScanBatch)
	if err != nil {
		return fmt.Errorf("query reminder-due transactions: %w", err)
	}
	var errs []error
	sent := 0
	for _, transaction := range due {
		if err := j.escrow.SendReminder(ctx, transaction.ID); err != nil {
			// A transaction that settled or hit the cap between the scan
			// and the send is not a job failure.
			if pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
				continue
			}
			errs = append(errs, fmt.Errorf("remind transaction %s: %w", transaction.ID, err))
			continue
		}
		sent++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"due": len(due), "sent": sent})
	j.logg.Info(logCtx, "reminder scan complete")
	return multierr.Combine(errs...)
}
