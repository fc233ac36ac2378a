package cron

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zymart/shopbot-backend/internal/escrow"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
)

type fakeEscrowStats struct {
	from, to time.Time
	stats    escrow.RangeStats
}

func (f *fakeEscrowStats) StatsForRange(_ context.Context, from, to time.Time) (*escrow.RangeStats, error) {
	f.from, f.to = from, to
	return &f.stats, nil
}

type fakeListingStats struct {
	created  int64
	byStatus map[enums.ListingStatus]int64
}

func (f *fakeListingStats) CountCreatedInRange(context.Context, time.Time, time.Time) (int64, error) {
	return f.created, nil
}

func (f *fakeListingStats) CountByStatus(context.Context) (map[enums.ListingStatus]int64, error) {
	return f.byStatus, nil
}

type fakeDisputeStats struct {
	resolved int64
}

func (f *fakeDisputeStats) CountResolvedInRange(context.Context, time.Time, time.Time) (int64, error) {
	return f.resolved, nil
}

type fakeEventCounter struct {
	counts map[enums.NotificationType]int64
}

func (f *fakeEventCounter) CountTypeInRange(_ context.Context, eventType enums.NotificationType, _, _ time.Time) (int64, error) {
	return f.counts[eventType], nil
}

type capturingStatWriter struct {
	stat *models.DailyStat
}

func (c *capturingStatWriter) UpsertDailyStat(_ context.Context, stat *models.DailyStat) error {
	c.stat = stat
	return nil
}

func TestStatsRollupWritesYesterday(t *testing.T) {
	escrowStats := &fakeEscrowStats{
		stats: escrow.RangeStats{
			Created:   8,
			Completed: 5,
			Disputed:  1,
			Revenue:   decimal.NewFromInt(240),
		},
	}
	listingStats := &fakeListingStats{
		created:  4,
		byStatus: map[enums.ListingStatus]int64{enums.ListingStatusActive: 17},
	}
	writer := &capturingStatWriter{}
	job, err := NewStatsRollupJob(StatsRollupJobParams{
		Logger:   testLogger(),
		Escrow:   escrowStats,
		Listings: listingStats,
		Disputes: &fakeDisputeStats{resolved: 2},
		Events: &fakeEventCounter{counts: map[enums.NotificationType]int64{
			enums.NotificationTypeListingApproved: 3,
		}},
		Stats: writer,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	now := time.Date(2026, 3, 10, 2, 30, 0, 0, time.UTC)
	job.(*statsRollupJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if writer.stat == nil {
		t.Fatalf("no rollup written")
	}
	wantDay := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !writer.stat.Day.Equal(wantDay) {
		t.Fatalf("day = %v, want %v", writer.stat.Day, wantDay)
	}
	if !escrowStats.from.Equal(wantDay) || !escrowStats.to.Equal(wantDay.AddDate(0, 0, 1)) {
		t.Fatalf("range = [%v, %v)", escrowStats.from, escrowStats.to)
	}
	if writer.stat.PurchasesStarted != 8 || writer.stat.SalesCompleted != 5 || writer.stat.DisputesOpened != 1 {
		t.Fatalf("unexpected transaction tallies: %+v", writer.stat)
	}
	if !writer.stat.RevenueCompleted.Equal(decimal.NewFromInt(240)) {
		t.Fatalf("revenue = %s", writer.stat.RevenueCompleted)
	}
	if writer.stat.ListingsCreated != 4 || writer.stat.ListingsApproved != 3 {
		t.Fatalf("unexpected listing tallies: %+v", writer.stat)
	}
	if writer.stat.DisputesResolved != 2 || writer.stat.ActiveListingsEOD != 17 {
		t.Fatalf("unexpected dispute/active tallies: %+v", writer.stat)
	}
}
