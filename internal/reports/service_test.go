package reports

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/notify"
	"github.com/Zymart/shopbot-backend/pkg/db"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

type recordingEmitter struct {
	events []notify.Event
}

func (r *recordingEmitter) Emit(_ context.Context, tx *gorm.DB, event notify.Event) error {
	if tx == nil {
		panic("emit outside transaction")
	}
	r.events = append(r.events, event)
	return nil
}

func newReportFixture(t *testing.T) (Service, *recordingEmitter) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS reports (
  id TEXT PRIMARY KEY,
  reporter_id TEXT NOT NULL,
  reported_id TEXT NOT NULL,
  transaction_id TEXT,
  reason TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'open',
  reviewed_by TEXT,
  reviewed_at DATETIME,
  review_note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)

	emitter := &recordingEmitter{}
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn), emitter, "owner-1")
	require.NoError(t, err)
	return svc, emitter
}

func TestFileReportNotifiesOwner(t *testing.T) {
	svc, emitter := newReportFixture(t)
	ctx := context.Background()

	txID := uuid.New()
	report, err := svc.File(ctx, "buyer-1", "seller-1", &txID, "sent wrong item")
	require.NoError(t, err)
	assert.Equal(t, enums.ReportStatusOpen, report.Status)
	require.NotNil(t, report.TransactionID)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, enums.NotificationTypeReportFiled, emitter.events[0].Type)
	assert.Equal(t, "owner-1", emitter.events[0].RecipientID)
	assert.Equal(t, "buyer-1", emitter.events[0].Actor)
}

func TestFileReportValidation(t *testing.T) {
	svc, _ := newReportFixture(t)
	ctx := context.Background()

	_, err := svc.File(ctx, "buyer-1", "buyer-1", nil, "self report")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.File(ctx, "buyer-1", "seller-1", nil, " ")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestReviewAndDismissAreOneShot(t *testing.T) {
	svc, _ := newReportFixture(t)
	ctx := context.Background()

	report, err := svc.File(ctx, "buyer-1", "seller-1", nil, "scam")
	require.NoError(t, err)

	reviewed, err := svc.Review(ctx, report.ID, "admin-1", "warned the seller")
	require.NoError(t, err)
	assert.Equal(t, enums.ReportStatusReviewed, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "admin-1", *reviewed.ReviewedBy)

	_, err = svc.Dismiss(ctx, report.ID, "admin-2", "")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.Review(ctx, uuid.New(), "admin-1", "")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCountAgainstSkipsDismissed(t *testing.T) {
	svc, _ := newReportFixture(t)
	ctx := context.Background()

	first, err := svc.File(ctx, "buyer-1", "seller-1", nil, "scam")
	require.NoError(t, err)
	_, err = svc.File(ctx, "buyer-2", "seller-1", nil, "late delivery")
	require.NoError(t, err)

	_, err = svc.Dismiss(ctx, first.ID, "admin-1", "no evidence")
	require.NoError(t, err)

	count, err := svc.CountAgainst(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	open, err := svc.ListOpen(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}
