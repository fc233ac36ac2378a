package escrow

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/listings"
	"github.com/Zymart/shopbot-backend/internal/notify"
	"github.com/Zymart/shopbot-backend/internal/users"
	"github.com/Zymart/shopbot-backend/pkg/config"
	"github.com/Zymart/shopbot-backend/pkg/db"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

var escrowTestSchemas = []string{
	`CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT 'other',
  tags TEXT,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  original_quantity INTEGER NOT NULL,
  units_sold INTEGER NOT NULL DEFAULT 0,
  description TEXT,
  delivery_time TEXT,
  status TEXT NOT NULL DEFAULT 'pending_approval',
  views INTEGER NOT NULL DEFAULT 0,
  channel_id TEXT,
  message_id TEXT,
  approved_by TEXT,
  rejected_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  listing_id TEXT NOT NULL REFERENCES listings(id),
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending_payment',
  escrow_stage TEXT NOT NULL DEFAULT 'awaiting_payment',
  thread_id TEXT,
  reminder_count INTEGER NOT NULL DEFAULT 0,
  last_reminder_at DATETIME,
  requires_proof INTEGER NOT NULL DEFAULT 0,
  proof_submitted INTEGER NOT NULL DEFAULT 0,
  proof TEXT,
  disputed_at DATETIME,
  disputed_by TEXT,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS disputes (
  id TEXT PRIMARY KEY,
  transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
  item_name TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  opened_by TEXT NOT NULL,
  reason TEXT NOT NULL,
  priority TEXT NOT NULL DEFAULT 'normal',
  status TEXT NOT NULL DEFAULT 'open',
  resolution TEXT,
  resolution_note TEXT,
  resolved_by TEXT,
  resolved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS price_points (
  id TEXT PRIMARY KEY,
  category TEXT NOT NULL,
  item_name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  transaction_id TEXT NOT NULL,
  recorded_at DATETIME NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS user_metrics (
  user_id TEXT PRIMARY KEY,
  total_sales INTEGER NOT NULL DEFAULT 0,
  total_revenue NUMERIC NOT NULL DEFAULT 0,
  total_purchases INTEGER NOT NULL DEFAULT 0,
  total_spent NUMERIC NOT NULL DEFAULT 0,
  rating_sum INTEGER NOT NULL DEFAULT 0,
  rating_count INTEGER NOT NULL DEFAULT 0,
  badges TEXT NOT NULL DEFAULT '[]',
  first_sale_at DATETIME,
  last_activity_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS user_ratings (
  id TEXT PRIMARY KEY,
  transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
  rater_id TEXT NOT NULL,
  rated_id TEXT NOT NULL,
  score INTEGER NOT NULL,
  comment TEXT,
  created_at DATETIME,
  UNIQUE (transaction_id, rater_id)
);`,
}

func setupEscrowTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	// Mirror the production FK rules so deletes exercise the real cascade
	// behavior.
	require.NoError(t, conn.Exec("PRAGMA foreign_keys = ON").Error)
	for _, schema := range escrowTestSchemas {
		require.NoError(t, conn.Exec(schema).Error)
	}
	return conn
}

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

func (r *recordingEmitter) typesSeen() []enums.NotificationType {
	out := make([]enums.NotificationType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixedThreadOpener struct {
	threadID string
	calls    int
}

func (f *fixedThreadOpener) OpenThread(context.Context, uuid.UUID, []string) (string, error) {
	f.calls++
	return f.threadID, nil
}

type catalogAdapter struct {
	repo *listings.Repository
}

func (c catalogAdapter) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return c.repo.FindByID(ctx, id)
}

type escrowFixture struct {
	svc          Service
	repo         *Repository
	listingRepo  *listings.Repository
	userRepo     users.Repository
	emitter      *recordingEmitter
	threads      *fixedThreadOpener
	conn         *gorm.DB
	currentClock *time.Time
}

func testEscrowConfig() config.EscrowConfig {
	return config.EscrowConfig{
		ProofRequiredAbove: decimal.NewFromInt(50),
		HighPriorityAbove:  decimal.NewFromInt(100),
		ReminderMaxCount:   3,
		StaleAfter:         24 * time.Hour,
	}
}

func newEscrowFixture(t *testing.T) *escrowFixture {
	t.Helper()

	conn := setupEscrowTestDB(t)
	listingRepo := listings.NewRepository(conn)
	userRepo := users.NewRepository(conn)
	userSvc, err := users.NewService(userRepo)
	require.NoError(t, err)

	emitter := &recordingEmitter{}
	threads := &fixedThreadOpener{threadID: "thread-1"}
	repo := NewRepository(conn)
	clock := time.Now().UTC()

	fixture := &escrowFixture{
		repo:         repo,
		listingRepo:  listingRepo,
		userRepo:     userRepo,
		emitter:      emitter,
		threads:      threads,
		conn:         conn,
		currentClock: &clock,
	}

	svc, err := NewService(Params{
		Repo:    repo,
		Tx:      db.NewFromConn(conn),
		Stock:   listings.NewStockKeeper(),
		Catalog: catalogAdapter{repo: listingRepo},
		Users:   userSvc,
		Events:  emitter,
		Threads: threads,
		Logger:  logger.New(logger.Options{ServiceName: "escrow-test", Output: io.Discard}),
		Config:  testEscrowConfig(),
		Now:     func() time.Time { return *fixture.currentClock },
	})
	require.NoError(t, err)
	fixture.svc = svc
	return fixture
}

func (f *escrowFixture) seedActiveListing(t *testing.T, sellerID string, price int64, qty int) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ID:               uuid.New(),
		SellerID:         sellerID,
		ItemName:         "Shadow Dragon",
		Category:         enums.ListingCategoryRoblox,
		Price:            decimal.NewFromInt(price),
		Quantity:         qty,
		OriginalQuantity: qty,
		Status:           enums.ListingStatusActive,
	}
	require.NoError(t, f.conn.Create(listing).Error)
	return listing
}

func (f *escrowFixture) advanceClock(d time.Duration) {
	*f.currentClock = f.currentClock.Add(d)
}
