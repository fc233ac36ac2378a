package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	metrics := `
CREATE TABLE IF NOT EXISTS user_metrics (
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
);`
	ratings := `
CREATE TABLE IF NOT EXISTS user_ratings (
  id TEXT PRIMARY KEY,
  transaction_id TEXT NOT NULL,
  rater_id TEXT NOT NULL,
  rated_id TEXT NOT NULL,
  score INTEGER NOT NULL,
  comment TEXT,
  created_at DATETIME,
  UNIQUE (transaction_id, rater_id)
);`
	require.NoError(t, db.Exec(metrics).Error)
	require.NoError(t, db.Exec(ratings).Error)
	return db
}

func TestCreditCompletionTxCreditsBothParties(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	price := decimal.NewFromInt(20)

	require.NoError(t, svc.CreditCompletionTx(ctx, db, "seller-1", "buyer-1", price, now))

	seller, err := repo.GetMetrics(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, 1, seller.TotalSales)
	assert.True(t, seller.TotalRevenue.Equal(price), "revenue %s", seller.TotalRevenue)
	require.NotNil(t, seller.FirstSaleAt)
	require.NotNil(t, seller.LastActivityAt)

	buyer, err := repo.GetMetrics(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 1, buyer.TotalPurchases)
	assert.True(t, buyer.TotalSpent.Equal(price))
	assert.Equal(t, 0, buyer.TotalSales)
}

func TestCreditCompletionTxFirstSaleIsSticky(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	ctx := context.Background()
	first := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	require.NoError(t, svc.CreditCompletionTx(ctx, db, "seller-2", "buyer-a", decimal.NewFromInt(10), first))
	require.NoError(t, svc.CreditCompletionTx(ctx, db, "seller-2", "buyer-b", decimal.NewFromInt(30), second))

	seller, err := repo.GetMetrics(ctx, "seller-2")
	require.NoError(t, err)
	assert.Equal(t, 2, seller.TotalSales)
	assert.True(t, seller.TotalRevenue.Equal(decimal.NewFromInt(40)))
	require.NotNil(t, seller.FirstSaleAt)
	assert.True(t, seller.FirstSaleAt.Equal(first), "first sale moved to %v", seller.FirstSaleAt)
}

func TestRecordRatingTxUpdatesTotalsAndBadges(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	ctx := context.Background()
	now := time.Now().UTC()

	// Ten completed sales puts the seller at the verified floor once rated 4+.
	for i := 0; i < 10; i++ {
		buyer := "buyer-" + string(rune('a'+i))
		require.NoError(t, svc.CreditCompletionTx(ctx, db, "seller-3", buyer, decimal.NewFromInt(5), now))
	}

	rating := &models.UserRating{
		ID:            uuid.New(),
		TransactionID: uuid.New(),
		RaterID:       "buyer-a",
		RatedID:       "seller-3",
		Score:         5,
	}
	require.NoError(t, svc.RecordRatingTx(ctx, db, rating))

	seller, err := repo.GetMetrics(ctx, "seller-3")
	require.NoError(t, err)
	assert.Equal(t, 5, seller.RatingSum)
	assert.Equal(t, 1, seller.RatingCount)
	assert.True(t, seller.AverageRating().Equal(decimal.NewFromInt(5)))
	require.Len(t, seller.Badges, 1)
	assert.Equal(t, BadgeVerified, seller.Badges[0])
}

func TestRecordRatingTxRejectsOutOfRangeScore(t *testing.T) {
	db := setupUsersTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	rating := &models.UserRating{
		ID:            uuid.New(),
		TransactionID: uuid.New(),
		RaterID:       "buyer-a",
		RatedID:       "seller-4",
		Score:         6,
	}
	err = svc.RecordRatingTx(context.Background(), db, rating)
	require.Error(t, err)
}

func TestRecordRatingTxRejectsDuplicatePerRater(t *testing.T) {
	db := setupUsersTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	ctx := context.Background()
	txID := uuid.New()
	first := &models.UserRating{
		ID:            uuid.New(),
		TransactionID: txID,
		RaterID:       "buyer-a",
		RatedID:       "seller-5",
		Score:         4,
	}
	require.NoError(t, svc.RecordRatingTx(ctx, db, first))

	dup := &models.UserRating{
		ID:            uuid.New(),
		TransactionID: txID,
		RaterID:       "buyer-a",
		RatedID:       "seller-5",
		Score:         1,
	}
	require.Error(t, svc.RecordRatingTx(ctx, db, dup))
}

func TestTopSellersOrdering(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, svc.CreditCompletionTx(ctx, db, "seller-big", "buyer-1", decimal.NewFromInt(100), now))
	require.NoError(t, svc.CreditCompletionTx(ctx, db, "seller-big", "buyer-2", decimal.NewFromInt(100), now))
	require.NoError(t, svc.CreditCompletionTx(ctx, db, "seller-small", "buyer-3", decimal.NewFromInt(10), now))

	rows, err := svc.TopSellers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "seller-big", rows[0].UserID)
	assert.Equal(t, "seller-small", rows[1].UserID)
}

func TestBadgeForTiers(t *testing.T) {
	tests := []struct {
		sales  int
		rating float64
		want   string
	}{
		{sales: 5, rating: 5.0, want: ""},
		{sales: 10, rating: 4.0, want: BadgeVerified},
		{sales: 10, rating: 3.9, want: ""},
		{sales: 25, rating: 4.7, want: BadgeStar},
		{sales: 25, rating: 4.5, want: BadgeVerified},
		{sales: 50, rating: 4.5, want: BadgeChampion},
		{sales: 100, rating: 4.8, want: BadgeElite},
		{sales: 100, rating: 4.6, want: BadgeChampion},
		{sales: 200, rating: 4.5, want: BadgeLegend},
	}
	for _, tt := range tests {
		got := BadgeFor(tt.sales, decimal.NewFromFloat(tt.rating))
		assert.Equal(t, tt.want, got, "sales=%d rating=%.1f", tt.sales, tt.rating)
	}
}
