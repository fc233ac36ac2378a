package listings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func newTestService(t *testing.T) (Service, *Repository, *recordingEmitter, *gorm.DB) {
	t.Helper()
	conn := setupListingsTestDB(t)
	repo := NewRepository(conn)
	emitter := &recordingEmitter{}
	svc, err := NewService(repo, db.NewFromConn(conn), emitter, nil)
	require.NoError(t, err)
	return svc, repo, emitter, conn
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateListingInput{
		SellerID: "seller-1",
		ItemName: "Huge Pet",
		Price:    decimal.Zero,
		Quantity: 1,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, CreateListingInput{
		SellerID: "seller-1",
		ItemName: " ",
		Price:    decimal.NewFromInt(10),
		Quantity: 1,
	})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateListingInput{
		SellerID: "seller-1",
		ItemName: "Huge Pet",
		Price:    decimal.NewFromInt(10),
		Quantity: 0,
	})
	require.Error(t, err)
}

func TestCreateClassifiesWhenCategoryOmitted(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	listing, err := svc.Create(context.Background(), CreateListingInput{
		SellerID:    "seller-1",
		ItemName:    "Roblox Limited - Valkyrie Helm",
		Description: "clean og limited",
		Price:       decimal.NewFromInt(120),
		Quantity:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusPendingApproval, listing.Status)
	assert.Equal(t, enums.ListingCategoryRoblox, listing.Category)
	assert.Equal(t, 1, listing.OriginalQuantity)
	assert.NotEmpty(t, listing.Tags)
}

func TestApproveEmitsAndIsOneShot(t *testing.T) {
	svc, _, emitter, _ := newTestService(t)
	ctx := context.Background()

	listing, err := svc.Create(ctx, CreateListingInput{
		SellerID: "seller-1",
		ItemName: "Shadow Dragon",
		Price:    decimal.NewFromInt(75),
		Quantity: 2,
	})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, listing.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusActive, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "admin-1", *approved.ApprovedBy)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, enums.NotificationTypeListingApproved, emitter.events[0].Type)
	assert.Equal(t, "seller-1", emitter.events[0].RecipientID)

	_, err = svc.Approve(ctx, listing.ID, "admin-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	assert.Len(t, emitter.events, 1)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _, emitter, _ := newTestService(t)
	ctx := context.Background()

	listing, err := svc.Create(ctx, CreateListingInput{
		SellerID: "seller-1",
		ItemName: "Shadow Dragon",
		Price:    decimal.NewFromInt(75),
		Quantity: 2,
	})
	require.NoError(t, err)

	_, err = svc.Reject(ctx, listing.ID, "admin-1", "  ")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	rejected, err := svc.Reject(ctx, listing.ID, "admin-1", "no proof of ownership")
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectedReason)
	assert.Equal(t, "no proof of ownership", *rejected.RejectedReason)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, enums.NotificationTypeListingRejected, emitter.events[0].Type)
}

func TestRestockOwnershipAndTerminalGuard(t *testing.T) {
	svc, repo, _, conn := newTestService(t)
	ctx := context.Background()

	listing := seedListing(t, conn, enums.ListingStatusSoldOut, 0)

	_, err := svc.Restock(ctx, listing.ID, "someone-else", 5)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	restocked, err := svc.Restock(ctx, listing.ID, "seller-1", 5)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusActive, restocked.Status)
	assert.Equal(t, 5, restocked.Quantity)

	archived := seedListing(t, conn, enums.ListingStatusArchived, 0)
	_, err = svc.Restock(ctx, archived.ID, "seller-1", 5)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	got, err := repo.FindByID(ctx, archived.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestMarkNeedsRepostIsIdempotent(t *testing.T) {
	svc, _, _, conn := newTestService(t)
	ctx := context.Background()

	listing := seedListing(t, conn, enums.ListingStatusActive, 2)

	require.NoError(t, svc.MarkNeedsRepost(ctx, listing.ID))
	require.NoError(t, svc.MarkNeedsRepost(ctx, listing.ID))

	got, err := svc.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusNeedsRepost, got.Status)
}

func TestListActiveFiltersByCategory(t *testing.T) {
	svc, _, _, conn := newTestService(t)
	ctx := context.Background()

	roblox := seedListing(t, conn, enums.ListingStatusActive, 1)
	skins := seedListing(t, conn, enums.ListingStatusActive, 1)
	require.NoError(t, conn.Model(skins).UpdateColumn("category", enums.ListingCategorySkins).Error)
	seedListing(t, conn, enums.ListingStatusPendingApproval, 1)

	category := enums.ListingCategoryRoblox
	page, err := svc.ListActive(ctx, ListActiveInput{
		Filters: ListingFilters{Category: &category},
	})
	require.NoError(t, err)
	require.Len(t, page.Listings, 1)
	assert.Equal(t, roblox.ID, page.Listings[0].ID)
	assert.Empty(t, page.NextCursor)
}

func TestKeywordClassifier(t *testing.T) {
	classifier := NewKeywordClassifier()

	got := classifier.Classify("Vanguard Valk bundle", "exotic drop")
	assert.Equal(t, enums.ListingCategoryVanguard, got.Category)
	assert.Greater(t, got.Confidence, 0.0)

	got = classifier.Classify("100k Robux", "cheap coins")
	assert.Equal(t, enums.ListingCategoryCurrency, got.Category)

	got = classifier.Classify("mystery box", "")
	assert.Equal(t, enums.ListingCategoryOther, got.Category)
	assert.Zero(t, got.Confidence)
}
