package listings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
	"github.com/Zymart/shopbot-backend/pkg/pagination"
)

// Repository wires together listing persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new listing row.
func (r *Repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// FindByID loads the listing without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// Update saves the full listing row.
func (r *Repository) Update(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// UpdateStatusIf flips the listing status only when the current status matches
// one of the expected values. Returns true when a row changed.
func (r *Repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, to enums.ListingStatus, updates map[string]interface{}, from ...enums.ListingStatus) (bool, error) {
	values := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range updates {
		values[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND status IN ?", id, statusStrings(from)).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementStock subtracts qty from an active listing, flipping it to sold_out
// when the remainder hits zero. Purchases also count as interactions, so the
// view counter moves with the stock. Returns false when the listing was not
// active or held fewer than qty units.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE listings
		SET quantity = quantity - ?,
			units_sold = units_sold + ?,
			status = CASE WHEN quantity - ? <= 0 THEN 'sold_out' ELSE status END,
			views = views + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'active' AND quantity >= ?
	`, qty, qty, qty, id, qty)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	return res.RowsAffected > 0, nil
}

// RestoreStock gives qty back to a listing after a cancelled purchase,
// unwinding the units_sold claim and reactivating a sold_out listing.
// Returns false for terminal listings, where the unit is unrecoverable.
func (r *Repository) RestoreStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE listings
		SET quantity = quantity + ?,
			units_sold = units_sold - ?,
			status = CASE WHEN status = 'sold_out' THEN 'active' ELSE status END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN ('active', 'sold_out', 'needs_repost') AND units_sold >= ?
	`, qty, qty, id, qty)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restore stock")
	}
	return res.RowsAffected > 0, nil
}

// RepairStock puts back units the reconcile sweep found missing. The deficit
// came from outside the escrow path, so units_sold stays untouched.
func (r *Repository) RepairStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE listings
		SET quantity = quantity + ?,
			status = CASE WHEN status = 'sold_out' THEN 'active' ELSE status END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN ('active', 'sold_out', 'needs_repost')
	`, qty, id)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "repair stock")
	}
	return res.RowsAffected > 0, nil
}

// AddStock grows both quantity and original_quantity when the seller tops a
// listing up, reactivating sold_out and needs_repost listings.
func (r *Repository) AddStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE listings
		SET quantity = quantity + ?,
			original_quantity = original_quantity + ?,
			status = CASE WHEN status IN ('sold_out', 'needs_repost') THEN 'active' ELSE status END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN ('active', 'sold_out', 'needs_repost')
	`, qty, qty, id)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "add stock")
	}
	return res.RowsAffected > 0, nil
}

// IncrementViews bumps the view counter without touching updated_at, so view
// traffic does not disturb staleness sweeps.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).
		Error
}

// ListBySeller lists the seller's listings newest first.
func (r *Repository) ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListPendingOlderThan returns pending_approval listings created before cutoff.
func (r *Repository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.ListingStatusPendingApproval, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListSoldOutOlderThan returns sold_out listings untouched since cutoff.
func (r *Repository) ListSoldOutOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.ListingStatusSoldOut, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListLowStock returns active listings with stock at or below the threshold.
func (r *Repository) ListLowStock(ctx context.Context, threshold int, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND quantity > 0 AND quantity <= ?", enums.ListingStatusActive, threshold).
		Order("quantity ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// DeleteTerminalOlderThan removes rejected, expired, and archived listings
// untouched since cutoff. Listings still referenced by a transaction row are
// skipped until the transaction purge catches up. Returns the number of rows
// removed.
func (r *Repository) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", []string{
			string(enums.ListingStatusRejected),
			string(enums.ListingStatusExpired),
			string(enums.ListingStatusArchived),
		}, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM transactions t WHERE t.listing_id = listings.id)").
		Delete(&models.Listing{})
	return res.RowsAffected, res.Error
}

// CountCreatedInRange counts listings created inside [from, to).
func (r *Repository) CountCreatedInRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).
		Error
	return count, err
}

// CountByStatus tallies listings per status for the stats rollup.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.ListingStatus]int64, error) {
	type row struct {
		Status enums.ListingStatus
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.ListingStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

type listingListQuery struct {
	Pagination pagination.Params
	Filters    ListingFilters
}

// ListActiveSummaries pages through active listings newest first.
func (r *Repository) ListActiveSummaries(ctx context.Context, query listingListQuery) (*ListingListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("status = ?", enums.ListingStatusActive)

	filter := query.Filters
	if filter.Category != nil {
		qb = qb.Where("category = ?", *filter.Category)
	}
	if filter.SellerID != nil {
		qb = qb.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.PriceMin != nil {
		qb = qb.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		qb = qb.Where("price <= ?", *filter.PriceMax)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(item_name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Listing
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListingListResult{Listings: rows, NextCursor: nextCursor}, nil
}

func statusStrings(statuses []enums.ListingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
