package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

// StockKeeper is the tx-scoped stock interface handed to the purchase path so
// the listing decrement commits or rolls back with the transaction it funds.
type StockKeeper interface {
	Decrement(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, qty int) (bool, error)
	Restore(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, qty int) (bool, error)
}

type stockKeeperImpl struct{}

// NewStockKeeper exposes the default stock keeper implementation.
func NewStockKeeper() StockKeeper {
	return stockKeeperImpl{}
}

func (stockKeeperImpl) Decrement(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, qty int) (bool, error) {
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock decrement")
	}
	return NewRepository(tx).DecrementStock(ctx, listingID, qty)
}

func (stockKeeperImpl) Restore(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, qty int) (bool, error) {
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock restore")
	}
	return NewRepository(tx).RestoreStock(ctx, listingID, qty)
}
